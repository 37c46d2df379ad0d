package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	domainerrors "github.com/emcd/librovore/internal/errors"
	"github.com/emcd/librovore/internal/htmlconv"
	"github.com/emcd/librovore/internal/objects"
	"github.com/emcd/librovore/internal/processors"
	"github.com/emcd/librovore/internal/processors/capability"
)

// StructureProcessor extracts the HTML page each llms.txt link entry
// points to. llms.txt carries no theme convention of its own, so
// extraction always uses htmlconv's theme-agnostic FallbackRule.
type StructureProcessor struct{}

func NewStructureProcessor() *StructureProcessor { return &StructureProcessor{} }

func (p *StructureProcessor) Name() string { return ProcessorName }

func (p *StructureProcessor) SupportedInventoryTypes() []string {
	return []string{InventoryType}
}

func (p *StructureProcessor) Capabilities() objects.ProcessorCapabilities {
	return capability.New().
		InventoryTypes(InventoryType).
		MeanDetectionMs(300).
		MaxPayloadBytes(5 * 1024 * 1024).
		Build()
}

func (p *StructureProcessor) Extract(ctx context.Context, objs []objects.InventoryObject, baseURL string, fetcher processors.Fetcher, filters objects.Filters, linesMax int) ([]objects.ContentDocument, []string, error) {
	var docs []objects.ContentDocument
	var warnings []string

	for _, obj := range objs {
		contentURL, err := obj.ContentURL()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", obj.Name, err))
			continue
		}

		body, _, _, err := fetcher.FetchText(ctx, contentURL)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", obj.Name, err))
			continue
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: unparseable HTML: %v", obj.Name, err))
			continue
		}

		result := htmlconv.Extract(doc, htmlconv.FallbackRule, contentURL, true)
		content := truncateLines(result.Markdown, linesMax)

		document := objects.NewContentDocument(obj, obj.Specifics["description"], contentURL, content, objects.ExtractionMetadata{
			Quality:  string(result.Quality),
			Warnings: result.Warnings,
		})
		docs = append(docs, document)
	}

	if len(docs) == 0 && len(objs) > 0 {
		return nil, warnings, domainerrors.ContentInvalidity(baseURL, "no objects yielded extractable content", nil)
	}

	return docs, warnings, nil
}

func truncateLines(markdown string, linesMax int) string {
	if linesMax <= 0 {
		return markdown
	}
	lines := strings.Split(markdown, "\n")
	if len(lines) <= linesMax {
		return markdown
	}
	return strings.Join(lines[:linesMax], "\n") + "\n\n[…truncated…]"
}
