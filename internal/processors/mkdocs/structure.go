package mkdocs

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	domainerrors "github.com/emcd/librovore/internal/errors"
	"github.com/emcd/librovore/internal/htmlconv"
	"github.com/emcd/librovore/internal/objects"
	"github.com/emcd/librovore/internal/processors"
	"github.com/emcd/librovore/internal/processors/capability"
)

// themeRules is the ordered theme table from spec.md §4.F.2.
var themeRules = []htmlconv.ThemeRule{
	{
		Name:    "material",
		Main:    []string{"article.md-content__inner"},
		Strip:   []string{"nav.md-nav", "div.md-sidebar", "nav.md-header__inner"},
		Markers: []string{"article.md-content__inner"},
	},
	{
		Name:  "readthedocs",
		Main:  []string{"div.col-md-9[role=main]"},
		Strip: []string{"div.navbar"},
	},
	{
		Name:  "default",
		Main:  []string{"div.col-md-9[role=main]"},
		Strip: []string{"div.navbar"},
	},
}

func defaultThemeRule() htmlconv.ThemeRule {
	rule, _ := htmlconv.RuleByName(themeRules, "default")
	return rule
}

// StructureProcessor implements processors.StructureProcessor for
// MkDocs-generated HTML pages.
type StructureProcessor struct{}

func NewStructureProcessor() *StructureProcessor {
	return &StructureProcessor{}
}

func (p *StructureProcessor) Name() string { return ProcessorName }

func (p *StructureProcessor) SupportedInventoryTypes() []string {
	return []string{InventoryType}
}

func (p *StructureProcessor) Capabilities() objects.ProcessorCapabilities {
	return capability.New().
		InventoryTypes(InventoryType).
		MeanDetectionMs(350).
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

		html, _, _, err := fetcher.FetchText(ctx, contentURL)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", obj.Name, err))
			continue
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: unparseable HTML: %v", obj.Name, err))
			continue
		}

		annotateMkdocstringsSignatures(doc)

		themeName := htmlconv.DetectTheme(doc, themeRules)
		rule, ok := htmlconv.RuleByName(themeRules, themeName)
		usedFallback := false
		if !ok {
			rule = defaultThemeRule()
			usedFallback = true
		}

		result := htmlconv.Extract(doc, rule, contentURL, usedFallback)
		if result.Quality == htmlconv.QualityLow && result.Markdown == "" {
			result = htmlconv.Extract(doc, htmlconv.FallbackRule, contentURL, true)
		}

		content := truncate(result.Markdown, linesMax)

		document := objects.NewContentDocument(obj, obj.EffectiveDisplayName(), contentURL, content, objects.ExtractionMetadata{
			Theme:    themeNameOrFallback(themeName),
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

// annotateMkdocstringsSignatures rewrites mkdocstrings'
// div.autodoc > div.autodoc-signature convention into a
// language-annotated <pre><code> block so it survives conversion as a
// fenced Python code block (spec.md §4.F.2).
func annotateMkdocstringsSignatures(doc *goquery.Document) {
	doc.Find("div.autodoc > div.autodoc-signature").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		s.SetHtml(fmt.Sprintf("<pre><code class=\"language-python\">%s</code></pre>", html.EscapeString(text)))
	})
}

func themeNameOrFallback(name string) string {
	if name == "" {
		return "default"
	}
	return name
}

func truncate(markdown string, linesMax int) string {
	if linesMax <= 0 {
		return markdown
	}
	lines := strings.Split(markdown, "\n")
	if len(lines) <= linesMax {
		return markdown
	}
	return strings.Join(lines[:linesMax], "\n") + "\n\n[…truncated…]"
}
