package sphinx

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

// themeRules is the ordered theme table from spec.md §4.F.1. furo,
// sphinx_rtd, and pydata are tried before falling back to the
// classic-theme default, since their marker classes are more specific.
var themeRules = []htmlconv.ThemeRule{
	{
		Name:    "furo",
		Main:    []string{"article[role=main] section", "div.content section", "section"},
		Markers: []string{"body.furo"},
	},
	{
		Name:    "sphinx_rtd",
		Main:    []string{"section.wy-nav-content-wrap section", "section"},
		Strip:   []string{"nav.wy-nav-side", "nav.wy-nav-top"},
		Markers: []string{"section.wy-nav-content-wrap"},
	},
	{
		Name:    "pydata",
		Main:    []string{"main.bd-main", "article.bd-article", "section"},
		Strip:   []string{"nav.bd-docs-nav", "nav.d-print-none"},
		Markers: []string{"main.bd-main"},
	},
	{
		Name:  "default",
		Main:  []string{"div.body[role=main]", "section"},
		Strip: []string{"div.sphinxsidebar", "div.related"},
	},
}

// defaultThemeRule is the final fallback before htmlconv.FallbackRule:
// the classic Sphinx theme family (alabaster, classic, nature,
// python-docs, agogo) shares one main/strip selector pair with no
// distinguishing marker.
func defaultThemeRule() htmlconv.ThemeRule {
	rule, _ := htmlconv.RuleByName(themeRules, "default")
	return rule
}

// StructureProcessor implements processors.StructureProcessor for
// Sphinx-produced HTML pages.
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
		MeanDetectionMs(400).
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
