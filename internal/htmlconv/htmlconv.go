// Package htmlconv implements the theme-aware HTML extraction and
// Markdown conversion shared by the structure processors (spec.md
// §4.F): locating a document's primary content region, stripping
// chrome, resolving relative asset URLs, and converting the remainder
// to Markdown.
package htmlconv

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/emcd/librovore/internal/urlutil"
)

// ThemeRule describes one candidate theme: an ordered list of CSS
// selectors tried for the main content region, and a list of selectors
// whose matches are removed before conversion.
type ThemeRule struct {
	Name    string
	Main    []string
	Strip   []string
	Markers []string // CSS selectors whose presence identifies this theme
}

// DetectTheme returns the name of the first rule whose Markers all
// match doc, or "" if none do. Rules are tried in order, so callers
// list more specific themes before looser fallbacks.
func DetectTheme(doc *goquery.Document, rules []ThemeRule) string {
	for _, rule := range rules {
		if len(rule.Markers) == 0 {
			continue
		}
		matched := true
		for _, marker := range rule.Markers {
			if doc.Find(marker).Length() == 0 {
				matched = false
				break
			}
		}
		if matched {
			return rule.Name
		}
	}
	return ""
}

// RuleByName returns the rule named name, or the zero ThemeRule and
// false.
func RuleByName(rules []ThemeRule, name string) (ThemeRule, bool) {
	for _, rule := range rules {
		if rule.Name == name {
			return rule, true
		}
	}
	return ThemeRule{}, false
}

// FallbackRule is the theme-agnostic extraction path from spec.md
// §4.F.3, used when no theme's markers match.
var FallbackRule = ThemeRule{
	Name:  "fallback",
	Main:  []string{"main", "article", "[role=main]", ".md-content", ".container", "section", "body"},
	Strip: []string{"nav", "footer", "aside", "[class*=sidebar]", "[class*=toc]"},
}

// ExtractionQuality classifies how confidently the main region was
// located, reported in ExtractionMetadata.Quality.
type ExtractionQuality string

const (
	QualityHigh   ExtractionQuality = "high"
	QualityMedium ExtractionQuality = "medium"
	QualityLow    ExtractionQuality = "low"
)

// Result carries the extracted Markdown body plus the quality
// assessment and any non-fatal issues encountered.
type Result struct {
	Markdown string
	Quality  ExtractionQuality
	Warnings []string
}

// Extract locates rule's main region within doc, strips chrome,
// resolves relative asset/link URLs against baseURL, and converts the
// remainder to Markdown. usedFallback marks whether rule is
// FallbackRule, which downgrades the reported quality.
func Extract(doc *goquery.Document, rule ThemeRule, baseURL string, usedFallback bool) Result {
	var main *goquery.Selection
	for _, sel := range rule.Main {
		found := doc.Find(sel)
		if found.Length() > 0 {
			main = found.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}
	if main.Length() == 0 {
		return Result{Quality: QualityLow, Warnings: []string{"no extractable content region found"}}
	}

	region := main.Clone()
	for _, sel := range rule.Strip {
		region.Find(sel).Remove()
	}

	resolveAssetURLs(region, baseURL)
	annotateCodeLanguages(region)

	html, err := region.Html()
	if err != nil {
		return Result{Quality: QualityLow, Warnings: []string{fmt.Sprintf("failed to serialize content region: %v", err)}}
	}

	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return Result{Quality: QualityLow, Warnings: []string{fmt.Sprintf("markdown conversion failed: %v", err)}}
	}

	quality := QualityHigh
	if usedFallback {
		quality = QualityMedium
	}
	if strings.TrimSpace(markdown) == "" {
		quality = QualityLow
	}

	return Result{Markdown: strings.TrimSpace(markdown), Quality: quality}
}

// resolveAssetURLs rewrites every relative img src and anchor href
// within region to an absolute URL against baseURL, so the extracted
// Markdown is self-contained regardless of where it's displayed.
func resolveAssetURLs(region *goquery.Selection, baseURL string) {
	region.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if abs, err := urlutil.Join(baseURL, src); err == nil {
			s.SetAttr("src", abs)
		}
	})
	region.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if abs, err := urlutil.Join(baseURL, href); err == nil {
			s.SetAttr("href", abs)
		}
	})
}

// annotateCodeLanguages rewrites the framework-specific "this code
// block's language lives in a container class" convention
// (`highlight-python`, `highlight-bash`, …) into a `language-X` class
// directly on the <code> element, which the Markdown converter's
// commonmark plugin recognizes as a fenced-code-block language hint.
func annotateCodeLanguages(region *goquery.Selection) {
	region.Find("[class*=highlight-]").Each(func(_ int, s *goquery.Selection) {
		lang := classSuffix(s, "highlight-")
		if lang == "" || lang == "default" {
			return
		}
		s.Find("pre > code").Each(func(_ int, code *goquery.Selection) {
			addClass(code, "language-"+lang)
		})
	})
}

func classSuffix(s *goquery.Selection, prefix string) string {
	class, _ := s.Attr("class")
	for _, token := range strings.Fields(class) {
		if strings.HasPrefix(token, prefix) {
			return strings.TrimPrefix(token, prefix)
		}
	}
	return ""
}

func addClass(s *goquery.Selection, class string) {
	existing, _ := s.Attr("class")
	if strings.Contains(" "+existing+" ", " "+class+" ") {
		return
	}
	s.SetAttr("class", strings.TrimSpace(existing+" "+class))
}

// CodeLanguage returns the language hint for an element carrying a
// `language-X` class, the mkdocstrings/Sphinx convention (spec.md
// §4.F.1, §4.F.2), or "" if none is present.
func CodeLanguage(s *goquery.Selection) string {
	class, _ := s.Attr("class")
	for _, token := range strings.Fields(class) {
		if strings.HasPrefix(token, "language-") {
			return strings.TrimPrefix(token, "language-")
		}
	}
	return ""
}
