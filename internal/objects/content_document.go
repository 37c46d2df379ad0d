package objects

import "fmt"

// ExtractionMetadata carries per-document extraction diagnostics
// (spec.md §4.F, §6): the detected theme, a coarse quality rating, and
// non-fatal warnings (unknown filters, robots denial under strict mode,
// partial-extraction failures for sibling objects).
type ExtractionMetadata struct {
	Theme    string
	Quality  string // "high", "medium", "low"
	Warnings []string
}

func (m ExtractionMetadata) renderAsJSON() map[string]any {
	out := map[string]any{
		"quality":  m.Quality,
		"warnings": m.Warnings,
	}
	if m.Theme != "" {
		out["theme"] = m.Theme
	}
	return out
}

// ContentDocument is the extracted, Markdown-converted content for one
// InventoryObject (spec.md §3).
type ContentDocument struct {
	Object             InventoryObject
	ContentID          string
	Description        string
	DocumentationURL   string
	Content             string
	ExtractionMetadata ExtractionMetadata
}

// NewContentDocument constructs a ContentDocument, minting ContentID
// from the object's LocationURL and Name per spec.md §3's determinism
// invariant.
func NewContentDocument(object InventoryObject, description, documentationURL, content string, metadata ExtractionMetadata) ContentDocument {
	return ContentDocument{
		Object:             object,
		ContentID:          ContentID(object.LocationURL, object.Name),
		Description:        description,
		DocumentationURL:   documentationURL,
		Content:             content,
		ExtractionMetadata: metadata,
	}
}

// RenderAsJSON renders the document per the `documents[]` shape in
// spec.md §6 (content is carried alongside, not nested under
// extraction_metadata).
func (d ContentDocument) RenderAsJSON() map[string]any {
	return map[string]any{
		"object":              d.Object.RenderAsJSON(),
		"content_id":          d.ContentID,
		"description":         d.Description,
		"documentation_url":   d.DocumentationURL,
		"extraction_metadata": d.ExtractionMetadata.renderAsJSON(),
		"content":             d.Content,
	}
}

// RenderAsMarkdown renders the document as Markdown lines, embedding
// its already-Markdown Content verbatim.
func (d ContentDocument) RenderAsMarkdown(revealInternals bool) []string {
	lines := []string{
		fmt.Sprintf("## %s", d.Object.EffectiveDisplayName()),
		fmt.Sprintf("_%s_", d.DocumentationURL),
		"",
	}
	if d.Description != "" {
		lines = append(lines, d.Description, "")
	}
	lines = append(lines, d.Content)
	if revealInternals {
		lines = append(lines, "", fmt.Sprintf("content_id: `%s`", d.ContentID))
		if d.ExtractionMetadata.Theme != "" {
			lines = append(lines, fmt.Sprintf("theme: `%s`, quality: `%s`", d.ExtractionMetadata.Theme, d.ExtractionMetadata.Quality))
		}
		for _, w := range d.ExtractionMetadata.Warnings {
			lines = append(lines, "warning: "+w)
		}
	}
	return lines
}
