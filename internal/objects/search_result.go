package objects

import "fmt"

// SearchResult pairs an InventoryObject with its match score and the
// human-readable reasons it matched (spec.md §3). Score is monotone
// with match quality; ties are broken by ascending Object.Name by the
// search engine, not here.
type SearchResult struct {
	Object       InventoryObject
	Score        float64
	MatchReasons []string
}

// RenderAsJSON renders the result, nesting the object's own rendering.
func (r SearchResult) RenderAsJSON() map[string]any {
	return map[string]any{
		"object":        r.Object.RenderAsJSON(),
		"score":         r.Score,
		"match_reasons": r.MatchReasons,
	}
}

// RenderAsMarkdown renders the result as Markdown lines.
func (r SearchResult) RenderAsMarkdown(revealInternals bool) []string {
	lines := []string{fmt.Sprintf("### %s (score %.2f)", r.Object.EffectiveDisplayName(), r.Score)}
	lines = append(lines, fmt.Sprintf("- uri: `%s`", r.Object.URI))
	for _, reason := range r.MatchReasons {
		lines = append(lines, "- matched: "+reason)
	}
	if revealInternals {
		lines = append(lines, r.Object.renderSpecificsMarkdown()...)
	}
	return lines
}
