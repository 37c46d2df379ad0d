package objects

import "fmt"

// InventoryQueryResult is the result of `query_inventory` and of
// `summarize` (spec.md §4.H, §6).
type InventoryQueryResult struct {
	Location             string
	Query                string
	Objects               []InventoryObject
	SearchMetadata        SearchMetadata
	InventoryLocations    []InventoryLocationInfo
	// GroupedSpecifics is populated only by `summarize`, keyed by the
	// grouped field's value with per-group object counts.
	GroupedSpecifics map[string]int
}

// RenderAsJSON renders the result per spec.md §6's
// `InventoryQueryResult` shape.
func (r InventoryQueryResult) RenderAsJSON() map[string]any {
	objs := make([]map[string]any, 0, len(r.Objects))
	for _, o := range r.Objects {
		objs = append(objs, o.RenderAsJSON())
	}
	locs := make([]map[string]any, 0, len(r.InventoryLocations))
	for _, l := range r.InventoryLocations {
		locs = append(locs, l.RenderAsJSON())
	}
	out := map[string]any{
		"location":            r.Location,
		"query":               r.Query,
		"objects":             objs,
		"search_metadata":     r.SearchMetadata.RenderAsJSON(),
		"inventory_locations": locs,
	}
	if r.GroupedSpecifics != nil {
		out["grouped_specifics"] = r.GroupedSpecifics
	}
	return out
}

// RenderAsMarkdown renders the result as Markdown lines.
func (r InventoryQueryResult) RenderAsMarkdown(revealInternals bool) []string {
	lines := []string{fmt.Sprintf("# Inventory query: %s", r.Location)}
	if r.Query != "" {
		lines = append(lines, fmt.Sprintf("query: `%s`", r.Query))
	}
	lines = append(lines, fmt.Sprintf("%d objects (of %d matches)", r.SearchMetadata.ResultsCount, r.SearchMetadata.MatchesTotal))
	for _, o := range r.Objects {
		lines = append(lines, o.RenderAsMarkdown(revealInternals)...)
	}
	if r.GroupedSpecifics != nil {
		lines = append(lines, "", "## Groups")
		for k, v := range r.GroupedSpecifics {
			lines = append(lines, fmt.Sprintf("- %s: %d", k, v))
		}
	}
	if revealInternals {
		lines = append(lines, "", "## Inventory locations")
		for _, l := range r.InventoryLocations {
			lines = append(lines, l.RenderAsMarkdown())
		}
	}
	return lines
}

// ContentQueryResult is the result of `query_content` (spec.md §4.H,
// §6).
type ContentQueryResult struct {
	Location           string
	Query              string
	Documents          []ContentDocument
	SearchMetadata     SearchMetadata
	InventoryLocations []InventoryLocationInfo
}

// RenderAsJSON renders the result per spec.md §6's
// `ContentQueryResult` shape.
func (r ContentQueryResult) RenderAsJSON() map[string]any {
	docs := make([]map[string]any, 0, len(r.Documents))
	for _, d := range r.Documents {
		docs = append(docs, d.RenderAsJSON())
	}
	locs := make([]map[string]any, 0, len(r.InventoryLocations))
	for _, l := range r.InventoryLocations {
		locs = append(locs, l.RenderAsJSON())
	}
	return map[string]any{
		"location":            r.Location,
		"query":               r.Query,
		"documents":           docs,
		"search_metadata":     r.SearchMetadata.RenderAsJSON(),
		"inventory_locations": locs,
	}
}

// RenderAsMarkdown renders the result as Markdown lines.
func (r ContentQueryResult) RenderAsMarkdown(revealInternals bool) []string {
	lines := []string{fmt.Sprintf("# Content query: %s", r.Location)}
	if r.Query != "" {
		lines = append(lines, fmt.Sprintf("query: `%s`", r.Query))
	}
	for _, d := range r.Documents {
		lines = append(lines, d.RenderAsMarkdown(revealInternals)...)
		lines = append(lines, "")
	}
	return lines
}
