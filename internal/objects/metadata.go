package objects

import "fmt"

// SearchMetadata reports result counts and timing for a search
// (spec.md §3): ResultsTruncated is derived, never set directly.
type SearchMetadata struct {
	ResultsCount  int
	ResultsMax    int
	MatchesTotal  int
	SearchTimeMs  int64
}

// ResultsTruncated reports whether more matches existed than were
// returned.
func (m SearchMetadata) ResultsTruncated() bool {
	return m.MatchesTotal > m.ResultsCount
}

// RenderAsJSON renders the metadata per spec.md §6's
// `search_metadata{…}` shape.
func (m SearchMetadata) RenderAsJSON() map[string]any {
	return map[string]any{
		"results_count":     m.ResultsCount,
		"results_max":       m.ResultsMax,
		"matches_total":     m.MatchesTotal,
		"search_time_ms":    m.SearchTimeMs,
		"results_truncated": m.ResultsTruncated(),
	}
}

// InventoryLocationInfo describes one inventory source consulted while
// answering a query (spec.md §3).
type InventoryLocationInfo struct {
	InventoryType string
	LocationURL   string
	ProcessorName string
	Confidence    float64
	ObjectCount   int
}

// RenderAsJSON renders the location info.
func (l InventoryLocationInfo) RenderAsJSON() map[string]any {
	return map[string]any{
		"inventory_type": l.InventoryType,
		"location_url":   l.LocationURL,
		"processor_name": l.ProcessorName,
		"confidence":     l.Confidence,
		"object_count":   l.ObjectCount,
	}
}

// RenderAsMarkdown renders the location info as a single bullet.
func (l InventoryLocationInfo) RenderAsMarkdown() string {
	return fmt.Sprintf("- `%s` via %s (confidence %.2f, %d objects)", l.LocationURL, l.ProcessorName, l.Confidence, l.ObjectCount)
}
