package objects

import "fmt"

// Genus is the broad processor category a Detection belongs to
// (spec.md's GLOSSARY).
type Genus string

const (
	GenusInventory Genus = "inventory"
	GenusStructure Genus = "structure"
)

// Detection is one processor's self-reported confidence that it can
// serve a given source (spec.md §3).
type Detection struct {
	ProcessorName     string
	Confidence        float64
	ProcessorType     Genus
	DetectionMetadata map[string]any
}

// RenderAsJSON renders the detection.
func (d Detection) RenderAsJSON() map[string]any {
	out := map[string]any{
		"processor_name": d.ProcessorName,
		"confidence":     d.Confidence,
		"processor_type": string(d.ProcessorType),
	}
	if len(d.DetectionMetadata) > 0 {
		out["detection_metadata"] = d.DetectionMetadata
	}
	return out
}

// DetectionsResult aggregates every processor's Detection for a source,
// plus the orchestrator's chosen optimum (spec.md §3).
type DetectionsResult struct {
	Source           string
	Detections       []Detection
	DetectionOptimal *Detection
	TimeDetectionMs  int64
}

// RenderAsJSON renders the result per spec.md §6's `DetectionsResult`
// shape.
func (r DetectionsResult) RenderAsJSON() map[string]any {
	detections := make([]map[string]any, 0, len(r.Detections))
	for _, d := range r.Detections {
		detections = append(detections, d.RenderAsJSON())
	}
	out := map[string]any{
		"source":            r.Source,
		"detections":        detections,
		"time_detection_ms": r.TimeDetectionMs,
	}
	if r.DetectionOptimal != nil {
		out["detection_optimal"] = r.DetectionOptimal.RenderAsJSON()
	}
	return out
}

// RenderAsMarkdown renders the result as Markdown lines.
func (r DetectionsResult) RenderAsMarkdown(revealInternals bool) []string {
	lines := []string{fmt.Sprintf("## Detections for %s", r.Source)}
	for _, d := range r.Detections {
		marker := " "
		if r.DetectionOptimal != nil && d.ProcessorName == r.DetectionOptimal.ProcessorName && d.ProcessorType == r.DetectionOptimal.ProcessorType {
			marker = "*"
		}
		lines = append(lines, fmt.Sprintf("- %s%s (%s) confidence %.2f", marker, d.ProcessorName, d.ProcessorType, d.Confidence))
	}
	if revealInternals {
		lines = append(lines, "", fmt.Sprintf("detection time: %dms", r.TimeDetectionMs))
	}
	return lines
}
