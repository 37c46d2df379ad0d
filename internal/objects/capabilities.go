package objects

// ProcessorCapabilities advertises what a processor supports
// (spec.md §4.I).
type ProcessorCapabilities struct {
	SupportedInventoryTypes []string
	SupportedFilters        []string
	MeanDetectionMs         int64
	MaxPayloadBytes         int64
}

// RenderAsJSON renders the capability record.
func (c ProcessorCapabilities) RenderAsJSON() map[string]any {
	out := map[string]any{
		"supported_inventory_types": c.SupportedInventoryTypes,
		"supported_filters":         c.SupportedFilters,
	}
	if c.MeanDetectionMs > 0 {
		out["mean_detection_ms"] = c.MeanDetectionMs
	}
	if c.MaxPayloadBytes > 0 {
		out["max_payload_bytes"] = c.MaxPayloadBytes
	}
	return out
}

// ProcessorDescriptor names one registered processor alongside its
// capabilities, as surveyed by `survey_processors` (spec.md §4.H).
type ProcessorDescriptor struct {
	Name         string
	Genus        Genus
	Capabilities ProcessorCapabilities
}

// RenderAsJSON renders the descriptor.
func (d ProcessorDescriptor) RenderAsJSON() map[string]any {
	return map[string]any{
		"name":         d.Name,
		"genus":        string(d.Genus),
		"capabilities": d.Capabilities.RenderAsJSON(),
	}
}

// ProcessorsSurveyResult is the result of `survey_processors`
// (spec.md §4.H).
type ProcessorsSurveyResult struct {
	Genus      Genus
	Processors []ProcessorDescriptor
}

// RenderAsJSON renders the survey result.
func (r ProcessorsSurveyResult) RenderAsJSON() map[string]any {
	processors := make([]map[string]any, 0, len(r.Processors))
	for _, p := range r.Processors {
		processors = append(processors, p.RenderAsJSON())
	}
	return map[string]any{
		"genus":      string(r.Genus),
		"processors": processors,
	}
}

// RenderAsMarkdown renders the survey result as Markdown lines.
func (r ProcessorsSurveyResult) RenderAsMarkdown(revealInternals bool) []string {
	lines := []string{"## Registered " + string(r.Genus) + " processors"}
	for _, p := range r.Processors {
		lines = append(lines, "- "+p.Name)
		if revealInternals {
			for _, t := range p.Capabilities.SupportedInventoryTypes {
				lines = append(lines, "  - inventory type: "+t)
			}
			for _, f := range p.Capabilities.SupportedFilters {
				lines = append(lines, "  - filter: "+f)
			}
		}
	}
	return lines
}
