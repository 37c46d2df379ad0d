package objects

// SpecificsRenderer knows how to present a processor's format-specific
// `specifics` map. Each inventory processor supplies one at object
// construction time so InventoryObject never imports the processor
// packages back (spec.md §9's cyclic-reference strategy: an attached
// handle, not a back-pointer).
type SpecificsRenderer interface {
	// InventoryType names the format this renderer understands, e.g.
	// "sphinx_objects_inv" or "mkdocs_search_index".
	InventoryType() string

	// RenderSpecificsMarkdown renders specifics as Markdown list items,
	// in the order the format considers meaningful.
	RenderSpecificsMarkdown(specifics map[string]string) []string
}

// genericRenderer is used when no format-specific renderer was supplied
// (e.g. externally registered plugins that didn't provide one). It
// renders specifics alphabetically.
type genericRenderer struct{ inventoryType string }

// NewGenericRenderer returns a SpecificsRenderer that renders specifics
// alphabetically by key, for processors that don't need anything
// fancier.
func NewGenericRenderer(inventoryType string) SpecificsRenderer {
	return genericRenderer{inventoryType: inventoryType}
}

func (r genericRenderer) InventoryType() string { return r.inventoryType }

func (r genericRenderer) RenderSpecificsMarkdown(specifics map[string]string) []string {
	keys := sortedKeys(specifics)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, "- "+k+": "+specifics[k])
	}
	return lines
}
