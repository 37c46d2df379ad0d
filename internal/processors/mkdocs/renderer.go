package mkdocs

import "fmt"

// specificsRenderer renders the MkDocs-specific `object_type` field
// (spec.md §3 calls out MkDocs as carrying a narrower specifics set
// than Sphinx).
type specificsRenderer struct{}

func newSpecificsRenderer() *specificsRenderer {
	return &specificsRenderer{}
}

func (r *specificsRenderer) InventoryType() string { return InventoryType }

func (r *specificsRenderer) RenderSpecificsMarkdown(specifics map[string]string) []string {
	var lines []string
	if v := specifics["object_type"]; v != "" {
		lines = append(lines, fmt.Sprintf("- object_type: `%s`", v))
	}
	return lines
}
