package sphinx

import "fmt"

// specificsRenderer renders the Sphinx-specific fields
// (domain/role/priority/project/version) attached to every
// InventoryObject this processor produces, per spec.md §3's rendering
// protocol.
type specificsRenderer struct{}

func newSpecificsRenderer() *specificsRenderer {
	return &specificsRenderer{}
}

func (r *specificsRenderer) InventoryType() string { return InventoryType }

func (r *specificsRenderer) RenderSpecificsMarkdown(specifics map[string]string) []string {
	var lines []string
	if v := specifics["domain"]; v != "" {
		lines = append(lines, fmt.Sprintf("- domain: `%s`", v))
	}
	if v := specifics["role"]; v != "" {
		lines = append(lines, fmt.Sprintf("- role: `%s`", v))
	}
	if v := specifics["priority"]; v != "" {
		lines = append(lines, fmt.Sprintf("- priority: `%s`", v))
	}
	if v := specifics["project"]; v != "" {
		lines = append(lines, fmt.Sprintf("- project: `%s`", v))
	}
	if v := specifics["version"]; v != "" {
		lines = append(lines, fmt.Sprintf("- version: `%s`", v))
	}
	return lines
}
