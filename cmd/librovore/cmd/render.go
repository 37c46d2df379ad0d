package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// renderable is satisfied by every internal/objects result type: each
// can render itself to a JSON-ready map or to Markdown lines, without
// the CLI adapter needing to know the concrete result type.
type renderable interface {
	RenderAsJSON() map[string]any
	RenderAsMarkdown(revealInternals bool) []string
}

// render writes r to cmd's output stream as JSON (--json) or Markdown
// (default), the two renderings spec.md §4.J and §9 require every
// result and error to support.
func render(cmd *cobra.Command, r renderable) error {
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(r.RenderAsJSON())
	}
	for _, line := range r.RenderAsMarkdown(debugMode) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return err
		}
	}
	return nil
}
