package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
)

// RenderAsJSON renders the error to the nested plain-data shape used by
// the MCP surface: {type, title, message, suggestion?, context{…}}.
func (e *DomainError) RenderAsJSON() map[string]any {
	out := map[string]any{
		"type":    string(e.Kind),
		"title":   e.Kind.title(),
		"message": e.Message,
	}
	if e.Suggestion != "" {
		out["suggestion"] = e.Suggestion
	}
	if len(e.Context) > 0 {
		out["context"] = e.Context
	}
	if e.Cause != nil {
		out["cause"] = e.Cause.Error()
	}
	return out
}

// RenderAsMarkdown renders the error as a sequence of Markdown lines.
func (e *DomainError) RenderAsMarkdown(revealInternals bool) []string {
	lines := []string{
		fmt.Sprintf("## %s", e.Kind.title()),
		"",
		e.Message,
	}
	if e.Suggestion != "" {
		lines = append(lines, "", fmt.Sprintf("**Suggestion:** %s", e.Suggestion))
	}
	if revealInternals && len(e.Context) > 0 {
		lines = append(lines, "", "**Context:**")
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("- `%s`: %v", k, e.Context[k]))
		}
	}
	if revealInternals && e.Cause != nil {
		lines = append(lines, "", fmt.Sprintf("**Cause:** %v", e.Cause))
	}
	return lines
}

// FormatForCLI renders a concise terminal-friendly message for err,
// falling back to err.Error() when it is not a *DomainError.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}
	var de *DomainError
	if stderrors.As(err, &de) {
		msg := fmt.Sprintf("Error: %s", de.Message)
		if de.Suggestion != "" {
			msg += fmt.Sprintf("\n  Hint: %s", de.Suggestion)
		}
		return msg
	}
	return fmt.Sprintf("Error: %s", err.Error())
}

// ExitCode maps err to the CLI exit code table in spec.md §6.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	kind, ok := GetKind(err)
	if !ok {
		return 64
	}
	switch kind {
	case KindProcessorInavailability:
		return 3
	case KindInventoryInaccessibility, KindContentInaccessibility:
		return 4
	case KindInventoryInvalidity, KindContentInvalidity:
		return 5
	default:
		return 64
	}
}
