package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderable struct{ revealed bool }

func (r *fakeRenderable) RenderAsJSON() map[string]any {
	return map[string]any{"ok": true}
}

func (r *fakeRenderable) RenderAsMarkdown(revealInternals bool) []string {
	r.revealed = revealInternals
	return []string{"# Result", "ok"}
}

func TestRender_JSONFlagEncodesJSON(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	cmd := &cobra.Command{}
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)

	require.NoError(t, render(cmd, &fakeRenderable{}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, true, decoded["ok"])
}

func TestRender_DefaultEncodesMarkdown(t *testing.T) {
	cmd := &cobra.Command{}
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)

	r := &fakeRenderable{}
	require.NoError(t, render(cmd, r))
	assert.Contains(t, buf.String(), "# Result")
	assert.Contains(t, buf.String(), "ok")
}

func TestRender_PassesDebugModeAsRevealInternals(t *testing.T) {
	debugMode = true
	defer func() { debugMode = false }()

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	r := &fakeRenderable{}
	require.NoError(t, render(cmd, r))
	assert.True(t, r.revealed)
}
