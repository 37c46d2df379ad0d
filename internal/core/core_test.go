package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emcd/librovore/internal/config"
)

func TestNew_NilConfigUsesDefaults(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, config.NewConfig(), c.Config)
}

func TestNew_RegistersBuiltinProcessors(t *testing.T) {
	c, err := New(config.NewConfig())
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, p := range c.Registry.InventoryProcessors() {
		names[p.Name()] = true
	}
	assert.True(t, names["sphinx"])
	assert.True(t, names["mkdocs"])

	structNames := make(map[string]bool)
	for _, p := range c.Registry.StructureProcessors() {
		structNames[p.Name()] = true
	}
	assert.True(t, structNames["sphinx"])
	assert.True(t, structNames["mkdocs"])
}

func TestNew_WiresSearchOptionsFromConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Search.FuzzyThreshold = 72

	c, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, 72.0, c.SearchOpts.FuzzyThreshold)
}

func TestNew_SharesOneFetcherAndOrchestrator(t *testing.T) {
	c, err := New(config.NewConfig())
	require.NoError(t, err)
	require.NotNil(t, c.Fetcher)
	require.NotNil(t, c.Orchestrator)
	require.NotNil(t, c.Redirects)
}

func TestClose_NoPanicOnFreshCore(t *testing.T) {
	c, err := New(config.NewConfig())
	require.NoError(t, err)
	assert.NotPanics(t, func() { c.Close() })
}
