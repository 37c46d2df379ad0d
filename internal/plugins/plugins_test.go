package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emcd/librovore/internal/processors"
)

func TestRegister_WiresBothProcessorsIntoRegistry(t *testing.T) {
	registry := processors.NewRegistry()

	err := Register(registry)
	require.NoError(t, err)

	inv, ok := registry.InventoryByName(ProcessorName)
	require.True(t, ok)
	assert.Equal(t, ProcessorName, inv.Name())

	structure, ok := registry.StructureByName(ProcessorName)
	require.True(t, ok)
	assert.Equal(t, ProcessorName, structure.Name())
	assert.Contains(t, structure.SupportedInventoryTypes(), InventoryType)
}

func TestRegister_ResolvesByInventoryType(t *testing.T) {
	registry := processors.NewRegistry()
	require.NoError(t, Register(registry))

	structure, ok := registry.StructureByInventoryType(InventoryType)
	require.True(t, ok)
	assert.Equal(t, ProcessorName, structure.Name())
}
