package plugins

import (
	"github.com/emcd/librovore/internal/objects"
	"github.com/emcd/librovore/internal/processors"
)

// Register wires the llms.txt processor pair into registry through
// the dynamic hook (spec.md §4.I), exactly as an out-of-tree plugin
// package would: it imports only internal/processors' public
// interfaces, never the registry's own constructor internals.
func Register(registry *processors.Registry) error {
	if err := registry.Register(objects.GenusInventory, NewInventoryProcessor()); err != nil {
		return err
	}
	return registry.Register(objects.GenusStructure, NewStructureProcessor())
}
