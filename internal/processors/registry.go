package processors

import (
	"fmt"
	"sync"

	"github.com/emcd/librovore/internal/objects"
)

// Registry holds two name-keyed processor lists, one per genus, in
// registration order. Order matters: spec.md §4.G's selection
// algorithm breaks confidence ties by ascending registration index.
type Registry struct {
	mu        sync.RWMutex
	inventory []InventoryProcessor
	structure []StructureProcessor
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterInventory appends p to the inventory registry. Built-in
// processors register at startup; Register provides the same
// operation for externally supplied ones (spec.md §4.I).
func (r *Registry) RegisterInventory(p InventoryProcessor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inventory = append(r.inventory, p)
}

// RegisterStructure appends p to the structure registry.
func (r *Registry) RegisterStructure(p StructureProcessor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.structure = append(r.structure, p)
}

// Register is the dynamic hook from spec.md §4.I: it accepts any value
// implementing InventoryProcessor or StructureProcessor for the named
// genus, so a plugin package can register without this package
// knowing its concrete type.
func (r *Registry) Register(genus objects.Genus, processor any) error {
	switch genus {
	case objects.GenusInventory:
		p, ok := processor.(InventoryProcessor)
		if !ok {
			return fmt.Errorf("processor does not implement InventoryProcessor")
		}
		r.RegisterInventory(p)
	case objects.GenusStructure:
		p, ok := processor.(StructureProcessor)
		if !ok {
			return fmt.Errorf("processor does not implement StructureProcessor")
		}
		r.RegisterStructure(p)
	default:
		return fmt.Errorf("unknown processor genus %q", genus)
	}
	return nil
}

// InventoryProcessors returns a snapshot of the registered inventory
// processors in registration order.
func (r *Registry) InventoryProcessors() []InventoryProcessor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]InventoryProcessor, len(r.inventory))
	copy(out, r.inventory)
	return out
}

// StructureProcessors returns a snapshot of the registered structure
// processors in registration order.
func (r *Registry) StructureProcessors() []StructureProcessor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]StructureProcessor, len(r.structure))
	copy(out, r.structure)
	return out
}

// InventoryByName returns the registered inventory processor named
// name, or false.
func (r *Registry) InventoryByName(name string) (InventoryProcessor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.inventory {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// StructureByName returns the registered structure processor named
// name, or false.
func (r *Registry) StructureByName(name string) (StructureProcessor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.structure {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// StructureByInventoryType returns the first registered structure
// processor advertising support for inventoryType.
func (r *Registry) StructureByInventoryType(inventoryType string) (StructureProcessor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.structure {
		for _, t := range p.SupportedInventoryTypes() {
			if t == inventoryType {
				return p, true
			}
		}
	}
	return nil, false
}

// Survey builds the ProcessorsSurveyResult for genus, optionally
// filtered to a single name (spec.md §4.H's survey_processors).
func (r *Registry) Survey(genus objects.Genus, name string) objects.ProcessorsSurveyResult {
	result := objects.ProcessorsSurveyResult{Genus: genus}
	switch genus {
	case objects.GenusInventory:
		for _, p := range r.InventoryProcessors() {
			if name != "" && p.Name() != name {
				continue
			}
			result.Processors = append(result.Processors, objects.ProcessorDescriptor{
				Name: p.Name(), Genus: genus, Capabilities: p.Capabilities(),
			})
		}
	case objects.GenusStructure:
		for _, p := range r.StructureProcessors() {
			if name != "" && p.Name() != name {
				continue
			}
			result.Processors = append(result.Processors, objects.ProcessorDescriptor{
				Name: p.Name(), Genus: genus, Capabilities: p.Capabilities(),
			})
		}
	}
	return result
}
