// Package capability builds the ProcessorCapabilities record shared by
// every built-in processor (spec.md §4.I), so the numeric hints and
// filter/type lists are assembled the same way everywhere.
package capability

import "github.com/emcd/librovore/internal/objects"

// Builder accumulates a ProcessorCapabilities record.
type Builder struct {
	inventoryTypes []string
	filters        []string
	meanDetectMs   int64
	maxPayload     int64
}

func New() *Builder {
	return &Builder{}
}

func (b *Builder) InventoryTypes(types ...string) *Builder {
	b.inventoryTypes = append(b.inventoryTypes, types...)
	return b
}

func (b *Builder) Filters(filters ...string) *Builder {
	b.filters = append(b.filters, filters...)
	return b
}

func (b *Builder) MeanDetectionMs(ms int64) *Builder {
	b.meanDetectMs = ms
	return b
}

func (b *Builder) MaxPayloadBytes(n int64) *Builder {
	b.maxPayload = n
	return b
}

func (b *Builder) Build() objects.ProcessorCapabilities {
	return objects.ProcessorCapabilities{
		SupportedInventoryTypes: b.inventoryTypes,
		SupportedFilters:        b.filters,
		MeanDetectionMs:         b.meanDetectMs,
		MaxPayloadBytes:         b.maxPayload,
	}
}
