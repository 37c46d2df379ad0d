// Package processors defines the inventory- and structure-processor
// contracts from spec.md §4.E/§4.F and the registry that resolves a
// name or genus to a concrete implementation.
package processors

import (
	"context"
	"net/http"

	"github.com/emcd/librovore/internal/objects"
)

// Fetcher is the subset of *fetch.Proxy every processor depends on.
// Processors take it as an interface so their tests can substitute a
// fake without standing up real HTTP servers for every case.
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
	FetchText(ctx context.Context, url string) (body string, finalURL string, headers http.Header, err error)
}

// InventoryProcessor implements spec.md §4.E's four-method contract.
type InventoryProcessor interface {
	Name() string

	// Detect probes location and returns a Detection when this format
	// is plausibly present, or nil when it is not. It never returns an
	// error for "not detected" - only for a context cancellation or
	// similar operational failure the caller should not mask.
	Detect(ctx context.Context, location string, fetcher Fetcher) (*objects.Detection, error)

	// Acquire retrieves and normalizes the full inventory at location.
	// Callers are responsible for caching; Acquire itself performs I/O
	// every call.
	Acquire(ctx context.Context, location string, fetcher Fetcher) (map[string]objects.InventoryObject, error)

	// Filter applies the format's recognized filter keys to objs,
	// purely in memory. Unrecognized keys are reported as warnings,
	// never silently dropped (spec.md §4.E.3).
	Filter(objs map[string]objects.InventoryObject, filters objects.Filters) (result []objects.InventoryObject, warnings []string, err error)

	Capabilities() objects.ProcessorCapabilities
}

// StructureProcessor implements spec.md §4.F's extraction contract.
type StructureProcessor interface {
	Name() string
	SupportedInventoryTypes() []string

	// Extract fetches and converts each object's content page into a
	// ContentDocument. linesMax <= 0 means unlimited.
	Extract(ctx context.Context, objs []objects.InventoryObject, baseURL string, fetcher Fetcher, filters objects.Filters, linesMax int) (docs []objects.ContentDocument, warnings []string, err error)

	Capabilities() objects.ProcessorCapabilities
}
