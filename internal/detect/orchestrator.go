// Package detect implements the detection orchestrator from spec.md
// §4.G: candidate-URL iteration, concurrent per-candidate processor
// probing, confidence-based selection with the inventory precedence
// tiebreaker, and the per-genus DetectionsCache.
package detect

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	domainerrors "github.com/emcd/librovore/internal/errors"
	"github.com/emcd/librovore/internal/objects"
	"github.com/emcd/librovore/internal/processors"
	"github.com/emcd/librovore/internal/urlutil"
)

// DefaultTTL is the detection cache entry lifetime from spec.md §4.G.
const DefaultTTL = time.Hour

// DefaultConcurrency bounds per-candidate processor fan-out (spec.md
// §5's default of 8).
const DefaultConcurrency = 8

// ConfidenceThreshold is the minimum confidence a Detection must clear
// to be eligible for selection (spec.md §4.G step 4).
const ConfidenceThreshold = 0.5

// PrecedenceTolerance bounds how close two confidences must be before
// the inventory-genus precedence tiebreaker applies (spec.md §4.G
// step 4).
const PrecedenceTolerance = 0.05

type cacheEntry struct {
	detections []objects.Detection
	optimal    *objects.Detection
}

// Orchestrator owns the per-genus caches, the redirect table, and the
// processor registry it probes against.
type Orchestrator struct {
	fetcher     processors.Fetcher
	registry    *processors.Registry
	redirects   *urlutil.RedirectCache
	concurrency int64

	inventoryCache *lru.LRU[string, cacheEntry]
	structureCache *lru.LRU[string, cacheEntry]
}

// New constructs an Orchestrator. ttl <= 0 and concurrency <= 0 fall
// back to the spec.md §4.G/§5 defaults.
func New(fetcher processors.Fetcher, registry *processors.Registry, redirects *urlutil.RedirectCache, ttl time.Duration, concurrency int64) *Orchestrator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Orchestrator{
		fetcher:        fetcher,
		registry:       registry,
		redirects:      redirects,
		concurrency:    concurrency,
		inventoryCache: lru.NewLRU[string, cacheEntry](1024, nil, ttl),
		structureCache: lru.NewLRU[string, cacheEntry](1024, nil, ttl),
	}
}

func (o *Orchestrator) cacheFor(genus objects.Genus) *lru.LRU[string, cacheEntry] {
	if genus == objects.GenusStructure {
		return o.structureCache
	}
	return o.inventoryCache
}

// Detect implements spec.md §4.G's algorithm: normalize, check the
// cache, else iterate candidate URLs running every registered
// processor of genus concurrently per candidate until one clears
// ConfidenceThreshold.
func (o *Orchestrator) Detect(ctx context.Context, location string, genus objects.Genus) (*objects.DetectionsResult, error) {
	start := time.Now()
	loc := o.redirects.NormalizeLocation(location)

	cache := o.cacheFor(genus)
	if entry, ok := cache.Get(loc); ok {
		return o.resultFromCache(location, entry, genus)
	}

	var all []objects.Detection
	var optimal *objects.Detection
	var workingURL string

	for candidate := range urlutil.DeriveCandidates(loc) {
		detections, err := o.probeCandidate(ctx, candidate, genus)
		if err != nil {
			return nil, err
		}
		all = append(all, detections...)
		if best := selectOptimal(detections, genus); best != nil {
			optimal = best
			workingURL = candidate
			break
		}
	}

	cache.Add(loc, cacheEntry{detections: all, optimal: optimal})
	if workingURL != "" && workingURL != location {
		o.redirects.Record(location, workingURL)
	}

	if optimal == nil {
		return nil, domainerrors.ProcessorInavailability(location, string(genus), attemptedNames(all), true)
	}

	return &objects.DetectionsResult{
		Source:           location,
		Detections:       all,
		DetectionOptimal: optimal,
		TimeDetectionMs:  time.Since(start).Milliseconds(),
	}, nil
}

// DetectNamed is the explicit-name override path (spec.md §4.G): it
// bypasses candidate iteration and selection, running only the named
// processor against loc.
func (o *Orchestrator) DetectNamed(ctx context.Context, location string, genus objects.Genus, processorName string) (*objects.DetectionsResult, error) {
	start := time.Now()
	loc := o.redirects.NormalizeLocation(location)

	var det *objects.Detection
	switch genus {
	case objects.GenusInventory:
		p, ok := o.registry.InventoryByName(processorName)
		if !ok {
			return nil, domainerrors.ProcessorInavailability(location, string(genus), []string{processorName}, false)
		}
		found, err := p.Detect(ctx, loc, o.fetcher)
		if err != nil {
			return nil, err
		}
		det = found
	case objects.GenusStructure:
		p, ok := o.registry.StructureByName(processorName)
		if !ok {
			return nil, domainerrors.ProcessorInavailability(location, string(genus), []string{processorName}, false)
		}
		invDetections, err := o.probeInventory(ctx, loc)
		if err != nil {
			return nil, err
		}
		det = mirrorStructureDetection(invDetections, p)
	default:
		return nil, fmt.Errorf("unknown processor genus %q", genus)
	}

	if det == nil || det.Confidence < ConfidenceThreshold {
		return nil, domainerrors.ProcessorInavailability(location, string(genus), []string{processorName}, false)
	}

	return &objects.DetectionsResult{
		Source:           location,
		Detections:       []objects.Detection{*det},
		DetectionOptimal: det,
		TimeDetectionMs:  time.Since(start).Milliseconds(),
	}, nil
}

func (o *Orchestrator) resultFromCache(source string, entry cacheEntry, genus objects.Genus) (*objects.DetectionsResult, error) {
	if entry.optimal == nil {
		return nil, domainerrors.ProcessorInavailability(source, string(genus), attemptedNames(entry.detections), true)
	}
	return &objects.DetectionsResult{
		Source:           source,
		Detections:       entry.detections,
		DetectionOptimal: entry.optimal,
		TimeDetectionMs:  0,
	}, nil
}

func (o *Orchestrator) probeCandidate(ctx context.Context, candidate string, genus objects.Genus) ([]objects.Detection, error) {
	switch genus {
	case objects.GenusInventory:
		return o.probeInventory(ctx, candidate)
	case objects.GenusStructure:
		invDetections, err := o.probeInventory(ctx, candidate)
		if err != nil {
			return nil, err
		}
		best := selectOptimal(invDetections, objects.GenusInventory)
		if best == nil {
			return nil, nil
		}
		inventoryType, _ := best.DetectionMetadata["inventory_type"].(string)
		sp, ok := o.registry.StructureByInventoryType(inventoryType)
		if !ok {
			return nil, nil
		}
		if d := mirrorStructureDetection(invDetections, sp); d != nil {
			return []objects.Detection{*d}, nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown processor genus %q", genus)
	}
}

// mirrorStructureDetection resolves structure-genus "detection" for
// structure processors, which don't independently probe a location
// (spec.md §4.F never names a structure-side detect method): the
// structure processor carries whatever confidence its matching
// inventory processor reported for the type it supports.
func mirrorStructureDetection(invDetections []objects.Detection, sp processors.StructureProcessor) *objects.Detection {
	supported := make(map[string]bool, len(sp.SupportedInventoryTypes()))
	for _, t := range sp.SupportedInventoryTypes() {
		supported[t] = true
	}
	for _, d := range invDetections {
		inventoryType, _ := d.DetectionMetadata["inventory_type"].(string)
		if supported[inventoryType] {
			return &objects.Detection{
				ProcessorName: sp.Name(),
				Confidence:    d.Confidence,
				ProcessorType: objects.GenusStructure,
				DetectionMetadata: map[string]any{
					"inventory_type":              inventoryType,
					"mirrors_inventory_processor": d.ProcessorName,
				},
			}
		}
	}
	return nil
}

func (o *Orchestrator) probeInventory(ctx context.Context, candidate string) ([]objects.Detection, error) {
	procs := o.registry.InventoryProcessors()
	found := make([]*objects.Detection, len(procs))

	sem := semaphore.NewWeighted(o.concurrency)
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range procs {
		i, p := i, p
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			det, err := p.Detect(gctx, candidate, o.fetcher)
			if err != nil {
				return err
			}
			found[i] = det
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []objects.Detection
	for _, d := range found {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

// selectOptimal implements spec.md §4.G step 4: among detections at or
// above ConfidenceThreshold, pick the one sorted first by (descending
// confidence, ascending registration index), with the inventory-genus
// precedence tiebreaker applied when two confidences fall within
// PrecedenceTolerance of each other.
func selectOptimal(detections []objects.Detection, genus objects.Genus) *objects.Detection {
	var eligible []objects.Detection
	for _, d := range detections {
		if d.Confidence >= ConfidenceThreshold {
			eligible = append(eligible, d)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if genus == objects.GenusInventory && math.Abs(a.Confidence-b.Confidence) <= PrecedenceTolerance {
			ra, rb := precedenceRank(a), precedenceRank(b)
			if ra != rb {
				return ra < rb
			}
			return false
		}
		return a.Confidence > b.Confidence
	})

	return &eligible[0]
}

// precedenceRank implements spec.md §4.G's fixed tiebreaker:
// sphinx_objects_inv outranks mkdocs_search_index outranks everything
// else.
func precedenceRank(d objects.Detection) int {
	inventoryType, _ := d.DetectionMetadata["inventory_type"].(string)
	switch inventoryType {
	case "sphinx_objects_inv":
		return 0
	case "mkdocs_search_index":
		return 1
	default:
		return 2
	}
}

func attemptedNames(detections []objects.Detection) []string {
	names := make([]string, len(detections))
	for i, d := range detections {
		names[i] = d.ProcessorName
	}
	return names
}
