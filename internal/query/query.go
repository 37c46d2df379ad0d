// Package query implements the five public operations from spec.md
// §4.H on top of a *core.Core: detect, survey_processors,
// query_inventory, query_content, and summarize. Each normalizes its
// location first, then delegates into the detection orchestrator
// (§4.G), a processor's acquire/filter (§4.E), the search engine
// (§4.D), and structure extraction (§4.F) as needed, measuring wall
// time in milliseconds for its result metadata.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/emcd/librovore/internal/core"
	domainerrors "github.com/emcd/librovore/internal/errors"
	"github.com/emcd/librovore/internal/logging"
	"github.com/emcd/librovore/internal/objects"
	"github.com/emcd/librovore/internal/processors"
	"github.com/emcd/librovore/internal/search"
)

const (
	defaultInventoryResultsMax = 5
	defaultContentResultsMax   = 10
	inventoryCacheSize         = 256
)

// Service exposes spec.md §4.H's five operations atop a shared *core.Core.
type Service struct {
	core    *core.Core
	invMemo *lru.LRU[string, map[string]objects.InventoryObject]
}

// New constructs a Service. c must not be nil.
func New(c *core.Core) *Service {
	ttl := time.Duration(c.Config.Detection.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{
		core:    c,
		invMemo: lru.NewLRU[string, map[string]objects.InventoryObject](inventoryCacheSize, nil, ttl),
	}
}

// InventoryQueryParams bundles query_inventory's optional arguments.
type InventoryQueryParams struct {
	ProcessorName string
	SearchOpts    search.Options
	Filters       objects.Filters
	// Details, when false, omits format-specific Specifics from
	// returned objects (this engine's resolution of spec.md §4.H's
	// "details" parameter: see DESIGN.md).
	Details    bool
	ResultsMax int
}

// ContentQueryParams bundles query_content's optional arguments.
type ContentQueryParams struct {
	ProcessorName string
	SearchOpts    search.Options
	Filters       objects.Filters
	ContentID     string
	ResultsMax    int
	LinesMax      int
}

// Detect implements spec.md §4.H's `detect`. processorTypes defaults to
// both genera when empty. Detections across requested genera are
// merged into one DetectionsResult; when both genera are requested the
// inventory genus's optimum takes DetectionOptimal, since it is the
// detection everything downstream depends on.
func (s *Service) Detect(ctx context.Context, location, processorName string, processorTypes []objects.Genus) (*objects.DetectionsResult, error) {
	if len(processorTypes) == 0 {
		processorTypes = []objects.Genus{objects.GenusInventory, objects.GenusStructure}
	}

	start := time.Now()
	merged := objects.DetectionsResult{Source: location}
	var firstErr error

	for _, genus := range processorTypes {
		var result *objects.DetectionsResult
		var err error
		if processorName != "" {
			result, err = s.core.Orchestrator.DetectNamed(ctx, location, genus, processorName)
		} else {
			result, err = s.core.Orchestrator.Detect(ctx, location, genus)
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		merged.Detections = append(merged.Detections, result.Detections...)
		if merged.DetectionOptimal == nil || genus == objects.GenusInventory {
			merged.DetectionOptimal = result.DetectionOptimal
		}
	}

	merged.TimeDetectionMs = time.Since(start).Milliseconds()
	if merged.DetectionOptimal == nil {
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, domainerrors.ProcessorInavailability(location, "any", nil, true)
	}
	return &merged, nil
}

// SurveyProcessors implements spec.md §4.H's `survey_processors`.
func (s *Service) SurveyProcessors(genus objects.Genus, name string) objects.ProcessorsSurveyResult {
	return s.core.Registry.Survey(genus, name)
}

// QueryInventory implements spec.md §4.H's `query_inventory`.
func (s *Service) QueryInventory(ctx context.Context, location, term string, params InventoryQueryParams) (*objects.InventoryQueryResult, error) {
	start := time.Now()
	loc := s.core.Redirects.NormalizeLocation(location)

	proc, detection, workingLoc, err := s.resolveInventory(ctx, loc, params.ProcessorName)
	if err != nil {
		return nil, err
	}

	objs, err := s.acquireInventory(ctx, proc, workingLoc)
	if err != nil {
		return nil, err
	}

	filtered, warnings, err := proc.Filter(objs, params.Filters)
	if err != nil {
		return nil, err
	}
	logWarnings(ctx, "query_inventory", workingLoc, warnings)

	resultsMax := params.ResultsMax
	if resultsMax <= 0 {
		resultsMax = defaultInventoryResultsMax
	}

	var matched []objects.InventoryObject
	var matchesTotal int
	if term != "" {
		results, err := search.FilterByName(filtered, term, params.SearchOpts)
		if err != nil {
			return nil, err
		}
		matchesTotal = len(results)
		for _, r := range results {
			matched = append(matched, r.Object)
		}
	} else {
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Name < filtered[j].Name })
		matched = filtered
		matchesTotal = len(matched)
	}

	if len(matched) > resultsMax {
		matched = matched[:resultsMax]
	}
	if !params.Details {
		matched = stripSpecifics(matched)
	}

	inventoryType, _ := detection.DetectionMetadata["inventory_type"].(string)
	locations := []objects.InventoryLocationInfo{{
		InventoryType: inventoryType,
		LocationURL:   workingLoc,
		ProcessorName: detection.ProcessorName,
		Confidence:    detection.Confidence,
		ObjectCount:   len(objs),
	}}

	return &objects.InventoryQueryResult{
		Location: location,
		Query:    term,
		Objects:  matched,
		SearchMetadata: objects.SearchMetadata{
			ResultsCount: len(matched),
			ResultsMax:   resultsMax,
			MatchesTotal: matchesTotal,
			SearchTimeMs: time.Since(start).Milliseconds(),
		},
		InventoryLocations: locations,
	}, nil
}

// QueryContent implements spec.md §4.H's `query_content`, including the
// §4.F.4 browse-then-extract content_id resolution path.
func (s *Service) QueryContent(ctx context.Context, location, term string, params ContentQueryParams) (*objects.ContentQueryResult, error) {
	start := time.Now()
	loc := s.core.Redirects.NormalizeLocation(location)

	proc, detection, workingLoc, err := s.resolveInventory(ctx, loc, params.ProcessorName)
	if err != nil {
		return nil, err
	}

	inventoryType, _ := detection.DetectionMetadata["inventory_type"].(string)
	structProc, ok := s.core.Registry.StructureByInventoryType(inventoryType)
	if !ok {
		return nil, domainerrors.ContentInaccessibility(workingLoc, nil).
			WithContext("reason", fmt.Sprintf("no structure processor supports inventory_type %q", inventoryType))
	}

	objs, err := s.acquireInventory(ctx, proc, workingLoc)
	if err != nil {
		return nil, err
	}

	filtered, warnings, err := proc.Filter(objs, params.Filters)
	if err != nil {
		return nil, err
	}
	logWarnings(ctx, "query_content", workingLoc, warnings)

	resultsMax := params.ResultsMax
	if resultsMax <= 0 {
		resultsMax = defaultContentResultsMax
	}

	var selected []objects.InventoryObject
	var matchesTotal int

	if params.ContentID != "" {
		_, name, decodeErr := objects.DecodeContentID(params.ContentID)
		if decodeErr != nil {
			return nil, domainerrors.ContentInaccessibility(workingLoc, decodeErr).
				WithContext("content_id", params.ContentID)
		}
		found := false
		for _, o := range filtered {
			if o.Name == name {
				selected = []objects.InventoryObject{o}
				found = true
				break
			}
		}
		if !found {
			return nil, domainerrors.ContentInaccessibility(workingLoc, nil).
				WithContext("content_id", params.ContentID)
		}
		matchesTotal = 1
	} else {
		results, searchErr := search.FilterByName(filtered, term, params.SearchOpts)
		if searchErr != nil {
			return nil, searchErr
		}
		matchesTotal = len(results)
		for _, r := range results {
			selected = append(selected, r.Object)
		}
		if len(selected) > resultsMax {
			selected = selected[:resultsMax]
		}
	}

	docs, extractWarnings, err := structProc.Extract(ctx, selected, workingLoc, s.core.Fetcher, params.Filters, params.LinesMax)
	if err != nil {
		return nil, err
	}
	logWarnings(ctx, "query_content", workingLoc, extractWarnings)
	for i := range docs {
		docs[i].ExtractionMetadata.Warnings = append(docs[i].ExtractionMetadata.Warnings, warnings...)
		docs[i].ExtractionMetadata.Warnings = append(docs[i].ExtractionMetadata.Warnings, extractWarnings...)
	}

	locations := []objects.InventoryLocationInfo{{
		InventoryType: inventoryType,
		LocationURL:   workingLoc,
		ProcessorName: detection.ProcessorName,
		Confidence:    detection.Confidence,
		ObjectCount:   len(objs),
	}}

	return &objects.ContentQueryResult{
		Location: location,
		Query:    term,
		Documents: docs,
		SearchMetadata: objects.SearchMetadata{
			ResultsCount: len(docs),
			ResultsMax:   resultsMax,
			MatchesTotal: matchesTotal,
			SearchTimeMs: time.Since(start).Milliseconds(),
		},
		InventoryLocations: locations,
	}, nil
}

// Summarize implements spec.md §4.H's `summarize`: the full, unfiltered
// inventory listing with optional per-group counts (spec.md SPEC_FULL
// §10's `summarize` aggregation supplement).
func (s *Service) Summarize(ctx context.Context, location, groupBy string) (*objects.InventoryQueryResult, error) {
	start := time.Now()
	loc := s.core.Redirects.NormalizeLocation(location)

	proc, detection, workingLoc, err := s.resolveInventory(ctx, loc, "")
	if err != nil {
		return nil, err
	}

	objs, err := s.acquireInventory(ctx, proc, workingLoc)
	if err != nil {
		return nil, err
	}

	all := make([]objects.InventoryObject, 0, len(objs))
	for _, o := range objs {
		all = append(all, o)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	var grouped map[string]int
	if groupBy != "" {
		grouped = make(map[string]int)
		for _, o := range all {
			grouped[groupField(o, groupBy)]++
		}
	}

	inventoryType, _ := detection.DetectionMetadata["inventory_type"].(string)
	locations := []objects.InventoryLocationInfo{{
		InventoryType: inventoryType,
		LocationURL:   workingLoc,
		ProcessorName: detection.ProcessorName,
		Confidence:    detection.Confidence,
		ObjectCount:   len(objs),
	}}

	return &objects.InventoryQueryResult{
		Location: location,
		Objects:  all,
		SearchMetadata: objects.SearchMetadata{
			ResultsCount: len(all),
			ResultsMax:   len(all),
			MatchesTotal: len(all),
			SearchTimeMs: time.Since(start).Milliseconds(),
		},
		InventoryLocations: locations,
		GroupedSpecifics:   grouped,
	}, nil
}

// groupField reads a top-level grouping field off o: "inventory_type"
// reads the struct field itself, everything else reads Specifics
// (spec.md's Open Question resolution in DESIGN.md: group_by is
// restricted to top-level fields, never a nested or synthesized one).
func groupField(o objects.InventoryObject, groupBy string) string {
	if groupBy == "inventory_type" {
		return o.InventoryType
	}
	if v, ok := o.Specifics[groupBy]; ok {
		return v
	}
	return ""
}

// resolveInventory runs detection for the inventory genus (explicit
// processorName override or the orchestrator's own selection), then
// resolves the registered InventoryProcessor it named. It returns the
// working location detection actually succeeded against, which may
// differ from loc when url_patterns extension kicked in.
func (s *Service) resolveInventory(ctx context.Context, loc, processorName string) (processors.InventoryProcessor, *objects.Detection, string, error) {
	var result *objects.DetectionsResult
	var err error
	if processorName != "" {
		result, err = s.core.Orchestrator.DetectNamed(ctx, loc, objects.GenusInventory, processorName)
	} else {
		result, err = s.core.Orchestrator.Detect(ctx, loc, objects.GenusInventory)
	}
	if err != nil {
		return nil, nil, "", err
	}

	detection := result.DetectionOptimal
	proc, ok := s.core.Registry.InventoryByName(detection.ProcessorName)
	if !ok {
		return nil, nil, "", domainerrors.ProcessorInavailability(loc, string(objects.GenusInventory), []string{detection.ProcessorName}, false)
	}

	workingLoc := s.core.Redirects.NormalizeLocation(loc)
	return proc, detection, workingLoc, nil
}

// acquireInventory memoizes InventoryProcessor.Acquire by (processor,
// location): Acquire itself performs I/O on every call (see its
// doc comment in internal/processors), so the per-processor inventory
// cache spec.md §5 requires lives here, one layer up.
func (s *Service) acquireInventory(ctx context.Context, proc processors.InventoryProcessor, location string) (map[string]objects.InventoryObject, error) {
	key := proc.Name() + "|" + location
	if cached, ok := s.invMemo.Get(key); ok {
		return cached, nil
	}
	objs, err := proc.Acquire(ctx, location, s.core.Fetcher)
	if err != nil {
		return nil, err
	}
	s.invMemo.Add(key, objs)
	return objs, nil
}

// stripSpecifics clears Specifics on a copy of each object, for
// query_inventory calls with details=false.
func stripSpecifics(objs []objects.InventoryObject) []objects.InventoryObject {
	out := make([]objects.InventoryObject, len(objs))
	for i, o := range objs {
		o.Specifics = map[string]string{}
		out[i] = o
	}
	return out
}

// logWarnings surfaces processor warnings (unknown filter keys,
// per-object extraction failures) to the query-component log.
// InventoryQueryResult has no warnings field, so for query_inventory
// the log is their only channel; QueryContent also appends them to
// each returned document's extraction_metadata.warnings (see
// DESIGN.md).
func logWarnings(ctx context.Context, op, location string, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	logger := logging.WithComponent(slog.Default(), logging.ComponentQuery)
	for _, w := range warnings {
		logger.WarnContext(ctx, w, slog.String("op", op), slog.String("location", location))
	}
}
