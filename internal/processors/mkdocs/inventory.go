// Package mkdocs implements the MkDocs search-index inventory
// processor and its matching structure processor from spec.md §4.E.2
// and §4.F.2.
package mkdocs

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/emcd/librovore/internal/objects"
	"github.com/emcd/librovore/internal/processors"
	"github.com/emcd/librovore/internal/processors/capability"
	"github.com/emcd/librovore/internal/urlutil"

	domainerrors "github.com/emcd/librovore/internal/errors"
)

const InventoryType = "mkdocs_search_index"
const ProcessorName = "mkdocs"

// candidatePaths is the probe order from spec.md §4.E.2.
var candidatePaths = []string{
	"search/search_index.json",
	"search_index.json",
	"assets/search/search_index.json",
}

type searchIndex struct {
	Docs []searchDoc `json:"docs"`
}

type searchDoc struct {
	Location string `json:"location"`
	Title    string `json:"title"`
	Text     string `json:"text"`
}

// InventoryProcessor implements processors.InventoryProcessor for
// MkDocs's generated search index.
type InventoryProcessor struct{}

func NewInventoryProcessor() *InventoryProcessor {
	return &InventoryProcessor{}
}

func (p *InventoryProcessor) Name() string { return ProcessorName }

func (p *InventoryProcessor) Capabilities() objects.ProcessorCapabilities {
	return capability.New().
		InventoryTypes(InventoryType).
		Filters("uri_prefix", "name_regex").
		MeanDetectionMs(250).
		MaxPayloadBytes(10 * 1024 * 1024).
		Build()
}

// probe fetches the first candidate search index that parses validly,
// returning the parsed index and the URL it was found at, or the last
// candidate's error when none of the candidates worked.
func probe(ctx context.Context, location string, fetcher processors.Fetcher) (*searchIndex, string, error) {
	base := urlutil.EnsureTrailingSlash(location)
	var lastErr error
	for _, path := range candidatePaths {
		url := base + path
		raw, err := fetcher.FetchBytes(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		idx, err := parseSearchIndex(raw)
		if err != nil {
			lastErr = err
			continue
		}
		return idx, url, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no search index candidate succeeded")
	}
	return nil, "", lastErr
}

func parseSearchIndex(raw []byte) (*searchIndex, error) {
	var idx searchIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("invalid JSON search index: %w", err)
	}
	if len(idx.Docs) == 0 {
		return nil, fmt.Errorf("search index has no docs")
	}
	for _, doc := range idx.Docs {
		if doc.Location == "" || doc.Title == "" {
			return nil, fmt.Errorf("search index doc missing location or title")
		}
	}
	return &idx, nil
}

// Detect probes the three candidate locations per spec.md §4.E.2's
// confidence schedule: 0.9 for >=10 docs, 0.7 for >=1, nil otherwise.
func (p *InventoryProcessor) Detect(ctx context.Context, location string, fetcher processors.Fetcher) (*objects.Detection, error) {
	start := time.Now()
	idx, url, err := probe(ctx, location, fetcher)
	if err != nil {
		return nil, nil
	}

	var confidence float64
	switch {
	case len(idx.Docs) >= 10:
		confidence = 0.9
	case len(idx.Docs) >= 1:
		confidence = 0.7
	default:
		return nil, nil
	}

	return &objects.Detection{
		ProcessorName: p.Name(),
		Confidence:    confidence,
		ProcessorType: objects.GenusInventory,
		DetectionMetadata: map[string]any{
			"doc_count":      len(idx.Docs),
			"inventory_type": InventoryType,
			"index_url":      url,
			"detect_time_ms": time.Since(start).Milliseconds(),
		},
	}, nil
}

// Acquire fetches and normalizes the search index at location.
func (p *InventoryProcessor) Acquire(ctx context.Context, location string, fetcher processors.Fetcher) (map[string]objects.InventoryObject, error) {
	idx, url, err := probe(ctx, location, fetcher)
	if err != nil {
		return nil, domainerrors.InventoryInaccessibility(url, err)
	}

	renderer := newSpecificsRenderer()
	result := make(map[string]objects.InventoryObject, len(idx.Docs))
	for _, doc := range idx.Docs {
		specifics := map[string]string{
			"object_type": "page",
			"domain":      "page",
			"role":        "doc",
			"priority":    "1",
		}
		obj, err := objects.NewInventoryObject(doc.Title, doc.Location, InventoryType, urlutil.EnsureTrailingSlash(location), "", specifics, renderer)
		if err != nil {
			continue
		}
		key := doc.Title
		if _, exists := result[key]; exists {
			key = doc.Title + " (" + doc.Location + ")"
		}
		result[key] = obj
	}
	return result, nil
}

// Filter applies the subset of spec.md §4.E.3's filter keys meaningful
// for MkDocs objects: domain/role/priority are constant across every
// object this processor produces, so only uri_prefix and name_regex
// discriminate.
func (p *InventoryProcessor) Filter(objs map[string]objects.InventoryObject, filters objects.Filters) ([]objects.InventoryObject, []string, error) {
	var warnings []string
	recognized := map[string]bool{
		"domain": true, "role": true, "priority": true, "uri_prefix": true, "name_regex": true,
	}
	for key := range filters {
		if !recognized[key] {
			warnings = append(warnings, fmt.Sprintf("unrecognized filter key %q ignored", key))
		}
	}

	var nameRe *regexp.Regexp
	if pattern, ok := filters["name_regex"]; ok {
		str, _ := objects.ToString(pattern)
		re, err := regexp.Compile(str)
		if err != nil {
			return nil, warnings, domainerrors.InventoryInvalidity("", fmt.Sprintf("invalid name_regex %q: %v", str, err), err)
		}
		nameRe = re
	}
	var uriPrefix string
	if v, ok := filters["uri_prefix"]; ok {
		uriPrefix, _ = objects.ToString(v)
	}

	result := make([]objects.InventoryObject, 0, len(objs))
	for _, obj := range objs {
		if uriPrefix != "" && !strings.HasPrefix(obj.URI, uriPrefix) {
			continue
		}
		if nameRe != nil && !nameRe.MatchString(obj.Name) {
			continue
		}
		result = append(result, obj)
	}
	return result, warnings, nil
}
