// Package sphinx implements the Sphinx `objects.inv` inventory
// processor and the matching structure (HTML→Markdown) processor from
// spec.md §4.E.1 and §4.F.1.
package sphinx

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/emcd/librovore/internal/objects"
	"github.com/emcd/librovore/internal/processors"
	"github.com/emcd/librovore/internal/processors/capability"
	"github.com/emcd/librovore/internal/urlutil"

	domainerrors "github.com/emcd/librovore/internal/errors"
)

// InventoryType is the format tag attached to every object this
// processor produces.
const InventoryType = "sphinx_objects_inv"

// ProcessorName identifies this processor in detection results and
// explicit processor_name overrides.
const ProcessorName = "sphinx"

const headerMagic = "# Sphinx inventory version 2"

// InventoryProcessor implements processors.InventoryProcessor for
// Sphinx's `objects.inv` format.
type InventoryProcessor struct{}

// NewInventoryProcessor constructs the Sphinx inventory processor.
func NewInventoryProcessor() *InventoryProcessor {
	return &InventoryProcessor{}
}

func (p *InventoryProcessor) Name() string { return ProcessorName }

func (p *InventoryProcessor) Capabilities() objects.ProcessorCapabilities {
	return capability.New().
		InventoryTypes(InventoryType).
		Filters("domain", "role", "priority", "uri_prefix", "name_regex").
		MeanDetectionMs(200).
		MaxPayloadBytes(10 * 1024 * 1024).
		Build()
}

func objectsInvURL(location string) string {
	return urlutil.EnsureTrailingSlash(location) + "objects.inv"
}

// Detect probes location/objects.inv per spec.md §4.E.1's confidence
// schedule: 0.95 for >=10 records, 0.7 for >=1, nil otherwise.
func (p *InventoryProcessor) Detect(ctx context.Context, location string, fetcher processors.Fetcher) (*objects.Detection, error) {
	start := time.Now()
	raw, err := fetcher.FetchBytes(ctx, objectsInvURL(location))
	if err != nil {
		return nil, nil
	}

	records, parseErr := parseInventory(raw)
	if parseErr != nil {
		return nil, nil
	}

	var confidence float64
	switch {
	case len(records) >= 10:
		confidence = 0.95
	case len(records) >= 1:
		confidence = 0.7
	default:
		return nil, nil
	}

	return &objects.Detection{
		ProcessorName: p.Name(),
		Confidence:    confidence,
		ProcessorType: objects.GenusInventory,
		DetectionMetadata: map[string]any{
			"record_count":   len(records),
			"inventory_type": InventoryType,
			"detect_time_ms": time.Since(start).Milliseconds(),
		},
	}, nil
}

// Acquire fetches and fully normalizes the inventory at location.
func (p *InventoryProcessor) Acquire(ctx context.Context, location string, fetcher processors.Fetcher) (map[string]objects.InventoryObject, error) {
	url := objectsInvURL(location)
	raw, err := fetcher.FetchBytes(ctx, url)
	if err != nil {
		return nil, domainerrors.InventoryInaccessibility(url, err)
	}

	records, err := parseInventory(raw)
	if err != nil {
		return nil, domainerrors.InventoryInvalidity(url, err.Error(), err)
	}

	renderer := newSpecificsRenderer()
	result := make(map[string]objects.InventoryObject, len(records))
	for _, rec := range records {
		uri := rec.uri
		if strings.HasSuffix(uri, "$") {
			uri = strings.TrimSuffix(uri, "$") + rec.name
		}
		displayName := rec.dispname
		if displayName == "-" {
			displayName = ""
		}

		specifics := map[string]string{
			"domain":   rec.domain,
			"role":     rec.role,
			"priority": rec.priority,
			"project":  rec.project,
			"version":  rec.version,
		}

		// Duplicate names are legal per spec.md's open question on
		// Sphinx inventories; disambiguate by appending the role so
		// both survive search and both key entries resolve uniquely.
		key := rec.name
		if _, exists := result[key]; exists {
			key = fmt.Sprintf("%s (%s)", rec.name, rec.role)
			if displayName == "" {
				displayName = rec.name
			}
			displayName = fmt.Sprintf("%s (%s)", displayName, rec.role)
		}

		obj, err := objects.NewInventoryObject(rec.name, uri, InventoryType, url, displayName, specifics, renderer)
		if err != nil {
			continue
		}
		result[key] = obj
	}

	return result, nil
}

// Filter applies spec.md §4.E.3's recognized filter keys.
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

	domainSet, hasDomain := toSet(filters["domain"])
	roleSet, hasRole := toSet(filters["role"])
	var priority string
	if v, ok := filters["priority"]; ok {
		priority, _ = objects.ToString(v)
	}
	var uriPrefix string
	if v, ok := filters["uri_prefix"]; ok {
		uriPrefix, _ = objects.ToString(v)
	}

	result := make([]objects.InventoryObject, 0, len(objs))
	for _, obj := range objs {
		if hasDomain && !domainSet[obj.Specifics["domain"]] {
			continue
		}
		if hasRole && !roleSet[obj.Specifics["role"]] {
			continue
		}
		if priority != "" && obj.Specifics["priority"] != priority {
			continue
		}
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

func toSet(v any) (map[string]bool, bool) {
	if v == nil {
		return nil, false
	}
	values, ok := objects.ToStringSlice(v)
	if !ok || len(values) == 0 {
		return nil, false
	}
	set := make(map[string]bool, len(values))
	for _, s := range values {
		set[s] = true
	}
	return set, true
}

type inventoryRecord struct {
	name, domain, role, priority, uri, dispname, project, version string
}

// parseInventory implements spec.md §4.E.1's parsing algorithm: a
// 4-line ASCII header, then a zlib stream of
// "name domain:role priority uri dispname\n" records, split on single
// spaces with dispname as the rest-of-line.
func parseInventory(raw []byte) ([]inventoryRecord, error) {
	reader := bufio.NewReader(bytes.NewReader(raw))

	magic, err := readLine(reader)
	if err != nil {
		return nil, fmt.Errorf("missing inventory header: %w", err)
	}
	if strings.TrimSpace(magic) != headerMagic {
		return nil, fmt.Errorf("unsupported inventory header %q (only v2 is supported)", magic)
	}

	projectLine, err := readLine(reader)
	if err != nil {
		return nil, fmt.Errorf("missing project header line: %w", err)
	}
	project := strings.TrimPrefix(strings.TrimSpace(projectLine), "# Project:")
	project = strings.TrimSpace(project)

	versionLine, err := readLine(reader)
	if err != nil {
		return nil, fmt.Errorf("missing version header line: %w", err)
	}
	version := strings.TrimPrefix(strings.TrimSpace(versionLine), "# Version:")
	version = strings.TrimSpace(version)

	if _, err := readLine(reader); err != nil {
		return nil, fmt.Errorf("missing compression header line: %w", err)
	}

	zr, err := zlib.NewReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open zlib stream: %w", err)
	}
	defer zr.Close()

	body, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress inventory body: %w", err)
	}

	var records []inventoryRecord
	for _, line := range strings.Split(string(body), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 5)
		if len(fields) != 5 {
			continue
		}
		name, domainRole, priority, uri, dispname := fields[0], fields[1], fields[2], fields[3], fields[4]
		domain, role, ok := strings.Cut(domainRole, ":")
		if !ok {
			continue
		}
		records = append(records, inventoryRecord{
			name: name, domain: domain, role: role, priority: priority,
			uri: uri, dispname: dispname, project: project, version: version,
		})
	}
	return records, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSuffix(line, "\n"), nil
}
