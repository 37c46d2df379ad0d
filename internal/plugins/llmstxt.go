// Package plugins demonstrates spec.md §4.I's dynamic registration
// hook: a processor pair built entirely outside internal/processors,
// wired into a Registry through Registry.Register rather than the
// registry's own constructor. It implements the emerging llms.txt
// convention — a plain-Markdown link index some documentation sites
// publish at /llms.txt — as a third inventory format alongside Sphinx
// and MkDocs.
package plugins

import (
	"bufio"
	"context"
	"strings"
	"time"

	domainerrors "github.com/emcd/librovore/internal/errors"
	"github.com/emcd/librovore/internal/objects"
	"github.com/emcd/librovore/internal/processors"
	"github.com/emcd/librovore/internal/processors/capability"
	"github.com/emcd/librovore/internal/urlutil"
)

const InventoryType = "llmstxt_index"
const ProcessorName = "llmstxt"

const indexPath = "llms.txt"

// linkEntry is one parsed `- [title](url): description` line.
type linkEntry struct {
	title       string
	uri         string
	description string
}

// InventoryProcessor implements processors.InventoryProcessor for
// llms.txt link indexes.
type InventoryProcessor struct{}

func NewInventoryProcessor() *InventoryProcessor { return &InventoryProcessor{} }

func (p *InventoryProcessor) Name() string { return ProcessorName }

func (p *InventoryProcessor) Capabilities() objects.ProcessorCapabilities {
	return capability.New().
		InventoryTypes(InventoryType).
		Filters("name_regex").
		MeanDetectionMs(200).
		MaxPayloadBytes(2 * 1024 * 1024).
		Build()
}

// probe fetches llms.txt at location and parses its link entries.
func probe(ctx context.Context, location string, fetcher processors.Fetcher) ([]linkEntry, string, error) {
	url := urlutil.EnsureTrailingSlash(location) + indexPath
	body, _, _, err := fetcher.FetchText(ctx, url)
	if err != nil {
		return nil, "", err
	}
	entries := parseLinks(body)
	if len(entries) == 0 {
		return nil, "", domainerrors.InventoryInvalidity(url, "llms.txt has no parseable link entries", nil)
	}
	return entries, url, nil
}

// parseLinks recognizes Markdown list items of the form
// `- [title](url): description`, the llms.txt convention's link
// section format. Lines that don't match are ignored rather than
// treated as a parse failure, since llms.txt files mix prose and
// links freely.
func parseLinks(body string) []linkEntry {
	var entries []linkEntry
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "- [") && !strings.HasPrefix(line, "* [") {
			continue
		}
		rest := line[3:]
		titleEnd := strings.Index(rest, "](")
		if titleEnd < 0 {
			continue
		}
		title := rest[:titleEnd]
		rest = rest[titleEnd+2:]
		uriEnd := strings.Index(rest, ")")
		if uriEnd < 0 {
			continue
		}
		uri := rest[:uriEnd]
		description := strings.TrimPrefix(strings.TrimSpace(rest[uriEnd+1:]), ":")
		entries = append(entries, linkEntry{
			title:       title,
			uri:         uri,
			description: strings.TrimSpace(description),
		})
	}
	return entries
}

// Detect probes for llms.txt and reports confidence proportional to
// entry count, mirroring mkdocs's doc-count schedule: 0.85 for >=5
// entries, 0.6 for >=1, nil otherwise.
func (p *InventoryProcessor) Detect(ctx context.Context, location string, fetcher processors.Fetcher) (*objects.Detection, error) {
	start := time.Now()
	entries, url, err := probe(ctx, location, fetcher)
	if err != nil {
		return nil, nil
	}

	var confidence float64
	switch {
	case len(entries) >= 5:
		confidence = 0.85
	case len(entries) >= 1:
		confidence = 0.6
	default:
		return nil, nil
	}

	return &objects.Detection{
		ProcessorName: p.Name(),
		Confidence:    confidence,
		ProcessorType: objects.GenusInventory,
		DetectionMetadata: map[string]any{
			"entry_count":    len(entries),
			"inventory_type": InventoryType,
			"index_url":      url,
			"detect_time_ms": time.Since(start).Milliseconds(),
		},
	}, nil
}

// Acquire fetches and normalizes llms.txt's link entries into
// InventoryObjects.
func (p *InventoryProcessor) Acquire(ctx context.Context, location string, fetcher processors.Fetcher) (map[string]objects.InventoryObject, error) {
	entries, url, err := probe(ctx, location, fetcher)
	if err != nil {
		if de, ok := err.(*domainerrors.DomainError); ok {
			return nil, de
		}
		return nil, domainerrors.InventoryInaccessibility(url, err)
	}

	out := make(map[string]objects.InventoryObject, len(entries))
	for _, e := range entries {
		obj, err := objects.NewInventoryObject(e.title, e.uri, InventoryType, url, "",
			map[string]string{"description": e.description}, nil)
		if err != nil {
			continue
		}
		out[e.title] = obj
	}
	return out, nil
}

// Filter applies name_regex, the only filter this format recognizes
// (spec.md §4.E.3's warn-don't-drop rule for unrecognized keys). Its
// value is matched as a case-insensitive substring of the name, not
// compiled as a regular expression.
func (p *InventoryProcessor) Filter(objs map[string]objects.InventoryObject, filters objects.Filters) ([]objects.InventoryObject, []string, error) {
	var warnings []string
	pattern, hasPattern := objects.ToString(filters["name_regex"])
	for key := range filters {
		if key != "name_regex" {
			warnings = append(warnings, "llmstxt: unrecognized filter key "+key)
		}
	}

	out := make([]objects.InventoryObject, 0, len(objs))
	for _, o := range objs {
		if hasPattern && !strings.Contains(strings.ToLower(o.Name), strings.ToLower(pattern)) {
			continue
		}
		out = append(out, o)
	}
	return out, warnings, nil
}
