// Package urlutil implements the URL normalization, joining, and
// candidate-derivation helpers from spec.md §4.B, plus the process-wide
// RedirectCache the detection orchestrator owns exclusively (spec.md
// §3's Ownership rule).
package urlutil

import (
	"fmt"
	"iter"
	"net/url"
	"strings"
	"sync"
)

// Join resolves ref against base per RFC 3986, as used to turn an
// inventory object's relative URI into an absolute content URL.
func Join(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid relative URL %q: %w", ref, err)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// EnsureTrailingSlash appends "/" unless base already ends with one, so
// relative joins treat it as a directory rather than a file.
func EnsureTrailingSlash(base string) string {
	if strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}

// urlPatternCandidates is the fixed, ordered extension-candidate suffix
// list from spec.md §6 (`url_patterns.candidates`).
var urlPatternCandidates = []string{
	"",
	"/en/latest/",
	"/latest/",
	"/main/",
	"/stable/",
}

// DeriveCandidates lazily yields the ordered extension-candidate
// sequence from spec.md §4.B: the exact base, then base extended by
// each suffix of the fixed urlPatternCandidates list, in list order.
func DeriveCandidates(base string) iter.Seq[string] {
	trimmed := strings.TrimSuffix(base, "/")
	return func(yield func(string) bool) {
		for i, suffix := range urlPatternCandidates {
			var candidate string
			if i == 0 {
				candidate = base
			} else {
				candidate = trimmed + suffix
			}
			if !yield(candidate) {
				return
			}
		}
	}
}

// DeriveCandidatesFrom derives candidates from a custom, ordered suffix
// list (spec.md §6's `url_patterns.candidates` is caller-configurable).
func DeriveCandidatesFrom(base string, suffixes []string) iter.Seq[string] {
	trimmed := strings.TrimSuffix(base, "/")
	return func(yield func(string) bool) {
		for i, suffix := range suffixes {
			var candidate string
			if i == 0 && suffix == "" {
				candidate = base
			} else {
				candidate = trimmed + suffix
			}
			if !yield(candidate) {
				return
			}
		}
	}
}

// RedirectCache memoizes the working URL a source was successfully
// extended to, process-wide (spec.md §3). It is exclusively owned and
// written by the detection orchestrator; readers never observe a
// partially written entry because writes replace a single map entry
// under lock (last-writer-wins, per spec.md §5).
type RedirectCache struct {
	mu    sync.RWMutex
	table map[string]string
}

// NewRedirectCache constructs an empty RedirectCache.
func NewRedirectCache() *RedirectCache {
	return &RedirectCache{table: make(map[string]string)}
}

// NormalizeLocation returns the working URL for location via the
// redirect table when present, else location itself (spec.md §4.B).
func (c *RedirectCache) NormalizeLocation(location string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if working, ok := c.table[location]; ok {
		return working
	}
	return location
}

// Record stores original -> working, establishing redirect convergence:
// every subsequent NormalizeLocation(original) call returns working
// (spec.md §8).
func (c *RedirectCache) Record(original, working string) {
	if original == working {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table[original] = working
}
