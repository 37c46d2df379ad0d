// Package search implements the universal search engine from spec.md
// §4.D: exact, regex, and fuzzy matching over inventory objects, with
// deterministic scoring and ranking. The engine never performs I/O.
package search

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	domainerrors "github.com/emcd/librovore/internal/errors"
	"github.com/emcd/librovore/internal/objects"
)

// Mode selects the matching strategy for FilterByName.
type Mode string

const (
	ModeExact Mode = "exact"
	ModeRegex Mode = "regex"
	ModeFuzzy Mode = "fuzzy"
)

// DefaultFuzzyThreshold is the spec.md §6 default for
// `search.fuzzy_threshold`.
const DefaultFuzzyThreshold = 50.0

// Options configures one FilterByName call.
type Options struct {
	Mode           Mode
	FuzzyThreshold float64 // in [0,100]
}

// FilterByName scores objects against term under the given mode and
// returns matches ordered by descending score, ties broken by ascending
// Object.Name (spec.md §4.D).
func FilterByName(objs []objects.InventoryObject, term string, opts Options) ([]objects.SearchResult, error) {
	threshold := opts.FuzzyThreshold
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}

	var matcher func(objects.InventoryObject) (objects.SearchResult, bool)
	switch opts.Mode {
	case ModeExact, "":
		matcher = func(o objects.InventoryObject) (objects.SearchResult, bool) {
			return matchExact(o, term)
		}
	case ModeRegex:
		re, err := regexp.Compile(term)
		if err != nil {
			return nil, domainerrors.InventoryInvalidity("", fmt.Sprintf("invalid regular expression %q: %v", term, err), err).
				WithContext("pattern", term)
		}
		matcher = func(o objects.InventoryObject) (objects.SearchResult, bool) {
			return matchRegex(o, re)
		}
	case ModeFuzzy:
		matcher = func(o objects.InventoryObject) (objects.SearchResult, bool) {
			return matchFuzzy(o, term, threshold)
		}
	default:
		return nil, fmt.Errorf("unknown search mode %q", opts.Mode)
	}

	results := make([]objects.SearchResult, 0, len(objs))
	for _, o := range objs {
		if result, ok := matcher(o); ok {
			results = append(results, result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Object.Name < results[j].Object.Name
	})

	return results, nil
}

func matchExact(o objects.InventoryObject, term string) (objects.SearchResult, bool) {
	if score, reason, ok := exactScore(o.Name, term, "name"); ok {
		return objects.SearchResult{Object: o, Score: score, MatchReasons: []string{reason}}, true
	}
	if o.DisplayName != "" {
		if score, reason, ok := exactScore(o.DisplayName, term, "display_name"); ok {
			return objects.SearchResult{Object: o, Score: score, MatchReasons: []string{reason}}, true
		}
	}
	return objects.SearchResult{}, false
}

func exactScore(field, term, fieldName string) (float64, string, bool) {
	switch {
	case field == term:
		return 1.0, fmt.Sprintf("%s is an exact match", fieldName), true
	case strings.HasPrefix(field, term):
		return 0.9, fmt.Sprintf("%s starts with %q", fieldName, term), true
	case strings.Contains(field, term):
		return 0.8, fmt.Sprintf("%s contains %q", fieldName, term), true
	default:
		return 0, "", false
	}
}

func matchRegex(o objects.InventoryObject, re *regexp.Regexp) (objects.SearchResult, bool) {
	loc := re.FindStringIndex(o.Name)
	if loc == nil {
		return objects.SearchResult{}, false
	}
	full := loc[0] == 0 && loc[1] == len(o.Name)
	score := 0.75
	reason := fmt.Sprintf("name partially matches /%s/", re.String())
	if full {
		score = 0.9
		reason = fmt.Sprintf("name fully matches /%s/", re.String())
	}
	return objects.SearchResult{Object: o, Score: score, MatchReasons: []string{reason}}, true
}

func matchFuzzy(o objects.InventoryObject, term string, threshold float64) (objects.SearchResult, bool) {
	similarity := PartialRatio(term, o.Name)
	if similarity < threshold {
		return objects.SearchResult{}, false
	}
	reason := fmt.Sprintf("name is %.0f%% similar to %q", similarity, term)
	return objects.SearchResult{Object: o, Score: similarity / 100.0, MatchReasons: []string{reason}}, true
}

// PartialRatio computes the canonical partial-ratio similarity from
// spec.md §4.D: the maximum Levenshtein-derived similarity of term
// against any substring of name with length len(term), normalized to
// [0,100].
func PartialRatio(term, name string) float64 {
	if term == "" || name == "" {
		return 0
	}
	if len(term) >= len(name) {
		return levenshtein.Match(term, name, nil) * 100
	}

	runes := []rune(name)
	termLen := len([]rune(term))
	if termLen >= len(runes) {
		return levenshtein.Match(term, name, nil) * 100
	}

	best := 0.0
	for start := 0; start+termLen <= len(runes); start++ {
		window := string(runes[start : start+termLen])
		similarity := levenshtein.Match(term, window, nil) * 100
		if similarity > best {
			best = similarity
		}
	}
	return best
}
