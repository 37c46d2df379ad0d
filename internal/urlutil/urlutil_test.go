package urlutil

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin_ResolvesRelativeAgainstBase(t *testing.T) {
	got, err := Join("https://example.io/pkg/objects.inv", "api/foo.html#foo")
	require.NoError(t, err)
	assert.Equal(t, "https://example.io/pkg/api/foo.html#foo", got)
}

func TestDeriveCandidates_OrderMatchesSpec(t *testing.T) {
	var got []string
	for c := range DeriveCandidates("https://ex.io/pkg") {
		got = append(got, c)
	}
	want := []string{
		"https://ex.io/pkg",
		"https://ex.io/pkg/en/latest/",
		"https://ex.io/pkg/latest/",
		"https://ex.io/pkg/main/",
		"https://ex.io/pkg/stable/",
	}
	assert.Equal(t, want, got)
}

func TestDeriveCandidates_IsLazy(t *testing.T) {
	var seen []string
	for c := range DeriveCandidates("https://ex.io/pkg") {
		seen = append(seen, c)
		if len(seen) == 2 {
			break
		}
	}
	assert.Len(t, seen, 2)
}

func TestRedirectCache_NormalizeLocation_DefaultsToInput(t *testing.T) {
	cache := NewRedirectCache()
	assert.Equal(t, "https://ex.io/pkg", cache.NormalizeLocation("https://ex.io/pkg"))
}

func TestRedirectCache_RedirectConvergence(t *testing.T) {
	cache := NewRedirectCache()
	cache.Record("https://ex.io/pkg", "https://ex.io/pkg/en/latest/")

	assert.Equal(t, "https://ex.io/pkg/en/latest/", cache.NormalizeLocation("https://ex.io/pkg"))
	// A second call behaves identically - repeatable, not one-shot.
	assert.Equal(t, "https://ex.io/pkg/en/latest/", cache.NormalizeLocation("https://ex.io/pkg"))
}

func TestDeriveCandidatesFrom_CustomSuffixes(t *testing.T) {
	var got []string
	for c := range DeriveCandidatesFrom("https://ex.io/pkg", []string{"", "/v2/"}) {
		got = append(got, c)
	}
	assert.True(t, slices.Equal([]string{"https://ex.io/pkg", "https://ex.io/pkg/v2/"}, got))
}
