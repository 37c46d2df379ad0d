package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emcd/librovore/internal/search"
)

func TestParseFilters_EmptyReturnsNil(t *testing.T) {
	filters, err := parseFilters(nil)
	require.NoError(t, err)
	assert.Nil(t, filters)
}

func TestParseFilters_ParsesKeyValuePairs(t *testing.T) {
	filters, err := parseFilters([]string{"domain=py", "role=function"})
	require.NoError(t, err)
	assert.Equal(t, "py", filters["domain"])
	assert.Equal(t, "function", filters["role"])
}

func TestParseFilters_RejectsMissingEquals(t *testing.T) {
	_, err := parseFilters([]string{"domain"})
	require.Error(t, err)
	var ue *usageError
	require.ErrorAs(t, err, &ue)
}

func TestSearchOptsFromFlags_DefaultsToFuzzy(t *testing.T) {
	opts, err := searchOptsFromFlags("", 0, 50)
	require.NoError(t, err)
	assert.Equal(t, search.ModeFuzzy, opts.Mode)
	assert.Equal(t, 50.0, opts.FuzzyThreshold)
}

func TestSearchOptsFromFlags_ExplicitThresholdOverridesConfigured(t *testing.T) {
	opts, err := searchOptsFromFlags("exact", 80, 50)
	require.NoError(t, err)
	assert.Equal(t, search.ModeExact, opts.Mode)
	assert.Equal(t, 80.0, opts.FuzzyThreshold)
}

func TestSearchOptsFromFlags_RejectsUnknownMode(t *testing.T) {
	_, err := searchOptsFromFlags("bogus", 0, 50)
	require.Error(t, err)
	var ue *usageError
	require.ErrorAs(t, err, &ue)
}
