package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/emcd/librovore/internal/objects"
	"github.com/emcd/librovore/internal/query"
	"github.com/emcd/librovore/internal/search"
)

func newQueryInventoryCmd() *cobra.Command {
	var processorName string
	var searchMode string
	var fuzzyThreshold float64
	var filterFlags []string
	var details bool
	var resultsMax int

	cmd := &cobra.Command{
		Use:   "query-inventory <location> [term]",
		Short: "Search a documentation site's inventory by name",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var term string
			if len(args) > 1 {
				term = args[1]
			}

			filters, err := parseFilters(filterFlags)
			if err != nil {
				return err
			}

			svc, core, err := buildService(cmd.Context())
			if err != nil {
				return err
			}
			defer core.Close()

			opts, err := searchOptsFromFlags(searchMode, fuzzyThreshold, core.Config.Search.FuzzyThreshold)
			if err != nil {
				return err
			}

			result, err := svc.QueryInventory(cmd.Context(), args[0], term, query.InventoryQueryParams{
				ProcessorName: processorName,
				SearchOpts:    opts,
				Filters:       filters,
				Details:       details,
				ResultsMax:    resultsMax,
			})
			if err != nil {
				return err
			}
			return render(cmd, result)
		},
	}

	cmd.Flags().StringVar(&processorName, "processor-name", "", "Explicit inventory processor name, bypassing automatic detection")
	cmd.Flags().StringVar(&searchMode, "search-mode", "fuzzy", "Search mode: exact, regex, or fuzzy")
	cmd.Flags().Float64Var(&fuzzyThreshold, "fuzzy-threshold", 0, "Minimum fuzzy similarity in [0,100] (default from config)")
	cmd.Flags().StringArrayVar(&filterFlags, "filter", nil, "Format-specific filter as key=value (repeatable)")
	cmd.Flags().BoolVar(&details, "details", false, "Include format-specific specifics fields in each result")
	cmd.Flags().IntVar(&resultsMax, "results-max", 5, "Maximum number of objects to return")

	return cmd
}

// parseFilters turns repeated --filter key=value flags into an
// objects.Filters map.
func parseFilters(flags []string) (objects.Filters, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	filters := make(objects.Filters, len(flags))
	for _, f := range flags {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return nil, newUsageError("--filter must be key=value, got %q", f)
		}
		filters[key] = value
	}
	return filters, nil
}

// searchOptsFromFlags validates searchMode and builds search.Options,
// falling back to the configured fuzzy threshold when none is given on
// the command line.
func searchOptsFromFlags(mode string, threshold, configuredThreshold float64) (search.Options, error) {
	var m search.Mode
	switch mode {
	case string(search.ModeExact):
		m = search.ModeExact
	case string(search.ModeRegex):
		m = search.ModeRegex
	case string(search.ModeFuzzy), "":
		m = search.ModeFuzzy
	default:
		return search.Options{}, newUsageError("search-mode must be exact, regex, or fuzzy, got %q", mode)
	}
	if threshold <= 0 {
		threshold = configuredThreshold
	}
	return search.Options{Mode: m, FuzzyThreshold: threshold}, nil
}
