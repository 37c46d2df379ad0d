package cmd

import (
	"github.com/spf13/cobra"

	"github.com/emcd/librovore/internal/query"
)

func newQueryContentCmd() *cobra.Command {
	var processorName string
	var searchMode string
	var fuzzyThreshold float64
	var filterFlags []string
	var contentID string
	var resultsMax int
	var linesMax int

	cmd := &cobra.Command{
		Use:   "query-content <location> [term]",
		Short: "Search a documentation site and extract matched pages as Markdown",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var term string
			if len(args) > 1 {
				term = args[1]
			}
			if term == "" && contentID == "" {
				return newUsageError("a term argument or --content-id is required")
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

			result, err := svc.QueryContent(cmd.Context(), args[0], term, query.ContentQueryParams{
				ProcessorName: processorName,
				SearchOpts:    opts,
				Filters:       filters,
				ContentID:     contentID,
				ResultsMax:    resultsMax,
				LinesMax:      linesMax,
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
	cmd.Flags().StringVar(&contentID, "content-id", "", "Fetch this exact object directly, from a prior result's content_id")
	cmd.Flags().IntVar(&resultsMax, "results-max", 10, "Maximum number of documents to return")
	cmd.Flags().IntVar(&linesMax, "lines-max", 0, "Truncate each document's Markdown body to this many lines (0 = unlimited)")

	return cmd
}
