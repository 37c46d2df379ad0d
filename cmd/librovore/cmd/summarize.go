package cmd

import (
	"github.com/spf13/cobra"
)

func newSummarizeCmd() *cobra.Command {
	var groupBy string

	cmd := &cobra.Command{
		Use:   "summarize <location>",
		Short: "List every object in a documentation site's inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, core, err := buildService(cmd.Context())
			if err != nil {
				return err
			}
			defer core.Close()

			result, err := svc.Summarize(cmd.Context(), args[0], groupBy)
			if err != nil {
				return err
			}
			return render(cmd, result)
		},
	}

	cmd.Flags().StringVar(&groupBy, "group-by", "", "A top-level specifics field (or inventory_type) to group object counts by")

	return cmd
}
