package cmd

import (
	"github.com/spf13/cobra"

	"github.com/emcd/librovore/internal/objects"
)

func newSurveyCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "survey <genus>",
		Short: "List registered processors and their capabilities",
		Long:  "List registered processors and their capabilities. <genus> is inventory or structure.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			genus := objects.Genus(args[0])
			if genus != objects.GenusInventory && genus != objects.GenusStructure {
				return newUsageError("genus must be %q or %q, got %q", objects.GenusInventory, objects.GenusStructure, args[0])
			}

			svc, core, err := buildService(cmd.Context())
			if err != nil {
				return err
			}
			defer core.Close()

			result := svc.SurveyProcessors(genus, name)
			return render(cmd, result)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Restrict the survey to one processor name")

	return cmd
}
