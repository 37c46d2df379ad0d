package cmd

import (
	"github.com/spf13/cobra"

	"github.com/emcd/librovore/internal/objects"
)

func newDetectCmd() *cobra.Command {
	var processorName string
	var processorTypes []string

	cmd := &cobra.Command{
		Use:   "detect <location>",
		Short: "Probe a documentation site and report which processors can serve it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, core, err := buildService(cmd.Context())
			if err != nil {
				return err
			}
			defer core.Close()

			genera := make([]objects.Genus, 0, len(processorTypes))
			for _, t := range processorTypes {
				genera = append(genera, objects.Genus(t))
			}

			result, err := svc.Detect(cmd.Context(), args[0], processorName, genera)
			if err != nil {
				return err
			}
			return render(cmd, result)
		},
	}

	cmd.Flags().StringVar(&processorName, "processor-name", "", "Probe one named processor instead of the whole registry")
	cmd.Flags().StringSliceVar(&processorTypes, "processor-types", nil, "Restrict probing to these genera: inventory, structure (default both)")

	return cmd
}
