package cmd

import (
	"github.com/spf13/cobra"

	"github.com/emcd/librovore/internal/mcpserver"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Long: `Start librovore as an MCP server, exposing detect, survey_processors,
query_inventory, query_content, and summarize as tools over the
Model Context Protocol, for use by AI coding assistants.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, core, err := buildService(cmd.Context())
			if err != nil {
				return err
			}
			defer core.Close()

			srv, err := mcpserver.NewServer(svc)
			if err != nil {
				return err
			}
			return srv.Serve(cmd.Context())
		},
	}

	return cmd
}
