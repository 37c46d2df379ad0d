// Package cmd provides the CLI commands for librovore.
package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/emcd/librovore/internal/config"
	"github.com/emcd/librovore/internal/core"
	domainerrors "github.com/emcd/librovore/internal/errors"
	"github.com/emcd/librovore/internal/logging"
	"github.com/emcd/librovore/internal/query"
	"github.com/emcd/librovore/pkg/version"
)

// Exit codes for the CLI adapter, per spec.md §6.
const (
	exitSuccess                 = 0
	exitUsageError               = 2
	exitProcessorInavailability  = 3
	exitInaccessibility          = 4
	exitInvalidity               = 5
	exitInternal                 = 64
)

// usageError marks a failure as caller-input misuse (bad flags or
// arguments), distinct from a *domainerrors.DomainError raised while
// actually running a query.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func newUsageError(format string, args ...any) error {
	return &usageError{fmt.Sprintf(format, args...)}
}

// Root flags.
var (
	jsonOutput bool
	configDir  string
	debugMode  bool

	loggingCleanup func()
)

// NewRootCmd creates the root command for the librovore CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "librovore",
		Short: "Documentation search and extraction engine",
		Long: `librovore detects, queries, and extracts content from published
documentation sites (Sphinx, MkDocs) without scraping their page
structure by hand — it reads each site's own machine inventory
(objects.inv, search_index.json) and exposes it as a uniform search
surface, over the CLI or as an MCP server for AI coding assistants.`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: startLogging,
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if loggingCleanup != nil {
				loggingCleanup()
				loggingCleanup = nil
			}
			return nil
		},
	}
	cmd.SetVersionTemplate("librovore version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON instead of Markdown")
	cmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory to search for a .librovore.yaml project config")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.librovore/logs/")

	cmd.AddCommand(newDetectCmd())
	cmd.AddCommand(newSurveyCmd())
	cmd.AddCommand(newQueryInventoryCmd())
	cmd.AddCommand(newQueryContentCmd())
	cmd.AddCommand(newSummarizeCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func startLogging(cmd *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}

	// serve runs the MCP stdio transport, which owns stdout exclusively
	// for JSON-RPC framing; route its logs to file only rather than
	// also echoing to stderr, in case a host multiplexes the two.
	if cmd.Name() == "serve" {
		cleanup, err := logging.SetupMCPModeWithLevel("debug")
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		loggingCleanup = cleanup
		return nil
	}

	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

// Execute runs the root command and returns a process exit code,
// derived from any returned error per spec.md §6's exit code table.
func Execute() int {
	cmd := NewRootCmd()
	err := cmd.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(cmd.ErrOrStderr(), err)
	return exitCode(err)
}

// exitCode maps a returned error to spec.md §6's exit codes.
func exitCode(err error) int {
	var ue *usageError
	if stderrors.As(err, &ue) {
		return exitUsageError
	}

	kind, ok := domainerrors.GetKind(err)
	if !ok {
		return exitInternal
	}
	switch kind {
	case domainerrors.KindProcessorInavailability:
		return exitProcessorInavailability
	case domainerrors.KindInventoryInaccessibility, domainerrors.KindContentInaccessibility:
		return exitInaccessibility
	case domainerrors.KindInventoryInvalidity, domainerrors.KindContentInvalidity:
		return exitInvalidity
	default:
		return exitInternal
	}
}

// buildService constructs the shared Core and query Service for a
// single CLI invocation. The CLI rebuilds this per process run, unlike
// the MCP server which keeps one Core for its whole lifetime (spec.md
// §5's "one Core per process" is satisfied either way: a CLI
// invocation is its own process).
func buildService(_ context.Context) (*query.Service, *core.Core, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	c, err := core.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to construct core: %w", err)
	}
	return query.New(c), c, nil
}
