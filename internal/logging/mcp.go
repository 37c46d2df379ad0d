package logging

import (
	"log/slog"
)

// SetupMCPMode initializes logging for MCP server mode.
// stdio transport requires stdout to be used exclusively for JSON-RPC;
// any stray write to stdout or stderr corrupts the protocol stream. This
// logs only to file, in JSON, at debug level.
func SetupMCPMode() (func(), error) {
	return SetupMCPModeWithLevel("debug")
}

// SetupMCPModeWithLevel initializes MCP-safe logging with a specific level.
func SetupMCPModeWithLevel(level string) (func(), error) {
	cfg := Config{
		Level:         level,
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: false,
	}

	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, err
	}

	logger = WithComponent(logger, ComponentMCP)
	slog.SetDefault(logger)

	slog.Info("mcp logging initialized",
		slog.String("log_file", cfg.FilePath),
		slog.String("level", cfg.Level))

	return cleanup, nil
}
