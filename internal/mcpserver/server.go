// Package mcpserver exposes internal/query's five operations as MCP
// tools via the official go-sdk, following the same
// mcp.AddTool(typed-input, typed-output-or-error) pattern the teacher
// used for its own search/index tools.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/emcd/librovore/internal/objects"
	"github.com/emcd/librovore/internal/query"
	"github.com/emcd/librovore/internal/search"
	"github.com/emcd/librovore/internal/logging"
	"github.com/emcd/librovore/pkg/version"
)

// Server is the MCP server for librovore. It bridges AI clients
// (Claude Code, Cursor, and similar) to the detection/query engine.
type Server struct {
	mcp    *mcp.Server
	query  *query.Service
	logger *slog.Logger
}

// NewServer constructs a Server wired to svc. svc must not be nil.
func NewServer(svc *query.Service) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("query service is required")
	}

	s := &Server{
		query:  svc,
		logger: logging.WithComponent(slog.Default(), logging.ComponentMCP),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "librovore",
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// MCPServer returns the underlying go-sdk server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Serve runs the server over stdio until ctx is canceled; it takes no
// transport argument. spec.md's Non-goals exclude MCP transport framing
// beyond the go-sdk's own protocol handling.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting MCP server", slog.String("transport", "stdio"))
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("MCP server stopped gracefully")
	return nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "detect",
		Description: "Probe a documentation site URL and report which inventory/structure processors can serve it, with confidence scores. Use before querying an unfamiliar site, or to diagnose why a query failed.",
	}, s.handleDetect)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "survey_processors",
		Description: "List registered inventory or structure processors and their capabilities (supported inventory types, recognized filters). Use to discover what a given processor can filter on before calling query_inventory.",
	}, s.handleSurveyProcessors)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "query_inventory",
		Description: "Search a documentation site's inventory (Sphinx objects.inv, MkDocs search index) by name. Returns matching objects with their URIs and format-specific metadata, without fetching page content.",
	}, s.handleQueryInventory)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "query_content",
		Description: "Search a documentation site and extract the matched pages' content as Markdown. Pass content_id from a prior result to fetch one exact object directly instead of searching again.",
	}, s.handleQueryContent)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "summarize",
		Description: "List every object in a documentation site's inventory, optionally grouped by a specifics field (e.g. domain) with per-group counts. Use to get an overview of a site before drilling in with query_inventory.",
	}, s.handleSummarize)

	s.logger.Debug("MCP tools registered", slog.Int("count", 5))
}

func (s *Server) handleDetect(ctx context.Context, _ *mcp.CallToolRequest, input DetectInput) (
	*mcp.CallToolResult, map[string]any, error,
) {
	if input.Location == "" {
		return nil, nil, NewInvalidParamsError("location is required")
	}

	genera := make([]objects.Genus, 0, len(input.ProcessorTypes))
	for _, t := range input.ProcessorTypes {
		genera = append(genera, objects.Genus(t))
	}

	result, err := s.query.Detect(ctx, input.Location, input.ProcessorName, genera)
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, result.RenderAsJSON(), nil
}

func (s *Server) handleSurveyProcessors(ctx context.Context, _ *mcp.CallToolRequest, input SurveyProcessorsInput) (
	*mcp.CallToolResult, map[string]any, error,
) {
	if input.Genus == "" {
		return nil, nil, NewInvalidParamsError("genus is required")
	}
	result := s.query.SurveyProcessors(objects.Genus(input.Genus), input.Name)
	return nil, result.RenderAsJSON(), nil
}

func (s *Server) handleQueryInventory(ctx context.Context, _ *mcp.CallToolRequest, input QueryInventoryInput) (
	*mcp.CallToolResult, map[string]any, error,
) {
	if input.Location == "" {
		return nil, nil, NewInvalidParamsError("location is required")
	}

	params := query.InventoryQueryParams{
		ProcessorName: input.ProcessorName,
		SearchOpts:    searchOptsFrom(input.SearchMode, input.FuzzyThreshold),
		Filters:       objects.Filters(input.Filters),
		Details:       input.Details,
		ResultsMax:    input.ResultsMax,
	}

	result, err := s.query.QueryInventory(ctx, input.Location, input.Term, params)
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, result.RenderAsJSON(), nil
}

func (s *Server) handleQueryContent(ctx context.Context, _ *mcp.CallToolRequest, input QueryContentInput) (
	*mcp.CallToolResult, map[string]any, error,
) {
	if input.Location == "" {
		return nil, nil, NewInvalidParamsError("location is required")
	}
	if input.Term == "" && input.ContentID == "" {
		return nil, nil, NewInvalidParamsError("term or content_id is required")
	}

	params := query.ContentQueryParams{
		ProcessorName: input.ProcessorName,
		SearchOpts:    searchOptsFrom(input.SearchMode, input.FuzzyThreshold),
		Filters:       objects.Filters(input.Filters),
		ContentID:     input.ContentID,
		ResultsMax:    input.ResultsMax,
		LinesMax:      input.LinesMax,
	}

	result, err := s.query.QueryContent(ctx, input.Location, input.Term, params)
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, result.RenderAsJSON(), nil
}

func (s *Server) handleSummarize(ctx context.Context, _ *mcp.CallToolRequest, input SummarizeInput) (
	*mcp.CallToolResult, map[string]any, error,
) {
	if input.Location == "" {
		return nil, nil, NewInvalidParamsError("location is required")
	}

	result, err := s.query.Summarize(ctx, input.Location, input.GroupBy)
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, result.RenderAsJSON(), nil
}

func searchOptsFrom(mode string, threshold float64) search.Options {
	opts := search.Options{Mode: search.ModeFuzzy, FuzzyThreshold: threshold}
	switch mode {
	case string(search.ModeExact):
		opts.Mode = search.ModeExact
	case string(search.ModeRegex):
		opts.Mode = search.ModeRegex
	case string(search.ModeFuzzy), "":
		opts.Mode = search.ModeFuzzy
	}
	return opts
}
