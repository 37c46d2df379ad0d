// Package core wires the fetch proxy, processor registry, redirect
// cache, and detection orchestrator into the single shared instance
// spec.md §5 requires: one Core per process, reused by every query
// operation and MCP tool invocation so caches and connection pools
// actually amortize across calls.
package core

import (
	"time"

	"github.com/emcd/librovore/internal/config"
	"github.com/emcd/librovore/internal/detect"
	"github.com/emcd/librovore/internal/fetch"
	"github.com/emcd/librovore/internal/processors"
	"github.com/emcd/librovore/internal/processors/mkdocs"
	"github.com/emcd/librovore/internal/processors/sphinx"
	"github.com/emcd/librovore/internal/search"
	"github.com/emcd/librovore/internal/urlutil"
	"github.com/emcd/librovore/pkg/version"
)

// Core owns every process-wide shared resource: the fetch proxy (and
// its HTTP cache/semaphores), the processor registry, the redirect
// cache, and the detection orchestrator built atop them.
type Core struct {
	Config       *config.Config
	Fetcher      *fetch.Proxy
	Registry     *processors.Registry
	Redirects    *urlutil.RedirectCache
	Orchestrator *detect.Orchestrator
	SearchOpts   search.Options
}

// New builds a Core from cfg, registering the built-in Sphinx and
// MkDocs processors. Callers needing additional processors (spec.md
// §4.I plugins) should call Registry.Register after construction,
// before the first query.
func New(cfg *config.Config) (*Core, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}

	fetchCfg := fetch.DefaultConfig("librovore/" + version.Short())
	fetchCfg.Timeout = time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	fetchCfg.MaxConcurrency = cfg.HTTP.MaxConcurrency
	fetchCfg.PerHostConcurrency = cfg.HTTP.PerHostConcurrency
	fetchCfg.RobotsStrict = cfg.Robots.Strict
	fetcher := fetch.New(fetchCfg)

	registry := processors.NewRegistry()
	registry.RegisterInventory(sphinx.NewInventoryProcessor())
	registry.RegisterStructure(sphinx.NewStructureProcessor())
	registry.RegisterInventory(mkdocs.NewInventoryProcessor())
	registry.RegisterStructure(mkdocs.NewStructureProcessor())

	redirects := urlutil.NewRedirectCache()

	ttl := time.Duration(cfg.Detection.TTLSeconds) * time.Second
	orchestrator := detect.New(fetcher, registry, redirects, ttl, cfg.HTTP.MaxConcurrency)

	searchOpts := search.Options{
		Mode:           search.ModeFuzzy,
		FuzzyThreshold: cfg.Search.FuzzyThreshold,
	}

	return &Core{
		Config:       cfg,
		Fetcher:      fetcher,
		Registry:     registry,
		Redirects:    redirects,
		Orchestrator: orchestrator,
		SearchOpts:   searchOpts,
	}, nil
}

// Close releases the HTTP cache held by the fetch proxy. It does not
// error: nothing Core owns requires graceful teardown beyond dropping
// references, but the method exists so callers have one place to add
// it if that changes.
func (c *Core) Close() {
	if c.Fetcher != nil {
		c.Fetcher.Purge()
	}
}
