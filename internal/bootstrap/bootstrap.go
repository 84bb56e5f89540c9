// Package bootstrap builds the adapters, link store and diff cache that
// every refsync binary runs on.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"refsync/internal/adapters/citavi"
	"refsync/internal/adapters/registry"
	"refsync/internal/adapters/sqlite"
	"refsync/internal/adapters/zotero"
	"refsync/internal/application"
	"refsync/internal/config"
	"refsync/internal/logging"
)

// Runtime holds the wired dependencies of one process
type Runtime struct {
	Config   *config.Config
	Adapters *registry.Registry
	Links    *sqlite.LinkStore
	Diffs    *application.DiffCache
	Logger   zerolog.Logger
}

// Open configures logging, registers the enabled adapters and opens the
// link store
func Open(cfg *config.Config) (*Runtime, error) {
	logger := logging.NewLogger(&cfg.Log)
	logging.SetDefault(logger)

	rt := &Runtime{
		Config:   cfg,
		Adapters: Adapters(cfg, nil),
		Links:    sqlite.NewLinkStore(),
		Diffs:    application.NewDiffCache(cfg.Sync.DiffTTL),
		Logger:   logger,
	}
	if err := rt.Links.Open(cfg.Links.Path); err != nil {
		return nil, &application.StorageError{Op: "open link store", Err: err}
	}

	names := make([]string, 0, len(rt.Adapters.Adapters()))
	for _, a := range rt.Adapters.Adapters() {
		names = append(names, a.Application())
	}
	logger.Debug().
		Strs("applications", names).
		Str("links", rt.Links.Path()).
		Str("config", cfg.ConfigFile).
		Msg("runtime ready")
	return rt, nil
}

// Adapters registers Zotero when credentials are configured and Citavi
// unless it is disabled. hc overrides the HTTP client of both.
func Adapters(cfg *config.Config, hc *http.Client) *registry.Registry {
	reg := registry.New()
	if cfg.Zotero.Enabled() {
		var opts []zotero.ClientOption
		if hc != nil {
			opts = append(opts, zotero.WithHTTPClient(hc))
		}
		client := zotero.NewClient(cfg.Zotero.BaseURL, cfg.Zotero.APIKey, opts...)
		reg.Register(zotero.New(client, cfg.Zotero.UserID))
	}
	if !cfg.Citavi.Disabled {
		reg.Register(citavi.New(citavi.NewBridge(cfg.Citavi.BridgeURL, hc)))
	}
	return reg
}

// Context returns ctx carrying the runtime logger
func (rt *Runtime) Context(ctx context.Context) context.Context {
	return logging.WithLogger(ctx, &rt.Logger)
}

// Close releases the link store
func (rt *Runtime) Close() error {
	if err := rt.Links.Close(); err != nil {
		return fmt.Errorf("close link store: %w", err)
	}
	return nil
}
