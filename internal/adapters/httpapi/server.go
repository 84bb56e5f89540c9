// Package httpapi exposes the sync engine over HTTP. Every endpoint
// except /api/v1/sync answers with a {data, error} envelope; /sync
// answers with the workflow's {responseAction, responseData, action}
// triple so that clients can resume it.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"refsync/internal/application"
	"refsync/internal/ports"
)

// Deps are the services the handlers run commands against
type Deps struct {
	Adapters ports.AdapterResolver
	Links    ports.LinkStore
	Diffs    *application.DiffCache
}

// Server is the HTTP surface
type Server struct {
	deps    Deps
	logger  *zerolog.Logger
	handler http.Handler
	started time.Time
}

// New creates a server. The diff cache must outlive single requests,
// otherwise a sync cannot be resumed.
func New(deps Deps, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	s := &Server{deps: deps, logger: logger, started: time.Now()}

	mux := http.NewServeMux()
	s.routes(mux)
	s.handler = chain(mux, withLogger(logger), requestID, accessLog, recovery)
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/libraries", s.handleLibraries)
	mux.HandleFunc("GET /api/v1/libraries/{application}/{type}/{id}/collections", s.handleCollections)
	mux.HandleFunc("POST /api/v1/sync", s.handleSync)
	mux.HandleFunc("GET /api/v1/links", s.handleLinks)
	mux.HandleFunc("DELETE /api/v1/links", s.handleRemoveLink)
}

// Handler returns the root handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info().Msg("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
