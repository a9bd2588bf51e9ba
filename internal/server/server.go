// Package server exposes the layout engine over HTTP.
//
// The API is JSON in, JSON out. Clients POST an ancestry graph and receive
// a positioned layout; a sequencer guards the shared "current" layout so
// responses from superseded requests never overwrite newer ones.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/panon-btc/txlineage/pkg/buildinfo"
	errs "github.com/panon-btc/txlineage/pkg/errors"
	"github.com/panon-btc/txlineage/pkg/observability"
	"github.com/panon-btc/txlineage/pkg/pipeline"
)

// requestTimeout bounds a single layout computation, solver included.
const requestTimeout = 30 * time.Second

// Server routes layout requests to a shared pipeline runner.
type Server struct {
	runner *pipeline.Runner
	seq    *pipeline.Sequencer
	logger *log.Logger
}

// New creates a server. A nil runner gets pipeline defaults; a nil logger
// gets log.Default().
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, nil, nil)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner: runner,
		seq:    pipeline.NewSequencer(),
		logger: logger,
	}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Get("/layout/current", s.handleCurrent)
		r.Post("/refresh", s.handleRefresh)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", addr, "version", buildinfo.Version)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// logRequests logs one line per request with method, path, status, and
// elapsed time.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidTxid, errs.ErrCodeInvalidGraph, errs.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound, errs.ErrCodeNodeNotFound, errs.ErrCodeRootNotFound, errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errs.ErrCodeSolverFailed, errs.ErrCodeSolverIncomplete:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
