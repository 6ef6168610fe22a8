// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the dashboard over HTTP: the interactive report
// page, PDF downloads, a classification endpoint and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/healthdash/internal/metrics"
	"github.com/pdiddy/healthdash/internal/opstate"
	"github.com/pdiddy/healthdash/internal/pipeline"
	"github.com/pdiddy/healthdash/internal/render"
	"github.com/pdiddy/healthdash/internal/reports"
	"github.com/pdiddy/healthdash/pkg/types"
)

const shutdownTimeout = 10 * time.Second

// Engine runs searches and exports. *pipeline.Pipeline implements it.
type Engine interface {
	Classify(query string) types.Classification
	Search(ctx context.Context, req pipeline.SearchRequest) (types.Report, error)
	Export(ctx context.Context, rep types.Report, sink pipeline.Sink) (pipeline.ExportResult, error)
	Page(w io.Writer, data render.PageData) ([]types.ChartHandle, error)
	Notices() *opstate.Notices
}

// ReportStore reads saved reports. *reports.Store implements it.
type ReportStore interface {
	Get(ctx context.Context, id string) (types.Report, error)
	List(ctx context.Context, opts reports.QueryOptions) ([]reports.Summary, error)
}

// Options configures a Server. Store, Metrics and Log are optional.
type Options struct {
	Engine  Engine
	Store   ReportStore
	Metrics *metrics.Metrics
	Log     *zap.Logger

	// SaveSearches persists every dashboard search when Store is set.
	SaveSearches bool
}

// Server is the dashboard HTTP handler.
type Server struct {
	engine  Engine
	store   ReportStore
	log     *zap.Logger
	save    bool
	handler http.Handler
}

// New creates a Server and its routes.
func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		engine: opts.Engine,
		store:  opts.Store,
		log:    log,
		save:   opts.SaveSearches && opts.Store != nil,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.dashboard)
	mux.HandleFunc("GET /export", s.export)
	mux.HandleFunc("GET /api/classify", s.classify)
	mux.HandleFunc("GET /api/reports", s.listReports)
	mux.HandleFunc("GET /api/reports/{id}", s.getReport)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "ok\n")
	})
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	s.handler = requestLog(log)(mux)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("dashboard listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		s.log.Info("dashboard stopped")
		return nil
	})
	return g.Wait()
}
