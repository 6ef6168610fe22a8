// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/pdiddy/healthdash/internal/metrics"
	"github.com/pdiddy/healthdash/internal/pipeline"
	"github.com/pdiddy/healthdash/internal/rasterize"
	"github.com/pdiddy/healthdash/internal/reports"
	"github.com/pdiddy/healthdash/pkg/types"
)

// app holds the components shared by report and serve.
type app struct {
	cfg      types.Config
	metrics  *metrics.Metrics
	store    *reports.Store
	capturer *rasterize.RodCapturer
	pipeline *pipeline.Pipeline
}

// newApp builds the pipeline. The report store is opened only when
// withStore is set. The browser starts on the first export.
func newApp(withStore bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		metrics:  metrics.New(),
		capturer: rasterize.NewRodCapturer(cfg.Raster),
	}
	if withStore {
		a.store, err = reports.NewStore(cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("opening report store: %w", err)
		}
	}

	deps := pipeline.Deps{
		Config:   cfg,
		Capturer: a.capturer,
		Log:      logger,
		Metrics:  a.metrics,
	}
	if a.store != nil {
		deps.Store = a.store
	}
	a.pipeline, err = pipeline.New(deps)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close stops the browser and closes the store.
func (a *app) Close() error {
	var first error
	if err := a.capturer.Close(); err != nil {
		first = err
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// printNotices writes queued notices to w, one per line.
func printNotices(w io.Writer, a *app) {
	for _, n := range a.pipeline.Notices().Drain() {
		fmt.Fprintf(w, "%s: %s\n", n.Level, n.Message)
	}
}

// openStore opens the report store alone, for the reports commands.
func openStore() (*reports.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return reports.NewStore(cfg.Store)
}
