// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires classification, data lookup, analysis, charting,
// rendering, rasterization, assembly and PDF encoding into the two user
// operations: search and export.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/healthdash/internal/analysis"
	"github.com/pdiddy/healthdash/internal/charts"
	"github.com/pdiddy/healthdash/internal/classify"
	"github.com/pdiddy/healthdash/internal/document"
	"github.com/pdiddy/healthdash/internal/indicators"
	"github.com/pdiddy/healthdash/internal/metrics"
	"github.com/pdiddy/healthdash/internal/opstate"
	"github.com/pdiddy/healthdash/internal/pdf"
	"github.com/pdiddy/healthdash/internal/rasterize"
	"github.com/pdiddy/healthdash/internal/render"
	"github.com/pdiddy/healthdash/pkg/types"
)

// Operation names.
const (
	OpSearch = "search"
	OpExport = "export"
)

// DemoNotice is published when a search was served by the static dataset
// after the remote source failed.
const DemoNotice = "Indicator service unavailable, using demo data."

// Saver persists reports. *reports.Store implements it.
type Saver interface {
	Save(ctx context.Context, r types.Report) error
}

// Deps are the collaborators of a Pipeline. Provider defaults to the
// embedded dataset; Store, Log and Metrics are optional.
type Deps struct {
	Config   types.Config
	Provider indicators.Provider
	Capturer rasterize.Capturer
	Store    Saver
	Log      *zap.Logger
	Metrics  *metrics.Metrics
}

// Pipeline runs searches and exports. Each operation rejects a second call
// while one is running.
type Pipeline struct {
	cfg         types.Config
	classifier  *classify.Classifier
	provider    indicators.Provider
	synth       *analysis.Synthesizer
	charts      *charts.Builder
	renderer    *render.Renderer
	raster      *rasterize.Rasterizer
	boilerplate *document.Boilerplate
	exporter    *pdf.Exporter
	store       Saver
	log         *zap.Logger
	metrics     *metrics.Metrics

	notices *opstate.Notices
	search  *opstate.Operation
	export  *opstate.Operation

	now func() time.Time
}

// New builds a pipeline over the embedded dataset, templates and
// boilerplate.
func New(d Deps) (*Pipeline, error) {
	if d.Capturer == nil {
		return nil, errors.New("pipeline: capturer is required")
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	data, err := indicators.Default()
	if err != nil {
		return nil, fmt.Errorf("loading indicator dataset: %w", err)
	}
	synth, err := analysis.New(data, log)
	if err != nil {
		return nil, fmt.Errorf("loading analysis templates: %w", err)
	}
	bp, err := document.DefaultBoilerplate()
	if err != nil {
		return nil, fmt.Errorf("loading export boilerplate: %w", err)
	}

	provider := d.Provider
	if provider == nil {
		provider = indicators.NewProvider(d.Config.Provider, data, log, d.Metrics)
	}

	notices := opstate.NewNotices(0)
	return &Pipeline{
		cfg:         d.Config,
		classifier:  classify.New(classify.WithDefaultYear(d.Config.Classifier.DefaultYear)),
		provider:    provider,
		synth:       synth,
		charts:      charts.NewBuilder(data, log),
		renderer:    render.New(render.DefaultConfig()),
		raster:      rasterize.New(d.Capturer, d.Config.Raster, log, d.Metrics),
		boilerplate: bp,
		exporter:    pdf.NewExporter(d.Config.Export),
		store:       d.Store,
		log:         log,
		metrics:     d.Metrics,
		notices:     notices,
		search:      opstate.New(OpSearch, notices),
		export:      opstate.New(OpExport, notices),
		now:         time.Now,
	}, nil
}

// Notices returns the queue of user-facing notices.
func (p *Pipeline) Notices() *opstate.Notices { return p.notices }

// SearchState returns the state of the search operation.
func (p *Pipeline) SearchState() opstate.Snapshot { return p.search.Snapshot() }

// ExportState returns the state of the export operation.
func (p *Pipeline) ExportState() opstate.Snapshot { return p.export.Snapshot() }

// Classify exposes the configured classifier.
func (p *Pipeline) Classify(query string) types.Classification {
	return p.classifier.Classify(query)
}

// SearchRequest is one search.
type SearchRequest struct {
	Query string

	// Save persists the report when a store is configured. A failed save
	// does not fail the search.
	Save bool
}

// Search classifies the query, fetches the topic panel and derives the
// analysis and chart specs from the same classification.
func (p *Pipeline) Search(ctx context.Context, req SearchRequest) (types.Report, error) {
	var rep types.Report
	err := p.search.Run(ctx, func(ctx context.Context, phase func(string)) error {
		phase("fetching")
		if err := pause(ctx, p.cfg.Server.FetchDelay); err != nil {
			return err
		}

		c := p.classifier.Classify(req.Query)
		panel, err := p.provider.Panel(ctx, c.Topic)
		if err != nil {
			return fmt.Errorf("fetching %s indicators: %w", c.Topic, err)
		}

		phase("analyzing")
		a := p.synth.Synthesize(c)
		rep = types.Report{
			ID:             uuid.NewString(),
			Query:          req.Query,
			Classification: c,
			Panel:          panel,
			Analysis:       a,
			Charts:         p.charts.Build(c, panel),
			CreatedAt:      p.now().UTC(),
			DemoData:       panel.Demo,
		}
		if panel.Demo {
			p.notices.Warn(DemoNotice)
		}
		p.metrics.ObserveSearch(string(c.Topic), string(a.Case))
		p.log.Info("search completed",
			zap.String("id", rep.ID),
			zap.String("topic", string(c.Topic)),
			zap.String("period", c.YearRange.Label()),
			zap.String("case", string(a.Case)),
			zap.Int("charts", len(rep.Charts)),
		)

		if req.Save {
			p.save(ctx, rep)
		}
		return nil
	})
	if errors.Is(err, opstate.ErrBusy) {
		p.metrics.Rejected(OpSearch)
	}
	if err != nil {
		return types.Report{}, err
	}
	return rep, nil
}

func (p *Pipeline) save(ctx context.Context, rep types.Report) {
	if p.store == nil {
		return
	}
	if err := p.store.Save(ctx, rep); err != nil {
		p.log.Error("saving report", zap.String("id", rep.ID), zap.Error(err))
		p.metrics.ObserveSave(false)
		p.notices.Error("Could not save report: " + err.Error())
		return
	}
	p.metrics.ObserveSave(true)
	p.notices.Success("Report saved")
}

// Page renders the dashboard HTML for data and returns its chart manifest.
func (p *Pipeline) Page(w io.Writer, data render.PageData) ([]types.ChartHandle, error) {
	return p.renderer.Page(w, data)
}

// ExportResult describes a delivered export.
type ExportResult struct {
	Filename string
	Location string
	Charts   int
	Bytes    int
}

// Export renders rep, captures its charts in page order, assembles the
// document and encodes the PDF. The encoded bytes reach sink only when
// every step succeeded.
func (p *Pipeline) Export(ctx context.Context, rep types.Report, sink Sink) (ExportResult, error) {
	var res ExportResult
	start := p.now()
	err := p.export.Run(ctx, func(ctx context.Context, phase func(string)) error {
		phase("rendering")
		var html bytes.Buffer
		manifest, err := p.renderer.Page(&html, render.PageData{Report: rep})
		if err != nil {
			return fmt.Errorf("rendering page: %w", err)
		}

		phase("rasterizing")
		captured, err := p.raster.RasterizeAll(ctx, rasterize.Page{HTML: html.Bytes(), Manifest: manifest})
		if err != nil {
			return fmt.Errorf("capturing charts: %w", err)
		}

		phase("generating")
		if err := pause(ctx, p.cfg.Export.FrameDelay); err != nil {
			return err
		}
		doc := document.Assemble(document.Input{
			Report:      rep,
			Charts:      captured,
			GeneratedAt: p.now(),
		}, p.boilerplate)

		var out bytes.Buffer
		if err := p.exporter.Render(doc, &out); err != nil {
			return fmt.Errorf("encoding pdf: %w", err)
		}

		phase("delivering")
		loc, err := sink.Deliver(ctx, doc.Filename, out.Bytes())
		if err != nil {
			return fmt.Errorf("delivering %s: %w", doc.Filename, err)
		}

		res = ExportResult{Filename: doc.Filename, Location: loc, Charts: len(captured), Bytes: out.Len()}
		p.notices.Success("Report exported: " + doc.Filename)
		p.log.Info("export completed",
			zap.String("id", rep.ID),
			zap.String("file", doc.Filename),
			zap.Int("charts", len(captured)),
			zap.Int("manifest", len(manifest)),
		)
		return nil
	})
	if errors.Is(err, opstate.ErrBusy) {
		p.metrics.Rejected(OpExport)
		return ExportResult{}, err
	}
	p.metrics.ObserveExport(err == nil, p.now().Sub(start).Seconds())
	if err != nil {
		p.log.Error("export failed", zap.String("id", rep.ID), zap.Error(err))
		return ExportResult{}, err
	}
	return res, nil
}

// pause waits d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
