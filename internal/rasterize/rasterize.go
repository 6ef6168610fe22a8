// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rasterize captures rendered charts as PNG bitmaps, one at a time
// in manifest order.
package rasterize

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/healthdash/internal/metrics"
	"github.com/pdiddy/healthdash/pkg/types"
)

// MinScale is the lowest device pixel ratio used for captures.
const MinScale = 2.0

// Page is a rendered document and the manifest of charts it contains.
type Page struct {
	HTML     []byte
	Manifest []types.ChartHandle
}

// Capturer opens a rendered page for capture.
type Capturer interface {
	Open(ctx context.Context, html []byte, scale float64) (Session, error)
}

// Session captures chart elements from one opened page.
type Session interface {
	// Capture returns the bitmap of the element h.ID against an opaque
	// white background, with the title read from the element.
	Capture(ctx context.Context, h types.ChartHandle) (types.RasterizedChart, error)
	Close() error
}

// Rasterizer drives a Capturer over a page manifest.
type Rasterizer struct {
	capturer Capturer
	cfg      types.RasterConfig
	log      *zap.Logger
	metrics  *metrics.Metrics
}

// New creates a rasterizer. A nil logger discards output.
func New(c Capturer, cfg types.RasterConfig, log *zap.Logger, m *metrics.Metrics) *Rasterizer {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Scale < MinScale {
		cfg.Scale = MinScale
	}
	return &Rasterizer{capturer: c, cfg: cfg, log: log, metrics: m}
}

// RasterizeAll captures every chart of page sequentially, waiting
// SettleDelay before each capture. A failed capture is logged and the chart
// skipped, so the result may be shorter than the manifest but keeps its
// order. Cancelling ctx aborts with ctx.Err().
func (r *Rasterizer) RasterizeAll(ctx context.Context, page Page) ([]types.RasterizedChart, error) {
	if len(page.Manifest) == 0 {
		return nil, nil
	}

	sess, err := r.capturer.Open(ctx, page.HTML, r.cfg.Scale)
	if err != nil {
		return nil, fmt.Errorf("opening page for capture: %w", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			r.log.Warn("closing capture session", zap.Error(cerr))
		}
	}()

	out := make([]types.RasterizedChart, 0, len(page.Manifest))
	for _, h := range page.Manifest {
		if err := settle(ctx, r.cfg.SettleDelay); err != nil {
			return nil, err
		}

		img, err := sess.Capture(ctx, h)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.log.Warn("chart capture failed, skipping",
				zap.String("chart", h.ID),
				zap.String("title", h.Title),
				zap.Error(err),
			)
			r.metrics.CaptureFailed()
			continue
		}
		if img.Title == "" {
			img.Title = h.Title
		}
		r.log.Debug("chart captured",
			zap.String("chart", h.ID),
			zap.Int("width", img.Width),
			zap.Int("height", img.Height),
		)
		out = append(out, img)
	}
	return out, nil
}

// settle waits d unless ctx ends first.
func settle(ctx context.Context, d time.Duration) error {
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
