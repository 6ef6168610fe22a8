// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rasterize

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/pdiddy/healthdash/pkg/types"
)

// whiteBackground forces an opaque background on the captured element.
const whiteBackground = `() => { this.style.background = '#ffffff'; }`

// RodCapturer captures charts with a headless Chrome driven over the
// DevTools protocol. The browser is launched on first use and reused until
// Close.
type RodCapturer struct {
	cfg types.RasterConfig

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewRodCapturer creates a capturer. No browser starts until Open.
func NewRodCapturer(cfg types.RasterConfig) *RodCapturer {
	return &RodCapturer{cfg: cfg}
}

func (c *RodCapturer) ensureBrowser(ctx context.Context) (*rod.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browser != nil {
		return c.browser, nil
	}

	l := launcher.New().Headless(true)
	if c.cfg.ChromeBin != "" {
		l = l.Bin(c.cfg.ChromeBin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching chrome: %w", err)
	}

	// The browser outlives any single request context.
	browser := rod.New().ControlURL(controlURL).Context(context.WithoutCancel(ctx))
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to chrome: %w", err)
	}
	c.launcher, c.browser = l, browser
	return browser, nil
}

// Open implements Capturer. The document is written to a temporary file so
// the page loads like any other file URL.
func (c *RodCapturer) Open(ctx context.Context, html []byte, scale float64) (Session, error) {
	browser, err := c.ensureBrowser(ctx)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "healthdash-capture-")
	if err != nil {
		return nil, fmt.Errorf("creating capture dir: %w", err)
	}
	path := filepath.Join(dir, "page.html")
	if err := os.WriteFile(path, html, 0o600); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("writing capture page: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("creating page: %w", err)
	}
	sess := &rodSession{page: page, dir: dir}

	width := c.cfg.ViewportWidth
	if width <= 0 {
		width = types.DefaultConfig().Raster.ViewportWidth
	}
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            900,
		DeviceScaleFactor: scale,
		Mobile:            false,
	}).Call(page); err != nil {
		sess.Close()
		return nil, fmt.Errorf("setting device scale: %w", err)
	}

	p := page.Context(ctx)
	if err := p.Navigate("file://" + filepath.ToSlash(path)); err != nil {
		sess.Close()
		return nil, fmt.Errorf("loading capture page: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		sess.Close()
		return nil, fmt.Errorf("waiting for capture page: %w", err)
	}
	return sess, nil
}

// Close shuts the browser down.
func (c *RodCapturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browser == nil {
		return nil
	}
	err := c.browser.Close()
	c.launcher.Kill()
	c.launcher.Cleanup()
	c.browser, c.launcher = nil, nil
	return err
}

type rodSession struct {
	page *rod.Page
	dir  string
}

// Capture implements Session.
func (s *rodSession) Capture(ctx context.Context, h types.ChartHandle) (types.RasterizedChart, error) {
	p := s.page.Context(ctx)
	els, err := p.Elements("#" + h.ID)
	if err != nil {
		return types.RasterizedChart{}, fmt.Errorf("finding %s: %w", h.ID, err)
	}
	if len(els) == 0 {
		return types.RasterizedChart{}, fmt.Errorf("chart element %s not found", h.ID)
	}
	el := els[0]

	title := h.Title
	if caps, err := el.Elements("[data-chart-title]"); err == nil && len(caps) > 0 {
		if text, err := caps[0].Text(); err == nil && strings.TrimSpace(text) != "" {
			title = strings.TrimSpace(text)
		}
	}

	if _, err := el.Eval(whiteBackground); err != nil {
		return types.RasterizedChart{}, fmt.Errorf("styling %s: %w", h.ID, err)
	}
	img, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return types.RasterizedChart{}, fmt.Errorf("capturing %s: %w", h.ID, err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return types.RasterizedChart{}, fmt.Errorf("reading %s bitmap: %w", h.ID, err)
	}
	return types.RasterizedChart{Title: title, PNG: img, Width: cfg.Width, Height: cfg.Height}, nil
}

// Close implements Session.
func (s *rodSession) Close() error {
	defer os.RemoveAll(s.dir)
	return s.page.Close()
}
