// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/healthdash/internal/metrics"
	"github.com/pdiddy/healthdash/internal/pipeline"
	"github.com/pdiddy/healthdash/internal/rasterize"
	"github.com/pdiddy/healthdash/internal/reports"
	"github.com/pdiddy/healthdash/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubCapturer struct{ png []byte }

func (c stubCapturer) Open(context.Context, []byte, float64) (rasterize.Session, error) {
	return c, nil
}

func (c stubCapturer) Capture(_ context.Context, h types.ChartHandle) (types.RasterizedChart, error) {
	return types.RasterizedChart{Title: h.Title, PNG: c.png, Width: 2, Height: 2}, nil
}

func (stubCapturer) Close() error { return nil }

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

type fixture struct {
	srv     *Server
	store   *reports.Store
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cfg := types.DefaultConfig()
	cfg.Server.FetchDelay = 0
	cfg.Export.FrameDelay = 0
	cfg.Raster.SettleDelay = 0

	store, err := reports.NewStore(types.StoreConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := metrics.New()
	p, err := pipeline.New(pipeline.Deps{
		Config:   cfg,
		Capturer: stubCapturer{png: pngBytes(t)},
		Store:    store,
		Metrics:  m,
	})
	require.NoError(t, err)

	return fixture{
		srv:     New(Options{Engine: p, Store: store, Metrics: m, SaveSearches: true}),
		store:   store,
		metrics: m,
	}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestDashboard_EmptyShowsForm(t *testing.T) {
	f := newFixture(t)
	rec := get(t, f.srv, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, `<form class="search"`)
	assert.NotContains(t, body, "<figure")
}

func TestDashboard_SearchRendersChartsAndSaves(t *testing.T) {
	f := newFixture(t)
	rec := get(t, f.srv, "/?q=relationship+between+maternal+mortality+and+infant+mortality")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `id="chart-0"`)
	assert.Contains(t, body, `id="chart-1"`)
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "/export?q=relationship")
	assert.Contains(t, body, "Report saved")

	n, err := f.store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExport_StreamsAttachment(t *testing.T) {
	f := newFixture(t)
	rec := get(t, f.srv, "/export?q=oral+health")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	disp := rec.Header().Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(disp, "attachment;"), disp)
	assert.Contains(t, disp, "health-report-oral-health-")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestExport_SavedReportByID(t *testing.T) {
	f := newFixture(t)
	get(t, f.srv, "/?q=dengue+2019")

	list, err := f.store.List(context.Background(), reports.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	rec := get(t, f.srv, "/export?id="+list[0].ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "health-report-epidemiology-")

	rec = get(t, f.srv, "/export?id=missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExport_RequiresQueryOrID(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusBadRequest, get(t, f.srv, "/export").Code)
}

func TestClassifyEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := get(t, f.srv, "/api/classify?q=dengue+vs+temperature+2015+to+2020")
	require.Equal(t, http.StatusOK, rec.Code)

	var c types.Classification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, types.TopicEpidemiology, c.Topic)
	assert.Equal(t, types.PairDengueTemperature, c.Pair)
	assert.True(t, c.IsCorrelationQuery)
	assert.Equal(t, types.YearRange{Start: 2015, End: 2020}, c.YearRange)

	assert.Equal(t, http.StatusBadRequest, get(t, f.srv, "/api/classify").Code)
}

func TestReportsEndpoints(t *testing.T) {
	f := newFixture(t)
	get(t, f.srv, "/?q=oral+health")
	get(t, f.srv, "/?q=dengue")

	rec := get(t, f.srv, "/api/reports?topic=oral-health")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []reports.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, types.TopicOralHealth, list[0].Topic)

	rec = get(t, f.srv, "/api/reports/"+list[0].ID)
	require.Equal(t, http.StatusOK, rec.Code)
	var rep types.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, "oral health", rep.Query)

	assert.Equal(t, http.StatusBadRequest, get(t, f.srv, "/api/reports?topic=astrology").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, f.srv, "/api/reports?limit=0").Code)
	assert.Equal(t, http.StatusNotFound, get(t, f.srv, "/api/reports/nope").Code)

	rec = get(t, f.srv, "/api/reports?q=nothingmatches")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestMetricsAndHealth(t *testing.T) {
	f := newFixture(t)
	get(t, f.srv, "/?q=oral+health")

	rec := get(t, f.srv, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthdash_searches_total")

	rec = get(t, f.srv, "/health")
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	f := newFixture(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.srv.Run(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok\n", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	http.DefaultClient.CloseIdleConnections()
}
