// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rasterize

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/healthdash/internal/metrics"
	"github.com/pdiddy/healthdash/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeCapturer records capture order and fails for listed chart ids.
type fakeCapturer struct {
	mu       sync.Mutex
	order    []string
	fail     map[string]bool
	scale    float64
	closed   bool
	inflight int32
	overlap  bool
	openErr  error
}

func (f *fakeCapturer) Open(_ context.Context, _ []byte, scale float64) (Session, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.scale = scale
	return f, nil
}

func (f *fakeCapturer) Capture(_ context.Context, h types.ChartHandle) (types.RasterizedChart, error) {
	if atomic.AddInt32(&f.inflight, 1) > 1 {
		f.overlap = true
	}
	defer atomic.AddInt32(&f.inflight, -1)

	f.mu.Lock()
	f.order = append(f.order, h.ID)
	f.mu.Unlock()

	if f.fail[h.ID] {
		return types.RasterizedChart{}, errors.New("element detached")
	}
	return types.RasterizedChart{Title: "dom " + h.Title, PNG: []byte{0x89, 'P', 'N', 'G'}, Width: 2, Height: 1}, nil
}

func (f *fakeCapturer) Close() error {
	f.closed = true
	return nil
}

func manifest(n int) []types.ChartHandle {
	out := make([]types.ChartHandle, n)
	for i := range out {
		out[i] = types.ChartHandle{ID: "chart-" + string(rune('0'+i)), Index: i, Title: "Chart " + string(rune('A'+i))}
	}
	return out
}

func TestRasterizeAll_InOrder(t *testing.T) {
	f := &fakeCapturer{}
	r := New(f, types.RasterConfig{SettleDelay: time.Millisecond}, nil, nil)

	got, err := r.RasterizeAll(context.Background(), Page{Manifest: manifest(4)})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"chart-0", "chart-1", "chart-2", "chart-3"}, f.order)
	assert.Equal(t, "dom Chart A", got[0].Title)
	assert.Equal(t, "dom Chart D", got[3].Title)
	assert.False(t, f.overlap, "captures must not overlap")
	assert.True(t, f.closed)
}

func TestRasterizeAll_SkipsFailedCapture(t *testing.T) {
	m := metrics.New()
	f := &fakeCapturer{fail: map[string]bool{"chart-1": true}}
	r := New(f, types.RasterConfig{}, nil, m)

	got, err := r.RasterizeAll(context.Background(), Page{Manifest: manifest(3)})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "dom Chart A", got[0].Title)
	assert.Equal(t, "dom Chart C", got[1].Title)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChartCaptureFailures))
}

func TestRasterizeAll_ScaleAtLeastTwo(t *testing.T) {
	f := &fakeCapturer{}
	_, err := New(f, types.RasterConfig{Scale: 1}, nil, nil).RasterizeAll(context.Background(), Page{Manifest: manifest(1)})
	require.NoError(t, err)
	assert.Equal(t, MinScale, f.scale)

	f = &fakeCapturer{}
	_, err = New(f, types.RasterConfig{Scale: 3}, nil, nil).RasterizeAll(context.Background(), Page{Manifest: manifest(1)})
	require.NoError(t, err)
	assert.Equal(t, 3.0, f.scale)
}

func TestRasterizeAll_CancelledDuringSettle(t *testing.T) {
	f := &fakeCapturer{}
	r := New(f, types.RasterConfig{SettleDelay: time.Hour}, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.RasterizeAll(ctx, Page{Manifest: manifest(2)})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, f.order)
	assert.True(t, f.closed)
}

func TestRasterizeAll_EmptyManifest(t *testing.T) {
	f := &fakeCapturer{openErr: errors.New("should not open")}
	got, err := New(f, types.RasterConfig{}, nil, nil).RasterizeAll(context.Background(), Page{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRasterizeAll_OpenError(t *testing.T) {
	f := &fakeCapturer{openErr: errors.New("no chrome")}
	_, err := New(f, types.RasterConfig{}, nil, nil).RasterizeAll(context.Background(), Page{Manifest: manifest(1)})
	assert.ErrorContains(t, err, "no chrome")
}

func TestRasterizeAll_KeepsManifestTitleWhenDOMHasNone(t *testing.T) {
	r := New(blankTitle{}, types.RasterConfig{}, nil, nil)
	got, err := r.RasterizeAll(context.Background(), Page{Manifest: manifest(1)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Chart A", got[0].Title)
}

type blankTitle struct{}

func (blankTitle) Open(context.Context, []byte, float64) (Session, error) { return blankTitle{}, nil }
func (blankTitle) Capture(context.Context, types.ChartHandle) (types.RasterizedChart, error) {
	return types.RasterizedChart{PNG: []byte{1}}, nil
}
func (blankTitle) Close() error { return nil }
