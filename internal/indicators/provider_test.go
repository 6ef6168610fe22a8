// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package indicators

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/healthdash/internal/metrics"
	"github.com/pdiddy/healthdash/pkg/types"
)

func staticProvider(t *testing.T) *StaticProvider {
	t.Helper()
	d, err := Default()
	require.NoError(t, err)
	return NewStatic(d)
}

func TestStaticProvider_Panel(t *testing.T) {
	p := staticProvider(t)

	panel, err := p.Panel(context.Background(), types.TopicChildHealth)
	require.NoError(t, err)
	assert.Equal(t, "Child Health", panel.Title)
	assert.False(t, panel.Demo)

	panel, err = p.Panel(context.Background(), types.TopicGeneral)
	require.NoError(t, err)
	assert.Equal(t, types.TopicGeneral.DisplayName(), panel.Title)
	assert.Empty(t, panel.Charts)

	_, err = p.Panel(context.Background(), types.Topic("dentistry"))
	assert.ErrorIs(t, err, ErrUnknownTopic)
}

func TestHTTPProvider_Panel(t *testing.T) {
	want := types.Panel{Title: "Remote Oral Health", KPIs: []types.KPI{{Title: "k", Value: "1"}}}

	var gotPath, gotAuth, gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		json.NewEncoder(w).Encode(want)
	}))
	defer ts.Close()

	cfg := types.ProviderConfig{BaseURL: ts.URL + "/", APIKey: "secret", UserAgent: "healthdash-test", Timeout: time.Second}
	p := NewHTTP(cfg, ts.Client(), nil)

	got, err := p.Panel(context.Background(), types.TopicOralHealth)
	require.NoError(t, err)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.KPIs, got.KPIs)
	assert.Equal(t, "/panels/oral-health", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "healthdash-test", gotUA)
}

func TestHTTPProvider_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	p := NewHTTP(types.ProviderConfig{BaseURL: ts.URL}, ts.Client(), nil)
	_, err := p.Panel(context.Background(), types.TopicOralHealth)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestHTTPProvider_BadJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer ts.Close()

	p := NewHTTP(types.ProviderConfig{BaseURL: ts.URL}, ts.Client(), nil)
	_, err := p.Panel(context.Background(), types.TopicOralHealth)
	assert.ErrorContains(t, err, "decoding panel")
}

type failingProvider struct{ err error }

func (f failingProvider) Panel(context.Context, types.Topic) (types.Panel, error) {
	return types.Panel{}, f.err
}

func TestFallbackProvider_ServesDemoData(t *testing.T) {
	m := metrics.New()
	p := &FallbackProvider{
		Primary:  failingProvider{err: errors.New("connection refused")},
		Fallback: staticProvider(t),
		Metrics:  m,
	}

	panel, err := p.Panel(context.Background(), types.TopicMentalHealth)
	require.NoError(t, err)
	assert.True(t, panel.Demo)
	assert.Equal(t, "Mental Health", panel.Title)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderFallbacks))
}

func TestFallbackProvider_PrimaryOK(t *testing.T) {
	p := &FallbackProvider{
		Primary:  staticProvider(t),
		Fallback: failingProvider{err: errors.New("unused")},
	}
	panel, err := p.Panel(context.Background(), types.TopicFinancing)
	require.NoError(t, err)
	assert.False(t, panel.Demo)
}

func TestFallbackProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &FallbackProvider{
		Primary:  failingProvider{err: context.Canceled},
		Fallback: staticProvider(t),
	}
	_, err := p.Panel(ctx, types.TopicFinancing)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewProvider(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	_, ok := NewProvider(types.ProviderConfig{}, d, nil, nil).(*StaticProvider)
	assert.True(t, ok)

	_, ok = NewProvider(types.ProviderConfig{BaseURL: "http://example.invalid"}, d, nil, nil).(*FallbackProvider)
	assert.True(t, ok)
}
