// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package indicators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/healthdash/internal/httputil"
	"github.com/pdiddy/healthdash/internal/metrics"
	"github.com/pdiddy/healthdash/pkg/types"
)

// ErrUnknownTopic is returned for a topic outside the closed set.
var ErrUnknownTopic = errors.New("unknown topic")

// Provider returns the indicator panel for a topic.
type Provider interface {
	Panel(ctx context.Context, topic types.Topic) (types.Panel, error)
}

// StaticProvider serves panels from a Dataset. Topics without a panel
// (general) yield a titled panel with no KPIs or charts.
type StaticProvider struct {
	data *Dataset
}

// NewStatic creates a provider over d.
func NewStatic(d *Dataset) *StaticProvider {
	return &StaticProvider{data: d}
}

// Panel implements Provider.
func (p *StaticProvider) Panel(ctx context.Context, topic types.Topic) (types.Panel, error) {
	if err := ctx.Err(); err != nil {
		return types.Panel{}, err
	}
	if !topic.Valid() {
		return types.Panel{}, fmt.Errorf("static panel %q: %w", topic, ErrUnknownTopic)
	}
	if panel, ok := p.data.Panel(topic); ok {
		return panel, nil
	}
	return types.Panel{Title: topic.DisplayName()}, nil
}

// HTTPProvider fetches panels from a remote indicator service at
// {BaseURL}/panels/{topic}, which must answer with a JSON types.Panel.
type HTTPProvider struct {
	cfg    types.ProviderConfig
	client *http.Client
	log    *zap.Logger
}

// NewHTTP creates a remote provider. A nil client uses one with cfg.Timeout.
func NewHTTP(cfg types.ProviderConfig, client *http.Client, log *zap.Logger) *HTTPProvider {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPProvider{cfg: cfg, client: client, log: log}
}

// Panel implements Provider.
func (p *HTTPProvider) Panel(ctx context.Context, topic types.Topic) (types.Panel, error) {
	if !topic.Valid() {
		return types.Panel{}, fmt.Errorf("remote panel %q: %w", topic, ErrUnknownTopic)
	}

	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/panels/" + url.PathEscape(string(topic))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return types.Panel{}, fmt.Errorf("building panel request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", p.cfg.UserAgent)
	}
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	policy := httputil.DefaultRetryPolicy()
	policy.MaxRetries = p.cfg.MaxRetries
	resp, err := httputil.DoWithRetry(ctx, p.client, req, policy, p.log)
	if err != nil {
		return types.Panel{}, fmt.Errorf("fetching panel %s: %w", topic, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Panel{}, fmt.Errorf("fetching panel %s: unexpected status %d", topic, resp.StatusCode)
	}

	var panel types.Panel
	if err := json.NewDecoder(resp.Body).Decode(&panel); err != nil {
		return types.Panel{}, fmt.Errorf("decoding panel %s: %w", topic, err)
	}
	return panel, nil
}

// FallbackProvider asks Primary first and serves Fallback when it fails.
// Panels served by Fallback are marked Demo.
type FallbackProvider struct {
	Primary  Provider
	Fallback Provider
	Log      *zap.Logger
	Metrics  *metrics.Metrics
}

// Panel implements Provider. Context cancellation is not masked by the
// fallback.
func (p *FallbackProvider) Panel(ctx context.Context, topic types.Topic) (types.Panel, error) {
	panel, err := p.Primary.Panel(ctx, topic)
	if err == nil {
		return panel, nil
	}
	if ctx.Err() != nil {
		return types.Panel{}, ctx.Err()
	}

	if p.Log != nil {
		p.Log.Warn("indicator source failed, using demo data",
			zap.String("topic", string(topic)),
			zap.Error(err),
		)
	}
	p.Metrics.FellBack()

	panel, ferr := p.Fallback.Panel(ctx, topic)
	if ferr != nil {
		return types.Panel{}, errors.Join(err, ferr)
	}
	panel.Demo = true
	return panel, nil
}

// NewProvider builds the provider described by cfg: the static dataset
// alone when BaseURL is empty, otherwise the remote source with a static
// fallback.
func NewProvider(cfg types.ProviderConfig, d *Dataset, log *zap.Logger, m *metrics.Metrics) Provider {
	static := NewStatic(d)
	if cfg.BaseURL == "" {
		return static
	}
	return &FallbackProvider{
		Primary:  NewHTTP(cfg, nil, log),
		Fallback: static,
		Log:      log,
		Metrics:  m,
	}
}
