// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics defines the Prometheus collectors for the report pipeline
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline collectors. Each instance owns its registry so
// several pipelines (and tests) can coexist in one process. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	SearchesTotal        *prometheus.CounterVec
	ExportsTotal         *prometheus.CounterVec
	ExportDuration       prometheus.Histogram
	ChartCaptureFailures prometheus.Counter
	ProviderFallbacks    prometheus.Counter
	BusyRejections       *prometheus.CounterVec
	ReportsSaved         *prometheus.CounterVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "healthdash_searches_total",
				Help: "Searches by topic and analysis case.",
			},
			[]string{"topic", "case"},
		),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "healthdash_exports_total",
				Help: "PDF exports by status (success, failure).",
			},
			[]string{"status"},
		),
		ExportDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "healthdash_export_duration_seconds",
				Help:    "Wall time of a PDF export from render to delivery.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		ChartCaptureFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "healthdash_chart_capture_failures_total",
				Help: "Charts skipped because their capture failed.",
			},
		),
		ProviderFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "healthdash_provider_fallbacks_total",
				Help: "Panels served from the static dataset after the remote source failed.",
			},
		),
		BusyRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "healthdash_busy_rejections_total",
				Help: "Requests rejected because the operation was already running.",
			},
			[]string{"operation"},
		),
		ReportsSaved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "healthdash_reports_saved_total",
				Help: "Report save attempts by status.",
			},
			[]string{"status"},
		),
	}

	m.registry.MustRegister(
		m.SearchesTotal,
		m.ExportsTotal,
		m.ExportDuration,
		m.ChartCaptureFailures,
		m.ProviderFallbacks,
		m.BusyRejections,
		m.ReportsSaved,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler returns the scrape handler for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSearch counts a completed search.
func (m *Metrics) ObserveSearch(topic, analysisCase string) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(topic, analysisCase).Inc()
}

// ObserveExport counts an export and records its duration in seconds.
func (m *Metrics) ObserveExport(ok bool, seconds float64) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(status(ok)).Inc()
	m.ExportDuration.Observe(seconds)
}

// CaptureFailed counts one skipped chart.
func (m *Metrics) CaptureFailed() {
	if m == nil {
		return
	}
	m.ChartCaptureFailures.Inc()
}

// FellBack counts one static fallback.
func (m *Metrics) FellBack() {
	if m == nil {
		return
	}
	m.ProviderFallbacks.Inc()
}

// Rejected counts a busy rejection for operation.
func (m *Metrics) Rejected(operation string) {
	if m == nil {
		return
	}
	m.BusyRejections.WithLabelValues(operation).Inc()
}

// ObserveSave counts a report save attempt.
func (m *Metrics) ObserveSave(ok bool) {
	if m == nil {
		return
	}
	m.ReportsSaved.WithLabelValues(status(ok)).Inc()
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
