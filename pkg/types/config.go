// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DefaultYear is the year a query resolves to when it names none.
const DefaultYear = 2024

// ClassifierConfig holds settings for query classification.
type ClassifierConfig struct {
	// DefaultYear is used when the query has no year or range (default 2024).
	DefaultYear int `json:"default_year" yaml:"default_year" mapstructure:"default_year"`
}

// ProviderConfig holds settings for the indicator data provider.
type ProviderConfig struct {
	// BaseURL of a remote indicator service. Empty selects the embedded
	// static dataset only.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the HTTP request timeout (default 10s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries bounds retries on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// APIKey is sent as a bearer token when set.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// RasterConfig holds settings for chart capture.
type RasterConfig struct {
	// SettleDelay is the wait before each capture so charts finish painting
	// (default 300ms).
	SettleDelay time.Duration `json:"settle_delay" yaml:"settle_delay" mapstructure:"settle_delay"`

	// Scale is the device pixel ratio used for captures; values below 2
	// are raised to 2.
	Scale float64 `json:"scale" yaml:"scale" mapstructure:"scale"`

	// ViewportWidth is the browser viewport width in CSS pixels (default 1100).
	ViewportWidth int `json:"viewport_width" yaml:"viewport_width" mapstructure:"viewport_width"`

	// ChromeBin overrides the browser binary; empty lets the launcher
	// locate or download one.
	ChromeBin string `json:"chrome_bin,omitempty" yaml:"chrome_bin,omitempty" mapstructure:"chrome_bin"`
}

// ExportConfig holds settings for PDF export.
type ExportConfig struct {
	// OutputDir receives exported PDFs and HTML pages (default "output/reports").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// FrameDelay is the yield between publishing the generating state and
	// starting the encode (default 16ms).
	FrameDelay time.Duration `json:"frame_delay" yaml:"frame_delay" mapstructure:"frame_delay"`

	// Author is written into the PDF metadata.
	Author string `json:"author" yaml:"author" mapstructure:"author"`
}

// StoreConfig holds settings for the saved-report store.
type StoreConfig struct {
	// Dir contains the SQLite database (default "output/index").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default limit for list and search (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// ServerConfig holds settings for the dashboard HTTP server.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// FetchDelay simulates the data fetch latency of a search (default 400ms).
	FetchDelay time.Duration `json:"fetch_delay" yaml:"fetch_delay" mapstructure:"fetch_delay"`
}

// Config groups all component configurations.
type Config struct {
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier" mapstructure:"classifier"`
	Provider   ProviderConfig   `json:"provider" yaml:"provider" mapstructure:"provider"`
	Raster     RasterConfig     `json:"raster" yaml:"raster" mapstructure:"raster"`
	Export     ExportConfig     `json:"export" yaml:"export" mapstructure:"export"`
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
}

// DefaultConfig returns the configuration used when no file or flag
// overrides a value.
func DefaultConfig() Config {
	return Config{
		Classifier: ClassifierConfig{DefaultYear: DefaultYear},
		Provider: ProviderConfig{
			Timeout:    10 * time.Second,
			MaxRetries: 3,
			UserAgent:  "healthdash/0.1",
		},
		Raster: RasterConfig{
			SettleDelay:   300 * time.Millisecond,
			Scale:         2,
			ViewportWidth: 1100,
		},
		Export: ExportConfig{
			OutputDir:  "output/reports",
			FrameDelay: 16 * time.Millisecond,
			Author:     "healthdash",
		},
		Store: StoreConfig{
			Dir:        "output/index",
			MaxResults: 20,
		},
		Server: ServerConfig{
			Addr:       ":8080",
			FetchDelay: 400 * time.Millisecond,
		},
	}
}
