// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ChartKind tags the variant of a ChartSpec. Renderers switch over every
// kind listed in AllChartKinds.
type ChartKind string

const (
	ChartBar                ChartKind = "bar"
	ChartLine               ChartKind = "line"
	ChartDualLine           ChartKind = "dual_line"
	ChartCorrelationScatter ChartKind = "correlation_scatter"
	ChartPie                ChartKind = "pie"
)

// AllChartKinds lists every chart kind.
func AllChartKinds() []ChartKind {
	return []ChartKind{ChartBar, ChartLine, ChartDualLine, ChartCorrelationScatter, ChartPie}
}

// DefaultTargetKey is the datum field plotted as a reference line on line
// charts when a spec does not name one.
const DefaultTargetKey = "target"

// ChartSpec describes one chart independently of any drawing technology.
// Renderers read data points only through the keys declared here.
type ChartSpec struct {
	Kind  ChartKind `json:"kind" yaml:"kind"`
	Title string    `json:"title" yaml:"title"`
	Data  []Datum   `json:"data" yaml:"data"`

	// NameKey and DataKey select the category label and value fields
	// (bar, line, pie).
	NameKey string `json:"name_key,omitempty" yaml:"name_key,omitempty"`
	DataKey string `json:"data_key,omitempty" yaml:"data_key,omitempty"`

	// XKey and YKey select the point coordinates (correlation_scatter).
	XKey string `json:"x_key,omitempty" yaml:"x_key,omitempty"`
	YKey string `json:"y_key,omitempty" yaml:"y_key,omitempty"`

	// SeriesKeys lists the value fields of a dual_line chart; NameKey is
	// the shared year axis. SeriesLabels gives the legend text per key.
	SeriesKeys   []string `json:"series_keys,omitempty" yaml:"series_keys,omitempty"`
	SeriesLabels []string `json:"series_labels,omitempty" yaml:"series_labels,omitempty"`

	// TargetKey names the reference-line field of a line chart.
	TargetKey string `json:"target_key,omitempty" yaml:"target_key,omitempty"`

	XLabel string `json:"x_label,omitempty" yaml:"x_label,omitempty"`
	YLabel string `json:"y_label,omitempty" yaml:"y_label,omitempty"`

	// Correlation is the coefficient shown next to a scatter plot.
	Correlation *float64 `json:"correlation,omitempty" yaml:"correlation,omitempty"`
}

// ChartHandle is the render-time manifest entry for one chart. The renderer
// emits handles in document order and the rasterizer captures in that order.
type ChartHandle struct {
	// ID is the DOM id of the chart container (e.g. "chart-0").
	ID    string    `json:"id" yaml:"id"`
	Index int       `json:"index" yaml:"index"`
	Title string    `json:"title" yaml:"title"`
	Kind  ChartKind `json:"kind" yaml:"kind"`
}

// RasterizedChart is a captured bitmap with the title read from the
// rendered element.
type RasterizedChart struct {
	Title  string `json:"title" yaml:"title"`
	PNG    []byte `json:"-" yaml:"-"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// CorrelationStrength labels a coefficient by magnitude: above 0.7 is
// strong, above 0.4 moderate, otherwise weak.
func CorrelationStrength(r float64) string {
	if r < 0 {
		r = -r
	}
	switch {
	case r > 0.7:
		return "strong"
	case r > 0.4:
		return "moderate"
	default:
		return "weak"
	}
}
