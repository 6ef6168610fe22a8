// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SeriesPoint is one year's value in an indicator series.
type SeriesPoint struct {
	Year  int     `json:"year" yaml:"year"`
	Value float64 `json:"value" yaml:"value"`
}

// IndicatorSeries is a named metric tracked over consecutive years
// (e.g. "infant mortality per 1,000 live births").
type IndicatorSeries struct {
	// Name identifies the series in the dataset (e.g. "infant_mortality").
	Name string `json:"name" yaml:"name"`

	// Label is the human-readable metric name.
	Label string `json:"label" yaml:"label"`

	// Unit describes the measure (e.g. "per 1,000 live births").
	Unit string `json:"unit" yaml:"unit"`

	// Points are ordered by year with no gaps over the declared span.
	Points []SeriesPoint `json:"points" yaml:"points"`
}

// Filter returns a copy of the series restricted to years inside r.
func (s IndicatorSeries) Filter(r YearRange) IndicatorSeries {
	out := IndicatorSeries{Name: s.Name, Label: s.Label, Unit: s.Unit}
	for _, p := range s.Points {
		if r.Contains(p.Year) {
			out.Points = append(out.Points, p)
		}
	}
	return out
}

// Value returns the value recorded for year.
func (s IndicatorSeries) Value(year int) (float64, bool) {
	for _, p := range s.Points {
		if p.Year == year {
			return p.Value, true
		}
	}
	return 0, false
}

// Span returns the first and last year covered by the series.
func (s IndicatorSeries) Span() YearRange {
	if len(s.Points) == 0 {
		return YearRange{}
	}
	return NewYearRange(s.Points[0].Year, s.Points[len(s.Points)-1].Year)
}

// SeriesStats summarises a (usually filtered) series.
type SeriesStats struct {
	Count   int     `json:"count" yaml:"count"`
	Mean    float64 `json:"mean" yaml:"mean"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	MinYear int     `json:"min_year" yaml:"min_year"`
	MaxYear int     `json:"max_year" yaml:"max_year"`

	// ReductionPct is (Max-Min)/Max*100, or 0 when Max is 0.
	ReductionPct float64 `json:"reduction_pct" yaml:"reduction_pct"`
}

// Stats computes the arithmetic mean, extremes and reduction percentage.
// An empty series yields zero stats.
func (s IndicatorSeries) Stats() SeriesStats {
	if len(s.Points) == 0 {
		return SeriesStats{}
	}
	st := SeriesStats{
		Count:   len(s.Points),
		Min:     s.Points[0].Value,
		Max:     s.Points[0].Value,
		MinYear: s.Points[0].Year,
		MaxYear: s.Points[0].Year,
	}
	var sum float64
	for _, p := range s.Points {
		sum += p.Value
		if p.Value < st.Min {
			st.Min, st.MinYear = p.Value, p.Year
		}
		if p.Value > st.Max {
			st.Max, st.MaxYear = p.Value, p.Year
		}
	}
	st.Mean = sum / float64(len(s.Points))
	if st.Max != 0 {
		st.ReductionPct = (st.Max - st.Min) / st.Max * 100
	}
	return st
}

// Datum is one data point of a chart: field name to number or label.
type Datum map[string]any

// KPI is a headline figure shown on a dashboard panel.
type KPI struct {
	Title       string `json:"title" yaml:"title"`
	Value       string `json:"value" yaml:"value"`
	Change      string `json:"change" yaml:"change"`
	ChangeType  string `json:"change_type" yaml:"change_type"`
	Description string `json:"description" yaml:"description"`
}

// PanelChart is a chart descriptor as returned by the indicator provider.
type PanelChart struct {
	Type      string  `json:"type" yaml:"type"`
	Title     string  `json:"title" yaml:"title"`
	Data      []Datum `json:"data" yaml:"data"`
	DataKey   string  `json:"data_key" yaml:"data_key"`
	NameKey   string  `json:"name_key" yaml:"name_key"`
	TargetKey string  `json:"target_key,omitempty" yaml:"target_key,omitempty"`
	XLabel    string  `json:"x_label,omitempty" yaml:"x_label,omitempty"`
	YLabel    string  `json:"y_label,omitempty" yaml:"y_label,omitempty"`
}

// Panel is the read-only indicator bundle the provider returns per topic.
type Panel struct {
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description" yaml:"description"`
	KPIs        []KPI        `json:"kpis" yaml:"kpis"`
	Charts      []PanelChart `json:"charts" yaml:"charts"`

	// Demo is set when the static fallback dataset served the panel.
	Demo bool `json:"-" yaml:"-"`
}
