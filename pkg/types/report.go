// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Report is the outcome of one search: classification, panel data,
// analysis and chart specs. It is what the report store persists.
type Report struct {
	ID             string           `json:"id" yaml:"id"`
	Query          string           `json:"query" yaml:"query"`
	Classification Classification   `json:"classification" yaml:"classification"`
	Panel          Panel            `json:"panel" yaml:"panel"`
	Analysis       AnalysisDocument `json:"analysis" yaml:"analysis"`
	Charts         []ChartSpec      `json:"charts" yaml:"charts"`
	CreatedAt      time.Time        `json:"created_at" yaml:"created_at"`

	// DemoData is set when the indicator provider fell back to static data.
	DemoData bool `json:"demo_data" yaml:"demo_data"`
}

// Highlights renders the panel KPIs as one-line bullets for summaries.
func (r Report) Highlights() []string {
	lines := make([]string, 0, len(r.Panel.KPIs))
	for _, k := range r.Panel.KPIs {
		line := k.Title + ": " + k.Value
		if k.Change != "" {
			line += " (" + k.Change + ")"
		}
		lines = append(lines, line)
	}
	return lines
}
