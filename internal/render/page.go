// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/pdiddy/healthdash/pkg/types"
)

//go:embed page.html.tmpl
var pageTmplText string

var pageTmpl = template.Must(template.New("page").Parse(pageTmplText))

// ChartID returns the DOM id of the chart at index.
func ChartID(index int) string {
	return fmt.Sprintf("chart-%d", index)
}

// PageData is the input of the dashboard page.
type PageData struct {
	Report  types.Report
	Notices []types.Notice

	// Interactive adds the query form; set when the page is served.
	Interactive bool

	// ExportURL, when set, is linked as the PDF download.
	ExportURL string
}

type chartView struct {
	types.ChartHandle
	SVG template.HTML
}

type pageView struct {
	PageData
	Topic     string
	Period    string
	Generated string
	Charts    []chartView
}

// Page writes the HTML document for data and returns the chart manifest in
// document order. Each chart sits in a figure whose id is ChartID(i) with
// its title in a [data-chart-title] caption.
func (r *Renderer) Page(w io.Writer, data PageData) ([]types.ChartHandle, error) {
	rep := data.Report
	view := pageView{
		PageData:  data,
		Topic:     rep.Classification.Topic.DisplayName(),
		Period:    rep.Classification.YearRange.Label(),
		Generated: rep.CreatedAt.UTC().Format(time.RFC1123),
	}

	manifest := make([]types.ChartHandle, 0, len(rep.Charts))
	for i, spec := range rep.Charts {
		svg, err := r.Chart(spec)
		if err != nil {
			return nil, err
		}
		h := types.ChartHandle{ID: ChartID(i), Index: i, Title: spec.Title, Kind: spec.Kind}
		manifest = append(manifest, h)
		// SVG output escapes every data-derived string.
		view.Charts = append(view.Charts, chartView{ChartHandle: h, SVG: template.HTML(svg)})
	}

	if err := pageTmpl.Execute(w, view); err != nil {
		return nil, fmt.Errorf("writing page: %w", err)
	}
	return manifest, nil
}
