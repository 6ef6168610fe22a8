// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package charts derives chart descriptors from a classification and the
// topic's indicator panel.
package charts

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/pdiddy/healthdash/internal/indicators"
	"github.com/pdiddy/healthdash/pkg/types"
)

// YearKey is the category field of series-derived charts.
const YearKey = "year"

// Builder produces chart specs. It holds no per-call state.
type Builder struct {
	data *indicators.Dataset
	log  *zap.Logger
}

// NewBuilder creates a builder that reads pair series from data.
func NewBuilder(data *indicators.Dataset, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{data: data, log: log}
}

// Build returns the charts for c. A correlation query yields a scatter plot
// followed by a dual-line chart of the pair. A maternal and infant query
// without correlation framing yields the dual-line chart alone. Other
// topics convert the panel's chart descriptors; the general topic yields
// none.
func (b *Builder) Build(c types.Classification, panel types.Panel) []types.ChartSpec {
	switch {
	case c.IsCorrelationQuery && c.Pair.Supported():
		left, right, ok := b.pairSeries(c.Pair, c.YearRange)
		if !ok {
			return nil
		}
		return []types.ChartSpec{scatter(c.Pair, left, right), dualLine(left, right)}
	case c.Pair == types.PairMaternalInfant:
		left, right, ok := b.pairSeries(c.Pair, c.YearRange)
		if !ok {
			return nil
		}
		return []types.ChartSpec{dualLine(left, right)}
	case c.Topic == types.TopicGeneral || !c.Topic.Valid():
		return nil
	}

	specs := make([]types.ChartSpec, 0, len(panel.Charts))
	for _, pc := range panel.Charts {
		spec, ok := FromPanel(pc)
		if !ok {
			b.log.Warn("skipping panel chart with unsupported type",
				zap.String("title", pc.Title), zap.String("type", pc.Type))
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}

// FromPanel converts a provider chart descriptor. Only bar, line and pie
// are accepted from panels.
func FromPanel(pc types.PanelChart) (types.ChartSpec, bool) {
	kind := types.ChartKind(pc.Type)
	switch kind {
	case types.ChartBar, types.ChartLine, types.ChartPie:
	default:
		return types.ChartSpec{}, false
	}
	spec := types.ChartSpec{
		Kind:    kind,
		Title:   pc.Title,
		Data:    append([]types.Datum(nil), pc.Data...),
		NameKey: pc.NameKey,
		DataKey: pc.DataKey,
		XLabel:  pc.XLabel,
		YLabel:  pc.YLabel,
	}
	if kind == types.ChartLine {
		spec.TargetKey = pc.TargetKey
		if spec.TargetKey == "" {
			spec.TargetKey = types.DefaultTargetKey
		}
	}
	return spec, true
}

// pairSeries returns both series of pair restricted to their common years.
// The window is narrowed to r when r covers at least two common years;
// otherwise the whole overlap is used so the chart is never empty.
func (b *Builder) pairSeries(pair types.CorrelationPair, r types.YearRange) (types.IndicatorSeries, types.IndicatorSeries, bool) {
	ln, rn, ok := indicators.PairSeries(pair)
	if !ok {
		return types.IndicatorSeries{}, types.IndicatorSeries{}, false
	}
	left, lok := b.data.Series(ln)
	right, rok := b.data.Series(rn)
	if !lok || !rok {
		b.log.Warn("pair series missing", zap.String("pair", string(pair)))
		return types.IndicatorSeries{}, types.IndicatorSeries{}, false
	}

	ls, rs := left.Span(), right.Span()
	overlap := types.YearRange{Start: max(ls.Start, rs.Start), End: min(ls.End, rs.End)}
	window := types.YearRange{Start: max(overlap.Start, r.Start), End: min(overlap.End, r.End)}
	if window.End-window.Start < 1 {
		window = overlap
	}
	return left.Filter(window), right.Filter(window), true
}

func scatter(pair types.CorrelationPair, left, right types.IndicatorSeries) types.ChartSpec {
	r, _ := indicators.Coefficient(pair)
	return types.ChartSpec{
		Kind:        types.ChartCorrelationScatter,
		Title:       "Correlation: " + left.Label + " × " + right.Label,
		Data:        joinByYear(left, right),
		NameKey:     YearKey,
		XKey:        left.Name,
		YKey:        right.Name,
		XLabel:      axisLabel(left),
		YLabel:      axisLabel(right),
		Correlation: &r,
	}
}

func dualLine(left, right types.IndicatorSeries) types.ChartSpec {
	return types.ChartSpec{
		Kind:         types.ChartDualLine,
		Title:        left.Label + " and " + right.Label + " over time",
		Data:         joinByYear(left, right),
		NameKey:      YearKey,
		SeriesKeys:   []string{left.Name, right.Name},
		SeriesLabels: []string{axisLabel(left), axisLabel(right)},
		XLabel:       "Year",
	}
}

// joinByYear emits one datum per year present in both series.
func joinByYear(left, right types.IndicatorSeries) []types.Datum {
	var out []types.Datum
	for _, p := range left.Points {
		v, ok := right.Value(p.Year)
		if !ok {
			continue
		}
		out = append(out, types.Datum{
			YearKey:    strconv.Itoa(p.Year),
			left.Name:  p.Value,
			right.Name: v,
		})
	}
	return out
}

func axisLabel(s types.IndicatorSeries) string {
	if s.Unit == "" {
		return s.Label
	}
	return s.Label + " (" + s.Unit + ")"
}
