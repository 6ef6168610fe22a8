// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package charts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/healthdash/internal/classify"
	"github.com/pdiddy/healthdash/internal/indicators"
	"github.com/pdiddy/healthdash/pkg/types"
)

func setup(t *testing.T) (*Builder, *indicators.StaticProvider) {
	t.Helper()
	d, err := indicators.Default()
	require.NoError(t, err)
	return NewBuilder(d, nil), indicators.NewStatic(d)
}

func build(t *testing.T, query string) []types.ChartSpec {
	t.Helper()
	b, p := setup(t)
	c := classify.Classify(query)
	panel, err := p.Panel(context.Background(), c.Topic)
	require.NoError(t, err)
	return b.Build(c, panel)
}

func kinds(specs []types.ChartSpec) []types.ChartKind {
	out := make([]types.ChartKind, 0, len(specs))
	for _, s := range specs {
		out = append(out, s.Kind)
	}
	return out
}

func TestBuild_CorrelationYieldsScatterThenDualLine(t *testing.T) {
	specs := build(t, "relationship between maternal mortality and infant mortality")
	require.Len(t, specs, 2)
	assert.Equal(t, []types.ChartKind{types.ChartCorrelationScatter, types.ChartDualLine}, kinds(specs))

	sc := specs[0]
	require.NotNil(t, sc.Correlation)
	assert.Equal(t, 0.78, *sc.Correlation)
	assert.Equal(t, indicators.SeriesMaternalMortality, sc.XKey)
	assert.Equal(t, indicators.SeriesInfantMortality, sc.YKey)
	for _, d := range sc.Data {
		assert.Contains(t, d, sc.XKey)
		assert.Contains(t, d, sc.YKey)
	}

	dl := specs[1]
	assert.Equal(t, []string{indicators.SeriesMaternalMortality, indicators.SeriesInfantMortality}, dl.SeriesKeys)
	assert.Len(t, dl.SeriesLabels, 2)
}

func TestBuild_CorrelationRestrictedToRange(t *testing.T) {
	specs := build(t, "dengue vs temperature 2015 to 2018")
	require.Len(t, specs, 2)
	require.Len(t, specs[0].Data, 4)
	assert.Equal(t, "2015", specs[0].Data[0][YearKey])
	assert.Equal(t, "2018", specs[0].Data[3][YearKey])
}

func TestBuild_CorrelationFallsBackToOverlap(t *testing.T) {
	// Default year 2024 has no data; the whole 2014–2023 overlap is shown.
	specs := build(t, "dengue vs temperature")
	require.Len(t, specs, 2)
	assert.Len(t, specs[0].Data, 10)
}

func TestBuild_MaternalInfantDualLine(t *testing.T) {
	specs := build(t, "maternal and infant mortality")
	assert.Equal(t, []types.ChartKind{types.ChartDualLine}, kinds(specs))
}

func TestBuild_TopicPanelCharts(t *testing.T) {
	specs := build(t, "oral health")
	require.Len(t, specs, 2)
	assert.Equal(t, []types.ChartKind{types.ChartBar, types.ChartLine}, kinds(specs))
	assert.Equal(t, "target", specs[1].TargetKey)
	assert.Equal(t, "region", specs[0].NameKey)
}

func TestBuild_GeneralIsEmpty(t *testing.T) {
	assert.Empty(t, build(t, "xyz"))
}

func TestBuild_SkipsUnsupportedPanelChart(t *testing.T) {
	b, _ := setup(t)
	panel := types.Panel{Charts: []types.PanelChart{
		{Type: "radar", Title: "r"},
		{Type: "pie", Title: "p", NameKey: "n", DataKey: "v"},
	}}
	specs := b.Build(types.Classification{Topic: types.TopicFinancing}, panel)
	assert.Equal(t, []types.ChartKind{types.ChartPie}, kinds(specs))
}

func TestFromPanel_LineDefaultsTargetKey(t *testing.T) {
	spec, ok := FromPanel(types.PanelChart{Type: "line", Title: "t", NameKey: "year", DataKey: "v"})
	require.True(t, ok)
	assert.Equal(t, types.DefaultTargetKey, spec.TargetKey)

	spec, ok = FromPanel(types.PanelChart{Type: "bar", TargetKey: "goal"})
	require.True(t, ok)
	assert.Empty(t, spec.TargetKey)

	_, ok = FromPanel(types.PanelChart{Type: "dual_line"})
	assert.False(t, ok)
}
