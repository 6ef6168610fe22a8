// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/healthdash/internal/reports"
	"github.com/pdiddy/healthdash/pkg/types"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig()
	require.NoError(t, err)

	d := types.DefaultConfig()
	assert.Equal(t, d.Classifier, cfg.Classifier)
	assert.Equal(t, d.Export, cfg.Export)
	assert.Equal(t, d.Store, cfg.Store)
	assert.Equal(t, d.Server, cfg.Server)
	assert.Equal(t, d.Raster, cfg.Raster)
	assert.Equal(t, 10*time.Second, cfg.Provider.Timeout)
}

func TestLoadConfig_Environment(t *testing.T) {
	initConfig()
	t.Setenv("HEALTHDASH_CLASSIFIER_DEFAULT_YEAR", "2019")
	t.Setenv("HEALTHDASH_SERVER_FETCH_DELAY", "1s")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 2019, cfg.Classifier.DefaultYear)
	assert.Equal(t, time.Second, cfg.Server.FetchDelay)
}

func TestFormatList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatList(&buf, nil, false))
	assert.Equal(t, "No reports found.\n", buf.String())

	buf.Reset()
	require.NoError(t, formatList(&buf, nil, true))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	rows := []reports.Summary{{
		ID:        "abc",
		Title:     "A very long title that keeps going well past forty characters",
		Period:    "2015–2020",
		Case:      types.CaseGeneric,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
	}}
	require.NoError(t, formatList(&buf, rows, false))
	out := buf.String()
	assert.Contains(t, out, "2026-01-02 03:04")
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "1 reports")
}

func TestPrintReport(t *testing.T) {
	rep := types.Report{
		ID: "id-1",
		Classification: types.Classification{
			Topic:     types.TopicOralHealth,
			YearRange: types.SingleYear(2024),
		},
		Panel: types.Panel{KPIs: []types.KPI{{Title: "Coverage", Value: "54%"}}},
		Analysis: types.AnalysisDocument{
			Title:            "Oral Health",
			ExecutiveSummary: "Summary.",
			Sections:         []types.Section{{Title: "Access", Body: "Body."}},
			Recommendations:  []types.Recommendation{{Priority: "High", Action: "Expand"}},
			Case:             types.CaseDedicated,
		},
		Charts:   []types.ChartSpec{{Kind: types.ChartBar, Title: "Coverage by region"}},
		DemoData: true,
	}

	var buf bytes.Buffer
	printReport(&buf, rep)
	out := buf.String()
	assert.Contains(t, out, "Oral Health\n===========")
	assert.Contains(t, out, "case: dedicated")
	assert.Contains(t, out, "(demo data)")
	assert.Contains(t, out, "  - Coverage: 54%")
	assert.Contains(t, out, "## Access")
	assert.Contains(t, out, "[High] Expand")
	assert.Contains(t, out, "1. Coverage by region (bar, 0 points)")
	assert.Contains(t, out, "id: id-1")
}
