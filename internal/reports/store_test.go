// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/healthdash/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{Dir: t.TempDir(), MaxResults: 20})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleReport(id string, topic types.Topic, title, summary string, age time.Duration) types.Report {
	r := 0.78
	return types.Report{
		ID:    id,
		Query: title,
		Classification: types.Classification{
			Query:     title,
			Topic:     topic,
			YearRange: types.YearRange{Start: 2015, End: 2020},
		},
		Panel: types.Panel{
			Title: topic.DisplayName(),
			KPIs:  []types.KPI{{Title: "Coverage", Value: "54%", Change: "+2.1%"}},
		},
		Analysis: types.AnalysisDocument{
			Title:            title,
			ExecutiveSummary: summary,
			Sections:         []types.Section{{Title: "Overview", Body: summary}},
			Recommendations: []types.Recommendation{{
				Priority: "High", Action: "Expand", Timeline: "12 months",
				Investment: "Moderate", Responsible: "Ministry", ExpectedImpact: "Lower rates",
			}},
			Case:        types.CaseGeneric,
			TemplateKey: string(topic),
		},
		Charts: []types.ChartSpec{{
			Kind:        types.ChartCorrelationScatter,
			Title:       "Correlation",
			Data:        []types.Datum{{"year": 2015.0, "x": 1.5, "y": 2.5}},
			XKey:        "x",
			YKey:        "y",
			Correlation: &r,
		}},
		CreatedAt: base.Add(-age),
	}
}

func TestStore_SaveGetRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	want := sampleReport("r1", types.TopicOralHealth, "Oral health overview", "Dental care coverage rose.", 0)
	want.DemoData = true
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := testStore(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(context.Background(), "nope"), ErrNotFound)
}

func TestStore_SaveRejectsEmptyID(t *testing.T) {
	s := testStore(t)
	assert.Error(t, s.Save(context.Background(), types.Report{}))
}

func TestStore_SaveReplacesByID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleReport("r1", types.TopicEpidemiology, "Dengue first", "dengue outbreak", 0)))
	require.NoError(t, s.Save(ctx, sampleReport("r1", types.TopicEpidemiology, "Dengue second", "measles campaign", 0)))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Dengue second", got.Analysis.Title)

	// The index follows the update.
	hits, err := s.List(ctx, QueryOptions{Query: "outbreak"})
	require.NoError(t, err)
	assert.Empty(t, hits)
	hits, err = s.List(ctx, QueryOptions{Query: "measles"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestStore_ListNewestFirstAndTopicFilter(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleReport("old", types.TopicOralHealth, "Oral old", "x", 2*time.Hour)))
	require.NoError(t, s.Save(ctx, sampleReport("new", types.TopicOralHealth, "Oral new", "x", 0)))
	require.NoError(t, s.Save(ctx, sampleReport("mid", types.TopicMentalHealth, "Mental", "x", time.Hour)))

	all, err := s.List(ctx, QueryOptions{})
	require.NoError(t, err)
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
	assert.Equal(t, "2015–2020", all[0].Period)
	assert.True(t, base.Equal(all[0].CreatedAt))

	oral, err := s.List(ctx, QueryOptions{Topic: types.TopicOralHealth})
	require.NoError(t, err)
	assert.Len(t, oral, 2)

	limited, err := s.List(ctx, QueryOptions{MaxResults: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "new", limited[0].ID)
}

func TestStore_FullTextSearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleReport("a", types.TopicEpidemiology, "Dengue and temperature", "Incidence follows temperature peaks.", 0)))
	require.NoError(t, s.Save(ctx, sampleReport("b", types.TopicOralHealth, "Oral health", "Fluoridation reached most municipalities.", 0)))

	hits, err := s.List(ctx, QueryOptions{Query: "temperature"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].ID)

	// Terms are ANDed; punctuation and operators are literal.
	hits, err = s.List(ctx, QueryOptions{Query: `fluoridation "OR" NEAR(`})
	require.NoError(t, err)
	assert.Empty(t, hits)

	// KPI lines are indexed.
	hits, err = s.List(ctx, QueryOptions{Query: "coverage"})
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = s.List(ctx, QueryOptions{Query: "coverage", Topic: types.TopicOralHealth})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b", hits[0].ID)
}

func TestStore_Delete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleReport("a", types.TopicEpidemiology, "Dengue", "dengue", 0)))

	require.NoError(t, s.Delete(ctx, "a"))
	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	hits, err := s.List(ctx, QueryOptions{Query: "dengue"})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(types.StoreConfig{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), sampleReport("a", types.TopicFinancing, "Spending", "per capita", 0)))
	require.NoError(t, s.Close())

	s, err = NewStore(types.StoreConfig{Dir: dir})
	require.NoError(t, err)
	defer s.Close()
	hits, err := s.List(context.Background(), QueryOptions{Query: "capita"})
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestStore_Export(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleReport("a", types.TopicEpidemiology, "Dengue", "dengue", 0)))
	require.NoError(t, s.Save(ctx, sampleReport("b", types.TopicOralHealth, "Oral", "teeth", time.Minute)))

	var js bytes.Buffer
	require.NoError(t, s.Export(ctx, &js, FormatJSON, QueryOptions{}))
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0]["id"])
	assert.Equal(t, "epidemiology", entries[0]["topic"])
	assert.Contains(t, entries[0], "analysis")

	var ym bytes.Buffer
	require.NoError(t, s.Export(ctx, &ym, FormatYAML, QueryOptions{Topic: types.TopicOralHealth}))
	var yentries []ExportEntry
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &yentries))
	require.Len(t, yentries, 1)
	assert.Equal(t, "b", yentries[0].ID)
	assert.Equal(t, "Oral", yentries[0].Analysis.Title)
	require.Len(t, yentries[0].Charts, 1)
	assert.Equal(t, types.ChartCorrelationScatter, yentries[0].Charts[0].Kind)
	assert.Equal(t, 1, yentries[0].Charts[0].Points)

	assert.Error(t, s.Export(ctx, &bytes.Buffer{}, Format("xml"), QueryOptions{}))
}

func TestMatchExpr(t *testing.T) {
	assert.Equal(t, `"dengue" "2019"`, matchExpr(" dengue  2019 "))
	assert.Equal(t, `"say""hi"""`, matchExpr(`say"hi"`))
	assert.Empty(t, matchExpr("   "))
}
