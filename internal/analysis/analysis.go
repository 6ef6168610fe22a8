// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis turns a query classification into a structured analysis
// document. Text comes from declarative templates; period statistics are
// computed from the indicator dataset.
package analysis

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/healthdash/internal/indicators"
	"github.com/pdiddy/healthdash/pkg/types"
)

// Synthesizer builds analysis documents. It is safe for concurrent use.
type Synthesizer struct {
	templates *Templates
	data      *indicators.Dataset
	log       *zap.Logger
}

// New creates a synthesizer over the embedded templates and data.
func New(data *indicators.Dataset, log *zap.Logger) (*Synthesizer, error) {
	t, err := ParseTemplates(templatesYAML)
	if err != nil {
		return nil, err
	}
	return NewWithTemplates(t, data, log), nil
}

// NewWithTemplates creates a synthesizer over a caller-supplied catalogue.
func NewWithTemplates(t *Templates, data *indicators.Dataset, log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{templates: t, data: data, log: log}
}

// Synthesize builds the analysis for c. Dispatch order: a correlation query
// on a supported pair, then a dedicated template (oral health, or the
// maternal and infant pair without correlation framing), then the generic
// template for the topic. Every classification yields a document with a
// title, a summary and at least one section.
func (s *Synthesizer) Synthesize(c types.Classification) types.AnalysisDocument {
	var doc types.AnalysisDocument
	switch {
	case c.IsCorrelationQuery && c.Pair.Supported():
		doc = s.correlation(c)
	case c.Topic == types.TopicOralHealth:
		doc = s.dedicated(KeyOralHealth, c)
	case c.Pair == types.PairMaternalInfant:
		doc = s.dedicated(KeyMaternalInfant, c)
	default:
		doc = s.generic(c)
	}

	s.log.Debug("analysis synthesized",
		zap.String("topic", string(c.Topic)),
		zap.String("case", string(doc.Case)),
		zap.String("template", doc.TemplateKey),
		zap.Int("sections", len(doc.Sections)),
	)
	return doc
}

func (s *Synthesizer) correlation(c types.Classification) types.AnalysisDocument {
	tpl := s.templates.Correlation[c.Pair].expand(placeholders(c.Topic, c.YearRange))
	left, right, _ := indicators.PairSeries(c.Pair)

	sections := []types.Section{s.coefficientSection(c.Pair, left, right)}
	sections = append(sections, tpl.Sections...)
	sections = append(sections, s.seriesSections(c.YearRange, left, right)...)

	return types.AnalysisDocument{
		Title:            tpl.Title,
		ExecutiveSummary: tpl.Summary,
		Sections:         sections,
		Recommendations:  tpl.Recommendations,
		Case:             types.CaseCorrelation,
		TemplateKey:      string(c.Pair),
	}
}

func (s *Synthesizer) dedicated(key string, c types.Classification) types.AnalysisDocument {
	tpl, ok := s.templates.Dedicated[key]
	if !ok {
		return s.generic(c)
	}
	tpl = tpl.expand(placeholders(c.Topic, c.YearRange))

	sections := tpl.Sections
	if key == KeyMaternalInfant {
		sections = append(sections, s.seriesSections(c.YearRange, indicators.SeriesMaternalMortality, indicators.SeriesInfantMortality)...)
	}

	return types.AnalysisDocument{
		Title:            tpl.Title,
		ExecutiveSummary: tpl.Summary,
		Sections:         sections,
		Recommendations:  tpl.Recommendations,
		Case:             types.CaseDedicated,
		TemplateKey:      key,
	}
}

func (s *Synthesizer) generic(c types.Classification) types.AnalysisDocument {
	tpl := s.templates.Generic.expand(placeholders(c.Topic, c.YearRange))

	sections := tpl.Sections
	if focus := s.templates.Focus[c.Topic]; focus != "" && len(sections) > 0 {
		sections[0].Body += " " + focus
	}
	if name, ok := indicators.TopicSeries(c.Topic); ok {
		sections = append(sections, s.seriesSections(c.YearRange, name)...)
	}

	return types.AnalysisDocument{
		Title:            tpl.Title,
		ExecutiveSummary: tpl.Summary,
		Sections:         sections,
		Case:             types.CaseGeneric,
		TemplateKey:      string(c.Topic),
	}
}

func (s *Synthesizer) coefficientSection(pair types.CorrelationPair, left, right string) types.Section {
	r, _ := indicators.Coefficient(pair)
	direction := "positive"
	if r < 0 {
		direction = "negative"
	}
	return types.Section{
		Title: "Correlation coefficient",
		Body: fmt.Sprintf("The Pearson coefficient between %s and %s is r = %.2f, a %s %s association.",
			s.label(left), s.label(right), r, types.CorrelationStrength(r), direction),
	}
}

func (s *Synthesizer) label(name string) string {
	if series, ok := s.data.Series(name); ok && series.Label != "" {
		return lowerFirst(series.Label)
	}
	return name
}

// seriesSections computes one "Historical series" section per named series,
// restricted to r. Unknown series names are skipped.
func (s *Synthesizer) seriesSections(r types.YearRange, names ...string) []types.Section {
	var out []types.Section
	for _, name := range names {
		series, ok := s.data.Series(name)
		if !ok {
			s.log.Warn("series missing from dataset", zap.String("series", name))
			continue
		}
		out = append(out, types.Section{
			Title: "Historical series: " + series.Label,
			Body:  SeriesSummary(series, r),
		})
	}
	return out
}

// SeriesSummary describes the statistics of series over r in one paragraph.
// An empty filter reports zero statistics and says so.
func SeriesSummary(series types.IndicatorSeries, r types.YearRange) string {
	filtered := series.Filter(r)
	st := filtered.Stats()
	label := lowerFirst(series.Label)

	if st.Count == 0 {
		return fmt.Sprintf("No data for period %s in the %s series (available %s). "+
			"Average 0.00, minimum 0.00, maximum 0.00, reduction 0.0%%.",
			r.Label(), label, series.Span().Label())
	}
	if st.Count == 1 {
		return fmt.Sprintf("In %d, %s was %.2f %s.", st.MinYear, label, st.Mean, series.Unit)
	}
	return fmt.Sprintf("From %d to %d (%d years), %s averaged %.2f %s, "+
		"ranging from a minimum of %.2f in %d to a maximum of %.2f in %d. "+
		"The difference between maximum and minimum is a reduction of %.1f%% relative to the maximum.",
		filtered.Points[0].Year, filtered.Points[len(filtered.Points)-1].Year, st.Count,
		label, st.Mean, series.Unit, st.Min, st.MinYear, st.Max, st.MaxYear, st.ReductionPct)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	// Keep acronyms such as "MMR".
	if len(b) > 1 && b[1] >= 'A' && b[1] <= 'Z' {
		return s
	}
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
