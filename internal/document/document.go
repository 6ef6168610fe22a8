// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document merges a report and its captured charts into the
// ordered content tree of the exported PDF.
package document

import (
	_ "embed"
	"fmt"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/healthdash/pkg/types"
)

//go:embed boilerplate.yaml
var boilerplateYAML []byte

// Boilerplate is the fixed text of every export.
type Boilerplate struct {
	Definitions map[string][]types.Definition `yaml:"definitions"`
	Conclusions map[string]types.Conclusions  `yaml:"conclusions"`
	Methodology struct {
		Notes   []string `yaml:"notes"`
		Sources []string `yaml:"sources"`
	} `yaml:"methodology"`
	Footer string `yaml:"footer"`
}

// defaultConclusions is the key of the fallback conclusions.
const defaultConclusions = "default"

// ParseBoilerplate decodes a boilerplate document.
func ParseBoilerplate(data []byte) (*Boilerplate, error) {
	var bp Boilerplate
	if err := yaml.Unmarshal(data, &bp); err != nil {
		return nil, fmt.Errorf("parsing boilerplate: %w", err)
	}
	if _, ok := bp.Conclusions[defaultConclusions]; !ok {
		return nil, fmt.Errorf("boilerplate has no %q conclusions", defaultConclusions)
	}
	return &bp, nil
}

// DefaultBoilerplate returns the embedded boilerplate.
func DefaultBoilerplate() (*Boilerplate, error) {
	return ParseBoilerplate(boilerplateYAML)
}

// Input is everything an export is assembled from.
type Input struct {
	Report types.Report
	Charts []types.RasterizedChart

	// GeneratedAt stamps the header and the filename.
	GeneratedAt time.Time
}

// Filename returns the download name for a report on topic generated at t,
// e.g. "health-report-oral-health-20260102-030405.pdf".
func Filename(topic types.Topic, t time.Time) string {
	return fmt.Sprintf("health-report-%s-%s.pdf", topic, t.UTC().Format("20060102-150405"))
}

// Assemble builds the export document in fixed order: header, executive
// summary with KPI bullets, charts, sections, recommendations (only when
// present), definitions, conclusions, methodology and footer.
func Assemble(in Input, bp *Boilerplate) types.ExportDocument {
	rep := in.Report
	a := rep.Analysis

	blocks := []types.Block{
		types.HeaderBlock{Title: a.Title, Query: rep.Query, GeneratedAt: in.GeneratedAt},
		types.SummaryBlock{Text: a.ExecutiveSummary, Bullets: rep.Highlights()},
	}
	for _, c := range in.Charts {
		blocks = append(blocks, types.ChartBlock{Chart: c})
	}
	for _, s := range a.Sections {
		blocks = append(blocks, types.SectionBlock{Section: s})
	}
	if len(a.Recommendations) > 0 {
		blocks = append(blocks, types.RecommendationsBlock{Rows: a.Recommendations})
	}
	blocks = append(blocks,
		types.DefinitionsBlock{Entries: bp.definitions(rep.Classification)},
		types.ConclusionsBlock{Conclusions: bp.conclusions(a)},
		types.MethodologyBlock{Notes: bp.Methodology.Notes, Sources: bp.Methodology.Sources},
		types.FooterBlock{Text: bp.Footer},
	)

	return types.ExportDocument{
		Filename: Filename(rep.Classification.Topic, in.GeneratedAt),
		Title:    a.Title,
		Blocks:   blocks,
	}
}

// definitions follows the synthesizer's dispatch: a mentioned pair first,
// then the topic, then the general glossary.
func (bp *Boilerplate) definitions(c types.Classification) []types.Definition {
	if c.Pair != types.PairNone {
		if d, ok := bp.Definitions[string(c.Pair)]; ok {
			return d
		}
	}
	if d, ok := bp.Definitions[string(c.Topic)]; ok {
		return d
	}
	return bp.Definitions[string(types.TopicGeneral)]
}

// conclusions picks the text for the analysis template, or the default.
func (bp *Boilerplate) conclusions(a types.AnalysisDocument) types.Conclusions {
	if a.Case != types.CaseGeneric {
		if c, ok := bp.Conclusions[a.TemplateKey]; ok {
			return c
		}
	}
	return bp.Conclusions[defaultConclusions]
}
