// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// BlockKind names a block of the export document in presentation order.
type BlockKind string

const (
	BlockHeader          BlockKind = "header"
	BlockSummary         BlockKind = "summary"
	BlockChart           BlockKind = "chart"
	BlockSection         BlockKind = "section"
	BlockRecommendations BlockKind = "recommendations"
	BlockDefinitions     BlockKind = "definitions"
	BlockConclusions     BlockKind = "conclusions"
	BlockMethodology     BlockKind = "methodology"
	BlockFooter          BlockKind = "footer"
)

// Block is one element of an ExportDocument. The set of implementations is
// closed to this package.
type Block interface {
	Kind() BlockKind
	block()
}

// HeaderBlock opens the document.
type HeaderBlock struct {
	Title       string
	Query       string
	GeneratedAt time.Time
}

// SummaryBlock carries the executive summary and KPI bullet lines.
type SummaryBlock struct {
	Text    string
	Bullets []string
}

// ChartBlock is one captured chart preceded by its title.
type ChartBlock struct {
	Chart RasterizedChart
}

// SectionBlock is one analytical section.
type SectionBlock struct {
	Section Section
}

// RecommendationsBlock is the recommendations table.
type RecommendationsBlock struct {
	Rows []Recommendation
}

// Definition is one glossary entry.
type Definition struct {
	Term    string `json:"term" yaml:"term"`
	Meaning string `json:"meaning" yaml:"meaning"`
}

// DefinitionsBlock is the topic glossary.
type DefinitionsBlock struct {
	Entries []Definition
}

// Conclusions holds the three fixed conclusion paragraphs.
type Conclusions struct {
	Positive   string `json:"positive" yaml:"positive"`
	Challenges string `json:"challenges" yaml:"challenges"`
	NextSteps  string `json:"next_steps" yaml:"next_steps"`
}

// ConclusionsBlock closes the analytical part.
type ConclusionsBlock struct {
	Conclusions Conclusions
}

// MethodologyBlock lists methodology notes and sources.
type MethodologyBlock struct {
	Notes   []string
	Sources []string
}

// FooterBlock ends the document.
type FooterBlock struct {
	Text string
}

func (HeaderBlock) Kind() BlockKind          { return BlockHeader }
func (SummaryBlock) Kind() BlockKind         { return BlockSummary }
func (ChartBlock) Kind() BlockKind           { return BlockChart }
func (SectionBlock) Kind() BlockKind         { return BlockSection }
func (RecommendationsBlock) Kind() BlockKind { return BlockRecommendations }
func (DefinitionsBlock) Kind() BlockKind     { return BlockDefinitions }
func (ConclusionsBlock) Kind() BlockKind     { return BlockConclusions }
func (MethodologyBlock) Kind() BlockKind     { return BlockMethodology }
func (FooterBlock) Kind() BlockKind          { return BlockFooter }

func (HeaderBlock) block()          {}
func (SummaryBlock) block()         {}
func (ChartBlock) block()           {}
func (SectionBlock) block()         {}
func (RecommendationsBlock) block() {}
func (DefinitionsBlock) block()     {}
func (ConclusionsBlock) block()     {}
func (MethodologyBlock) block()     {}
func (FooterBlock) block()          {}

// ExportDocument is the ordered content tree handed to the PDF exporter.
type ExportDocument struct {
	// Filename is the download name, unique per request timestamp.
	Filename string
	Title    string
	Blocks   []Block
}

// Kinds returns the block kinds in document order.
func (d ExportDocument) Kinds() []BlockKind {
	kinds := make([]BlockKind, len(d.Blocks))
	for i, b := range d.Blocks {
		kinds[i] = b.Kind()
	}
	return kinds
}
