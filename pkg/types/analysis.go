// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AnalysisCase records which synthesizer branch produced a document.
type AnalysisCase string

const (
	CaseCorrelation AnalysisCase = "correlation"
	CaseDedicated   AnalysisCase = "dedicated"
	CaseGeneric     AnalysisCase = "generic"
)

// Section is one titled block of analysis text.
type Section struct {
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
}

// Recommendation is one row of the recommendations table.
type Recommendation struct {
	Priority       string `json:"priority" yaml:"priority"`
	Action         string `json:"action" yaml:"action"`
	Timeline       string `json:"timeline" yaml:"timeline"`
	Investment     string `json:"investment" yaml:"investment"`
	Responsible    string `json:"responsible" yaml:"responsible"`
	ExpectedImpact string `json:"expected_impact" yaml:"expected_impact"`
}

// Complete reports whether every field of the row is filled in.
func (r Recommendation) Complete() bool {
	return r.Priority != "" && r.Action != "" && r.Timeline != "" &&
		r.Investment != "" && r.Responsible != "" && r.ExpectedImpact != ""
}

// AnalysisDocument is the structured report body produced per query.
// It is built once and not modified afterwards.
type AnalysisDocument struct {
	Title            string           `json:"title" yaml:"title"`
	ExecutiveSummary string           `json:"executive_summary" yaml:"executive_summary"`
	Sections         []Section        `json:"sections" yaml:"sections"`
	Recommendations  []Recommendation `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`

	// Case is the dispatch branch that built the document.
	Case AnalysisCase `json:"case" yaml:"case"`

	// TemplateKey names the template used (topic, pair, or dedicated key).
	TemplateKey string `json:"template_key" yaml:"template_key"`
}
