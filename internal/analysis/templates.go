// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	_ "embed"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/healthdash/pkg/types"
)

//go:embed templates.yaml
var templatesYAML []byte

// Template is the text skeleton of one analysis document.
type Template struct {
	Title           string                 `yaml:"title"`
	Summary         string                 `yaml:"summary"`
	Sections        []types.Section        `yaml:"sections"`
	Recommendations []types.Recommendation `yaml:"recommendations"`
}

// Templates is the parsed template catalogue.
type Templates struct {
	Correlation map[types.CorrelationPair]Template `yaml:"correlation"`
	Dedicated   map[string]Template                `yaml:"dedicated"`
	Generic     Template                           `yaml:"generic"`
	Focus       map[types.Topic]string             `yaml:"focus"`
}

// Dedicated template keys.
const (
	KeyOralHealth     = "oral-health"
	KeyMaternalInfant = "maternal-infant"
)

// ParseTemplates decodes a template catalogue and checks that every
// supported pair has a correlation template and that every recommendation
// row is complete.
func ParseTemplates(data []byte) (*Templates, error) {
	var t Templates
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	if t.Generic.Title == "" || t.Generic.Summary == "" || len(t.Generic.Sections) == 0 {
		return nil, fmt.Errorf("generic template is incomplete")
	}
	for _, pair := range []types.CorrelationPair{types.PairMaternalInfant, types.PairDengueTemperature, types.PairVaccinationMeasles} {
		if _, ok := t.Correlation[pair]; !ok {
			return nil, fmt.Errorf("no correlation template for %s", pair)
		}
	}
	check := func(key string, tpl Template) error {
		for i, r := range tpl.Recommendations {
			if !r.Complete() {
				return fmt.Errorf("template %s: recommendation %d is incomplete", key, i)
			}
		}
		return nil
	}
	for pair, tpl := range t.Correlation {
		if err := check(string(pair), tpl); err != nil {
			return nil, err
		}
	}
	for key, tpl := range t.Dedicated {
		if err := check(key, tpl); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

// placeholders builds the replacer for {topic}, {start}, {end} and {period}.
func placeholders(topic types.Topic, r types.YearRange) *strings.Replacer {
	return strings.NewReplacer(
		"{topic}", topic.DisplayName(),
		"{start}", fmt.Sprint(r.Start),
		"{end}", fmt.Sprint(r.End),
		"{period}", r.Label(),
	)
}

// expand returns a copy of tpl with placeholders replaced.
func (tpl Template) expand(rep *strings.Replacer) Template {
	out := Template{
		Title:           rep.Replace(tpl.Title),
		Summary:         rep.Replace(tpl.Summary),
		Sections:        make([]types.Section, 0, len(tpl.Sections)),
		Recommendations: append([]types.Recommendation(nil), tpl.Recommendations...),
	}
	for _, s := range tpl.Sections {
		out.Sections = append(out.Sections, types.Section{Title: rep.Replace(s.Title), Body: rep.Replace(s.Body)})
	}
	return out
}
