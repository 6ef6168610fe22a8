// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package indicators supplies dashboard panels and historical indicator
// series. The static dataset is embedded; a remote HTTP source may front it.
package indicators

import (
	_ "embed"
	"fmt"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/healthdash/pkg/types"
)

//go:embed dataset.yaml
var datasetYAML []byte

// Series names in the embedded dataset.
const (
	SeriesInfantMortality     = "infant_mortality"
	SeriesMaternalMortality   = "maternal_mortality"
	SeriesDengueIncidence     = "dengue_incidence"
	SeriesMeanTemperature     = "mean_temperature"
	SeriesVaccinationCoverage = "vaccination_coverage"
	SeriesMeaslesCases        = "measles_cases"
)

// pairSeries maps each correlation pair to its (left, right) series.
var pairSeries = map[types.CorrelationPair][2]string{
	types.PairMaternalInfant:     {SeriesMaternalMortality, SeriesInfantMortality},
	types.PairDengueTemperature:  {SeriesDengueIncidence, SeriesMeanTemperature},
	types.PairVaccinationMeasles: {SeriesVaccinationCoverage, SeriesMeaslesCases},
}

// coefficients are the Pearson coefficients reported for each pair, computed
// offline over the full national series.
var coefficients = map[types.CorrelationPair]float64{
	types.PairMaternalInfant:     0.78,
	types.PairDengueTemperature:  0.65,
	types.PairVaccinationMeasles: -0.72,
}

// Coefficient returns the reported correlation coefficient for pair.
func Coefficient(pair types.CorrelationPair) (float64, bool) {
	r, ok := coefficients[pair]
	return r, ok
}

// topicSeries maps topics that carry a historical series to that series.
var topicSeries = map[types.Topic]string{
	types.TopicChildHealth:  SeriesInfantMortality,
	types.TopicWomensHealth: SeriesMaternalMortality,
}

// PairSeries returns the names of the two series behind pair.
func PairSeries(pair types.CorrelationPair) (left, right string, ok bool) {
	s, ok := pairSeries[pair]
	return s[0], s[1], ok
}

// TopicSeries returns the historical series name for topic, if any.
func TopicSeries(topic types.Topic) (string, bool) {
	name, ok := topicSeries[topic]
	return name, ok
}

// Dataset is the parsed static dataset. It is read-only after loading.
type Dataset struct {
	series map[string]types.IndicatorSeries
	panels map[types.Topic]types.Panel
}

type datasetFile struct {
	Series map[string]types.IndicatorSeries `yaml:"series"`
	Panels map[string]types.Panel           `yaml:"panels"`
}

// ParseDataset decodes a dataset document and validates that every series
// is ordered by year without gaps and every panel names a known topic.
func ParseDataset(data []byte) (*Dataset, error) {
	var f datasetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing dataset: %w", err)
	}

	d := &Dataset{
		series: make(map[string]types.IndicatorSeries, len(f.Series)),
		panels: make(map[types.Topic]types.Panel, len(f.Panels)),
	}
	for name, s := range f.Series {
		s.Name = name
		for i := 1; i < len(s.Points); i++ {
			if s.Points[i].Year != s.Points[i-1].Year+1 {
				return nil, fmt.Errorf("series %s: year %d does not follow %d", name, s.Points[i].Year, s.Points[i-1].Year)
			}
		}
		d.series[name] = s
	}
	for key, p := range f.Panels {
		topic := types.Topic(key)
		if !topic.Valid() {
			return nil, fmt.Errorf("panel %q: unknown topic", key)
		}
		d.panels[topic] = p
	}
	return d, nil
}

var loadDefault = sync.OnceValues(func() (*Dataset, error) {
	return ParseDataset(datasetYAML)
})

// Default returns the embedded dataset, parsed once.
func Default() (*Dataset, error) {
	return loadDefault()
}

// Series returns the full series by name.
func (d *Dataset) Series(name string) (types.IndicatorSeries, bool) {
	s, ok := d.series[name]
	if !ok {
		return types.IndicatorSeries{}, false
	}
	s.Points = append([]types.SeriesPoint(nil), s.Points...)
	return s, true
}

// Panel returns a copy of the panel for topic. KPI and chart slices are
// cloned so callers cannot alter the dataset.
func (d *Dataset) Panel(topic types.Topic) (types.Panel, bool) {
	p, ok := d.panels[topic]
	if !ok {
		return types.Panel{}, false
	}
	p.KPIs = append([]types.KPI(nil), p.KPIs...)
	p.Charts = append([]types.PanelChart(nil), p.Charts...)
	return p, true
}

// Topics lists the topics with a panel.
func (d *Dataset) Topics() []types.Topic {
	var out []types.Topic
	for _, t := range types.AllTopics() {
		if _, ok := d.panels[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
