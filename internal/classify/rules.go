// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"strings"

	"github.com/pdiddy/healthdash/pkg/types"
)

// Rule maps keyword matches to a topic. Contains entries match as
// substrings of the normalized query; Words entries must appear as whole
// tokens, for short abbreviations that would otherwise over-match.
type Rule struct {
	Topic    types.Topic
	Contains []string
	Words    []string
}

// Match reports whether the rule fires for normalized text and its tokens.
func (r Rule) Match(text string, tokens map[string]bool) bool {
	for _, k := range r.Contains {
		if strings.Contains(text, k) {
			return true
		}
	}
	for _, w := range r.Words {
		if tokens[w] {
			return true
		}
	}
	return false
}

// defaultRules is evaluated top to bottom; the first match wins.
var defaultRules = []Rule{
	{
		Topic:    types.TopicOralHealth,
		Contains: []string{"saude bucal", "oral health", "bucal", "dental", "dentist", "odontolog", "cpo-d", "carie", "cavities", "teeth"},
		Words:    []string{"cpod", "ceo", "dente", "dentes"},
	},
	{
		Topic:    types.TopicChildHealth,
		Contains: []string{"infant", "child", "crianca", "neonat", "pediatr", "aleitamento", "breastfeed", "puericultura", "under-five", "under five"},
	},
	{
		Topic:    types.TopicWomensHealth,
		Contains: []string{"maternal", "materna", "women", "woman", "mulher", "gestante", "pregnan", "prenatal", "pre-natal", "cervical", "mamografia", "mammograph", "breast cancer"},
	},
	{
		Topic:    types.TopicEpidemiology,
		Contains: []string{"dengue", "epidemi", "surto", "outbreak", "zika", "chikungunya", "covid", "influenza", "measles", "sarampo", "tubercul", "malaria", "infectious", "infeccios", "notificac", "vaccin", "vacina", "imuniz", "immuniz"},
	},
	{
		Topic:    types.TopicChronicDiseases,
		Contains: []string{"diabet", "hipertens", "hypertens", "cronic", "chronic", "cancer", "obes", "cardiovascular", "stroke"},
		Words:    []string{"avc", "dcnt", "ncd", "ncds"},
	},
	{
		Topic:    types.TopicElderlyHealth,
		Contains: []string{"idoso", "elderly", "older adult", "aging", "ageing", "envelhec", "geriatr", "senior", "terceira idade"},
	},
	{
		Topic:    types.TopicMentalHealth,
		Contains: []string{"saude mental", "mental health", "depress", "ansiedade", "anxiety", "suicid", "psiq", "psych"},
		Words:    []string{"mental", "caps", "raps"},
	},
	{
		Topic:    types.TopicPrimaryCare,
		Contains: []string{"atencao basica", "atencao primaria", "primary care", "primary health", "saude da familia", "family health", "agente comunitario", "community health worker"},
		Words:    []string{"esf", "ubs", "aps"},
	},
	{
		Topic:    types.TopicFinancing,
		Contains: []string{"financ", "orcamento", "budget", "gasto", "spending", "expenditure", "funding", "investimento", "custo", "per capita"},
		Words:    []string{"cost", "costs"},
	},
}

// Rules returns a copy of the ordered topic rule table.
func Rules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}

// relationalWords mark a query as asking about a relationship between
// two indicators.
var relationalWords = []string{
	"relationship", "relation", "relacao", "correlation", "correlacao",
	"correlate", "correlated", "vs", "versus", "comparison", "compare",
	"comparacao", "comparar", "between", "entre", "association",
	"associacao", "associated",
}

// pairRule describes a supported correlation pair: each side needs at
// least one substring hit.
type pairRule struct {
	Pair  types.CorrelationPair
	Left  []string
	Right []string
}

var pairRules = []pairRule{
	{
		Pair:  types.PairMaternalInfant,
		Left:  []string{"maternal", "materna"},
		Right: []string{"infant"},
	},
	{
		Pair:  types.PairDengueTemperature,
		Left:  []string{"dengue"},
		Right: []string{"temperature", "temperatura", "climate", "clima", "heat", "calor"},
	},
	{
		Pair:  types.PairVaccinationMeasles,
		Left:  []string{"vaccin", "vacina", "imuniz", "immuniz"},
		Right: []string{"measles", "sarampo"},
	},
}

func containsAny(text string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
