// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the healthdash pipeline:
// query classification, indicator panels, analysis documents, chart specs,
// rasterized charts, export documents and saved reports.
package types

import "strconv"

// Topic is the closed set of health-indicator domains a query can map to.
type Topic string

const (
	TopicOralHealth      Topic = "oral-health"
	TopicChildHealth     Topic = "child-health"
	TopicWomensHealth    Topic = "womens-health"
	TopicEpidemiology    Topic = "epidemiology"
	TopicChronicDiseases Topic = "chronic-diseases"
	TopicElderlyHealth   Topic = "elderly-health"
	TopicMentalHealth    Topic = "mental-health"
	TopicPrimaryCare     Topic = "primary-care"
	TopicFinancing       Topic = "financing"
	TopicGeneral         Topic = "general"
)

var topicNames = map[Topic]string{
	TopicOralHealth:      "Oral Health",
	TopicChildHealth:     "Child Health",
	TopicWomensHealth:    "Women's Health",
	TopicEpidemiology:    "Epidemiology",
	TopicChronicDiseases: "Chronic Diseases",
	TopicElderlyHealth:   "Elderly Health",
	TopicMentalHealth:    "Mental Health",
	TopicPrimaryCare:     "Primary Care",
	TopicFinancing:       "Health Financing",
	TopicGeneral:         "General Health Indicators",
}

// AllTopics lists every topic in a stable order.
func AllTopics() []Topic {
	return []Topic{
		TopicOralHealth, TopicChildHealth, TopicWomensHealth, TopicEpidemiology,
		TopicChronicDiseases, TopicElderlyHealth, TopicMentalHealth,
		TopicPrimaryCare, TopicFinancing, TopicGeneral,
	}
}

// DisplayName returns the human-readable topic name used in report text.
func (t Topic) DisplayName() string {
	if n, ok := topicNames[t]; ok {
		return n
	}
	return topicNames[TopicGeneral]
}

// Valid reports whether t is a member of the closed topic set.
func (t Topic) Valid() bool {
	_, ok := topicNames[t]
	return ok
}

// CorrelationPair identifies a supported two-indicator combination.
// The zero value means no pair was mentioned.
type CorrelationPair string

const (
	PairNone               CorrelationPair = ""
	PairMaternalInfant     CorrelationPair = "maternal-infant"
	PairDengueTemperature  CorrelationPair = "dengue-temperature"
	PairVaccinationMeasles CorrelationPair = "vaccination-measles"
)

// Supported reports whether p is one of the pairs with a dedicated
// dual-indicator analysis.
func (p CorrelationPair) Supported() bool {
	switch p {
	case PairMaternalInfant, PairDengueTemperature, PairVaccinationMeasles:
		return true
	}
	return false
}

// YearRange is an inclusive span of years. Start is never after End.
type YearRange struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// NewYearRange builds a range, swapping the bounds when given in reverse.
func NewYearRange(a, b int) YearRange {
	if a > b {
		a, b = b, a
	}
	return YearRange{Start: a, End: b}
}

// SingleYear returns the range covering only year.
func SingleYear(year int) YearRange {
	return YearRange{Start: year, End: year}
}

// Single reports whether the range designates exactly one year.
func (r YearRange) Single() bool {
	return r.Start == r.End
}

// Contains reports whether year falls inside the range, inclusive.
func (r YearRange) Contains(year int) bool {
	return year >= r.Start && year <= r.End
}

// Label renders the range as "2015" or "2015–2020".
func (r YearRange) Label() string {
	if r.Single() {
		return strconv.Itoa(r.Start)
	}
	return strconv.Itoa(r.Start) + "–" + strconv.Itoa(r.End)
}

// Classification is the result of classifying a free-text query.
type Classification struct {
	// Query is the raw text as submitted.
	Query string `json:"query" yaml:"query"`

	// Topic is the first-matching topic, or TopicGeneral.
	Topic Topic `json:"topic" yaml:"topic"`

	// YearRange is the explicit range, the single year, or the default year.
	YearRange YearRange `json:"year_range" yaml:"year_range"`

	// Pair is set when both indicators of a supported pair are mentioned.
	Pair CorrelationPair `json:"pair,omitempty" yaml:"pair,omitempty"`

	// IsCorrelationQuery is true when Pair is set and the query uses
	// relational wording ("relationship", "vs", "correlation", ...).
	IsCorrelationQuery bool `json:"is_correlation_query" yaml:"is_correlation_query"`
}
