// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify maps free-text health-indicator queries to a topic, a
// year range and a correlation flag using ordered keyword rules. Every input
// produces a result; unmatched text falls back to defaults.
package classify

import (
	"regexp"
	"strconv"

	"github.com/pdiddy/healthdash/pkg/types"
)

// rangePattern matches two 4-digit years joined by a connector, with an
// optional lead-in such as "between", "from" or "desde" ignored.
var rangePattern = regexp.MustCompile(`\b(\d{4})(?:\s*[-–/]\s*|\s+(?:to|and|through|until|a|ate|e)\s+)(\d{4})\b`)

// yearPattern matches a bare year beginning with "20".
var yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)

// Classifier holds the rule table and default year. The zero value is not
// usable; construct with New.
type Classifier struct {
	rules       []Rule
	defaultYear int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithDefaultYear sets the year used when the query names none.
func WithDefaultYear(year int) Option {
	return func(c *Classifier) {
		if year > 0 {
			c.defaultYear = year
		}
	}
}

// WithRules replaces the topic rule table.
func WithRules(rules []Rule) Option {
	return func(c *Classifier) {
		c.rules = rules
	}
}

// New creates a classifier with the built-in rules and types.DefaultYear.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		rules:       defaultRules,
		defaultYear: types.DefaultYear,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Classify derives topic, year range and correlation flag from query.
// Topic and year detection are independent passes over the same
// normalized text.
func (c *Classifier) Classify(query string) types.Classification {
	text := Normalize(query)
	tokens := words(text)

	pair := DetectPair(text)
	return types.Classification{
		Query:              query,
		Topic:              c.topic(text, tokens),
		YearRange:          c.yearRange(text),
		Pair:               pair,
		IsCorrelationQuery: pair != types.PairNone && hasRelationalWord(tokens),
	}
}

// Classify runs the default classifier.
func Classify(query string) types.Classification {
	return New().Classify(query)
}

func (c *Classifier) topic(text string, tokens map[string]bool) types.Topic {
	for _, r := range c.rules {
		if r.Match(text, tokens) {
			return r.Topic
		}
	}
	return types.TopicGeneral
}

// yearRange prefers an explicit range, then a single year, then the default.
func (c *Classifier) yearRange(text string) types.YearRange {
	if m := rangePattern.FindStringSubmatch(text); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		return types.NewYearRange(a, b)
	}
	if m := yearPattern.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		return types.SingleYear(y)
	}
	return types.SingleYear(c.defaultYear)
}

// DetectPair returns the first supported pair whose two indicators are both
// mentioned in normalized text, or PairNone.
func DetectPair(text string) types.CorrelationPair {
	for _, p := range pairRules {
		if containsAny(text, p.Left) && containsAny(text, p.Right) {
			return p.Pair
		}
	}
	return types.PairNone
}

func hasRelationalWord(tokens map[string]bool) bool {
	for _, w := range relationalWords {
		if tokens[w] {
			return true
		}
	}
	return false
}
