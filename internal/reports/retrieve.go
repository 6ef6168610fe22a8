// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/healthdash/pkg/types"
)

// QueryOptions holds parameters for listing and searching reports.
type QueryOptions struct {
	// Query is full-text search input. Each whitespace-separated term must
	// appear; FTS operators are not interpreted.
	Query string

	// Topic filters by classified topic.
	Topic types.Topic

	// MaxResults limits the result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the options select every report.
func (q QueryOptions) IsEmpty() bool {
	return strings.TrimSpace(q.Query) == "" && q.Topic == ""
}

// Summary is one row of a listing.
type Summary struct {
	ID        string             `json:"id" yaml:"id"`
	Query     string             `json:"query" yaml:"query"`
	Topic     types.Topic        `json:"topic" yaml:"topic"`
	Case      types.AnalysisCase `json:"case" yaml:"case"`
	Period    string             `json:"period" yaml:"period"`
	Title     string             `json:"title" yaml:"title"`
	DemoData  bool               `json:"demo_data" yaml:"demo_data"`
	CreatedAt time.Time          `json:"created_at" yaml:"created_at"`
}

// List returns report summaries. Full-text queries are ranked by
// relevance, otherwise the newest reports come first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]Summary, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		match  = matchExpr(opts.Query)
		useFTS = match != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT r.id, r.query, r.topic, r.analysis_case, r.period, r.title, r.demo, r.created_at
			FROM reports_fts
			JOIN reports r ON r.rowid = reports_fts.rowid
			WHERE reports_fts MATCH ?`)
		args = append(args, match)
	} else {
		qb.WriteString(
			`SELECT r.id, r.query, r.topic, r.analysis_case, r.period, r.title, r.demo, r.created_at
			FROM reports r
			WHERE 1=1`)
	}

	if opts.Topic != "" {
		qb.WriteString(` AND r.topic = ?`)
		args = append(args, string(opts.Topic))
	}

	if useFTS {
		qb.WriteString(` ORDER BY reports_fts.rank, r.created_at DESC`)
	} else {
		qb.WriteString(` ORDER BY r.created_at DESC, r.rowid DESC`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var results []Summary
	for rows.Next() {
		var (
			sum     Summary
			topic   string
			aCase   string
			created int64
		)
		if err := rows.Scan(&sum.ID, &sum.Query, &topic, &aCase, &sum.Period, &sum.Title, &sum.DemoData, &created); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		sum.Topic = types.Topic(topic)
		sum.Case = types.AnalysisCase(aCase)
		sum.CreatedAt = unixTime(created)
		results = append(results, sum)
	}
	return results, rows.Err()
}

// matchExpr quotes every term of q as an FTS5 string so that user input
// never reaches the query parser as syntax.
func matchExpr(q string) string {
	fields := strings.Fields(q)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " ")
}
