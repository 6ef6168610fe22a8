// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reports persists search results in SQLite with a full-text index
// over their titles, queries and analysis text.
package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/healthdash/pkg/types"
)

const dbFile = "reports.db"

// ErrNotFound is returned when no report has the requested ID.
var ErrNotFound = errors.New("report not found")

// Store manages the saved-report database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the database at cfg.Dir/reports.db and
// creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			query TEXT NOT NULL,
			topic TEXT NOT NULL,
			analysis_case TEXT NOT NULL,
			period TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			demo INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			body TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_topic ON reports(topic)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='reports_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE reports_fts USING fts5(title, query, content, content=reports, content_rowid=rowid)`,
		`CREATE TRIGGER reports_ai AFTER INSERT ON reports BEGIN
			INSERT INTO reports_fts(rowid, title, query, content) VALUES (new.rowid, new.title, new.query, new.content);
		END`,
		`CREATE TRIGGER reports_ad AFTER DELETE ON reports BEGIN
			INSERT INTO reports_fts(reports_fts, rowid, title, query, content) VALUES('delete', old.rowid, old.title, old.query, old.content);
		END`,
		`CREATE TRIGGER reports_au AFTER UPDATE ON reports BEGIN
			INSERT INTO reports_fts(reports_fts, rowid, title, query, content) VALUES('delete', old.rowid, old.title, old.query, old.content);
			INSERT INTO reports_fts(rowid, title, query, content) VALUES (new.rowid, new.title, new.query, new.content);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// Save inserts r, replacing any stored report with the same ID.
func (s *Store) Save(ctx context.Context, r types.Report) error {
	if r.ID == "" {
		return errors.New("saving report: empty id")
	}
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report %s: %w", r.ID, err)
	}

	c := r.Classification
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, query, topic, analysis_case, period, title, content, demo, created_at, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			query=excluded.query, topic=excluded.topic, analysis_case=excluded.analysis_case,
			period=excluded.period, title=excluded.title, content=excluded.content,
			demo=excluded.demo, created_at=excluded.created_at, body=excluded.body`,
		r.ID, r.Query, string(c.Topic), string(r.Analysis.Case), c.YearRange.Label(),
		r.Analysis.Title, searchText(r), r.DemoData, r.CreatedAt.UTC().UnixNano(), string(body),
	)
	if err != nil {
		return fmt.Errorf("saving report %s: %w", r.ID, err)
	}
	return nil
}

// Get returns the report with the given ID.
func (s *Store) Get(ctx context.Context, id string) (types.Report, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM reports WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Report{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return types.Report{}, fmt.Errorf("looking up report: %w", err)
	}

	var r types.Report
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return types.Report{}, fmt.Errorf("decoding report %s: %w", id, err)
	}
	return r, nil
}

// Delete removes the report with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting report: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Count returns the number of stored reports.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting reports: %w", err)
	}
	return n, nil
}

// searchText is the indexed body of a report: summary, KPI lines and
// section text.
func searchText(r types.Report) string {
	var b strings.Builder
	b.WriteString(r.Classification.Topic.DisplayName())
	b.WriteString("\n")
	b.WriteString(r.Analysis.ExecutiveSummary)
	for _, h := range r.Highlights() {
		b.WriteString("\n")
		b.WriteString(h)
	}
	for _, sec := range r.Analysis.Sections {
		b.WriteString("\n")
		b.WriteString(sec.Title)
		b.WriteString("\n")
		b.WriteString(sec.Body)
	}
	return b.String()
}

func unixTime(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}
