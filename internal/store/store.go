// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists pipeline run history and seeded occurrence
// records in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tidwall/gjson"

	"github.com/pdiddy/occurrence-etl/pkg/types"
)

// DefaultPath is the database location used when none is configured.
const DefaultPath = "data/index/occurrence.db"

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the database at cfg.Path, creating its
// directory and schema if needed.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			dataset TEXT NOT NULL,
			source TEXT,
			destination TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			state TEXT NOT NULL,
			extracted_rows INTEGER,
			transformed_rows INTEGER,
			failed_stage TEXT,
			error_kind TEXT,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_dataset ON runs(dataset, started_at)`,
		`CREATE TABLE IF NOT EXISTS records (
			dataset TEXT NOT NULL,
			seq INTEGER NOT NULL,
			record_id TEXT,
			doc TEXT NOT NULL,
			PRIMARY KEY (dataset, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_id ON records(dataset, record_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun stores a pipeline run summary.
func (s *Store) RecordRun(ctx context.Context, r types.RunSummary) error {
	finished := ""
	if !r.FinishedAt.IsZero() {
		finished = r.FinishedAt.UTC().Format(timeLayout)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, dataset, source, destination, started_at, finished_at,
			state, extracted_rows, transformed_rows, failed_stage, error_kind, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET
			finished_at=excluded.finished_at, state=excluded.state,
			extracted_rows=excluded.extracted_rows, transformed_rows=excluded.transformed_rows,
			failed_stage=excluded.failed_stage, error_kind=excluded.error_kind, error=excluded.error`,
		r.RunID, r.Dataset, r.Source, r.Destination,
		r.StartedAt.UTC().Format(timeLayout), finished,
		string(r.State), r.ExtractedRows, r.TransformedRows,
		string(r.FailedStage), string(r.ErrorKind), r.Error,
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", r.RunID, err)
	}
	return nil
}

// RunQuery filters run history.
type RunQuery struct {
	// Dataset restricts results to one dataset when set.
	Dataset string

	// Limit caps the number of runs returned. Zero means 20.
	Limit int
}

// Runs returns recorded runs, most recent first.
func (s *Store) Runs(ctx context.Context, q RunQuery) ([]types.RunSummary, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT run_id, dataset, source, destination, started_at, finished_at,
			state, extracted_rows, transformed_rows, failed_stage, error_kind, error
		FROM runs`
	var args []any
	if q.Dataset != "" {
		query += ` WHERE dataset = ?`
		args = append(args, q.Dataset)
	}
	query += ` ORDER BY started_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []types.RunSummary
	for rows.Next() {
		var (
			r                          types.RunSummary
			started, finished          string
			state, failedStage, errKnd string
		)
		if err := rows.Scan(&r.RunID, &r.Dataset, &r.Source, &r.Destination, &started, &finished,
			&state, &r.ExtractedRows, &r.TransformedRows, &failedStage, &errKnd, &r.Error); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(timeLayout, started)
		if finished != "" {
			r.FinishedAt, _ = time.Parse(timeLayout, finished)
		}
		r.State = types.RunState(state)
		r.FailedStage = types.RunState(failedStage)
		r.ErrorKind = types.ErrorKind(errKnd)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReplaceRecords deletes every record of dataset and inserts docs in
// order, in one transaction. It returns the number of records inserted.
// Each doc's "id" field, when present, becomes its record ID.
func (s *Store) ReplaceRecords(ctx context.Context, dataset string, docs []types.Document) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE dataset = ?`, dataset); err != nil {
		return 0, fmt.Errorf("clearing %s: %w", dataset, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (dataset, seq, record_id, doc) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, doc := range docs {
		var recordID any
		if id := gjson.GetBytes(doc, types.RecordIDField); id.Exists() && id.Type != gjson.Null {
			recordID = id.String()
		}
		if _, err := stmt.ExecContext(ctx, dataset, i, recordID, string(doc)); err != nil {
			return 0, fmt.Errorf("inserting record %d of %s: %w", i, dataset, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing %s: %w", dataset, err)
	}
	return len(docs), nil
}

// Datasets lists every dataset with seeded records, sorted by name.
func (s *Store) Datasets(ctx context.Context) ([]types.DatasetCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT dataset, count(*) FROM records GROUP BY dataset ORDER BY dataset`)
	if err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}
	defer rows.Close()

	var out []types.DatasetCount
	for rows.Next() {
		var c types.DatasetCount
		if err := rows.Scan(&c.Name, &c.Records); err != nil {
			return nil, fmt.Errorf("scanning dataset: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Records returns a dataset's records in seed order. A limit of zero or
// less returns all of them.
func (s *Store) Records(ctx context.Context, dataset string, limit int) ([]types.Document, error) {
	query := `SELECT doc FROM records WHERE dataset = ? ORDER BY seq`
	args := []any{dataset}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s records: %w", dataset, err)
	}
	defer rows.Close()

	out := []types.Document{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		out = append(out, types.Document(doc))
	}
	return out, rows.Err()
}

// Record returns the first record of dataset whose id equals id.
func (s *Store) Record(ctx context.Context, dataset, id string) (types.Document, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM records WHERE dataset = ? AND record_id = ? ORDER BY seq LIMIT 1`,
		dataset, id,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s in %s: %w", id, dataset, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying record %s: %w", id, err)
	}
	return types.Document(doc), nil
}
