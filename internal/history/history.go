// Package history keeps a SQLite journal of batch runs and the outcome
// for each document they touched.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/nishantmodak/ghost-admin/internal/batch"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	params      TEXT NOT NULL DEFAULT '{}',
	dry_run     INTEGER NOT NULL DEFAULT 0,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	updated     INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0,
	changes     INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS outcomes (
	run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq      INTEGER NOT NULL,
	doc_id   TEXT NOT NULL,
	title    TEXT NOT NULL DEFAULT '',
	success  INTEGER NOT NULL,
	changes  INTEGER NOT NULL,
	error    TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// timeLayout is fixed width so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run kinds.
const (
	KindLinks = "links"
	KindAlt   = "alt"
)

// Run is one recorded batch.
type Run struct {
	ID         string                      `json:"id"`
	Kind       string                      `json:"kind"`
	Params     json.RawMessage             `json:"params,omitempty"`
	DryRun     bool                        `json:"dry_run"`
	StartedAt  time.Time                   `json:"started_at"`
	FinishedAt time.Time                   `json:"finished_at"`
	Summary    batch.Summary               `json:"summary"`
	Error      string                      `json:"error,omitempty"`
	Outcomes   []batch.DocumentEditOutcome `json:"outcomes,omitempty"`
}

// Store is the run journal.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		schema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: init: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores run and its outcomes, assigning an id when run.ID is
// empty. It returns the id.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	params := string(run.Params)
	if params == "" {
		params = "{}"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("history: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, kind, params, dry_run, started_at, finished_at, updated, failed, changes, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, params, boolInt(run.DryRun),
		run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout),
		run.Summary.Updated, run.Summary.Failed, run.Summary.Changes, run.Error)
	if err != nil {
		return "", fmt.Errorf("history: insert run: %w", err)
	}

	for i, o := range run.Outcomes {
		_, err = tx.ExecContext(ctx, `INSERT INTO outcomes
			(run_id, seq, doc_id, title, success, changes, error)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, o.DocumentID, o.Title, boolInt(o.Success), o.ChangeCount, o.Error)
		if err != nil {
			return "", fmt.Errorf("history: insert outcome: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("history: commit: %w", err)
	}
	return run.ID, nil
}

// List returns the most recent runs first, without outcomes.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, kind, params, dry_run, started_at, finished_at,
		updated, failed, changes, error FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns a run with its outcomes, or nil if there is no such run.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, kind, params, dry_run, started_at, finished_at,
		updated, failed, changes, error FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT doc_id, title, success, changes, error
		FROM outcomes WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("history: outcomes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var o batch.DocumentEditOutcome
		var success int
		if err := rows.Scan(&o.DocumentID, &o.Title, &success, &o.ChangeCount, &o.Error); err != nil {
			return nil, fmt.Errorf("history: scan outcome: %w", err)
		}
		o.Success = success != 0
		r.Outcomes = append(r.Outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r                 Run
		params            string
		dryRun            int
		started, finished string
	)
	err := sc.Scan(&r.ID, &r.Kind, &params, &dryRun, &started, &finished,
		&r.Summary.Updated, &r.Summary.Failed, &r.Summary.Changes, &r.Error)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("history: scan run: %w", err)
	}
	r.Params = json.RawMessage(params)
	r.DryRun = dryRun != 0
	r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
	return r, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
