// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/citation-engine/internal/cite"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// ErrRunNotFound is returned when the archive holds no run with the given ID.
var ErrRunNotFound = errors.New("run not found")

// Store is the SQLite run archive.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the archive at path and ensures the schema.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db}
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

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			text TEXT NOT NULL,
			cited_text TEXT,
			stopped_at TEXT,
			candidates INTEGER,
			validated INTEGER,
			unknown_keys TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			key TEXT NOT NULL,
			canonical_id TEXT NOT NULL,
			relevance_note TEXT,
			record TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_canonical_id ON entries(canonical_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun stores run and its entries, replacing any earlier copy.
func (s *Store) SaveRun(ctx context.Context, run *types.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	unknownJSON, _ := json.Marshal(run.UnknownKeys)
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("deleting old entries: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, mode, text, cited_text, stopped_at, candidates, validated, unknown_keys)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			started_at=excluded.started_at, mode=excluded.mode, text=excluded.text,
			cited_text=excluded.cited_text, stopped_at=excluded.stopped_at,
			candidates=excluded.candidates, validated=excluded.validated,
			unknown_keys=excluded.unknown_keys`,
		run.ID, run.StartedAt.UTC().Format(time.RFC3339Nano), string(run.Mode), run.Text,
		run.CitedText, run.StoppedAt, len(run.Candidates), len(run.Validated), string(unknownJSON),
	)
	if err != nil {
		return fmt.Errorf("upserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (run_id, position, key, canonical_id, relevance_note, record)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range run.Entries {
		recordJSON, err := json.Marshal(e.Record)
		if err != nil {
			return fmt.Errorf("encoding entry %s: %w", e.Key, err)
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, e.Key, e.Record.CanonicalID, e.RelevanceNote, string(recordJSON)); err != nil {
			return fmt.Errorf("inserting entry %s: %w", e.Key, err)
		}
	}
	return tx.Commit()
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID         string
	StartedAt  time.Time
	Mode       types.RunMode
	Text       string
	StoppedAt  string
	Candidates int
	Validated  int
	Entries    int
}

// ListRuns returns the most recent runs first, at most limit (all when limit <= 0).
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.started_at, r.mode, r.text, COALESCE(r.stopped_at, ''),
			COALESCE(r.candidates, 0), COALESCE(r.validated, 0),
			(SELECT count(*) FROM entries e WHERE e.run_id = r.id)
		 FROM runs r ORDER BY r.started_at DESC, r.id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			rs      RunSummary
			started string
			mode    string
		)
		if err := rows.Scan(&rs.ID, &started, &mode, &rs.Text, &rs.StoppedAt, &rs.Candidates, &rs.Validated, &rs.Entries); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		rs.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		rs.Mode = types.RunMode(mode)
		out = append(out, rs)
	}
	return out, rows.Err()
}

// LoadEntries returns runID's entries in rank order.
func (s *Store) LoadEntries(ctx context.Context, runID string) ([]types.CitationEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, COALESCE(relevance_note, ''), record FROM entries WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("loading entries: %w", err)
	}
	defer rows.Close()

	var out []types.CitationEntry
	for rows.Next() {
		var (
			e          types.CitationEntry
			recordJSON string
		)
		if err := rows.Scan(&e.Key, &e.RelevanceNote, &recordJSON); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if err := json.Unmarshal([]byte(recordJSON), &e.Record); err != nil {
			return nil, fmt.Errorf("decoding entry %s: %w", e.Key, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LoadRun rebuilds the stored parts of a run: its text, cited text, stop
// phase, unknown keys, entries, and their BibTeX.
func (s *Store) LoadRun(ctx context.Context, runID string) (*types.Run, error) {
	var (
		run         = types.Run{ID: runID}
		started     string
		mode        string
		unknownJSON sql.NullString
		cited       sql.NullString
		stopped     sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT started_at, mode, text, cited_text, stopped_at, unknown_keys FROM runs WHERE id = ?`, runID,
	).Scan(&started, &mode, &run.Text, &cited, &stopped, &unknownJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", runID, err)
	}
	run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	run.Mode = types.RunMode(mode)
	run.CitedText, run.StoppedAt = cited.String, stopped.String
	if unknownJSON.Valid {
		_ = json.Unmarshal([]byte(unknownJSON.String), &run.UnknownKeys)
	}

	if run.Entries, err = s.LoadEntries(ctx, runID); err != nil {
		return nil, err
	}
	run.BibTeX = cite.Entries(run.Entries)
	return &run, nil
}
