// Package storage keeps a local SQLite ledger of batch runs and the
// receipt matches made in each, so an operator can see what a past run
// produced without the original console output.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNoRuns = errors.New("no runs recorded")

type (
	// Run is one pipeline invocation.
	Run struct {
		ID         string
		InputPath  string
		OutputPath string
		Counts     RunCounts
		CreatedAt  time.Time
	}

	// RunCounts summarizes the run's row and match totals.
	RunCounts struct {
		Loaded    int
		Kept      int
		Removed   int
		Matched   int
		Unmatched int
	}

	// Match is one receipt assignment recorded during a run.
	Match struct {
		RunID    string
		TxIndex  int
		RefID    string
		FileName string
	}

	Ledger struct {
		db *sql.DB
	}
)

// NewLedger opens (creating if needed) the ledger database at dbPath and
// brings its schema up to date.
func NewLedger(dbPath string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// CreateRun records the start of a pipeline run.
func (l *Ledger) CreateRun(ctx context.Context, id, inputPath string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, input_path) VALUES (?, ?)`, id, inputPath)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	slog.InfoContext(ctx, "Run recorded", "run_id", id, "input", inputPath)
	return nil
}

// FinishRun stores the run's output path and final counts.
func (l *Ledger) FinishRun(ctx context.Context, id, outputPath string, c RunCounts) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE runs
		 SET output_path = ?, loaded = ?, kept = ?, removed = ?, matched = ?, unmatched = ?
		 WHERE id = ?`,
		outputPath, c.Loaded, c.Kept, c.Removed, c.Matched, c.Unmatched, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// ClearMatches removes a run's recorded assignments, so a repeated collect
// pass replaces them instead of accumulating duplicates.
func (l *Ledger) ClearMatches(ctx context.Context, runID string) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM matches WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("clear matches: %w", err)
	}
	return nil
}

// RecordMatch stores one receipt assignment for a run.
func (l *Ledger) RecordMatch(ctx context.Context, m Match) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO matches (run_id, tx_idx, ref_id, file_name) VALUES (?, ?, ?, ?)`,
		m.RunID, m.TxIndex, m.RefID, m.FileName)
	if err != nil {
		return fmt.Errorf("record match: %w", err)
	}
	return nil
}

// LatestRun returns the most recently created run.
func (l *Ledger) LatestRun(ctx context.Context) (Run, error) {
	var r Run
	err := l.db.QueryRowContext(ctx,
		`SELECT id, input_path, output_path, loaded, kept, removed, matched, unmatched, created_at
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`).
		Scan(&r.ID, &r.InputPath, &r.OutputPath,
			&r.Counts.Loaded, &r.Counts.Kept, &r.Counts.Removed,
			&r.Counts.Matched, &r.Counts.Unmatched, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRuns
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return r, nil
}

// MatchesForRun lists the receipt assignments recorded for a run, in
// transaction order.
func (l *Ledger) MatchesForRun(ctx context.Context, runID string) ([]Match, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT run_id, tx_idx, ref_id, file_name FROM matches
		 WHERE run_id = ? ORDER BY tx_idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("matches for run: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.RunID, &m.TxIndex, &m.RefID, &m.FileName); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
