// Package runstore keeps a local SQLite history of conversion runs for
// later inspection. Recording is purely observational: a store failure
// must never fail the conversion itself.
package runstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the runs database.
type Store struct {
	db *sql.DB
}

// Run is one recorded conversion.
type Run struct {
	RunID        string
	Input        string
	RawPoints    int
	UniquePoints int
	Duplicates   int
	MinX         float64
	MinY         float64
	MaxX         float64
	MaxY         float64
	Success      bool
	Results      []RunResult
	CreatedAt    time.Time
}

// RunResult is the stored per-generator outcome.
type RunResult struct {
	Generator  string `json:"generator"`
	Success    bool   `json:"success"`
	OutputPath string `json:"output_path,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Open opens (or creates) the runs database at path and applies any
// pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open runs db: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// RecordRun inserts one run row.
func (s *Store) RecordRun(run Run) error {
	resultsJSON, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("marshal run results: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO runs (
			run_id, input, raw_points, unique_points, duplicates,
			min_x, min_y, max_x, max_y, success, results
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Input, run.RawPoints, run.UniquePoints, run.Duplicates,
		run.MinX, run.MinY, run.MaxX, run.MaxY, run.Success, string(resultsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT run_id, input, raw_points, unique_points, duplicates,
			min_x, min_y, max_x, max_y, success, results, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run         Run
			resultsJSON string
			createdAt   string
		)
		if err := rows.Scan(
			&run.RunID, &run.Input, &run.RawPoints, &run.UniquePoints, &run.Duplicates,
			&run.MinX, &run.MinY, &run.MaxX, &run.MaxY, &run.Success, &resultsJSON, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if resultsJSON != "" {
			if err := json.Unmarshal([]byte(resultsJSON), &run.Results); err != nil {
				return nil, fmt.Errorf("unmarshal run results: %w", err)
			}
		}
		if t, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
			run.CreatedAt = t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
