// Package catalog records every file an export run writes in a sqlite
// database, with the row count and summary statistics of its main column.
package catalog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ibal-unist/picdump/internal/export"
	"github.com/ibal-unist/picdump/internal/timeutil"
	"github.com/ibal-unist/picdump/internal/version"
)

// Catalog is an open export catalog.
type Catalog struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Open opens (creating if needed) the catalog at path and migrates it to the
// latest schema.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	// One connection keeps ":memory:" catalogs on a single database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	c := &Catalog{db: db, clock: timeutil.RealClock{}}
	if err := c.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// SetClock replaces the clock used for timestamps.
func (c *Catalog) SetClock(clock timeutil.Clock) {
	c.clock = clock
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// RunInfo is one row of export_runs.
type RunInfo struct {
	ID        string
	StartedAt time.Time
	Version   string
	Note      string
}

// Run is an open export run. It implements export.Recorder.
type Run struct {
	RunInfo
	c *Catalog
}

// StartRun inserts a new run with a fresh ID.
func (c *Catalog) StartRun(note string) (*Run, error) {
	info := RunInfo{
		ID:        uuid.New().String(),
		StartedAt: c.clock.Now().UTC(),
		Version:   version.String(),
		Note:      note,
	}
	_, err := c.db.Exec(
		`INSERT INTO export_runs (run_id, started_unix_nanos, version, note) VALUES (?, ?, ?, ?)`,
		info.ID, info.StartedAt.UnixNano(), info.Version, info.Note,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	return &Run{RunInfo: info, c: c}, nil
}

// Runs lists all runs, oldest first.
func (c *Catalog) Runs() ([]RunInfo, error) {
	rows, err := c.db.Query(`SELECT run_id, started_unix_nanos, version, note FROM export_runs ORDER BY started_unix_nanos, run_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var r RunInfo
		var started int64
		if err := rows.Scan(&r.ID, &started, &r.Version, &r.Note); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.Unix(0, started).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// FileRecord is one row of export_files.
type FileRecord struct {
	RunID     string
	Kind      string
	Step      int
	Path      string
	Rows      int
	Summary   *export.Summary
	WrittenAt time.Time
}

// RecordExport implements export.Recorder.
func (r *Run) RecordExport(e export.Entry) error {
	var column sql.NullString
	var min, max, mean, std sql.NullFloat64
	if s := e.Summary; s != nil && s.Count > 0 {
		column = sql.NullString{String: s.Column, Valid: true}
		min = sql.NullFloat64{Float64: s.Min, Valid: true}
		max = sql.NullFloat64{Float64: s.Max, Valid: true}
		mean = sql.NullFloat64{Float64: s.Mean, Valid: true}
		std = sql.NullFloat64{Float64: s.StdDev, Valid: true}
	}
	_, err := r.c.db.Exec(`
		INSERT INTO export_files (
			run_id, kind, step, path, row_count,
			summary_column, min, max, mean, stddev, written_unix_nanos
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, e.Kind, e.Step, e.Path, e.Rows,
		column, min, max, mean, std, r.c.clock.Now().UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert export file %s: %w", e.Path, err)
	}
	return nil
}

// Files lists the files recorded for runID in the order they were written.
func (c *Catalog) Files(runID string) ([]FileRecord, error) {
	rows, err := c.db.Query(`
		SELECT run_id, kind, step, path, row_count,
			summary_column, min, max, mean, stddev, written_unix_nanos
		FROM export_files
		WHERE run_id = ?
		ORDER BY file_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query export files: %w", err)
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		var f FileRecord
		var column sql.NullString
		var min, max, mean, std sql.NullFloat64
		var written int64
		if err := rows.Scan(&f.RunID, &f.Kind, &f.Step, &f.Path, &f.Rows,
			&column, &min, &max, &mean, &std, &written); err != nil {
			return nil, fmt.Errorf("failed to scan export file: %w", err)
		}
		if column.Valid {
			f.Summary = &export.Summary{
				Column: column.String,
				Count:  f.Rows,
				Min:    min.Float64,
				Max:    max.Float64,
				Mean:   mean.Float64,
				StdDev: std.Float64,
			}
		}
		f.WrittenAt = time.Unix(0, written).UTC()
		out = append(out, f)
	}
	return out, rows.Err()
}
