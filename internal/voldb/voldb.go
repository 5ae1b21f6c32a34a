// Package voldb persists volume estimation runs to a local sqlite database.
//
// The store is append-mostly: each estimator invocation records one run row,
// and the API/CLI read recent history back for reporting. Schema changes go
// through the embedded golang-migrate migrations, never ad hoc DDL.
package voldb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB wraps the sqlite connection for run persistence.
type DB struct {
	*sql.DB
}

// Run is one recorded estimation: inputs summarised, output, and timing.
type Run struct {
	ID         string
	Source     string // label for where the sphere set came from (file path, "api", ...)
	Spheres    int
	Spacing    float64
	Precision  string
	Units      string
	Volume     float64
	Voxels     int64 // occupied voxel count, volume / spacing^3
	DurationMs int64
	CreatedAt  time.Time
}

// Open opens (creating if needed) the database at path and applies any
// pending migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// RecordRun inserts a run row. A missing ID is filled with a fresh UUID and
// a zero CreatedAt with the current time; both are returned on the copy.
func (db *DB) RecordRun(run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := db.Exec(`
		INSERT INTO runs (
			run_id, source, spheres, spacing, precision, units,
			volume, voxels, duration_ms, created_unix_nanos
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Spheres, run.Spacing, run.Precision, run.Units,
		run.Volume, run.Voxels, run.DurationMs, run.CreatedAt.UnixNano(),
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}

// RecentRuns returns up to limit runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT run_id, source, spheres, spacing, precision, units,
		       volume, voxels, duration_ms, created_unix_nanos
		FROM runs
		ORDER BY created_unix_nanos DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// RunsBySource returns up to limit runs for one source label, newest first.
func (db *DB) RunsBySource(source string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT run_id, source, spheres, spacing, precision, units,
		       volume, voxels, duration_ms, created_unix_nanos
		FROM runs
		WHERE source = ?
		ORDER BY created_unix_nanos DESC
		LIMIT ?`, source, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs by source: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var out []Run
	for rows.Next() {
		var r Run
		var createdNanos int64
		if err := rows.Scan(
			&r.ID, &r.Source, &r.Spheres, &r.Spacing, &r.Precision, &r.Units,
			&r.Volume, &r.Voxels, &r.DurationMs, &createdNanos,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt = time.Unix(0, createdNanos).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
