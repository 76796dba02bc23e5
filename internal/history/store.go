// Package history persists run reports for downstream inspection. The
// store is write-once per run and never consulted to skip work.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Run is one pipeline execution.
type Run struct {
	ID         int64
	InputRoot  string
	OutputRoot string
	Policy     string
	Parallel   bool
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// TaskRecord is one task's final state within a run.
type TaskRecord struct {
	Source     string
	Output     string
	Fallback   bool
	Diagnostic string
}

// Store provides access to run history.
type Store struct {
	db *sql.DB
}

// NewStore creates a history store on an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens (creating if needed) the history database at path and
// applies the schema.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", filepath.Clean(path), err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return db, nil
}

// RecordRun inserts a run and its task records in one transaction.
// Sets ID on the run.
func (s *Store) RecordRun(run *Run, tasks []TaskRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(`
		INSERT INTO runs (input_root, output_root, policy, parallel, status, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.InputRoot, run.OutputRoot, run.Policy, run.Parallel, run.Status, run.Error,
		run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	run.ID = id

	for _, t := range tasks {
		if _, err := tx.Exec(`
			INSERT INTO task_outcomes (run_id, source, output, fallback, diagnostic)
			VALUES (?, ?, ?, ?, ?)`,
			id, t.Source, t.Output, t.Fallback, t.Diagnostic,
		); err != nil {
			return fmt.Errorf("insert task outcome: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means
// no limit.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	query := `
		SELECT id, input_root, output_root, policy, parallel, status, error, started_at, finished_at
		FROM runs ORDER BY id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(&r.ID, &r.InputRoot, &r.OutputRoot, &r.Policy, &r.Parallel,
			&r.Status, &r.Error, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListTasks returns the task records for one run in insertion order.
func (s *Store) ListTasks(runID int64) ([]TaskRecord, error) {
	rows, err := s.db.Query(`
		SELECT source, output, fallback, diagnostic
		FROM task_outcomes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list tasks for run %d: %w", runID, err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []TaskRecord
	for rows.Next() {
		var t TaskRecord
		if err := rows.Scan(&t.Source, &t.Output, &t.Fallback, &t.Diagnostic); err != nil {
			return nil, fmt.Errorf("scan task outcome: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
