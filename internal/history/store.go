// Package history persists analysis runs to a local SQLite database so
// past reports and per-item classifications can be recalled later.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"sift/internal/classify"
)

// ErrNotFound reports that no run with the requested ID exists.
var ErrNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at    TEXT NOT NULL,
    project       TEXT NOT NULL,
    hours_back    INTEGER NOT NULL,
    total         INTEGER NOT NULL,
    classified    INTEGER NOT NULL,
    timeouts      INTEGER NOT NULL,
    errors        INTEGER NOT NULL,
    high_priority INTEGER NOT NULL,
    report        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS run_failures (
    run_id     INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    item_id    INTEGER NOT NULL,
    name       TEXT NOT NULL,
    category   TEXT NOT NULL,
    confidence REAL NOT NULL,
    priority   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_run_failures_run ON run_failures(run_id);
`

// Run is one recorded analysis run.
type Run struct {
	ID           int64
	StartedAt    time.Time
	Project      string
	HoursBack    int
	Total        int
	Classified   int
	Timeouts     int
	Errors       int
	HighPriority int
	Report       string
}

// RunFailure is the persisted summary of one classified failure.
type RunFailure struct {
	ItemID     int
	Name       string
	Category   classify.Category
	Confidence float64
	Priority   string
}

// Store wraps the SQLite database holding run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating the parent
// directory if needed, and initializes the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// RecordRun persists a run and its per-item classifications atomically,
// returning the new run ID.
func (s *Store) RecordRun(run Run, failures []classify.Failure) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin record run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`INSERT INTO runs
		(started_at, project, hours_back, total, classified, timeouts, errors, high_priority, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(time.RFC3339), run.Project, run.HoursBack,
		run.Total, run.Classified, run.Timeouts, run.Errors, run.HighPriority, run.Report)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, f := range failures {
		if _, err := tx.Exec(`INSERT INTO run_failures
			(run_id, item_id, name, category, confidence, priority)
			VALUES (?, ?, ?, ?, ?, ?)`,
			runID, f.ItemID, f.Name, string(f.Category), f.Confidence, f.Priority); err != nil {
			return 0, fmt.Errorf("insert run failure %d: %w", f.ItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit record run: %w", err)
	}
	return runID, nil
}

// GetRun loads one run and its failures.
func (s *Store) GetRun(id int64) (*Run, []RunFailure, error) {
	var (
		run       Run
		startedAt string
	)
	err := s.db.QueryRow(`SELECT id, started_at, project, hours_back, total,
		classified, timeouts, errors, high_priority, report
		FROM runs WHERE id = ?`, id).Scan(
		&run.ID, &startedAt, &run.Project, &run.HoursBack, &run.Total,
		&run.Classified, &run.Timeouts, &run.Errors, &run.HighPriority, &run.Report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("run %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load run %d: %w", id, err)
	}
	run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)

	rows, err := s.db.Query(`SELECT item_id, name, category, confidence, priority
		FROM run_failures WHERE run_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load run %d failures: %w", id, err)
	}
	defer rows.Close()

	var failures []RunFailure
	for rows.Next() {
		var (
			f   RunFailure
			cat string
		)
		if err := rows.Scan(&f.ItemID, &f.Name, &cat, &f.Confidence, &f.Priority); err != nil {
			return nil, nil, fmt.Errorf("scan run failure: %w", err)
		}
		f.Category = classify.Category(cat)
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate run failures: %w", err)
	}
	return &run, failures, nil
}

// ListRuns returns the most recent runs, newest first, without their
// failure details. limit <= 0 means no limit.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	q := `SELECT id, started_at, project, hours_back, total,
		classified, timeouts, errors, high_priority, report
		FROM runs ORDER BY id DESC`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			startedAt string
		)
		if err := rows.Scan(&run.ID, &startedAt, &run.Project, &run.HoursBack,
			&run.Total, &run.Classified, &run.Timeouts, &run.Errors,
			&run.HighPriority, &run.Report); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Summarize derives a Run's counters from classified failures.
func Summarize(project string, hoursBack int, startedAt time.Time, failures []classify.Failure, report string) Run {
	run := Run{
		StartedAt: startedAt,
		Project:   project,
		HoursBack: hoursBack,
		Total:     len(failures),
		Report:    report,
	}
	for _, f := range failures {
		switch {
		case f.HasTag(classify.TagTimeout):
			run.Timeouts++
		case f.HasTag(classify.TagError):
			run.Errors++
		default:
			run.Classified++
		}
		if f.Priority == classify.PriorityHigh {
			run.HighPriority++
		}
	}
	return run
}
