// Package ledger keeps a local SQLite history of scorecard runs so results
// computed offline can be compared over time.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	KindMonthly     = "monthly"
	KindAccumulated = "accumulated"
)

type Entry struct {
	ID         string
	RunID      string
	Kind       string
	Employee   string
	Period     string
	Score      float64
	Rubrica    string
	Source     string
	RecordedAt time.Time
}

type Filter struct {
	Employee string
	Kind     string
	Limit    int
}

type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("ledger: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ledger: pragma %q: %w", p, err)
		}
	}

	l := &Ledger{db: db, now: time.Now}
	if err := l.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: migration: %w", err)
	}
	return l, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) migrate() error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS scorecard_runs (
			id          TEXT PRIMARY KEY,
			run_id      TEXT NOT NULL,
			kind        TEXT NOT NULL,
			employee    TEXT NOT NULL,
			period      TEXT NOT NULL DEFAULT '',
			score       REAL NOT NULL,
			rubrica     TEXT NOT NULL,
			source      TEXT NOT NULL DEFAULT '',
			recorded_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_scorecard_runs_employee ON scorecard_runs (employee, recorded_at);
	`)
	return err
}

// Record stores entries under one run id and returns it.
func (l *Ledger) Record(ctx context.Context, entries []Entry) (string, error) {
	runID := uuid.NewString()
	if len(entries) == 0 {
		return runID, nil
	}
	recordedAt := l.now().UTC()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scorecard_runs (id, run_id, kind, employee, period, score, rubrica, source, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, entry := range entries {
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), runID, entry.Kind, entry.Employee, entry.Period,
			entry.Score, entry.Rubrica, entry.Source, recordedAt.Format(time.RFC3339Nano)); err != nil {
			return "", fmt.Errorf("ledger: insert %s: %w", entry.Employee, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// List returns entries newest first.
func (l *Ledger) List(ctx context.Context, filter Filter) ([]Entry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, run_id, kind, employee, period, score, rubrica, source, recorded_at
		FROM scorecard_runs
		WHERE (? = '' OR employee = ?)
		  AND (? = '' OR kind = ?)
		ORDER BY recorded_at DESC, rowid DESC
		LIMIT ?
	`, filter.Employee, filter.Employee, filter.Kind, filter.Kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var entry Entry
		var recordedAt string
		if err := rows.Scan(&entry.ID, &entry.RunID, &entry.Kind, &entry.Employee, &entry.Period,
			&entry.Score, &entry.Rubrica, &entry.Source, &recordedAt); err != nil {
			return nil, err
		}
		entry.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("ledger: bad timestamp on %s: %w", entry.ID, err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
