// Package history keeps an optional SQLite ledger of dispatch attempts for
// diagnostics. The ledger is written after relocation and never consulted for
// scheduling; the watch folders themselves remain the only durable queue.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Record captures one dispatch attempt and its resolution.
type Record struct {
	JobID        string
	Folder       string
	File         string
	Printer      string
	Success      bool
	Reason       string
	FinalPath    string
	DispatchedAt time.Time
}

// Store manages the ledger database.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS dispatches (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id        TEXT NOT NULL,
    folder        TEXT NOT NULL,
    file          TEXT NOT NULL,
    printer       TEXT,
    success       INTEGER NOT NULL,
    reason        TEXT,
    final_path    TEXT,
    dispatched_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dispatches_folder ON dispatches(folder, dispatched_at);
`

// Open initializes or connects to the ledger database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply ledger schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Append inserts one dispatch record.
func (s *Store) Append(ctx context.Context, rec Record) error {
	if rec.JobID == "" {
		return errors.New("record requires a job id")
	}
	dispatchedAt := rec.DispatchedAt
	if dispatchedAt.IsZero() {
		dispatchedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO dispatches (job_id, folder, file, printer, success, reason, final_path, dispatched_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.JobID,
		rec.Folder,
		rec.File,
		nullableString(rec.Printer),
		boolToInt(rec.Success),
		nullableString(rec.Reason),
		nullableString(rec.FinalPath),
		dispatchedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert dispatch record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT job_id, folder, file, printer, success, reason, final_path, dispatched_at
         FROM dispatches ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query dispatch records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec       Record
			printer   sql.NullString
			reason    sql.NullString
			finalPath sql.NullString
			success   int
			rawTime   string
		)
		if err := rows.Scan(&rec.JobID, &rec.Folder, &rec.File, &printer, &success, &reason, &finalPath, &rawTime); err != nil {
			return nil, err
		}
		rec.Printer = printer.String
		rec.Reason = reason.String
		rec.FinalPath = finalPath.String
		rec.Success = success != 0
		if parsed, err := time.Parse(time.RFC3339Nano, rawTime); err == nil {
			rec.DispatchedAt = parsed
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
