// Package journal keeps an optional sqlite record of every decision the bot made.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const (
	tableName  = "decisions"
	// fixed width so created_at sorts as text
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

type Journal struct {
	db *sql.DB
}

// Entry is one recorded decision. Snapshot holds the raw input as received,
// which may not be valid JSON when the decision fell back.
type Entry struct {
	ID        string
	CreatedAt time.Time
	Turn      int
	Action    string
	Fallback  bool
	Reason    string
	Snapshot  []byte
}

func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening journal %s: %w", path, err)
	}
	// sqlite allows one writer; serve records from many sessions at once.
	db.SetMaxOpenConns(1)

	journal := &Journal{db: db}
	if err := journal.createTable(); err != nil {
		db.Close()
		return nil, err
	}
	return journal, nil
}

// createTable creates the decisions table if it does not exist.
func (j *Journal) createTable() error {
	const createTableSQL = `
	CREATE TABLE IF NOT EXISTS ` + tableName + ` (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		turn INTEGER NOT NULL,
		action TEXT NOT NULL,
		fallback INTEGER NOT NULL,
		reason TEXT NOT NULL,
		snapshot BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS decisions_created_at ON ` + tableName + ` (created_at);`

	if _, err := j.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to execute CREATE TABLE: %w", err)
	}
	log.Debug("Journal table ensured.")
	return nil
}

// Record stores entry, assigning an ID and timestamp when they are empty.
func (j *Journal) Record(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Snapshot == nil {
		entry.Snapshot = []byte{}
	}

	const insertSQL = `
	INSERT INTO ` + tableName + ` (id, created_at, turn, action, fallback, reason, snapshot)
	VALUES (?, ?, ?, ?, ?, ?, ?);`

	_, err := j.db.ExecContext(ctx, insertSQL,
		entry.ID,
		entry.CreatedAt.UTC().Format(timeLayout),
		entry.Turn,
		entry.Action,
		entry.Fallback,
		entry.Reason,
		entry.Snapshot,
	)
	if err != nil {
		return fmt.Errorf("failed to insert decision for turn %d: %w", entry.Turn, err)
	}
	return nil
}

// Recent returns a page of entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit, offset int) ([]Entry, error) {
	const selectSQL = `
	SELECT id, created_at, turn, action, fallback, reason, snapshot
	FROM ` + tableName + `
	ORDER BY created_at DESC, rowid DESC
	LIMIT ? OFFSET ?;`

	rows, err := j.db.QueryContext(ctx, selectSQL, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var createdAt string
		if err := rows.Scan(&entry.ID, &createdAt, &entry.Turn, &entry.Action,
			&entry.Fallback, &entry.Reason, &entry.Snapshot); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		entry.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			log.Warn("Time parsing error for decision", "id", entry.ID, "raw", createdAt, "error", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return entries, nil
}

func (j *Journal) Count(ctx context.Context) (int, error) {
	const countSQL = `SELECT COUNT(*) FROM ` + tableName + `;`
	var count int
	if err := j.db.QueryRowContext(ctx, countSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get total decision count: %w", err)
	}
	return count, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}
