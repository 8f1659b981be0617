// Package sqlite is the durable memory.Store, a single memories table in a
// SQLite database driven by the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/becomeliminal/mindcare/memory"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so stored timestamps round-trip exactly.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS memories (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	content    TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_memories_content ON memories(content);
`

const (
	queryInsertMemory     = `INSERT INTO memories (content, created_at) VALUES (?, ?)`
	queryFindMemoryByText = `SELECT id, content, created_at FROM memories WHERE content = ? ORDER BY id`
	queryListMemories     = `SELECT id, content, created_at FROM memories ORDER BY id`
)

// Store persists records in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Compile-time check that Store implements memory.Store.
var _ memory.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used to stamp new records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for a throwaway database.
func Open(path string, opts ...Option) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every pooled connection to ":memory:" would see its own empty database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create inserts text as a new record.
func (s *Store) Create(ctx context.Context, text string) (memory.Record, error) {
	createdAt := s.now().UTC()

	res, err := s.db.ExecContext(ctx, queryInsertMemory, text, createdAt.Format(timeLayout))
	if err != nil {
		return memory.Record{}, fmt.Errorf("insert memory: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return memory.Record{}, fmt.Errorf("insert memory: %w", err)
	}

	return memory.Record{
		ID:        strconv.FormatInt(id, 10),
		Text:      text,
		CreatedAt: createdAt,
	}, nil
}

// FindByText returns every record whose content equals text.
func (s *Store) FindByText(ctx context.Context, text string) ([]memory.Record, error) {
	rows, err := s.db.QueryContext(ctx, queryFindMemoryByText, text)
	if err != nil {
		return nil, fmt.Errorf("find memories: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// List returns all records in insertion order.
func (s *Store) List(ctx context.Context) ([]memory.Record, error) {
	rows, err := s.db.QueryContext(ctx, queryListMemories)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func scanRecords(rows *sql.Rows) ([]memory.Record, error) {
	var records []memory.Record
	for rows.Next() {
		var (
			id        int64
			content   string
			createdAt string
		)
		if err := rows.Scan(&id, &content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}

		ts, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at of memory %d: %w", id, err)
		}

		records = append(records, memory.Record{
			ID:        strconv.FormatInt(id, 10),
			Text:      content,
			CreatedAt: ts,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memories: %w", err)
	}
	return records, nil
}
