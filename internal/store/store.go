// Package store provides durable relational state for the messaging
// engine, backed by an embedded SQLite database (modernc.org/sqlite, no
// cgo). It owns schema migration, the full-text index, and a single
// serialized write handle; reads run uncontended through the pool.
//
// Migration design mirrors a plain ordered-statement slice: each entry in
// migrations is applied exactly once, tracked in schema_migrations. To add
// one, append a new string — never edit or reorder existing entries.
package store

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

// Store wraps the database connection and the single writer lock that
// serializes every mutation, matching the concurrency model in which reads
// may be concurrent but writes (and seq allocation) are total-order.
type Store struct {
	db *sqlx.DB
	mu sync.Mutex
}

// Open creates (or opens) the SQLite database at path, applies pragmas and
// pending migrations, and seeds the default "general" room. Use ":memory:"
// for ephemeral storage in tests.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)

	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA foreign_keys=ON`,
		`PRAGMA busy_timeout=5000`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.seedDefaultRoom(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed default room: %w", err)
	}
	return s, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := s.db.Get(&current, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i, stmt := range migrations {
		v := i + 1
		if v <= current {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", v, err)
		}
		if _, err := s.db.Exec(
			`INSERT INTO schema_migrations(version, applied_at) VALUES(?, ?)`,
			v, nowRFC3339(),
		); err != nil {
			return fmt.Errorf("record migration %d: %w", v, err)
		}
		log.Printf("store: applied migration v%d", v)
	}
	return nil
}

func (s *Store) seedDefaultRoom() error {
	var count int
	if err := s.db.Get(&count, `SELECT COUNT(*) FROM rooms WHERE name = 'general'`); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	now := nowRFC3339()
	_, err := s.db.Exec(
		`INSERT INTO rooms (id, name, description, created_by, created_at, updated_at, admin_key, room_type)
		 VALUES (?, 'general', 'Default chat room', 'system', ?, ?, ?, 'room')`,
		newID(), now, now, newAdminKey(),
	)
	return err
}

// withWriteTx runs fn inside a transaction while holding the store's single
// writer lock, committing on success and rolling back on any error.
func (s *Store) withWriteTx(fn func(tx *sqlx.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Beginx()
	if err != nil {
		return chatcore.Internal(err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return chatcore.Internal(err)
	}
	return nil
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// translateErr maps a raw database/sql or SQLite error to a chatcore.Error.
// nil passes through unchanged.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if ce, ok := chatcore.As(err); ok {
		return ce
	}
	if err == sql.ErrNoRows {
		return chatcore.NotFound("not found")
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return chatcore.Conflict("already exists")
	case strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "CHECK constraint failed"),
		strings.Contains(msg, "NOT NULL constraint failed"):
		return chatcore.Invalid("%s", msg)
	default:
		return chatcore.Internal(err)
	}
}
