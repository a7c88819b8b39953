// Package session persists wellness check-in history and derives baseline
// trends from it. Storage is SQLite via the pure-Go driver; history is an
// insertion-ordered list capped at a fixed size with FIFO eviction.
package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/triage"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/vitals"
)

// DefaultMaxSessions is the history cap when none is configured.
const DefaultMaxSessions = 50

// Session is one persisted check-in.
type Session struct {
	ID        string         `json:"id"`
	Timestamp int64          `json:"timestamp"` // epoch millis
	Vitals    vitals.Metrics `json:"vitals"`
	Triage    triage.Verdict `json:"triage"`
}

// Store provides access to session history. Single-user, single writer; no
// concurrent sessions are expected.
type Store struct {
	db          *sql.DB
	maxSessions int
}

// Open opens (creating if needed) the session database at path.
func Open(path string, maxSessions int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store, err := NewStore(db, maxSessions)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewStore wraps an existing database handle, running migrations.
func NewStore(db *sql.DB, maxSessions int) (*Store, error) {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	store := &Store{db: db, maxSessions: maxSessions}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	log.Info().Int("max_sessions", maxSessions).Msg("session store initialized")
	return store, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at_ms INTEGER NOT NULL,
		vitals TEXT NOT NULL,
		triage TEXT NOT NULL
	)`)
	return err
}

// Append stores a completed check-in and evicts the oldest entries beyond
// the cap. Insertion order, not timestamp, decides eviction.
func (s *Store) Append(sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.Timestamp == 0 {
		sess.Timestamp = time.Now().UnixMilli()
	}

	vitalsJSON, err := json.Marshal(sess.Vitals)
	if err != nil {
		return fmt.Errorf("marshal vitals: %w", err)
	}
	triageJSON, err := json.Marshal(sess.Triage)
	if err != nil {
		return fmt.Errorf("marshal triage: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO sessions (id, created_at_ms, vitals, triage) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.Timestamp, string(vitalsJSON), string(triageJSON),
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	if _, err := tx.Exec(
		`DELETE FROM sessions WHERE rowid NOT IN (
			SELECT rowid FROM sessions ORDER BY rowid DESC LIMIT ?
		)`, s.maxSessions,
	); err != nil {
		return fmt.Errorf("evict old sessions: %w", err)
	}

	return tx.Commit()
}

// List returns all stored sessions, oldest first.
func (s *Store) List() ([]Session, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at_ms, vitals, triage FROM sessions ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			sess       Session
			vitalsJSON string
			triageJSON string
		)
		if err := rows.Scan(&sess.ID, &sess.Timestamp, &vitalsJSON, &triageJSON); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if err := json.Unmarshal([]byte(vitalsJSON), &sess.Vitals); err != nil {
			return nil, fmt.Errorf("unmarshal vitals: %w", err)
		}
		if err := json.Unmarshal([]byte(triageJSON), &sess.Triage); err != nil {
			return nil, fmt.Errorf("unmarshal triage: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Latest returns the most recent session, or nil when history is empty.
func (s *Store) Latest() (*Session, error) {
	sessions, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[len(sessions)-1], nil
}

// Count returns the number of stored sessions.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n)
	return n, err
}

// Clear removes all history.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM sessions`)
	return err
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
