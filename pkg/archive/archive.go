// Package archive persists chat sessions to a local SQLite database so past
// conversations survive restarts. Messages are stored as JSON documents; the
// table schema only carries the columns the list view needs.
package archive

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/chat"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/logger"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL,
	messages    TEXT NOT NULL,
	metrics     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
`

// SessionSummary is the archive list row, without message bodies
type SessionSummary struct {
	ID           string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
}

// Store is a SQLite-backed session archive
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

// Open opens or creates the archive database at path
func Open(path string, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Discard()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive ping failed: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}

	return &Store{db: db, log: log.WithComponent("archive")}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts one session, overwriting any prior copy with the same id
func (s *Store) Save(session *chat.Session) error {
	messages, err := json.Marshal(session.Messages)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}
	metrics, err := json.Marshal(session.Metrics)
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO sessions (id, name, created_at, updated_at, messages, metrics)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at,
			messages = excluded.messages,
			metrics = excluded.metrics`,
		session.ID,
		session.Name,
		session.CreatedAt.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
		string(messages),
		string(metrics),
	)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}

	s.log.Debug("archived session %s (%d messages)", session.ID, len(session.Messages))
	return nil
}

// Load restores one archived session by id
func (s *Store) Load(id string) (*chat.Session, error) {
	row := s.db.QueryRow(
		"SELECT id, name, created_at, messages, metrics FROM sessions WHERE id = ?", id)

	var session chat.Session
	var createdAt, messages, metrics string
	if err := row.Scan(&session.ID, &session.Name, &createdAt, &messages, &metrics); err != nil {
		if err == sql.ErrNoRows {
			return nil, chat.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt created_at for session %s: %w", id, err)
	}
	session.CreatedAt = ts

	if err := json.Unmarshal([]byte(messages), &session.Messages); err != nil {
		return nil, fmt.Errorf("corrupt messages for session %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(metrics), &session.Metrics); err != nil {
		return nil, fmt.Errorf("corrupt metrics for session %s: %w", id, err)
	}

	return &session, nil
}

// List returns summaries for all archived sessions, most recently updated
// first
func (s *Store) List() ([]SessionSummary, error) {
	rows, err := s.db.Query(
		"SELECT id, name, created_at, updated_at, messages FROM sessions ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var summaries []SessionSummary
	for rows.Next() {
		var summary SessionSummary
		var createdAt, updatedAt, messages string
		if err := rows.Scan(&summary.ID, &summary.Name, &createdAt, &updatedAt, &messages); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}

		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			summary.CreatedAt = ts
		}
		if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
			summary.UpdatedAt = ts
		}

		var msgs []chat.Message
		if err := json.Unmarshal([]byte(messages), &msgs); err == nil {
			summary.MessageCount = len(msgs)
		}

		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return summaries, nil
}

// Delete removes one archived session. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) error {
	if _, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}
