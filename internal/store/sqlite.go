// Package store keeps a local SQLite cache of sessions and completed turns,
// so history is browsable offline and survives backend resets.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/konvohq/konvo/internal/api"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Open creates the database file if needed and prepares the schema.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);

	CREATE TABLE IF NOT EXISTS messages (
		message_id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		user_text TEXT,
		ai_response_text TEXT,
		ai_audio_url TEXT,
		processing_status TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertSession records or refreshes a session's metadata.
func (s *Store) UpsertSession(ctx context.Context, sess api.Session) error {
	query := `
	INSERT INTO sessions (session_id, title, created_at, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		title = excluded.title,
		updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		sess.ID, sess.Title, sess.CreatedAt.Unix(), sess.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", sess.ID, err)
	}
	return nil
}

// UpsertMessage records or refreshes one turn.
func (s *Store) UpsertMessage(ctx context.Context, msg api.Message) error {
	query := `
	INSERT INTO messages (message_id, session_id, user_text, ai_response_text,
		ai_audio_url, processing_status, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(message_id) DO UPDATE SET
		user_text = excluded.user_text,
		ai_response_text = excluded.ai_response_text,
		ai_audio_url = excluded.ai_audio_url,
		processing_status = excluded.processing_status,
		updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		msg.ID, msg.SessionID, msg.UserText, msg.AIResponseText,
		msg.AIAudioURL, string(msg.ProcessingStatus),
		msg.CreatedAt.Unix(), msg.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("upsert message %s: %w", msg.ID, err)
	}
	return nil
}

// ListSessions returns cached sessions, most recently updated first.
func (s *Store) ListSessions(ctx context.Context) ([]api.Session, error) {
	query := `
	SELECT session_id, title, created_at, updated_at
	FROM sessions ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []api.Session
	for rows.Next() {
		var sess api.Session
		var createdAt, updatedAt int64
		if err := rows.Scan(&sess.ID, &sess.Title, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sess.CreatedAt = time.Unix(createdAt, 0)
		sess.UpdatedAt = time.Unix(updatedAt, 0)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// MessagesForSession returns a session's cached turns in creation order.
func (s *Store) MessagesForSession(ctx context.Context, sessionID string) ([]api.Message, error) {
	query := `
	SELECT message_id, session_id, user_text, ai_response_text,
	       ai_audio_url, processing_status, created_at, updated_at
	FROM messages WHERE session_id = ? ORDER BY created_at ASC, message_id ASC`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var messages []api.Message
	for rows.Next() {
		var msg api.Message
		var userText, aiText, aiURL sql.NullString
		var status string
		var createdAt, updatedAt int64
		if err := rows.Scan(&msg.ID, &msg.SessionID, &userText, &aiText,
			&aiURL, &status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		msg.UserText = userText.String
		msg.AIResponseText = aiText.String
		msg.AIAudioURL = aiURL.String
		msg.ProcessingStatus = api.Status(status)
		msg.CreatedAt = time.Unix(createdAt, 0)
		msg.UpdatedAt = time.Unix(updatedAt, 0)
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// DeleteSession removes a session and its turns from the cache.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete messages for %s: %w", sessionID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return tx.Commit()
}
