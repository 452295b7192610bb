// Package store persists conversation records. SQLiteStore is the
// durable implementation; MemoryStore backs tests and ephemeral runs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"tagloom/internal/types"

	_ "modernc.org/sqlite"
)

// ErrConversationNotFound is returned for an unknown conversation ID.
var ErrConversationNotFound = errors.New("conversation not found")

// SQLiteStore implements types.ConversationStore on SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore initializes the SQLite database at the given path,
// creating parent directories and tables as needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// initialize creates the required tables.
func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS conversation_turns (
		conversation_id TEXT NOT NULL REFERENCES conversations(id),
		position INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (conversation_id, position)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateEmptyConversation allocates a new conversation record.
func (s *SQLiteStore) CreateEmptyConversation(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	if _, err := s.db.ExecContext(ctx, "INSERT INTO conversations (id) VALUES (?)", id); err != nil {
		return "", fmt.Errorf("failed to create conversation: %w", err)
	}
	return id, nil
}

// StartNewConversation creates a conversation seeded with turns.
func (s *SQLiteStore) StartNewConversation(ctx context.Context, turns []types.Turn) (string, error) {
	id, err := s.CreateEmptyConversation(ctx)
	if err != nil {
		return "", err
	}
	if len(turns) == 0 {
		return id, nil
	}
	if err := s.UpdateConversation(ctx, id, turns); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateConversation replaces the stored turns of a conversation in one
// transaction.
func (s *SQLiteStore) UpdateConversation(ctx context.Context, id string, turns []types.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversations WHERE id = ?", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to look up conversation: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM conversation_turns WHERE conversation_id = ?", id); err != nil {
		return fmt.Errorf("failed to clear turns: %w", err)
	}
	for i, turn := range turns {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO conversation_turns (conversation_id, position, role, content, created_at) VALUES (?, ?, ?, ?, ?)",
			id, i, turn.Role, turn.Content, turn.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert turn %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// GetConversation returns the stored turns in order.
func (s *SQLiteStore) GetConversation(ctx context.Context, id string) ([]types.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversations WHERE id = ?", id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up conversation: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT role, content, created_at FROM conversation_turns WHERE conversation_id = ? ORDER BY position",
		id)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []types.Turn
	for rows.Next() {
		var turn types.Turn
		if err := rows.Scan(&turn.Role, &turn.Content, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}
