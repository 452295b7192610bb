package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"tagloom/internal/types"
)

// MemoryStore implements types.ConversationStore in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]types.Turn
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]types.Turn)}
}

// CreateEmptyConversation allocates a new conversation record.
func (s *MemoryStore) CreateEmptyConversation(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	s.records[id] = nil
	return id, nil
}

// StartNewConversation creates a conversation seeded with turns.
func (s *MemoryStore) StartNewConversation(ctx context.Context, turns []types.Turn) (string, error) {
	id, err := s.CreateEmptyConversation(ctx)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.records[id] = append([]types.Turn(nil), turns...)
	s.mu.Unlock()
	return id, nil
}

// UpdateConversation replaces the stored turns of a conversation.
func (s *MemoryStore) UpdateConversation(_ context.Context, id string, turns []types.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	s.records[id] = append([]types.Turn(nil), turns...)
	return nil
}

// GetConversation returns the stored turns in order.
func (s *MemoryStore) GetConversation(_ context.Context, id string) ([]types.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	return append([]types.Turn(nil), turns...), nil
}
