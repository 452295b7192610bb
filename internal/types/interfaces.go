package types

import "context"

// CompletionProvider defines the interface for LLM completion backends.
// Implementations live in internal/provider; the engine only sees this.
type CompletionProvider interface {
	// GenerateText sends the system prompt and the full conversation and
	// returns the model's raw text output. Transport, auth, and rate-limit
	// failures are returned as errors; retry policy belongs to the
	// implementation, not the caller.
	GenerateText(ctx context.Context, systemPrompt string, conversation []Turn) (string, error)
}

// ConversationStore persists conversation records. The engine mirrors its
// conversation into the store but never reads it back during a run; the
// engine's in-memory copy is authoritative.
type ConversationStore interface {
	// CreateEmptyConversation allocates a new conversation record and
	// returns its ID.
	CreateEmptyConversation(ctx context.Context) (string, error)

	// StartNewConversation creates a conversation seeded with turns and
	// returns its ID.
	StartNewConversation(ctx context.Context, turns []Turn) (string, error)

	// UpdateConversation replaces the turns of an existing conversation.
	UpdateConversation(ctx context.Context, id string, turns []Turn) error

	// GetConversation returns the stored turns for a conversation.
	GetConversation(ctx context.Context, id string) ([]Turn, error)
}
