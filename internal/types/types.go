// Package types provides shared type definitions used across tagloom packages.
// This package exists to break import cycles between the engine, providers,
// and stores. Types in this package should be foundational data structures
// with no complex dependencies.
package types

import "time"

// Turn roles. Roles alternate in practice, but nothing enforces
// alternation; consumers must tolerate repeated roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message in a conversation.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// UserTurn builds a user turn stamped with the current time.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content, CreatedAt: time.Now().UTC()}
}

// AssistantTurn builds an assistant turn stamped with the current time.
func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content, CreatedAt: time.Now().UTC()}
}
