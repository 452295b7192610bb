// Package provider implements completion backends behind the
// types.CompletionProvider interface. Two backends are available: an
// OpenAI-compatible chat completions client and a Gemini client built on
// the official genai SDK.
package provider

import (
	"errors"
	"fmt"
)

// Provider errors.
var (
	// ErrAPIKeyMissing is returned when a backend is constructed without
	// credentials.
	ErrAPIKeyMissing = errors.New("api key not configured")

	// ErrEmptyCompletion is returned when the backend responds without any
	// completion choice.
	ErrEmptyCompletion = errors.New("no completion returned")

	// ErrUnknownBackend is returned by the factory for an unrecognized
	// backend name.
	ErrUnknownBackend = errors.New("unknown provider backend")
)

// roleFor maps internal roles onto the wire roles the chat APIs expect.
func roleFor(role string) (string, error) {
	switch role {
	case "user", "assistant", "system":
		return role, nil
	}
	return "", fmt.Errorf("unsupported turn role %q", role)
}
