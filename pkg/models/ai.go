package models

import "context"

// Chat message roles for the provider exchange.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is one message of the two-message exchange sent to a provider.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the configuration bag for one provider call.
type CompletionRequest struct {
	Messages    []ChatMessage
	Model       string
	Temperature float64
	MaxTokens   int
	Thinking    bool
}

// AIProvider is the interface all model integrations implement. Callers
// inject this interface rather than a concrete provider. The returned text
// is free-form; the caller extracts and validates any structured content
// itself.
type AIProvider interface {
	// Complete sends the messages and returns the generated text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Name returns the provider identifier (e.g., "ollama", "openai").
	Name() string
}
