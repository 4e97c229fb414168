// Package llm defines the chat-completion boundary used by the semantic
// classifier and the providers that implement it.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrEmptyCompletion is returned when a provider answers without any text.
	ErrEmptyCompletion = errors.New("llm: empty completion")
	// ErrUnknownProvider is returned by New for an unsupported provider name.
	ErrUnknownProvider = errors.New("llm: unknown provider")
)

// Role of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    Role
	Content string
}

// ChatRequest is a single chat-completion call. An empty Model means the
// provider's configured default.
type ChatRequest struct {
	Model       string
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	// JSONObject asks the provider to constrain output to a JSON object
	// where the API supports it.
	JSONObject bool
}

// ChatResponse is the text of the first completion choice.
type ChatResponse struct {
	Content      string
	Model        string
	FinishReason string
}

// Provider is an interchangeable chat-completion backend.
type Provider interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req ChatRequest) (*ChatResponse, error)

func (f ProviderFunc) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return f(ctx, req)
}
