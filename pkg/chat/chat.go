// Package chat provides the chat-completion client interface used for
// grounded answer synthesis.
package chat

import "context"

// CompletionRequest carries a prompt and its generation parameters.
type CompletionRequest struct {
	// Prompt is the full instruction prompt.
	Prompt string

	// Temperature controls sampling randomness. Grounded answering uses
	// a fixed low value.
	Temperature float64

	// MaxTokens bounds the generated output length.
	MaxTokens int
}

// Client invokes a chat-completion model with a single prompt.
type Client interface {
	// Complete returns the generated text for the request. Provider
	// failures are returned as *ProviderError so callers can classify
	// them without string matching.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Close releases any resources held by the client.
	Close() error
}
