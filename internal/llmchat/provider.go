package llmchat

import "context"

// Provider defines the interface for LLM backends. Chat is built on top of
// a Provider; individual providers never implement retry or timeout
// themselves.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
