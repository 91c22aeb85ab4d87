package llmchat

import (
	"context"
	"fmt"
)

const mockPrefix = "[mock] "
const mockPromptCap = 200

// MockProvider returns a deterministic, echo-style response derived from the
// prompt instead of calling a real backend. Used when a project is loaded
// with use_mock_llm, and in tests.
type MockProvider struct {
	name string
}

// NewMockProvider creates a Provider that never leaves the process.
func NewMockProvider(name string) *MockProvider {
	if name == "" {
		name = "mock"
	}
	return &MockProvider{name: name}
}

func (p *MockProvider) Name() string { return p.name }

func (p *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var last string
	for _, m := range req.Messages {
		last = m.Content
	}
	if len(last) > mockPromptCap {
		last = last[:mockPromptCap]
	}
	content := fmt.Sprintf("%s%s", mockPrefix, last)
	return &CompletionResponse{
		Content:      content,
		InputTokens:  EstimatePromptTokens(req),
		OutputTokens: len(content) / 4,
		Model:        "mock",
		FinishReason: "stop",
	}, nil
}

// EstimatePromptTokens sums a naive per-character token estimate across all
// messages in a request; used only by MockProvider's reported usage.
func EstimatePromptTokens(req CompletionRequest) int {
	total := 0
	for _, m := range req.Messages {
		total += len(m.Content) / 4
	}
	return total
}
