package llmchat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// mockCallProvider is a test provider that records calls and returns canned
// responses or errors in sequence.
type mockCallProvider struct {
	mu       sync.Mutex
	calls    []CompletionRequest
	errs     []error
	response *CompletionResponse
	provName string
}

func newMockCallProvider(name string) *mockCallProvider {
	return &mockCallProvider{
		provName: name,
		response: &CompletionResponse{Content: "ok"},
	}
}

func (m *mockCallProvider) Name() string { return m.provName }

func (m *mockCallProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := len(m.calls)
	m.calls = append(m.calls, req)
	if idx < len(m.errs) && m.errs[idx] != nil {
		return nil, m.errs[idx]
	}
	return m.response, nil
}

func (m *mockCallProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func TestChatSendSucceeds(t *testing.T) {
	p := newMockCallProvider("test")
	c := NewChat(p)

	out, err := c.Send(context.Background(), "hello", SendOptions{MaxRetries: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ok" {
		t.Errorf("expected %q, got %q", "ok", out)
	}
	if p.callCount() != 1 {
		t.Errorf("expected 1 call, got %d", p.callCount())
	}
}

func TestChatSendRetriesTransportFailures(t *testing.T) {
	p := newMockCallProvider("test")
	p.errs = []error{errors.New("connection reset"), nil}
	c := NewChat(p)

	out, err := c.Send(context.Background(), "hello", SendOptions{MaxRetries: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ok" {
		t.Errorf("expected %q, got %q", "ok", out)
	}
	if p.callCount() != 2 {
		t.Errorf("expected 2 calls (1 retry), got %d", p.callCount())
	}
}

func TestChatSendExhaustsRetries(t *testing.T) {
	p := newMockCallProvider("test")
	p.errs = []error{errors.New("boom"), errors.New("boom"), errors.New("boom")}
	c := NewChat(p)

	_, err := c.Send(context.Background(), "hello", SendOptions{MaxRetries: 2})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	f, ok := AsFailure(err)
	if !ok || f.Kind != KindTransport {
		t.Errorf("expected transport failure, got %v", err)
	}
	if p.callCount() != 3 {
		t.Errorf("expected 3 calls (initial + 2 retries), got %d", p.callCount())
	}
}

func TestChatSendDoesNotRetryInvalidResponse(t *testing.T) {
	p := newMockCallProvider("test")
	p.errs = []error{errors.New("failed to unmarshal response")}
	c := NewChat(p)

	_, err := c.Send(context.Background(), "hello", SendOptions{MaxRetries: 5})
	if err == nil {
		t.Fatal("expected error")
	}
	f, ok := AsFailure(err)
	if !ok || f.Kind != KindInvalidResponse {
		t.Errorf("expected invalid_response failure, got %v", err)
	}
	if p.callCount() != 1 {
		t.Errorf("expected exactly 1 call (no retry), got %d", p.callCount())
	}
}

func TestChatSendHonorsCancellation(t *testing.T) {
	p := newMockCallProvider("test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewChat(p)

	_, err := c.Send(ctx, "hello", SendOptions{MaxRetries: 2})
	if err == nil {
		t.Fatal("expected error on canceled context")
	}
}

func TestMockProviderIsDeterministic(t *testing.T) {
	p := NewMockProvider("mock")
	req := CompletionRequest{Messages: []Message{{Role: RoleUser, Content: "what touches auth.go?"}}}

	r1, err := p.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := p.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.Content != r2.Content {
		t.Errorf("mock responses diverged: %q vs %q", r1.Content, r2.Content)
	}
	if r1.Content == "" {
		t.Error("expected non-empty mock content")
	}
}

func TestFactoryReturnsErrorForMissingAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	for _, p := range []string{"anthropic", "openai", "google"} {
		if _, err := NewProvider(p, "some-model"); err == nil {
			t.Errorf("expected error for provider %q with missing API key", p)
		}
	}
}

func TestFactoryReturnsErrorForUnknownProvider(t *testing.T) {
	if _, err := NewProvider("unknown", "some-model"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryCreatesMockProvider(t *testing.T) {
	p, err := NewProvider("mock", "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "anything" {
		t.Errorf("expected mock provider named %q, got %q", "anything", p.Name())
	}
}

func TestFactoryCreatesOllamaWithDefaultHost(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "")
	provider, err := NewProvider("ollama", "llama3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ollamaP, ok := provider.(*OllamaProvider)
	if !ok {
		t.Fatal("expected *OllamaProvider")
	}
	if ollamaP.baseURL != "http://localhost:11434" {
		t.Errorf("expected default host, got %q", ollamaP.baseURL)
	}
}

func TestRateLimiterLimitsRequests(t *testing.T) {
	mock := newMockCallProvider("test")
	rl := NewRateLimitedProvider(mock, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	req := CompletionRequest{Model: "test-model", Messages: []Message{{Role: RoleUser, Content: "hello"}}}

	for i := 0; i < 2; i++ {
		if _, err := rl.Complete(ctx, req); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
	}

	if _, err := rl.Complete(ctx, req); err == nil {
		t.Error("expected error due to rate limiting + context timeout")
	}
}
