package llmchat

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"
)

// FailureKind classifies why a Chat.Send call failed.
type FailureKind string

const (
	KindTransport       FailureKind = "transport"
	KindRateLimit       FailureKind = "rate_limit"
	KindInvalidResponse FailureKind = "invalid_response"
	KindCanceled        FailureKind = "canceled"
)

// Failure wraps a provider error with a classification used to decide
// whether a retry is safe.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Kind)
	}
	return string(f.Kind) + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error { return f.Err }

// AsFailure extracts a *Failure from err, if any.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

func classify(err error) FailureKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "429"), strings.Contains(msg, "too many requests"):
		return KindRateLimit
	case strings.Contains(msg, "unmarshal"), strings.Contains(msg, "parse"), strings.Contains(msg, "decode"):
		return KindInvalidResponse
	default:
		return KindTransport
	}
}

// SendOptions configures a single Chat.Send call.
type SendOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int
}

// Chat is the narrow, spec-facing surface the indexing pipeline depends on:
// a single prompt in, a string response out, with retry/timeout handled
// uniformly across every Provider implementation.
type Chat interface {
	Send(ctx context.Context, prompt string, opts SendOptions) (string, error)
}

type chat struct {
	provider Provider
}

// NewChat wraps a Provider with retry-with-backoff and per-call timeout,
// exposing the Chat interface the rest of the pipeline depends on.
func NewChat(provider Provider) Chat {
	return &chat{provider: provider}
}

func (c *chat) Send(ctx context.Context, prompt string, opts SendOptions) (string, error) {
	req := CompletionRequest{
		Model:       opts.Model,
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", &Failure{Kind: KindCanceled, Err: ctx.Err()}
		}
		callCtx := ctx
		var cancel context.CancelFunc
		if opts.Timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		}
		resp, err := c.provider.Complete(callCtx, req)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			if resp == nil || resp.Content == "" {
				lastErr = &Failure{Kind: KindInvalidResponse, Err: errors.New("empty completion")}
			} else {
				return resp.Content, nil
			}
		} else {
			kind := classify(err)
			lastErr = &Failure{Kind: kind, Err: err}
			if kind == KindCanceled || kind == KindInvalidResponse {
				return "", lastErr
			}
		}

		if ctx.Err() != nil {
			return "", &Failure{Kind: KindCanceled, Err: ctx.Err()}
		}
		if attempt == maxRetries {
			break
		}
		backoff := backoffDuration(attempt)
		select {
		case <-ctx.Done():
			return "", &Failure{Kind: KindCanceled, Err: ctx.Err()}
		case <-time.After(backoff):
		}
	}
	return "", lastErr
}

// backoffDuration returns exponential backoff with jitter: base 200ms, doubling.
func backoffDuration(attempt int) time.Duration {
	base := 200 * time.Millisecond
	for i := 0; i < attempt; i++ {
		base *= 2
		if base > 10*time.Second {
			base = 10 * time.Second
			break
		}
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base/2 + jitter
}
