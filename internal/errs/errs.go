// Package errs defines the domain error sum type the indexing and
// retrieval pipelines return. Every error that crosses a stage boundary is
// one of these kinds; internal/server maps them to HTTP status codes at
// the process boundary.
package errs

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a domain error.
type Kind string

const (
	KindLocked            Kind = "locked"
	KindValidationFailure Kind = "validation_failure"
	KindVcsFailure        Kind = "vcs_failure"
	KindChatFailure       Kind = "chat_failure"
	KindEmbedFailure      Kind = "embed_failure"
	KindParseFailure      Kind = "parse_failure"
	KindInternalFailure   Kind = "internal_failure"
)

// Error is the domain error sum type. Kind drives the HTTP mapping in
// internal/server; Err (if present) is the wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// As reports whether err is (or wraps) an *Error, returning it if so.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Locked builds a Locked error carrying the elapsed lock age.
func Locked(elapsed time.Duration) *Error {
	return &Error{Kind: KindLocked, Message: fmt.Sprintf("project locked for %s", elapsed)}
}

// Validation builds a ValidationFailure error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidationFailure, Message: fmt.Sprintf(format, args...)}
}

// Vcs wraps a RepoSource failure.
func Vcs(err error) *Error {
	return &Error{Kind: KindVcsFailure, Message: "vcs operation failed", Err: err}
}

// Chat wraps a Chat backend failure.
func Chat(err error) *Error {
	return &Error{Kind: KindChatFailure, Message: "chat backend failed", Err: err}
}

// Embed wraps an Embedder backend failure.
func Embed(err error) *Error {
	return &Error{Kind: KindEmbedFailure, Message: "embedding backend failed", Err: err}
}

// Parse builds a ParseFailure error for unparseable LLM output.
func Parse(format string, args ...any) *Error {
	return &Error{Kind: KindParseFailure, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected error.
func Internal(err error) *Error {
	return &Error{Kind: KindInternalFailure, Message: "internal failure", Err: err}
}
