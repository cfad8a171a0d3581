package llm

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies upstream failures so callers can decide between retrying,
// falling back to another model and giving up.
type Kind string

const (
	KindRateLimited       Kind = "rate_limited"
	KindModelNotFound     Kind = "model_not_found"
	KindInvalidCredential Kind = "invalid_credential"
	KindOther             Kind = "other"
)

// Image is an inline image attached to a request.
type Image struct {
	MIMEType string
	Data     []byte
}

// Request is a single generation call.
type Request struct {
	System      string
	Prompt      string
	FileID      string // previously uploaded document, optional
	Images      []Image
	Temperature float64
	MaxTokens   int
}

// Client is a minimal LLM interface to allow pluggable providers.
type Client interface {
	Generate(ctx context.Context, model string, req Request) (string, error)
	UploadFile(ctx context.Context, name string, data []byte) (string, error)
}

// Error is a classified upstream failure.
type Error struct {
	Kind  Kind
	Model string
	Err   error
}

func (e *Error) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("llm %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("llm %s (%s): %v", e.Kind, e.Model, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the failure kind of err; unclassified errors are KindOther.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}
