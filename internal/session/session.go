// Package session keeps per-user state: the transcript, the draft query
// picked from the example catalog, and an optional ad-hoc document.
package session

import (
	"context"
	"errors"
	"time"

	"doc-qa/internal/document"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one immutable transcript line.
type Entry struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Session is a snapshot of one user's state. Transcript is chronological.
type Session struct {
	ID         string             `json:"id"`
	CreatedAt  time.Time          `json:"created_at"`
	Draft      string             `json:"draft"`
	Document   *document.Document `json:"document,omitempty"`
	Transcript []Entry            `json:"-"`
}

// Newest returns the transcript most-recent-first. The stored order is
// untouched.
func (s *Session) Newest() []Entry {
	out := make([]Entry, len(s.Transcript))
	for i, e := range s.Transcript {
		out[len(out)-1-i] = e
	}
	return out
}

// Store persists sessions for their lifetime.
type Store interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Append(ctx context.Context, id string, entries ...Entry) error
	SetDraft(ctx context.Context, id, draft string) error
	SetDocument(ctx context.Context, id string, doc *document.Document) error
	Delete(ctx context.Context, id string) error
}
