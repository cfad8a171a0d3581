// Package events publishes a record of each answered question so other
// systems can audit usage.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"doc-qa/internal/retry"
)

// SubjectExchange is the NATS subject for answered questions.
const SubjectExchange = "qa.exchange"

// Exchange describes one question/answer round trip.
type Exchange struct {
	ID        uuid.UUID `json:"id"`
	SessionID string    `json:"session_id"`
	Document  string    `json:"document"`
	Policy    string    `json:"policy"`
	Pages     []int     `json:"pages,omitempty"`
	Query     string    `json:"query"`
	Outcome   string    `json:"outcome"`
	Model     string    `json:"model,omitempty"`
	Calls     int       `json:"calls"`
	At        time.Time `json:"at"`
}

// Publisher sends exchanges somewhere.
type Publisher interface {
	Publish(ctx context.Context, ex Exchange) error
}

// Nop discards everything.
type Nop struct{}

func (Nop) Publish(context.Context, Exchange) error { return nil }

// PublishWithRetry attempts to publish with retries and exponential backoff.
// The exchange gets an id before the first attempt.
func PublishWithRetry(ctx context.Context, p Publisher, ex Exchange, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	// One id for every attempt so consumers can drop duplicates.
	if ex.ID == uuid.Nil {
		ex.ID = uuid.New()
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if err := p.Publish(ctx, ex); err == nil {
			return nil
		} else if attempt == attempts-1 {
			return err
		}
		if err := retry.Sleep(ctx, retry.ExponentialBackoff(attempt, base)); err != nil {
			return err
		}
	}
	return nil
}
