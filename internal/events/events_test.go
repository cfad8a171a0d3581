package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func TestPublishWithRetrySucceedsAfterFailure(t *testing.T) {
	p := new(MockPublisher)
	p.On("Publish", mock.Anything, mock.Anything).Return(errors.New("no responders")).Once()
	p.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

	err := PublishWithRetry(context.Background(), p, Exchange{Query: "q"}, 3, time.Millisecond)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	p.AssertNumberOfCalls(t, "Publish", 2)
}

func TestPublishWithRetryGivesUp(t *testing.T) {
	p := new(MockPublisher)
	p.On("Publish", mock.Anything, mock.Anything).Return(errors.New("down"))

	err := PublishWithRetry(context.Background(), p, Exchange{}, 3, time.Millisecond)
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	p.AssertNumberOfCalls(t, "Publish", 3)
}

func TestPublishWithRetryCancelled(t *testing.T) {
	p := new(MockPublisher)
	p.On("Publish", mock.Anything, mock.Anything).Return(errors.New("down"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := PublishWithRetry(ctx, p, Exchange{}, 5, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	p.AssertNumberOfCalls(t, "Publish", 1)
}

func TestNopPublisher(t *testing.T) {
	if err := (Nop{}).Publish(context.Background(), Exchange{}); err != nil {
		t.Errorf("Nop should never fail, got %v", err)
	}
}

func TestPublishWithRetryKeepsID(t *testing.T) {
	var ids []uuid.UUID
	record := func(args mock.Arguments) { ids = append(ids, args.Get(1).(Exchange).ID) }

	p := new(MockPublisher)
	p.On("Publish", mock.Anything, mock.Anything).Run(record).Return(errors.New("timeout")).Once()
	p.On("Publish", mock.Anything, mock.Anything).Run(record).Return(nil).Once()

	if err := PublishWithRetry(context.Background(), p, Exchange{Query: "q"}, 3, time.Millisecond); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(ids))
	}
	if ids[0] == uuid.Nil || ids[0] != ids[1] {
		t.Errorf("retries must reuse one non-nil id, got %v", ids)
	}
}
