package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes exchanges as JSON on SubjectExchange.
type NATSPublisher struct {
	nc *nats.Conn
}

// NewNATS constructs a thin NATS-based publisher.
func NewNATS(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

func (p *NATSPublisher) Publish(_ context.Context, ex Exchange) error {
	if ex.ID == uuid.Nil {
		ex.ID = uuid.New()
	}
	if ex.At.IsZero() {
		ex.At = time.Now().UTC()
	}
	body, err := json.Marshal(ex)
	if err != nil {
		return err
	}
	return p.nc.Publish(SubjectExchange, body)
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}
