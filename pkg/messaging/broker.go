package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Envelope is the wire format for published notification events.
type Envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
