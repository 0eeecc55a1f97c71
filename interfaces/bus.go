package interfaces

import (
	"context"
	"time"
)

type Message struct {
	ID         string
	Topic      string
	Payload    []byte
	Deliveries int64
}

type Bus interface {
	Publish(ctx context.Context, topic string, payload []byte) (string, error)
	// Consume reads new messages for the consumer group, waiting up to block
	Consume(ctx context.Context, topic string, group string, consumer string, count int64,
		block time.Duration) ([]Message, error)
	Ack(ctx context.Context, topic string, group string, ids ...string) error
	Close() error
}
