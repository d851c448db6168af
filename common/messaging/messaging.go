// Package messaging defines the bus-facing message types and subject scheme
// shared by the build-log producer and the collector's durable consumer.
package messaging

import (
	"context"
	"time"
)

// Message represents a message received from the bus.
type Message struct {
	// Subject is the subject the message was published to.
	Subject string

	// Data is the raw message payload.
	Data []byte

	// Metadata contains optional key-value pairs for message headers.
	Metadata map[string]string

	// Timestamp is when the message was published.
	Timestamp time.Time

	// Deliveries is the delivery attempt count, starting at 1.
	// Greater than 1 means the message is a redelivery.
	Deliveries uint64
}

// MessageHandler processes a received message.
// Return an error to indicate processing failure; durable transports
// redeliver the message instead of advancing past it.
type MessageHandler func(ctx context.Context, msg *Message) error
