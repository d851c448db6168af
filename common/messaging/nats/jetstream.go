// Package nats provides JetStream support for durable, persistent messaging.
package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/skydock-systems/skydock-stack/common/messaging"
)

// JetStreamClient extends Client with JetStream persistence capabilities.
type JetStreamClient struct {
	*Client
	js jetstream.JetStream
}

// StreamConfig defines a JetStream stream configuration.
type StreamConfig struct {
	// Name is the stream name.
	Name string

	// Subjects are the subjects this stream captures.
	Subjects []string

	// MaxAge is the maximum age of messages in the stream.
	MaxAge time.Duration

	// MaxBytes is the maximum total size of the stream.
	MaxBytes int64

	// MaxMsgs is the maximum number of messages in the stream.
	MaxMsgs int64

	// Retention policy (LimitsPolicy, InterestPolicy, WorkQueuePolicy).
	Retention jetstream.RetentionPolicy

	// Storage type (FileStorage, MemoryStorage).
	Storage jetstream.StorageType
}

// ConsumerConfig defines a JetStream consumer configuration.
type ConsumerConfig struct {
	// Name is the durable consumer name. Consumers sharing a name share
	// acknowledgment bookkeeping, like a consumer group.
	Name string

	// FilterSubject filters which messages this consumer receives.
	FilterSubject string

	// AckWait is time to wait for acknowledgment before redelivery.
	AckWait time.Duration

	// MaxDeliver is maximum delivery attempts before giving up.
	MaxDeliver int

	// MaxAckPending is maximum unacknowledged messages. Keep this at 1 when
	// redeliveries must not reorder messages within a subject.
	MaxAckPending int
}

// NewJetStreamClient creates a JetStream-enabled client.
func NewJetStreamClient(cfg Config) (*JetStreamClient, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(client.conn)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &JetStreamClient{
		Client: client,
		js:     js,
	}, nil
}

// CreateOrUpdateStream creates or updates a stream.
func (c *JetStreamClient) CreateOrUpdateStream(ctx context.Context, cfg StreamConfig) (jetstream.Stream, error) {
	streamCfg := jetstream.StreamConfig{
		Name:      cfg.Name,
		Subjects:  cfg.Subjects,
		MaxAge:    cfg.MaxAge,
		MaxBytes:  cfg.MaxBytes,
		MaxMsgs:   cfg.MaxMsgs,
		Retention: cfg.Retention,
		Storage:   cfg.Storage,
	}

	stream, err := c.js.CreateOrUpdateStream(ctx, streamCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create/update stream %s: %w", cfg.Name, err)
	}

	return stream, nil
}

// CreateOrUpdateConsumer creates or updates a durable consumer.
func (c *JetStreamClient) CreateOrUpdateConsumer(ctx context.Context, streamName string, cfg ConsumerConfig) (jetstream.Consumer, error) {
	consumerCfg := jetstream.ConsumerConfig{
		Name:          cfg.Name,
		Durable:       cfg.Name,
		FilterSubject: cfg.FilterSubject,
		AckWait:       cfg.AckWait,
		MaxDeliver:    cfg.MaxDeliver,
		MaxAckPending: cfg.MaxAckPending,
		AckPolicy:     jetstream.AckExplicitPolicy,
	}

	stream, err := c.js.Stream(ctx, streamName)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream %s: %w", streamName, err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, consumerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create/update consumer %s: %w", cfg.Name, err)
	}

	return consumer, nil
}

// PublishSync publishes a message and waits for the stream's acknowledgment.
// The message is durably stored on the stream once this returns without error.
func (c *JetStreamClient) PublishSync(ctx context.Context, subject string, data []byte) (*jetstream.PubAck, error) {
	return c.js.Publish(ctx, subject, data)
}

// ConsumeMessages starts consuming messages from a consumer with the given handler.
// Messages are dispatched one at a time in stream order. While a handler runs,
// a keepalive marks the message in progress so slow processing does not trip
// the AckWait redelivery timer. Handler success acknowledges the message;
// handler failure NAKs it for redelivery, so the consumer never advances past
// an unprocessed message.
// Returns a stop function that halts consumption.
func (c *JetStreamClient) ConsumeMessages(ctx context.Context, streamName, consumerName string, handler messaging.MessageHandler) (func(), error) {
	stream, err := c.js.Stream(ctx, streamName)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream %s: %w", streamName, err)
	}

	consumer, err := stream.Consumer(ctx, consumerName)
	if err != nil {
		return nil, fmt.Errorf("failed to get consumer %s: %w", consumerName, err)
	}

	info, err := consumer.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get consumer info: %w", err)
	}
	ackWait := info.Config.AckWait
	if ackWait <= 0 {
		ackWait = 30 * time.Second
	}

	consumeCtx, cancel := context.WithCancel(ctx)

	cons, err := consumer.Consume(func(msg jetstream.Msg) {
		m := &messaging.Message{
			Subject:    msg.Subject(),
			Data:       msg.Data(),
			Timestamp:  time.Now(),
			Deliveries: 1,
		}

		if meta, err := msg.Metadata(); err == nil {
			m.Timestamp = meta.Timestamp
			m.Deliveries = meta.NumDelivered
		}

		if headers := msg.Headers(); headers != nil {
			m.Metadata = make(map[string]string)
			for k := range headers {
				m.Metadata[k] = headers.Get(k)
			}
		}

		stopKeepalive := keepInProgress(msg, ackWait/2)
		err := handler(consumeCtx, m)
		stopKeepalive()

		if err != nil {
			// NAK with delay for retry
			_ = msg.NakWithDelay(5 * time.Second)
			return
		}

		_ = msg.Ack()
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	return func() {
		cancel()
		cons.Stop()
	}, nil
}

// keepInProgress resets the message's ack timer at the given interval until
// the returned stop function is called.
func keepInProgress(msg jetstream.Msg, interval time.Duration) func() {
	if interval <= 0 {
		interval = time.Second
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = msg.InProgress()
			}
		}
	}()
	return func() { close(done) }
}

// BuildLogsStream captures every deployment's build-log subject.
// LimitsPolicy retention keeps messages until age/size limits regardless of
// acks, so a collector that falls behind can still catch up from its last
// acknowledged position.
var BuildLogsStream = StreamConfig{
	Name:      messaging.StreamBuildLogs,
	Subjects:  []string{messaging.SubjectBuildLogsAll},
	MaxAge:    24 * time.Hour,
	MaxBytes:  1024 * 1024 * 1024, // 1GB
	MaxMsgs:   1000000,
	Retention: jetstream.LimitsPolicy,
	Storage:   jetstream.FileStorage,
}

// BuildLogsConsumer is the collector's durable consumer. MaxAckPending of 1
// keeps delivery strictly sequential so per-deployment order survives
// redelivery.
var BuildLogsConsumer = ConsumerConfig{
	Name:          messaging.ConsumerCollectorLogs,
	FilterSubject: messaging.SubjectBuildLogsAll,
	AckWait:       30 * time.Second,
	MaxDeliver:    -1, // Redeliver until processed; the store must come back
	MaxAckPending: 1,
}
