// Package producer publishes build output to the durable log bus.
package producer

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/skydock-systems/skydock-stack/common/logging"
	"github.com/skydock-systems/skydock-stack/common/messaging"
	"github.com/skydock-systems/skydock-stack/common/models"
)

const (
	maxPublishAttempts = 3
	publishBackoff     = 200 * time.Millisecond
)

// Bus is the durable publish surface the producer needs. Publishes are
// synchronous so a returned nil means the stream has the message.
type Bus interface {
	PublishSync(ctx context.Context, subject string, data []byte) (*jetstream.PubAck, error)
}

// Producer assigns per-deployment sequence numbers and publishes one event
// per log line. It is not safe for concurrent use; the builder emits lines
// from a single goroutine.
type Producer struct {
	deploymentID string
	projectID    string
	subject      string
	bus          Bus
	logger       *logging.Logger

	seq     uint64
	dropped uint64
}

func New(deploymentID, projectID string, bus Bus, logger *logging.Logger) *Producer {
	return &Producer{
		deploymentID: deploymentID,
		projectID:    projectID,
		subject:      messaging.BuildLogSubject(deploymentID),
		bus:          bus,
		logger:       logger,
	}
}

// Emit publishes a plain output line.
func (p *Producer) Emit(ctx context.Context, line string) error {
	return p.EmitPhase(ctx, line, models.PhaseLine)
}

// EmitPhase publishes a line carrying a lifecycle phase marker.
func (p *Producer) EmitPhase(ctx context.Context, line, phase string) error {
	p.seq++

	event := &models.LogEvent{
		DeploymentID: p.deploymentID,
		ProjectID:    p.projectID,
		Line:         line,
		Sequence:     p.seq,
		Phase:        phase,
		EmittedAt:    time.Now().UTC(),
	}

	data, err := event.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode log event: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxPublishAttempts; attempt++ {
		if _, lastErr = p.bus.PublishSync(ctx, p.subject, data); lastErr == nil {
			return nil
		}

		if attempt < maxPublishAttempts {
			select {
			case <-time.After(time.Duration(attempt) * publishBackoff):
			case <-ctx.Done():
				p.dropped++
				return ctx.Err()
			}
		}
	}

	// The build keeps going; a gap in the log stream is better than a
	// failed deployment.
	p.dropped++
	p.logger.Error("dropping log event after publish retries",
		logging.DeploymentID(p.deploymentID),
		logging.Error(lastErr),
	)
	return fmt.Errorf("failed to publish log event after %d attempts: %w", maxPublishAttempts, lastErr)
}

// Sequence returns the last assigned sequence number.
func (p *Producer) Sequence() uint64 {
	return p.seq
}

// Dropped returns how many events never reached the bus.
func (p *Producer) Dropped() uint64 {
	return p.dropped
}
