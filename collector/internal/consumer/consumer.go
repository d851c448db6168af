// Package consumer processes build-log events off the bus: each message is
// persisted to the log store, fanned out to live viewers, and only then
// acknowledged. A failed persist leaves the message unacknowledged so the bus
// redelivers it; the store's idempotency key absorbs the resulting duplicate
// write, while live viewers may see a repeated line (accepted as cosmetic).
package consumer

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/skydock-systems/skydock-stack/collector/internal/metrics"
	"github.com/skydock-systems/skydock-stack/common/logging"
	"github.com/skydock-systems/skydock-stack/common/messaging"
	"github.com/skydock-systems/skydock-stack/common/models"
)

// eventIDSpace namespaces the deterministic event IDs. Deriving the ID from
// deployment and sequence makes every delivery of one event map to the same
// store document.
var eventIDSpace = uuid.MustParse("2f1ed3f4-8c9a-4b0e-9c37-5a1dd0a8d7c1")

// Store is the persistence boundary. Persist returns false when the record
// already existed, and an error only when the write genuinely failed.
type Store interface {
	Persist(ctx context.Context, rec *models.LogRecord) (bool, error)
}

// Broadcaster is the live fanout boundary.
type Broadcaster interface {
	Publish(deploymentID, line string) int
}

// StatusReporter receives deployment lifecycle milestones.
type StatusReporter interface {
	Report(ctx context.Context, deploymentID, status string) error
}

// Deployment statuses reported on lifecycle milestones. Owned by the API
// service; the consumer only names them.
const (
	StatusBuilding  = "BUILDING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// Consumer glues the bus to the store, the hub, and the status hook.
type Consumer struct {
	store  Store
	hub    Broadcaster
	status StatusReporter
	logger *logging.Logger
}

// New creates a consumer. status may be nil when no hook is wired.
func New(store Store, hub Broadcaster, status StatusReporter, logger *logging.Logger) *Consumer {
	return &Consumer{
		store:  store,
		hub:    hub,
		status: status,
		logger: logger,
	}
}

// Handle processes one bus message. Returning an error leaves the message
// unacknowledged for redelivery; returning nil acknowledges it.
func (c *Consumer) Handle(ctx context.Context, msg *messaging.Message) error {
	metrics.EventsConsumed.Inc()

	event, err := models.DecodeLogEvent(msg.Data)
	if err != nil {
		// A payload that cannot be parsed will not parse on redelivery
		// either; acknowledge it so it cannot wedge the stream.
		metrics.EventsMalformed.Inc()
		c.logger.ErrorContext(ctx, "dropping malformed log event",
			logging.Subject(msg.Subject), logging.Error(err))
		return nil
	}

	rec := &models.LogRecord{
		EventID:      EventID(event),
		DeploymentID: event.DeploymentID,
		Line:         event.Line,
		Sequence:     event.Sequence,
		Timestamp:    event.EmittedAt,
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = msg.Timestamp
	}

	start := time.Now()
	created, persistErr := c.store.Persist(ctx, rec)
	metrics.PersistDuration.Observe(time.Since(start).Seconds())

	switch {
	case persistErr != nil:
		metrics.PersistErrors.Inc()
		c.logger.ErrorContext(ctx, "log store write failed, withholding ack",
			logging.DeploymentID(event.DeploymentID),
			logging.EventID(rec.EventID),
			logging.Error(persistErr))
	case created:
		metrics.EventsPersisted.Inc()
	default:
		metrics.EventsDuplicate.Inc()
		c.logger.DebugContext(ctx, "absorbed redelivered event",
			logging.DeploymentID(event.DeploymentID),
			logging.EventID(rec.EventID),
			"deliveries", msg.Deliveries)
	}

	// Fanout is attempted regardless of the persist outcome; it is
	// best-effort and duplicate live lines on redelivery are acceptable.
	c.hub.Publish(event.DeploymentID, event.Line)

	if status := milestoneStatus(event.Phase); status != "" {
		c.report(ctx, event.DeploymentID, status)
	}

	return persistErr
}

// report invokes the status hook. Hook failures are logged, not returned:
// the transition repeats on the next redelivery or is reconciled externally,
// and a flaky hook must not block log persistence.
func (c *Consumer) report(ctx context.Context, deploymentID, status string) {
	if c.status == nil {
		return
	}
	if err := c.status.Report(ctx, deploymentID, status); err != nil {
		metrics.StatusReportErrors.Inc()
		c.logger.WarnContext(ctx, "deployment status report failed",
			logging.DeploymentID(deploymentID),
			"status", status,
			logging.Error(err))
	}
}

// EventID derives the idempotency key for a log event. The same deployment
// and sequence always produce the same ID, across any number of deliveries.
func EventID(event *models.LogEvent) string {
	key := event.DeploymentID + ":" + strconv.FormatUint(event.Sequence, 10)
	return uuid.NewSHA1(eventIDSpace, []byte(key)).String()
}

// milestoneStatus maps lifecycle phases to deployment statuses.
// Plain output lines and upload progress do not change status.
func milestoneStatus(phase string) string {
	switch phase {
	case models.PhaseBuildStarted:
		return StatusBuilding
	case models.PhaseDone:
		return StatusSucceeded
	case models.PhaseBuildFailed:
		return StatusFailed
	default:
		return ""
	}
}
