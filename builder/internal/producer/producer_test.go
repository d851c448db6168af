package producer

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/skydock-systems/skydock-stack/common/logging"
	"github.com/skydock-systems/skydock-stack/common/models"
)

type fakeBus struct {
	published []*models.LogEvent
	subjects  []string
	failures  int
	calls     int
}

func (b *fakeBus) PublishSync(ctx context.Context, subject string, data []byte) (*jetstream.PubAck, error) {
	b.calls++
	if b.failures > 0 {
		b.failures--
		return nil, errors.New("nats unavailable")
	}

	event, err := models.DecodeLogEvent(data)
	if err != nil {
		return nil, err
	}
	b.published = append(b.published, event)
	b.subjects = append(b.subjects, subject)
	return &jetstream.PubAck{}, nil
}

func TestEmitAssignsSequence(t *testing.T) {
	bus := &fakeBus{}
	p := New("d1", "p1", bus, logging.Default())
	ctx := context.Background()

	lines := []string{"Build Started...", "npm install", "Build Complete"}
	for _, line := range lines {
		if err := p.Emit(ctx, line); err != nil {
			t.Fatalf("Emit %q: %v", line, err)
		}
	}

	if len(bus.published) != 3 {
		t.Fatalf("published %d events, want 3", len(bus.published))
	}
	for i, ev := range bus.published {
		if ev.Sequence != uint64(i+1) {
			t.Errorf("event %d sequence = %d, want %d", i, ev.Sequence, i+1)
		}
		if ev.DeploymentID != "d1" || ev.ProjectID != "p1" {
			t.Errorf("event %d ids = %q/%q", i, ev.DeploymentID, ev.ProjectID)
		}
	}
	for _, subject := range bus.subjects {
		if subject != "logs.build.d1" {
			t.Errorf("subject = %q, want logs.build.d1", subject)
		}
	}
}

func TestEmitPhase(t *testing.T) {
	bus := &fakeBus{}
	p := New("d1", "p1", bus, logging.Default())

	if err := p.EmitPhase(context.Background(), "Build Started...", models.PhaseBuildStarted); err != nil {
		t.Fatalf("EmitPhase: %v", err)
	}

	if got := bus.published[0].Phase; got != models.PhaseBuildStarted {
		t.Errorf("phase = %q, want %q", got, models.PhaseBuildStarted)
	}
}

func TestEmitRetriesTransientFailure(t *testing.T) {
	bus := &fakeBus{failures: 2}
	p := New("d1", "p1", bus, logging.Default())

	if err := p.Emit(context.Background(), "npm install"); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if bus.calls != 3 {
		t.Errorf("publish attempts = %d, want 3", bus.calls)
	}
	if p.Dropped() != 0 {
		t.Errorf("dropped = %d, want 0", p.Dropped())
	}
}

func TestEmitExhaustedRetriesDropsEvent(t *testing.T) {
	bus := &fakeBus{failures: 10}
	p := New("d1", "p1", bus, logging.Default())

	if err := p.Emit(context.Background(), "npm install"); err == nil {
		t.Fatal("expected error after exhausted retries")
	}

	if p.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", p.Dropped())
	}

	// The sequence keeps advancing so later events are not renumbered.
	bus.failures = 0
	if err := p.Emit(context.Background(), "next line"); err != nil {
		t.Fatalf("Emit after drop: %v", err)
	}
	if got := bus.published[0].Sequence; got != 2 {
		t.Errorf("sequence after drop = %d, want 2", got)
	}
}

func TestEmitCanceledContext(t *testing.T) {
	bus := &fakeBus{failures: 10}
	p := New("d1", "p1", bus, logging.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Emit(ctx, "line"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
