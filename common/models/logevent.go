// Package models defines the wire types shared by the Skydock build-log pipeline.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Build lifecycle phases carried by synthetic log events. The collector uses
// these to drive deployment status transitions; plain build output lines use
// PhaseLine.
const (
	PhaseLine           = "line"
	PhaseBuildStarted   = "build_started"
	PhaseBuildComplete  = "build_complete"
	PhaseBuildFailed    = "build_failed"
	PhaseUploadStarted  = "upload_started"
	PhaseUploadFinished = "upload_finished"
	PhaseDone           = "done"
)

// LogEvent is a single build-log line published by a build worker.
// Events for one deployment share a bus subject so their publish order is
// preserved end-to-end; Sequence is assigned by the producer and is strictly
// increasing within a deployment.
type LogEvent struct {
	DeploymentID string    `json:"deployment_id"`
	ProjectID    string    `json:"project_id"`
	Line         string    `json:"line"`
	Sequence     uint64    `json:"sequence"`
	Phase        string    `json:"phase,omitempty"`
	EmittedAt    time.Time `json:"emitted_at"`
}

// Validate checks that the event carries the fields the pipeline depends on.
func (e *LogEvent) Validate() error {
	if e.DeploymentID == "" {
		return fmt.Errorf("log event missing deployment_id")
	}
	if e.ProjectID == "" {
		return fmt.Errorf("log event missing project_id")
	}
	return nil
}

// Encode serializes the event for transport on the bus.
func (e *LogEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeLogEvent parses a bus payload into a LogEvent and validates it.
func DecodeLogEvent(data []byte) (*LogEvent, error) {
	var e LogEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode log event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if e.Phase == "" {
		e.Phase = PhaseLine
	}
	return &e, nil
}

// Terminal reports whether the event ends the deployment's log stream.
func (e *LogEvent) Terminal() bool {
	return e.Phase == PhaseDone || e.Phase == PhaseBuildFailed
}

// LogRecord is a persisted build-log line as returned by the read path.
// EventID is the idempotency key: redelivered events collapse to one record.
type LogRecord struct {
	EventID      string    `json:"event_id"`
	DeploymentID string    `json:"deployment_id"`
	Line         string    `json:"line"`
	Sequence     uint64    `json:"sequence"`
	Timestamp    time.Time `json:"timestamp"`
}
