// Package messaging defines standard subject names for the Skydock message bus.
package messaging

import "strings"

// Stream and consumer names for the build-log pipeline.
const (
	// StreamBuildLogs is the JetStream stream capturing all build-log subjects.
	StreamBuildLogs = "BUILD_LOGS"

	// ConsumerCollectorLogs is the durable consumer the collector service
	// attaches to. All collector instances share its ack/offset bookkeeping.
	ConsumerCollectorLogs = "collector-logs"
)

// Build-log subjects follow the pattern logs.build.<deployment_id>.
// The deployment ID acts as the partition key: events sharing a subject are
// delivered in publish order, while different deployments are independent.
const (
	// SubjectBuildLogsAll matches the build-log subjects of every deployment.
	SubjectBuildLogsAll = "logs.build.>"

	buildLogPrefix = "logs.build."
)

// BuildLogSubject returns the bus subject for one deployment's log events.
// Example: logs.build.dep-42
func BuildLogSubject(deploymentID string) string {
	return buildLogPrefix + deploymentID
}

// DeploymentIDFromSubject extracts the deployment ID from a build-log subject.
// Returns false if the subject is not a build-log subject.
func DeploymentIDFromSubject(subject string) (string, bool) {
	id, ok := strings.CutPrefix(subject, buildLogPrefix)
	if !ok || id == "" || strings.Contains(id, ".") {
		return "", false
	}
	return id, true
}
