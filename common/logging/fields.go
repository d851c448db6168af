package logging

import "log/slog"

// Common field names for consistent logging across services.
const (
	FieldService      = "service"
	FieldProjectID    = "project_id"
	FieldDeploymentID = "deployment_id"
	FieldSubdomain    = "subdomain"
	FieldEventID      = "event_id"
	FieldSubject      = "subject"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldStatus       = "status"
	FieldDuration     = "duration_ms"
	FieldError        = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// ProjectID returns a slog attribute for a project ID.
func ProjectID(id string) slog.Attr {
	return slog.String(FieldProjectID, id)
}

// DeploymentID returns a slog attribute for a deployment ID.
func DeploymentID(id string) slog.Attr {
	return slog.String(FieldDeploymentID, id)
}

// Subdomain returns a slog attribute for a project subdomain.
func Subdomain(sub string) slog.Attr {
	return slog.String(FieldSubdomain, sub)
}

// EventID returns a slog attribute for a log event ID.
func EventID(id string) slog.Attr {
	return slog.String(FieldEventID, id)
}

// Subject returns a slog attribute for a bus subject.
func Subject(subject string) slog.Attr {
	return slog.String(FieldSubject, subject)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
