package models

import "time"

// Deployment statuses. A deployment starts QUEUED, moves to BUILDING when
// the first build event arrives, and terminates in SUCCEEDED or FAILED.
const (
	StatusQueued    = "QUEUED"
	StatusBuilding  = "BUILDING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// ValidStatus reports whether s is a known deployment status.
func ValidStatus(s string) bool {
	switch s {
	case StatusQueued, StatusBuilding, StatusSucceeded, StatusFailed:
		return true
	}
	return false
}

// TerminalStatus reports whether s ends a deployment's lifecycle.
func TerminalStatus(s string) bool {
	return s == StatusSucceeded || s == StatusFailed
}

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	RepoURL   string    `json:"repo_url"`
	Subdomain string    `json:"subdomain"`
	CreatedAt time.Time `json:"created_at"`
}

type Deployment struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
