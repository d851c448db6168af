package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/skydock-systems/skydock-stack/common/httputil"
	"github.com/skydock-systems/skydock-stack/common/models"
)

// LogStore is the slice of the log store the HTTP API needs.
type LogStore interface {
	Query(ctx context.Context, deploymentID string) ([]models.LogRecord, error)
	Ping(ctx context.Context) error
}

type CollectorHandler struct {
	store LogStore
}

func NewCollectorHandler(store LogStore) *CollectorHandler {
	return &CollectorHandler{store: store}
}

type LogsResponse struct {
	DeploymentID string             `json:"deployment_id"`
	Count        int                `json:"count"`
	Logs         []models.LogRecord `json:"logs"`
}

// DeploymentLogs serves GET /api/v1/deployments/{id}/logs with the persisted
// log records in sequence order.
func (h *CollectorHandler) DeploymentLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	deploymentID := deploymentIDFromPath(r.URL.Path)
	if deploymentID == "" {
		httputil.WriteError(w, http.StatusBadRequest, "deployment id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	records, err := h.store.Query(ctx, deploymentID)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to query logs")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, LogsResponse{
		DeploymentID: deploymentID,
		Count:        len(records),
		Logs:         records,
	})
}

// deploymentIDFromPath extracts the id from /api/v1/deployments/{id}/logs.
func deploymentIDFromPath(path string) string {
	rest := strings.TrimPrefix(path, "/api/v1/deployments/")
	if rest == path {
		return ""
	}
	id, ok := strings.CutSuffix(rest, "/logs")
	if !ok || id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}

func (h *CollectorHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CollectorHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "reason": "opensearch unavailable"})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
