package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skydock-systems/skydock-stack/common/middleware"
	"github.com/skydock-systems/skydock-stack/collector/internal/handlers"
)

// NewRouter constructs a ServeMux with collector API routes registered.
func NewRouter(h *handlers.CollectorHandler, ws http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/deployments/", h.DeploymentLogs)
	mux.Handle("/ws", ws)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)
	return middleware.RequestID(middleware.CORS([]string{"*"})(mux))
}
