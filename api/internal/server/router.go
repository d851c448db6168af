package server

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skydock-systems/skydock-stack/api/internal/handlers"
	"github.com/skydock-systems/skydock-stack/common/middleware"
)

// NewRouter constructs a ServeMux with control-plane routes registered.
func NewRouter(h *handlers.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.CreateProject(w, r)
	})

	mux.HandleFunc("/api/v1/projects/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/deployments"):
			h.ListProjectDeployments(w, r)
		case r.Method == http.MethodGet:
			h.GetProject(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/deployments", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.CreateDeployment(w, r)
	})

	mux.HandleFunc("/api/v1/deployments/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPatch && strings.HasSuffix(r.URL.Path, "/status"):
			h.UpdateDeploymentStatus(w, r)
		case r.Method == http.MethodGet:
			h.GetDeployment(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", h.Health)

	return middleware.RequestID(middleware.CORS([]string{"*"})(mux))
}
