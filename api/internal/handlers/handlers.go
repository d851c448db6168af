package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skydock-systems/skydock-stack/api/internal/launcher"
	"github.com/skydock-systems/skydock-stack/api/internal/models"
	"github.com/skydock-systems/skydock-stack/api/internal/repository"
	"github.com/skydock-systems/skydock-stack/api/internal/slug"
	"github.com/skydock-systems/skydock-stack/common/httputil"
	"github.com/skydock-systems/skydock-stack/common/logging"
)

type Handler struct {
	repo     repository.Repository
	launcher launcher.Launcher
	logger   *logging.Logger
}

func NewHandler(repo repository.Repository, l launcher.Launcher, logger *logging.Logger) *Handler {
	return &Handler{repo: repo, launcher: l, logger: logger}
}

type CreateProjectRequest struct {
	Name    string `json:"name"`
	RepoURL string `json:"repo_url"`
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		httputil.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.RepoURL == "" {
		httputil.WriteError(w, http.StatusBadRequest, "repo_url is required")
		return
	}

	subdomain, err := slug.Unique(r.Context(), req.Name, h.repo.SubdomainExists)
	if err != nil {
		h.logger.Error("subdomain generation failed", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to allocate subdomain")
		return
	}

	project := &models.Project{
		ID:        uuid.New().String(),
		Name:      req.Name,
		RepoURL:   req.RepoURL,
		Subdomain: subdomain,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.repo.CreateProject(r.Context(), project); err != nil {
		if errors.Is(err, repository.ErrSubdomainTaken) {
			httputil.WriteError(w, http.StatusConflict, "subdomain already taken")
			return
		}
		h.logger.Error("project creation failed", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	h.logger.Info("project created",
		logging.ProjectID(project.ID),
		logging.Subdomain(project.Subdomain),
	)
	httputil.WriteJSON(w, http.StatusCreated, project)
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := pathSegment(r.URL.Path, "/api/v1/projects/", "")
	if id == "" {
		httputil.WriteError(w, http.StatusBadRequest, "project id is required")
		return
	}

	project, err := h.repo.GetProject(r.Context(), id)
	if errors.Is(err, repository.ErrProjectNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to get project")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, project)
}

func (h *Handler) ListProjectDeployments(w http.ResponseWriter, r *http.Request) {
	id := pathSegment(r.URL.Path, "/api/v1/projects/", "/deployments")
	if id == "" {
		httputil.WriteError(w, http.StatusBadRequest, "project id is required")
		return
	}

	if _, err := h.repo.GetProject(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "project not found")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, "failed to get project")
		return
	}

	deployments, err := h.repo.ListDeployments(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list deployments")
		return
	}
	if deployments == nil {
		deployments = []*models.Deployment{}
	}

	httputil.WriteJSON(w, http.StatusOK, deployments)
}

type CreateDeploymentRequest struct {
	ProjectID string `json:"project_id"`
}

func (h *Handler) CreateDeployment(w http.ResponseWriter, r *http.Request) {
	var req CreateDeploymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProjectID == "" {
		httputil.WriteError(w, http.StatusBadRequest, "project_id is required")
		return
	}

	project, err := h.repo.GetProject(r.Context(), req.ProjectID)
	if errors.Is(err, repository.ErrProjectNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to get project")
		return
	}

	now := time.Now().UTC()
	deployment := &models.Deployment{
		ID:        uuid.New().String(),
		ProjectID: project.ID,
		Status:    models.StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.repo.CreateDeployment(r.Context(), deployment); err != nil {
		h.logger.Error("deployment creation failed", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create deployment")
		return
	}

	err = h.launcher.Launch(r.Context(), launcher.LaunchParams{
		DeploymentID: deployment.ID,
		ProjectID:    project.ID,
		RepoURL:      project.RepoURL,
	})
	if err != nil {
		h.logger.Error("worker launch failed",
			logging.DeploymentID(deployment.ID),
			logging.Error(err),
		)
		if updErr := h.repo.UpdateDeploymentStatus(r.Context(), deployment.ID, models.StatusFailed); updErr != nil {
			h.logger.Error("failed to mark deployment failed", logging.Error(updErr))
		}
		httputil.WriteError(w, http.StatusInternalServerError, "failed to launch build worker")
		return
	}

	h.logger.Info("deployment queued",
		logging.DeploymentID(deployment.ID),
		logging.ProjectID(project.ID),
	)
	httputil.WriteJSON(w, http.StatusCreated, deployment)
}

func (h *Handler) GetDeployment(w http.ResponseWriter, r *http.Request) {
	id := pathSegment(r.URL.Path, "/api/v1/deployments/", "")
	if id == "" {
		httputil.WriteError(w, http.StatusBadRequest, "deployment id is required")
		return
	}

	deployment, err := h.repo.GetDeployment(r.Context(), id)
	if errors.Is(err, repository.ErrDeploymentNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "deployment not found")
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to get deployment")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, deployment)
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateDeploymentStatus is the milestone hook the log pipeline calls as
// builds progress.
func (h *Handler) UpdateDeploymentStatus(w http.ResponseWriter, r *http.Request) {
	id := pathSegment(r.URL.Path, "/api/v1/deployments/", "/status")
	if id == "" {
		httputil.WriteError(w, http.StatusBadRequest, "deployment id is required")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !models.ValidStatus(req.Status) {
		httputil.WriteError(w, http.StatusBadRequest, "invalid status")
		return
	}

	if err := h.repo.UpdateDeploymentStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, repository.ErrDeploymentNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "deployment not found")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, "failed to update status")
		return
	}

	h.logger.Info("deployment status updated",
		logging.DeploymentID(id),
		slog.String(logging.FieldStatus, req.Status),
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathSegment extracts the single segment between prefix and suffix, or ""
// when the path does not match that shape.
func pathSegment(path, prefix, suffix string) string {
	rest := strings.TrimPrefix(path, prefix)
	if rest == path {
		return ""
	}
	id, ok := strings.CutSuffix(rest, suffix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}
