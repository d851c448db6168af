package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skydock-systems/skydock-stack/api/internal/launcher"
	"github.com/skydock-systems/skydock-stack/api/internal/models"
	"github.com/skydock-systems/skydock-stack/api/internal/repository"
	"github.com/skydock-systems/skydock-stack/common/logging"
)

func newTestHandler() (*Handler, *repository.InMemoryRepository, *launcher.RecordingLauncher) {
	repo := repository.NewInMemoryRepository()
	l := &launcher.RecordingLauncher{}
	return NewHandler(repo, l, logging.Default()), repo, l
}

func createProject(t *testing.T, h *Handler, name, repoURL string) *models.Project {
	t.Helper()
	body, _ := json.Marshal(CreateProjectRequest{Name: name, RepoURL: repoURL})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateProject(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("CreateProject status = %d: %s", rec.Code, rec.Body.String())
	}
	var project models.Project
	if err := json.NewDecoder(rec.Body).Decode(&project); err != nil {
		t.Fatalf("decode project: %v", err)
	}
	return &project
}

func TestCreateProject(t *testing.T) {
	h, _, _ := newTestHandler()

	project := createProject(t, h, "My Blog", "https://github.com/user/blog")

	if project.ID == "" {
		t.Error("project id is empty")
	}
	if project.Subdomain != "my-blog" {
		t.Errorf("subdomain = %q, want my-blog", project.Subdomain)
	}
	if project.RepoURL != "https://github.com/user/blog" {
		t.Errorf("repo_url = %q", project.RepoURL)
	}
}

func TestCreateProjectDuplicateNameGetsFreshSubdomain(t *testing.T) {
	h, _, _ := newTestHandler()

	first := createProject(t, h, "My Blog", "https://github.com/a/blog")
	second := createProject(t, h, "My Blog", "https://github.com/b/blog")

	if first.Subdomain == second.Subdomain {
		t.Errorf("both projects got subdomain %q", first.Subdomain)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	h, _, _ := newTestHandler()

	tests := []struct {
		name string
		body string
	}{
		{"empty body", "{}"},
		{"missing repo_url", `{"name":"x"}`},
		{"missing name", `{"repo_url":"https://github.com/a/b"}`},
		{"malformed json", "{{{"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", bytes.NewReader([]byte(tt.body)))
		rec := httptest.NewRecorder()
		h.CreateProject(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestGetProject(t *testing.T) {
	h, _, _ := newTestHandler()
	project := createProject(t, h, "My Blog", "https://github.com/user/blog")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/"+project.ID, nil)
	rec := httptest.NewRecorder()
	h.GetProject(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got models.Project
	json.NewDecoder(rec.Body).Decode(&got)
	if got.ID != project.ID {
		t.Errorf("id = %q, want %q", got.ID, project.ID)
	}
}

func TestGetProjectNotFound(t *testing.T) {
	h, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/nope", nil)
	rec := httptest.NewRecorder()
	h.GetProject(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func createDeployment(t *testing.T, h *Handler, projectID string) *models.Deployment {
	t.Helper()
	body, _ := json.Marshal(CreateDeploymentRequest{ProjectID: projectID})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/deployments", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateDeployment(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("CreateDeployment status = %d: %s", rec.Code, rec.Body.String())
	}
	var deployment models.Deployment
	if err := json.NewDecoder(rec.Body).Decode(&deployment); err != nil {
		t.Fatalf("decode deployment: %v", err)
	}
	return &deployment
}

func TestCreateDeployment(t *testing.T) {
	h, _, l := newTestHandler()
	project := createProject(t, h, "My Blog", "https://github.com/user/blog")

	deployment := createDeployment(t, h, project.ID)

	if deployment.Status != models.StatusQueued {
		t.Errorf("status = %q, want %q", deployment.Status, models.StatusQueued)
	}
	if len(l.Launches) != 1 {
		t.Fatalf("launches = %d, want 1", len(l.Launches))
	}
	launch := l.Launches[0]
	if launch.DeploymentID != deployment.ID || launch.ProjectID != project.ID {
		t.Errorf("launch params = %+v", launch)
	}
	if launch.RepoURL != project.RepoURL {
		t.Errorf("launch repo_url = %q", launch.RepoURL)
	}
}

func TestCreateDeploymentUnknownProject(t *testing.T) {
	h, _, l := newTestHandler()

	body, _ := json.Marshal(CreateDeploymentRequest{ProjectID: "nope"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/deployments", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateDeployment(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if len(l.Launches) != 0 {
		t.Errorf("launched %d workers for unknown project", len(l.Launches))
	}
}

func TestCreateDeploymentLaunchFailure(t *testing.T) {
	h, repo, l := newTestHandler()
	l.Err = errors.New("no capacity")
	project := createProject(t, h, "My Blog", "https://github.com/user/blog")

	body, _ := json.Marshal(CreateDeploymentRequest{ProjectID: project.ID})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/deployments", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateDeployment(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	deployments, _ := repo.ListDeployments(req.Context(), project.ID)
	if len(deployments) != 1 {
		t.Fatalf("deployments = %d, want 1", len(deployments))
	}
	if deployments[0].Status != models.StatusFailed {
		t.Errorf("status = %q, want %q", deployments[0].Status, models.StatusFailed)
	}
}

func TestUpdateDeploymentStatus(t *testing.T) {
	h, repo, _ := newTestHandler()
	project := createProject(t, h, "My Blog", "https://github.com/user/blog")
	deployment := createDeployment(t, h, project.ID)

	for _, status := range []string{models.StatusBuilding, models.StatusSucceeded} {
		body := []byte(`{"status":"` + status + `"}`)
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/deployments/"+deployment.ID+"/status", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		h.UpdateDeploymentStatus(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status update to %s: http %d", status, rec.Code)
		}
	}

	got, err := repo.GetDeployment(httptest.NewRequest("GET", "/", nil).Context(), deployment.ID)
	if err != nil {
		t.Fatalf("GetDeployment: %v", err)
	}
	if got.Status != models.StatusSucceeded {
		t.Errorf("final status = %q, want %q", got.Status, models.StatusSucceeded)
	}
}

func TestUpdateDeploymentStatusInvalid(t *testing.T) {
	h, _, _ := newTestHandler()
	project := createProject(t, h, "My Blog", "https://github.com/user/blog")
	deployment := createDeployment(t, h, project.ID)

	body := []byte(`{"status":"EXPLODED"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/deployments/"+deployment.ID+"/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.UpdateDeploymentStatus(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUpdateDeploymentStatusNotFound(t *testing.T) {
	h, _, _ := newTestHandler()

	body := []byte(`{"status":"BUILDING"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/deployments/nope/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.UpdateDeploymentStatus(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestListProjectDeployments(t *testing.T) {
	h, _, _ := newTestHandler()
	project := createProject(t, h, "My Blog", "https://github.com/user/blog")
	createDeployment(t, h, project.ID)
	createDeployment(t, h, project.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/"+project.ID+"/deployments", nil)
	rec := httptest.NewRecorder()
	h.ListProjectDeployments(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got []*models.Deployment
	json.NewDecoder(rec.Body).Decode(&got)
	if len(got) != 2 {
		t.Errorf("deployments = %d, want 2", len(got))
	}
}
