package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateProject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/projects" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["name"] != "My Blog" {
			t.Errorf("name = %q", req["name"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Project{
			ID:        "p1",
			Name:      req["name"],
			RepoURL:   req["repo_url"],
			Subdomain: "my-blog",
		})
	}))
	defer server.Close()

	project, err := NewAPIClient(server.URL).CreateProject("My Blog", "https://github.com/user/blog")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if project.ID != "p1" || project.Subdomain != "my-blog" {
		t.Errorf("project = %+v", project)
	}
}

func TestCreateDeployment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Deployment{ID: "d1", ProjectID: "p1", Status: "QUEUED"})
	}))
	defer server.Close()

	deployment, err := NewAPIClient(server.URL).CreateDeployment("p1")
	if err != nil {
		t.Fatalf("CreateDeployment: %v", err)
	}
	if deployment.ID != "d1" || deployment.Status != "QUEUED" {
		t.Errorf("deployment = %+v", deployment)
	}
}

func TestAPIErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "project not found"})
	}))
	defer server.Close()

	_, err := NewAPIClient(server.URL).GetProject("nope")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "project not found (status 404)" {
		t.Errorf("error = %q", got)
	}
}

func TestAPIErrorWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewAPIClient(server.URL).GetDeployment("d1")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "request failed with status 502" {
		t.Errorf("error = %q", got)
	}
}

func TestListDeployments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/projects/p1/deployments" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]Deployment{{ID: "d1"}, {ID: "d2"}})
	}))
	defer server.Close()

	deployments, err := NewAPIClient(server.URL).ListDeployments("p1")
	if err != nil {
		t.Fatalf("ListDeployments: %v", err)
	}
	if len(deployments) != 2 {
		t.Errorf("deployments = %d, want 2", len(deployments))
	}
}
