// Package client talks to the Skydock services on behalf of skyctl.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type APIClient struct {
	baseURL string
	client  *http.Client
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

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *APIClient) CreateProject(name, repoURL string) (*Project, error) {
	payload := map[string]string{"name": name, "repo_url": repoURL}

	var project Project
	if err := c.do(http.MethodPost, "/api/v1/projects", payload, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *APIClient) GetProject(id string) (*Project, error) {
	var project Project
	if err := c.do(http.MethodGet, "/api/v1/projects/"+id, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *APIClient) CreateDeployment(projectID string) (*Deployment, error) {
	payload := map[string]string{"project_id": projectID}

	var deployment Deployment
	if err := c.do(http.MethodPost, "/api/v1/deployments", payload, &deployment); err != nil {
		return nil, err
	}
	return &deployment, nil
}

func (c *APIClient) GetDeployment(id string) (*Deployment, error) {
	var deployment Deployment
	if err := c.do(http.MethodGet, "/api/v1/deployments/"+id, nil, &deployment); err != nil {
		return nil, err
	}
	return &deployment, nil
}

func (c *APIClient) ListDeployments(projectID string) ([]*Deployment, error) {
	var deployments []*Deployment
	if err := c.do(http.MethodGet, "/api/v1/projects/"+projectID+"/deployments", nil, &deployments); err != nil {
		return nil, err
	}
	return deployments, nil
}

func (c *APIClient) do(method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func apiError(resp *http.Response) error {
	var errBody struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Error != "" {
		return fmt.Errorf("%s (status %d)", errBody.Error, resp.StatusCode)
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode)
}
