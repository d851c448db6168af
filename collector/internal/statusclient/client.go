// Package statusclient reports deployment status transitions to the Skydock
// API service. The pipeline itself never owns deployment rows; it only calls
// this hook when a lifecycle event passes through.
package statusclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client posts status transitions to the API service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a status client for the given API base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Report sets the deployment's status. Statuses repeat on redelivery; the
// endpoint treats repeated transitions as no-ops.
func (c *Client) Report(ctx context.Context, deploymentID, status string) error {
	payload, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return fmt.Errorf("marshal status payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/deployments/%s/status", c.baseURL, deploymentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("report status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status endpoint returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
