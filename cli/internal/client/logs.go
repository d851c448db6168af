package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// LogsClient reads build logs from the collector, either the persisted
// history or the live websocket feed.
type LogsClient struct {
	baseURL string
	client  *http.Client
}

type LogRecord struct {
	EventID      string    `json:"event_id"`
	DeploymentID string    `json:"deployment_id"`
	Line         string    `json:"line"`
	Sequence     uint64    `json:"sequence"`
	Timestamp    time.Time `json:"timestamp"`
}

type logsResponse struct {
	DeploymentID string      `json:"deployment_id"`
	Count        int         `json:"count"`
	Logs         []LogRecord `json:"logs"`
}

func NewLogsClient(baseURL string) *LogsClient {
	return &LogsClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch returns the persisted log history in sequence order.
func (c *LogsClient) Fetch(deploymentID string) ([]LogRecord, error) {
	resp, err := c.client.Get(c.baseURL + "/api/v1/deployments/" + deploymentID + "/logs")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var body logsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Logs, nil
}

// Follow subscribes to the live feed and calls onLine for every log line
// until ctx is canceled or the server closes the connection.
func (c *LogsClient) Follow(ctx context.Context, deploymentID string, onLine func(string)) error {
	wsURL := httpToWS(c.baseURL) + "/ws"

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	sub := map[string]string{"action": "subscribe", "deployment_id": deploymentID}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	// Unblock the read loop when the caller gives up.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var msg struct {
			Log string `json:"log"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("feed closed: %w", err)
		}
		onLine(msg.Log)
	}
}

func httpToWS(url string) string {
	switch {
	case strings.HasPrefix(url, "https://"):
		return "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		return "ws://" + strings.TrimPrefix(url, "http://")
	}
	return url
}
