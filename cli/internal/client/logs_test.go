package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/deployments/d1/logs" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(logsResponse{
			DeploymentID: "d1",
			Count:        2,
			Logs: []LogRecord{
				{Line: "Build Started...", Sequence: 1},
				{Line: "Done...", Sequence: 2},
			},
		})
	}))
	defer server.Close()

	logs, err := NewLogsClient(server.URL).Fetch("d1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(logs) != 2 || logs[0].Line != "Build Started..." {
		t.Errorf("logs = %+v", logs)
	}
}

func TestFollow(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws" {
			t.Errorf("path = %s", r.URL.Path)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var sub map[string]string
		if err := conn.ReadJSON(&sub); err != nil {
			t.Errorf("read subscribe: %v", err)
			return
		}
		if sub["action"] != "subscribe" || sub["deployment_id"] != "d1" {
			t.Errorf("subscribe = %v", sub)
		}

		for _, line := range []string{"Subscribed to logs:d1", "npm install"} {
			conn.WriteJSON(map[string]string{"log": line})
		}
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var lines []string
	err := NewLogsClient(server.URL).Follow(ctx, "d1", func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}

	if len(lines) != 2 || lines[0] != "Subscribed to logs:d1" || lines[1] != "npm install" {
		t.Errorf("lines = %v", lines)
	}
}

func TestFollowCanceled(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// Hold the connection open; the client cancels.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	err := NewLogsClient(server.URL).Follow(ctx, "d1", func(string) {})
	if err != nil {
		t.Errorf("Follow after cancel: %v", err)
	}
}

func TestHTTPToWS(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:9001", "ws://localhost:9001"},
		{"https://logs.skydock.dev", "wss://logs.skydock.dev"},
	}
	for _, tt := range tests {
		if got := httpToWS(tt.in); got != tt.want {
			t.Errorf("httpToWS(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
