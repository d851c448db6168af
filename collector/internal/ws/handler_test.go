package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/skydock-systems/skydock-stack/collector/internal/hub"
	"github.com/skydock-systems/skydock-stack/common/logging"
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func subscribe(t *testing.T, conn *websocket.Conn, deploymentID string) {
	t.Helper()
	req := subscribeRequest{Action: "subscribe", DeploymentID: deploymentID}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}
}

func readLog(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg logMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	return msg.Log
}

func waitForSubscribers(t *testing.T, h *hub.Hub, deploymentID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.SubscriberCount(deploymentID) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("subscriber count for %s never reached %d", deploymentID, want)
}

func TestSubscribeReceivesAckAndBroadcasts(t *testing.T) {
	h := hub.New()
	server := httptest.NewServer(NewHandler(h, logging.Default()))
	defer server.Close()

	conn := dial(t, server.URL)
	subscribe(t, conn, "d1")

	if ack := readLog(t, conn); ack != "Subscribed to logs:d1" {
		t.Errorf("unexpected ack %q", ack)
	}

	waitForSubscribers(t, h, "d1", 1)
	h.Publish("d1", "Build Started...")
	h.Publish("d1", "Build Complete")

	if got := readLog(t, conn); got != "Build Started..." {
		t.Errorf("expected first line, got %q", got)
	}
	if got := readLog(t, conn); got != "Build Complete" {
		t.Errorf("expected second line, got %q", got)
	}
}

func TestViewerOnlyReceivesOwnDeployment(t *testing.T) {
	h := hub.New()
	server := httptest.NewServer(NewHandler(h, logging.Default()))
	defer server.Close()

	conn := dial(t, server.URL)
	subscribe(t, conn, "d1")
	readLog(t, conn) // ack

	waitForSubscribers(t, h, "d1", 1)
	h.Publish("d2", "not yours")
	h.Publish("d1", "yours")

	if got := readLog(t, conn); got != "yours" {
		t.Errorf("expected only d1's line, got %q", got)
	}
}

func TestDisconnectReleasesSubscription(t *testing.T) {
	h := hub.New()
	server := httptest.NewServer(NewHandler(h, logging.Default()))
	defer server.Close()

	conn := dial(t, server.URL)
	subscribe(t, conn, "d1")
	readLog(t, conn) // ack
	waitForSubscribers(t, h, "d1", 1)

	conn.Close()

	waitForSubscribers(t, h, "d1", 0)
	if h.ChannelCount() != 0 {
		t.Errorf("expected channel to be collected, got %d", h.ChannelCount())
	}
	// Broadcasting after the disconnect must not error or panic.
	if n := h.Publish("d1", "late line"); n != 0 {
		t.Errorf("expected 0 deliveries, got %d", n)
	}
}

func TestResubscribeSwitchesChannel(t *testing.T) {
	h := hub.New()
	server := httptest.NewServer(NewHandler(h, logging.Default()))
	defer server.Close()

	conn := dial(t, server.URL)
	subscribe(t, conn, "d1")
	readLog(t, conn) // ack for d1
	waitForSubscribers(t, h, "d1", 1)

	subscribe(t, conn, "d2")
	if ack := readLog(t, conn); ack != "Subscribed to logs:d2" {
		t.Errorf("unexpected ack %q", ack)
	}

	waitForSubscribers(t, h, "d2", 1)
	waitForSubscribers(t, h, "d1", 0)
}

func TestSlowViewerDoesNotStallBroadcast(t *testing.T) {
	h := hub.New()
	server := httptest.NewServer(NewHandler(h, logging.Default()))
	defer server.Close()

	conn := dial(t, server.URL)
	subscribe(t, conn, "d1")
	readLog(t, conn) // ack
	waitForSubscribers(t, h, "d1", 1)

	// The viewer stops reading; its socket and then its send buffer fill.
	line := strings.Repeat("x", 64*1024)
	start := time.Now()
	for i := 0; i < 2*sendBuffer; i++ {
		h.Publish("d1", line)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("broadcasts blocked %v on a viewer that stopped reading", elapsed)
	}

	// The stalled session is dropped rather than wedging future broadcasts.
	waitForSubscribers(t, h, "d1", 0)
	if n := h.Publish("d1", "next line"); n != 0 {
		t.Errorf("expected 0 deliveries after drop, got %d", n)
	}
}

func TestMalformedControlFrameIgnored(t *testing.T) {
	h := hub.New()
	server := httptest.NewServer(NewHandler(h, logging.Default()))
	defer server.Close()

	conn := dial(t, server.URL)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The connection stays usable after garbage input.
	subscribe(t, conn, "d1")
	if ack := readLog(t, conn); ack != "Subscribed to logs:d1" {
		t.Errorf("unexpected ack %q", ack)
	}
}
