// Package ws exposes the live log feed over WebSocket. A viewer connects,
// sends a subscribe request naming a deployment, and receives {"log": line}
// frames until it disconnects. Disconnects are detected by read errors and
// ping timeouts, and promptly release the hub subscription.
package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/skydock-systems/skydock-stack/collector/internal/hub"
	"github.com/skydock-systems/skydock-stack/common/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size. Viewers only send small control frames.
	maxMessageSize = 1024

	// Lines buffered per session. A viewer that falls this far behind is
	// disconnected; broadcasts must never wait on one peer's socket.
	sendBuffer = 256
)

// errSlowViewer marks a session dropped for not draining its send buffer.
var errSlowViewer = errors.New("viewer not draining, dropping session")

// subscribeRequest is the only control message viewers send.
type subscribeRequest struct {
	Action       string `json:"action"`
	DeploymentID string `json:"deployment_id"`
}

// logMessage is the frame sent for every broadcast log line.
type logMessage struct {
	Log string `json:"log"`
}

// Handler upgrades viewer connections and bridges them to the fanout hub.
type Handler struct {
	hub      *hub.Hub
	logger   *logging.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a WebSocket handler bound to the given hub.
func NewHandler(h *hub.Hub, logger *logging.Logger) *Handler {
	return &Handler{
		hub:    h,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The proxy serves arbitrary project subdomains; viewers come
			// from the dashboard origin, which fronts this service.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles GET /ws.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", logging.Error(err))
		return
	}

	s := &session{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan string, sendBuffer),
		done: make(chan struct{}),
	}
	go s.writeLoop()

	h.logger.InfoContext(r.Context(), "viewer connected", "session_id", s.id)
	h.serve(s)
}

// serve runs the session until the connection drops.
func (h *Handler) serve(s *session) {
	defer func() {
		if dep := s.deployment(); dep != "" {
			h.hub.Unsubscribe(dep, s.id)
		}
		s.close()
		h.logger.Info("viewer disconnected", "session_id", s.id)
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var req subscribeRequest
		if err := json.Unmarshal(data, &req); err != nil {
			h.logger.Warn("ignoring malformed control frame", "session_id", s.id, logging.Error(err))
			continue
		}

		if req.Action != "subscribe" || req.DeploymentID == "" {
			continue
		}

		// Single-channel focus: a new subscribe replaces the previous one.
		if prev := s.deployment(); prev != "" && prev != req.DeploymentID {
			h.hub.Unsubscribe(prev, s.id)
		}
		s.setDeployment(req.DeploymentID)
		h.hub.Subscribe(req.DeploymentID, s)
	}
}

// session is one viewer connection. It implements hub.Session. All socket
// writes happen on the session's writeLoop goroutine; Send only enqueues.
type session struct {
	id   string
	conn *websocket.Conn
	send chan string
	done chan struct{}

	mu       sync.Mutex // guards the fields below
	deployID string
	closed   bool
}

// ID returns the session identifier.
func (s *session) ID() string { return s.id }

// Send enqueues one log frame for the viewer without blocking. A full buffer
// means the viewer stopped draining its socket; the session is dropped so the
// broadcast (and the consumer ack path behind it) cannot stall on it.
func (s *session) Send(line string) error {
	select {
	case <-s.done:
		return websocket.ErrCloseSent
	case s.send <- line:
		return nil
	default:
		s.close()
		return errSlowViewer
	}
}

func (s *session) deployment() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deployID
}

func (s *session) setDeployment(id string) {
	s.mu.Lock()
	s.deployID = id
	s.mu.Unlock()
}

func (s *session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()
	_ = s.conn.Close()
}

// writeLoop drains the send buffer onto the socket and keeps the liveness
// ping running so dead viewers are detected within pongWait even when no
// logs are flowing. It is the connection's only writer.
func (s *session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case line := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(logMessage{Log: line}); err != nil {
				s.close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.close()
				return
			}
		}
	}
}
