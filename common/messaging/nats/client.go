// Package nats provides the NATS connection and JetStream support backing
// the build-log bus.
package nats

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Client holds the NATS connection JetStreamClient builds on.
type Client struct {
	conn *nats.Conn
}

// Config holds NATS client configuration.
type Config struct {
	// URL is the NATS server URL (e.g., "nats://localhost:4222").
	URL string

	// Name is the client name for connection identification.
	Name string

	// MaxReconnects is the maximum number of reconnection attempts.
	// Use -1 for infinite reconnects.
	MaxReconnects int

	// ReconnectWait is the time to wait between reconnection attempts.
	ReconnectWait time.Duration

	// Timeout is the connection timeout.
	Timeout time.Duration

	// Username for authentication (optional).
	Username string

	// Password for authentication (optional).
	Password string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		Name:          "skydock-client",
		MaxReconnects: -1, // Infinite reconnects
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// NewClient connects to NATS with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				fmt.Printf("NATS disconnected: %v\n", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			fmt.Println("NATS reconnected")
		}),
	}

	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Client{conn: conn}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	c.conn.Close()
	return nil
}

// Drain gracefully closes, allowing in-flight messages to complete.
func (c *Client) Drain() error {
	return c.conn.Drain()
}

// IsConnected returns true if connected to NATS.
func (c *Client) IsConnected() bool {
	return c.conn.IsConnected()
}
