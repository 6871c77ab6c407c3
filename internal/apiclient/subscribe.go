package apiclient

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/willcgage/wirelessboard/internal/registry"
)

// handshakeTimeout bounds the WebSocket upgrade handshake.
const handshakeTimeout = 10 * time.Second

// wsEnvelope is the shape of dashboard push messages.
type wsEnvelope struct {
	DiscoveryUpdate []registry.Device `json:"discovery-update"`
}

// Subscription is a live feed of receiver snapshots from the dashboard's
// WebSocket endpoint. The server sends a full snapshot on connect and a
// fresh one whenever the receiver list changes.
type Subscription struct {
	conn    *websocket.Conn
	updates chan []registry.Device
	done    chan struct{}
	once    sync.Once

	mu  sync.Mutex
	err error
}

// Subscribe opens a WebSocket subscription to the server's push channel.
// The subscription ends when ctx is cancelled, Close is called, or the
// connection drops.
func (c *Client) Subscribe(ctx context.Context) (*Subscription, error) {
	wsURL, err := c.wsURL()
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}

	sub := &Subscription{
		conn:    conn,
		updates: make(chan []registry.Device, 1),
		done:    make(chan struct{}),
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	go sub.readLoop(ctx, stop)

	return sub, nil
}

// wsURL derives the WebSocket endpoint from the client's base URL.
func (c *Client) wsURL() (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q in base URL", u.Scheme)
	}
	u.Path = "/ws"

	return u.String(), nil
}

// Updates returns the stream of receiver snapshots. The channel is closed
// when the subscription ends; check Err for the cause.
func (s *Subscription) Updates() <-chan []registry.Device {
	return s.updates
}

// Err reports why the subscription ended. It returns nil while the
// subscription is live and after a clean Close or context cancellation.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close tears down the connection. Safe to call more than once.
func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.conn.Close()
	})
	return err
}

func (s *Subscription) readLoop(ctx context.Context, stop func() bool) {
	defer close(s.updates)
	defer stop()

	for {
		var msg wsEnvelope
		if err := s.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil && !s.isClosed() {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
			}
			return
		}

		select {
		case s.updates <- msg.DiscoveryUpdate:
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Subscription) isClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
