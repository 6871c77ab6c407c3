package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/willcgage/wirelessboard/internal/logging"
	"github.com/willcgage/wirelessboard/internal/registry"
)

const (
	// writeWait bounds each push to a dashboard client.
	writeWait = 10 * time.Second

	// broadcastPeriod is how often the registry is checked for changes
	// worth pushing.
	broadcastPeriod = 2 * time.Second
)

// wsUpdate is the push message shape: the full current snapshot under a
// single key.
type wsUpdate struct {
	DiscoveryUpdate []registry.Device `json:"discovery-update"`
}

// handleWS upgrades the connection, sends the current snapshot, and
// joins the client to the broadcast set. The initial send happens
// before joining so this goroutine never writes concurrently with the
// broadcaster.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}
	remoteAddr := conn.RemoteAddr().String()

	data, err := json.Marshal(wsUpdate{DiscoveryUpdate: s.source.Snapshot()})
	if err == nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err = conn.WriteMessage(websocket.TextMessage, data)
	}
	if err != nil {
		logging.Warn("Failed to send initial snapshot",
			zap.String("remote_addr", remoteAddr), zap.Error(err))
		_ = conn.Close()
		return
	}

	s.mu.Lock()
	s.clients[remoteAddr] = conn
	s.mu.Unlock()
	logging.Info("Dashboard client connected", zap.String("remote_addr", remoteAddr))

	go s.readLoop(remoteAddr, conn)
}

// readLoop drains client frames until the connection dies. The
// dashboard never sends anything meaningful; reading is what surfaces
// close frames and broken pipes.
func (s *Server) readLoop(remoteAddr string, conn *websocket.Conn) {
	defer s.dropClient(remoteAddr)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) dropClient(remoteAddr string) {
	s.mu.Lock()
	conn, ok := s.clients[remoteAddr]
	if ok {
		delete(s.clients, remoteAddr)
	}
	s.mu.Unlock()

	if ok {
		_ = conn.Close()
		logging.Info("Dashboard client disconnected", zap.String("remote_addr", remoteAddr))
	}
}

// broadcastLoop pushes the snapshot to every client whenever its
// durable content changes.
func (s *Server) broadcastLoop(ctx context.Context) {
	ticker := time.NewTicker(s.broadcastEvery)
	defer ticker.Stop()

	// Clients connecting before the first tick already got this state
	// on connect.
	last := snapshotFingerprint(s.source.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			devices := s.source.Snapshot()
			fingerprint := snapshotFingerprint(devices)
			if fingerprint == last {
				continue
			}
			last = fingerprint

			data, err := json.Marshal(wsUpdate{DiscoveryUpdate: devices})
			if err != nil {
				logging.Error("Failed to encode discovery update", zap.Error(err))
				continue
			}
			s.broadcast(data)
		}
	}
}

// broadcast writes data to every connected client, dropping any that
// cannot keep up. Writes happen under the client-set lock, which also
// serializes them against each other.
func (s *Server) broadcast(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for remoteAddr, conn := range s.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logging.Warn("Dropping unresponsive dashboard client",
				zap.String("remote_addr", remoteAddr), zap.Error(err))
			_ = conn.Close()
			delete(s.clients, remoteAddr)
		}
	}
}

// snapshotFingerprint identifies the durable content of a snapshot.
// Timestamp and Age advance with the clock on every call, so they are
// zeroed first; an idle registry then produces no pushes.
func snapshotFingerprint(devices []registry.Device) string {
	stripped := make([]registry.Device, len(devices))
	copy(stripped, devices)
	for i := range stripped {
		stripped[i].Timestamp = 0
		stripped[i].Age = 0
	}
	data, err := json.Marshal(stripped)
	if err != nil {
		return ""
	}
	return string(data)
}
