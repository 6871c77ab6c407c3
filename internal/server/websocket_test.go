package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/willcgage/wirelessboard/internal/registry"
)

func TestWebSocketInitialSnapshot(t *testing.T) {
	srv, _ := newTestServer(t, stubSource{devices: sampleDevices()})
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	conn := dialWS(t, ts.URL)
	defer conn.Close()

	var update wsUpdate
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if len(update.DiscoveryUpdate) != 1 {
		t.Fatalf("initial snapshot has %d devices, want 1", len(update.DiscoveryUpdate))
	}
	if update.DiscoveryUpdate[0].Model != "ULX-D Quad Receiver" {
		t.Errorf("Model = %q, want %q", update.DiscoveryUpdate[0].Model, "ULX-D Quad Receiver")
	}

	waitFor(t, func() bool { return srv.ClientCount() == 1 }, "client to join the broadcast set")
}

func TestWebSocketPushesOnChange(t *testing.T) {
	source := &mutableSource{}
	srv, _ := newTestServer(t, source)
	srv.broadcastEvery = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.broadcastLoop(ctx)

	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	conn := dialWS(t, ts.URL)
	defer conn.Close()

	var update wsUpdate
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if len(update.DiscoveryUpdate) != 0 {
		t.Fatalf("initial snapshot has %d devices, want 0", len(update.DiscoveryUpdate))
	}
	waitFor(t, func() bool { return srv.ClientCount() == 1 }, "client to join the broadcast set")

	source.set(sampleDevices())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read pushed update: %v", err)
	}
	if len(update.DiscoveryUpdate) != 1 {
		t.Fatalf("pushed update has %d devices, want 1", len(update.DiscoveryUpdate))
	}
	if update.DiscoveryUpdate[0].IP != "10.0.0.4" {
		t.Errorf("pushed device IP = %q, want %q", update.DiscoveryUpdate[0].IP, "10.0.0.4")
	}
}

func TestClosedClientLeavesBroadcastSet(t *testing.T) {
	srv, _ := newTestServer(t, stubSource{devices: sampleDevices()})
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	conn := dialWS(t, ts.URL)
	var update wsUpdate
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	waitFor(t, func() bool { return srv.ClientCount() == 1 }, "client to join the broadcast set")

	conn.Close()
	waitFor(t, func() bool { return srv.ClientCount() == 0 }, "client removal after close")
}

func TestSnapshotFingerprintIgnoresClockFields(t *testing.T) {
	devices := sampleDevices()

	aged := sampleDevices()
	aged[0].Age = 99
	aged[0].Timestamp = 1717244000

	if snapshotFingerprint(devices) != snapshotFingerprint(aged) {
		t.Error("fingerprints differ when only clock fields changed")
	}

	moved := sampleDevices()
	moved[0].RTTMillis = 40
	if snapshotFingerprint(devices) == snapshotFingerprint(moved) {
		t.Error("fingerprints match despite an RTT change")
	}
}

type mutableSource struct {
	mu      sync.Mutex
	devices []registry.Device
}

func (m *mutableSource) Snapshot() []registry.Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]registry.Device, len(m.devices))
	copy(out, m.devices)
	return out
}

func (m *mutableSource) set(devices []registry.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices = devices
}

func dialWS(t *testing.T, httpURL string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(httpURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	return conn
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
