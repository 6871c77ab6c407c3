package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/willcgage/wirelessboard/internal/registry"
)

func TestViewRendersSnapshot(t *testing.T) {
	feed := newFakeFeed()
	m := New(context.Background(), fakeTransport{feed: feed}, "127.0.0.1:8058")

	m = drive(t, m, connectedMsg{feed: feed})
	m = drive(t, m, updateMsg{devices: sampleDevices()})

	view := m.View()
	for _, want := range []string{
		"192.168.1.40",
		"192.168.1.41",
		"UR4D",
		"ULXD4Q",
		"uhfr",
		"ulxd",
		"G50",
		"2 receivers",
		"live",
		"127.0.0.1:8058",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestViewShowsSpinnerWhileConnecting(t *testing.T) {
	m := New(context.Background(), fakeTransport{feed: newFakeFeed()}, "127.0.0.1:8058")

	view := m.View()
	if !strings.Contains(view, "CONNECTING") {
		t.Error("View() while connecting is missing the CONNECTING banner")
	}
	if !strings.Contains(view, "127.0.0.1:8058") {
		t.Error("View() while connecting is missing the server address")
	}
}

func TestViewShowsEmptyStateHint(t *testing.T) {
	feed := newFakeFeed()
	m := New(context.Background(), fakeTransport{feed: feed}, "127.0.0.1:8058")

	m = drive(t, m, connectedMsg{feed: feed})
	m = drive(t, m, updateMsg{devices: nil})

	if view := m.View(); !strings.Contains(view, "No receivers discovered yet") {
		t.Error("View() with an empty snapshot is missing the empty-state hint")
	}
}

func TestConnectDeliversFeed(t *testing.T) {
	feed := newFakeFeed()
	m := New(context.Background(), fakeTransport{feed: feed}, "addr")

	msg := m.connect()()
	connected, ok := msg.(connectedMsg)
	if !ok {
		t.Fatalf("connect() produced %T, want connectedMsg", msg)
	}
	if connected.feed != Feed(feed) {
		t.Error("connectedMsg carries a different feed than the transport returned")
	}
}

func TestConnectFailureFallsBackToPolling(t *testing.T) {
	m := New(context.Background(), fakeTransport{subscribeErr: errors.New("connection refused")}, "addr")

	msg := m.connect()()
	if _, ok := msg.(connectFailedMsg); !ok {
		t.Fatalf("connect() produced %T, want connectFailedMsg", msg)
	}

	updated, cmd := m.Update(msg)
	m = updated.(Model)
	if !m.polling {
		t.Error("model is not polling after a failed subscribe")
	}
	if cmd == nil {
		t.Fatal("expected a snapshot fetch after a failed subscribe")
	}
	if view := m.View(); !strings.Contains(view, "polling") {
		t.Error("View() after fallback is missing the polling badge")
	}
	if view := m.View(); !strings.Contains(view, "connection refused") {
		t.Error("View() after fallback is missing the connection error")
	}
}

func TestFeedCloseFallsBackToPolling(t *testing.T) {
	feed := newFakeFeed()
	m := New(context.Background(), fakeTransport{feed: feed}, "addr")
	m = drive(t, m, connectedMsg{feed: feed})

	m = drive(t, m, feedClosedMsg{err: errors.New("connection dropped")})
	if m.live {
		t.Error("model still marked live after the feed closed")
	}
	if !m.polling {
		t.Error("model is not polling after the feed closed")
	}
}

func TestWaitForUpdate(t *testing.T) {
	feed := &fakeFeed{
		updates: make(chan []registry.Device, 1),
		err:     errors.New("connection dropped"),
	}
	feed.updates <- sampleDevices()
	close(feed.updates)

	msg := waitForUpdate(feed)()
	update, ok := msg.(updateMsg)
	if !ok {
		t.Fatalf("waitForUpdate() produced %T, want updateMsg", msg)
	}
	if len(update.devices) != 2 {
		t.Errorf("updateMsg carries %d devices, want 2", len(update.devices))
	}

	msg = waitForUpdate(feed)()
	closed, ok := msg.(feedClosedMsg)
	if !ok {
		t.Fatalf("waitForUpdate() on a closed feed produced %T, want feedClosedMsg", msg)
	}
	if closed.err == nil {
		t.Error("feedClosedMsg.err = nil, want the feed error")
	}
}

func TestRefreshKeyFetchesSnapshot(t *testing.T) {
	feed := newFakeFeed()
	m := New(context.Background(), fakeTransport{feed: feed, devices: sampleDevices()}, "addr")
	m = drive(t, m, connectedMsg{feed: feed})

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("refresh key produced no command")
	}

	msg := cmd()
	snap, ok := msg.(snapshotMsg)
	if !ok {
		t.Fatalf("refresh command produced %T, want snapshotMsg", msg)
	}
	if len(snap.devices) != 2 {
		t.Errorf("snapshotMsg carries %d devices, want 2", len(snap.devices))
	}
}

func TestQuitKeyClosesFeed(t *testing.T) {
	feed := newFakeFeed()
	m := New(context.Background(), fakeTransport{feed: feed}, "addr")
	m = drive(t, m, connectedMsg{feed: feed})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("quit key produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit key did not produce tea.Quit")
	}
	if !feed.closed {
		t.Error("quit left the feed open")
	}
}

func TestSnapshotErrorShownInStatus(t *testing.T) {
	feed := newFakeFeed()
	m := New(context.Background(), fakeTransport{feed: feed}, "addr")
	m = drive(t, m, connectedMsg{feed: feed})

	m = drive(t, m, snapshotMsg{err: errors.New("registry unavailable")})
	if view := m.View(); !strings.Contains(view, "registry unavailable") {
		t.Error("View() is missing the snapshot error")
	}
}

func TestDeviceRows(t *testing.T) {
	devices := []registry.Device{
		{
			IP:       "192.168.1.41",
			Slot:     2,
			Type:     "ulxd",
			Channels: 4,
			Model:    "ULXD4Q",
			Band:     "G50",
			Source:   "active",
			Age:      0.25,
		},
		{
			IP:       "192.168.1.50",
			Slot:     3,
			Type:     "unknown",
			Channels: 1,
			Source:   "passive",
			Age:      0.25,
		},
	}

	rows := deviceRows(devices, 10*time.Second)
	if len(rows) != 2 {
		t.Fatalf("deviceRows() returned %d rows, want 2", len(rows))
	}

	want := []string{"2", "192.168.1.41", "ulxd", "4", "ULXD4Q", "G50", "active", "10s"}
	for i, cell := range want {
		if rows[0][i] != cell {
			t.Errorf("rows[0][%d] = %q, want %q", i, rows[0][i], cell)
		}
	}

	if rows[1][4] != "-" {
		t.Errorf("empty model rendered as %q, want %q", rows[1][4], "-")
	}
	if rows[1][5] != "-" {
		t.Errorf("empty band rendered as %q, want %q", rows[1][5], "-")
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{name: "zero", seconds: 0, want: "0s"},
		{name: "sub minute", seconds: 42, want: "42s"},
		{name: "minutes", seconds: 90, want: "1m30s"},
		{name: "hours", seconds: 3600, want: "1h0m0s"},
		{name: "negative clamps", seconds: -5, want: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAge(tt.seconds); got != tt.want {
				t.Errorf("formatAge(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func drive(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return next
}

type fakeFeed struct {
	updates chan []registry.Device
	err     error
	closed  bool
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{updates: make(chan []registry.Device, 1)}
}

func (f *fakeFeed) Updates() <-chan []registry.Device { return f.updates }
func (f *fakeFeed) Err() error                        { return f.err }
func (f *fakeFeed) Close() error {
	f.closed = true
	return nil
}

type fakeTransport struct {
	devices      []registry.Device
	snapshotErr  error
	feed         *fakeFeed
	subscribeErr error
}

func (t fakeTransport) Snapshot(ctx context.Context) ([]registry.Device, error) {
	return t.devices, t.snapshotErr
}

func (t fakeTransport) Subscribe(ctx context.Context) (Feed, error) {
	if t.subscribeErr != nil {
		return nil, t.subscribeErr
	}
	return t.feed, nil
}

func sampleDevices() []registry.Device {
	return []registry.Device{
		{
			IP:        "192.168.1.40",
			Slot:      1,
			Type:      "uhfr",
			Channels:  2,
			Model:     "UR4D",
			Band:      "H4",
			Source:    "passive",
			Reachable: true,
			Age:       1.5,
		},
		{
			IP:        "192.168.1.41",
			Slot:      2,
			Type:      "ulxd",
			Channels:  4,
			Model:     "ULXD4Q",
			Band:      "G50",
			ClassID:   "39A47E07-102F-4E3D-A2E2-D764F44D8E29",
			Source:    "active",
			Reachable: true,
			RTTMillis: 12,
			Age:       0.25,
		},
	}
}
