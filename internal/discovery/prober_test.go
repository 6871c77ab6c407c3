package discovery

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/willcgage/wirelessboard/internal/registry"
)

func TestProbeExchangeReadsReply(t *testing.T) {
	addr := startFakeReceiver(t, func(conn net.Conn) {
		buf := make([]byte, 256)
		if _, err := conn.Read(buf); err != nil {
			return
		}
		conn.Write([]byte("< REP DEVICE_ID {RACK 1A} >"))
		io.Copy(io.Discard, conn)
	})

	payload, rtt, ok := probeExchange(context.Background(), addr, 500*time.Millisecond)
	if !ok {
		t.Fatal("probeExchange reported failure against a live listener")
	}
	if payload != "< REP DEVICE_ID {RACK 1A} >" {
		t.Errorf("payload = %q, want reply verbatim", payload)
	}
	if rtt <= 0 {
		t.Errorf("rtt = %v, want > 0", rtt)
	}
}

func TestProbeExchangeFallsThroughToLaterCommand(t *testing.T) {
	addr := startFakeReceiver(t, func(conn net.Conn) {
		buf := make([]byte, 256)
		// Ignore the first inquiry; answer the second.
		if _, err := conn.Read(buf); err != nil {
			return
		}
		if _, err := conn.Read(buf); err != nil {
			return
		}
		conn.Write([]byte("< REP MODEL_NAME {ULXD4Q} >"))
		io.Copy(io.Discard, conn)
	})

	payload, _, ok := probeExchange(context.Background(), addr, 200*time.Millisecond)
	if !ok {
		t.Fatal("probeExchange reported failure against a live listener")
	}
	if payload != "< REP MODEL_NAME {ULXD4Q} >" {
		t.Errorf("payload = %q, want the second command's reply", payload)
	}
}

func TestProbeExchangeSilentConnectionStillCounts(t *testing.T) {
	addr := startFakeReceiver(t, func(conn net.Conn) {
		io.Copy(io.Discard, conn)
	})

	payload, _, ok := probeExchange(context.Background(), addr, 100*time.Millisecond)
	if !ok {
		t.Fatal("probeExchange reported failure for a host that accepted the connection")
	}
	if payload != "" {
		t.Errorf("payload = %q, want empty for a silent host", payload)
	}
}

func TestProbeExchangeUnreachableHost(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	if _, _, ok := probeExchange(context.Background(), addr, 100*time.Millisecond); ok {
		t.Error("probeExchange reported success against a closed port")
	}
}

func TestParseProbePayload(t *testing.T) {
	engine := New(stubProvider{}, newTestDatabase(t), registry.New())

	tests := []struct {
		name    string
		payload string
		want    registry.Fields
	}{
		{
			name:    "class id resolves model and type",
			payload: "< REP DEVICE_ID {RACK 1A} >\n(cond-ack=false),(cd:39A47E07-102F-4E3D-A2E2-D764F44D8E29),(dfv=2.7.21)",
			want: registry.Fields{
				Type:     "ulxd",
				Channels: 4,
				Model:    "ULX-D Quad Receiver",
				Band:     "G50",
				ClassID:  "39A47E07-102F-4E3D-A2E2-D764F44D8E29",
			},
		},
		{
			name:    "unknown class id recorded without classification",
			payload: "(cd:0000-NOT-IN-MAP)",
			want:    registry.Fields{ClassID: "0000-NOT-IN-MAP"},
		},
		{
			name:    "model hint without class id",
			payload: `ID "P10T" device online`,
			want:    registry.Fields{Model: "P10T"},
		},
		{
			name:    "empty payload",
			payload: "",
			want:    registry.Fields{},
		},
		{
			name:    "unrelated chatter",
			payload: "HTTP/1.1 400 Bad Request",
			want:    registry.Fields{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.parseProbePayload(tt.payload); got != tt.want {
				t.Errorf("parseProbePayload(%q) = %+v, want %+v", tt.payload, got, tt.want)
			}
		})
	}
}

// startFakeReceiver listens on a loopback port and serves exactly one
// connection with handle. Returns the address to probe.
func startFakeReceiver(t *testing.T, handle func(conn net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}()
	return ln.Addr().String()
}
