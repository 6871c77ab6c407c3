// Package apiclient provides an HTTP and WebSocket client for the
// wirelessboard dashboard API.
//
// This package is what the watch terminal dashboard uses to talk to a
// running wirelessboard server: one-shot snapshot fetches over HTTP, a
// live subscription over the server's WebSocket push channel, and mDNS
// browsing to locate a server when no address is given.
//
// # Endpoints
//
// The client speaks the dashboard's JSON API:
//
//	GET /api/discovery         current receiver list
//	GET /api/discovery/status  device class database health
//	GET /data.json             combined payload (receivers, DCID status, server URL)
//	GET /ws                    WebSocket push channel
//
// # Usage Example
//
//	// Connect to a known server
//	client := apiclient.New("192.168.1.20:8058")
//
//	// One-shot fetch
//	devices, err := client.Snapshot(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Live subscription
//	sub, err := client.Subscribe(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sub.Close()
//
//	for devices := range sub.Updates() {
//	    render(devices)
//	}
//	if err := sub.Err(); err != nil {
//	    log.Printf("subscription dropped: %v", err)
//	}
//
// # Server Discovery
//
// When no server address is known, Browse searches the local network for
// the dashboard's "_wirelessboard._tcp" zeroconf advertisement and returns
// the first server found:
//
//	addr, err := apiclient.Browse(ctx, 5*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := apiclient.New(addr)
//
// # Subscription Lifecycle
//
// The server sends a full snapshot immediately on connect, then a fresh
// snapshot whenever the receiver list changes. The Updates channel closes
// when the connection ends; Err distinguishes a dropped connection from a
// clean shutdown (Close or context cancellation return nil).
package apiclient
