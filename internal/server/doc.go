// Package server exposes the discovery registry to dashboards over
// HTTP and WebSocket.
//
// The surface mirrors what the web dashboard consumes:
//
//	GET  /data.json               full document: snapshot, class-map status, local URL
//	GET  /api/discovery           registry snapshot alone
//	GET  /api/discovery/status    class database health
//	GET  /api/discovery/settings  active discovery settings
//	POST /api/discovery/settings  validate, persist, and echo new settings
//	GET  /ws                      push channel (snapshot on connect, updates after)
//
// All JSON responses are uncacheable; clients always see live state.
//
// # Push Channel
//
// A connected client receives one full snapshot immediately, then a
// {"discovery-update": [...]} message whenever the registry's durable
// content changes, checked every two seconds. Age and timestamp fields
// advance with the clock and are excluded from change detection, so an
// idle registry stays silent. Clients that stop reading are dropped.
//
// # Service Advertisement
//
// While running, the server registers _wirelessboard._tcp via mDNS with
// the build version in the TXT record. Watch clients browse for it when
// no --server flag is given. Registration failure downgrades to a
// warning.
//
// # Lifecycle
//
// Start blocks until SIGINT/SIGTERM, context cancellation, or a
// listener failure, then shuts down gracefully: deregister mDNS, close
// dashboard clients, drain in-flight requests. Independent shutdown
// failures are aggregated into one error.
package server
