// Package logging provides structured logging for the Wirelessboard server.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the discovery engine and dashboard server. It
// provides both general logging functions and specialized functions for
// discovery-specific logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (datagram dumps, probe attempts, scan scheduling)
//   - Info: Normal operations (receivers discovered, scan passes, settings changes)
//   - Warn: Non-fatal issues (invalid subnets dropped, multicast bind fallback)
//   - Error: Fatal issues (startup failures, crashed scan iterations)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Receiver discovered",
//	    zap.String("ip", "192.168.1.100"),
//	    zap.String("source", "passive"),
//	    zap.String("model", "ULXD4Q"),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
//	logging.LogReceiverFound(ip, "active", model, classID)
//	logging.LogScanPass(subnets, hostsProbed, found, elapsed)
//	logging.LogDatagram(remoteAddr, payload)
//
// # Configuration
//
// Initialize logging at server startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// CLI utilities that want silent-by-default behavior should use
// InitializeFromEnv, which only enables output when WIRELESSBOARD_LOG_LEVEL
// is set.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
