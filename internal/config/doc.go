// Package config owns the wirelessboard configuration file and the
// validation of discovery settings.
//
// Configuration lives in a YAML file under the platform config
// directory (~/.config/wirelessboard/config.yaml on Linux and macOS).
// The converted device class map (dcid.json) sits beside it.
//
// # Validation Model
//
// Discovery settings arrive from two loose sources: hand-edited YAML and
// JSON posted by the dashboard. Both are decoded into
// RawDiscoverySettings, which tolerates numeric strings, a single
// comma-separated subnet string, and missing fields. Normalize then
// produces the bounded DiscoverySettings the engine consumes:
//
//   - auto defaults to true
//   - subnets are canonical IPv4 CIDR, deduplicated; bare addresses
//     become /32; anything broader than /16 or non-IPv4 is dropped
//   - scan_interval is clamped to [15, 900] seconds
//   - timeout_ms is clamped to [100, 5000] milliseconds
//
// Bad input is never fatal: unparseable fields fall back to defaults
// with a warning and the rest of the settings survive.
//
// # Usage Example
//
//	store, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	settings := store.DiscoverySettings()
//	fmt.Printf("scanning %v every %ds\n", settings.Subnets, settings.ScanInterval)
//
// # Persistence
//
// Saves are atomic: the file is written to a temporary sibling and
// renamed into place, so a crash mid-write can never leave a truncated
// config behind. The stored form is always normalized; loose input goes
// in, canonical form comes back out.
//
// # Thread Safety
//
// A Store serializes all access behind one mutex. The discovery engine
// receives a defensive copy of the settings each scan cycle and never
// observes partial updates.
package config
