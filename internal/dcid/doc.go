// Package dcid maintains the device class database used to classify
// discovered receivers.
//
// Shure assigns every receiver model a device class ID (DCID), a hex
// identifier the hardware embeds in its SLP announcements. The vendor's
// Update Utility ships the authoritative mapping as DCIDMap.xml; this
// package converts that file into a flat dcid.json for fast startup and
// serves lookups to the passive listener and active prober.
//
// # Data Flow
//
//  1. LoadVendorXML parses DCIDMap.xml (MapEntry records) into the map
//  2. SaveFile persists the map as sorted, indented JSON
//  3. RestoreFile reloads the JSON at startup without the vendor tool
//  4. Lookup resolves a class ID seen on the wire to model metadata
//
// # Usage Example
//
//	db := dcid.New()
//	if err := db.RestoreFile(path); err == nil {
//	    entry, ok := db.Lookup("39A47E07C0BE4B89B9FC54F0B1F2CD4F")
//	    if ok {
//	        fmt.Printf("receiver is a %s (%s band)\n", entry.ModelName, entry.Band)
//	    }
//	}
//	db.UpdateStatus(path)
//
// # Status Reporting
//
// Status() exposes a tri-state summary for the dashboard:
//   - loaded: the map is populated, message reports the entry count
//   - not generated: the vendor XML is present but dcid.json was never built
//   - not found: neither file exists, message names the remediation
//
// # Model Table
//
// ModelLookup maps a model key to its device type and channel count using
// a small static table covering the rack receiver families (uhfr, qlxd,
// ulxd, axtd, p10t). The scan is linear in declaration order.
//
// # Thread Safety
//
// The database is guarded by a read-write lock. Lookups from concurrent
// discovery goroutines never block each other; loads and restores take
// the write side.
package dcid
