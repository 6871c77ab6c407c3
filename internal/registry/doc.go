// Package registry keeps the in-memory table of receivers currently
// believed to be on the network.
//
// Entries are keyed by IPv4 address. Both discovery paths feed the same
// table: the passive listener upserts on every announcement, the active
// prober on every answered probe. Updates merge field-by-field so a
// sparse sighting never erases richer data from an earlier one; only
// source, reachability and the last-seen time are overwritten
// unconditionally.
//
// # Slots
//
// Dashboards address receivers by slot number. After every mutation the
// table is re-sorted by numeric IP and slots are renumbered 1..N, so slot
// assignment is stable across restarts for a stable set of addresses and
// independent of discovery order.
//
// # Aging
//
// Entries expire rather than being removed on disconnect: Prune drops
// everything not seen within the TTL, and Snapshot applies the same
// cutoff without mutating the table. A receiver that answers neither
// path simply ages out after the eviction window.
//
// # Thread Safety
//
// One mutex guards the table. It is held only for the duration of an
// upsert, prune or snapshot, never across network I/O. Snapshot returns
// copies, so callers can never observe or corrupt live entries.
package registry
