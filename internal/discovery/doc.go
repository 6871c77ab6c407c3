// Package discovery locates Shure wireless receivers on the local
// network.
//
// Two mechanisms feed the same registry. Passively, receivers announce
// themselves with SLP attribute bursts on a well-known multicast group;
// the engine listens continuously and classifies every announcement that
// carries a device class ID. Actively, the engine sweeps candidate
// subnets on a schedule, attempting a short command exchange against the
// receiver control port on every host; any host that accepts the
// connection is a receiver, whatever it says back.
//
// # Engine Lifecycle
//
// The engine runs as one long-lived goroutine:
//  1. Open the multicast socket (wildcard-bind fallback when the group
//     bind is refused)
//  2. Wait for announcements with a bounded read timeout
//  3. On the scan deadline, sweep candidate subnets with a bounded
//     worker pool, then prune expired registry entries
//  4. Repeat until the context is cancelled
//
// A crashed iteration never kills discovery: a supervisor restarts the
// loop after a fixed delay, forever, unless shutdown was requested.
//
// # Candidate Subnets
//
// Each cycle pulls fresh settings from the provider. Configured subnets
// are validated (IPv4, prefix >= /16) and deduplicated; when auto mode
// is on, a /24 derived from the default route's source address joins the
// list. Per subnet, at most 1024 hosts are probed with at most 24
// concurrent connection attempts.
//
// # Usage Example
//
//	engine := discovery.New(store, db, reg)
//	go func() {
//	    if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
//	        log.Fatal(err)
//	    }
//	}()
//
// # Thread Safety
//
// Run is single-threaded apart from the probe pool it manages; the
// registry and class database it writes to are themselves safe for
// concurrent use.
package discovery
