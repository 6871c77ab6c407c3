package registry

import (
	"bytes"
	"net"
	"sort"
	"sync"
	"time"
)

// DefaultTTL is the eviction window used when the scan interval gives no
// larger one.
const DefaultTTL = 180 * time.Second

// Source values recorded on upsert.
const (
	SourcePassive = "passive"
	SourceActive  = "active"
)

// Device is one known receiver. Timestamp and Age are populated on
// snapshot copies only; live entries track LastSeen.
type Device struct {
	IP        string  `json:"ip"`
	Slot      int     `json:"slot"`
	Type      string  `json:"type"`
	Channels  int     `json:"channels"`
	Model     string  `json:"model,omitempty"`
	Band      string  `json:"band,omitempty"`
	ClassID   string  `json:"dcid,omitempty"`
	Source    string  `json:"source"`
	Reachable bool    `json:"reachable"`
	RTTMillis int     `json:"rtt_ms,omitempty"`
	Timestamp float64 `json:"timestamp"`
	Age       float64 `json:"age"`

	LastSeen time.Time `json:"-"`
}

// Fields carries the observations from one sighting. Zero values mean
// "not observed" and never overwrite existing data; Source and Reachable
// are recorded unconditionally.
type Fields struct {
	Type      string
	Channels  int
	Model     string
	Band      string
	ClassID   string
	Source    string
	Reachable bool
	RTTMillis int
}

// Registry is the shared table of discovered receivers. Safe for
// concurrent use.
type Registry struct {
	mu      sync.Mutex
	devices []*Device

	now func() time.Time
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{now: time.Now}
}

// Upsert records a sighting of ip and reports whether the address was
// new. New addresses start with type "unknown" and one channel until a
// sighting says otherwise. Slots are reassigned before returning.
func (r *Registry) Upsert(ip string, f Fields) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	var dev *Device
	for _, d := range r.devices {
		if d.IP == ip {
			dev = d
			break
		}
	}
	created := dev == nil
	if created {
		dev = &Device{IP: ip, Type: "unknown", Channels: 1}
		r.devices = append(r.devices, dev)
	}

	if f.Type != "" {
		dev.Type = f.Type
	}
	if f.Channels > 0 {
		dev.Channels = f.Channels
	}
	if f.Model != "" {
		dev.Model = f.Model
	}
	if f.Band != "" {
		dev.Band = f.Band
	}
	if f.ClassID != "" {
		dev.ClassID = f.ClassID
	}
	if f.RTTMillis > 0 {
		dev.RTTMillis = f.RTTMillis
	}
	dev.Source = f.Source
	dev.Reachable = f.Reachable
	dev.LastSeen = r.now()

	r.assignSlots()
	return created
}

// Prune removes entries not seen within ttl and reports how many were
// dropped. Slots are renumbered when anything goes.
func (r *Registry) Prune(ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-ttl)
	kept := r.devices[:0]
	removed := 0
	for _, d := range r.devices {
		if d.LastSeen.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, d)
	}
	for i := len(kept); i < len(r.devices); i++ {
		r.devices[i] = nil
	}
	r.devices = kept
	if removed > 0 {
		r.assignSlots()
	}
	return removed
}

// Snapshot returns age-annotated copies of every entry seen within ttl.
// The table itself is not mutated, so a stale entry remains in memory
// until the next Prune even though snapshots stop reporting it.
func (r *Registry) Snapshot(ttl time.Duration) []Device {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-ttl)
	out := make([]Device, 0, len(r.devices))
	for _, d := range r.devices {
		if d.LastSeen.Before(cutoff) {
			continue
		}
		dev := *d
		dev.Timestamp = float64(d.LastSeen.UnixNano()) / float64(time.Second)
		age := now.Sub(d.LastSeen).Seconds()
		if age < 0 {
			age = 0
		}
		dev.Age = age
		out = append(out, dev)
	}
	return out
}

// Len reports how many entries the table holds, including any stale ones
// awaiting the next Prune.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.devices)
}

// assignSlots renumbers every entry 1..N in ascending address order.
// Callers hold the lock.
func (r *Registry) assignSlots() {
	sort.Slice(r.devices, func(i, j int) bool {
		return ipLess(r.devices[i].IP, r.devices[j].IP)
	})
	for i, d := range r.devices {
		d.Slot = i + 1
	}
}

// ipLess orders IPv4 addresses numerically, falling back to string order
// for anything unparseable so the sort stays total.
func ipLess(a, b string) bool {
	ipA := net.ParseIP(a).To4()
	ipB := net.ParseIP(b).To4()
	if ipA == nil || ipB == nil {
		return a < b
	}
	return bytes.Compare(ipA, ipB) < 0
}
