package registry

import (
	"testing"
	"time"
)

func TestUpsertDefaults(t *testing.T) {
	r := New()
	r.Upsert("10.0.0.5", Fields{Source: SourcePassive, Reachable: true})

	devices := r.Snapshot(DefaultTTL)
	if len(devices) != 1 {
		t.Fatalf("Snapshot() returned %d devices, want 1", len(devices))
	}

	d := devices[0]
	if d.Type != "unknown" {
		t.Errorf("Type = %q, want %q", d.Type, "unknown")
	}
	if d.Channels != 1 {
		t.Errorf("Channels = %d, want 1", d.Channels)
	}
	if d.Slot != 1 {
		t.Errorf("Slot = %d, want 1", d.Slot)
	}
	if d.Source != SourcePassive {
		t.Errorf("Source = %q, want %q", d.Source, SourcePassive)
	}
	if !d.Reachable {
		t.Error("Reachable = false, want true")
	}
}

func TestUpsertMerge(t *testing.T) {
	tests := []struct {
		name   string
		first  Fields
		second Fields
		verify func(t *testing.T, d Device)
	}{
		{
			name:   "empty fields preserve type",
			first:  Fields{Type: "qlxd", Source: SourceActive, Reachable: true},
			second: Fields{Source: SourcePassive, Reachable: true},
			verify: func(t *testing.T, d Device) {
				if d.Type != "qlxd" {
					t.Errorf("Type = %q, want %q", d.Type, "qlxd")
				}
			},
		},
		{
			name:   "sparse sighting keeps model and band",
			first:  Fields{Model: "ULXD4Q", Band: "G50", ClassID: "AB12", Source: SourceActive, Reachable: true},
			second: Fields{Source: SourcePassive, Reachable: true},
			verify: func(t *testing.T, d Device) {
				if d.Model != "ULXD4Q" || d.Band != "G50" || d.ClassID != "AB12" {
					t.Errorf("got model=%q band=%q dcid=%q, want originals preserved", d.Model, d.Band, d.ClassID)
				}
			},
		},
		{
			name:   "richer sighting overwrites",
			first:  Fields{Source: SourcePassive, Reachable: true},
			second: Fields{Type: "ulxd", Channels: 4, Model: "ULXD4Q", Source: SourceActive, Reachable: true},
			verify: func(t *testing.T, d Device) {
				if d.Type != "ulxd" || d.Channels != 4 || d.Model != "ULXD4Q" {
					t.Errorf("got type=%q channels=%d model=%q, want updated values", d.Type, d.Channels, d.Model)
				}
			},
		},
		{
			name:   "source always follows latest sighting",
			first:  Fields{Source: SourceActive, Reachable: true},
			second: Fields{Source: SourcePassive, Reachable: true},
			verify: func(t *testing.T, d Device) {
				if d.Source != SourcePassive {
					t.Errorf("Source = %q, want %q", d.Source, SourcePassive)
				}
			},
		},
		{
			name:   "zero channels never clobber",
			first:  Fields{Type: "axtd", Channels: 2, Source: SourceActive, Reachable: true},
			second: Fields{Type: "axtd", Source: SourceActive, Reachable: true},
			verify: func(t *testing.T, d Device) {
				if d.Channels != 2 {
					t.Errorf("Channels = %d, want 2", d.Channels)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			r.Upsert("192.168.1.20", tt.first)
			r.Upsert("192.168.1.20", tt.second)

			devices := r.Snapshot(DefaultTTL)
			if len(devices) != 1 {
				t.Fatalf("Snapshot() returned %d devices, want 1 (no duplicates per address)", len(devices))
			}
			tt.verify(t, devices[0])
		})
	}
}

func TestUpsertReportsCreation(t *testing.T) {
	r := New()
	if !r.Upsert("10.0.0.1", Fields{Source: SourcePassive, Reachable: true}) {
		t.Error("first Upsert() = false, want true for a new address")
	}
	if r.Upsert("10.0.0.1", Fields{Source: SourceActive, Reachable: true}) {
		t.Error("second Upsert() = true, want false for an existing address")
	}
}

func TestSlotsFollowNumericAddressOrder(t *testing.T) {
	r := New()
	for _, ip := range []string{"10.0.0.100", "10.0.0.9", "10.0.0.10", "10.0.0.2"} {
		r.Upsert(ip, Fields{Source: SourceActive, Reachable: true})
	}

	devices := r.Snapshot(DefaultTTL)
	wantOrder := []string{"10.0.0.2", "10.0.0.9", "10.0.0.10", "10.0.0.100"}
	if len(devices) != len(wantOrder) {
		t.Fatalf("Snapshot() returned %d devices, want %d", len(devices), len(wantOrder))
	}
	for i, d := range devices {
		if d.IP != wantOrder[i] {
			t.Errorf("position %d: IP = %s, want %s", i, d.IP, wantOrder[i])
		}
		if d.Slot != i+1 {
			t.Errorf("IP %s: Slot = %d, want %d", d.IP, d.Slot, i+1)
		}
	}
}

func TestPruneRemovesOnlyExpired(t *testing.T) {
	r := New()
	clock := newFakeClock()
	r.now = clock.Now

	r.Upsert("10.0.0.1", Fields{Source: SourcePassive, Reachable: true})
	clock.Advance(100 * time.Second)
	r.Upsert("10.0.0.2", Fields{Source: SourcePassive, Reachable: true})
	clock.Advance(120 * time.Second)

	// 10.0.0.1 is now 220s old, 10.0.0.2 only 120s.
	if removed := r.Prune(DefaultTTL); removed != 1 {
		t.Fatalf("Prune() removed %d, want 1", removed)
	}

	devices := r.Snapshot(DefaultTTL)
	if len(devices) != 1 {
		t.Fatalf("Snapshot() returned %d devices, want 1", len(devices))
	}
	if devices[0].IP != "10.0.0.2" {
		t.Errorf("surviving IP = %s, want 10.0.0.2", devices[0].IP)
	}
	if devices[0].Slot != 1 {
		t.Errorf("surviving Slot = %d, want 1 after renumbering", devices[0].Slot)
	}
}

func TestPruneBoundary(t *testing.T) {
	r := New()
	clock := newFakeClock()
	r.now = clock.Now

	r.Upsert("10.0.0.1", Fields{Source: SourcePassive, Reachable: true})
	clock.Advance(DefaultTTL)

	// Exactly at the cutoff is not yet expired.
	if removed := r.Prune(DefaultTTL); removed != 0 {
		t.Errorf("Prune() at exact TTL removed %d, want 0", removed)
	}

	clock.Advance(time.Nanosecond)
	if removed := r.Prune(DefaultTTL); removed != 1 {
		t.Errorf("Prune() past TTL removed %d, want 1", removed)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after full expiry", r.Len())
	}
}

func TestSnapshotDoesNotMutate(t *testing.T) {
	r := New()
	clock := newFakeClock()
	r.now = clock.Now

	r.Upsert("10.0.0.1", Fields{Source: SourcePassive, Reachable: true})
	clock.Advance(30 * time.Second)

	devices := r.Snapshot(DefaultTTL)
	if len(devices) != 1 {
		t.Fatalf("Snapshot() returned %d devices, want 1", len(devices))
	}
	if devices[0].Age != 30 {
		t.Errorf("Age = %v, want 30", devices[0].Age)
	}

	// Mutating the copy must not leak back into the table.
	devices[0].Model = "HACKED"
	fresh := r.Snapshot(DefaultTTL)
	if fresh[0].Model == "HACKED" {
		t.Error("snapshot copies share memory with live entries")
	}
}

// A receiver heard once passively keeps reporting reachable=true until
// the eviction window closes; nothing re-verifies it in between. Past
// the window, snapshots hide it but the entry lingers until Prune runs.
func TestPassiveSightingAgesOutWithoutReverification(t *testing.T) {
	r := New()
	clock := newFakeClock()
	r.now = clock.Now

	r.Upsert("10.0.0.1", Fields{Model: "ULXD4D", Source: SourcePassive, Reachable: true})

	clock.Advance(DefaultTTL - time.Second)
	devices := r.Snapshot(DefaultTTL)
	if len(devices) != 1 {
		t.Fatalf("Snapshot() just inside the window returned %d devices, want 1", len(devices))
	}
	if !devices[0].Reachable {
		t.Error("entry stopped reporting reachable before the window closed")
	}

	clock.Advance(2 * time.Second)
	if got := r.Snapshot(DefaultTTL); len(got) != 0 {
		t.Errorf("Snapshot() past the window returned %d devices, want 0", len(got))
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (stale entry stays until Prune)", r.Len())
	}

	r.Prune(DefaultTTL)
	if r.Len() != 0 {
		t.Errorf("Len() after Prune = %d, want 0", r.Len())
	}
}

func TestSnapshotTimestamp(t *testing.T) {
	r := New()
	clock := newFakeClock()
	r.now = clock.Now

	r.Upsert("10.0.0.1", Fields{Source: SourceActive, Reachable: true})
	seen := clock.Now()
	clock.Advance(5 * time.Second)

	devices := r.Snapshot(DefaultTTL)
	want := float64(seen.UnixNano()) / float64(time.Second)
	if devices[0].Timestamp != want {
		t.Errorf("Timestamp = %v, want %v", devices[0].Timestamp, want)
	}
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
