package discovery

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/willcgage/wirelessboard/internal/config"
	"github.com/willcgage/wirelessboard/internal/dcid"
	"github.com/willcgage/wirelessboard/internal/logging"
	"github.com/willcgage/wirelessboard/internal/protocol"
	"github.com/willcgage/wirelessboard/internal/registry"
)

const (
	// readTimeout bounds each multicast read so scan deadlines are
	// checked at least once a second.
	readTimeout = time.Second

	// socketRetryDelay spaces out retries after a multicast read error.
	socketRetryDelay = time.Second

	// restartDelay is how long the supervisor waits before restarting a
	// crashed discovery loop.
	restartDelay = 5 * time.Second
)

// SettingsProvider hands the engine a validated settings snapshot each
// scan cycle. Implementations must return a copy the engine can hold
// without racing later updates.
type SettingsProvider interface {
	DiscoverySettings() config.DiscoverySettings
}

// Engine is the discovery subsystem: one passive multicast listener and
// one periodic active prober feeding a shared registry.
type Engine struct {
	provider SettingsProvider
	db       *dcid.Database
	reg      *registry.Registry

	loop         func(ctx context.Context) error
	restartDelay time.Duration
}

// New wires an engine to its collaborators. Nothing starts until Run.
func New(provider SettingsProvider, db *dcid.Database, reg *registry.Registry) *Engine {
	e := &Engine{
		provider:     provider,
		db:           db,
		reg:          reg,
		restartDelay: restartDelay,
	}
	e.loop = e.runLoop
	return e
}

// Run executes the discovery loop until ctx is cancelled. A loop
// failure or panic is logged and the loop restarts after a fixed delay,
// forever; only cancellation returns.
func (e *Engine) Run(ctx context.Context) error {
	operation := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("discovery loop panic: %v", r)
			}
		}()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return backoff.Permanent(ctxErr)
		}
		return e.loop(ctx)
	}
	notify := func(err error, delay time.Duration) {
		logging.Error("Discovery loop crashed; restarting",
			zap.Error(err), zap.Duration("delay", delay))
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(e.restartDelay), ctx)
	err := backoff.RetryNotify(operation, policy, notify)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// runLoop is one life of the discovery loop: bind the multicast socket,
// interleave passive reads with scheduled active scans, prune after
// each scan. Returns on cancellation or a failure the supervisor should
// restart from.
func (e *Engine) runLoop(ctx context.Context) error {
	conn, err := openMulticastSocket()
	if err != nil {
		return err
	}
	defer conn.Close()

	// Close the socket on cancellation so a blocked read returns.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	logging.Info("Discovery listening for receiver announcements",
		zap.String("group", protocol.MulticastGroup),
		zap.Int("port", protocol.MulticastPort))

	var nextScanAt time.Time
	buf := make([]byte, 4096)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		settings := e.provider.DiscoverySettings()
		now := time.Now()
		if nextScanAt.IsZero() {
			nextScanAt = now
		}

		timeout := readTimeout
		if wait := nextScanAt.Sub(now); wait > 0 && wait < timeout {
			timeout = wait
		}
		conn.SetReadDeadline(time.Now().Add(timeout))

		n, src, readErr := conn.ReadFromUDP(buf)
		if readErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !isTimeout(readErr) {
				logging.Warn("Multicast socket error", zap.Error(readErr))
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(socketRetryDelay):
				}
				continue
			}
		} else if n > 0 {
			e.handleAnnouncement(buf[:n], src)
		}

		if !time.Now().Before(nextScanAt) {
			if err := e.runActiveScan(ctx, settings); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logging.Error("Active discovery scan failed", zap.Error(err))
			}

			interval := settings.ScanInterval
			if interval < config.MinScanInterval {
				interval = config.MinScanInterval
			}
			nextScanAt = time.Now().Add(time.Duration(interval) * time.Second)

			ttl := time.Duration(settings.ScanInterval) * 3 * time.Second
			if ttl < registry.DefaultTTL {
				ttl = registry.DefaultTTL
			}
			if removed := e.reg.Prune(ttl); removed > 0 {
				logging.Debug("Pruned stale receivers", zap.Int("removed", removed))
			}
		}
	}
}

// handleAnnouncement processes one SLP datagram. Packets without a
// device class ID are routine unrelated traffic and dropped silently.
func (e *Engine) handleAnnouncement(data []byte, src *net.UDPAddr) {
	logging.LogDatagram(src.String(), data)

	classID := protocol.ExtractClassID(string(data))
	if classID == "" {
		return
	}
	ip := src.IP.String()

	fields := registry.Fields{
		ClassID:   classID,
		Source:    registry.SourcePassive,
		Reachable: true,
	}
	if entry, found := e.db.Lookup(classID); found {
		fields.Model = entry.ModelName
		if fields.Model == "" {
			fields.Model = entry.Model
		}
		fields.Band = entry.Band
		if deviceType, channels, known := dcid.ModelLookup(entry.Model); known {
			fields.Type = deviceType
			fields.Channels = channels
		}
	} else {
		logging.Debug("Announcement referenced unknown device class",
			zap.String("ip", ip), zap.String("dcid", classID))
	}

	if created := e.reg.Upsert(ip, fields); created {
		logging.LogReceiverFound(ip, registry.SourcePassive, fields.Model, classID)
	}
}

// Snapshot returns the current registry view using the TTL implied by
// the active settings, for the dashboard and API layer.
func (e *Engine) Snapshot() []registry.Device {
	settings := e.provider.DiscoverySettings()
	ttl := time.Duration(settings.ScanInterval) * 3 * time.Second
	if ttl < registry.DefaultTTL {
		ttl = registry.DefaultTTL
	}
	return e.reg.Snapshot(ttl)
}
