package discovery

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/willcgage/wirelessboard/internal/config"
	"github.com/willcgage/wirelessboard/internal/dcid"
	"github.com/willcgage/wirelessboard/internal/logging"
	"github.com/willcgage/wirelessboard/internal/protocol"
	"github.com/willcgage/wirelessboard/internal/registry"
)

// maxProbeWorkers bounds concurrent in-flight connection attempts so a
// subnet sweep cannot exhaust file descriptors.
const maxProbeWorkers = 24

type probeResult struct {
	ip     string
	fields registry.Fields
}

// runActiveScan sweeps every candidate subnet once. Unreachable hosts
// are non-results, not errors; the only error returned is cancellation.
func (e *Engine) runActiveScan(ctx context.Context, settings config.DiscoverySettings) error {
	timeoutMS := settings.TimeoutMS
	if timeoutMS < config.MinTimeoutMS {
		timeoutMS = config.MinTimeoutMS
	}
	if timeoutMS > config.MaxTimeoutMS {
		timeoutMS = config.MaxTimeoutMS
	}
	timeout := time.Duration(timeoutMS) * time.Millisecond

	networks := candidateSubnets(settings)
	if len(networks) == 0 {
		logging.Debug("No discovery subnets configured for active scan")
		return nil
	}

	start := time.Now()
	var subnets []string
	probed, found := 0, 0
	for _, network := range networks {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, f := e.probeSubnet(ctx, network, timeout)
		subnets = append(subnets, network.String())
		probed += p
		found += f
	}

	logging.LogScanPass(subnets, probed, found, time.Since(start))
	return nil
}

// probeSubnet fans a bounded worker pool out over the subnet's hosts.
// Workers hand results back to this goroutine, which is the only one
// touching the registry for the whole sweep.
func (e *Engine) probeSubnet(ctx context.Context, network *net.IPNet, timeout time.Duration) (probed, found int) {
	hosts := hostAddresses(network, maxHostsPerSubnet)
	if len(hosts) == 0 {
		return 0, 0
	}
	logging.Debug("Active scan starting",
		zap.String("subnet", network.String()), zap.Int("hosts", len(hosts)))

	sem := make(chan struct{}, maxProbeWorkers)
	results := make(chan probeResult, len(hosts))
	var wg sync.WaitGroup

	for _, host := range hosts {
		if ctx.Err() != nil {
			break
		}
		probed++
		wg.Add(1)
		go func(ip string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			addr := net.JoinHostPort(ip, strconv.Itoa(protocol.ProbePort))
			payload, rtt, ok := probeExchange(ctx, addr, timeout)
			if !ok {
				return
			}
			fields := e.parseProbePayload(payload)
			fields.Source = registry.SourceActive
			fields.Reachable = true
			fields.RTTMillis = int(rtt.Milliseconds())
			results <- probeResult{ip: ip, fields: fields}
		}(host)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for result := range results {
		created := e.reg.Upsert(result.ip, result.fields)
		found++
		if created {
			logging.LogReceiverFound(result.ip, registry.SourceActive,
				result.fields.Model, result.fields.ClassID)
		}
	}
	return probed, found
}

// probeExchange connects to a receiver control port and tries each
// inquiry command until one draws a non-empty reply. A host that cannot
// be reached at all reports ok=false; a host that accepts the
// connection is a result even when every command goes unanswered.
func probeExchange(ctx context.Context, addr string, timeout time.Duration) (payload string, rtt time.Duration, ok bool) {
	start := time.Now()

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", 0, false
	}
	defer conn.Close()

	// Unblock any in-flight read when shutdown is requested.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	buf := make([]byte, 4096)
	for _, command := range protocol.Commands() {
		conn.SetDeadline(time.Now().Add(timeout))
		if _, err := conn.Write(command); err != nil {
			if isTimeout(err) {
				continue
			}
			return "", 0, false
		}
		n, err := conn.Read(buf)
		if n > 0 {
			payload = string(buf[:n])
			break
		}
		if err != nil {
			if isTimeout(err) || errors.Is(err, io.EOF) {
				continue
			}
			return "", 0, false
		}
	}
	return payload, time.Since(start), true
}

// parseProbePayload classifies a probe reply. A class ID wins; without
// one, a heuristic model token is better than nothing.
func (e *Engine) parseProbePayload(payload string) registry.Fields {
	var fields registry.Fields
	if payload == "" {
		return fields
	}

	if classID := protocol.ExtractClassID(payload); classID != "" {
		fields.ClassID = classID
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
		}
		return fields
	}

	if hint := protocol.ExtractModelHint(payload); hint != "" {
		fields.Model = hint
	}
	return fields
}

// isTimeout reports whether err is a deadline expiry.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
