package apiclient

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType matches the dashboard server's zeroconf advertisement.
	ServiceType = "_wirelessboard._tcp"

	// ServiceDomain is the mDNS domain (typically "local.").
	ServiceDomain = "local."

	// DefaultBrowseTimeout is the default timeout for server discovery.
	DefaultBrowseTimeout = 5 * time.Second
)

// Browse searches the local network for an advertised dashboard server and
// returns its "host:port" address. The first server found wins.
func Browse(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultBrowseTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	addrChan := make(chan string, 1)

	go func() {
		for entry := range entries {
			addr := serverAddress(entry)
			if addr == "" {
				continue
			}
			select {
			case addrChan <- addr:
				cancel()
			default:
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return "", fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case addr := <-addrChan:
		return addr, nil
	case <-ctx.Done():
		// The cancel above races ctx.Done; prefer a found address.
		select {
		case addr := <-addrChan:
			return addr, nil
		default:
		}
		return "", fmt.Errorf("no dashboard server found within %s", timeout)
	}
}

// serverAddress extracts a dialable host:port from a service entry,
// preferring IPv4 addresses.
func serverAddress(entry *zeroconf.ServiceEntry) string {
	var host string
	for _, addr := range entry.AddrIPv4 {
		host = addr.String()
		break
	}
	if host == "" && len(entry.AddrIPv6) > 0 {
		host = entry.AddrIPv6[0].String()
	}
	if host == "" || entry.Port == 0 {
		return ""
	}

	return net.JoinHostPort(host, strconv.Itoa(entry.Port))
}
