package discovery

import (
	"encoding/binary"
	"fmt"
	"net"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/willcgage/wirelessboard/internal/config"
	"github.com/willcgage/wirelessboard/internal/logging"
)

// maxHostsPerSubnet caps how many addresses one subnet contributes to a
// scan pass.
const maxHostsPerSubnet = 1024

// candidateSubnets builds the scan targets for one cycle: every valid
// configured subnet, plus an auto-detected /24 when auto mode is on,
// deduplicated in order.
func candidateSubnets(settings config.DiscoverySettings) []*net.IPNet {
	var candidates []*net.IPNet
	for _, entry := range settings.Subnets {
		network, err := parseIPv4Subnet(entry)
		if err != nil {
			logging.Warn("Skipping invalid discovery subnet",
				zap.String("subnet", entry), zap.Error(err))
			continue
		}
		candidates = append(candidates, network)
	}

	if settings.Auto {
		if network := autoDetectSubnet(); network != nil {
			candidates = append(candidates, network)
		}
	}

	seen := make(map[string]struct{})
	var result []*net.IPNet
	for _, network := range candidates {
		key := network.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, network)
	}
	return result
}

// parseIPv4Subnet accepts CIDR notation or a bare address (treated as a
// /32) and rejects anything non-IPv4 or broader than /16.
func parseIPv4Subnet(entry string) (*net.IPNet, error) {
	spec := entry
	if !strings.Contains(spec, "/") {
		spec += "/32"
	}
	_, network, err := net.ParseCIDR(spec)
	if err != nil {
		return nil, err
	}
	ones, bits := network.Mask.Size()
	if network.IP.To4() == nil || bits != 32 {
		return nil, fmt.Errorf("not an IPv4 subnet: %s", entry)
	}
	if ones < config.MinSubnetPrefix {
		return nil, fmt.Errorf("prefix /%d broader than /%d", ones, config.MinSubnetPrefix)
	}
	return network, nil
}

// autoDetectSubnet derives a /24 around the address the host would use
// to reach the wider network. Returns nil when no usable interface
// address can be found.
func autoDetectSubnet() *net.IPNet {
	ip := defaultInterfaceIP()
	if ip == nil {
		return nil
	}
	_, network, err := net.ParseCIDR(ip.String() + "/24")
	if err != nil {
		logging.Debug("Unable to derive auto subnet", zap.String("ip", ip.String()))
		return nil
	}
	return network
}

// defaultInterfaceIP finds the local source address for outbound
// traffic. The UDP "connection" never sends a packet; connect on a
// datagram socket just selects a route. Falls back to resolving the
// hostname when the route trick fails.
func defaultInterfaceIP() net.IP {
	conn, err := net.Dial("udp4", "8.8.8.8:80")
	if err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
			return addr.IP.To4()
		}
		return nil
	}

	host, err := os.Hostname()
	if err != nil {
		return nil
	}
	addrs, err := net.LookupIP(host)
	if err != nil {
		return nil
	}
	for _, addr := range addrs {
		if v4 := addr.To4(); v4 != nil {
			return v4
		}
	}
	return nil
}

// hostAddresses enumerates the probeable addresses of a subnet, up to
// limit. Network and broadcast addresses are excluded below /31; a /31
// yields both addresses and a /32 its single one.
func hostAddresses(network *net.IPNet, limit int) []string {
	base := network.IP.To4()
	if base == nil {
		return nil
	}
	ones, bits := network.Mask.Size()
	if bits != 32 {
		return nil
	}

	total := 1 << (bits - ones)
	first, last := 0, total-1
	if ones < 31 {
		first, last = 1, total-2
	}

	start := binary.BigEndian.Uint32(base)
	var hosts []string
	for offset := first; offset <= last; offset++ {
		if len(hosts) >= limit {
			break
		}
		addr := make(net.IP, net.IPv4len)
		binary.BigEndian.PutUint32(addr, start+uint32(offset))
		hosts = append(hosts, addr.String())
	}
	return hosts
}
