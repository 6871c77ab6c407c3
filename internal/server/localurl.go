package server

import (
	"fmt"
	"net"
	"os"
)

// fallbackURL is reported when no host address can be resolved.
const fallbackURL = "https://github.com/willcgage/wirelessboard"

// localURL is the address dashboard clients should reach this host on,
// resolved fresh per request since the host may hold a dynamic lease.
func (s *Server) localURL() string {
	return buildLocalURL(resolveHostIP(), s.config.Port)
}

func buildLocalURL(ip net.IP, port int) string {
	if ip == nil {
		return fallbackURL
	}
	return fmt.Sprintf("http://%s:%d", ip, port)
}

// resolveHostIP resolves the machine's own hostname to its first IPv4
// address.
func resolveHostIP() net.IP {
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
