package discovery

import (
	"fmt"
	"net"

	"golang.org/x/net/ipv4"

	"github.com/willcgage/wirelessboard/internal/protocol"
)

// openMulticastSocket binds the SLP announcement group. Some platforms
// refuse a bind on the group address itself; those get a wildcard bind
// on the same port with an explicit group join.
func openMulticastSocket() (*net.UDPConn, error) {
	group := net.ParseIP(protocol.MulticastGroup)
	groupAddr := &net.UDPAddr{IP: group, Port: protocol.MulticastPort}

	conn, err := net.ListenMulticastUDP("udp4", nil, groupAddr)
	if err == nil {
		return conn, nil
	}
	bindErr := err

	pc, err := net.ListenPacket("udp4", fmt.Sprintf(":%d", protocol.MulticastPort))
	if err != nil {
		return nil, fmt.Errorf("failed to bind multicast socket (%v) and wildcard fallback: %w", bindErr, err)
	}
	conn = pc.(*net.UDPConn)

	if err := ipv4.NewPacketConn(conn).JoinGroup(nil, &net.UDPAddr{IP: group}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to join multicast group %s: %w", protocol.MulticastGroup, err)
	}
	return conn, nil
}
