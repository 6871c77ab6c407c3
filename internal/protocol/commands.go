package protocol

// Discovery endpoints used by Shure wireless receivers.
const (
	// MulticastGroup is the SLP multicast group receivers announce on.
	MulticastGroup = "239.255.254.253"

	// MulticastPort is the UDP port for SLP announcements.
	MulticastPort = 8427

	// ProbePort is the TCP command port receivers listen on.
	ProbePort = 2202
)

// probeCommands are tried in order against the command port. Older
// receivers only understand the unnumbered form, so it comes last.
var probeCommands = [][]byte{
	[]byte("< GET 1 DEVICE_ID >\r\n"),
	[]byte("< GET 1 ALL >\r\n"),
	[]byte("< GET DEVICE_ID >\r\n"),
}

// Commands returns the probe inquiry sequence in send order.
func Commands() [][]byte {
	return probeCommands
}
