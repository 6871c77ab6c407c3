//go:build ignore

package main

import (
	"fmt"
	"net"
	"os"
	"time"

	// Import the protocol package
	"github.com/willcgage/wirelessboard/internal/protocol"
)

// Defaults emulate a quad-channel ULX-D receiver.
const (
	defaultClassID  = "39A47E07-102F-4E3D-A2E2-D764F44D8E29"
	defaultModel    = "ULXD4Q"
	announcePeriod  = 10 * time.Second
	announceAddress = "udp4"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		fmt.Println("Usage: fake-receiver [class-id [model]]")
		fmt.Println("Example: fake-receiver 39A47E07-102F-4E3D-A2E2-D764F44D8E29 ULXD4Q")
		fmt.Println()
		fmt.Println("Emulates one Shure receiver for development: answers probe")
		fmt.Println("commands on the control port and sends SLP announcements to")
		fmt.Printf("%s:%d every %s. Ctrl+C to stop.\n",
			protocol.MulticastGroup, protocol.MulticastPort, announcePeriod)
		os.Exit(0)
	}

	classID := defaultClassID
	model := defaultModel
	if len(os.Args) > 1 {
		classID = os.Args[1]
	}
	if len(os.Args) > 2 {
		model = os.Args[2]
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", protocol.ProbePort))
	if err != nil {
		fmt.Printf("Error listening on control port %d: %v\n", protocol.ProbePort, err)
		os.Exit(1)
	}
	fmt.Printf("Control port: answering probes on %s (model %s, cd:%s)\n",
		listener.Addr(), model, classID)
	go serveProbes(listener, classID, model)

	group := fmt.Sprintf("%s:%d", protocol.MulticastGroup, protocol.MulticastPort)
	conn, err := net.Dial(announceAddress, group)
	if err != nil {
		fmt.Printf("Error opening multicast sender to %s: %v\n", group, err)
		os.Exit(1)
	}

	// The attribute-list shape real receivers announce: parenthesised,
	// comma-separated segments with the class ID after a cd: marker.
	announcement := fmt.Sprintf("(acn-uri=service:x-acn),(model=%s),(cd:%s)", model, classID)

	fmt.Printf("Announcing to %s every %s\n", group, announcePeriod)
	for {
		if _, err := conn.Write([]byte(announcement)); err != nil {
			fmt.Printf("Announce failed: %v\n", err)
		} else {
			fmt.Printf("[%s] announced cd:%s\n", time.Now().Format("15:04:05"), classID)
		}
		time.Sleep(announcePeriod)
	}
}

// serveProbes answers every inquiry on an accepted connection with the
// same reply a real receiver would send for DEVICE_ID.
func serveProbes(listener net.Listener, classID, model string) {
	reply := fmt.Sprintf("< REP DEVICE_ID {FAKE-RX} >\r\n< REP MODEL %s >\r\n(cd:%s)\r\n", model, classID)
	for {
		conn, err := listener.Accept()
		if err != nil {
			fmt.Printf("Accept failed: %v\n", err)
			return
		}
		go func(c net.Conn) {
			defer c.Close()
			fmt.Printf("[%s] probe from %s\n", time.Now().Format("15:04:05"), c.RemoteAddr())
			buf := make([]byte, 1024)
			for {
				if _, err := c.Read(buf); err != nil {
					return
				}
				if _, err := c.Write([]byte(reply)); err != nil {
					return
				}
			}
		}(conn)
	}
}
