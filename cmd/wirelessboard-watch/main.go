// Wirelessboard-watch is a terminal dashboard for the Wirelessboard server.
//
// It connects to a running wirelessboard-server, subscribes to the live
// receiver feed over WebSocket, and renders the registry as a full-screen
// table. The server is located automatically over mDNS, or directly with
// the --server flag.
//
// Usage:
//
//	wirelessboard-watch [flags]
//
// See 'wirelessboard-watch --help' for available options.
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/willcgage/wirelessboard/internal/apiclient"
	"github.com/willcgage/wirelessboard/internal/tui"
	"github.com/willcgage/wirelessboard/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wirelessboard-watch",
	Short: "Wirelessboard Terminal Dashboard",
	Long: `A live terminal view of the receivers a Wirelessboard server has
discovered.

The dashboard subscribes to the server's WebSocket feed and updates as
receivers appear, change, and age out. When the feed is unavailable it
falls back to polling the HTTP API. Without --server, the server is
located via mDNS on the local network.`,
	Example: `  # Find the server via mDNS and watch
  wirelessboard-watch

  # Connect to a known server
  wirelessboard-watch --server 192.168.1.10:8058

  # Allow more time for discovery on slow networks
  wirelessboard-watch --timeout 15`,
	Version: version.Version,
	RunE:    runWatch,
}

// Watch flags
var (
	serverAddr    string
	browseTimeout int
)

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.Flags().StringVar(&serverAddr, "server", "", "Server address as host:port or URL (skips mDNS discovery)")
	rootCmd.Flags().IntVar(&browseTimeout, "timeout", 5, "mDNS discovery timeout in seconds")

	rootCmd.AddCommand(versionCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal; the watch dashboard needs an interactive session")
	}

	ctx := cmd.Context()

	addr := serverAddr
	if addr == "" {
		fmt.Printf("Searching for a Wirelessboard server (timeout: %ds)...\n", browseTimeout)
		found, err := apiclient.Browse(ctx, time.Duration(browseTimeout)*time.Second)
		if err != nil {
			fmt.Println("\nTroubleshooting:")
			fmt.Println("  - Ensure wirelessboard-server is running on this network")
			fmt.Println("  - mDNS may be blocked; use --server <host:port> to connect directly")
			fmt.Println("  - Try increasing --timeout for slower networks")
			return err
		}
		fmt.Printf("Found server at %s\n", found)
		addr = found
	}

	client := apiclient.New(addr)
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("cannot reach dashboard at %s: %w", client.BaseURL, err)
	}

	model := tui.New(ctx, tui.NewClientTransport(client), client.BaseURL)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("watch error: %w", err)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wirelessboard-watch %s (commit: %s)\n", version.Version, version.Commit)
	},
}
