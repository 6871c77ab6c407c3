// Wirelessboard-server is the discovery daemon and dashboard for Shure
// wireless receivers.
//
// It listens for SLP announcements on the local network, sweeps the
// configured subnets with TCP probes, and serves the resulting receiver
// registry over HTTP and WebSocket for dashboards and watch clients.
//
// Usage:
//
//	wirelessboard-server server [flags]
//
// See 'wirelessboard-server server --help' for available options.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/willcgage/wirelessboard/internal/config"
	"github.com/willcgage/wirelessboard/internal/dcid"
	"github.com/willcgage/wirelessboard/internal/discovery"
	"github.com/willcgage/wirelessboard/internal/logging"
	"github.com/willcgage/wirelessboard/internal/registry"
	"github.com/willcgage/wirelessboard/internal/server"
	"github.com/willcgage/wirelessboard/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wirelessboard-server",
	Short: "Wirelessboard discovery server",
	Long: `The Wirelessboard daemon: discovers Shure wireless receivers on the local
network and serves the live inventory to dashboards.

Discovery combines a passive SLP multicast listener with periodic active TCP
probe sweeps over the configured subnets. Results are published on an HTTP
and WebSocket API and announced over mDNS so watch clients can find the
server without configuration.

Note: To import the Shure device class database, use the separate
'wirelessboard-dcid' utility. For a terminal dashboard, use
'wirelessboard-watch'.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}

// Server command and flags
var (
	configPath string
	host       string
	port       int
	logLevel   string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the discovery engine and dashboard",
	Long: `Start the discovery engine and the dashboard API server.

Configuration is read from the platform config directory (or --config) and
created with defaults on first save. The device class map is expected as
dcid.json next to the configuration file; when it is missing the server
still runs, reporting receivers without model classification and showing
remediation steps on the dashboard.

The server shuts down cleanly on SIGINT or SIGTERM.`,
	Example: `  # Start with the default configuration
  wirelessboard-server server

  # Start on a custom port with verbose logging
  wirelessboard-server server --port 9058 --log-level debug

  # Use an alternate configuration file
  wirelessboard-server server --config /etc/wirelessboard/config.yaml`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file (default: platform config directory)")
	serverCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	serverCmd.Flags().IntVar(&port, "port", 0, "Dashboard port (0 = from config file or WIRELESSBOARD_PORT)")
	serverCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: from config file, then info)")
}

func runServer(cmd *cobra.Command, args []string) error {
	store, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Log level precedence: flag, config file, then info. The daemon
	// always logs; silent mode is for the one-shot utilities.
	level := logLevel
	if level == "" {
		level = store.LogLevel()
	}
	if level == "" {
		level = "info"
	}
	if err := logging.Initialize(level); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	// The class map lives next to the configuration file so --config
	// relocates both together.
	db := dcid.New()
	dcidPath := filepath.Join(filepath.Dir(store.Path()), "dcid.json")
	if err := db.RestoreFile(dcidPath); err != nil {
		logging.Warn("Device class map unavailable; receivers will be unclassified",
			zap.String("path", dcidPath), zap.Error(err))
	}
	db.UpdateStatus(dcidPath)

	reg := registry.New()
	engine := discovery.New(store, db, reg)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go func() {
		if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error("Discovery engine stopped", zap.Error(err))
		}
	}()

	listenPort := port
	if listenPort == 0 {
		listenPort = store.Port()
	}

	srv := server.New(&server.Config{Host: host, Port: listenPort}, store, db, engine)
	return srv.Start(ctx)
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wirelessboard-server %s (commit: %s)\n", version.Version, version.Commit)
	},
}
