// Wirelessboard-dcid manages the Shure device class database.
//
// Discovery can only classify receivers (model, band, channel count) when a
// device class map is available. This utility converts the DCIDMap.xml that
// ships with the Shure Update Utility into the dcid.json the server loads,
// and inspects existing maps.
//
// Usage:
//
//	wirelessboard-dcid [command] [flags]
//
// See 'wirelessboard-dcid --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/willcgage/wirelessboard/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wirelessboard-dcid",
	Short: "Wirelessboard Device Class Database Utility",
	Long: `A standalone utility for the Shure device class database.

The discovery engine resolves device class IDs (DCIDs) found in receiver
announcements to model names and frequency bands using a dcid.json map.
This utility generates that map from the vendor DCIDMap.xml, reports
whether an existing map is usable, and resolves individual class IDs.`,
	Version: version.Version,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wirelessboard-dcid %s (commit: %s)\n", version.Version, version.Commit)
	},
}
