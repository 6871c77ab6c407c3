package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/willcgage/wirelessboard/internal/config"
	"github.com/willcgage/wirelessboard/internal/dcid"
)

// Database command flags
var (
	inputPath  string
	outputPath string
	mapPath    string
)

func init() {
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(lookupCmd)
}

// convertCmd generates dcid.json from the vendor DCIDMap.xml
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Generate dcid.json from a vendor DCIDMap.xml",
	Long: `Convert the DCIDMap.xml distributed with the Shure Update Utility into
the flat dcid.json map the discovery engine loads.

On macOS the input defaults to the Shure Update Utility's installed
database when no --input is given. The output destination must always be
specified; write it next to the server's configuration file so the server
picks it up on the next start.`,
	Example: `  # macOS with the Shure Update Utility installed
  wirelessboard-dcid convert -o ~/.config/wirelessboard/dcid.json

  # Explicit input file
  wirelessboard-dcid convert -i ./DCIDMap.xml -o ./dcid.json`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&inputPath, "input", "i", "", "DCIDMap.xml input file (default: Shure Update Utility install, macOS only)")
	convertCmd.Flags().StringVarP(&outputPath, "output", "o", "", "dcid.json output destination")
}

func runConvert(cmd *cobra.Command, args []string) error {
	if outputPath == "" {
		return fmt.Errorf("use -o to specify a dcid.json output destination")
	}

	path := inputPath
	if path == "" {
		path = dcid.VendorXMLPath()
	}
	if path == "" {
		return fmt.Errorf("specify an input DCIDMap.xml file with -i or install the Shure Update Utility")
	}

	db := dcid.New()
	if err := db.LoadVendorXML(path); err != nil {
		return err
	}
	if err := db.SaveFile(outputPath); err != nil {
		return err
	}

	fmt.Printf("Converted %s to %s (%d device classes)\n", path, outputPath, db.Len())

	if defaultPath, err := config.GetDCIDPath(); err == nil && outputPath != defaultPath {
		fmt.Printf("\nThe server loads the map from %s\n", defaultPath)
	}
	return nil
}

// statusCmd reports whether a map is usable
var statusCmd = &cobra.Command{
	Use:   "status [dcid.json]",
	Short: "Report whether a device class map is usable",
	Long: `Check a dcid.json map and print the same health summary the dashboard
shows: whether the map loaded, where it was read from, and what to do
when it is missing.

Without an argument the server's default map location is checked.`,
	Example: `  # Check the server's map
  wirelessboard-dcid status

  # Check a specific file
  wirelessboard-dcid status ./dcid.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		defaultPath, err := config.GetDCIDPath()
		if err != nil {
			return fmt.Errorf("failed to determine default map location: %w", err)
		}
		path = defaultPath
	}

	db := dcid.New()
	loadErr := db.RestoreFile(path)
	db.UpdateStatus(path)
	status := db.Status()

	fmt.Printf("Path:    %s\n", path)
	fmt.Printf("Loaded:  %v\n", status.Loaded)
	fmt.Printf("Status:  %s\n", status.Message)
	if loadErr != nil {
		fmt.Printf("Detail:  %v\n", loadErr)
	}
	return nil
}

// lookupCmd resolves a single class ID
var lookupCmd = &cobra.Command{
	Use:   "lookup <class-id>",
	Short: "Resolve one device class ID",
	Long: `Resolve a device class ID against a dcid.json map and print the model
metadata discovery would assign to a receiver announcing it.`,
	Example: `  # Resolve against the server's map
  wirelessboard-dcid lookup 39A47E07-102F-4E3D-A2E2-D764F44D8E29

  # Resolve against a specific file
  wirelessboard-dcid lookup 39A47E07-102F-4E3D-A2E2-D764F44D8E29 --map ./dcid.json`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().StringVar(&mapPath, "map", "", "Path to dcid.json (default: server's map location)")
}

func runLookup(cmd *cobra.Command, args []string) error {
	path := mapPath
	if path == "" {
		defaultPath, err := config.GetDCIDPath()
		if err != nil {
			return fmt.Errorf("failed to determine default map location: %w", err)
		}
		path = defaultPath
	}

	db := dcid.New()
	if err := db.RestoreFile(path); err != nil {
		return fmt.Errorf("failed to load device class map: %w", err)
	}

	classID := args[0]
	entry, ok := db.Lookup(classID)
	if !ok {
		return fmt.Errorf("class ID %s not found in %s", classID, path)
	}

	fmt.Printf("Class ID: %s\n", classID)
	fmt.Printf("Model:    %s\n", entry.Model)
	fmt.Printf("Name:     %s\n", entry.ModelName)
	if entry.Band != "" {
		fmt.Printf("Band:     %s\n", entry.Band)
	}
	if deviceType, channels, ok := dcid.ModelLookup(entry.Model); ok {
		fmt.Printf("Type:     %s (%d channel(s))\n", deviceType, channels)
	}
	return nil
}
