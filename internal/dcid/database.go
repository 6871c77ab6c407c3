package dcid

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"runtime"
	"sync"
)

// DefaultVendorXML is where the Shure Update Utility installs its device
// class map on macOS.
const DefaultVendorXML = "/Applications/Shure Update Utility.app/Contents/Resources/DCIDMap.xml"

// Entry is the model metadata recorded for one device class ID.
type Entry struct {
	Model     string `json:"model"`
	ModelName string `json:"model_name"`
	Band      string `json:"band"`
}

// Status summarizes whether the database is usable and, when it is not,
// what the operator should do about it.
type Status struct {
	Loaded  bool   `json:"loaded"`
	Source  string `json:"source"`
	Message string `json:"message"`
}

// Database maps device class IDs to model metadata. Safe for concurrent
// use; discovery goroutines read while loads take the write lock.
type Database struct {
	mu      sync.RWMutex
	entries map[string]Entry
	status  Status
}

// New returns an empty database. The status reflects that no map has been
// loaded yet; call RestoreFile or LoadVendorXML then UpdateStatus.
func New() *Database {
	return &Database{
		entries: make(map[string]Entry),
		status: Status{
			Loaded:  false,
			Message: "DCID map not loaded. Install Shure Update Utility or provide dcid.json.",
		},
	}
}

// Lookup resolves a class ID. The second return reports whether the ID
// is known.
func (db *Database) Lookup(classID string) (Entry, bool) {
	if classID == "" {
		return Entry{}, false
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	entry, ok := db.entries[classID]
	return entry, ok
}

// Len reports how many class IDs are loaded.
func (db *Database) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.entries)
}

// Status returns a copy of the current tri-state summary.
func (db *Database) Status() Status {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.status
}

// UpdateStatus recomputes the tri-state summary. source is the dcid.json
// path the caller looked at, recorded even when loading failed so the
// dashboard can show where the map was expected.
func (db *Database) UpdateStatus(source string) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if len(db.entries) > 0 {
		message := fmt.Sprintf("DCID map loaded with %d entries", len(db.entries))
		if source != "" {
			message = fmt.Sprintf("%s from %s", message, source)
		}
		db.status = Status{Loaded: true, Source: source, Message: message}
		return
	}

	var message string
	if vendorXML := VendorXMLPath(); vendorXML != "" {
		message = fmt.Sprintf(
			"DCID map not generated. Run \"wirelessboard-dcid convert -i %q -o dcid.json\" to import the Shure Update Utility database.",
			vendorXML)
	} else {
		message = "DCID map not found. Install Shure Update Utility or provide dcid.json so discovery can classify receivers."
	}
	db.status = Status{Loaded: false, Source: source, Message: message}
}

// vendorMap mirrors the DCIDMap.xml structure. Records missing any of the
// three elements are skipped rather than failing the whole parse.
type vendorMap struct {
	Entries []vendorEntry `xml:"MapEntry"`
}

type vendorEntry struct {
	Key       *string     `xml:"Key"`
	ModelName *string     `xml:"ModelName"`
	DCIDList  *vendorList `xml:"DCIDList"`
}

type vendorList struct {
	IDs []vendorID `xml:"DCID"`
}

type vendorID struct {
	Band string `xml:"band,attr"`
	Text string `xml:",chardata"`
}

// LoadVendorXML parses a DCIDMap.xml file and merges its records into the
// database. Malformed records are skipped; only an unreadable or
// unparseable file is an error.
func (db *Database) LoadVendorXML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read vendor XML: %w", err)
	}

	var parsed vendorMap
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse vendor XML: %w", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	for _, record := range parsed.Entries {
		if record.Key == nil || record.ModelName == nil || record.DCIDList == nil {
			continue
		}
		for _, id := range record.DCIDList.IDs {
			if id.Text == "" {
				continue
			}
			db.entries[id.Text] = Entry{
				Model:     *record.Key,
				ModelName: *record.ModelName,
				Band:      id.Band,
			}
		}
	}
	return nil
}

// SaveFile writes the database as a flat JSON object, keys sorted, two
// space indent, trailing newline.
func (db *Database) SaveFile(path string) error {
	db.mu.RLock()
	data, err := json.MarshalIndent(db.entries, "", "  ")
	db.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode DCID map: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write DCID map: %w", err)
	}
	return nil
}

// RestoreFile replaces the database contents with a previously saved
// dcid.json.
func (db *Database) RestoreFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read DCID map: %w", err)
	}

	entries := make(map[string]Entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse DCID map: %w", err)
	}

	db.mu.Lock()
	db.entries = entries
	db.mu.Unlock()
	return nil
}

// Convert builds dcid.json from a vendor DCIDMap.xml in one step.
func Convert(inputPath, outputPath string) error {
	db := New()
	if err := db.LoadVendorXML(inputPath); err != nil {
		return err
	}
	return db.SaveFile(outputPath)
}

// VendorXMLPath returns the vendor XML location when the Shure Update
// Utility is installed, or "" when it is not. Only macOS installs carry
// the file at a well-known path.
func VendorXMLPath() string {
	if runtime.GOOS == "darwin" {
		if _, err := os.Stat(DefaultVendorXML); err == nil {
			return DefaultVendorXML
		}
	}
	return ""
}
