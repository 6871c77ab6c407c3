package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "wirelessboard"
	configFile = "config.yaml"
	dcidFile   = "dcid.json"

	// DefaultPort is the dashboard listen port when neither the config
	// file nor WIRELESSBOARD_PORT says otherwise.
	DefaultPort = 8058

	// PortEnvVar overrides the configured dashboard port.
	PortEnvVar = "WIRELESSBOARD_PORT"
)

// GetConfigDir returns the OS-appropriate configuration directory for the application.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/wirelessboard or $HOME/.config/wirelessboard
//   - macOS: $HOME/.config/wirelessboard (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\wirelessboard
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: Use LOCALAPPDATA
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			// Fallback to USERPROFILE\AppData\Local if LOCALAPPDATA not set
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		// macOS: Use $HOME/.config/wirelessboard (following modern XDG convention)
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		// Linux and other Unix-like systems: Use XDG_CONFIG_HOME or $HOME/.config
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// GetDCIDPath returns where the converted device class map is expected,
// next to the configuration file.
func GetDCIDPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, dcidFile), nil
}

// ServerSettings configures the dashboard process itself.
type ServerSettings struct {
	Port     int    `yaml:"port" json:"port"`
	LogLevel string `yaml:"log_level,omitempty" json:"log_level,omitempty"`
}

// File is the on-disk configuration shape. Discovery settings are stored
// normalized; loose input is accepted on load and write, canonical form
// comes back out.
type File struct {
	Version   int               `yaml:"version" json:"version"`
	Server    ServerSettings    `yaml:"server" json:"server"`
	Discovery DiscoverySettings `yaml:"discovery" json:"discovery"`
}

// fileYAML is the tolerant load shape; discovery fields pass through the
// validator before anything else sees them.
type fileYAML struct {
	Version   int                  `yaml:"version"`
	Server    ServerSettings       `yaml:"server"`
	Discovery RawDiscoverySettings `yaml:"discovery"`
}

// Store owns the configuration file. One instance is constructed at
// startup and handed to the server and discovery engine; all access goes
// through it. Safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
	file File
}

// Load reads the configuration at path, or the default location when
// path is "". A missing file yields defaults without error; only an
// unreadable or unparseable file fails.
func Load(path string) (*Store, error) {
	if path == "" {
		defaultPath, err := GetConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = defaultPath
	}

	store := &Store{
		path: path,
		file: File{
			Version:   1,
			Server:    ServerSettings{Port: DefaultPort},
			Discovery: Normalize(RawDiscoverySettings{}),
		},
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var parsed fileYAML
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if parsed.Version != 0 && parsed.Version != 1 {
		return nil, fmt.Errorf("unsupported config version: %d (expected 1)", parsed.Version)
	}

	store.file.Server = parsed.Server
	if store.file.Server.Port == 0 {
		store.file.Server.Port = DefaultPort
	}
	store.file.Discovery = Normalize(parsed.Discovery)
	return store, nil
}

// Path returns the file location this store reads and writes.
func (s *Store) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Port returns the dashboard listen port. WIRELESSBOARD_PORT wins over
// the file when it parses as a usable port number.
func (s *Store) Port() int {
	if env := os.Getenv(PortEnvVar); env != "" {
		if port, err := strconv.Atoi(env); err == nil && port > 0 && port < 65536 {
			return port
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Server.Port
}

// LogLevel returns the configured log level, or "" when unset.
func (s *Store) LogLevel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Server.LogLevel
}

// DiscoverySettings returns a defensive copy of the current settings.
// The engine calls this once per scan cycle; mutating the copy never
// affects the store.
func (s *Store) DiscoverySettings() DiscoverySettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Discovery.copy()
}

// UpdateDiscovery normalizes raw settings, persists them, and returns
// the form that was stored.
func (s *Store) UpdateDiscovery(raw RawDiscoverySettings) (DiscoverySettings, error) {
	normalized := Normalize(raw)

	s.mu.Lock()
	s.file.Discovery = normalized
	s.mu.Unlock()

	if err := s.Save(); err != nil {
		return DiscoverySettings{}, err
	}
	return normalized.copy(), nil
}

// Save writes the configuration to disk.
// Performs an atomic write to prevent corruption on crash.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(s.file)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Add header comment
	header := []byte(`# Wirelessboard Configuration File
# Discovery settings are stored in normalized form: subnets as canonical
# CIDR strings, intervals and timeouts clamped into their allowed ranges.
#
# Location: ` + s.path + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	// Atomic rename (this is atomic on all platforms)
	if err := os.Rename(tmpPath, s.path); err != nil {
		// Clean up temp file on error
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

func (d DiscoverySettings) copy() DiscoverySettings {
	out := d
	out.Subnets = append([]string{}, d.Subnets...)
	return out
}
