package config

import (
	"encoding/json"
	"net"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/willcgage/wirelessboard/internal/logging"
)

// Bounds applied to discovery settings. Out-of-range values are clamped,
// never rejected.
const (
	DefaultScanInterval = 60
	MinScanInterval     = 15
	MaxScanInterval     = 900

	DefaultTimeoutMS = 750
	MinTimeoutMS     = 100
	MaxTimeoutMS     = 5000

	// MinSubnetPrefix rejects scan targets broader than a /16; anything
	// wider is almost certainly a typo and would probe 65k+ hosts.
	MinSubnetPrefix = 16
)

// DiscoverySettings is the validated, bounded form consumed by the
// discovery engine. Construct via Normalize; never build one from raw
// client input directly.
type DiscoverySettings struct {
	Auto         bool     `yaml:"auto" json:"auto"`
	Subnets      []string `yaml:"subnets" json:"subnets"`
	ScanInterval int      `yaml:"scan_interval" json:"scan_interval"`
	TimeoutMS    int      `yaml:"timeout_ms" json:"timeout_ms"`
}

// RawDiscoverySettings tolerates the loose shapes clients and hand-edited
// config files produce: numeric strings, a comma-separated subnet string,
// missing fields. Feed it to Normalize to get usable settings.
type RawDiscoverySettings struct {
	Auto         *bool      `yaml:"auto" json:"auto"`
	Subnets      SubnetList `yaml:"subnets" json:"subnets"`
	ScanInterval FlexInt    `yaml:"scan_interval" json:"scan_interval"`
	TimeoutMS    FlexInt    `yaml:"timeout_ms" json:"timeout_ms"`
}

// SubnetList accepts either a list of strings or a single string with
// comma or newline separators.
type SubnetList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *SubnetList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = splitSubnetString(single)
		return nil
	}
	// Unusable shapes degrade to "no subnets configured".
	*s = nil
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *SubnetList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			*s = nil
			return nil
		}
		*s = list
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			*s = nil
			return nil
		}
		*s = splitSubnetString(single)
	default:
		*s = nil
	}
	return nil
}

func splitSubnetString(raw string) []string {
	raw = strings.ReplaceAll(raw, ",", "\n")
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// FlexInt accepts an integer, a float (truncated), or a numeric string.
// A value that is present but unparseable is remembered so Normalize can
// warn before falling back to the default.
type FlexInt struct {
	value int
	set   bool
	bad   bool
}

// Int returns the parsed value and whether one was successfully set.
func (f FlexInt) Int() (int, bool) {
	return f.value, f.set
}

// Rejected reports that a value was supplied but could not be parsed.
func (f FlexInt) Rejected() bool {
	return f.bad
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		return nil
	}
	if len(text) >= 2 && text[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			f.bad = true
			return nil
		}
		f.parse(s)
		return nil
	}
	f.parse(text)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *FlexInt) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		f.bad = true
		return nil
	}
	f.parse(value.Value)
	return nil
}

func (f *FlexInt) parse(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		f.bad = true
		return
	}
	if n, err := strconv.Atoi(text); err == nil {
		f.value = n
		f.set = true
		return
	}
	if fv, err := strconv.ParseFloat(text, 64); err == nil {
		f.value = int(fv)
		f.set = true
		return
	}
	f.bad = true
}

// Normalize turns raw settings into a fully-populated, bounded
// DiscoverySettings. Missing fields take defaults, unparseable numbers
// fall back with a warning, out-of-range numbers are clamped, and the
// subnet list is validated and deduplicated. Never fails.
func Normalize(raw RawDiscoverySettings) DiscoverySettings {
	settings := DiscoverySettings{
		Auto:         true,
		Subnets:      []string{},
		ScanInterval: DefaultScanInterval,
		TimeoutMS:    DefaultTimeoutMS,
	}

	if raw.Auto != nil {
		settings.Auto = *raw.Auto
	}
	if raw.Subnets != nil {
		settings.Subnets = NormalizeSubnets(raw.Subnets)
	}

	if n, ok := raw.ScanInterval.Int(); ok {
		settings.ScanInterval = n
	} else if raw.ScanInterval.Rejected() {
		logging.Warn("Ignoring unparseable scan_interval, using default",
			zap.Int("default", DefaultScanInterval))
	}
	if n, ok := raw.TimeoutMS.Int(); ok {
		settings.TimeoutMS = n
	} else if raw.TimeoutMS.Rejected() {
		logging.Warn("Ignoring unparseable timeout_ms, using default",
			zap.Int("default", DefaultTimeoutMS))
	}

	settings.ScanInterval = clamp(settings.ScanInterval, MinScanInterval, MaxScanInterval)
	settings.TimeoutMS = clamp(settings.TimeoutMS, MinTimeoutMS, MaxTimeoutMS)
	return settings
}

// NormalizeSubnets validates scan targets. Bare addresses become /32
// networks, CIDR entries are canonicalized (host bits masked off), and
// anything non-IPv4, broader than /16, or unparseable is dropped with a
// warning. Order is preserved; duplicates collapse to the first.
func NormalizeSubnets(entries []string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		spec := entry
		if !strings.Contains(spec, "/") {
			spec += "/32"
		}
		_, network, err := net.ParseCIDR(spec)
		if err != nil {
			logging.Warn("Dropping invalid subnet", zap.String("subnet", entry))
			continue
		}
		ones, bits := network.Mask.Size()
		if network.IP.To4() == nil || bits != 32 {
			logging.Warn("Dropping non-IPv4 subnet", zap.String("subnet", entry))
			continue
		}
		if ones < MinSubnetPrefix {
			logging.Warn("Dropping overly broad subnet",
				zap.String("subnet", entry),
				zap.Int("prefix", ones),
				zap.Int("min_prefix", MinSubnetPrefix))
			continue
		}

		canonical := network.String()
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
