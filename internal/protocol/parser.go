package protocol

import "strings"

// probeVerbs are command-language keywords that can never be a model name.
var probeVerbs = map[string]struct{}{
	"GET":    {},
	"SET":    {},
	"REP":    {},
	"REPORT": {},
	"SAMPLE": {},
}

// ExtractClassID pulls the device class ID out of an announcement or probe
// payload. Segments are comma separated; each is unwrapped from parens and
// scanned for a "cd:" token. The ID is the text after the last "cd:" in the
// segment, and the last segment carrying one wins. Returns "" when no
// segment has a class ID.
func ExtractClassID(payload string) string {
	var classID string
	for _, segment := range strings.Split(payload, ",") {
		segment = strings.Trim(segment, "()")
		if idx := strings.LastIndex(segment, "cd:"); idx != -1 {
			classID = segment[idx+len("cd:"):]
		}
	}
	return classID
}

// ExtractModelHint scans a probe reply for a token that looks like a model
// name. Only lines mentioning MODEL, PRODUCT or DEVICE are considered.
// Tokens are stripped of angle brackets and quotes; command verbs and
// anything two characters or shorter are skipped. Returns the first
// surviving token, or "" when the reply has no usable hint.
func ExtractModelHint(payload string) string {
	for _, line := range strings.Split(payload, "\n") {
		upper := strings.ToUpper(line)
		if !strings.Contains(upper, "MODEL") &&
			!strings.Contains(upper, "PRODUCT") &&
			!strings.Contains(upper, "DEVICE") {
			continue
		}
		for _, part := range strings.Fields(line) {
			part = strings.Trim(part, "<>\"")
			if _, verb := probeVerbs[strings.ToUpper(part)]; verb {
				continue
			}
			if len(part) > 2 {
				return part
			}
		}
	}
	return ""
}
