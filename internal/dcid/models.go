package dcid

type modelInfo struct {
	key      string
	channels int
}

type modelFamily struct {
	deviceType string
	models     []modelInfo
}

// receiverModels is the static model table for the rack receiver families.
// Order matters: ModelLookup scans linearly and returns the first match.
var receiverModels = []modelFamily{
	{"uhfr", []modelInfo{{"UR4S", 1}, {"UR4D", 2}}},
	{"qlxd", []modelInfo{{"QLXD4", 1}}},
	{"ulxd", []modelInfo{{"ULXD4", 1}, {"ULXD4D", 2}, {"ULXD4Q", 4}}},
	{"axtd", []modelInfo{{"AD4D", 2}, {"AD4Q", 4}}},
	{"p10t", []modelInfo{{"P10T", 2}}},
}

// ModelLookup resolves a model key from the vendor map to its device type
// and channel count. Returns ok=false for unknown or empty keys.
func ModelLookup(modelKey string) (deviceType string, channels int, ok bool) {
	if modelKey == "" {
		return "", 0, false
	}
	for _, family := range receiverModels {
		for _, model := range family.models {
			if modelKey == model.key {
				return family.deviceType, model.channels, true
			}
		}
	}
	return "", 0, false
}
