package overrides

import (
	"encoding/json"
)

// Settings keys under which embed nodes carry their override entries.
const (
	SettingOverrides       = "overrides"
	SettingLegacyOverrides = "dynamic_overrides"
)

// DecodeEntries reads entries from a decoded settings value: a list of
// records, []Entry, or a JSON string holding a list. Items that do not decode
// are skipped.
func DecodeEntries(value any) []Entry {
	switch v := value.(type) {
	case nil:
		return nil
	case []Entry:
		return append([]Entry(nil), v...)
	}

	var out []Entry
	for _, item := range decodeItems(value) {
		var entry Entry
		if err := json.Unmarshal(item, &entry); err != nil {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// DecodeLegacy reads legacy override_key/override_value pairs the same way.
func DecodeLegacy(value any) []LegacyEntry {
	if v, ok := value.([]LegacyEntry); ok {
		return append([]LegacyEntry(nil), v...)
	}

	var out []LegacyEntry
	for _, item := range decodeItems(value) {
		var entry LegacyEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func decodeItems(value any) []json.RawMessage {
	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil
		}
		raw = encoded
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}
