package overrides

import (
	"strings"

	"github.com/goliatone/go-synctemplate/pkg/fields"
)

// LegacyEntry is the key/value pair older instances stored. Values were
// edited in a rich text control.
type LegacyEntry struct {
	Key   string `json:"override_key" yaml:"override_key"`
	Value string `json:"override_value" yaml:"override_value"`
}

// FromLegacy converts legacy pairs into entries. Keys found in aliases are
// re-keyed to the field id that replaced them (see fields.MigrateLegacy).
func FromLegacy(legacy []LegacyEntry, aliases map[string]string) []Entry {
	out := make([]Entry, 0, len(legacy))
	for _, item := range legacy {
		key := strings.TrimSpace(item.Key)
		if key == "" {
			continue
		}
		if alias, ok := aliases[key]; ok && alias != "" {
			key = alias
		}
		out = append(out, Entry{
			Key:  key,
			Type: fields.TypeRichtext,
			Text: item.Value,
		})
	}
	return out
}
