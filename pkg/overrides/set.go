package overrides

import (
	"sort"

	"github.com/goliatone/go-synctemplate/pkg/fields"
)

// Set maps field ids to coerced values for a single render.
type Set struct {
	values map[string]Value
}

// Build coerces entries into a Set. Entries with an empty key or a value that
// does not coerce are dropped. When a key repeats, the last usable entry wins.
func Build(entries []Entry) Set {
	set := Set{}
	for _, entry := range entries {
		key := entry.NormalizedKey()
		if key == "" {
			continue
		}
		value, ok := Coerce(entry.Type, entry.Raw())
		if !ok {
			continue
		}
		if set.values == nil {
			set.values = make(map[string]Value, len(entries))
		}
		set.values[key] = value
	}
	return set
}

// FromValues builds a Set from already coerced values, skipping empty keys.
func FromValues(values map[string]Value) Set {
	set := Set{}
	for key, value := range values {
		if key == "" {
			continue
		}
		if set.values == nil {
			set.values = make(map[string]Value, len(values))
		}
		set.values[key] = value
	}
	return set
}

// Len returns the number of usable overrides.
func (s Set) Len() int {
	return len(s.values)
}

// Empty reports whether the set holds no overrides.
func (s Set) Empty() bool {
	return len(s.values) == 0
}

// Lookup returns the override for fieldID.
func (s Set) Lookup(fieldID string) (Value, bool) {
	if s.values == nil {
		return Value{}, false
	}
	value, ok := s.values[fieldID]
	return value, ok
}

// LookupAs returns the override for fieldID re-coerced to the type the node
// declared. An override stored as text cannot populate an image field.
func (s Set) LookupAs(fieldID string, typ fields.Type) (Value, bool) {
	value, ok := s.Lookup(fieldID)
	if !ok {
		return Value{}, false
	}
	if value.Type == typ {
		return value, true
	}
	if value.Type.Textual() && typ.Textual() {
		return Value{Type: typ, Text: value.Text}, true
	}
	if value.Type.Media() && typ.Media() {
		return Value{Type: typ, URL: value.URL}, true
	}
	return Value{}, false
}

// Keys returns the field ids in the set, sorted.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
