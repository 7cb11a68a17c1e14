package fields

import (
	"strings"

	"github.com/goliatone/go-synctemplate/pkg/layout"
)

// Discover walks tree pre-order and returns every enabled field with a
// non-empty id and a supported type. When a FieldID repeats, the earliest declaration wins and
// later ones are dropped. Malformed entries are skipped. The result is never
// nil.
func Discover(tree layout.Tree) []Discovered {
	out := make([]Discovered, 0)
	seen := make(map[string]struct{})

	tree.Walk(func(node *layout.Node) bool {
		for _, descriptor := range DescriptorsOf(node) {
			if _, exists := seen[descriptor.FieldID]; exists {
				continue
			}
			seen[descriptor.FieldID] = struct{}{}
			out = append(out, Discovered{NodeID: node.ID, Descriptor: descriptor})
		}
		return true
	})

	return out
}

// DescriptorsOf returns the enabled descriptors a node declares on itself,
// ignoring its children. Duplicate ids within the node keep the first entry.
func DescriptorsOf(node *layout.Node) []Descriptor {
	raw, ok := node.Setting(layout.SettingDynamicFields)
	if !ok {
		return nil
	}

	var entries []any
	switch v := raw.(type) {
	case []any:
		entries = v
	case []map[string]any:
		entries = make([]any, len(v))
		for i, item := range v {
			entries[i] = item
		}
	case []Descriptor:
		entries = make([]any, len(v))
		for i, item := range v {
			entries[i] = item
		}
	default:
		return nil
	}

	var out []Descriptor
	var seen map[string]struct{}
	for _, entry := range entries {
		descriptor, ok := parseDescriptor(entry)
		if !ok || !descriptor.Enabled {
			continue
		}
		if seen == nil {
			seen = make(map[string]struct{}, len(entries))
		}
		if _, exists := seen[descriptor.FieldID]; exists {
			continue
		}
		seen[descriptor.FieldID] = struct{}{}
		out = append(out, descriptor)
	}
	return out
}

func parseDescriptor(entry any) (Descriptor, bool) {
	switch v := entry.(type) {
	case Descriptor:
		v.FieldID = strings.TrimSpace(v.FieldID)
		return normalizeDescriptor(v)
	case *Descriptor:
		if v == nil {
			return Descriptor{}, false
		}
		return parseDescriptor(*v)
	case map[string]any:
		id, _ := v["fieldId"].(string)
		id = strings.TrimSpace(id)
		if id == "" {
			return Descriptor{}, false
		}
		label, _ := v["label"].(string)
		typ, _ := v["type"].(string)
		return normalizeDescriptor(Descriptor{
			FieldID: id,
			Label:   strings.TrimSpace(label),
			Type:    ParseType(typ),
			Enabled: truthy(v["enabled"]),
		})
	default:
		return Descriptor{}, false
	}
}

// normalizeDescriptor defaults a missing type to text and rejects entries
// without an id or with a type outside the enum.
func normalizeDescriptor(d Descriptor) (Descriptor, bool) {
	if d.FieldID == "" {
		return Descriptor{}, false
	}
	if d.Type == "" {
		d.Type = TypeText
	}
	if !d.Type.Valid() {
		return Descriptor{}, false
	}
	return d, true
}

// truthy accepts JSON booleans plus the "yes" switcher value page builders
// persist for toggles.
func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "true", "1", "on":
			return true
		}
	}
	return false
}
