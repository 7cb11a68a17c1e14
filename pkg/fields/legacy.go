package fields

import (
	"strings"

	"github.com/goliatone/go-synctemplate/pkg/layout"
)

// LegacyRepeaterKey is the settings key older template versions used for
// declared fields.
const LegacyRepeaterKey = "_est_dynamic_fields_repeater"

// Migration summarises a MigrateLegacy pass.
type Migration struct {
	// Count is the number of declarations rewritten.
	Count int
	// Aliases maps legacy keys to the FieldID that replaced them, so override
	// entries stored against the old key can be re-keyed.
	Aliases map[string]string
}

// MigrateLegacy rewrites legacy field declarations in place into the
// dynamicFields shape. Entries use their `_id` as FieldID and fall back to the
// older `key`. Legacy entries had no enabled flag and are migrated as enabled.
// Nodes that already declare a field with the same id keep their current
// declaration.
func MigrateLegacy(tree layout.Tree) Migration {
	result := Migration{Aliases: make(map[string]string)}
	tree.Walk(func(node *layout.Node) bool {
		raw, ok := node.Setting(LegacyRepeaterKey)
		if !ok {
			return true
		}
		entries, ok := raw.([]any)
		if !ok {
			delete(node.Settings, LegacyRepeaterKey)
			return true
		}

		current, _ := node.Settings[layout.SettingDynamicFields].([]any)
		existing := make(map[string]struct{}, len(current))
		for _, entry := range current {
			if descriptor, ok := parseDescriptor(entry); ok {
				existing[descriptor.FieldID] = struct{}{}
			}
		}

		for _, entry := range entries {
			record, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			id := legacyFieldID(record)
			if id == "" {
				continue
			}
			if _, exists := existing[id]; exists {
				continue
			}
			existing[id] = struct{}{}
			if key, _ := record["key"].(string); strings.TrimSpace(key) != "" && strings.TrimSpace(key) != id {
				result.Aliases[strings.TrimSpace(key)] = id
			}

			label, _ := record["label"].(string)
			typ, _ := record["type"].(string)
			if strings.TrimSpace(typ) == "" {
				typ = string(TypeText)
			}
			current = append(current, map[string]any{
				"fieldId": id,
				"label":   strings.TrimSpace(label),
				"type":    string(ParseType(typ)),
				"enabled": true,
			})
			result.Count++
		}

		delete(node.Settings, LegacyRepeaterKey)
		if len(current) > 0 {
			node.SetSetting(layout.SettingDynamicFields, current)
		}
		return true
	})
	return result
}

func legacyFieldID(record map[string]any) string {
	if id, _ := record["_id"].(string); strings.TrimSpace(id) != "" {
		return strings.TrimSpace(id)
	}
	key, _ := record["key"].(string)
	return strings.TrimSpace(key)
}
