package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

const defaultMaxDecodePasses = 4

// DecodeOption customises Decode.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	allowYAML  bool
	maxPasses  int
	allowJSONC bool
}

// WithYAML lets Decode fall back to YAML when the payload is not JSON.
func WithYAML() DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.allowYAML = true
	}
}

// WithMaxDecodePasses bounds how many times a string payload is re-decoded.
func WithMaxDecodePasses(n int) DecodeOption {
	return func(cfg *decodeConfig) {
		if n > 0 {
			cfg.maxPasses = n
		}
	}
}

// WithoutJSONC disables comment and trailing comma stripping.
func WithoutJSONC() DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.allowJSONC = false
	}
}

// ErrUnsupportedShape is returned when a payload decodes into something that
// is neither a node nor a list of nodes.
var ErrUnsupportedShape = errors.New("layout: unsupported document shape")

// Decode parses a persisted layout document. The payload may be a JSON array
// of nodes, a single node object, an export envelope holding a "content"
// array, or any of those wrapped in one or more JSON strings.
func Decode(raw []byte, options ...DecodeOption) (Tree, error) {
	cfg := decodeConfig{maxPasses: defaultMaxDecodePasses, allowJSONC: true}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Tree{}, nil
	}

	value, err := decodeValue(trimmed, cfg)
	if err != nil {
		return Tree{}, err
	}

	for pass := 0; pass < cfg.maxPasses; pass++ {
		str, ok := value.(string)
		if !ok {
			break
		}
		str = strings.TrimSpace(str)
		if str == "" {
			return Tree{}, nil
		}
		value, err = decodeValue([]byte(str), cfg)
		if err != nil {
			return Tree{}, fmt.Errorf("layout: decode nested payload: %w", err)
		}
	}

	return fromDecoded(value)
}

// DecodeLenient is Decode for the render path: any failure yields an empty
// tree.
func DecodeLenient(raw []byte, options ...DecodeOption) Tree {
	tree, err := Decode(raw, options...)
	if err != nil {
		return Tree{}
	}
	return tree
}

// DecodeString is a convenience wrapper for payloads already held as strings.
func DecodeString(raw string, options ...DecodeOption) (Tree, error) {
	return Decode([]byte(raw), options...)
}

// FromValue builds a tree from an already decoded value (map[string]any,
// []any, or a JSON string still to be decoded).
func FromValue(value any) (Tree, error) {
	if str, ok := value.(string); ok {
		return Decode([]byte(str))
	}
	return fromDecoded(value)
}

func fromDecoded(value any) (Tree, error) {
	switch v := value.(type) {
	case nil:
		return Tree{}, nil
	case []any:
		return Tree{Roots: nodesFromList(v)}, nil
	case map[string]any:
		if content, ok := v["content"].([]any); ok && !looksLikeNode(v) {
			return Tree{Roots: nodesFromList(content)}, nil
		}
		node, ok := nodeFromValue(v)
		if !ok {
			return Tree{}, nil
		}
		return Tree{Roots: []*Node{node}}, nil
	default:
		return Tree{}, fmt.Errorf("%w: %T", ErrUnsupportedShape, value)
	}
}

func decodeValue(data []byte, cfg decodeConfig) (any, error) {
	var value any
	jsonErr := json.Unmarshal(data, &value)
	if jsonErr == nil {
		return value, nil
	}
	if cfg.allowJSONC {
		if err := json.Unmarshal(jsonc.ToJSON(data), &value); err == nil {
			return value, nil
		}
	}
	if cfg.allowYAML {
		var yamlValue any
		if err := yaml.Unmarshal(data, &yamlValue); err == nil {
			return normaliseYAML(yamlValue), nil
		}
	}
	return nil, fmt.Errorf("layout: decode tree: %w", jsonErr)
}

func nodesFromList(items []any) []*Node {
	if len(items) == 0 {
		return nil
	}
	out := make([]*Node, 0, len(items))
	for _, item := range items {
		node, ok := nodeFromValue(item)
		if !ok {
			continue
		}
		out = append(out, node)
	}
	return out
}

// nodeFromValue converts a decoded record into a Node. It understands both
// the canonical shape (kind/children) and the host export shape
// (elType/widgetType/elements). Records that are not objects are skipped.
func nodeFromValue(value any) (*Node, bool) {
	record, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}

	node := &Node{
		ID:   scalarString(record["id"]),
		Kind: nodeKind(record),
	}

	if settings, ok := record["settings"].(map[string]any); ok && len(settings) > 0 {
		node.Settings = settings
	}

	children, ok := record["children"].([]any)
	if !ok {
		children, _ = record["elements"].([]any)
	}
	node.Children = nodesFromList(children)

	return node, true
}

func nodeKind(record map[string]any) string {
	if kind := strings.TrimSpace(scalarString(record["kind"])); kind != "" {
		return kind
	}
	elType := strings.TrimSpace(scalarString(record["elType"]))
	widgetType := strings.TrimSpace(scalarString(record["widgetType"]))
	if elType == "widget" && widgetType != "" {
		return widgetType
	}
	if elType != "" {
		return elType
	}
	return widgetType
}

func looksLikeNode(record map[string]any) bool {
	for _, key := range []string{"id", "kind", "elType", "widgetType", "settings"} {
		if _, ok := record[key]; ok {
			return true
		}
	}
	return false
}

func scalarString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return fmt.Sprintf("%v", v)
	case int:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}

// normaliseYAML rewrites map[any]any nodes (produced for non-string keys) so
// the tree only ever holds JSON-compatible values.
func normaliseYAML(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, item := range v {
			v[key] = normaliseYAML(item)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normaliseYAML(item)
		}
		return out
	case []any:
		for i, item := range v {
			v[i] = normaliseYAML(item)
		}
		return v
	default:
		return v
	}
}
