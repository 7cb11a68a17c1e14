package layout

import (
	"encoding/json"
	"strings"
)

// SettingDynamicFields is the settings key holding a node's declared dynamic
// fields.
const SettingDynamicFields = "dynamicFields"

// Node is a single element of an authored layout.
type Node struct {
	ID       string         `json:"id" yaml:"id"`
	Kind     string         `json:"kind" yaml:"kind"`
	Settings map[string]any `json:"settings,omitempty" yaml:"settings,omitempty"`
	Children []*Node        `json:"children,omitempty" yaml:"children,omitempty"`
}

// Setting returns the raw value stored under key.
func (n *Node) Setting(key string) (any, bool) {
	if n == nil || n.Settings == nil {
		return nil, false
	}
	value, ok := n.Settings[key]
	return value, ok
}

// StringSetting returns the setting under key when it holds a string.
func (n *Node) StringSetting(key string) string {
	value, ok := n.Setting(key)
	if !ok {
		return ""
	}
	str, _ := value.(string)
	return str
}

// SetSetting stores value under key, allocating the settings map on demand.
func (n *Node) SetSetting(key string, value any) {
	if n == nil {
		return
	}
	if n.Settings == nil {
		n.Settings = make(map[string]any)
	}
	n.Settings[key] = value
}

// Clone returns a deep copy of the node and its subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		ID:   n.ID,
		Kind: n.Kind,
	}
	if n.Settings != nil {
		out.Settings = cloneMap(n.Settings)
	}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, 0, len(n.Children))
		for _, child := range n.Children {
			if child == nil {
				continue
			}
			out.Children = append(out.Children, child.Clone())
		}
	}
	return out
}

// Tree is an ordered forest of layout nodes. The zero value is an empty tree.
type Tree struct {
	Roots []*Node `json:"roots" yaml:"roots"`
}

// Empty reports whether the tree has no nodes.
func (t Tree) Empty() bool {
	for _, root := range t.Roots {
		if root != nil {
			return false
		}
	}
	return true
}

// Clone deep-copies the tree so callers can mutate settings without touching
// the original.
func (t Tree) Clone() Tree {
	if len(t.Roots) == 0 {
		return Tree{}
	}
	out := Tree{Roots: make([]*Node, 0, len(t.Roots))}
	for _, root := range t.Roots {
		if root == nil {
			continue
		}
		out.Roots = append(out.Roots, root.Clone())
	}
	return out
}

// Walk visits every node pre-order, depth-first, children in stored order.
// Returning false from fn skips the node's children.
func (t Tree) Walk(fn func(node *Node) bool) {
	if fn == nil {
		return
	}
	for _, root := range t.Roots {
		walk(root, fn)
	}
}

func walk(node *Node, fn func(node *Node) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for _, child := range node.Children {
		walk(child, fn)
	}
}

// Find returns the first node with the given id in traversal order.
func (t Tree) Find(id string) *Node {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	var found *Node
	t.Walk(func(node *Node) bool {
		if found != nil {
			return false
		}
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// Len counts the nodes in the tree.
func (t Tree) Len() int {
	count := 0
	t.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// MarshalJSON encodes the tree as a bare array of root nodes, the canonical
// persisted shape.
func (t Tree) MarshalJSON() ([]byte, error) {
	roots := t.Roots
	if roots == nil {
		roots = []*Node{}
	}
	return json.Marshal(roots)
}

// UnmarshalJSON accepts every shape Decode does.
func (t *Tree) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*t = decoded
	return nil
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return v
	}
}
