package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-synctemplate/pkg/layout"
)

// Transformer mutates a decoded template tree before overrides are injected.
// Implementations can fill default settings, rename kinds, or strip nodes.
type Transformer interface {
	Transform(ctx context.Context, tree *layout.Tree) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, tree *layout.Tree) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, tree *layout.Tree) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, tree)
}

// PresetTransformer applies declarative setting patches loaded from a JSON or
// YAML document. Kind patches apply first, node patches second:
//
//	{
//	  "kinds": {"heading": {"header_size": "h2"}},
//	  "nodes": {"hero-cta": {"text": "Learn more"}}
//	}
//
// Patches only fill or replace settings; override injection runs afterwards
// and still wins.
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Kinds map[string]map[string]any `json:"kinds" yaml:"kinds"`
	Nodes map[string]map[string]any `json:"nodes" yaml:"nodes"`
}

// NewPresetTransformer constructs a transformer from raw JSON or YAML bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from the provided
// filesystem path.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the declarative patches onto the supplied tree. Node
// patches naming ids absent from the tree are ignored.
func (t *PresetTransformer) Transform(ctx context.Context, tree *layout.Tree) error {
	if tree == nil {
		return errors.New("preset transformer: tree is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if t == nil {
		return nil
	}

	tree.Walk(func(node *layout.Node) bool {
		if patch, ok := t.document.Kinds[node.Kind]; ok {
			mergeSettings(node, patch)
		}
		if patch, ok := t.document.Nodes[node.ID]; ok {
			mergeSettings(node, patch)
		}
		return true
	})
	return ctx.Err()
}

func mergeSettings(node *layout.Node, patch map[string]any) {
	for key, value := range patch {
		node.SetSetting(key, value)
	}
}
