// Package jsontree renders a layout tree back to its canonical JSON form with
// overrides resolved, for headless consumers and debugging.
package jsontree

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-synctemplate/pkg/layout"
	"github.com/goliatone/go-synctemplate/pkg/render"
)

// Name is the registry name of the renderer.
const Name = "json"

// Option configures the renderer.
type Option func(*Renderer)

// WithIndent pretty-prints the output.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// WithoutFieldDeclarations strips dynamicFields from the output settings.
func WithoutFieldDeclarations() Option {
	return func(r *Renderer) {
		r.stripFields = true
	}
}

// Renderer emits the tree as a JSON array of nodes. Embedded instances are
// rendered through RenderOptions.Embed and attached under "embedded".
type Renderer struct {
	indent      string
	stripFields bool
}

// New constructs the renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string        { return Name }
func (r *Renderer) ContentType() string { return "application/json" }

type node struct {
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	Settings map[string]any  `json:"settings,omitempty"`
	Children []node          `json:"children,omitempty"`
	Embedded json.RawMessage `json:"embedded,omitempty"`
}

func (r *Renderer) Render(ctx context.Context, tree layout.Tree, opts render.RenderOptions) ([]byte, error) {
	out := make([]node, 0, len(tree.Roots))
	for _, root := range tree.Roots {
		if root == nil {
			continue
		}
		converted, err := r.convert(ctx, root, opts)
		if err != nil {
			return nil, fmt.Errorf("json renderer: %w", err)
		}
		out = append(out, converted)
	}

	var (
		payload []byte
		err     error
	)
	if r.indent != "" {
		payload, err = json.MarshalIndent(out, "", r.indent)
	} else {
		payload, err = json.Marshal(out)
	}
	if err != nil {
		return nil, fmt.Errorf("json renderer: encode: %w", err)
	}
	return payload, nil
}

func (r *Renderer) convert(ctx context.Context, n *layout.Node, opts render.RenderOptions) (node, error) {
	if err := ctx.Err(); err != nil {
		return node{}, err
	}
	opts.Fire(ctx, n)

	out := node{ID: n.ID, Kind: n.Kind, Settings: r.settings(n)}

	if n.Kind == render.KindEmbed && opts.Embed != nil && n.StringSetting("templateId") != "" {
		content, err := opts.Embed(ctx, n, opts.Nested())
		switch {
		case err == nil:
			if json.Valid(content) {
				out.Embedded = json.RawMessage(content)
			}
		default:
			if _, soft := render.EmbedNotice(err); !soft {
				return node{}, render.WrapNodeError(n.ID, n.Kind, err)
			}
		}
		return out, nil
	}

	for _, child := range n.Children {
		if child == nil {
			continue
		}
		converted, err := r.convert(ctx, child, opts)
		if err != nil {
			return node{}, err
		}
		out.Children = append(out.Children, converted)
	}
	return out, nil
}

func (r *Renderer) settings(n *layout.Node) map[string]any {
	if len(n.Settings) == 0 {
		return nil
	}
	if !r.stripFields {
		return n.Settings
	}
	out := make(map[string]any, len(n.Settings))
	for key, value := range n.Settings {
		if key == layout.SettingDynamicFields {
			continue
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
