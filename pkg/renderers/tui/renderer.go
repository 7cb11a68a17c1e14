package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-synctemplate/pkg/fields"
	"github.com/goliatone/go-synctemplate/pkg/layout"
	"github.com/goliatone/go-synctemplate/pkg/render"
)

// Name is the registry name of the outline renderer.
const Name = "tui"

// Renderer prints a layout tree as an indented outline for terminals. Each
// line shows the node kind and id followed by selected settings; declared
// fields are listed beneath their node.
type Renderer struct {
	cfg config
}

// New constructs the outline renderer.
func New(options ...Option) *Renderer {
	cfg := defaultConfig()
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Renderer{cfg: cfg}
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, tree layout.Tree, opts render.RenderOptions) ([]byte, error) {
	var b strings.Builder
	for _, root := range tree.Roots {
		if err := r.renderNode(ctx, &b, root, 0, opts); err != nil {
			return nil, fmt.Errorf("tui renderer: %w", err)
		}
	}
	return []byte(b.String()), nil
}

func (r *Renderer) renderNode(ctx context.Context, b *strings.Builder, node *layout.Node, depth int, opts render.RenderOptions) error {
	if node == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	opts.Fire(ctx, node)

	prefix := strings.Repeat(r.cfg.indent, depth)
	fmt.Fprintf(b, "%s%s#%s%s\n", prefix, node.Kind, node.ID, r.settingsSummary(node))

	if r.cfg.showFields {
		descriptors := fields.DescriptorsOf(node)
		sort.SliceStable(descriptors, func(i, j int) bool { return descriptors[i].FieldID < descriptors[j].FieldID })
		for _, d := range descriptors {
			fmt.Fprintf(b, "%s%s* %s (%s) %q\n", prefix, r.cfg.indent, d.FieldID, d.Type, d.DisplayLabel())
		}
	}

	if node.Kind == render.KindEmbed {
		return r.renderEmbed(ctx, b, node, depth, opts)
	}

	for _, child := range node.Children {
		if err := r.renderNode(ctx, b, child, depth+1, opts); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderEmbed(ctx context.Context, b *strings.Builder, node *layout.Node, depth int, opts render.RenderOptions) error {
	prefix := strings.Repeat(r.cfg.indent, depth+1)
	if strings.TrimSpace(node.StringSetting("templateId")) == "" {
		if opts.Preview {
			fmt.Fprintf(b, "%s! %s\n", prefix, render.Translate(opts, render.MessageSelectTemplate))
		}
		return nil
	}
	if opts.Embed == nil {
		return nil
	}
	content, err := opts.Embed(ctx, node, opts.Nested())
	if err != nil {
		if key, soft := render.EmbedNotice(err); soft {
			if opts.Preview {
				fmt.Fprintf(b, "%s! %s\n", prefix, render.Translate(opts, key))
			}
			return nil
		}
		return render.WrapNodeError(node.ID, node.Kind, err)
	}
	for _, line := range strings.Split(strings.TrimRight(string(content), "\n"), "\n") {
		if line == "" {
			continue
		}
		fmt.Fprintf(b, "%s%s\n", prefix, line)
	}
	return nil
}

func (r *Renderer) settingsSummary(node *layout.Node) string {
	var parts []string
	for _, key := range r.cfg.settingKeys {
		value, ok := node.Setting(key)
		if !ok {
			continue
		}
		text := summarise(value)
		if text == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%q", key, text))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func summarise(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		if url, ok := v["url"].(string); ok {
			return strings.TrimSpace(url)
		}
	case nil:
		return ""
	}
	return ""
}
