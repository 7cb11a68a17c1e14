package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-synctemplate/pkg/layout"
	"github.com/goliatone/go-synctemplate/pkg/render"
	rendertemplate "github.com/goliatone/go-synctemplate/pkg/render/template"
	gotemplate "github.com/goliatone/go-synctemplate/pkg/render/template/gotemplate"
)

// Name is the registry name of the renderer.
const Name = "vanilla"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	kindTemplates    map[string]string
	policy           *bluemonday.Policy
	logger           *zap.Logger
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide every template the embedded one does.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithKindTemplate renders nodes of kind with the named template instead of
// the generic node template.
func WithKindTemplate(kind, name string) Option {
	return func(cfg *config) {
		kind = strings.TrimSpace(kind)
		name = strings.TrimSpace(name)
		if kind == "" || name == "" {
			return
		}
		cfg.kindTemplates[kind] = name
	}
}

// WithEditorPolicy replaces the sanitiser applied to text-editor content. A
// nil policy disables sanitising.
func WithEditorPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		cfg.policy = policy
	}
}

// WithLogger routes renderer diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Renderer produces framework-free HTML for a layout tree. Each node renders
// through a template picked by kind; container kinds fall back to the
// generic node template wrapping their children.
type Renderer struct {
	templates     rendertemplate.TemplateRenderer
	kindTemplates map[string]string
	policy        *bluemonday.Policy
	logger        *zap.Logger
}

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:    TemplatesFS(),
		kindTemplates: defaultKindTemplates(),
		policy:        EditorPolicy(),
		logger:        zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:     renderer,
		kindTemplates: cfg.kindTemplates,
		policy:        cfg.policy,
		logger:        cfg.logger,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the roots of tree in order. The context is checked before
// every node.
func (r *Renderer) Render(ctx context.Context, tree layout.Tree, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	var out strings.Builder
	for _, root := range tree.Roots {
		if root == nil {
			continue
		}
		html, err := r.renderNode(ctx, root, opts)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		out.WriteString(html)
	}
	return []byte(out.String()), nil
}

func (r *Renderer) renderNode(ctx context.Context, node *layout.Node, opts render.RenderOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	opts.Fire(ctx, node)

	if node.Kind == render.KindEmbed {
		return r.renderEmbed(ctx, node, opts)
	}

	var children strings.Builder
	for _, child := range node.Children {
		if child == nil {
			continue
		}
		html, err := r.renderNode(ctx, child, opts)
		if err != nil {
			return "", err
		}
		children.WriteString(html)
	}

	name, ok := r.kindTemplates[node.Kind]
	if !ok {
		name = TemplateNode
	}

	data := map[string]any{
		"id":       node.ID,
		"kind":     node.Kind,
		"settings": settingsOf(node),
		"children": children.String(),
		"link":     urlSetting(node, "link"),
		"image":    urlSetting(node, "image"),
		"editor":   sanitizeMarkup(r.policy, node.StringSetting("editor")),
	}
	html, err := r.templates.RenderTemplate(name, data)
	if err != nil {
		return "", render.WrapNodeError(node.ID, node.Kind, err)
	}
	return html, nil
}

func (r *Renderer) renderEmbed(ctx context.Context, node *layout.Node, opts render.RenderOptions) (string, error) {
	templateID := strings.TrimSpace(node.StringSetting("templateId"))
	if templateID == "" {
		return r.alert(node, opts, render.MessageSelectTemplate)
	}
	if opts.Embed == nil {
		r.logger.Debug("embed node skipped: no embed func", zap.String("node_id", node.ID))
		return "", nil
	}

	content, err := opts.Embed(ctx, node, opts.Nested())
	if err != nil {
		if key, soft := render.EmbedNotice(err); soft {
			r.logger.Debug("embed degraded", zap.String("node_id", node.ID), zap.Error(err))
			return r.alert(node, opts, key)
		}
		return "", render.WrapNodeError(node.ID, node.Kind, err)
	}

	html, err := r.templates.RenderTemplate(TemplateEmbed, map[string]any{
		"id":          node.ID,
		"template_id": templateID,
		"content":     string(content),
	})
	if err != nil {
		return "", render.WrapNodeError(node.ID, node.Kind, err)
	}
	return html, nil
}

// alert renders an editor notice. Outside preview mode nothing is written.
func (r *Renderer) alert(node *layout.Node, opts render.RenderOptions, key string) (string, error) {
	if !opts.Preview {
		return "", nil
	}
	html, err := r.templates.RenderTemplate(TemplateAlert, map[string]any{
		"id":      node.ID,
		"message": render.Translate(opts, key),
	})
	if err != nil {
		return "", render.WrapNodeError(node.ID, node.Kind, err)
	}
	return html, nil
}

func settingsOf(node *layout.Node) map[string]any {
	if node.Settings == nil {
		return map[string]any{}
	}
	return node.Settings
}

func urlSetting(node *layout.Node, key string) string {
	value, ok := node.Setting(key)
	if !ok {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		url, _ := v["url"].(string)
		return strings.TrimSpace(url)
	}
	return ""
}
