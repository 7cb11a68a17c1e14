package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-synctemplate/pkg/fields"
	"github.com/goliatone/go-synctemplate/pkg/layout"
	"github.com/goliatone/go-synctemplate/pkg/overrides"
	"github.com/goliatone/go-synctemplate/pkg/render"
	"github.com/goliatone/go-synctemplate/pkg/renderers/vanilla"
	"github.com/goliatone/go-synctemplate/pkg/store"
)

const defaultRendererName = "vanilla"

// DefaultMaxEmbedDepth bounds how deeply template instances may nest.
const DefaultMaxEmbedDepth = 4

// Setting keys read from embed nodes.
const SettingTemplateID = "templateId"

// Reader is the store surface the orchestrator reads from.
type Reader interface {
	store.TemplateReader
	store.InstanceReader
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithStore injects the template and instance source.
func WithStore(reader Reader) Option {
	return func(o *Orchestrator) {
		o.store = reader
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithInjector replaces the override injector.
func WithInjector(injector *render.Injector) Option {
	return func(o *Orchestrator) {
		o.injector = injector
	}
}

// WithTransformer registers a Transformer that mutates template trees after
// decoding but before overrides are injected.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithMaxEmbedDepth bounds template nesting. Values below one keep the
// default.
func WithMaxEmbedDepth(depth int) Option {
	return func(o *Orchestrator) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithLogger routes pipeline diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates the pipeline from stored template to rendered
// output: load, decode, migrate legacy declarations, build the override set,
// pick a renderer and render through the injector. Nested template instances
// run the same pipeline in their own injector scope.
type Orchestrator struct {
	store           Reader
	registry        *render.Registry
	injector        *render.Injector
	transformer     Transformer
	defaultRenderer string
	maxDepth        int
	logger          *zap.Logger
	initialiseErr   error
	defaultsApplied bool
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		maxDepth:        DefaultMaxEmbedDepth,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one render.
type Request struct {
	// InstanceID loads a stored instance; its template and overrides seed the
	// request.
	InstanceID string

	// TemplateID selects the template to render. Ignored when Tree is set.
	TemplateID string

	// Tree bypasses the store with an already decoded layout.
	Tree *layout.Tree

	// Overrides are applied after any stored instance overrides, so they win
	// on repeated keys.
	Overrides []overrides.Entry

	// Legacy carries override_key/override_value pairs from older instances.
	Legacy []overrides.LegacyEntry

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// Preview enables editor placeholders.
	Preview bool

	// RenderOptions carries per-request renderer options. Embed defaults to
	// the orchestrator's nested template renderer.
	RenderOptions render.RenderOptions
}

// Generate runs the pipeline and returns the rendered bytes (HTML for the
// default vanilla renderer).
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !o.defaultsApplied {
		o.applyDefaults()
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	entries := req.Overrides
	legacy := req.Legacy
	templateID := req.TemplateID
	if req.InstanceID != "" && req.Tree == nil {
		inst, err := o.instance(ctx, req.InstanceID)
		if err != nil {
			return nil, err
		}
		if templateID == "" {
			templateID = inst.TemplateID
		}
		entries = append(append([]overrides.Entry(nil), inst.Overrides...), entries...)
		legacy = append(append([]overrides.LegacyEntry(nil), inst.Legacy...), legacy...)
	}

	tree, err := o.resolveTree(ctx, req.Tree, templateID)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	opts := req.RenderOptions
	opts.Preview = opts.Preview || req.Preview
	if opts.Embed == nil {
		opts.Embed = o.embedWith(renderer)
	}

	output, err := o.renderTree(ctx, tree, entries, legacy, renderer, opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Fields lists the dynamic fields of a stored template. Unknown ids and
// records that are not synced templates yield an empty list.
func (o *Orchestrator) Fields(ctx context.Context, templateID string) ([]fields.Listing, error) {
	if o.store == nil {
		return nil, errors.New("orchestrator: store is required")
	}
	tpl, err := o.store.Template(ctx, templateID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []fields.Listing{}, nil
		}
		return nil, fmt.Errorf("orchestrator: load template: %w", err)
	}
	if !tpl.IsTemplate() {
		return []fields.Listing{}, nil
	}
	tree := tpl.Tree()
	fields.MigrateLegacy(tree)
	return fields.Listings(fields.Discover(tree)), nil
}

// ContentType reports the media type produced by the named renderer, or by
// the default renderer when name is empty.
func (o *Orchestrator) ContentType(name string) string {
	renderer, err := o.rendererFor(name)
	if err != nil {
		return "application/octet-stream"
	}
	return renderer.ContentType()
}

func (o *Orchestrator) renderTree(ctx context.Context, tree layout.Tree, entries []overrides.Entry, legacy []overrides.LegacyEntry, renderer render.Renderer, opts render.RenderOptions) ([]byte, error) {
	migration := fields.MigrateLegacy(tree)
	if migration.Count > 0 {
		o.logger.Debug("migrated legacy field declarations", zap.Int("count", migration.Count))
	}

	if o.transformer != nil {
		if err := o.transformer.Transform(ctx, &tree); err != nil {
			return nil, fmt.Errorf("transform tree: %w", err)
		}
	}

	all := append(overrides.FromLegacy(legacy, migration.Aliases), entries...)
	set := overrides.Build(all)
	return o.injector.Render(ctx, tree, set, renderer, opts)
}

// embedWith renders nested template instances with the parent's renderer.
func (o *Orchestrator) embedWith(renderer render.Renderer) render.EmbedFunc {
	return func(ctx context.Context, node *layout.Node, opts render.RenderOptions) ([]byte, error) {
		if opts.Depth > o.maxDepth {
			return nil, render.ErrEmbedDepth
		}
		templateID := node.StringSetting(SettingTemplateID)
		tree, err := o.resolveTree(ctx, nil, templateID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", render.ErrEmbedMissing, templateID)
			}
			return nil, err
		}

		entries := overrides.DecodeEntries(node.Settings[overrides.SettingOverrides])
		legacy := overrides.DecodeLegacy(node.Settings[overrides.SettingLegacyOverrides])
		return o.renderTree(ctx, tree, entries, legacy, renderer, opts)
	}
}

func (o *Orchestrator) resolveTree(ctx context.Context, tree *layout.Tree, templateID string) (layout.Tree, error) {
	if tree != nil {
		return tree.Clone(), nil
	}
	if templateID == "" {
		return layout.Tree{}, errors.New("orchestrator: template id or tree is required")
	}
	if o.store == nil {
		return layout.Tree{}, errors.New("orchestrator: store is required")
	}
	tpl, err := o.store.Template(ctx, templateID)
	if err != nil {
		return layout.Tree{}, fmt.Errorf("orchestrator: load template: %w", err)
	}
	if !tpl.IsTemplate() {
		return layout.Tree{}, fmt.Errorf("orchestrator: %q is a %s record: %w", templateID, tpl.Kind, store.ErrNotFound)
	}
	return tpl.Tree(), nil
}

func (o *Orchestrator) instance(ctx context.Context, id string) (store.Instance, error) {
	if o.store == nil {
		return store.Instance{}, errors.New("orchestrator: store is required")
	}
	inst, err := o.store.Instance(ctx, id)
	if err != nil {
		return store.Instance{}, fmt.Errorf("orchestrator: load instance: %w", err)
	}
	return inst, nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}

	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.injector == nil {
		o.injector = render.NewInjector(render.WithLogger(o.logger))
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	if o.maxDepth <= 0 {
		o.maxDepth = DefaultMaxEmbedDepth
	}

	o.defaultsApplied = true
}
