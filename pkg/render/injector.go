package render

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-synctemplate/pkg/fields"
	"github.com/goliatone/go-synctemplate/pkg/layout"
	"github.com/goliatone/go-synctemplate/pkg/overrides"
	"github.com/goliatone/go-synctemplate/pkg/widgets"
)

// State is the lifecycle stage of an override scope.
type State int32

const (
	StateIdle State = iota
	StateArmed
	StateRendering
	StateDisarmed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateRendering:
		return "rendering"
	case StateDisarmed:
		return "disarmed"
	default:
		return "unknown"
	}
}

// StateObserver is notified on every scope transition.
type StateObserver func(renderID string, from, to State)

// InjectorOption configures an Injector.
type InjectorOption func(*Injector)

// WithWidgetRegistry sets the registry used to map field types to node
// settings. Defaults to widgets.Default().
func WithWidgetRegistry(registry *widgets.Registry) InjectorOption {
	return func(i *Injector) {
		if registry != nil {
			i.widgets = registry
		}
	}
}

// WithLogger routes injector diagnostics to logger.
func WithLogger(logger *zap.Logger) InjectorOption {
	return func(i *Injector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithStateObserver registers a callback for scope transitions.
func WithStateObserver(observer StateObserver) InjectorOption {
	return func(i *Injector) {
		i.observer = observer
	}
}

// WithRenderIDGenerator overrides how render ids are minted.
func WithRenderIDGenerator(fn func() string) InjectorOption {
	return func(i *Injector) {
		if fn != nil {
			i.newID = fn
		}
	}
}

// Injector applies an override set to the nodes of a tree while a base
// renderer walks it. Every call to Render opens its own scope, so nested and
// concurrent renders never observe each other's overrides.
type Injector struct {
	widgets  *widgets.Registry
	logger   *zap.Logger
	observer StateObserver
	newID    func() string
}

// NewInjector constructs an Injector.
func NewInjector(options ...InjectorOption) *Injector {
	inj := &Injector{
		widgets: widgets.Default(),
		logger:  zap.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range options {
		if opt != nil {
			opt(inj)
		}
	}
	return inj
}

// Render renders tree through base with set applied. An empty set delegates
// to base untouched. Otherwise the tree is cloned, a scope is armed and its
// hook chained ahead of any hook already present in opts. The scope is
// disarmed on every exit path, including base errors and panics; base errors
// are returned unchanged.
func (i *Injector) Render(ctx context.Context, tree layout.Tree, set overrides.Set, base Renderer, opts RenderOptions) ([]byte, error) {
	if base == nil {
		return nil, errors.New("render: base renderer is required")
	}
	if set.Empty() {
		return base.Render(ctx, tree, opts)
	}
	if opts.RenderID == "" {
		opts.RenderID = i.newID()
	}

	sc := i.arm(opts.RenderID, set)
	defer sc.disarm()

	opts.BeforeNode = ChainHooks(sc.beforeNode, opts.BeforeNode)
	return base.Render(ctx, tree.Clone(), opts)
}

// Apply eagerly applies set to every node of a clone of tree and returns the
// clone. It is the non-streaming counterpart of Render for callers that need
// the resolved tree itself.
func (i *Injector) Apply(ctx context.Context, tree layout.Tree, set overrides.Set) layout.Tree {
	working := tree.Clone()
	if set.Empty() {
		return working
	}
	sc := i.arm(i.newID(), set)
	defer sc.disarm()
	working.Walk(func(node *layout.Node) bool {
		sc.beforeNode(ctx, node)
		return node.Kind != KindEmbed
	})
	return working
}

var defaultInjector = NewInjector()

// RenderWithOverrides renders tree through base using the default injector.
func RenderWithOverrides(ctx context.Context, tree layout.Tree, set overrides.Set, base Renderer) ([]byte, error) {
	return defaultInjector.Render(ctx, tree, set, base, RenderOptions{})
}

type scope struct {
	id       string
	set      overrides.Set
	widgets  *widgets.Registry
	logger   *zap.Logger
	observer StateObserver
	state    atomic.Int32
	applied  atomic.Int64
}

func (i *Injector) arm(id string, set overrides.Set) *scope {
	sc := &scope{
		id:       id,
		set:      set,
		widgets:  i.widgets,
		logger:   i.logger.With(zap.String("render_id", id)),
		observer: i.observer,
	}
	sc.transition(StateIdle, StateArmed)
	sc.logger.Debug("override scope armed", zap.Int("overrides", set.Len()))
	return sc
}

func (s *scope) transition(from, to State) bool {
	if !s.state.CompareAndSwap(int32(from), int32(to)) {
		return false
	}
	if s.observer != nil {
		s.observer(s.id, from, to)
	}
	return true
}

func (s *scope) disarm() {
	for {
		current := State(s.state.Load())
		if current == StateDisarmed {
			return
		}
		if s.transition(current, StateDisarmed) {
			break
		}
	}
	s.logger.Debug("override scope disarmed", zap.Int64("applied", s.applied.Load()))
}

// beforeNode writes the overrides a node declares for itself into its
// settings. It is inert once the scope is disarmed.
func (s *scope) beforeNode(_ context.Context, node *layout.Node) {
	if node == nil {
		return
	}
	switch State(s.state.Load()) {
	case StateArmed:
		s.transition(StateArmed, StateRendering)
	case StateRendering:
	default:
		return
	}

	for _, descriptor := range fields.DescriptorsOf(node) {
		value, ok := s.set.LookupAs(descriptor.FieldID, descriptor.Type)
		if !ok {
			continue
		}
		attr, ok := s.widgets.TargetAttribute(descriptor.Type, node.Kind)
		if !ok {
			s.logger.Debug("override skipped: no target attribute",
				zap.String("node_id", node.ID),
				zap.String("kind", node.Kind),
				zap.String("field_id", descriptor.FieldID),
				zap.String("type", string(descriptor.Type)),
			)
			continue
		}
		node.SetSetting(attr, value.Setting())
		s.applied.Add(1)
	}
}
