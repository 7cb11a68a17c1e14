package render

import (
	"context"

	"github.com/goliatone/go-synctemplate/pkg/layout"
)

// NodeHook runs immediately before a renderer produces a node's output. It may
// mutate the node's settings.
type NodeHook func(ctx context.Context, node *layout.Node)

// EmbedFunc renders a nested template instance placed by an embed node. The
// returned bytes are inserted where the node sits in the parent output.
type EmbedFunc func(ctx context.Context, node *layout.Node, options RenderOptions) ([]byte, error)

// RenderOptions is the per-render context renderers receive. It is passed by
// value down the traversal; nothing here is shared between renders.
type RenderOptions struct {
	// BeforeNode intercepts each node before it renders.
	BeforeNode NodeHook
	// Embed renders nested template instances. Renderers leave embed nodes
	// empty when it is nil.
	Embed EmbedFunc
	// Preview enables editor-only chrome such as placeholder alerts.
	Preview bool
	// Depth is the embedding depth of the current render; top-level renders
	// use zero.
	Depth int
	// RenderID identifies the render in logs. Set by the injector when empty.
	RenderID string
	// Locale, Translator and OnMissing localise renderer-owned messages.
	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
}

// Fire runs the BeforeNode hook when one is installed.
func (o RenderOptions) Fire(ctx context.Context, node *layout.Node) {
	if o.BeforeNode == nil || node == nil {
		return
	}
	o.BeforeNode(ctx, node)
}

// Nested returns options for a nested render: translation and preview
// settings carry over, the hook does not, and Depth increases by one.
func (o RenderOptions) Nested() RenderOptions {
	return RenderOptions{
		Embed:      o.Embed,
		Preview:    o.Preview,
		Depth:      o.Depth + 1,
		Locale:     o.Locale,
		Translator: o.Translator,
		OnMissing:  o.OnMissing,
	}
}

// ChainHooks composes hooks in order, skipping nil entries.
func ChainHooks(hooks ...NodeHook) NodeHook {
	active := make([]NodeHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			active = append(active, hook)
		}
	}
	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	}
	return func(ctx context.Context, node *layout.Node) {
		for _, hook := range active {
			hook(ctx, node)
		}
	}
}
