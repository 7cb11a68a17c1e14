// Package synctemplate renders reusable layout templates with per-instance
// overrides of their declared dynamic fields.
//
// The root package re-exports the common entry points; the pipeline lives in
// pkg/orchestrator and its stages in pkg/layout, pkg/fields, pkg/overrides,
// pkg/widgets and pkg/render.
package synctemplate

import (
	"context"

	"github.com/goliatone/go-synctemplate/pkg/fields"
	"github.com/goliatone/go-synctemplate/pkg/layout"
	"github.com/goliatone/go-synctemplate/pkg/orchestrator"
	"github.com/goliatone/go-synctemplate/pkg/overrides"
	"github.com/goliatone/go-synctemplate/pkg/render"
)

// RenderOptions aliases the per-render context renderers receive.
type RenderOptions = render.RenderOptions

// Entry aliases a stored override entry.
type Entry = overrides.Entry

// Listing aliases the editor-facing shape of a discovered field.
type Listing = fields.Listing

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// RenderTemplate loads a stored template through reader and renders it with
// entries applied, using the named renderer.
func RenderTemplate(ctx context.Context, reader orchestrator.Reader, templateID string, entries []Entry, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(append([]orchestrator.Option{orchestrator.WithStore(reader)}, options...)...)
	return gen.Generate(ctx, orchestrator.Request{
		TemplateID: templateID,
		Overrides:  entries,
		Renderer:   rendererName,
	})
}

// RenderTree renders an already decoded tree, bypassing the store. Embedded
// template instances need a store and are skipped unless one is supplied via
// options.
func RenderTree(ctx context.Context, tree layout.Tree, entries []Entry, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Tree:      &tree,
		Overrides: entries,
		Renderer:  rendererName,
	})
}

// DiscoverFields lists the dynamic fields declared across tree, legacy
// declarations included.
func DiscoverFields(tree layout.Tree) []Listing {
	tree = tree.Clone()
	fields.MigrateLegacy(tree)
	return fields.Listings(fields.Discover(tree))
}
