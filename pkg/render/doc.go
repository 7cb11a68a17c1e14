// Package render defines the renderer contract for layout trees and the
// injector that applies template instance overrides while a tree renders.
//
// A render is described entirely by its RenderOptions value. The injector
// installs its per-node hook there rather than in any shared location, which
// keeps nested template instances and concurrent renders isolated.
package render
