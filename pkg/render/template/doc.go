// Package template defines the engine interface HTML renderers render layout
// nodes through. The gotemplate subpackage provides a pongo2-backed engine.
package template
