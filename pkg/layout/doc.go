// Package layout models the authored page tree that templates are built from
// and decodes it from the formats hosts persist it in.
//
// A Tree is an ordered list of root nodes. Nodes carry an opaque id, a kind
// tag (heading, image, button, container, ...), a free-form settings map and
// ordered children. Nodes never point back at their parents, so every pass over
// a tree is a plain top-down traversal.
//
// Decoding lives at the boundary: Decode accepts JSON, JSON wrapped in a JSON
// string (the double-encoded shape some hosts store), JSON with comments, and
// YAML when enabled. Everything downstream works on the in-memory Tree only.
package layout
