// Package overrides models the values a template instance supplies for the
// dynamic fields its template declares.
//
// Entries are the persisted, editor-facing records. Build turns a list of
// entries into a Set, coercing each raw value through the type table in
// Coerce and dropping anything that does not resolve to a usable value. A Set
// is built per render and is read-only while the render runs.
package overrides
