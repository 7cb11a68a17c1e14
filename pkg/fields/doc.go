// Package fields describes the dynamic fields authors declare on layout nodes
// and discovers them across a tree.
//
// A field's durable identity is its FieldID. Labels are display-only. Discover
// walks a tree pre-order and keeps the first occurrence of every FieldID, so
// the same tree always yields the same list.
package fields
