// Package orchestrator wires the store → decode → override set → renderer
// pipeline behind a single entry point, including the nested rendering of
// embedded template instances.
package orchestrator
