package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoPromptDriver is returned when a collector has no driver to ask with.
	ErrNoPromptDriver = errors.New("tui: prompt driver is required")
)
