package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoController is returned when the runner is built without a wizard.
	ErrNoController = errors.New("tui: controller required")
)
