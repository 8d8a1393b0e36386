package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrQuit signals that the application should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning indicates Run was called twice.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrUnsavedChanges is reported when quitting a dirty buffer.
	ErrUnsavedChanges = errors.New("unsaved changes (add ! to override)")

	// ErrNoFileName is reported when saving a buffer that has no path.
	ErrNoFileName = errors.New("no file name")
)

// OperationError reports a failed editor operation on a file.
type OperationError struct {
	Op     string // "open", "save", "reload"
	Target string // file path
	Err    error
}

func (e *OperationError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
