package tool

import (
	"errors"
	"fmt"
)

// Sentinel errors for the tool package.
var (
	// ErrSpawn is returned when a tool executable cannot be started.
	ErrSpawn = errors.New("failed to start tool")

	// ErrTimeout is reported when a job runs longer than Policy.MaxRuntime.
	ErrTimeout = errors.New("tool timed out")

	// ErrFailed is reported when a formatter exits non-zero.
	ErrFailed = errors.New("tool failed")

	// ErrInvalidOutput is reported when a formatter writes invalid UTF-8.
	ErrInvalidOutput = errors.New("tool output is not valid UTF-8")

	// ErrNotConfigured is returned when the language has no command for
	// the requested tool.
	ErrNotConfigured = errors.New("tool not configured")

	// ErrNoPath is returned when a tool needs the file on disk and the
	// buffer has no file name.
	ErrNoPath = errors.New("buffer has no file name")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("orchestrator closed")
)

// JobError reports why a job ended without a result.
type JobError struct {
	Kind Kind
	Err  error
}

// Error implements the error interface.
func (e *JobError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *JobError) Unwrap() error {
	return e.Err
}
