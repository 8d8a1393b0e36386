package engine

import (
	"errors"
	"fmt"
)

// ErrOutOfRange indicates a position outside the document.
var ErrOutOfRange = errors.New("position out of range")

// InvariantError reports a programming error inside the editor: an edit
// addressed text that does not exist, or the history no longer matches the
// buffer. Document operations panic with an *InvariantError rather than
// returning it, since no caller can recover from a corrupted document.
type InvariantError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("engine invariant violated in %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *InvariantError) Unwrap() error {
	return e.Err
}

func violate(op string, err error) {
	panic(&InvariantError{Op: op, Err: err})
}
