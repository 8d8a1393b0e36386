package mode

import "errors"

// ErrUnknownMode is returned when switching to a mode that is not registered.
var ErrUnknownMode = errors.New("unknown mode")
