package mode

import (
	"github.com/dshills/accepted/internal/input/key"
)

// Mode is one editor mode. The Machine routes every key event to the
// current mode's HandleKey.
type Mode interface {
	// Name returns the unique mode identifier (e.g., "normal", "insert").
	Name() string

	// DisplayName returns a human-readable name for the status line.
	DisplayName() string

	// CursorStyle returns the cursor style for this mode.
	CursorStyle() CursorStyle

	// Enter is called when the mode becomes current.
	Enter(m *Machine)

	// Exit is called when the mode stops being current.
	Exit(m *Machine)

	// HandleKey interprets one key event.
	HandleKey(m *Machine, ev key.Event)
}

// CursorStyle defines the visual appearance of the cursor.
type CursorStyle uint8

const (
	// CursorBlock is a full-cell block cursor (normal mode).
	CursorBlock CursorStyle = iota

	// CursorBar is a thin vertical bar cursor (insert mode).
	CursorBar

	// CursorUnderline is shown while a character argument is awaited.
	CursorUnderline
)

// String returns a human-readable cursor style name.
func (c CursorStyle) String() string {
	switch c {
	case CursorBlock:
		return "block"
	case CursorBar:
		return "bar"
	case CursorUnderline:
		return "underline"
	default:
		return "unknown"
	}
}

// Standard mode names.
const (
	ModeNormal     = "normal"
	ModeInsert     = "insert"
	ModeVisual     = "visual"
	ModeVisualLine = "visual-line"
	ModeCommand    = "command"
)
