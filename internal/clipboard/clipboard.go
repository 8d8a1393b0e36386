// Package clipboard connects the editor to the system clipboard.
//
// Test input is read from the clipboard and copy-all writes the buffer to
// it. Text read back has CRLF line endings normalized to LF.
package clipboard

import (
	"errors"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available.
var ErrUnsupported = errors.New("clipboard: no clipboard utility available")

// Provider reads and writes clipboard text.
type Provider interface {
	Read() (string, error)
	Write(text string) error
}

// System is the OS clipboard. On Linux it needs xsel, xclip or wl-clipboard.
type System struct{}

// NewSystem returns the OS clipboard provider.
func NewSystem() System {
	return System{}
}

// Read returns the clipboard text.
func (System) Read() (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnsupported
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", err
	}
	return Normalize(text), nil
}

// Write replaces the clipboard text.
func (System) Write(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}

// Memory is an in-process clipboard, used when the system one is missing
// and in tests.
type Memory struct {
	mu   sync.Mutex
	text string
}

// NewMemory returns a clipboard holding text.
func NewMemory(text string) *Memory {
	return &Memory{text: text}
}

// Read returns the stored text.
func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Normalize(m.text), nil
}

// Write stores text.
func (m *Memory) Write(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

// Default returns the system clipboard, or an empty Memory clipboard when
// the system has none.
func Default() Provider {
	if clipboard.Unsupported {
		return NewMemory("")
	}
	return NewSystem()
}

// Normalize converts CRLF and lone CR line endings to LF.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
