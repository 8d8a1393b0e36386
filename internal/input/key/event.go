package key

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Event represents a single key press event.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// Timestamp is when the event occurred. Prefix timeouts are measured
	// between event timestamps, never against the wall clock.
	Timestamp time.Time
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: mods, Timestamp: time.Now()}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(k Key, mods Modifier) Event {
	return Event{Key: k, Modifiers: mods, Timestamp: time.Now()}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true if this is an unmodified printable character.
func (e Event) IsChar() bool {
	return e.IsRune() && !e.IsModified() && unicode.IsPrint(e.Rune)
}

// IsModified returns true if Ctrl or Alt is pressed. Shift alone does not
// count for characters since it is already part of the rune.
func (e Event) IsModified() bool {
	if e.IsRune() {
		return e.Modifiers&(ModCtrl|ModAlt) != 0
	}
	return e.Modifiers != ModNone
}

// IsCtrl reports whether e is Ctrl plus the character r.
func (e Event) IsCtrl(r rune) bool {
	return e.IsRune() && e.Modifiers.HasCtrl() && unicode.ToLower(e.Rune) == r
}

// IsEscape returns true if this is the Escape key.
func (e Event) IsEscape() bool {
	return e.Key == KeyEscape
}

// Equals returns true if two events represent the same key press.
// Timestamps are not compared.
func (e Event) Equals(other Event) bool {
	return e.Key == other.Key && e.Rune == other.Rune && e.Modifiers == other.Modifiers
}

// String returns a vi-style representation such as "a", "<Space>",
// "<C-r>" or "<Esc>".
func (e Event) String() string {
	if e.IsRune() && !e.IsModified() {
		if e.Rune == ' ' {
			return "<Space>"
		}
		return string(e.Rune)
	}
	var parts []string
	mods := e.Modifiers
	if e.IsRune() {
		mods &^= ModShift
	}
	if mods != ModNone {
		parts = append(parts, mods.String())
	}
	if e.IsRune() {
		if e.Rune == ' ' {
			parts = append(parts, "Space")
		} else {
			parts = append(parts, string(unicode.ToLower(e.Rune)))
		}
	} else {
		parts = append(parts, e.Key.String())
	}
	return "<" + strings.Join(parts, "-") + ">"
}

// Parse errors.
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a single key written as a character ("a", "G") or in vi
// angle-bracket notation ("<Esc>", "<CR>", "<C-r>", "<Space>", "<A-x>").
func Parse(spec string) (Event, error) {
	if spec == "" {
		return Event{}, ErrEmptySpec
	}
	if !strings.HasPrefix(spec, "<") || !strings.HasSuffix(spec, ">") || len(spec) < 3 {
		r, size := utf8.DecodeRuneInString(spec)
		if size != len(spec) {
			return Event{}, fmt.Errorf("%q: %w", spec, ErrInvalidSpec)
		}
		return Event{Key: KeyRune, Rune: r}, nil
	}

	inner := spec[1 : len(spec)-1]
	if k := FromName(inner); k != KeyNone {
		return Event{Key: k}, nil
	}

	var mods Modifier
	for {
		if len(inner) < 3 || inner[1] != '-' {
			break
		}
		switch unicode.ToLower(rune(inner[0])) {
		case 'c':
			mods |= ModCtrl
		case 'a', 'm':
			mods |= ModAlt
		case 's':
			mods |= ModShift
		default:
			return Event{}, fmt.Errorf("%q: %w", spec, ErrInvalidSpec)
		}
		inner = inner[2:]
	}

	if strings.EqualFold(inner, "space") {
		return Event{Key: KeyRune, Rune: ' ', Modifiers: mods}, nil
	}
	if k := FromName(inner); k != KeyNone {
		return Event{Key: k, Modifiers: mods}, nil
	}
	r, size := utf8.DecodeRuneInString(inner)
	if size == 0 || size != len(inner) {
		return Event{}, fmt.Errorf("%q: %w", spec, ErrInvalidSpec)
	}
	return Event{Key: KeyRune, Rune: r, Modifiers: mods}, nil
}

// ParseSequence parses a run of keys such as "d2w", "ihello<Esc>" or
// "<Space>t". A '<' without a closing '>' is read literally.
func ParseSequence(s string) ([]Event, error) {
	var events []Event
	for i := 0; i < len(s); {
		if s[i] == '<' {
			if end := strings.IndexByte(s[i:], '>'); end > 1 {
				ev, err := Parse(s[i : i+end+1])
				if err == nil {
					events = append(events, ev)
					i += end + 1
					continue
				}
			}
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		events = append(events, Event{Key: KeyRune, Rune: r})
		i += size
	}
	return events, nil
}

// MustParseSequence is like ParseSequence but panics on error.
func MustParseSequence(s string) []Event {
	events, err := ParseSequence(s)
	if err != nil {
		panic("invalid key sequence " + s + ": " + err.Error())
	}
	return events
}
