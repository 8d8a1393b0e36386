package terminal

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/accepted/internal/input/key"
)

// specialKeys maps tcell keys that have a key.Key of their own.
var specialKeys = map[tcell.Key]key.Key{
	tcell.KeyEscape:     key.KeyEscape,
	tcell.KeyEnter:      key.KeyEnter,
	tcell.KeyTab:        key.KeyTab,
	tcell.KeyBacktab:    key.KeyBacktab,
	tcell.KeyBackspace:  key.KeyBackspace,
	tcell.KeyBackspace2: key.KeyBackspace,
	tcell.KeyDelete:     key.KeyDelete,
	tcell.KeyHome:       key.KeyHome,
	tcell.KeyEnd:        key.KeyEnd,
	tcell.KeyPgUp:       key.KeyPageUp,
	tcell.KeyPgDn:       key.KeyPageDown,
	tcell.KeyUp:         key.KeyUp,
	tcell.KeyDown:       key.KeyDown,
	tcell.KeyLeft:       key.KeyLeft,
	tcell.KeyRight:      key.KeyRight,
}

// decodeKey converts a tcell key press. Control letters become the
// lower-case rune with ModCtrl. Keys the editor has no use for, such as
// function keys, are reported as not ok.
func decodeKey(ev *tcell.EventKey) (key.Event, bool) {
	out := key.Event{
		Modifiers: decodeMods(ev.Modifiers()),
		Timestamp: ev.When(),
	}

	k := ev.Key()
	if mapped, ok := specialKeys[k]; ok {
		out.Key = mapped
		out.Modifiers &^= key.ModCtrl
		return out, true
	}

	switch {
	case k == tcell.KeyRune:
		out.Key = key.KeyRune
		out.Rune = ev.Rune()
		// The rune already carries the case.
		out.Modifiers &^= key.ModShift
		if out.Modifiers.HasCtrl() {
			out.Rune = unicode.ToLower(out.Rune)
		}
	case k == tcell.KeyCtrlSpace:
		out.Key = key.KeyRune
		out.Rune = ' '
		out.Modifiers |= key.ModCtrl
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		out.Key = key.KeyRune
		out.Rune = rune('a' + (k - tcell.KeyCtrlA))
		out.Modifiers |= key.ModCtrl
		out.Modifiers &^= key.ModShift
	default:
		return key.Event{}, false
	}
	return out, true
}

func decodeMods(m tcell.ModMask) key.Modifier {
	var out key.Modifier
	if m&tcell.ModShift != 0 {
		out |= key.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= key.ModCtrl
	}
	if m&(tcell.ModAlt|tcell.ModMeta) != 0 {
		out |= key.ModAlt
	}
	return out
}
