package mode

import (
	"github.com/dshills/accepted/internal/engine"
	"github.com/dshills/accepted/internal/input/key"
	"github.com/dshills/accepted/internal/input/vim"
)

// VisualMode implements charwise and linewise Visual mode. The selection
// runs from the anchor set on entry to the cursor.
type VisualMode struct {
	linewise bool
}

// NewVisualMode creates a charwise visual mode.
func NewVisualMode() *VisualMode {
	return &VisualMode{}
}

// NewVisualLineMode creates a linewise visual mode.
func NewVisualLineMode() *VisualMode {
	return &VisualMode{linewise: true}
}

// Name returns the mode identifier.
func (v *VisualMode) Name() string {
	if v.linewise {
		return ModeVisualLine
	}
	return ModeVisual
}

// DisplayName returns the human-readable mode name.
func (v *VisualMode) DisplayName() string {
	if v.linewise {
		return "VISUAL LINE"
	}
	return "VISUAL"
}

// CursorStyle returns the cursor style for visual mode.
func (v *VisualMode) CursorStyle() CursorStyle {
	return CursorBlock
}

// Enter starts a selection at the cursor, or keeps the anchor when
// switching between the two visual modes.
func (v *VisualMode) Enter(m *Machine) {
	m.parser.Reset()
	anchor := m.doc.Cursor()
	if sel, ok := m.doc.Selection(); ok {
		anchor = sel.Anchor
	}
	v.reselect(m, anchor)
}

// Exit is called when leaving visual mode.
func (v *VisualMode) Exit(m *Machine) {
	m.parser.Reset()
}

func (v *VisualMode) reselect(m *Machine, anchor engine.Point) {
	if v.linewise {
		m.doc.SetLineSelection(anchor, m.doc.Cursor())
	} else {
		m.doc.SetSelection(anchor, m.doc.Cursor())
	}
}

// HandleKey interprets one key in visual mode.
func (v *VisualMode) HandleKey(m *Machine, ev key.Event) {
	if ev.IsEscape() {
		_ = m.Switch(ModeNormal)
		return
	}

	state := m.parser.State()
	if ev.IsChar() && (state == vim.StateInitial || state == vim.StateCount) {
		if vim.IsTextObjectPrefix(ev.Rune) {
			m.parser.BeginTextObject(ev.Rune == 'i')
			return
		}
		if v.handleCommand(m, ev.Rune) {
			return
		}
	}

	res := m.parser.Parse(ev)
	if res.Status != vim.StatusComplete {
		return
	}
	cmd := res.Command
	switch cmd.Action {
	case vim.ActionSelectObject:
		v.selectObject(m, cmd)
		return
	case vim.ActionSearchNext, vim.ActionSearchPrev:
		m.searchNext(cmd.GetCount(), cmd.Action == vim.ActionSearchPrev)
	case vim.ActionMove:
		m.doc.MoveCursor(cmd.Motion.Engine(cmd.Char), cmd.Count)
	default:
		return
	}
	m.doc.ClampCursorNormal()
	sel, _ := m.doc.Selection()
	v.reselect(m, sel.Anchor)
}

// handleCommand runs the keys that act on the selection. It reports whether
// r was one of them.
func (v *VisualMode) handleCommand(m *Machine, r rune) bool {
	switch r {
	case 'v', 'V':
		target := ModeVisual
		if r == 'V' {
			target = ModeVisualLine
		}
		if target == v.Name() {
			_ = m.Switch(ModeNormal)
		} else {
			_ = m.Switch(target)
		}
	case 'o':
		sel, _ := m.doc.Selection()
		m.doc.SetCursor(sel.Anchor)
		v.reselect(m, sel.Head)
	case 'd', 'x':
		v.apply(m, &vim.OpDelete)
	case 'c', 's':
		v.apply(m, &vim.OpChange)
	case 'y':
		v.apply(m, &vim.OpYank)
	default:
		return false
	}
	return true
}

// apply runs op over the selection and leaves Visual mode.
func (v *VisualMode) apply(m *Machine, op *vim.Operator) {
	sel, ok := m.doc.Selection()
	r, _ := m.doc.SelectionRange()
	reg := m.parser.Register()
	m.parser.Reset()
	if op.Action == vim.ActionChange {
		m.doc.ClearSelection()
	} else {
		_ = m.Switch(ModeNormal)
	}
	if !ok {
		return
	}

	if sel.Linewise {
		first, last := sel.Lines()
		m.applyLines(op, reg, first, last)
		return
	}
	m.applyRange(op, reg, r)
}
