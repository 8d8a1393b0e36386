package mode

import (
	"strings"

	"github.com/dshills/accepted/internal/engine"
	"github.com/dshills/accepted/internal/engine/buffer"
	"github.com/dshills/accepted/internal/input/key"
)

// pairs maps opening characters to the closer auto-pairing inserts.
var pairs = map[string]string{
	"(": ")",
	"{": "}",
	"[": "]",
	`"`: `"`,
}

func isCloser(g string) bool {
	switch g {
	case ")", "}", "]", `"`:
		return true
	}
	return false
}

// InsertMode implements Insert mode. The whole session from entering to
// Escape is one undo step.
type InsertMode struct{}

// NewInsertMode creates a new insert mode instance.
func NewInsertMode() *InsertMode {
	return &InsertMode{}
}

// Name returns the mode identifier.
func (i *InsertMode) Name() string {
	return ModeInsert
}

// DisplayName returns the human-readable mode name.
func (i *InsertMode) DisplayName() string {
	return "INSERT"
}

// CursorStyle returns the cursor style for insert mode.
func (i *InsertMode) CursorStyle() CursorStyle {
	return CursorBar
}

// Enter opens the undo group for the session.
func (i *InsertMode) Enter(m *Machine) {
	m.parser.Reset()
	m.doc.ClearSelection()
	m.doc.BeginGroup()
}

// Exit closes the session's undo group.
func (i *InsertMode) Exit(m *Machine) {
	m.completion = nil
	m.doc.EndGroup()
}

// HandleKey interprets one key in insert mode.
func (i *InsertMode) HandleKey(m *Machine, ev key.Event) {
	if ev.IsEscape() {
		m.leaveInsert()
		return
	}
	if m.handleCompletionKey(ev) {
		return
	}

	doc := m.doc
	before := doc.Cursor()
	m.record(insertStep{ev: ev})

	switch ev.Key {
	case key.KeyEnter:
		m.newline()
	case key.KeyTab:
		doc.Insert(before, doc.TabFill(before.Col))
	case key.KeyBackspace:
		m.backspace()
	case key.KeyDelete:
		m.deleteForward()
	case key.KeyLeft:
		doc.MoveCursor(engine.Motion{Kind: engine.MotionLeft}, 1)
	case key.KeyRight:
		doc.MoveCursor(engine.Motion{Kind: engine.MotionRight}, 1)
	case key.KeyUp:
		doc.MoveCursor(engine.Motion{Kind: engine.MotionUp}, 1)
	case key.KeyDown:
		doc.MoveCursor(engine.Motion{Kind: engine.MotionDown}, 1)
	case key.KeyHome:
		doc.SetCursor(engine.Point{Line: before.Line})
	case key.KeyEnd:
		doc.SetCursor(engine.Point{Line: before.Line, Col: doc.LineLen(before.Line)})
	case key.KeyRune:
		if ev.IsChar() {
			m.typeText(string(ev.Rune))
		}
	}

	if m.completion != nil && doc.Cursor() != before && !m.refilter(m.completion) {
		m.completion = nil
	}
}

// typeText inserts g at the cursor, pairing brackets and quotes and typing
// over a closer that is already there.
func (m *Machine) typeText(g string) {
	doc := m.doc
	cur := doc.Cursor()
	if m.autoPairs {
		if isCloser(g) && m.charAt(cur) == g {
			doc.SetCursor(engine.Point{Line: cur.Line, Col: cur.Col + 1})
			return
		}
		if closer, ok := pairs[g]; ok {
			doc.Insert(cur, g+closer)
			doc.SetCursor(engine.Point{Line: cur.Line, Col: cur.Col + 1})
			return
		}
	}
	doc.Insert(cur, g)
}

// newline splits the line at the cursor. The new line gets the current
// indentation plus one level after an opening bracket; a closer right at
// the cursor moves to a line of its own at the original indentation.
func (m *Machine) newline() {
	doc := m.doc
	cur := doc.Cursor()
	line := doc.Line(cur.Line)
	base := leadingWhitespace(line)
	prefix := strings.TrimRight(graphemePrefix(line, cur.Col), " \t")

	indent := base
	opened := prefix != "" && strings.ContainsAny(prefix[len(prefix)-1:], "{[(")
	if opened {
		indent += doc.IndentUnit()
	}

	end := doc.Insert(cur, "\n"+indent)
	if c := m.charAt(end); opened && c != "" && strings.Contains("}])", c) {
		doc.Insert(end, "\n"+base)
		doc.SetCursor(end)
	}
}

// backspace deletes the grapheme before the cursor, joining lines at column
// zero. Deleting an opener also removes the closer paired with it.
func (m *Machine) backspace() {
	doc := m.doc
	cur := doc.Cursor()
	switch {
	case cur.Col > 0:
		start := engine.Point{Line: cur.Line, Col: cur.Col - 1}
		end := cur
		if m.autoPairs {
			if closer, ok := pairs[m.charAt(start)]; ok && m.charAt(cur) == closer {
				end.Col++
			}
		}
		doc.Delete(engine.Range{Start: start, End: end})
	case cur.Line > 0:
		prev := cur.Line - 1
		doc.Delete(engine.Range{Start: engine.Point{Line: prev, Col: doc.LineLen(prev)}, End: cur})
	}
}

// deleteForward deletes the grapheme under the cursor, joining the next
// line at the end of a line.
func (m *Machine) deleteForward() {
	doc := m.doc
	cur := doc.Cursor()
	switch {
	case cur.Col < doc.LineLen(cur.Line):
		doc.Delete(engine.Range{Start: cur, End: engine.Point{Line: cur.Line, Col: cur.Col + 1}})
	case cur.Line+1 < doc.LineCount():
		doc.Delete(engine.Range{Start: cur, End: engine.Point{Line: cur.Line + 1}})
	}
	doc.SetCursor(cur)
}

func graphemePrefix(s string, col int) string {
	return s[:buffer.ByteIndex(s, col)]
}
