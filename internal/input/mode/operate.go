package mode

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/accepted/internal/engine"
	"github.com/dshills/accepted/internal/engine/buffer"
	"github.com/dshills/accepted/internal/input/vim"
)

// operate applies an operator over the text covered by a motion or a
// text object.
func (m *Machine) operate(cmd *vim.Command) {
	if cmd.Object != nil {
		m.operateObject(cmd)
		return
	}
	doc := m.doc
	start := doc.Cursor()
	motion := cmd.Motion

	var target engine.Point
	var ok bool
	if cmd.Operator.Action == vim.ActionChange && m.onWord(start, motion) {
		// cw changes to the end of the word, not up to the next one.
		target, ok = m.changeWordTarget(start, motion, cmd.GetCount()), true
		motion = &vim.MotionWordEnd
	} else {
		target, ok = doc.Target(motion.Engine(cmd.Char), cmd.Count)
	}
	if !ok {
		return
	}

	if motion.IsLinewise() {
		m.applyLines(cmd.Operator, cmd.Register, min(start.Line, target.Line), max(start.Line, target.Line))
		return
	}

	from, to := buffer.MinPoint(start, target), buffer.MaxPoint(start, target)
	switch {
	case motion.Inclusive:
		if to.Col < doc.LineLen(to.Line) {
			to.Col++
		}
	case isWordForward(motion) && to.Line > from.Line:
		// The last word of a line ends the range at the line end.
		to = engine.Point{Line: to.Line - 1, Col: doc.LineLen(to.Line - 1)}
		if to.Before(from) {
			to = from
		}
	}
	m.applyRange(cmd.Operator, cmd.Register, engine.Range{Start: from, End: to})
}

func isWordForward(mo *vim.Motion) bool {
	return mo.Kind == engine.MotionWordForward || mo.Kind == engine.MotionBigWordForward
}

// onWord reports whether a change with motion starts on a non-blank under a
// word motion, the case where cw behaves like ce.
func (m *Machine) onWord(p engine.Point, mo *vim.Motion) bool {
	if !isWordForward(mo) {
		return false
	}
	g := m.charAt(p)
	return g != "" && !isBlank(g)
}

// changeWordTarget returns the last grapheme of the count-th word from p.
func (m *Machine) changeWordTarget(p engine.Point, mo *vim.Motion, count int) engine.Point {
	big := mo.Kind == engine.MotionBigWordForward
	gs := buffer.Graphemes(m.doc.Line(p.Line))
	cls := wordClass(gs[p.Col], big)
	end := p.Col
	for end+1 < len(gs) && wordClass(gs[end+1], big) == cls {
		end++
	}
	target := engine.Point{Line: p.Line, Col: end}
	if count <= 1 {
		return target
	}

	kind := engine.MotionWordEnd
	if big {
		kind = engine.MotionBigWordEnd
	}
	saved := m.doc.Cursor()
	m.doc.SetCursor(target)
	target, _ = m.doc.Target(engine.Motion{Kind: kind}, count-1)
	m.doc.SetCursor(saved)
	return target
}

// applyRange runs op over a charwise range.
func (m *Machine) applyRange(op *vim.Operator, reg rune, r engine.Range) {
	doc := m.doc
	text := doc.TextRange(r)

	switch op.Action {
	case vim.ActionYank:
		m.storeYank(reg, text, false)
		doc.SetCursor(r.Start)
	case vim.ActionDelete:
		m.storeDelete(reg, text, false)
		doc.Delete(r)
	case vim.ActionChange:
		m.storeDelete(reg, text, false)
		m.startInsert(func() {
			doc.SetCursor(r.Start)
			doc.Delete(r)
		})
	}
}

// applyLines runs op over whole lines first..last.
func (m *Machine) applyLines(op *vim.Operator, reg rune, first, last int) {
	doc := m.doc
	text := m.linesText(first, last)

	switch op.Action {
	case vim.ActionYank:
		m.storeYank(reg, text, true)
		if cur := doc.Cursor(); cur.Line != first {
			doc.SetCursor(engine.Point{Line: first, Col: cur.Col})
		}
	case vim.ActionDelete:
		m.storeDelete(reg, text, true)
		m.deleteLines(first, last)
		doc.SetCursor(engine.Point{Line: min(first, doc.LineCount()-1)})
		doc.MoveCursor(engine.Motion{Kind: engine.MotionFirstNonBlank}, 0)
	case vim.ActionChange:
		m.storeDelete(reg, text, true)
		m.startInsert(func() {
			indent := leadingWhitespace(doc.Line(first))
			r := engine.Range{
				Start: engine.Point{Line: first},
				End:   engine.Point{Line: last, Col: doc.LineLen(last)},
			}
			doc.Replace(r, indent)
		})
	}
}

// linesText returns lines first..last, each with its newline.
func (m *Machine) linesText(first, last int) string {
	var sb strings.Builder
	for i := first; i <= last; i++ {
		sb.WriteString(m.doc.Line(i))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// deleteLines removes lines first..last including their line breaks.
func (m *Machine) deleteLines(first, last int) {
	doc := m.doc
	end := engine.Point{Line: last, Col: doc.LineLen(last)}
	switch {
	case last+1 < doc.LineCount():
		doc.Delete(engine.Range{Start: engine.Point{Line: first}, End: engine.Point{Line: last + 1}})
	case first > 0:
		doc.Delete(engine.Range{Start: engine.Point{Line: first - 1, Col: doc.LineLen(first - 1)}, End: end})
	default:
		doc.Delete(engine.Range{Start: engine.Point{}, End: end})
	}
}

func (m *Machine) storeYank(reg rune, text string, linewise bool) {
	if err := m.registers.Yank(reg, text, linewise); err != nil {
		m.notice("yank: %v", err)
	}
}

func (m *Machine) storeDelete(reg rune, text string, linewise bool) {
	if err := m.registers.Delete(reg, text, linewise); err != nil {
		m.notice("delete: %v", err)
	}
}

// put inserts register reg count times after or before the cursor.
func (m *Machine) put(reg rune, count int, after bool) {
	doc := m.doc
	text, linewise := m.registers.Get(reg)
	if text == "" {
		return
	}
	cur := doc.Cursor()

	if linewise {
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		body := strings.Repeat(text, count)
		line := cur.Line
		if after {
			line++
		}
		if line >= doc.LineCount() {
			last := doc.LineCount() - 1
			doc.Insert(engine.Point{Line: last, Col: doc.LineLen(last)}, "\n"+strings.TrimSuffix(body, "\n"))
		} else {
			doc.Insert(engine.Point{Line: line}, body)
		}
		doc.SetCursor(engine.Point{Line: line})
		doc.MoveCursor(engine.Motion{Kind: engine.MotionFirstNonBlank}, 0)
		return
	}

	body := strings.Repeat(text, count)
	at := cur
	if after && doc.LineLen(cur.Line) > 0 {
		at.Col++
	}
	end := doc.Insert(at, body)
	if strings.Contains(body, "\n") {
		doc.SetCursor(at)
		return
	}
	doc.SetCursor(engine.Point{Line: end.Line, Col: end.Col - 1})
}

// joinLines joins count lines starting at the cursor line, replacing each
// line break and the next line's indentation with one space.
func (m *Machine) joinLines(count int) {
	doc := m.doc
	line := doc.Cursor().Line
	if line+1 >= doc.LineCount() {
		return
	}

	doc.BeginGroup()
	defer doc.EndGroup()

	col := 0
	for i := 0; i < count-1 && line+1 < doc.LineCount(); i++ {
		cur := doc.Line(line)
		next := doc.Line(line + 1)
		indent := leadingWhitespace(next)
		rest := next[len(indent):]

		sep := " "
		if cur == "" || strings.HasSuffix(cur, " ") || rest == "" || strings.HasPrefix(rest, ")") {
			sep = ""
		}
		start := engine.Point{Line: line, Col: doc.LineLen(line)}
		end := engine.Point{Line: line + 1, Col: graphemeLen(indent)}
		doc.Replace(engine.Range{Start: start, End: end}, sep)
		col = start.Col
	}
	doc.SetCursor(engine.Point{Line: line, Col: col})
}

// replaceChars overwrites count graphemes at the cursor with char. Nothing
// changes when the line is too short.
func (m *Machine) replaceChars(char string, count int) {
	doc := m.doc
	cur := doc.Cursor()
	if char == "" || cur.Col+count > doc.LineLen(cur.Line) {
		return
	}
	r := engine.Range{Start: cur, End: engine.Point{Line: cur.Line, Col: cur.Col + count}}
	doc.Replace(r, strings.Repeat(char, count))
	doc.SetCursor(engine.Point{Line: cur.Line, Col: cur.Col + count - 1})
}

// startInsert opens an undo group, runs prepare and enters Insert mode. The
// group stays open until Insert mode is left, so prepare's edits and the
// typed text undo together.
func (m *Machine) startInsert(prepare func()) {
	m.doc.BeginGroup()
	if prepare != nil {
		prepare()
	}
	_ = m.Switch(ModeInsert)
	m.doc.EndGroup()
}

// leaveInsert returns to Normal mode, stepping the cursor back onto the
// last inserted character.
func (m *Machine) leaveInsert() {
	m.recording = nil
	cur := m.doc.Cursor()
	_ = m.Switch(ModeNormal)
	if cur.Col > 0 {
		m.doc.SetCursor(engine.Point{Line: cur.Line, Col: cur.Col - 1})
	}
}

// charAt returns the grapheme at p, or "" at the end of a line.
func (m *Machine) charAt(p engine.Point) string {
	gs := buffer.Graphemes(m.doc.Line(p.Line))
	if p.Col < 0 || p.Col >= len(gs) {
		return ""
	}
	return gs[p.Col]
}

func leadingWhitespace(s string) string {
	return buffer.LeadingWhitespace(s)
}

func graphemeLen(s string) int {
	return buffer.GraphemeCount(s)
}

func isBlank(g string) bool {
	r, _ := utf8.DecodeRuneInString(g)
	return unicode.IsSpace(r)
}

func isWordChar(g string) bool {
	r, _ := utf8.DecodeRuneInString(g)
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordClass groups graphemes the way the word motions do.
func wordClass(g string, big bool) int {
	switch {
	case isBlank(g):
		return 0
	case big || isWordChar(g):
		return 1
	default:
		return 2
	}
}
