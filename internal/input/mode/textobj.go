package mode

import (
	"github.com/dshills/accepted/internal/engine"
	"github.com/dshills/accepted/internal/engine/buffer"
	"github.com/dshills/accepted/internal/input/vim"
)

// operateObject applies an operator over a text object.
func (m *Machine) operateObject(cmd *vim.Command) {
	r, linewise, ok := m.objectRange(cmd.Object, cmd.Inner, cmd.GetCount())
	if !ok {
		return
	}
	if linewise {
		m.applyLines(cmd.Operator, cmd.Register, r.Start.Line, r.End.Line)
		return
	}
	if r.IsEmpty() && cmd.Operator.Action != vim.ActionChange {
		return
	}
	m.applyRange(cmd.Operator, cmd.Register, r)
}

// objectRange finds the text obj covers at the cursor. A linewise result
// names whole lines Start.Line..End.Line: the inside of a bracket pair whose
// delimiters sit on their own lines.
func (m *Machine) objectRange(obj *vim.TextObject, inner bool, count int) (r engine.Range, linewise, ok bool) {
	cur := m.doc.Cursor()
	switch obj.Kind {
	case vim.ObjectWord, vim.ObjectBigWord:
		r, ok = m.wordObject(cur, obj.Kind == vim.ObjectBigWord, inner)
		return r, false, ok
	case vim.ObjectPair:
		return m.pairObject(cur, obj.Open, obj.Close, inner, count)
	case vim.ObjectQuote:
		r, ok = m.quoteObject(cur, obj.Open, inner)
		return r, false, ok
	}
	return engine.Range{}, false, false
}

// wordObject selects the run of same-class graphemes under p. The around
// variant adds the blanks after it, or before it when none follow. On
// blanks, around takes the next word too.
func (m *Machine) wordObject(p engine.Point, big, inner bool) (engine.Range, bool) {
	gs := buffer.Graphemes(m.doc.Line(p.Line))
	if len(gs) == 0 {
		return engine.Range{}, false
	}
	col := min(p.Col, len(gs)-1)
	start, end := classRun(gs, col, big)

	if !inner {
		switch {
		case isBlank(gs[col]):
			if end < len(gs) {
				_, end = classRun(gs, end, big)
			}
		case end < len(gs) && isBlank(gs[end]):
			_, end = classRun(gs, end, big)
		default:
			for start > 0 && isBlank(gs[start-1]) {
				start--
			}
		}
	}
	return engine.Range{
		Start: engine.Point{Line: p.Line, Col: start},
		End:   engine.Point{Line: p.Line, Col: end},
	}, true
}

// classRun returns the half-open run of graphemes around col sharing its
// word class.
func classRun(gs []string, col int, big bool) (start, end int) {
	cls := wordClass(gs[col], big)
	start, end = col, col+1
	for start > 0 && wordClass(gs[start-1], big) == cls {
		start--
	}
	for end < len(gs) && wordClass(gs[end], big) == cls {
		end++
	}
	return start, end
}

// pairObject selects the count-th enclosing bracket pair around p.
func (m *Machine) pairObject(p engine.Point, opening, closing string, inner bool, count int) (engine.Range, bool, bool) {
	var o, c engine.Point
	from, exclusive := p, m.charAt(p) == closing
	for i := 0; i < max(count, 1); i++ {
		var ok bool
		if o, ok = m.findOpen(from, opening, closing, exclusive); !ok {
			return engine.Range{}, false, false
		}
		if c, ok = m.findClose(o, opening, closing); !ok {
			return engine.Range{}, false, false
		}
		from, exclusive = o, true
	}

	if !inner {
		return engine.Range{Start: o, End: engine.Point{Line: c.Line, Col: c.Col + 1}}, false, true
	}
	r := engine.Range{Start: engine.Point{Line: o.Line, Col: o.Col + 1}, End: c}
	if c.Line > o.Line && r.Start.Col == m.doc.LineLen(o.Line) && m.blankBefore(c) {
		if c.Line == o.Line+1 {
			empty := engine.Point{Line: c.Line}
			return engine.Range{Start: empty, End: empty}, false, true
		}
		return engine.Range{Start: engine.Point{Line: o.Line + 1}, End: engine.Point{Line: c.Line - 1}}, true, true
	}
	return r, false, true
}

// blankBefore reports whether only blanks precede p on its line.
func (m *Machine) blankBefore(p engine.Point) bool {
	gs := buffer.Graphemes(m.doc.Line(p.Line))
	for _, g := range gs[:min(p.Col, len(gs))] {
		if !isBlank(g) {
			return false
		}
	}
	return true
}

// findOpen scans backward from from for an unmatched open delimiter. When
// exclusive is set the grapheme at from is skipped.
func (m *Machine) findOpen(from engine.Point, opening, closing string, exclusive bool) (engine.Point, bool) {
	depth := 0
	for line := from.Line; line >= 0; line-- {
		gs := buffer.Graphemes(m.doc.Line(line))
		col := len(gs) - 1
		if line == from.Line {
			col = from.Col
			if exclusive {
				col--
			}
			col = min(col, len(gs)-1)
		}
		for ; col >= 0; col-- {
			switch gs[col] {
			case closing:
				depth++
			case opening:
				if depth == 0 {
					return engine.Point{Line: line, Col: col}, true
				}
				depth--
			}
		}
	}
	return engine.Point{}, false
}

// findClose scans forward from the open delimiter at from for its match.
func (m *Machine) findClose(from engine.Point, opening, closing string) (engine.Point, bool) {
	depth := 0
	for line := from.Line; line < m.doc.LineCount(); line++ {
		gs := buffer.Graphemes(m.doc.Line(line))
		col := 0
		if line == from.Line {
			col = from.Col + 1
		}
		for ; col < len(gs); col++ {
			switch gs[col] {
			case opening:
				depth++
			case closing:
				if depth == 0 {
					return engine.Point{Line: line, Col: col}, true
				}
				depth--
			}
		}
	}
	return engine.Point{}, false
}

// quoteObject selects a quoted string on p's line: the one around p, or
// else the next one after it. Quotes pair up from the start of the line
// and a backslash escapes a quote. The around variant adds trailing
// blanks, or leading ones when none follow.
func (m *Machine) quoteObject(p engine.Point, quote string, inner bool) (engine.Range, bool) {
	gs := buffer.Graphemes(m.doc.Line(p.Line))
	var quotes []int
	for i, g := range gs {
		if g == quote && (i == 0 || gs[i-1] != `\`) {
			quotes = append(quotes, i)
		}
	}

	start, end := -1, -1
	for i := 0; i+1 < len(quotes); i += 2 {
		if p.Col <= quotes[i+1] {
			start, end = quotes[i], quotes[i+1]
			break
		}
	}
	if start < 0 {
		return engine.Range{}, false
	}

	if inner {
		start++
	} else {
		end++
		if end < len(gs) && isBlank(gs[end]) {
			for end < len(gs) && isBlank(gs[end]) {
				end++
			}
		} else {
			for start > 0 && isBlank(gs[start-1]) {
				start--
			}
		}
	}
	return engine.Range{
		Start: engine.Point{Line: p.Line, Col: start},
		End:   engine.Point{Line: p.Line, Col: end},
	}, true
}

// selectObject selects a text object in Visual mode.
func (v *VisualMode) selectObject(m *Machine, cmd *vim.Command) {
	r, linewise, ok := m.objectRange(cmd.Object, cmd.Inner, cmd.GetCount())
	if !ok {
		return
	}
	if linewise {
		r.End = engine.Point{Line: r.End.Line, Col: m.doc.LineLen(r.End.Line)}
	}
	if r.IsEmpty() {
		return
	}
	head := r.End
	if head.Col > 0 {
		head.Col--
	}
	m.doc.SetCursor(head)
	v.reselect(m, r.Start)
}
