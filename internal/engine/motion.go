package engine

import (
	"math"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/accepted/internal/engine/buffer"
)

// MotionKind names a cursor motion.
type MotionKind uint8

const (
	MotionLeft MotionKind = iota
	MotionRight
	MotionUp
	MotionDown
	MotionWordForward
	MotionWordBackward
	MotionWordEnd
	MotionBigWordForward
	MotionBigWordBackward
	MotionBigWordEnd
	MotionLineStart
	MotionFirstNonBlank
	MotionLineEnd
	MotionDocumentStart
	MotionDocumentEnd
	MotionFindForward
	MotionFindBackward
	MotionTillForward
	MotionTillBackward
)

// Motion is a motion together with its argument. Char is the grapheme
// searched for by the find and till motions.
type Motion struct {
	Kind MotionKind
	Char string
}

// MoveCursor applies m count times. A count of zero means no count was
// given; for the document motions a count names a line.
// It returns false, leaving the cursor in place, when a find motion fails.
func (d *Document) MoveCursor(m Motion, count int) bool {
	p, ok := d.Target(m, count)
	if !ok {
		return false
	}
	d.cursor = p
	switch m.Kind {
	case MotionUp, MotionDown:
	case MotionLineEnd:
		d.wantCol = math.MaxInt
	default:
		d.wantCol = p.Col
	}
	return true
}

// Target returns where m would move the cursor without moving it.
func (d *Document) Target(m Motion, count int) (Point, bool) {
	n := count
	if n <= 0 {
		n = 1
	}
	p := d.cursor

	switch m.Kind {
	case MotionLeft:
		p.Col = max(p.Col-n, 0)
	case MotionRight:
		p.Col = min(p.Col+n, d.buf.LineLen(p.Line))
	case MotionUp:
		p = d.vertical(p.Line - n)
	case MotionDown:
		p = d.vertical(p.Line + n)
	case MotionWordForward, MotionBigWordForward:
		big := m.Kind == MotionBigWordForward
		for i := 0; i < n; i++ {
			p = d.nextWordStart(p, big)
		}
	case MotionWordBackward, MotionBigWordBackward:
		big := m.Kind == MotionBigWordBackward
		for i := 0; i < n; i++ {
			p = d.prevWordStart(p, big)
		}
	case MotionWordEnd, MotionBigWordEnd:
		big := m.Kind == MotionBigWordEnd
		for i := 0; i < n; i++ {
			p = d.nextWordEnd(p, big)
		}
	case MotionLineStart:
		p.Col = 0
	case MotionFirstNonBlank:
		p.Col = d.firstNonBlank(p.Line)
	case MotionLineEnd:
		p.Line = min(p.Line+n-1, d.buf.LineCount()-1)
		p.Col = max(d.buf.LineLen(p.Line)-1, 0)
	case MotionDocumentStart, MotionDocumentEnd:
		line := 0
		if m.Kind == MotionDocumentEnd {
			line = d.buf.LineCount() - 1
		}
		if count > 0 {
			line = min(count-1, d.buf.LineCount()-1)
		}
		p = Point{Line: line, Col: d.firstNonBlank(line)}
	case MotionFindForward, MotionTillForward:
		col, ok := d.findInLine(p, m.Char, n, true)
		if !ok {
			return d.cursor, false
		}
		if m.Kind == MotionTillForward {
			col--
		}
		p.Col = col
	case MotionFindBackward, MotionTillBackward:
		col, ok := d.findInLine(p, m.Char, n, false)
		if !ok {
			return d.cursor, false
		}
		if m.Kind == MotionTillBackward {
			col++
		}
		p.Col = col
	}
	return d.buf.Clamp(p), true
}

func (d *Document) vertical(line int) Point {
	line = max(0, min(line, d.buf.LineCount()-1))
	col := d.wantCol
	if n := d.buf.LineLen(line); col > n {
		col = n
	}
	return Point{Line: line, Col: col}
}

func (d *Document) firstNonBlank(line int) int {
	text := d.buf.Line(line)
	return buffer.GraphemeCount(buffer.LeadingWhitespace(text))
}

func (d *Document) findInLine(p Point, target string, n int, forward bool) (int, bool) {
	if target == "" {
		return 0, false
	}
	gs := buffer.Graphemes(d.buf.Line(p.Line))
	if forward {
		for c := p.Col + 1; c < len(gs); c++ {
			if gs[c] == target {
				if n--; n == 0 {
					return c, true
				}
			}
		}
		return 0, false
	}
	for c := min(p.Col, len(gs)) - 1; c >= 0; c-- {
		if gs[c] == target {
			if n--; n == 0 {
				return c, true
			}
		}
	}
	return 0, false
}

// charClass groups graphemes for word motions.
type charClass uint8

const (
	classBlank charClass = iota
	classWord
	classPunct
)

func classify(g string, big bool) charClass {
	r, _ := utf8.DecodeRuneInString(g)
	switch {
	case unicode.IsSpace(r):
		return classBlank
	case big:
		return classWord
	case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		return classWord
	default:
		return classPunct
	}
}

// wordScanner walks graphemes across line boundaries. A line break reads as
// a blank; an empty line reads as a blank that is also a word boundary.
type wordScanner struct {
	d     *Document
	p     Point
	lines map[int][]string
}

func (d *Document) scanner(p Point) *wordScanner {
	return &wordScanner{d: d, p: p, lines: make(map[int][]string)}
}

func (s *wordScanner) line(i int) []string {
	gs, ok := s.lines[i]
	if !ok {
		gs = buffer.Graphemes(s.d.buf.Line(i))
		s.lines[i] = gs
	}
	return gs
}

// class returns the class at the scanner position. The end of a line is blank.
func (s *wordScanner) class(big bool) charClass {
	gs := s.line(s.p.Line)
	if s.p.Col >= len(gs) {
		return classBlank
	}
	return classify(gs[s.p.Col], big)
}

func (s *wordScanner) emptyLine() bool {
	return len(s.line(s.p.Line)) == 0
}

// next advances one position and reports whether it moved.
func (s *wordScanner) next() bool {
	if s.p.Col < len(s.line(s.p.Line)) {
		s.p.Col++
		return true
	}
	if s.p.Line+1 >= s.d.buf.LineCount() {
		return false
	}
	s.p = Point{Line: s.p.Line + 1}
	return true
}

// prev moves back one position and reports whether it moved.
func (s *wordScanner) prev() bool {
	if s.p.Col > 0 {
		s.p.Col--
		return true
	}
	if s.p.Line == 0 {
		return false
	}
	s.p.Line--
	s.p.Col = max(len(s.line(s.p.Line))-1, 0)
	return true
}

func (d *Document) nextWordStart(p Point, big bool) Point {
	s := d.scanner(p)
	start := s.class(big)
	if start != classBlank {
		for s.class(big) == start && s.p.Col < len(s.line(s.p.Line)) {
			s.next()
		}
	}
	for s.class(big) == classBlank {
		startLine := s.p.Line
		if !s.next() {
			return s.p
		}
		if s.p.Line != startLine && s.emptyLine() {
			return s.p
		}
	}
	return s.p
}

func (d *Document) prevWordStart(p Point, big bool) Point {
	s := d.scanner(p)
	if !s.prev() {
		return s.p
	}
	for s.class(big) == classBlank {
		if s.emptyLine() && s.p.Line != p.Line {
			return s.p
		}
		if !s.prev() {
			return s.p
		}
	}
	cls := s.class(big)
	for s.p.Col > 0 {
		gs := s.line(s.p.Line)
		if classify(gs[s.p.Col-1], big) != cls {
			break
		}
		s.p.Col--
	}
	return s.p
}

func (d *Document) nextWordEnd(p Point, big bool) Point {
	s := d.scanner(p)
	if !s.next() {
		return p
	}
	for s.class(big) == classBlank {
		if !s.next() {
			return p
		}
	}
	cls := s.class(big)
	for {
		gs := s.line(s.p.Line)
		if s.p.Col+1 >= len(gs) || classify(gs[s.p.Col+1], big) != cls {
			return s.p
		}
		s.p.Col++
	}
}
