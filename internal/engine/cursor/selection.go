package cursor

import (
	"fmt"

	"github.com/dshills/accepted/internal/engine/buffer"
)

// Point is an alias for buffer.Point for convenience.
type Point = buffer.Point

// Range is an alias for buffer.Range for convenience.
type Range = buffer.Range

// Selection represents a range of selected text.
// Anchor is where the selection started; Head is the current cursor position.
// Linewise selections cover whole lines regardless of column.
// Selection is an immutable value type.
type Selection struct {
	Anchor   Point
	Head     Point
	Linewise bool
}

// NewSelection creates a charwise selection from anchor to head.
func NewSelection(anchor, head Point) Selection {
	return Selection{Anchor: anchor, Head: head}
}

// NewLineSelection creates a linewise selection from anchor to head.
func NewLineSelection(anchor, head Point) Selection {
	return Selection{Anchor: anchor, Head: head, Linewise: true}
}

// IsEmpty returns true if the selection has no extent.
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Head && !s.Linewise
}

// Start returns the lower bound of the selection.
func (s Selection) Start() Point {
	return buffer.MinPoint(s.Anchor, s.Head)
}

// End returns the upper bound of the selection.
func (s Selection) End() Point {
	return buffer.MaxPoint(s.Anchor, s.Head)
}

// IsForward returns true if the selection extends forward (head >= anchor).
func (s Selection) IsForward() bool {
	return !s.Head.Before(s.Anchor)
}

// Extend returns a new selection with the head moved to p.
func (s Selection) Extend(p Point) Selection {
	s.Head = p
	return s
}

// Collapse collapses the selection to a cursor at the head.
func (s Selection) Collapse() Selection {
	return Selection{Anchor: s.Head, Head: s.Head}
}

// Flip returns a selection with anchor and head swapped.
func (s Selection) Flip() Selection {
	s.Anchor, s.Head = s.Head, s.Anchor
	return s
}

// Range returns the text covered by the selection in buf.
// Charwise selections include the grapheme under the end point, as in vi.
// Linewise selections span from the start of the first line to the start of
// the line after the last one, or to the end of the buffer.
func (s Selection) Range(buf *buffer.Buffer) Range {
	start, end := s.Start(), s.End()
	if s.Linewise {
		first, last := start.Line, end.Line
		if last+1 < buf.LineCount() {
			return Range{Start: Point{Line: first}, End: Point{Line: last + 1}}
		}
		return Range{Start: Point{Line: first}, End: Point{Line: last, Col: buf.LineLen(last)}}
	}
	if end.Col < buf.LineLen(end.Line) {
		end.Col++
	}
	return Range{Start: buf.Clamp(start), End: buf.Clamp(end)}
}

// Lines returns the first and last line touched by the selection.
func (s Selection) Lines() (first, last int) {
	return s.Start().Line, s.End().Line
}

// Clamp returns a selection with both ends moved inside buf.
func (s Selection) Clamp(buf *buffer.Buffer) Selection {
	s.Anchor = buf.Clamp(s.Anchor)
	s.Head = buf.Clamp(s.Head)
	return s
}

// String returns a string representation of the selection.
func (s Selection) String() string {
	kind := "char"
	if s.Linewise {
		kind = "line"
	}
	return fmt.Sprintf("Selection(%s %s→%s)", kind, s.Anchor, s.Head)
}
