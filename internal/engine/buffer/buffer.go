package buffer

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by buffer operations.
var (
	ErrPointOutOfRange = errors.New("point out of range")
	ErrRangeInvalid    = errors.New("invalid range")
)

// Buffer stores text as a slice of lines without their terminators.
// A buffer always holds at least one (possibly empty) line.
//
// Buffer is not safe for concurrent use. It is owned by the editor's main
// loop; background work operates on Snapshot copies.
type Buffer struct {
	lines []string
}

// NewBuffer creates a new empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{lines: []string{""}}
}

// NewBufferFromString creates a buffer holding s.
// Line endings are normalized to LF.
func NewBufferFromString(s string) *Buffer {
	b := &Buffer{}
	b.SetText(s)
	return b
}

// SetText replaces the whole content of the buffer.
func (b *Buffer) SetText(s string) {
	b.lines = strings.Split(NormalizeLineEndings(s), "\n")
}

// Text returns the full content joined with LF.
func (b *Buffer) Text() string {
	return strings.Join(b.lines, "\n")
}

// LineCount returns the number of lines. It is never less than one.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Line returns the text of line i without its terminator.
// Out of range lines return the empty string.
func (b *Buffer) Line(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return b.lines[i]
}

// LineLen returns the length of line i in grapheme clusters.
func (b *Buffer) LineLen(i int) int {
	return GraphemeCount(b.Line(i))
}

// End returns the point just past the last grapheme of the buffer.
func (b *Buffer) End() Point {
	last := len(b.lines) - 1
	return Point{Line: last, Col: b.LineLen(last)}
}

// Valid reports whether p addresses a position inside the buffer.
// The column one past the last grapheme of a line is valid.
func (b *Buffer) Valid(p Point) bool {
	if p.Line < 0 || p.Line >= len(b.lines) || p.Col < 0 {
		return false
	}
	return p.Col <= b.LineLen(p.Line)
}

// Clamp moves p to the nearest valid position.
func (b *Buffer) Clamp(p Point) Point {
	if p.Line < 0 {
		return Point{}
	}
	if p.Line >= len(b.lines) {
		return b.End()
	}
	if p.Col < 0 {
		p.Col = 0
	}
	if n := b.LineLen(p.Line); p.Col > n {
		p.Col = n
	}
	return p
}

// Insert inserts text at p and returns the point just after the inserted text.
func (b *Buffer) Insert(p Point, text string) (Point, error) {
	if !b.Valid(p) {
		return p, fmt.Errorf("insert at %s: %w", p, ErrPointOutOfRange)
	}
	text = NormalizeLineEndings(text)
	if text == "" {
		return p, nil
	}

	line := b.lines[p.Line]
	at := ByteIndex(line, p.Col)
	head, tail := line[:at], line[at:]

	parts := strings.Split(text, "\n")
	if len(parts) == 1 {
		b.lines[p.Line] = head + text + tail
		return Point{Line: p.Line, Col: p.Col + GraphemeCount(text)}, nil
	}

	last := parts[len(parts)-1]
	repl := make([]string, len(parts))
	repl[0] = head + parts[0]
	copy(repl[1:], parts[1:len(parts)-1])
	repl[len(parts)-1] = last + tail

	lines := make([]string, 0, len(b.lines)+len(parts)-1)
	lines = append(lines, b.lines[:p.Line]...)
	lines = append(lines, repl...)
	lines = append(lines, b.lines[p.Line+1:]...)
	b.lines = lines

	return Point{Line: p.Line + len(parts) - 1, Col: GraphemeCount(last)}, nil
}

// Delete removes the text in r and returns it.
func (b *Buffer) Delete(r Range) (string, error) {
	if !r.IsValid() {
		return "", fmt.Errorf("delete %s: %w", r, ErrRangeInvalid)
	}
	if !b.Valid(r.Start) || !b.Valid(r.End) {
		return "", fmt.Errorf("delete %s: %w", r, ErrPointOutOfRange)
	}
	removed := b.TextRange(r)
	if removed == "" {
		return "", nil
	}

	first := b.lines[r.Start.Line]
	last := b.lines[r.End.Line]
	joined := first[:ByteIndex(first, r.Start.Col)] + last[ByteIndex(last, r.End.Col):]

	lines := make([]string, 0, len(b.lines)-(r.End.Line-r.Start.Line))
	lines = append(lines, b.lines[:r.Start.Line]...)
	lines = append(lines, joined)
	lines = append(lines, b.lines[r.End.Line+1:]...)
	b.lines = lines

	return removed, nil
}

// TextRange returns the text in r. Invalid ranges yield the empty string.
func (b *Buffer) TextRange(r Range) string {
	if !r.IsValid() || !b.Valid(r.Start) || !b.Valid(r.End) {
		return ""
	}
	first := b.lines[r.Start.Line]
	if r.Start.Line == r.End.Line {
		return first[ByteIndex(first, r.Start.Col):ByteIndex(first, r.End.Col)]
	}

	var sb strings.Builder
	sb.WriteString(first[ByteIndex(first, r.Start.Col):])
	for i := r.Start.Line + 1; i < r.End.Line; i++ {
		sb.WriteByte('\n')
		sb.WriteString(b.lines[i])
	}
	last := b.lines[r.End.Line]
	sb.WriteByte('\n')
	sb.WriteString(last[:ByteIndex(last, r.End.Col)])
	return sb.String()
}

// EndOf returns the point reached by inserting text at p.
// It does not modify the buffer.
func EndOf(p Point, text string) Point {
	parts := strings.Split(NormalizeLineEndings(text), "\n")
	if len(parts) == 1 {
		return Point{Line: p.Line, Col: p.Col + GraphemeCount(text)}
	}
	return Point{Line: p.Line + len(parts) - 1, Col: GraphemeCount(parts[len(parts)-1])}
}

// ByteOffset returns the byte offset of p in Text().
func (b *Buffer) ByteOffset(p Point) int {
	p = b.Clamp(p)
	off := 0
	for i := 0; i < p.Line; i++ {
		off += len(b.lines[i]) + 1
	}
	return off + ByteIndex(b.lines[p.Line], p.Col)
}

// PointAt converts a byte offset in Text() to a point, clamping at the ends.
func (b *Buffer) PointAt(off int) Point {
	if off <= 0 {
		return Point{}
	}
	for i, line := range b.lines {
		if off <= len(line) {
			return Point{Line: i, Col: ColumnAt(line, off)}
		}
		off -= len(line) + 1
	}
	return b.End()
}

// Snapshot returns an immutable copy of the current content.
func (b *Buffer) Snapshot() *Snapshot {
	lines := make([]string, len(b.lines))
	copy(lines, b.lines)
	return &Snapshot{lines: lines}
}

// Snapshot is a read-only copy of a buffer's lines.
// It is safe to share with background goroutines.
type Snapshot struct {
	lines []string
}

// Text returns the snapshot content joined with LF.
func (s *Snapshot) Text() string {
	return strings.Join(s.lines, "\n")
}

// LineCount returns the number of lines in the snapshot.
func (s *Snapshot) LineCount() int {
	return len(s.lines)
}

// Line returns line i of the snapshot.
func (s *Snapshot) Line(i int) string {
	if i < 0 || i >= len(s.lines) {
		return ""
	}
	return s.lines[i]
}
