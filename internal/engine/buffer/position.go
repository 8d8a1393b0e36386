package buffer

import "fmt"

// Point represents a line and column position.
// Both Line and Col are 0-indexed. Col counts grapheme clusters from the
// start of the line, so a combining sequence or an emoji is one column.
type Point struct {
	Line int // 0-indexed line number
	Col  int // 0-indexed grapheme column
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Col)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Point) Compare(other Point) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Col < other.Col {
		return -1
	}
	if p.Col > other.Col {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Point) Before(other Point) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Point) After(other Point) bool {
	return p.Compare(other) > 0
}

// IsZero returns true if this is the zero point (0:0).
func (p Point) IsZero() bool {
	return p.Line == 0 && p.Col == 0
}

// PointUTF16 is a line and column position where the column is measured
// in UTF-16 code units, as used by the language server protocol.
type PointUTF16 struct {
	Line int
	Col  int
}

// String returns a human-readable representation of the point.
func (p PointUTF16) String() string {
	return fmt.Sprintf("(%d:%d utf16)", p.Line, p.Col)
}

// MinPoint returns the earlier of two points.
func MinPoint(a, b Point) Point {
	if a.Before(b) {
		return a
	}
	return b
}

// MaxPoint returns the later of two points.
func MaxPoint(a, b Point) Point {
	if a.After(b) {
		return a
	}
	return b
}
