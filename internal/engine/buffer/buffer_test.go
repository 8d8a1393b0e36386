package buffer

import (
	"errors"
	"testing"
)

func TestNewBuffer(t *testing.T) {
	b := NewBuffer()

	if b.LineCount() != 1 {
		t.Errorf("expected 1 line, got %d", b.LineCount())
	}
	if b.Text() != "" {
		t.Errorf("expected empty text, got %q", b.Text())
	}
}

func TestNewBufferFromStringMultiline(t *testing.T) {
	b := NewBufferFromString("line1\r\nline2\nline3")

	if b.LineCount() != 3 {
		t.Fatalf("expected 3 lines, got %d", b.LineCount())
	}
	for i, want := range []string{"line1", "line2", "line3"} {
		if got := b.Line(i); got != want {
			t.Errorf("line %d: expected %q, got %q", i, want, got)
		}
	}
	if b.Text() != "line1\nline2\nline3" {
		t.Errorf("CRLF not normalized: %q", b.Text())
	}
}

func TestBufferInsert(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		at      Point
		text    string
		want    string
		wantEnd Point
	}{
		{"middle", "hello world", Point{0, 5}, ",", "hello, world", Point{0, 6}},
		{"start", "abc", Point{0, 0}, "x", "xabc", Point{0, 1}},
		{"end", "abc", Point{0, 3}, "def", "abcdef", Point{0, 6}},
		{"split line", "abcdef", Point{0, 3}, "\n", "abc\ndef", Point{1, 0}},
		{"multi line", "ad", Point{0, 1}, "b\nc\n", "ab\nc\nd", Point{2, 0}},
		{"second line", "one\ntwo", Point{1, 3}, "!", "one\ntwo!", Point{1, 4}},
		{"grapheme column", "éx", Point{0, 1}, "y", "éyx", Point{0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBufferFromString(tt.initial)
			end, err := b.Insert(tt.at, tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.Text() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, b.Text())
			}
			if end != tt.wantEnd {
				t.Errorf("expected end %s, got %s", tt.wantEnd, end)
			}
			if EndOf(tt.at, tt.text) != tt.wantEnd {
				t.Errorf("EndOf disagrees with Insert: %s", EndOf(tt.at, tt.text))
			}
		})
	}
}

func TestBufferInsertOutOfRange(t *testing.T) {
	b := NewBufferFromString("abc")

	for _, p := range []Point{{0, 4}, {1, 0}, {-1, 0}, {0, -1}} {
		if _, err := b.Insert(p, "x"); !errors.Is(err, ErrPointOutOfRange) {
			t.Errorf("insert at %s: expected ErrPointOutOfRange, got %v", p, err)
		}
	}
	if b.Text() != "abc" {
		t.Errorf("buffer modified by failed insert: %q", b.Text())
	}
}

func TestBufferDelete(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		r       Range
		want    string
		removed string
	}{
		{"within line", "hello world", Range{Point{0, 5}, Point{0, 11}}, "hello", " world"},
		{"join lines", "abc\ndef", Range{Point{0, 3}, Point{1, 0}}, "abcdef", "\n"},
		{"across lines", "one\ntwo\nthree", Range{Point{0, 1}, Point{2, 2}}, "oree", "ne\ntwo\nth"},
		{"empty", "abc", Range{Point{0, 1}, Point{0, 1}}, "abc", ""},
		{"all", "a\nb", Range{Point{0, 0}, Point{1, 1}}, "", "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBufferFromString(tt.initial)
			removed, err := b.Delete(tt.r)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if removed != tt.removed {
				t.Errorf("expected removed %q, got %q", tt.removed, removed)
			}
			if b.Text() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, b.Text())
			}
		})
	}
}

func TestBufferDeleteInvalidRange(t *testing.T) {
	b := NewBufferFromString("abc")

	_, err := b.Delete(Range{Start: Point{0, 2}, End: Point{0, 1}})
	if !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}

	_, err = b.Delete(Range{Start: Point{0, 0}, End: Point{3, 0}})
	if !errors.Is(err, ErrPointOutOfRange) {
		t.Errorf("expected ErrPointOutOfRange, got %v", err)
	}
}

func TestBufferClamp(t *testing.T) {
	b := NewBufferFromString("abc\nde")

	tests := []struct {
		in, want Point
	}{
		{Point{0, 1}, Point{0, 1}},
		{Point{0, 9}, Point{0, 3}},
		{Point{5, 0}, Point{1, 2}},
		{Point{-1, 4}, Point{0, 0}},
		{Point{1, -3}, Point{1, 0}},
	}
	for _, tt := range tests {
		if got := b.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestBufferOffsets(t *testing.T) {
	b := NewBufferFromString("héllo\nwörld")

	tests := []struct {
		p   Point
		off int
	}{
		{Point{0, 0}, 0},
		{Point{0, 2}, 3},
		{Point{0, 5}, 6},
		{Point{1, 0}, 7},
		{Point{1, 2}, 10},
	}
	for _, tt := range tests {
		if got := b.ByteOffset(tt.p); got != tt.off {
			t.Errorf("ByteOffset(%s) = %d, want %d", tt.p, got, tt.off)
		}
		if got := b.PointAt(tt.off); got != tt.p {
			t.Errorf("PointAt(%d) = %s, want %s", tt.off, got, tt.p)
		}
	}
	if got := b.PointAt(1000); got != b.End() {
		t.Errorf("PointAt past end = %s, want %s", got, b.End())
	}
}

func TestUTF16Conversion(t *testing.T) {
	line := "a😀b"

	if got := UTF16Col(line, 2); got != 3 {
		t.Errorf("UTF16Col = %d, want 3", got)
	}
	if got := ColFromUTF16(line, 3); got != 2 {
		t.Errorf("ColFromUTF16 = %d, want 2", got)
	}
	if got := ColFromUTF16(line, 99); got != 3 {
		t.Errorf("ColFromUTF16 past end = %d, want 3", got)
	}
}

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{"abc", 3},
		{"\tx", 5},
		{"ab\tx", 5},
		{"日本", 4},
	}
	for _, tt := range tests {
		if got := DisplayWidth(tt.s, 4); got != tt.want {
			t.Errorf("DisplayWidth(%q) = %d, want %d", tt.s, got, tt.want)
		}
	}
	if got := DisplayColumn("日本x", 2, 4); got != 4 {
		t.Errorf("DisplayColumn = %d, want 4", got)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	b := NewBufferFromString("one\ntwo")
	snap := b.Snapshot()

	if _, err := b.Insert(Point{0, 0}, "zero\n"); err != nil {
		t.Fatal(err)
	}
	if snap.Text() != "one\ntwo" {
		t.Errorf("snapshot changed: %q", snap.Text())
	}
	if snap.LineCount() != 2 || snap.Line(1) != "two" {
		t.Errorf("unexpected snapshot lines")
	}
}

func TestPointOperations(t *testing.T) {
	a := Point{Line: 1, Col: 4}
	b := Point{Line: 2, Col: 0}

	if !a.Before(b) || a.After(b) {
		t.Error("expected a before b")
	}
	if MinPoint(b, a) != a || MaxPoint(a, b) != b {
		t.Error("min/max wrong")
	}
	r := NewRange(b, a)
	if r.Start != a || r.End != b {
		t.Errorf("NewRange did not order points: %s", r)
	}
	if !r.Contains(Point{1, 9}) || r.Contains(b) {
		t.Error("Contains wrong")
	}
}
