package cursor

import (
	"testing"

	"github.com/dshills/accepted/internal/engine/buffer"
)

func TestSelectionBounds(t *testing.T) {
	s := NewSelection(Point{Line: 2, Col: 1}, Point{Line: 0, Col: 3})

	if s.IsForward() {
		t.Error("expected backward selection")
	}
	if s.Start() != (Point{Line: 0, Col: 3}) || s.End() != (Point{Line: 2, Col: 1}) {
		t.Errorf("bounds wrong: %s", s)
	}
	if f := s.Flip(); !f.IsForward() {
		t.Error("flip should produce a forward selection")
	}
	if c := s.Collapse(); !c.IsEmpty() || c.Head != s.Head {
		t.Errorf("collapse wrong: %s", c)
	}
}

func TestSelectionRange(t *testing.T) {
	buf := buffer.NewBufferFromString("abc\ndef\nghi")

	tests := []struct {
		name string
		sel  Selection
		want string
	}{
		{"charwise inclusive", NewSelection(Point{Line: 0, Col: 1}, Point{Line: 0, Col: 2}), "bc"},
		{"charwise backward", NewSelection(Point{Line: 1, Col: 1}, Point{Line: 0, Col: 2}), "c\nde"},
		{"single grapheme", NewSelection(Point{Line: 2, Col: 0}, Point{Line: 2, Col: 0}), "g"},
		{"linewise middle", NewLineSelection(Point{Line: 0, Col: 2}, Point{Line: 1, Col: 0}), "abc\ndef\n"},
		{"linewise last", NewLineSelection(Point{Line: 2, Col: 1}, Point{Line: 2, Col: 1}), "ghi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buf.TextRange(tt.sel.Range(buf)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectionClamp(t *testing.T) {
	buf := buffer.NewBufferFromString("ab")
	s := NewSelection(Point{Line: 3, Col: 0}, Point{Line: 0, Col: 9}).Clamp(buf)

	if s.Anchor != (Point{Line: 0, Col: 2}) || s.Head != (Point{Line: 0, Col: 2}) {
		t.Errorf("clamp wrong: %s", s)
	}
}
