package history

import (
	"errors"
	"testing"

	"github.com/dshills/accepted/internal/engine/buffer"
	"pgregory.net/rapid"
)

func pt(line, col int) buffer.Point {
	return buffer.Point{Line: line, Col: col}
}

// insert applies an insert to buf and records it.
func insert(t *testing.T, h *History, buf *buffer.Buffer, at buffer.Point, text string) {
	t.Helper()
	end, err := buf.Insert(at, text)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	h.Push(NewInsertOperation(at, text), at, end)
}

func TestOperationKinds(t *testing.T) {
	if !NewInsertOperation(pt(0, 0), "a").IsInsert() {
		t.Error("expected insert")
	}
	if !NewDeleteOperation(pt(0, 0), "a").IsDelete() {
		t.Error("expected delete")
	}
	r := NewReplaceOperation(pt(0, 0), "a", "b")
	if r.IsInsert() || r.IsDelete() {
		t.Error("replace is neither insert nor delete")
	}
}

func TestUndoRedo(t *testing.T) {
	buf := buffer.NewBufferFromString("hello")
	h := New(0)

	insert(t, h, buf, pt(0, 5), " world")
	if buf.Text() != "hello world" {
		t.Fatalf("got %q", buf.Text())
	}

	e, err := h.Undo(buf)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if buf.Text() != "hello" {
		t.Errorf("after undo got %q", buf.Text())
	}
	if e.CursorBefore != pt(0, 5) {
		t.Errorf("cursor before = %s", e.CursorBefore)
	}

	e, err = h.Redo(buf)
	if err != nil {
		t.Fatalf("redo: %v", err)
	}
	if buf.Text() != "hello world" {
		t.Errorf("after redo got %q", buf.Text())
	}
	if e.CursorAfter != pt(0, 11) {
		t.Errorf("cursor after = %s", e.CursorAfter)
	}
}

func TestUndoBoundaries(t *testing.T) {
	buf := buffer.NewBuffer()
	h := New(10)

	if _, err := h.Undo(buf); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}
	if _, err := h.Redo(buf); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestPushTruncatesRedo(t *testing.T) {
	buf := buffer.NewBuffer()
	h := New(10)

	insert(t, h, buf, pt(0, 0), "a")
	insert(t, h, buf, pt(0, 1), "b")
	if _, err := h.Undo(buf); err != nil {
		t.Fatal(err)
	}
	insert(t, h, buf, pt(0, 1), "c")

	if h.CanRedo() {
		t.Error("redo tail should be truncated")
	}
	if buf.Text() != "ac" {
		t.Errorf("got %q", buf.Text())
	}
	if h.UndoCount() != 2 {
		t.Errorf("undo count = %d", h.UndoCount())
	}
}

func TestGroupIsOneStep(t *testing.T) {
	buf := buffer.NewBufferFromString("x")
	h := New(10)

	h.BeginGroup()
	insert(t, h, buf, pt(0, 1), "a")
	h.BeginGroup()
	insert(t, h, buf, pt(0, 2), "b")
	h.EndGroup()
	insert(t, h, buf, pt(0, 3), "\nc")
	h.EndGroup()

	if h.UndoCount() != 1 {
		t.Fatalf("expected one entry, got %d", h.UndoCount())
	}
	e, err := h.Undo(buf)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "x" {
		t.Errorf("got %q", buf.Text())
	}
	if e.CursorBefore != pt(0, 1) || e.CursorAfter != pt(1, 1) {
		t.Errorf("cursors = %s %s", e.CursorBefore, e.CursorAfter)
	}
}

func TestEmptyGroupAddsNothing(t *testing.T) {
	h := New(10)
	h.BeginGroup()
	h.EndGroup()
	if h.CanUndo() {
		t.Error("empty group should not create an entry")
	}
}

func TestDirtyTracking(t *testing.T) {
	buf := buffer.NewBuffer()
	h := New(10)

	if h.Dirty() {
		t.Error("fresh history should be clean")
	}
	insert(t, h, buf, pt(0, 0), "a")
	if !h.Dirty() {
		t.Error("expected dirty after edit")
	}
	h.MarkSaved()
	if h.Dirty() {
		t.Error("expected clean after save")
	}
	insert(t, h, buf, pt(0, 1), "b")
	if _, err := h.Undo(buf); err != nil {
		t.Fatal(err)
	}
	if h.Dirty() {
		t.Error("undo back to saved state should be clean")
	}
	if _, err := h.Undo(buf); err != nil {
		t.Fatal(err)
	}
	insert(t, h, buf, pt(0, 0), "z")
	if !h.Dirty() {
		t.Error("saved state was truncated, expected dirty")
	}
}

func TestMaxEntries(t *testing.T) {
	buf := buffer.NewBuffer()
	h := New(3)

	for i := 0; i < 5; i++ {
		insert(t, h, buf, pt(0, i), "x")
	}
	if h.UndoCount() != 3 {
		t.Errorf("undo count = %d, want 3", h.UndoCount())
	}
	for h.CanUndo() {
		if _, err := h.Undo(buf); err != nil {
			t.Fatal(err)
		}
	}
	if buf.Text() != "xx" {
		t.Errorf("got %q", buf.Text())
	}
}

func TestRevertDetectsDivergence(t *testing.T) {
	buf := buffer.NewBuffer()
	h := New(10)
	insert(t, h, buf, pt(0, 0), "abc")

	buf.SetText("xyz")
	if _, err := h.Undo(buf); !errors.Is(err, ErrDiverged) {
		t.Errorf("expected ErrDiverged, got %v", err)
	}
}

// TestUndoRedoRoundTrip checks that undoing every edit restores the original
// text and redoing them all restores the final text.
func TestUndoRedoRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		initial := rapid.StringMatching(`[a-z\n]{0,20}`).Draw(rt, "initial")
		buf := buffer.NewBufferFromString(initial)
		h := New(1000)

		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			line := rapid.IntRange(0, buf.LineCount()-1).Draw(rt, "line")
			col := rapid.IntRange(0, buf.LineLen(line)).Draw(rt, "col")
			at := pt(line, col)
			if rapid.Bool().Draw(rt, "insert") {
				text := rapid.StringMatching(`[a-z\n]{1,5}`).Draw(rt, "text")
				end, err := buf.Insert(at, text)
				if err != nil {
					rt.Fatalf("insert: %v", err)
				}
				h.Push(NewInsertOperation(at, text), at, end)
				continue
			}
			end := buf.Clamp(pt(line+rapid.IntRange(0, 2).Draw(rt, "dl"), rapid.IntRange(0, 5).Draw(rt, "dc")))
			if end.Before(at) {
				at, end = end, at
			}
			removed, err := buf.Delete(buffer.Range{Start: at, End: end})
			if err != nil {
				rt.Fatalf("delete: %v", err)
			}
			if removed != "" {
				h.Push(NewDeleteOperation(at, removed), end, at)
			}
		}

		final := buf.Text()
		for h.CanUndo() {
			if _, err := h.Undo(buf); err != nil {
				rt.Fatalf("undo: %v", err)
			}
		}
		if buf.Text() != initial {
			rt.Fatalf("undo all: got %q want %q", buf.Text(), initial)
		}
		for h.CanRedo() {
			if _, err := h.Redo(buf); err != nil {
				rt.Fatalf("redo: %v", err)
			}
		}
		if buf.Text() != final {
			rt.Fatalf("redo all: got %q want %q", buf.Text(), final)
		}
	})
}
