package history

import (
	"errors"
	"fmt"

	"github.com/dshills/accepted/internal/engine/buffer"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrDiverged means the buffer no longer holds the text an operation
	// expects. It indicates an edit that bypassed the history.
	ErrDiverged = errors.New("buffer diverged from history")
)

// DefaultMaxEntries bounds the log when New is given a non-positive size.
const DefaultMaxEntries = 1000

// History is a linear log of undo entries with a movable index.
// Entries before the index are undoable, entries at or after it are
// redoable. Pushing a new entry truncates the redo tail.
//
// History is not safe for concurrent use.
type History struct {
	entries []*Entry
	index   int

	// saved is the index at which the buffer was last written, or -1 when
	// that state is no longer reachable.
	saved int

	group      *Entry
	groupDepth int

	maxEntries int
}

// New creates a new history manager.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Push records an operation that has already been applied to the buffer.
// before and after are the cursor positions around the edit.
func (h *History) Push(op Operation, before, after buffer.Point) {
	if h.groupDepth > 0 {
		if h.group == nil {
			h.group = &Entry{}
		}
		h.group.add(op, before, after)
		return
	}
	e := &Entry{}
	e.add(op, before, after)
	h.commit(e)
}

// PushStandalone records op as its own undo step even while a group is
// open. Operations already in the group are committed before it, and the
// group continues with a fresh entry afterwards.
func (h *History) PushStandalone(op Operation, before, after buffer.Point) {
	h.flush()
	e := &Entry{}
	e.add(op, before, after)
	h.commit(e)
}

func (h *History) commit(e *Entry) {
	if h.saved > h.index {
		h.saved = -1
	}
	h.entries = append(h.entries[:h.index], e)
	h.index++

	if excess := len(h.entries) - h.maxEntries; excess > 0 {
		h.entries = h.entries[excess:]
		h.index -= excess
		if h.saved >= 0 {
			h.saved -= excess
			if h.saved < 0 {
				h.saved = -1
			}
		}
	}
}

// BeginGroup starts a group. Operations pushed until the matching EndGroup
// form a single undo step. Groups nest; only the outermost one commits.
func (h *History) BeginGroup() {
	h.groupDepth++
}

// EndGroup closes a group opened with BeginGroup.
func (h *History) EndGroup() {
	if h.groupDepth == 0 {
		return
	}
	h.groupDepth--
	if h.groupDepth == 0 {
		h.flush()
	}
}

func (h *History) flush() {
	g := h.group
	h.group = nil
	if g != nil && len(g.Operations) > 0 {
		h.commit(g)
	}
}

// IsGrouping returns true if a group is open.
func (h *History) IsGrouping() bool {
	return h.groupDepth > 0
}

// Undo reverts the entry before the index and returns it so the caller can
// restore CursorBefore. An open group is closed first.
func (h *History) Undo(buf *buffer.Buffer) (*Entry, error) {
	h.closeGroups()
	if h.index == 0 {
		return nil, ErrNothingToUndo
	}
	e := h.entries[h.index-1]
	for i := len(e.Operations) - 1; i >= 0; i-- {
		if err := e.Operations[i].Revert(buf); err != nil {
			return nil, fmt.Errorf("undo: %w", err)
		}
	}
	h.index--
	return e, nil
}

// Redo reapplies the entry at the index.
func (h *History) Redo(buf *buffer.Buffer) (*Entry, error) {
	h.closeGroups()
	if h.index == len(h.entries) {
		return nil, ErrNothingToRedo
	}
	e := h.entries[h.index]
	for _, op := range e.Operations {
		if err := op.Apply(buf); err != nil {
			return nil, fmt.Errorf("redo: %w", err)
		}
	}
	h.index++
	return e, nil
}

func (h *History) closeGroups() {
	if h.groupDepth > 0 {
		h.groupDepth = 0
		h.flush()
	}
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return h.index > 0 || (h.group != nil && len(h.group.Operations) > 0)
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return h.index < len(h.entries)
}

// UndoCount returns the number of committed undo steps available.
func (h *History) UndoCount() int {
	return h.index
}

// RedoCount returns the number of redo steps available.
func (h *History) RedoCount() int {
	return len(h.entries) - h.index
}

// MarkSaved records the current position as the saved state.
func (h *History) MarkSaved() {
	h.closeGroups()
	h.saved = h.index
}

// Dirty reports whether the content differs from the saved state.
func (h *History) Dirty() bool {
	if h.group != nil && len(h.group.Operations) > 0 {
		return true
	}
	return h.saved != h.index
}

// Clear removes all history and treats the current content as saved.
func (h *History) Clear() {
	h.entries = nil
	h.index = 0
	h.saved = 0
	h.group = nil
	h.groupDepth = 0
}
