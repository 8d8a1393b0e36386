package history

import (
	"fmt"
	"time"

	"github.com/dshills/accepted/internal/engine/buffer"
)

// Operation represents a single undoable edit: the text OldText starting at
// At was replaced with NewText. Pure inserts have an empty OldText and pure
// deletes an empty NewText.
type Operation struct {
	At      buffer.Point
	OldText string
	NewText string

	Timestamp time.Time
}

// NewInsertOperation creates an operation for an insertion.
func NewInsertOperation(at buffer.Point, text string) Operation {
	return Operation{At: at, NewText: text, Timestamp: time.Now()}
}

// NewDeleteOperation creates an operation for a deletion.
func NewDeleteOperation(at buffer.Point, deleted string) Operation {
	return Operation{At: at, OldText: deleted, Timestamp: time.Now()}
}

// NewReplaceOperation creates an operation for a replacement.
func NewReplaceOperation(at buffer.Point, oldText, newText string) Operation {
	return Operation{At: at, OldText: oldText, NewText: newText, Timestamp: time.Now()}
}

// IsInsert returns true if this operation is a pure insertion.
func (op Operation) IsInsert() bool {
	return op.OldText == "" && op.NewText != ""
}

// IsDelete returns true if this operation is a pure deletion.
func (op Operation) IsDelete() bool {
	return op.OldText != "" && op.NewText == ""
}

// Apply performs the operation on buf.
func (op Operation) Apply(buf *buffer.Buffer) error {
	return replace(buf, op.At, op.OldText, op.NewText)
}

// Revert undoes the operation on buf.
func (op Operation) Revert(buf *buffer.Buffer) error {
	return replace(buf, op.At, op.NewText, op.OldText)
}

func replace(buf *buffer.Buffer, at buffer.Point, oldText, newText string) error {
	if oldText != "" {
		r := buffer.Range{Start: at, End: buffer.EndOf(at, oldText)}
		if buf.TextRange(r) != oldText {
			return fmt.Errorf("replace at %s: %w", at, ErrDiverged)
		}
		if _, err := buf.Delete(r); err != nil {
			return err
		}
	}
	if newText != "" {
		if _, err := buf.Insert(at, newText); err != nil {
			return err
		}
	}
	return nil
}

// Entry is one undo step: the operations recorded between a BeginGroup and
// its EndGroup, or a single ungrouped operation.
type Entry struct {
	Operations   []Operation
	CursorBefore buffer.Point
	CursorAfter  buffer.Point
	FirstLine    int
}

func (e *Entry) add(op Operation, before, after buffer.Point) {
	if len(e.Operations) == 0 {
		e.CursorBefore = before
		e.FirstLine = op.At.Line
	}
	if op.At.Line < e.FirstLine {
		e.FirstLine = op.At.Line
	}
	e.Operations = append(e.Operations, op)
	e.CursorAfter = after
}
