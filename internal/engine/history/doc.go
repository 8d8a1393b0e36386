// Package history provides undo/redo for the editor engine.
//
// The history is a linear log of entries with a movable index. Each entry
// holds one or more Operations (text replaced at a point) together with the
// cursor before and after the edit:
//
//	h := history.New(1000)
//	h.Push(history.NewInsertOperation(at, "x"), before, after)
//	entry, err := h.Undo(buf)   // buf is back to its previous text
//	entry, err = h.Redo(buf)
//
// Undo moves the index back and Redo moves it forward. A Push after an Undo
// truncates everything past the index.
//
// # Grouping
//
// Operations pushed between BeginGroup and EndGroup form one undo step.
// Insert mode opens a group on entry and closes it on Escape, so a whole
// typing run undoes at once.
//
// # Saved state
//
// MarkSaved remembers the index at which the file was written; Dirty is
// true whenever the index differs from it, so undoing back to the saved
// point makes the buffer clean again.
package history
