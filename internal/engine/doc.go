// Package engine provides the editing core of acc: the Document.
//
// A Document combines the sub-packages into the model the rest of the
// editor works against:
//
//   - buffer: line storage with grapheme-addressed columns
//   - cursor: the visual-mode selection model
//   - history: linear undo log with grouping and saved-state tracking
//
// # Edits
//
// Insert, Delete, Replace and ReplaceAll each append one record to the
// history, move the cursor, bump Revision, invalidate the cached syntax
// spans and drop diagnostics at or after the first edited line:
//
//	doc := engine.New(engine.WithText("int main() {}\n"), engine.WithPath("a.cpp"))
//	doc.Insert(engine.Point{Line: 0, Col: 0}, "// hi\n")
//	doc.Undo()
//
// Addressing text that does not exist is a programming error and panics
// with an *InvariantError.
//
// # Motions
//
// MoveCursor and Target implement the vi motions used by the modal input
// layer. Every motion clamps at the edges of the document; find motions
// report failure instead of moving.
//
// # Thread Safety
//
// A Document belongs to the main loop. Tool jobs receive copies of Text()
// and report back through events; they never hold a Document.
package engine
