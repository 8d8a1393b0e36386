// Package buffer provides the line store behind an editor document.
//
// Text is held as a slice of lines with LF terminators stripped. Positions
// are Points whose column counts grapheme clusters (segmented with uniseg),
// so cursor movement never lands inside a combining sequence. Helpers convert
// between grapheme columns, byte offsets, UTF-16 columns (for LSP) and
// terminal display columns.
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("hello\nworld")
//	end, _ := buf.Insert(buffer.Point{Line: 1, Col: 5}, "!")
//	removed, _ := buf.Delete(buffer.Range{Start: buffer.Point{}, End: buffer.Point{Line: 1}})
//
// Buffer performs no undo bookkeeping; that lives in the history package.
package buffer
