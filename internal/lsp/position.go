package lsp

import "github.com/dshills/accepted/internal/engine/buffer"

// PositionOf converts a grapheme-addressed point to an LSP position. line
// is the text of p.Line.
func PositionOf(line string, p buffer.Point) Position {
	return Position{Line: p.Line, Character: buffer.UTF16Col(line, p.Col)}
}

// PointOf converts an LSP position to a grapheme-addressed point. line is
// the text of pos.Line.
func PointOf(line string, pos Position) buffer.Point {
	return buffer.Point{Line: pos.Line, Col: buffer.ColFromUTF16(line, pos.Character)}
}
