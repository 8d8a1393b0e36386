package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/dshills/accepted/internal/engine/buffer"
	"github.com/dshills/accepted/internal/engine/cursor"
	"github.com/dshills/accepted/internal/engine/history"
	"github.com/dshills/accepted/internal/syntax"
)

// Re-export commonly used types for convenience.
type (
	// Point represents a line/column position.
	Point = buffer.Point

	// Range represents a half-open span between two points.
	Range = buffer.Range

	// Selection represents a visual-mode selection.
	Selection = cursor.Selection
)

// Document is one open file: its text, cursor, selection, undo history,
// diagnostics and cached highlight spans.
//
// Document is owned by the editor's main loop and is not safe for concurrent
// use. Background work receives copies of the text and posts results back.
type Document struct {
	buf  *buffer.Buffer
	hist *history.History

	cursor  Point
	wantCol int
	sel     *Selection

	path        string
	indentWidth int
	hardTab     bool

	revision uint64
	diags    map[DiagnosticSource][]Diagnostic

	highlighter syntax.Provider
	lang        string
	spans       []syntax.Span
	spansValid  bool

	initText       string
	maxUndoEntries int
}

// New creates a document.
func New(opts ...Option) *Document {
	d := &Document{
		indentWidth:    DefaultIndentWidth,
		maxUndoEntries: DefaultMaxUndoEntries,
		highlighter:    syntax.None{},
		diags:          make(map[DiagnosticSource][]Diagnostic),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.buf = buffer.NewBufferFromString(d.initText)
	d.initText = ""
	d.hist = history.New(d.maxUndoEntries)
	return d
}

// Path returns the file the document is saved to.
func (d *Document) Path() string {
	return d.path
}

// SetPath changes the file the document is saved to.
func (d *Document) SetPath(path string) {
	d.path = path
}

// Text returns the full content.
func (d *Document) Text() string {
	return d.buf.Text()
}

// Line returns line i without its terminator.
func (d *Document) Line(i int) string {
	return d.buf.Line(i)
}

// LineCount returns the number of lines. It is never less than one.
func (d *Document) LineCount() int {
	return d.buf.LineCount()
}

// LineLen returns the length of line i in grapheme clusters.
func (d *Document) LineLen(i int) int {
	return d.buf.LineLen(i)
}

// TextRange returns the text in r.
func (d *Document) TextRange(r Range) string {
	return d.buf.TextRange(r)
}

// Valid reports whether p is inside the document.
func (d *Document) Valid(p Point) bool {
	return d.buf.Valid(p)
}

// Clamp moves p to the nearest valid position.
func (d *Document) Clamp(p Point) Point {
	return d.buf.Clamp(p)
}

// ByteOffset converts p into a byte offset in Text().
func (d *Document) ByteOffset(p Point) int {
	return d.buf.ByteOffset(p)
}

// PointAt converts a byte offset in Text() into a point.
func (d *Document) PointAt(off int) Point {
	return d.buf.PointAt(off)
}

// Revision increases on every change to the text, including undo and redo.
func (d *Document) Revision() uint64 {
	return d.revision
}

// Dirty reports whether the content differs from the last saved state.
func (d *Document) Dirty() bool {
	return d.hist.Dirty()
}

// MarkSaved records the current content as saved.
func (d *Document) MarkSaved() {
	d.hist.MarkSaved()
}

// Cursor returns the cursor position.
func (d *Document) Cursor() Point {
	return d.cursor
}

// SetCursor moves the cursor to p, clamped into the document.
func (d *Document) SetCursor(p Point) {
	d.cursor = d.buf.Clamp(p)
	d.wantCol = d.cursor.Col
}

// ClampCursorNormal keeps the cursor on a grapheme, as Normal mode requires:
// the column one past the end of a non-empty line moves back onto the last
// grapheme.
func (d *Document) ClampCursorNormal() {
	if n := d.buf.LineLen(d.cursor.Line); n > 0 && d.cursor.Col >= n {
		d.cursor.Col = n - 1
	}
}

// Selection returns the active selection, if any.
func (d *Document) Selection() (Selection, bool) {
	if d.sel == nil {
		return Selection{}, false
	}
	return *d.sel, true
}

// SetSelection starts or updates a charwise selection.
func (d *Document) SetSelection(anchor, head Point) {
	s := cursor.NewSelection(anchor, head).Clamp(d.buf)
	d.sel = &s
}

// SetLineSelection starts or updates a linewise selection.
func (d *Document) SetLineSelection(anchor, head Point) {
	s := cursor.NewLineSelection(anchor, head).Clamp(d.buf)
	d.sel = &s
}

// SelectionRange returns the text the selection covers.
func (d *Document) SelectionRange() (Range, bool) {
	if d.sel == nil {
		return Range{}, false
	}
	return d.sel.Range(d.buf), true
}

// ClearSelection removes the selection.
func (d *Document) ClearSelection() {
	d.sel = nil
}

// BeginGroup starts coalescing edits into one undo step.
func (d *Document) BeginGroup() {
	d.hist.BeginGroup()
}

// EndGroup closes a group opened with BeginGroup.
func (d *Document) EndGroup() {
	d.hist.EndGroup()
}

// InGroup reports whether an undo group is open.
func (d *Document) InGroup() bool {
	return d.hist.IsGrouping()
}

// Insert inserts text at p and leaves the cursor after it.
// It returns the point just after the inserted text.
// Inserting outside the document panics with an *InvariantError.
func (d *Document) Insert(p Point, text string) Point {
	if !d.buf.Valid(p) {
		violate("insert", fmt.Errorf("%s: %w", p, ErrOutOfRange))
	}
	text = buffer.NormalizeLineEndings(text)
	if text == "" {
		return p
	}
	before := d.cursor
	end, err := d.buf.Insert(p, text)
	if err != nil {
		violate("insert", err)
	}
	d.hist.Push(history.NewInsertOperation(p, text), before, end)
	d.setCursorAfterEdit(end)
	d.changed(p.Line)
	return end
}

// Delete removes the text in r and leaves the cursor at its start.
// It returns the removed text.
// Deleting outside the document panics with an *InvariantError.
func (d *Document) Delete(r Range) string {
	if !r.IsValid() || !d.buf.Valid(r.Start) || !d.buf.Valid(r.End) {
		violate("delete", fmt.Errorf("%s: %w", r, ErrOutOfRange))
	}
	if r.IsEmpty() {
		return ""
	}
	before := d.cursor
	removed, err := d.buf.Delete(r)
	if err != nil {
		violate("delete", err)
	}
	d.hist.Push(history.NewDeleteOperation(r.Start, removed), before, r.Start)
	d.setCursorAfterEdit(r.Start)
	d.changed(r.Start.Line)
	return removed
}

// Replace replaces the text in r with text as a single undo record and
// leaves the cursor after the new text.
func (d *Document) Replace(r Range, text string) Point {
	if !r.IsValid() || !d.buf.Valid(r.Start) || !d.buf.Valid(r.End) {
		violate("replace", fmt.Errorf("%s: %w", r, ErrOutOfRange))
	}
	text = buffer.NormalizeLineEndings(text)
	old := d.buf.TextRange(r)
	if old == text {
		d.setCursorAfterEdit(buffer.EndOf(r.Start, text))
		return d.cursor
	}
	before := d.cursor
	if _, err := d.buf.Delete(r); err != nil {
		violate("replace", err)
	}
	end, err := d.buf.Insert(r.Start, text)
	if err != nil {
		violate("replace", err)
	}
	d.hist.Push(history.NewReplaceOperation(r.Start, old, text), before, end)
	d.setCursorAfterEdit(end)
	d.changed(r.Start.Line)
	return end
}

// ReplaceAll swaps the whole content for text as one undo record, kept
// separate from any open group.
// The cursor is carried to the equivalent position in the new text using a
// character diff. It returns false when text equals the current content.
func (d *Document) ReplaceAll(text string) bool {
	text = buffer.NormalizeLineEndings(text)
	old := d.buf.Text()
	if old == text {
		return false
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(old, text, false)

	before := d.cursor
	oldOff := d.buf.ByteOffset(d.cursor)
	firstLine := d.buf.PointAt(firstChange(diffs)).Line

	d.buf.SetText(text)
	after := d.buf.Clamp(d.buf.PointAt(dmp.DiffXIndex(diffs, oldOff)))

	d.hist.PushStandalone(history.NewReplaceOperation(Point{}, old, text), before, after)
	d.setCursorAfterEdit(after)
	d.changed(firstLine)
	return true
}

// firstChange returns the byte offset in the old text of the first edit.
func firstChange(diffs []diffmatchpatch.Diff) int {
	off := 0
	for _, df := range diffs {
		if df.Type != diffmatchpatch.DiffEqual {
			return off
		}
		off += len(df.Text)
	}
	return off
}

// Undo reverts the most recent undo step and restores the cursor recorded
// before it. It returns false when there is nothing to undo.
func (d *Document) Undo() bool {
	e, err := d.hist.Undo(d.buf)
	if err != nil {
		if errors.Is(err, history.ErrNothingToUndo) {
			return false
		}
		violate("undo", err)
	}
	d.setCursorAfterEdit(e.CursorBefore)
	d.changed(e.FirstLine)
	return true
}

// Redo reapplies the most recently undone step and restores the cursor
// recorded after it. It returns false when there is nothing to redo.
func (d *Document) Redo() bool {
	e, err := d.hist.Redo(d.buf)
	if err != nil {
		if errors.Is(err, history.ErrNothingToRedo) {
			return false
		}
		violate("redo", err)
	}
	d.setCursorAfterEdit(e.CursorAfter)
	d.changed(e.FirstLine)
	return true
}

// CanUndo reports whether Undo would do anything.
func (d *Document) CanUndo() bool {
	return d.hist.CanUndo()
}

// CanRedo reports whether Redo would do anything.
func (d *Document) CanRedo() bool {
	return d.hist.CanRedo()
}

func (d *Document) setCursorAfterEdit(p Point) {
	d.cursor = d.buf.Clamp(p)
	d.wantCol = d.cursor.Col
	if d.sel != nil {
		s := d.sel.Clamp(d.buf)
		d.sel = &s
	}
}

// changed runs the bookkeeping shared by every mutation.
func (d *Document) changed(firstLine int) {
	d.revision++
	d.spansValid = false
	d.spans = nil
	d.dropDiagnosticsFrom(firstLine)
}

// IndentWidth returns the configured indent width.
func (d *Document) IndentWidth() int {
	return d.indentWidth
}

// SetIndent changes the indent width and hard-tab setting.
func (d *Document) SetIndent(width int, hardTab bool) {
	if width > 0 {
		d.indentWidth = width
	}
	d.hardTab = hardTab
}

// IndentUnit returns the text one level of indentation inserts.
func (d *Document) IndentUnit() string {
	if d.hardTab {
		return "\t"
	}
	return strings.Repeat(" ", d.indentWidth)
}

// TabFill returns the text Tab inserts at column col: a hard tab, or enough
// spaces to reach the next multiple of the indent width.
func (d *Document) TabFill(col int) string {
	if d.hardTab {
		return "\t"
	}
	return strings.Repeat(" ", d.indentWidth-col%d.indentWidth)
}

// NextIndent returns the indentation for a line opened after line i: the
// leading whitespace of line i plus one unit when it ends with an opening
// bracket.
func (d *Document) NextIndent(i int) string {
	line := d.buf.Line(i)
	indent := buffer.LeadingWhitespace(line)
	trimmed := strings.TrimRight(line, " \t")
	if trimmed != "" && strings.ContainsAny(trimmed[len(trimmed)-1:], "{[(") {
		indent += d.IndentUnit()
	}
	return indent
}

// SetHighlighter replaces the span provider and language.
func (d *Document) SetHighlighter(p syntax.Provider, lang string) {
	if p == nil {
		p = syntax.None{}
	}
	d.highlighter = p
	d.lang = lang
	d.spansValid = false
	d.spans = nil
}

// Spans returns highlight spans for the current text, computing them on
// first use after a change. A failing provider yields no spans.
func (d *Document) Spans() []syntax.Span {
	if !d.spansValid {
		spans, err := d.highlighter.Highlight(d.lang, d.buf.Text())
		if err != nil {
			spans = nil
		}
		d.spans = spans
		d.spansValid = true
	}
	return d.spans
}
