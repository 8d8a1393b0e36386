package engine

import "github.com/dshills/accepted/internal/syntax"

// Default configuration values.
const (
	DefaultIndentWidth    = 4
	DefaultMaxUndoEntries = 1000
)

// Option configures a Document during creation.
type Option func(*Document)

// WithText sets the initial content of the document.
// The initial content is the saved state; the document starts clean.
func WithText(text string) Option {
	return func(d *Document) {
		d.initText = text
	}
}

// WithPath sets the file the document is saved to.
func WithPath(path string) Option {
	return func(d *Document) {
		d.path = path
	}
}

// WithIndent sets the indent width and whether Tab inserts a hard tab.
func WithIndent(width int, hardTab bool) Option {
	return func(d *Document) {
		if width > 0 {
			d.indentWidth = width
		}
		d.hardTab = hardTab
	}
}

// WithHighlighter sets the span provider and the language name passed to it.
func WithHighlighter(p syntax.Provider, lang string) Option {
	return func(d *Document) {
		if p != nil {
			d.highlighter = p
		}
		d.lang = lang
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(d *Document) {
		if max > 0 {
			d.maxUndoEntries = max
		}
	}
}
