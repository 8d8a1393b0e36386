// Package syntax turns source text into highlight spans.
//
// The editor core only depends on the Provider interface. Chroma is the
// default implementation; it memoises results per (language, text) so that
// redrawing an unchanged buffer never re-lexes it.
package syntax

import "fmt"

// Kind classifies a span for the renderer.
type Kind uint8

const (
	KindPlain Kind = iota
	KindKeyword
	KindType
	KindFunction
	KindString
	KindNumber
	KindComment
	KindPreprocessor
	KindOperator
)

var kindNames = [...]string{
	KindPlain:        "plain",
	KindKeyword:      "keyword",
	KindType:         "type",
	KindFunction:     "function",
	KindString:       "string",
	KindNumber:       "number",
	KindComment:      "comment",
	KindPreprocessor: "preprocessor",
	KindOperator:     "operator",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Span marks columns [StartCol, EndCol) of Line as Kind. Columns count
// grapheme clusters, matching buffer.Point. Spans never cross lines.
type Span struct {
	Line     int
	StartCol int
	EndCol   int
	Kind     Kind
}

// Provider computes spans for text written in lang.
// lang is a language name or a file extension; unknown languages yield no
// spans and no error.
type Provider interface {
	Highlight(lang, text string) ([]Span, error)
}

// None is a Provider that never highlights anything.
type None struct{}

// Highlight implements Provider.
func (None) Highlight(string, string) ([]Span, error) {
	return nil, nil
}
