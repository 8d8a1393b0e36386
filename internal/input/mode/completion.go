package mode

import (
	"github.com/dshills/accepted/internal/engine"
	"github.com/dshills/accepted/internal/engine/buffer"
	"github.com/dshills/accepted/internal/input/fuzzy"
	"github.com/dshills/accepted/internal/input/key"
)

// CompletionItem is one entry of a completion list.
type CompletionItem struct {
	Label      string
	InsertText string
	Detail     string
}

// Text returns what accepting the item inserts.
func (c CompletionItem) Text() string {
	if c.InsertText != "" {
		return c.InsertText
	}
	return c.Label
}

// Completion is the list shown in Insert mode. Accepting an item replaces
// the word between Start and the cursor. Items holds the candidates that
// fuzzy-match that word, best first.
type Completion struct {
	Items    []CompletionItem
	Selected int
	Start    engine.Point

	all []CompletionItem
}

// filter ranks the full list against word and resets the selection.
func (c *Completion) filter(word string) {
	labels := make([]string, len(c.all))
	for i, it := range c.all {
		labels[i] = it.Label
	}
	ranked := fuzzy.Rank(word, labels)
	c.Items = make([]CompletionItem, len(ranked))
	for i, r := range ranked {
		c.Items[i] = c.all[r.Index]
	}
	c.Selected = 0
}

// Current returns the selected item.
func (c *Completion) Current() CompletionItem {
	return c.Items[c.Selected]
}

// Next selects the following item, wrapping around.
func (c *Completion) Next() {
	c.Selected = (c.Selected + 1) % len(c.Items)
}

// Prev selects the previous item, wrapping around.
func (c *Completion) Prev() {
	c.Selected = (c.Selected + len(c.Items) - 1) % len(c.Items)
}

// ShowCompletion displays the items matching the word before the cursor.
// It is ignored outside Insert mode and reports whether the list is shown.
func (m *Machine) ShowCompletion(items []CompletionItem) bool {
	m.completion = nil
	if m.current.Name() != ModeInsert || len(items) == 0 {
		return false
	}
	c := &Completion{all: items, Start: m.wordStart(m.doc.Cursor())}
	if !m.refilter(c) {
		return false
	}
	m.completion = c
	return true
}

// refilter narrows c to the word now before the cursor. It reports false
// when the cursor left the word or nothing matches.
func (m *Machine) refilter(c *Completion) bool {
	cur := m.doc.Cursor()
	if cur.Line != c.Start.Line || cur.Col < c.Start.Col || m.wordStart(cur) != c.Start {
		return false
	}
	c.filter(m.doc.TextRange(engine.Range{Start: c.Start, End: cur}))
	return len(c.Items) > 0
}

// HideCompletion removes the completion list.
func (m *Machine) HideCompletion() {
	m.completion = nil
}

// Completion returns the visible completion list, if any.
func (m *Machine) Completion() (Completion, bool) {
	if m.completion == nil {
		return Completion{}, false
	}
	return *m.completion, true
}

// handleCompletionKey handles the keys that request, cycle and accept
// completions. It reports whether ev was consumed.
func (m *Machine) handleCompletionKey(ev key.Event) bool {
	if ev.IsCtrl('n') || ev.IsCtrl(' ') {
		if m.completion != nil {
			m.completion.Next()
			return true
		}
		m.emit(EffectRequestCompletion, "")
		return true
	}
	if m.completion == nil {
		return false
	}
	switch {
	case ev.IsCtrl('p'), ev.Key == key.KeyBacktab, ev.Key == key.KeyUp:
		m.completion.Prev()
		return true
	case ev.Key == key.KeyDown:
		m.completion.Next()
		return true
	case ev.Key == key.KeyTab, ev.Key == key.KeyEnter:
		m.acceptCompletion()
		return true
	}
	return false
}

func (m *Machine) acceptCompletion() {
	c := m.completion
	m.completion = nil
	cur := m.doc.Cursor()
	erase := 0
	if c.Start.Line == cur.Line && c.Start.Col <= cur.Col {
		erase = cur.Col - c.Start.Col
	}
	text := c.Current().Text()
	m.record(insertStep{text: text, erase: erase})
	m.insertCompletion(text, erase)
}

// insertCompletion replaces the erase graphemes before the cursor with text.
func (m *Machine) insertCompletion(text string, erase int) {
	cur := m.doc.Cursor()
	start := engine.Point{Line: cur.Line, Col: max(cur.Col-erase, 0)}
	m.doc.Replace(engine.Range{Start: start, End: cur}, text)
}

// wordStart returns where the identifier ending at p begins.
func (m *Machine) wordStart(p engine.Point) engine.Point {
	gs := buffer.Graphemes(m.doc.Line(p.Line))
	col := min(p.Col, len(gs))
	for col > 0 && isWordChar(gs[col-1]) {
		col--
	}
	return engine.Point{Line: p.Line, Col: col}
}
