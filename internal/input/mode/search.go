package mode

// search jumps to the next match of pattern and remembers it for n and N.
// An empty pattern repeats the last search.
func (m *Machine) search(pattern string) {
	if pattern != "" {
		m.lastSearch = pattern
	}
	m.searchNext(1, false)
}

// searchNext moves to the count-th match of the last pattern after the
// cursor, or before it when backward is set. The search wraps around the
// document.
func (m *Machine) searchNext(count int, backward bool) {
	if m.lastSearch == "" {
		m.notice("no previous search pattern")
		return
	}
	doc := m.doc
	at := doc.Cursor()
	wrapped := false
	for i := 0; i < count; i++ {
		p, w, ok := doc.Find(m.lastSearch, at, backward)
		if !ok {
			m.notice("pattern not found: %s", m.lastSearch)
			return
		}
		at, wrapped = p, wrapped || w
	}
	doc.SetCursor(at)
	if !wrapped {
		return
	}
	if backward {
		m.notice("search hit TOP, continuing at BOTTOM")
	} else {
		m.notice("search hit BOTTOM, continuing at TOP")
	}
}

// LastSearch returns the pattern n and N look for.
func (m *Machine) LastSearch() string {
	return m.lastSearch
}
