package engine

import "strings"

// Find returns the start of the next literal occurrence of pattern after
// from, or the last one before it when backward is set. The search wraps
// around the document; wrapped reports that it did. ok is false when the
// pattern does not occur or is empty.
func (d *Document) Find(pattern string, from Point, backward bool) (p Point, wrapped, ok bool) {
	if pattern == "" {
		return Point{}, false, false
	}
	text := d.buf.Text()
	off := d.buf.ByteOffset(d.buf.Clamp(from))

	var i int
	if backward {
		i = strings.LastIndex(text[:off], pattern)
		if i < 0 {
			i, wrapped = strings.LastIndex(text, pattern), true
		}
	} else {
		start := min(off+1, len(text))
		if j := strings.Index(text[start:], pattern); j >= 0 {
			i = start + j
		} else {
			i, wrapped = strings.Index(text, pattern), true
		}
	}
	if i < 0 {
		return Point{}, false, false
	}
	return d.buf.PointAt(i), wrapped, true
}
