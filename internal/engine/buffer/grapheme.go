package buffer

import (
	"strings"
	"unicode/utf16"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// GraphemeCount returns the number of grapheme clusters in s.
func GraphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// Graphemes splits s into its grapheme clusters.
func Graphemes(s string) []string {
	out := make([]string, 0, len(s))
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// ByteIndex returns the byte offset of grapheme column col in s.
// Columns past the end map to len(s).
func ByteIndex(s string, col int) int {
	if col <= 0 {
		return 0
	}
	g := uniseg.NewGraphemes(s)
	n := 0
	for g.Next() {
		if n == col {
			start, _ := g.Positions()
			return start
		}
		n++
	}
	return len(s)
}

// ColumnAt returns the grapheme column that contains byte offset off in s.
func ColumnAt(s string, off int) int {
	if off <= 0 {
		return 0
	}
	g := uniseg.NewGraphemes(s)
	col := 0
	for g.Next() {
		_, end := g.Positions()
		if end > off {
			return col
		}
		col++
	}
	return col
}

// DisplayWidth returns the number of terminal cells s occupies.
// Tabs expand to the next multiple of tabWidth.
func DisplayWidth(s string, tabWidth int) int {
	w := 0
	for _, cluster := range Graphemes(s) {
		w += clusterWidth(cluster, w, tabWidth)
	}
	return w
}

// DisplayColumn returns the screen column of grapheme column col in s.
func DisplayColumn(s string, col, tabWidth int) int {
	w := 0
	for i, cluster := range Graphemes(s) {
		if i >= col {
			break
		}
		w += clusterWidth(cluster, w, tabWidth)
	}
	return w
}

func clusterWidth(cluster string, at, tabWidth int) int {
	if cluster == "\t" {
		if tabWidth <= 0 {
			tabWidth = 4
		}
		return tabWidth - at%tabWidth
	}
	return runewidth.StringWidth(cluster)
}

// UTF16Col converts a grapheme column in s to a UTF-16 code unit column.
func UTF16Col(s string, col int) int {
	prefix := s[:ByteIndex(s, col)]
	n := 0
	for _, r := range prefix {
		n += utf16.RuneLen(r)
	}
	return n
}

// ColFromUTF16 converts a UTF-16 code unit column in s to a grapheme column.
func ColFromUTF16(s string, units int) int {
	n := 0
	for i, r := range s {
		if n >= units {
			return ColumnAt(s, i)
		}
		n += utf16.RuneLen(r)
	}
	return GraphemeCount(s)
}

// NormalizeLineEndings converts CRLF and lone CR line endings to LF.
func NormalizeLineEndings(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// LeadingWhitespace returns the run of spaces and tabs that starts s.
func LeadingWhitespace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[:i]
}
