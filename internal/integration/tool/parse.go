package tool

import (
	"bufio"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/accepted/internal/config"
	"github.com/dshills/accepted/internal/engine"
	"github.com/dshills/accepted/internal/engine/buffer"
)

// gccPattern matches "file:line:col: [level: ]message". gcc and clang both
// write it; a missing level is an error.
var gccPattern = regexp.MustCompile(`^(.+?):(\d+):(\d+): (?:(fatal error|error|warning|note): )?(.*)$`)

// diagnosticParser turns compiler output into diagnostics for the file at
// path. text is the buffer content, used to convert columns. The second
// result is the output to show the user.
type diagnosticParser func(output, path, text string) ([]engine.Diagnostic, string)

func parserFor(t config.CompilerType) diagnosticParser {
	switch t {
	case config.CompilerRustc:
		return parseRustc
	case config.CompilerGCC, config.CompilerClang:
		return parseGCC
	default:
		return func(output, _, _ string) ([]engine.Diagnostic, string) {
			return nil, output
		}
	}
}

// lines splits text for column conversion.
type lines []string

func (l lines) at(i int) string {
	if i < 0 || i >= len(l) {
		return ""
	}
	return l[i]
}

// parseGCC reads gcc/clang diagnostics. Columns are 1-based bytes.
func parseGCC(output, path, text string) ([]engine.Diagnostic, string) {
	src := lines(strings.Split(text, "\n"))
	var diags []engine.Diagnostic

	sc := bufio.NewScanner(strings.NewReader(output))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		m := gccPattern.FindStringSubmatch(sc.Text())
		if m == nil || !sameFile(m[1], path) {
			continue
		}
		lineNo, err1 := strconv.Atoi(m[2])
		colNo, err2 := strconv.Atoi(m[3])
		if err1 != nil || err2 != nil || lineNo < 1 {
			continue
		}
		line := lineNo - 1
		col := 0
		if colNo > 0 {
			l := src.at(line)
			col = buffer.ColumnAt(l, min(colNo-1, len(l)))
		}
		diags = append(diags, engine.Diagnostic{
			Line:     line,
			StartCol: col,
			EndCol:   col + 1,
			Severity: engine.ParseSeverity(m[4]),
			Message:  m[5],
		})
	}
	return diags, output
}

// parseRustc reads rustc's --error-format=json output, one JSON object per
// line. Only the primary span of each message is used. Lines that are not
// JSON, such as linker output, are passed through to the display text.
func parseRustc(output, path, text string) ([]engine.Diagnostic, string) {
	src := lines(strings.Split(text, "\n"))
	var diags []engine.Diagnostic
	var shown strings.Builder

	sc := bufio.NewScanner(strings.NewReader(output))
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for sc.Scan() {
		raw := sc.Text()
		if !gjson.Valid(raw) {
			shown.WriteString(raw)
			shown.WriteByte('\n')
			continue
		}
		msg := gjson.Parse(raw)
		if r := msg.Get("rendered"); r.Exists() {
			shown.WriteString(r.String())
		}

		var primary gjson.Result
		msg.Get("spans").ForEach(func(_, span gjson.Result) bool {
			if span.Get("is_primary").Bool() {
				primary = span
				return false
			}
			return true
		})
		if !primary.Exists() || !sameFile(primary.Get("file_name").String(), path) {
			continue
		}

		line := int(primary.Get("line_start").Int()) - 1
		if line < 0 {
			continue
		}
		l := src.at(line)
		start := runeColumn(l, int(primary.Get("column_start").Int())-1)
		end := start + 1
		if int(primary.Get("line_end").Int())-1 == line {
			end = max(runeColumn(l, int(primary.Get("column_end").Int())-1), start+1)
		}

		diags = append(diags, engine.Diagnostic{
			Line:     line,
			StartCol: start,
			EndCol:   end,
			Severity: engine.ParseSeverity(msg.Get("level").String()),
			Message:  msg.Get("message").String(),
		})
	}
	return diags, shown.String()
}

// runeColumn converts a 0-based code point index in line to a grapheme
// column.
func runeColumn(line string, runes int) int {
	if runes <= 0 {
		return 0
	}
	n := 0
	for i := range line {
		if n == runes {
			return buffer.ColumnAt(line, i)
		}
		n++
	}
	return buffer.GraphemeCount(line)
}

// sameFile reports whether a compiler's file name refers to path. Tools
// run in the file's directory, so names may be relative.
func sameFile(name, path string) bool {
	if path == "" {
		return true
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name) == filepath.Clean(path)
	}
	return filepath.Base(name) == filepath.Base(path)
}
