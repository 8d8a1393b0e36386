package terminal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/accepted/internal/app"
	"github.com/dshills/accepted/internal/engine"
	"github.com/dshills/accepted/internal/engine/buffer"
	"github.com/dshills/accepted/internal/input/mode"
	"github.com/dshills/accepted/internal/syntax"
)

// maxPopupItems is how many completion candidates are visible at once.
const maxPopupItems = 8

// layout is the row and column split of one frame.
type layout struct {
	width, height int

	textRows  int
	gutter    int
	textWidth int

	outputRow  int
	outputRows int
	statusRow  int
	messageRow int
}

func (s *Screen) layout(v app.View) layout {
	w, h := s.screen.Size()
	l := layout{
		width:      w,
		height:     h,
		statusRow:  h - 2,
		messageRow: h - 1,
	}

	l.textRows = h - 2
	if v.Output != nil {
		want := len(outputLines(v.Output.Text)) + 1
		l.outputRows = min(want, max(l.textRows/3, 2))
		if l.textRows-l.outputRows < 1 {
			l.outputRows = 0
		}
		l.textRows -= l.outputRows
		l.outputRow = l.textRows
	}

	l.gutter = max(len(strconv.Itoa(len(v.Lines))), 2) + 2
	l.textWidth = max(w-l.gutter, 1)
	return l
}

// draw paints v. The caller holds s.mu.
func (s *Screen) draw(v app.View) {
	s.screen.Clear()
	l := s.layout(v)
	if l.width <= 0 || l.height < 3 {
		return
	}
	s.scroll(v, l)

	spans := make(map[int][]syntax.Span)
	for _, sp := range v.Spans {
		spans[sp.Line] = append(spans[sp.Line], sp)
	}
	diags := make(map[int][]engine.Diagnostic)
	for _, d := range v.Diagnostics {
		diags[d.Line] = append(diags[d.Line], d)
	}

	for row := 0; row < l.textRows; row++ {
		line := s.top + row
		if line >= len(v.Lines) {
			s.put(0, row, "~", s.theme.Gutter, l.width)
			continue
		}
		s.drawGutter(row, line, diags[line], l)
		s.drawLine(row, line, v, spans[line], diags[line], l)
	}

	if l.outputRows > 0 {
		s.drawOutput(v.Output, l)
	}
	s.drawStatus(v, l)
	s.drawMessage(v, diags[v.Cursor.Line], l)
	if v.Completion != nil && !v.CommandActive {
		s.drawCompletion(v, l)
	}
	s.placeCursor(v, l)
}

// scroll moves the viewport so the cursor is visible.
func (s *Screen) scroll(v app.View, l layout) {
	cur := v.Cursor
	if cur.Line < s.top {
		s.top = cur.Line
	}
	if cur.Line >= s.top+l.textRows {
		s.top = cur.Line - l.textRows + 1
	}
	s.top = max(min(s.top, len(v.Lines)-1), 0)

	x := s.cursorColumn(v)
	if x < s.left {
		s.left = x
	}
	if x >= s.left+l.textWidth {
		s.left = x - l.textWidth + 1
	}
}

func (s *Screen) cursorColumn(v app.View) int {
	if v.Cursor.Line < 0 || v.Cursor.Line >= len(v.Lines) {
		return 0
	}
	return buffer.DisplayColumn(v.Lines[v.Cursor.Line], v.Cursor.Col, v.TabWidth)
}

func (s *Screen) drawGutter(row, line int, diags []engine.Diagnostic, l layout) {
	style := s.theme.Gutter
	marker := " "
	if len(diags) > 0 {
		worst := diags[0].Severity
		for _, d := range diags[1:] {
			if d.Severity < worst {
				worst = d.Severity
			}
		}
		style = style.Foreground(severityColor(worst)).Bold(true)
		marker = strings.ToUpper(worst.String()[:1])
	}
	num := strconv.Itoa(line + 1)
	text := marker + strings.Repeat(" ", l.gutter-2-len(num)) + num + " "
	s.put(0, row, text, style, l.gutter)
}

func (s *Screen) drawLine(row, line int, v app.View, spans []syntax.Span, diags []engine.Diagnostic, l layout) {
	text := v.Lines[line]
	tab := v.TabWidth
	if tab <= 0 {
		tab = 4
	}

	if text == "" && selected(v.Selection, line, 0) && s.left == 0 {
		s.screen.SetContent(l.gutter, row, ' ', nil, s.theme.Selection)
		return
	}

	disp := 0
	for col, cluster := range buffer.Graphemes(text) {
		w := runewidth.StringWidth(cluster)
		if cluster == "\t" {
			w = tab - disp%tab
		}

		style := s.theme.kind(kindAt(spans, col))
		if d, ok := diagAt(diags, col); ok {
			style = style.Underline(true).Foreground(severityColor(d.Severity))
		}
		if selected(v.Selection, line, col) {
			style = s.theme.Selection
		}

		x := disp - s.left
		if x >= l.textWidth {
			break
		}
		if x >= 0 && x+w <= l.textWidth && w > 0 {
			if cluster == "\t" {
				for i := range w {
					s.screen.SetContent(l.gutter+x+i, row, ' ', nil, style)
				}
			} else {
				rs := []rune(cluster)
				s.screen.SetContent(l.gutter+x, row, rs[0], rs[1:], style)
			}
		}
		disp += w
	}
}

func kindAt(spans []syntax.Span, col int) syntax.Kind {
	for _, sp := range spans {
		if col >= sp.StartCol && col < sp.EndCol {
			return sp.Kind
		}
	}
	return syntax.KindPlain
}

func diagAt(diags []engine.Diagnostic, col int) (engine.Diagnostic, bool) {
	for _, d := range diags {
		if col >= d.StartCol && col < d.EndCol {
			return d, true
		}
	}
	return engine.Diagnostic{}, false
}

// selected reports whether the grapheme at (line, col) is inside sel.
// Charwise selections include the character under the end point.
func selected(sel *engine.Selection, line, col int) bool {
	if sel == nil {
		return false
	}
	start, end := sel.Start(), sel.End()
	if line < start.Line || line > end.Line {
		return false
	}
	if sel.Linewise {
		return true
	}
	if line == start.Line && col < start.Col {
		return false
	}
	if line == end.Line && col > end.Col {
		return false
	}
	return true
}

func outputLines(text string) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func (s *Screen) drawOutput(out *app.Output, l layout) {
	title := s.theme.OutputTitle
	body := s.theme.Text
	if out.Error {
		title = title.Foreground(tcell.ColorRed)
		body = s.theme.OutputError
	}
	s.put(0, l.outputRow, out.Title, title, l.width)

	lines := outputLines(out.Text)
	for i := 0; i < l.outputRows-1 && i < len(lines); i++ {
		line := strings.ReplaceAll(lines[i], "\t", "    ")
		s.put(0, l.outputRow+1+i, line, body, l.width)
	}
}

func (s *Screen) drawStatus(v app.View, l layout) {
	for x := range l.width {
		s.screen.SetContent(x, l.statusRow, ' ', nil, s.theme.Status)
	}

	x := s.put(0, l.statusRow, " "+v.Mode+" ", s.theme.StatusMode, l.width)
	name := v.Path
	if name == "" {
		name = "[No Name]"
	}
	if v.Dirty {
		name += " [+]"
	}
	x = s.put(x+1, l.statusRow, name, s.theme.Status, l.width)
	if v.Pending != "" {
		s.put(x+2, l.statusRow, v.Pending, s.theme.Status, l.width)
	}

	var right []string
	if v.Job != "" {
		right = append(right, "["+v.Job+"]")
	}
	if v.LSP != "" && v.LSP != "off" {
		right = append(right, "lsp:"+v.LSP)
	}
	right = append(right, fmt.Sprintf("%d:%d ", v.Cursor.Line+1, v.Cursor.Col+1))
	text := strings.Join(right, "  ")
	if rx := l.width - runewidth.StringWidth(text); rx > x+2 {
		s.put(rx, l.statusRow, text, s.theme.Status, l.width)
	}
}

func (s *Screen) drawMessage(v app.View, diags []engine.Diagnostic, l layout) {
	switch {
	case v.CommandActive:
		prompt := v.CommandPrompt
		if prompt == 0 {
			prompt = ':'
		}
		s.put(0, l.messageRow, string(prompt)+v.CommandLine, s.theme.Message, l.width)
	case v.Status != "":
		style := s.theme.Message
		if v.StatusKind == app.StatusError {
			style = s.theme.MessageErr
		}
		s.put(0, l.messageRow, firstLine(v.Status), style, l.width)
	default:
		if d, ok := diagAt(diags, v.Cursor.Col); ok || len(diags) > 0 {
			if !ok {
				d = diags[0]
			}
			style := s.theme.Message.Foreground(severityColor(d.Severity))
			s.put(0, l.messageRow, d.Severity.String()+": "+firstLine(d.Message), style, l.width)
		}
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func (s *Screen) drawCompletion(v app.View, l layout) {
	c := v.Completion
	if len(c.Items) == 0 {
		return
	}

	first := 0
	if c.Selected >= maxPopupItems {
		first = c.Selected - maxPopupItems + 1
	}
	items := c.Items[first:min(first+maxPopupItems, len(c.Items))]

	labelW, detailW := 0, 0
	for _, it := range items {
		labelW = max(labelW, runewidth.StringWidth(it.Label))
		detailW = max(detailW, runewidth.StringWidth(it.Detail))
	}
	width := labelW + 2
	if detailW > 0 {
		width += detailW + 1
	}

	row := v.Cursor.Line - s.top + 1
	if row+len(items) > l.textRows {
		row = v.Cursor.Line - s.top - len(items)
	}
	if row < 0 {
		row = 0
	}
	x := l.gutter
	if c.Start.Line >= 0 && c.Start.Line < len(v.Lines) {
		x += buffer.DisplayColumn(v.Lines[c.Start.Line], c.Start.Col, v.TabWidth) - s.left
	}
	x = max(min(x, l.width-width), 0)

	for i, it := range items {
		style, detail := s.theme.Popup, s.theme.PopupDetail
		if first+i == c.Selected {
			style, detail = s.theme.PopupSelected, s.theme.PopupSelected
		}
		y := row + i
		for cx := x; cx < min(x+width, l.width); cx++ {
			s.screen.SetContent(cx, y, ' ', nil, style)
		}
		s.put(x+1, y, it.Label, style, min(x+width, l.width))
		if it.Detail != "" {
			s.put(x+labelW+2, y, it.Detail, detail, min(x+width, l.width))
		}
	}
}

func (s *Screen) placeCursor(v app.View, l layout) {
	if v.CommandActive {
		rs := []rune(v.CommandLine)
		cur := max(min(v.CommandCursor, len(rs)), 0)
		s.screen.SetCursorStyle(tcell.CursorStyleSteadyBar)
		s.screen.ShowCursor(1+runewidth.StringWidth(string(rs[:cur])), l.messageRow)
		return
	}

	switch v.CursorStyle {
	case mode.CursorBar:
		s.screen.SetCursorStyle(tcell.CursorStyleSteadyBar)
	case mode.CursorUnderline:
		s.screen.SetCursorStyle(tcell.CursorStyleSteadyUnderline)
	default:
		s.screen.SetCursorStyle(tcell.CursorStyleSteadyBlock)
	}
	row := v.Cursor.Line - s.top
	if row < 0 || row >= l.textRows {
		s.screen.HideCursor()
		return
	}
	s.screen.ShowCursor(l.gutter+s.cursorColumn(v)-s.left, row)
}

// put writes text from x on row y, stopping before maxX. It returns the
// column after the last cell written.
func (s *Screen) put(x, y int, text string, style tcell.Style, maxX int) int {
	for _, cluster := range buffer.Graphemes(text) {
		w := runewidth.StringWidth(cluster)
		if w == 0 {
			continue
		}
		if x+w > maxX {
			break
		}
		rs := []rune(cluster)
		s.screen.SetContent(x, y, rs[0], rs[1:], style)
		x += w
	}
	return x
}
