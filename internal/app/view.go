package app

import (
	"github.com/dshills/accepted/internal/engine"
	"github.com/dshills/accepted/internal/input/mode"
	"github.com/dshills/accepted/internal/syntax"
)

// Renderer draws a View. Render is called from the main loop after every
// event, with a View that does not alias editor state.
type Renderer interface {
	Render(v View)
}

// View is everything the screen shows.
type View struct {
	Path  string
	Dirty bool
	Lines []string

	Cursor      engine.Point
	CursorStyle mode.CursorStyle
	// Selection is set in Visual modes. Linewise selections cover whole
	// lines.
	Selection *engine.Selection

	Spans       []syntax.Span
	Diagnostics []engine.Diagnostic
	TabWidth    int

	Mode    string
	Pending string
	// CommandLine is shown after CommandPrompt instead of the status when
	// CommandActive.
	CommandLine   string
	CommandCursor int
	CommandActive bool
	CommandPrompt rune

	Status     string
	StatusKind StatusKind
	Job        string
	LSP        string

	Completion *mode.Completion
	Output     *Output
}

// StatusKind colors the status line.
type StatusKind uint8

const (
	StatusInfo StatusKind = iota
	StatusError
)

// Output is the panel below the text holding compiler or test output.
type Output struct {
	Title string
	Text  string
	Error bool
}

// view snapshots the editor state.
func (a *App) view() View {
	doc := a.doc
	lines := make([]string, doc.LineCount())
	for i := range lines {
		lines[i] = doc.Line(i)
	}

	v := View{
		Path:        doc.Path(),
		Dirty:       doc.Dirty(),
		Lines:       lines,
		Cursor:      doc.Cursor(),
		CursorStyle: a.machine.CursorStyle(),
		Spans:       doc.Spans(),
		Diagnostics: doc.Diagnostics(),
		TabWidth:    doc.IndentWidth(),
		Mode:        a.machine.Current().DisplayName(),
		Pending:     a.machine.PendingKeys(),
		Status:      a.status,
		StatusKind:  a.statusKind,
		LSP:         a.lspState,
		Output:      a.output,
	}
	if sel, ok := doc.Selection(); ok {
		v.Selection = &sel
	}
	if text, cur, ok := a.machine.CommandLine(); ok {
		v.CommandLine, v.CommandCursor, v.CommandActive = text, cur, true
		v.CommandPrompt = rune(a.machine.CommandPrompt())
	}
	if c, ok := a.machine.Completion(); ok {
		v.Completion = &c
	}
	if job, ok := a.orch.Current(); ok {
		v.Job = job.Kind.String()
	}
	return v
}
