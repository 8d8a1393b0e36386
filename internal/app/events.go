package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/accepted/internal/engine"
	"github.com/dshills/accepted/internal/input/mode"
	"github.com/dshills/accepted/internal/integration/tool"
	"github.com/dshills/accepted/internal/lsp"
)

// handleToolEvent applies a result from the orchestrator.
func (a *App) handleToolEvent(ev tool.Event) {
	switch ev := ev.(type) {
	case tool.EventJobStarted:
		a.onJobStarted(ev.Job)
	case tool.EventFormatted:
		a.onFormatted(ev)
	case tool.EventCompiled:
		a.onCompiled(ev)
	case tool.EventTested:
		a.onTested(ev)
	case tool.EventError:
		a.onJobError(ev)
	case tool.EventLSPState:
		a.onLSPState(ev)
	case tool.EventLSPDiagnostics:
		a.onLSPDiagnostics(ev.Diagnostics)
	case tool.EventCompletion:
		a.onCompletion(ev.Result)
	}
}

func (a *App) onJobStarted(job tool.Job) {
	a.logger.Debug("job %s started: %s", job.ID, job.Kind)
	if job.Kind == tool.KindLSP {
		a.lspState, a.lspReady = "starting", false
		return
	}
	if a.pending != nil && a.pending.job != job.ID {
		a.pending = nil
	}
}

// onFormatted replaces the buffer with the formatter output when the
// buffer has not changed since the job started. A test run waiting on the
// format continues from here.
func (a *App) onFormatted(ev tool.EventFormatted) {
	var pending *pendingTest
	if a.pending != nil && a.pending.job == ev.Job.ID {
		pending, a.pending = a.pending, nil
	}

	if ev.Job.Revision != a.doc.Revision() {
		a.notify("format result discarded: buffer changed")
		return
	}
	if a.doc.ReplaceAll(ev.Text) {
		a.notify("formatted")
	} else {
		a.notify("already formatted")
	}

	if pending != nil {
		if err := a.runTest(pending.optimized); err != nil {
			a.fail(err)
		}
	}
}

func (a *App) onCompiled(ev tool.EventCompiled) {
	if ev.Job.Revision == a.doc.Revision() {
		a.doc.SetDiagnostics(engine.SourceCompiler, ev.Diagnostics)
	}

	if !ev.Success {
		a.output = &Output{Title: "compile failed", Text: ev.Output, Error: true}
		a.fail(fmt.Errorf("compile failed: %d errors", countErrors(ev.Diagnostics)))
		return
	}
	if strings.TrimSpace(ev.Output) != "" {
		a.output = &Output{Title: "compiled with warnings", Text: ev.Output}
	} else {
		a.output = nil
	}
	a.notify(fmt.Sprintf("compiled in %s", since(ev.Job.Started)))
}

func (a *App) onTested(ev tool.EventTested) {
	if ev.Job.Revision == a.doc.Revision() {
		a.doc.SetDiagnostics(engine.SourceCompiler, ev.Diagnostics)
	}

	var b strings.Builder
	b.WriteString(ev.Stdout)
	if ev.Stderr != "" {
		if b.Len() > 0 && !strings.HasSuffix(ev.Stdout, "\n") {
			b.WriteByte('\n')
		}
		b.WriteString("--- stderr ---\n")
		b.WriteString(ev.Stderr)
	}

	dur := ev.Duration.Round(time.Millisecond)
	a.output = &Output{
		Title: fmt.Sprintf("exit %d in %s", ev.ExitCode, dur),
		Text:  b.String(),
		Error: ev.ExitCode != 0,
	}
	if ev.ExitCode != 0 {
		a.fail(fmt.Errorf("program exited with status %d", ev.ExitCode))
		return
	}
	a.notify(fmt.Sprintf("ran in %s", dur))
}

func (a *App) onJobError(ev tool.EventError) {
	if a.pending != nil && a.pending.job == ev.Job.ID {
		a.pending = nil
	}
	if errors.Is(ev.Err, tool.ErrTimeout) {
		a.output = nil
	} else if ev.Job.Stderr != "" {
		a.output = &Output{Title: ev.Job.Kind.String() + " failed", Text: ev.Job.Stderr, Error: true}
	}
	a.fail(ev.Err)
}

func (a *App) onLSPState(ev tool.EventLSPState) {
	switch ev.State {
	case lsp.StateReady:
		a.lspState, a.lspReady = "ready", true
		a.notify("language server ready")
	case lsp.StateFailed:
		a.lspState, a.lspReady = "failed", false
		a.completion = nil
		if ev.Err != nil {
			a.fail(fmt.Errorf("language server: %w", ev.Err))
		}
	case lsp.StateTerminated:
		a.lspState, a.lspReady = "off", false
		a.completion = nil
	}
}

// onLSPDiagnostics converts server diagnostics to buffer positions and
// replaces the previous server set.
func (a *App) onLSPDiagnostics(in []lsp.Diagnostic) {
	out := make([]engine.Diagnostic, 0, len(in))
	for _, d := range in {
		line := d.Range.Start.Line
		if line < 0 || line >= a.doc.LineCount() {
			continue
		}
		text := a.doc.Line(line)
		start := lsp.PointOf(text, d.Range.Start).Col

		end := a.doc.LineLen(line)
		if d.Range.End.Line == line {
			end = lsp.PointOf(text, d.Range.End).Col
		}
		if end <= start {
			end = start + 1
		}

		out = append(out, engine.Diagnostic{
			Line:     line,
			StartCol: start,
			EndCol:   end,
			Severity: lspSeverity(d.Severity),
			Message:  d.Message,
		})
	}
	a.doc.SetDiagnostics(engine.SourceLSP, out)
}

func lspSeverity(s lsp.DiagnosticSeverity) engine.Severity {
	switch s {
	case lsp.DiagnosticSeverityWarning:
		return engine.SeverityWarning
	case lsp.DiagnosticSeverityInformation:
		return engine.SeverityInfo
	case lsp.DiagnosticSeverityHint:
		return engine.SeverityHint
	default:
		return engine.SeverityError
	}
}

// onCompletion shows the answer to the outstanding request. Answers to
// older requests, or arriving after the cursor or text moved on, are
// dropped.
func (a *App) onCompletion(res lsp.CompletionResult) {
	req := a.completion
	if req == nil || req.id != res.ID {
		return
	}
	a.completion = nil
	if req.at != a.doc.Cursor() || req.revision != a.doc.Revision() {
		a.logger.Debug("completion %d is stale", res.ID)
		return
	}
	if res.Err != nil {
		a.fail(fmt.Errorf("completion: %w", res.Err))
		return
	}

	items := make([]mode.CompletionItem, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, mode.CompletionItem{
			Label:      it.Label,
			InsertText: it.Text(),
			Detail:     it.Detail,
		})
	}
	items = append(items, a.snippetItems()...)
	if !a.machine.ShowCompletion(items) {
		a.notify("no completions")
	}
}

func countErrors(diags []engine.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == engine.SeverityError {
			n++
		}
	}
	return n
}

func since(t time.Time) time.Duration {
	if t.IsZero() {
		return 0
	}
	return time.Since(t).Round(time.Millisecond)
}
