package tool

import (
	"time"

	"github.com/dshills/accepted/internal/engine"
	"github.com/dshills/accepted/internal/lsp"
)

// Event is a result delivered on Orchestrator.Events. The concrete types
// are listed below.
type Event interface {
	event()
}

// EventJobStarted is sent when a job takes the slot. Every foreground job
// that is not cancelled follows it with exactly one terminal event:
// EventFormatted, EventCompiled, EventTested or EventError.
type EventJobStarted struct {
	Job Job
}

// EventFormatted carries the formatter's output. Apply it only if the
// buffer is still at Job.Revision.
type EventFormatted struct {
	Job  Job
	Text string
}

// EventCompiled reports a finished compile. Output is the compiler's
// human-readable output.
type EventCompiled struct {
	Job         Job
	Diagnostics []engine.Diagnostic
	Success     bool
	Output      string
}

// EventTested reports a finished test run. Diagnostics are the compile
// warnings, if any.
type EventTested struct {
	Job         Job
	Stdout      string
	Stderr      string
	ExitCode    int
	Duration    time.Duration
	Diagnostics []engine.Diagnostic
}

// EventError reports a job that could not produce a result. Err is a
// *JobError.
type EventError struct {
	Job Job
	Err error
}

// EventLSPState reports a language server session becoming ready or
// failing.
type EventLSPState struct {
	State lsp.State
	Err   error
}

// EventLSPDiagnostics is a full replacement set for the buffer's file.
type EventLSPDiagnostics struct {
	Diagnostics []lsp.Diagnostic
}

// EventCompletion is the answer to a completion request.
type EventCompletion struct {
	Result lsp.CompletionResult
}

func (EventJobStarted) event()     {}
func (EventFormatted) event()      {}
func (EventCompiled) event()       {}
func (EventTested) event()         {}
func (EventError) event()          {}
func (EventLSPState) event()       {}
func (EventLSPDiagnostics) event() {}
func (EventCompletion) event()     {}
