package engine

import "sort"

// Severity ranks a diagnostic.
type Severity uint8

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInfo
	SeverityHint
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// ParseSeverity maps compiler and LSP level names to a Severity.
// Unknown names are treated as errors.
func ParseSeverity(level string) Severity {
	switch level {
	case "warning", "warn":
		return SeverityWarning
	case "note", "info", "information":
		return SeverityInfo
	case "help", "hint":
		return SeverityHint
	default:
		return SeverityError
	}
}

// DiagnosticSource identifies who produced a diagnostic.
type DiagnosticSource uint8

const (
	SourceCompiler DiagnosticSource = iota
	SourceLSP
)

// String returns the source name.
func (s DiagnosticSource) String() string {
	if s == SourceLSP {
		return "lsp"
	}
	return "compiler"
}

// Diagnostic is a message attached to columns [StartCol, EndCol) of Line.
type Diagnostic struct {
	Line     int
	StartCol int
	EndCol   int
	Severity Severity
	Message  string
	Source   DiagnosticSource
}

// SetDiagnostics replaces every diagnostic from source with diags.
// Sets from different sources are kept side by side; a new set from the
// same source is never merged with the previous one.
func (d *Document) SetDiagnostics(source DiagnosticSource, diags []Diagnostic) {
	out := make([]Diagnostic, 0, len(diags))
	for _, dg := range diags {
		dg.Source = source
		if dg.Line < 0 || dg.Line >= d.buf.LineCount() {
			continue
		}
		out = append(out, dg)
	}
	d.diags[source] = out
}

// ClearDiagnostics removes every diagnostic.
func (d *Document) ClearDiagnostics() {
	for k := range d.diags {
		delete(d.diags, k)
	}
}

// Diagnostics returns all diagnostics ordered by position.
func (d *Document) Diagnostics() []Diagnostic {
	var all []Diagnostic
	for _, src := range []DiagnosticSource{SourceCompiler, SourceLSP} {
		all = append(all, d.diags[src]...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Line != all[j].Line {
			return all[i].Line < all[j].Line
		}
		return all[i].StartCol < all[j].StartCol
	})
	return all
}

// DiagnosticsAt returns the diagnostics on line.
func (d *Document) DiagnosticsAt(line int) []Diagnostic {
	var out []Diagnostic
	for _, dg := range d.Diagnostics() {
		if dg.Line == line {
			out = append(out, dg)
		}
	}
	return out
}

// dropDiagnosticsFrom discards diagnostics at or after line. An edit shifts
// everything below it, so those positions can no longer be trusted.
func (d *Document) dropDiagnosticsFrom(line int) {
	for src, list := range d.diags {
		kept := list[:0]
		for _, dg := range list {
			if dg.Line < line {
				kept = append(kept, dg)
			}
		}
		d.diags[src] = kept
	}
}
