package mode

// EffectKind names something the machine asks the application to do.
type EffectKind uint8

const (
	// EffectQuit asks to close the editor. The application refuses when
	// the document has unsaved changes.
	EffectQuit EffectKind = iota

	// EffectForceQuit closes the editor discarding changes.
	EffectForceQuit

	// EffectSave writes the document to its path.
	EffectSave

	// EffectSaveAs writes the document to Arg and adopts it as the path.
	EffectSaveAs

	// EffectCopyAll copies the whole document to the clipboard.
	EffectCopyAll

	// EffectFormat runs the formatter.
	EffectFormat

	// EffectCompile runs the compiler.
	EffectCompile

	// EffectTest formats, saves, compiles and runs the program with the
	// clipboard as input.
	EffectTest

	// EffectTestOptimized is EffectTest with the optimize option.
	EffectTestOptimized

	// EffectStartLSP starts the language server session. It does nothing
	// while a session is running.
	EffectStartLSP

	// EffectRestartLSP replaces the language server session.
	EffectRestartLSP

	// EffectCancelJob cancels the running foreground job.
	EffectCancelJob

	// EffectRequestCompletion asks the language server for completions at
	// the cursor.
	EffectRequestCompletion

	// EffectNotice shows Arg on the status line.
	EffectNotice
)

// String returns the effect name.
func (k EffectKind) String() string {
	switch k {
	case EffectQuit:
		return "quit"
	case EffectForceQuit:
		return "force-quit"
	case EffectSave:
		return "save"
	case EffectSaveAs:
		return "save-as"
	case EffectCopyAll:
		return "copy-all"
	case EffectFormat:
		return "format"
	case EffectCompile:
		return "compile"
	case EffectTest:
		return "test"
	case EffectTestOptimized:
		return "test-optimized"
	case EffectStartLSP:
		return "start-lsp"
	case EffectRestartLSP:
		return "restart-lsp"
	case EffectCancelJob:
		return "cancel-job"
	case EffectRequestCompletion:
		return "request-completion"
	case EffectNotice:
		return "notice"
	default:
		return "unknown"
	}
}

// Effect is a request produced by a key event. Effects are returned in the
// order they must run.
type Effect struct {
	Kind EffectKind
	Arg  string
}

func (e Effect) String() string {
	if e.Arg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + " " + e.Arg
}
