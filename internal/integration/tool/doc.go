// Package tool drives the per-language external tools for a buffer:
// formatter, compiler, test run and language server.
//
// # Jobs
//
// Format, Compile and Test share one foreground slot. Starting a job
// cancels the one in flight; the new job spawns nothing until the old
// process group has been reaped, and the cancelled job emits no result.
//
//	orch := tool.New(tool.WithPolicy(tool.Policy{MaxRuntime: 10 * time.Second}))
//	defer orch.Close()
//
//	job, err := orch.Compile(snap, lang, false)
//	...
//	for ev := range orch.Events() {
//	    switch ev := ev.(type) {
//	    case tool.EventCompiled:
//	        doc.SetDiagnostics(engine.SourceCompiler, ev.Diagnostics)
//	    }
//	}
//
// Commands may refer to ${FILE_PATH}, ${FILE_STEM} and ${FILE_DIR}, and
// to any environment variable, optionally with a default as in
// ${CXX:g++}. Tools run in the file's directory with the same variables
// in their environment.
//
// # Compiler output
//
// gcc and clang output is read line by line in the
// "file:line:col: level: message" form. rustc output is read as
// --error-format=json. Only diagnostics for the buffer's own file are
// kept; columns are converted to grapheme columns of the buffer text.
//
// # Language server
//
// StartLSP spawns the configured server and runs the lsp.Client handshake
// in the background. Diagnostics, completion answers and session failures
// arrive on the same Events channel as job results.
package tool
