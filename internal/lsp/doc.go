// Package lsp is a Language Server Protocol client for one server and one
// open document.
//
// # Architecture
//
//   - Transport: JSON-RPC 2.0 with Content-Length framing. Request ids
//     increase monotonically; responses with unknown ids are ignored;
//     malformed input is a protocol error that closes the connection.
//   - Client: the session state machine
//     (Uninitialized → Initializing → Ready → ShuttingDown → Terminated,
//     or Failed) plus document sync and completion.
//
// The client does not start processes. The caller spawns the server and
// hands over its pipes:
//
//	c := lsp.NewClient(stdout, stdin, closer,
//	    lsp.WithLanguageID(lsp.LanguageID("cpp")),
//	    lsp.WithDiagnosticsHandler(onDiags),
//	    lsp.WithCompletionHandler(onCompletion),
//	)
//	if err := c.Start(ctx); err != nil {
//	    return err
//	}
//	defer c.Shutdown(ctx)
//
//	c.DidOpen(path, text)
//	id, _ := c.Complete(lsp.Position{Line: 3, Character: 7})
//
// Document sync is always full text. Completion results and diagnostics
// are delivered through handlers in arrival order; a session that fails is
// never restarted automatically.
//
// # Thread Safety
//
// Client and Transport are safe for concurrent use.
package lsp
