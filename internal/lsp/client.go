package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRequestTimeout bounds the initialize handshake when the caller's
// context has no deadline.
const DefaultRequestTimeout = 10 * time.Second

// State is the lifecycle state of a session.
type State int32

const (
	// StateUninitialized is a client that has not been started.
	StateUninitialized State = iota
	// StateInitializing is waiting for the initialize response.
	StateInitializing
	// StateReady accepts document notifications and requests.
	StateReady
	// StateShuttingDown has sent shutdown.
	StateShuttingDown
	// StateTerminated has sent exit and closed the connection.
	StateTerminated
	// StateFailed ended with a handshake, transport or protocol error.
	StateFailed
)

// String returns a human-readable state string.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateShuttingDown:
		return "shutting down"
	case StateTerminated:
		return "terminated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CompletionResult is the answer to a Complete request.
type CompletionResult struct {
	ID    int64
	Items []CompletionItem
	Err   error
}

// Logger receives diagnostic messages from the client.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Client is a session with one language server over one connection. It
// tracks a single open document using full-text sync.
//
// Handlers run on the connection's read goroutine and must not block.
type Client struct {
	transport  *Transport
	languageID string
	rootPath   string
	timeout    time.Duration
	logger     Logger

	state atomic.Int32

	mu           sync.Mutex
	uri          DocumentURI
	version      int
	capabilities ServerCapabilities
	serverInfo   *ServerInfo
	err          error

	onDiagnostics func(path string, diags []Diagnostic)
	onCompletion  func(CompletionResult)
	onFailure     func(error)
}

// Option configures a Client.
type Option func(*Client)

// WithLanguageID sets the languageId sent with didOpen.
func WithLanguageID(id string) Option {
	return func(c *Client) {
		c.languageID = id
	}
}

// WithRootPath sets the workspace root sent with initialize.
func WithRootPath(path string) Option {
	return func(c *Client) {
		c.rootPath = path
	}
}

// WithRequestTimeout bounds the initialize and shutdown requests when the
// caller's context has no deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithDiagnosticsHandler receives each publishDiagnostics set. A set
// replaces every earlier one for the same path.
func WithDiagnosticsHandler(fn func(path string, diags []Diagnostic)) Option {
	return func(c *Client) {
		c.onDiagnostics = fn
	}
}

// WithCompletionHandler receives completion responses.
func WithCompletionHandler(fn func(CompletionResult)) Option {
	return func(c *Client) {
		c.onCompletion = fn
	}
}

// WithFailureHandler is called once when the session fails.
func WithFailureHandler(fn func(error)) Option {
	return func(c *Client) {
		c.onFailure = fn
	}
}

// NewClient creates a client speaking over r and w. closer, when not nil,
// is closed when the session ends.
func NewClient(r io.Reader, w io.Writer, closer io.Closer, opts ...Option) *Client {
	c := &Client{
		transport:  NewTransport(r, w, closer),
		languageID: "plaintext",
		timeout:    DefaultRequestTimeout,
		logger:     nopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the session state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Err returns the error that failed the session, if any.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// ServerInfo returns what the server reported about itself, if anything.
func (c *Client) ServerInfo() *ServerInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverInfo
}

// Done is closed when the connection ends for any reason.
func (c *Client) Done() <-chan struct{} {
	return c.transport.Done()
}

// Start performs the initialize handshake. On failure the session is
// Failed and the connection closed.
func (c *Client) Start(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateUninitialized), int32(StateInitializing)) {
		return ErrAlreadyStarted
	}

	c.transport.OnNotification("textDocument/publishDiagnostics", c.handleDiagnostics)
	c.transport.OnNotification("window/logMessage", c.handleMessage)
	c.transport.OnNotification("window/showMessage", c.handleMessage)
	c.transport.OnError(c.fail)
	c.transport.Start(context.Background())

	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := InitializeParams{
		ProcessID:    os.Getpid(),
		ClientInfo:   &ClientInfo{Name: "acc"},
		Capabilities: defaultCapabilities(),
	}
	if c.rootPath != "" {
		params.RootURI = FilePathToURI(c.rootPath)
		params.WorkspaceFolders = []WorkspaceFolder{{
			URI:  params.RootURI,
			Name: filepath.Base(c.rootPath),
		}}
	}

	var result InitializeResult
	if err := c.transport.Call(ctx, "initialize", params, &result); err != nil {
		err = fmt.Errorf("initialize: %w", err)
		c.fail(err)
		return err
	}
	c.mu.Lock()
	c.capabilities = result.Capabilities
	c.serverInfo = result.ServerInfo
	c.mu.Unlock()

	if err := c.transport.Notify("initialized", InitializedParams{}); err != nil {
		err = fmt.Errorf("initialized: %w", err)
		c.fail(err)
		return err
	}

	if !c.state.CompareAndSwap(int32(StateInitializing), int32(StateReady)) {
		// The connection failed while we were finishing the handshake.
		if err := c.Err(); err != nil {
			return err
		}
		return ErrNotReady
	}
	c.logger.Debug("lsp session ready (%s)", c.languageID)
	return nil
}

// DidOpen announces the document at path with its full text.
func (c *Client) DidOpen(path, text string) error {
	if c.State() != StateReady {
		return ErrNotReady
	}
	c.mu.Lock()
	c.uri = FilePathToURI(path)
	c.version = 1
	params := DidOpenTextDocumentParams{TextDocument: TextDocumentItem{
		URI:        c.uri,
		LanguageID: c.languageID,
		Version:    c.version,
		Text:       text,
	}}
	c.mu.Unlock()
	return c.transport.Notify("textDocument/didOpen", params)
}

// DidChange sends the full new text of the open document.
func (c *Client) DidChange(text string) error {
	if c.State() != StateReady {
		return ErrNotReady
	}
	c.mu.Lock()
	if c.uri == "" {
		c.mu.Unlock()
		return ErrDocumentNotOpen
	}
	c.version++
	params := DidChangeTextDocumentParams{
		TextDocument: VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: TextDocumentIdentifier{URI: c.uri},
			Version:                c.version,
		},
		ContentChanges: []TextDocumentContentChangeEvent{{Text: text}},
	}
	c.mu.Unlock()
	return c.transport.Notify("textDocument/didChange", params)
}

// DidSave tells the server the open document was written to disk.
func (c *Client) DidSave() error {
	if c.State() != StateReady {
		return ErrNotReady
	}
	c.mu.Lock()
	uri := c.uri
	c.mu.Unlock()
	if uri == "" {
		return ErrDocumentNotOpen
	}
	return c.transport.Notify("textDocument/didSave", DidSaveTextDocumentParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
	})
}

// Version returns the version of the last text sent.
func (c *Client) Version() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Complete requests completions at pos in the open document. It returns
// the request id at once; the result is passed to the completion handler
// with the same id.
func (c *Client) Complete(pos Position) (int64, error) {
	if c.State() != StateReady {
		return 0, ErrNotReady
	}
	c.mu.Lock()
	uri := c.uri
	c.mu.Unlock()
	if uri == "" {
		return 0, ErrDocumentNotOpen
	}

	params := CompletionParams{
		TextDocumentPositionParams: TextDocumentPositionParams{
			TextDocument: TextDocumentIdentifier{URI: uri},
			Position:     pos,
		},
		Context: &CompletionContext{TriggerKind: completionTriggerInvoked},
	}
	return c.transport.Go("textDocument/completion", params, func(id int64, raw json.RawMessage, err error) {
		res := CompletionResult{ID: id, Err: err}
		if err == nil {
			res.Items, res.Err = parseCompletionResult(raw)
		}
		if c.onCompletion != nil {
			c.onCompletion(res)
		}
	})
}

// Shutdown sends shutdown and exit and closes the connection. It is safe
// to call in any state.
func (c *Client) Shutdown(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateReady), int32(StateShuttingDown)) {
		if c.State() != StateFailed {
			c.state.Store(int32(StateTerminated))
		}
		_ = c.transport.Close()
		return nil
	}

	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	err := c.transport.Call(ctx, "shutdown", nil, nil)
	if err == nil {
		err = c.transport.Notify("exit", nil)
	}
	_ = c.transport.Close()
	c.state.Store(int32(StateTerminated))
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// fail moves the session to Failed. Errors after shutdown began are
// expected and ignored.
func (c *Client) fail(err error) {
	for {
		s := c.State()
		if s == StateShuttingDown || s == StateTerminated || s == StateFailed {
			return
		}
		if c.state.CompareAndSwap(int32(s), int32(StateFailed)) {
			break
		}
	}

	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	_ = c.transport.Close()

	c.logger.Warn("lsp session failed: %v", err)
	if c.onFailure != nil {
		c.onFailure(err)
	}
}

func (c *Client) handleDiagnostics(_ string, raw json.RawMessage) {
	var p PublishDiagnosticsParams
	if err := json.Unmarshal(raw, &p); err != nil {
		c.fail(fmt.Errorf("%w: publishDiagnostics: %v", ErrProtocol, err))
		return
	}
	if c.onDiagnostics != nil {
		c.onDiagnostics(URIToFilePath(p.URI), p.Diagnostics)
	}
}

func (c *Client) handleMessage(method string, raw json.RawMessage) {
	var p ShowMessageParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}
	c.logger.Debug("%s: %s", method, p.Message)
}
