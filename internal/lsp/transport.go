package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// maxMessageSize bounds a single message body.
const maxMessageSize = 64 << 20

// Transport handles JSON-RPC 2.0 communication over stdio.
// It implements the LSP base protocol with Content-Length headers.
//
// Responses and notifications are handled on the read goroutine in the
// order they arrive, so handlers must not block.
type Transport struct {
	reader *bufio.Reader
	writer io.Writer
	closer io.Closer

	writeMu  sync.Mutex
	mu       sync.Mutex
	nextID   atomic.Int64
	pending  map[int64]ResponseHandler
	handlers map[string]NotificationHandler
	onError  func(error)

	closed atomic.Bool
	done   chan struct{}
}

// NotificationHandler handles incoming notifications from the server.
type NotificationHandler func(method string, params json.RawMessage)

// ResponseHandler receives the outcome of a request. err is an *RPCError
// for error responses, or the reason the connection ended.
type ResponseHandler func(id int64, result json.RawMessage, err error)

// Request represents a JSON-RPC request or notification.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Response represents a JSON-RPC response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// reply answers a request the server sent to us. Its id may be a string.
type reply struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result"`
}

// NewTransport creates a new transport over the given connection.
// c, when not nil, is closed with the transport.
func NewTransport(r io.Reader, w io.Writer, c io.Closer) *Transport {
	return &Transport{
		reader:   bufio.NewReaderSize(r, 64*1024),
		writer:   w,
		closer:   c,
		pending:  make(map[int64]ResponseHandler),
		handlers: make(map[string]NotificationHandler),
		done:     make(chan struct{}),
	}
}

// Start begins reading messages from the connection. The transport is
// closed when ctx ends.
func (t *Transport) Start(ctx context.Context) {
	go t.readLoop()
	go func() {
		select {
		case <-ctx.Done():
			_ = t.Close()
		case <-t.done:
		}
	}()
}

// OnError registers the function called once when the connection fails.
// It is not called for Close.
func (t *Transport) OnError(fn func(error)) {
	t.mu.Lock()
	t.onError = fn
	t.mu.Unlock()
}

// OnNotification registers a handler for server notifications.
func (t *Transport) OnNotification(method string, handler NotificationHandler) {
	t.mu.Lock()
	t.handlers[method] = handler
	t.mu.Unlock()
}

// Done is closed when the transport closes or fails.
func (t *Transport) Done() <-chan struct{} {
	return t.done
}

// IsClosed returns true if the transport has been closed.
func (t *Transport) IsClosed() bool {
	return t.closed.Load()
}

// Close closes the transport. Pending requests complete with ErrShutdown.
func (t *Transport) Close() error {
	return t.shutdown(ErrShutdown, false)
}

// fail closes the transport after a connection error and reports it.
func (t *Transport) fail(err error) {
	_ = t.shutdown(err, true)
}

func (t *Transport) shutdown(reason error, report bool) error {
	if t.closed.Swap(true) {
		return nil
	}
	close(t.done)

	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[int64]ResponseHandler)
	onError := t.onError
	t.mu.Unlock()

	for id, h := range pending {
		h(id, nil, reason)
	}

	var err error
	if t.closer != nil {
		err = t.closer.Close()
	}
	if report && onError != nil {
		onError(reason)
	}
	return err
}

// Go sends a request and returns its id at once. h runs on the read
// goroutine when the response arrives.
func (t *Transport) Go(method string, params any, h ResponseHandler) (int64, error) {
	if t.closed.Load() {
		return 0, ErrShutdown
	}

	id := t.nextID.Add(1)
	t.mu.Lock()
	// shutdown marks the transport closed before it drains pending, so a
	// handler registered after the drain is caught here.
	if t.closed.Load() {
		t.mu.Unlock()
		return 0, ErrShutdown
	}
	t.pending[id] = h
	t.mu.Unlock()

	req := &Request{JSONRPC: "2.0", ID: id, Method: method, Params: params}
	if err := t.send(req); err != nil {
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
		return 0, fmt.Errorf("send request: %w", err)
	}
	return id, nil
}

// Call sends a request and waits for a response.
func (t *Transport) Call(ctx context.Context, method string, params any, result any) error {
	type outcome struct {
		result json.RawMessage
		err    error
	}
	ch := make(chan outcome, 1)

	id, err := t.Go(method, params, func(_ int64, res json.RawMessage, err error) {
		ch <- outcome{res, err}
	})
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
		return ctx.Err()
	case out := <-ch:
		if out.err != nil {
			return out.err
		}
		if result != nil && len(out.result) > 0 && string(out.result) != "null" {
			if err := json.Unmarshal(out.result, result); err != nil {
				return fmt.Errorf("%w: unmarshal %s result: %v", ErrProtocol, method, err)
			}
		}
		return nil
	}
}

// Notify sends a notification (no response expected).
func (t *Transport) Notify(method string, params any) error {
	if t.closed.Load() {
		return ErrShutdown
	}
	return t.send(&Request{JSONRPC: "2.0", Method: method, Params: params})
}

// send writes a message with LSP content-length header.
func (t *Transport) send(msg any) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return writeMessage(t.writer, msg)
}

// writeMessage frames msg with a Content-Length header.
func writeMessage(w io.Writer, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Content-Length: %d\r\n\r\n", len(data))
	buf.Write(data)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// readLoop reads messages until the connection ends.
func (t *Transport) readLoop() {
	for {
		msg, err := readMessage(t.reader)
		if err != nil {
			if t.closed.Load() {
				return
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, io.ErrUnexpectedEOF) {
				err = ErrConnectionClosed
			}
			t.fail(err)
			return
		}
		if err := t.dispatch(msg); err != nil {
			t.fail(err)
			return
		}
	}
}

// readMessage reads a single framed message.
func readMessage(r *bufio.Reader) (json.RawMessage, error) {
	contentLength := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if line != "" && errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			if contentLength < 0 {
				// Blank lines between messages are tolerated.
				continue
			}
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: malformed header %q", ErrProtocol, line)
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 0 || n > maxMessageSize {
				return nil, fmt.Errorf("%w: bad Content-Length %q", ErrProtocol, value)
			}
			contentLength = n
		}
		// Content-Type and other headers are ignored.
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// dispatch routes a message to the appropriate handler.
func (t *Transport) dispatch(data json.RawMessage) error {
	var probe struct {
		ID     json.RawMessage `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	hasID := len(probe.ID) > 0 && string(probe.ID) != "null"
	switch {
	case probe.Method != "" && hasID:
		// Requests from the server, such as window/workDoneProgress/create,
		// get an empty success so the server does not wait on us.
		return t.send(&reply{JSONRPC: "2.0", ID: probe.ID, Result: nil})
	case probe.Method != "":
		t.handleNotification(probe.Method, probe.Params)
		return nil
	case hasID:
		id, err := strconv.ParseInt(string(probe.ID), 10, 64)
		if err != nil {
			// Not one of ours.
			return nil
		}
		t.handleResponse(id, probe.Result, probe.Error)
		return nil
	default:
		return fmt.Errorf("%w: message is neither request, response nor notification", ErrProtocol)
	}
}

// handleResponse routes a response to its waiting caller. Responses with
// unknown ids are ignored.
func (t *Transport) handleResponse(id int64, result json.RawMessage, rpcErr *RPCError) {
	t.mu.Lock()
	h, ok := t.pending[id]
	delete(t.pending, id)
	t.mu.Unlock()

	if !ok {
		return
	}
	if rpcErr != nil {
		h(id, nil, rpcErr)
		return
	}
	h(id, result, nil)
}

// handleNotification routes a notification to its handler.
func (t *Transport) handleNotification(method string, params json.RawMessage) {
	t.mu.Lock()
	handler, ok := t.handlers[method]
	if !ok {
		handler, ok = t.handlers["*"]
	}
	t.mu.Unlock()

	if ok && handler != nil {
		handler(method, params)
	}
}
