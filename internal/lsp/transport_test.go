package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReadMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "plain",
			input: "Content-Length: 2\r\n\r\n{}",
			want:  "{}",
		},
		{
			name:  "extra headers",
			input: "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\ncontent-length: 7\r\n\r\n{\"a\":1}",
			want:  `{"a":1}`,
		},
		{
			name:  "leading blank line",
			input: "\r\nContent-Length: 2\r\n\r\n[]",
			want:  "[]",
		},
		{
			name:    "bad length",
			input:   "Content-Length: abc\r\n\r\n{}",
			wantErr: ErrProtocol,
		},
		{
			name:    "malformed header",
			input:   "garbage\r\n\r\n{}",
			wantErr: ErrProtocol,
		},
		{
			name:    "truncated body",
			input:   "Content-Length: 10\r\n\r\n{}",
			wantErr: io.ErrUnexpectedEOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readMessage(bufio.NewReader(strings.NewReader(tt.input)))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, string(got))
		})
	}
}

func TestWriteMessageFraming(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, writeMessage(&sb, &Request{JSONRPC: "2.0", Method: "exit"}))
	require.Equal(t, "Content-Length: 33\r\n\r\n{\"jsonrpc\":\"2.0\",\"method\":\"exit\"}", sb.String())
}

// message is what the fake server reads from the client.
type message struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
}

// fakeServer is the other end of a client's pipes.
type fakeServer struct {
	t    *testing.T
	out  *io.PipeWriter
	msgs chan message
}

type pipeCloser struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p pipeCloser) Close() error {
	p.r.Close()
	return p.w.Close()
}

// newPair connects a client to a fake server over in-memory pipes.
func newPair(t *testing.T, opts ...Option) (*Client, *fakeServer) {
	t.Helper()
	c2sR, c2sW := io.Pipe()
	s2cR, s2cW := io.Pipe()

	srv := &fakeServer{t: t, out: s2cW, msgs: make(chan message, 64)}
	go func() {
		defer close(srv.msgs)
		r := bufio.NewReader(c2sR)
		for {
			data, err := readMessage(r)
			if err != nil {
				return
			}
			var m message
			if err := json.Unmarshal(data, &m); err != nil {
				return
			}
			srv.msgs <- m
		}
	}()

	c := NewClient(s2cR, c2sW, pipeCloser{r: s2cR, w: c2sW}, opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_ = c.Shutdown(ctx)
		s2cW.Close()
		c2sR.Close()
	})
	return c, srv
}

func (s *fakeServer) expect(method string) message {
	s.t.Helper()
	select {
	case m, ok := <-s.msgs:
		require.True(s.t, ok, "connection closed while waiting for %s", method)
		require.Equal(s.t, method, m.Method)
		return m
	case <-time.After(2 * time.Second):
		s.t.Fatalf("timed out waiting for %s", method)
		return message{}
	}
}

func (s *fakeServer) send(v any) {
	s.t.Helper()
	require.NoError(s.t, writeMessage(s.out, v))
}

func (s *fakeServer) respond(id json.RawMessage, result any) {
	s.t.Helper()
	s.send(map[string]any{"jsonrpc": "2.0", "id": id, "result": result})
}

func (s *fakeServer) notify(method string, params any) {
	s.t.Helper()
	s.send(map[string]any{"jsonrpc": "2.0", "method": method, "params": params})
}

// handshake runs Start against the fake server.
func handshake(t *testing.T, c *Client, srv *fakeServer) {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- c.Start(context.Background()) }()

	init := srv.expect("initialize")
	srv.respond(init.ID, map[string]any{
		"capabilities": map[string]any{"completionProvider": map[string]any{}},
		"serverInfo":   map[string]any{"name": "fake"},
	})
	srv.expect("initialized")
	require.NoError(t, <-errc)
	require.Equal(t, StateReady, c.State())
}

func TestCallWithRPCError(t *testing.T) {
	c, srv := newPair(t)
	c.transport.Start(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- c.transport.Call(context.Background(), "test/fail", nil, nil) }()

	m := srv.expect("test/fail")
	srv.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      m.ID,
		"error":   map[string]any{"code": CodeInvalidParams, "message": "bad"},
	})

	err := <-errc
	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, CodeInvalidParams, rpcErr.Code)
}

func TestCallContextCancelled(t *testing.T) {
	c, srv := newPair(t)
	c.transport.Start(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.transport.Call(ctx, "test/slow", nil, nil) }()
	m := srv.expect("test/slow")
	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)

	// A late answer to the abandoned id is ignored.
	srv.respond(m.ID, "late")
	require.False(t, c.transport.IsClosed())
}

func TestCloseFailsPendingCalls(t *testing.T) {
	c, srv := newPair(t)
	c.transport.Start(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- c.transport.Call(context.Background(), "test/hang", nil, nil) }()
	srv.expect("test/hang")

	require.NoError(t, c.transport.Close())
	require.ErrorIs(t, <-errc, ErrShutdown)
	require.ErrorIs(t, c.transport.Notify("x", nil), ErrShutdown)
}

func TestCallsRacingCloseAlwaysReturn(t *testing.T) {
	c, _ := newPair(t)
	c.transport.Start(context.Background())

	const n = 32
	errc := make(chan error, n)
	for range n {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			errc <- c.transport.Call(ctx, "test/race", nil, nil)
		}()
	}
	require.NoError(t, c.transport.Close())

	for range n {
		err := receive(t, errc)
		require.Error(t, err)
		require.NotErrorIs(t, err, context.DeadlineExceeded, "a call lost its handler")
	}
}
