package lsp

import (
	"errors"
	"fmt"
)

// Standard errors returned by the LSP client.
var (
	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("lsp client already started")

	// ErrShutdown indicates the connection has been shut down.
	ErrShutdown = errors.New("lsp client shut down")

	// ErrNotReady indicates the session has not finished initializing or
	// has ended.
	ErrNotReady = errors.New("lsp session not ready")

	// ErrDocumentNotOpen indicates a request needs a document that was
	// never opened.
	ErrDocumentNotOpen = errors.New("document not open")

	// ErrProtocol indicates the server sent something that is not valid
	// framed JSON-RPC. The session fails.
	ErrProtocol = errors.New("lsp protocol error")

	// ErrConnectionClosed indicates the server closed its output.
	ErrConnectionClosed = errors.New("lsp connection closed")
)

// RPCError represents a JSON-RPC error from the server.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("rpc error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	CodeServerNotInitialized = -32002
	CodeRequestCancelled     = -32800
	CodeContentModified      = -32801
)
