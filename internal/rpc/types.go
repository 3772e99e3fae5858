package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	protocolVersion = "2.0"
	requestID       = 1
)

// Request mirrors a JSON-RPC 2.0 call as Mopidy expects it.
type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int            `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

// Response mirrors the JSON-RPC 2.0 reply. Only Result and Error are consumed.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int            `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC error object returned by the server.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("mopidy error %d: %s", e.Code, e.Message)
}

// TransportError wraps failures to reach the server at all.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rpc transport %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err (or anything it wraps) is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func newRequest(method string, params map[string]any) Request {
	if params == nil {
		params = map[string]any{}
	}
	return Request{
		JSONRPC: protocolVersion,
		ID:      requestID,
		Method:  method,
		Params:  params,
	}
}
