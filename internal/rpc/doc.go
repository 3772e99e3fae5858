// Package rpc provides a JSON-RPC 2.0 client for the Mopidy music server.
//
// # Overview
//
// Every call is wrapped in the envelope Mopidy expects:
//
//	{"jsonrpc": "2.0", "id": 1, "method": "core.playback.play", "params": {}}
//
// The request id is fixed because calls are strictly sequential; only the
// result field of the reply is handed back to callers.
//
// # Transports
//
//   - HTTPTransport: POST to http://localhost:6680/mopidy/rpc (default)
//   - WSTransport: a single WebSocket to ws://localhost:6680/mopidy/ws; event
//     frames pushed by Mopidy are ignored while waiting for the reply
//
// # Error Handling
//
// Call distinguishes three failure classes:
//
//   - *TransportError: the server could not be reached or the connection
//     dropped. IsTransport reports this class.
//   - decode failures and non-2xx HTTP statuses: plain wrapped errors
//   - *Error: the server answered with a JSON-RPC error object
//
// No retry is attempted here. Timeouts are off unless the caller configures
// one, so a hung server blocks the caller until its context is cancelled.
package rpc
