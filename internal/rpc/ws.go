package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/coder/websocket"
)

const wsReadLimit = 4 << 20

// WSTransport keeps one WebSocket open to Mopidy's /mopidy/ws endpoint.
// Mopidy pushes event frames on the same socket; those are skipped while
// waiting for the reply.
type WSTransport struct {
	endpoint *url.URL

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSTransport validates endpoint. The connection is dialed lazily.
func NewWSTransport(endpoint string) (*WSTransport, error) {
	u, err := parseEndpoint(endpoint, DefaultWSEndpoint, "ws")
	if err != nil {
		return nil, err
	}
	return &WSTransport{endpoint: u}, nil
}

// RoundTrip implements Transport.
func (t *WSTransport) RoundTrip(ctx context.Context, payload []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	conn, err := t.connLocked(ctx)
	if err != nil {
		return nil, err
	}
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		t.dropLocked()
		return nil, &TransportError{Endpoint: t.endpoint.String(), Err: fmt.Errorf("write: %w", err)}
	}
	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			t.dropLocked()
			return nil, &TransportError{Endpoint: t.endpoint.String(), Err: fmt.Errorf("read: %w", err)}
		}
		if isReply(msg) {
			return msg, nil
		}
	}
}

// Close implements Transport.
func (t *WSTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close(websocket.StatusNormalClosure, "done")
	t.conn = nil
	return err
}

func (t *WSTransport) connLocked(ctx context.Context) (*websocket.Conn, error) {
	if t.conn != nil {
		return t.conn, nil
	}
	conn, _, err := websocket.Dial(ctx, t.endpoint.String(), nil)
	if err != nil {
		return nil, &TransportError{Endpoint: t.endpoint.String(), Err: fmt.Errorf("dial: %w", err)}
	}
	conn.SetReadLimit(wsReadLimit)
	t.conn = conn
	return conn, nil
}

func (t *WSTransport) dropLocked() {
	if t.conn != nil {
		_ = t.conn.CloseNow()
		t.conn = nil
	}
}

// isReply distinguishes a JSON-RPC response from a pushed Mopidy event.
func isReply(msg []byte) bool {
	var reply struct {
		JSONRPC string `json:"jsonrpc"`
		ID      *int   `json:"id"`
	}
	if err := json.Unmarshal(msg, &reply); err != nil {
		return false
	}
	return reply.JSONRPC == protocolVersion && reply.ID != nil && *reply.ID == requestID
}
