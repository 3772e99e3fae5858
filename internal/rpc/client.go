package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Caller defines the single operation consumers need from the RPC layer.
// This interface is implemented by *Client and can be used for testing.
type Caller interface {
	Call(ctx context.Context, method string, params map[string]any) (json.RawMessage, error)
}

// Ensure Client implements Caller at compile time.
var _ Caller = (*Client)(nil)

// Transport moves one encoded request to the server and returns the raw reply.
type Transport interface {
	RoundTrip(ctx context.Context, payload []byte) ([]byte, error)
	Close() error
}

// Client talks to the Mopidy JSON-RPC API.
type Client struct {
	transport Transport
}

const (
	DefaultHTTPEndpoint = "http://localhost:6680/mopidy/rpc"
	DefaultWSEndpoint   = "ws://localhost:6680/mopidy/ws"
	defaultUserAgent    = "mopidy-bridge/0.1"
)

// NewClient builds a Client on top of an existing transport.
func NewClient(transport Transport) *Client {
	return &Client{transport: transport}
}

// NewHTTPClient builds a Client posting to endpoint. A zero timeout means
// requests wait as long as the server takes.
func NewHTTPClient(endpoint string, timeout time.Duration) (*Client, error) {
	t, err := NewHTTPTransport(endpoint, timeout)
	if err != nil {
		return nil, err
	}
	return NewClient(t), nil
}

// Call sends method with params and returns the decoded result field.
func (c *Client) Call(ctx context.Context, method string, params map[string]any) (json.RawMessage, error) {
	if c == nil || c.transport == nil {
		return nil, fmt.Errorf("client is nil")
	}
	body, err := json.Marshal(newRequest(method, params))
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	raw, err := c.transport.RoundTrip(ctx, body)
	if err != nil {
		return nil, err
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	if c == nil || c.transport == nil {
		return nil
	}
	return c.transport.Close()
}

// HTTPTransport posts each request to the Mopidy HTTP endpoint.
type HTTPTransport struct {
	endpoint  *url.URL
	http      *http.Client
	userAgent string
}

// NewHTTPTransport validates endpoint and prepares an HTTP transport.
func NewHTTPTransport(endpoint string, timeout time.Duration) (*HTTPTransport, error) {
	u, err := parseEndpoint(endpoint, DefaultHTTPEndpoint, "http")
	if err != nil {
		return nil, err
	}
	return &HTTPTransport{
		endpoint:  u,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}, nil
}

// RoundTrip implements Transport.
func (t *HTTPTransport) RoundTrip(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: t.endpoint.String(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rpc %s returned status %d", t.endpoint.Path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: t.endpoint.String(), Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// Close implements Transport.
func (t *HTTPTransport) Close() error {
	t.http.CloseIdleConnections()
	return nil
}

// Endpoint returns the resolved URL requests are sent to.
func (t *HTTPTransport) Endpoint() string {
	return t.endpoint.String()
}

func parseEndpoint(raw, fallback, scheme string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = fallback
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = scheme + "://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse endpoint %q: missing host", raw)
	}
	if u.Path == "" || u.Path == "/" {
		fallbackURL, _ := url.Parse(fallback)
		u.Path = fallbackURL.Path
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
