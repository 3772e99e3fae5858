package player

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/five82/mopidy-bridge/internal/command"
	"github.com/five82/mopidy-bridge/internal/rpc"
)

// Ensure Mopidy implements Controller at compile time.
var _ Controller = (*Mopidy)(nil)

// Mopidy drives a Mopidy server through its JSON-RPC core API.
type Mopidy struct {
	rpc rpc.Caller
}

// NewMopidy wraps an RPC caller.
func NewMopidy(caller rpc.Caller) *Mopidy {
	return &Mopidy{rpc: caller}
}

// Execute implements Controller.
func (m *Mopidy) Execute(ctx context.Context, kind command.Kind, uri string) error {
	req := kind.Build(uri)
	result, err := m.rpc.Call(ctx, req.Method, req.Params)
	if err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	if kind != command.Add {
		return nil
	}
	var added []json.RawMessage
	if err := json.Unmarshal(result, &added); err != nil {
		return fmt.Errorf("%s: decode result: %w", kind, err)
	}
	if len(added) == 0 {
		return fmt.Errorf("%s %s: %w", kind, uri, ErrNotFound)
	}
	return nil
}

// PlaybackState implements Controller.
func (m *Mopidy) PlaybackState(ctx context.Context) (string, error) {
	result, err := m.rpc.Call(ctx, command.StateMethod, nil)
	if err != nil {
		return "", fmt.Errorf("get state: %w", err)
	}
	var state string
	if err := json.Unmarshal(result, &state); err != nil {
		return "", fmt.Errorf("get state: decode result: %w", err)
	}
	return state, nil
}
