// Package command defines the fixed vocabulary of playback commands and the
// Mopidy method each one maps to.
package command

import (
	"fmt"
	"strings"
)

// Kind identifies one playback command.
type Kind int

const (
	Play Kind = iota
	Pause
	Next
	Prev
	Stop
	Add
	Clear
	Shuffle
)

// StateMethod queries the current playback state. It is not a Kind because
// it never mutates anything and always goes through the toggle logic.
const StateMethod = "core.playback.get_state"

// All lists every kind in vocabulary order.
var All = []Kind{Play, Pause, Next, Prev, Stop, Add, Clear, Shuffle}

// Request is the RPC method and parameters a command resolves to.
type Request struct {
	Method string
	Params map[string]any
}

// String returns the symbolic name used by the terminal and in logs.
func (k Kind) String() string {
	switch k {
	case Play:
		return "play"
	case Pause:
		return "pause"
	case Next:
		return "next"
	case Prev:
		return "prev"
	case Stop:
		return "stop"
	case Add:
		return "add"
	case Clear:
		return "clear"
	case Shuffle:
		return "shuffle"
	default:
		return fmt.Sprintf("command(%d)", int(k))
	}
}

// TakesURI reports whether the command consumes a URI argument.
func (k Kind) TakesURI() bool {
	return k == Add
}

// Build resolves the command into its RPC request. uri is ignored by every
// kind except Add.
func (k Kind) Build(uri string) Request {
	switch k {
	case Play:
		return Request{Method: "core.playback.play", Params: map[string]any{}}
	case Pause:
		return Request{Method: "core.playback.pause", Params: map[string]any{}}
	case Next:
		return Request{Method: "core.playback.next", Params: map[string]any{}}
	case Prev:
		return Request{Method: "core.playback.previous", Params: map[string]any{}}
	case Stop:
		return Request{Method: "core.playback.stop", Params: map[string]any{}}
	case Add:
		return Request{Method: "core.tracklist.add", Params: map[string]any{"uris": []string{uri}}}
	case Clear:
		return Request{Method: "core.tracklist.clear", Params: map[string]any{}}
	case Shuffle:
		return Request{Method: "core.tracklist.shuffle", Params: map[string]any{}}
	default:
		panic(fmt.Sprintf("command: unknown kind %d", int(k)))
	}
}

// Parse maps a symbolic name to its Kind. Matching is exact after trimming
// surrounding whitespace.
func Parse(name string) (Kind, bool) {
	trimmed := strings.TrimSpace(name)
	for _, k := range All {
		if k.String() == trimmed {
			return k, true
		}
	}
	return 0, false
}

// Names returns the vocabulary in order, for help text.
func Names() []string {
	names := make([]string, len(All))
	for i, k := range All {
		names[i] = k.String()
	}
	return names
}
