package player

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/fhs/gompd/v2/mpd"

	"github.com/five82/mopidy-bridge/internal/command"
	"github.com/five82/mopidy-bridge/internal/rpc"
)

type fakeCaller struct {
	methods []string
	params  []map[string]any
	results map[string]string
	err     error
}

func (f *fakeCaller) Call(_ context.Context, method string, params map[string]any) (json.RawMessage, error) {
	f.methods = append(f.methods, method)
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	if res, ok := f.results[method]; ok {
		return json.RawMessage(res), nil
	}
	return json.RawMessage("null"), nil
}

func TestMopidy_ExecuteBuildsRequests(t *testing.T) {
	caller := &fakeCaller{}
	m := NewMopidy(caller)

	if err := m.Execute(context.Background(), command.Next, "ignored"); err != nil {
		t.Fatalf("Execute(next) returned error: %v", err)
	}
	if len(caller.methods) != 1 || caller.methods[0] != "core.playback.next" {
		t.Fatalf("methods = %v, want [core.playback.next]", caller.methods)
	}
	if len(caller.params[0]) != 0 {
		t.Fatalf("params = %#v, want empty", caller.params[0])
	}
}

func TestMopidy_AddEmptyResultIsNotFound(t *testing.T) {
	caller := &fakeCaller{results: map[string]string{"core.tracklist.add": "[]"}}
	m := NewMopidy(caller)

	err := m.Execute(context.Background(), command.Add, "spotify:track:4uLU6hMCjMI75M1A2tKUQC")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Execute(add) error = %v, want ErrNotFound", err)
	}
	want := map[string]any{"uris": []string{"spotify:track:4uLU6hMCjMI75M1A2tKUQC"}}
	if !reflect.DeepEqual(caller.params[0], want) {
		t.Fatalf("params = %#v, want %#v", caller.params[0], want)
	}
}

func TestMopidy_AddWithTracksSucceeds(t *testing.T) {
	caller := &fakeCaller{results: map[string]string{"core.tracklist.add": `[{"__model__":"TlTrack","tlid":1}]`}}
	if err := NewMopidy(caller).Execute(context.Background(), command.Add, "spotify:track:x"); err != nil {
		t.Fatalf("Execute(add) returned error: %v", err)
	}
}

func TestMopidy_PlaybackState(t *testing.T) {
	caller := &fakeCaller{results: map[string]string{command.StateMethod: `"paused"`}}
	state, err := NewMopidy(caller).PlaybackState(context.Background())
	if err != nil {
		t.Fatalf("PlaybackState returned error: %v", err)
	}
	if state != "paused" {
		t.Fatalf("PlaybackState = %q, want paused", state)
	}
}

func TestMopidy_PropagatesTransportErrors(t *testing.T) {
	caller := &fakeCaller{err: &rpc.TransportError{Endpoint: "x", Err: io.EOF}}
	err := NewMopidy(caller).Execute(context.Background(), command.Play, "")
	if !rpc.IsTransport(err) {
		t.Fatalf("Execute error = %v, want transport error", err)
	}
	_, err = NewMopidy(caller).PlaybackState(context.Background())
	if !rpc.IsTransport(err) {
		t.Fatalf("PlaybackState error = %v, want transport error", err)
	}
}

type fakeMPD struct {
	calls  []string
	state  string
	addErr error
	err    error
}

func (f *fakeMPD) record(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeMPD) Play(pos int) error { return f.record("play") }
func (f *fakeMPD) Pause(pause bool) error { return f.record("pause") }
func (f *fakeMPD) Next() error { return f.record("next") }
func (f *fakeMPD) Previous() error { return f.record("previous") }
func (f *fakeMPD) Stop() error { return f.record("stop") }
func (f *fakeMPD) Clear() error { return f.record("clear") }
func (f *fakeMPD) Shuffle(start, end int) error { return f.record("shuffle") }
func (f *fakeMPD) Close() error { return nil }

func (f *fakeMPD) Add(uri string) error {
	f.calls = append(f.calls, "add "+uri)
	return f.addErr
}

func (f *fakeMPD) Status() (mpd.Attrs, error) {
	f.calls = append(f.calls, "status")
	return mpd.Attrs{"state": f.state}, f.err
}

func newFakeMPD(conn *fakeMPD, dialErr error) *MPD {
	m := NewMPD("", "")
	m.dial = func(addr, password string) (mpdConn, error) {
		if dialErr != nil {
			return nil, dialErr
		}
		return conn, nil
	}
	return m
}

func TestMPD_ExecuteMapsCommands(t *testing.T) {
	conn := &fakeMPD{}
	m := newFakeMPD(conn, nil)
	for _, k := range command.All {
		if err := m.Execute(context.Background(), k, "spotify:track:x"); err != nil {
			t.Fatalf("Execute(%s) returned error: %v", k, err)
		}
	}
	want := []string{"play", "pause", "next", "previous", "stop", "add spotify:track:x", "clear", "shuffle"}
	if !reflect.DeepEqual(conn.calls, want) {
		t.Fatalf("calls = %v, want %v", conn.calls, want)
	}
}

func TestMPD_AddFailureIsNotFound(t *testing.T) {
	conn := &fakeMPD{addErr: errors.New("No such directory")}
	err := newFakeMPD(conn, nil).Execute(context.Background(), command.Add, "spotify:track:x")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Execute(add) error = %v, want ErrNotFound", err)
	}
}

func TestMPD_DialFailureIsTransport(t *testing.T) {
	err := newFakeMPD(nil, errors.New("connection refused")).Execute(context.Background(), command.Play, "")
	if !rpc.IsTransport(err) {
		t.Fatalf("Execute error = %v, want transport error", err)
	}
}

func TestMPD_PlaybackStateTranslates(t *testing.T) {
	tests := map[string]string{"play": StatePlaying, "pause": "paused", "stop": "stopped", "": "stopped"}
	for mpdState, want := range tests {
		got, err := newFakeMPD(&fakeMPD{state: mpdState}, nil).PlaybackState(context.Background())
		if err != nil {
			t.Fatalf("PlaybackState returned error: %v", err)
		}
		if got != want {
			t.Fatalf("PlaybackState(%q) = %q, want %q", mpdState, got, want)
		}
	}
}

func TestMPD_EOFIsTransport(t *testing.T) {
	err := newFakeMPD(&fakeMPD{err: io.EOF}, nil).Execute(context.Background(), command.Next, "")
	if !rpc.IsTransport(err) {
		t.Fatalf("Execute error = %v, want transport error", err)
	}
}
