package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/fhs/gompd/v2/mpd"

	"github.com/five82/mopidy-bridge/internal/command"
	"github.com/five82/mopidy-bridge/internal/rpc"
)

// Ensure MPD implements Controller at compile time.
var _ Controller = (*MPD)(nil)

// DefaultMPDAddr is where Mopidy-MPD listens out of the box.
const DefaultMPDAddr = "localhost:6600"

// mpdConn is the subset of *mpd.Client the controller uses.
type mpdConn interface {
	Play(pos int) error
	Pause(pause bool) error
	Next() error
	Previous() error
	Stop() error
	Add(uri string) error
	Clear() error
	Shuffle(start, end int) error
	Status() (mpd.Attrs, error)
	Close() error
}

// MPD drives the server over the MPD protocol. A fresh connection is dialed
// per call since MPD drops idle clients.
type MPD struct {
	addr     string
	password string
	dial     func(addr, password string) (mpdConn, error)
}

// NewMPD builds a controller for addr (host:port).
func NewMPD(addr, password string) *MPD {
	if addr == "" {
		addr = DefaultMPDAddr
	}
	return &MPD{addr: addr, password: password, dial: dialMPD}
}

func dialMPD(addr, password string) (mpdConn, error) {
	var (
		c   *mpd.Client
		err error
	)
	if password != "" {
		c, err = mpd.DialAuthenticated("tcp", addr, password)
	} else {
		c, err = mpd.Dial("tcp", addr)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Execute implements Controller.
func (m *MPD) Execute(ctx context.Context, kind command.Kind, uri string) error {
	return m.with(ctx, func(c mpdConn) error {
		switch kind {
		case command.Play:
			return m.classify(c.Play(-1))
		case command.Pause:
			return m.classify(c.Pause(true))
		case command.Next:
			return m.classify(c.Next())
		case command.Prev:
			return m.classify(c.Previous())
		case command.Stop:
			return m.classify(c.Stop())
		case command.Add:
			if err := m.classify(c.Add(uri)); err != nil {
				if rpc.IsTransport(err) {
					return err
				}
				return fmt.Errorf("add %s: %w: %v", uri, ErrNotFound, err)
			}
			return nil
		case command.Clear:
			return m.classify(c.Clear())
		case command.Shuffle:
			return m.classify(c.Shuffle(-1, -1))
		default:
			return fmt.Errorf("mpd: unsupported command %s", kind)
		}
	})
}

// PlaybackState implements Controller, translating MPD's play/pause/stop
// into the Mopidy vocabulary.
func (m *MPD) PlaybackState(ctx context.Context) (string, error) {
	var state string
	err := m.with(ctx, func(c mpdConn) error {
		attrs, err := c.Status()
		if err != nil {
			return m.classify(err)
		}
		switch attrs["state"] {
		case "play":
			state = StatePlaying
		case "pause":
			state = "paused"
		default:
			state = "stopped"
		}
		return nil
	})
	return state, err
}

func (m *MPD) with(ctx context.Context, fn func(mpdConn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c, err := m.dial(m.addr, m.password)
	if err != nil {
		return &rpc.TransportError{Endpoint: "mpd://" + m.addr, Err: err}
	}
	defer func() { _ = c.Close() }()
	return fn(c)
}

func (m *MPD) classify(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, io.EOF) || errors.As(err, &netErr) {
		return &rpc.TransportError{Endpoint: "mpd://" + m.addr, Err: err}
	}
	return err
}
