package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/mopidy-bridge/internal/audio"
	"github.com/five82/mopidy-bridge/internal/command"
	"github.com/five82/mopidy-bridge/internal/device"
	"github.com/five82/mopidy-bridge/internal/player"
	"github.com/five82/mopidy-bridge/internal/rpc"
	"github.com/five82/mopidy-bridge/internal/spotify"
	"github.com/five82/mopidy-bridge/internal/state"
)

// Device vocabulary sent by the controller firmware.
const (
	EventToggle  = "play/pause"
	EventNext    = "next"
	EventPrev    = "prev"
	EventUp      = "up"
	EventDown    = "down"
	EventShuffle = "shuffle"
)

// ErrUnrecognized is returned for terminal input outside the command vocabulary.
var ErrUnrecognized = errors.New("not a valid command")

// DefaultLoopDelay separates consecutive device events.
const DefaultLoopDelay = 100 * time.Millisecond

// Notifier plays audible confirmation or rejection cues.
type Notifier interface {
	Notify(ctx context.Context, sound audio.Sound) error
}

// Options configure a Dispatcher.
type Options struct {
	Player    player.Controller
	Session   *audio.Session
	Notifier  Notifier
	Store     *state.Store // optional
	Logger    *zap.Logger
	LoopDelay time.Duration // zero uses DefaultLoopDelay
}

// Dispatcher turns events into player commands, one at a time.
type Dispatcher struct {
	mu        sync.Mutex
	player    player.Controller
	session   *audio.Session
	notifier  Notifier
	store     *state.Store
	log       *zap.Logger
	loopDelay time.Duration
}

// New builds a Dispatcher.
func New(opts Options) *Dispatcher {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	delay := opts.LoopDelay
	if delay <= 0 {
		delay = DefaultLoopDelay
	}
	return &Dispatcher{
		player:    opts.Player,
		session:   opts.Session,
		notifier:  opts.Notifier,
		store:     opts.Store,
		log:       log,
		loopDelay: delay,
	}
}

// IsFatal reports whether err should stop the event loop: only a lost
// connection to the server qualifies.
func IsFatal(err error) bool {
	return err != nil && rpc.IsTransport(err)
}

// Prepare applies the baseline volume and empties the tracklist once.
func (d *Dispatcher) Prepare(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.session.Apply(ctx); err != nil {
		d.log.Warn("apply initial volume failed", zap.Int("volume", d.session.Volume()), zap.Error(err))
	}
	if d.store != nil {
		d.store.SetVolume(d.session.Volume())
	}
	if err := d.player.Execute(ctx, command.Clear, ""); err != nil {
		return fmt.Errorf("clear tracklist: %w", err)
	}
	return nil
}

// HandleDeviceEvent dispatches one cleaned line from the controller.
// Unknown lines that are not Spotify URLs are discarded silently.
func (d *Dispatcher) HandleDeviceEvent(ctx context.Context, line string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	log := d.log.With(zap.String("event_id", uuid.NewString()), zap.String("event", line))
	log.Debug("device event")

	outcome, err := d.handleDevice(ctx, line, log)
	d.record(line, outcome, err)
	if err != nil {
		log.Warn("dispatch failed", zap.String("outcome", string(outcome)), zap.Error(err))
	}
	return err
}

func (d *Dispatcher) handleDevice(ctx context.Context, line string, log *zap.Logger) (state.Outcome, error) {
	switch line {
	case EventToggle:
		return d.toggle(ctx, log)
	case EventNext:
		return d.dispatch(ctx, command.Next, "", log)
	case EventPrev:
		return d.dispatch(ctx, command.Prev, "", log)
	case EventUp:
		return d.stepVolume(ctx, audio.VolumeStep, log)
	case EventDown:
		return d.stepVolume(ctx, -audio.VolumeStep, log)
	case EventShuffle:
		return d.dispatch(ctx, command.Shuffle, "", log)
	}

	if !spotify.IsURL(line) {
		log.Debug("discarding unrecognized event")
		return state.OutcomeDiscarded, nil
	}
	if err := d.player.Execute(ctx, command.Clear, ""); err != nil {
		return state.OutcomeFailed, err
	}
	return d.dispatch(ctx, command.Add, line, log)
}

// Dispatch runs kind. A URL, when given or required by kind, is normalized
// first and the outcome is announced with a cue.
func (d *Dispatcher) Dispatch(ctx context.Context, kind command.Kind, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dispatchLogged(ctx, kind.String(), kind, url)
}

// DispatchName runs a command typed at the terminal. Names outside the
// vocabulary return ErrUnrecognized.
func (d *Dispatcher) DispatchName(ctx context.Context, name, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	kind, ok := command.Parse(name)
	if !ok {
		d.record(name, state.OutcomeDiscarded, ErrUnrecognized)
		return fmt.Errorf("%q: %w", name, ErrUnrecognized)
	}
	return d.dispatchLogged(ctx, name, kind, url)
}

func (d *Dispatcher) dispatchLogged(ctx context.Context, event string, kind command.Kind, url string) error {
	log := d.log.With(zap.String("event_id", uuid.NewString()), zap.Stringer("command", kind))
	outcome, err := d.dispatch(ctx, kind, strings.TrimSpace(url), log)
	d.record(event, outcome, err)
	if err != nil {
		log.Warn("dispatch failed", zap.String("outcome", string(outcome)), zap.Error(err))
	}
	return err
}

// dispatch runs one command. A URL, when present or required, is normalized
// first; URL-bearing commands end with an audible cue, URL-less ones do not.
func (d *Dispatcher) dispatch(ctx context.Context, kind command.Kind, url string, log *zap.Logger) (state.Outcome, error) {
	if url == "" && !kind.TakesURI() {
		if err := d.player.Execute(ctx, kind, ""); err != nil {
			return state.OutcomeFailed, err
		}
		log.Debug("command sent", zap.Stringer("command", kind))
		return state.OutcomeDone, nil
	}

	uri, err := spotify.Normalize(url)
	if err != nil {
		log.Info("incorrect spotify url", zap.String("url", url))
		return state.OutcomeInvalidURL, d.notify(ctx, audio.Error, err)
	}

	err = d.player.Execute(ctx, kind, uri.String())
	switch {
	case errors.Is(err, player.ErrNotFound):
		log.Info("spotify uri not found", zap.Stringer("uri", uri))
		return state.OutcomeNotFound, d.notify(ctx, audio.Error, err)
	case err != nil:
		return state.OutcomeFailed, err
	}
	log.Info("command sent", zap.Stringer("command", kind), zap.Stringer("uri", uri))
	return state.OutcomeDone, d.notify(ctx, audio.Affirmative, nil)
}

func (d *Dispatcher) toggle(ctx context.Context, log *zap.Logger) (state.Outcome, error) {
	current, err := d.player.PlaybackState(ctx)
	if err != nil {
		return state.OutcomeFailed, err
	}
	next := command.Play
	if current == player.StatePlaying {
		next = command.Pause
	}
	log.Debug("toggling playback", zap.String("state", current), zap.Stringer("command", next))
	return d.dispatch(ctx, next, "", log)
}

func (d *Dispatcher) stepVolume(ctx context.Context, delta int, log *zap.Logger) (state.Outcome, error) {
	if err := d.session.Step(ctx, delta); err != nil {
		return state.OutcomeFailed, fmt.Errorf("set volume: %w", err)
	}
	log.Debug("volume changed", zap.Int("volume", d.session.Volume()))
	return state.OutcomeDone, nil
}

// notify plays sound and returns cause joined with any notification failure.
func (d *Dispatcher) notify(ctx context.Context, sound audio.Sound, cause error) error {
	if err := d.notifier.Notify(ctx, sound); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// discard records a device line that was dropped before it could be read.
func (d *Dispatcher) discard(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log.Debug("device line discarded", zap.Error(err))
	d.record("oversized line", state.OutcomeDiscarded, nil)
}

func (d *Dispatcher) record(event string, outcome state.Outcome, err error) {
	if d.store == nil {
		return
	}
	d.store.Update(state.Record{
		Event:   event,
		Outcome: outcome,
		Volume:  d.session.Volume(),
		Err:     err,
	})
}

// Run feeds events from src to HandleDeviceEvent until ctx is cancelled, the
// source ends, or the server becomes unreachable. Only the last case returns
// a non-nil error.
func (d *Dispatcher) Run(ctx context.Context, src device.Source) error {
	d.log.Info("listening for device events")
	for {
		line, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				d.log.Info("device stream ended")
				return nil
			}
			if errors.Is(err, device.ErrLineTooLong) {
				d.discard(err)
				continue
			}
			return fmt.Errorf("read device: %w", err)
		}

		if err := d.HandleDeviceEvent(ctx, line); IsFatal(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(d.loopDelay):
		}
	}
}
