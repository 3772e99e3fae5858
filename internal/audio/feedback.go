package audio

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/five82/mopidy-bridge/internal/command"
)

// Playback is the slice of the player the feedback unit needs to pause and
// resume around a cue.
type Playback interface {
	Execute(ctx context.Context, kind command.Kind, uri string) error
}

// Feedback plays notification cues at a fixed loudness.
type Feedback struct {
	playback     Playback
	session      *Session
	mixer        Mixer
	sounds       SoundPlayer
	library      Library
	notifyVolume int
	log          *zap.Logger
}

// FeedbackOptions wires a Feedback unit.
type FeedbackOptions struct {
	Playback     Playback
	Session      *Session
	Mixer        Mixer
	Sounds       SoundPlayer
	Library      Library
	NotifyVolume int // zero uses NotifyVolume
	Logger       *zap.Logger
}

// NewFeedback builds a Feedback unit.
func NewFeedback(opts FeedbackOptions) *Feedback {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	level := opts.NotifyVolume
	if level <= 0 {
		level = NotifyVolume
	}
	return &Feedback{
		playback:     opts.Playback,
		session:      opts.Session,
		mixer:        opts.Mixer,
		sounds:       opts.Sounds,
		library:      opts.Library,
		notifyVolume: Clamp(level),
		log:          log,
	}
}

// Notify stops playback, plays sound loudly, restores the session volume and,
// for Affirmative only, resumes playback. It blocks until the cue finishes.
// A cue that fails to play is logged; the surrounding steps still run.
func (f *Feedback) Notify(ctx context.Context, sound Sound) error {
	if err := f.playback.Execute(ctx, command.Stop, ""); err != nil {
		return fmt.Errorf("notify %s: %w", sound, err)
	}
	f.cue(ctx, sound)
	if err := f.session.Apply(ctx); err != nil {
		return fmt.Errorf("notify %s: restore volume: %w", sound, err)
	}
	if sound != Affirmative {
		return nil
	}
	if err := f.playback.Execute(ctx, command.Play, ""); err != nil {
		return fmt.Errorf("notify %s: %w", sound, err)
	}
	return nil
}

// Announce raises the volume and plays sound without touching playback or
// restoring the volume afterwards. Used for startup and shutdown.
func (f *Feedback) Announce(ctx context.Context, sound Sound) {
	f.cue(ctx, sound)
}

func (f *Feedback) cue(ctx context.Context, sound Sound) {
	if err := f.mixer.SetVolume(ctx, f.notifyVolume); err != nil {
		f.log.Warn("raise volume for cue failed", zap.String("sound", string(sound)), zap.Error(err))
	}
	path := f.library.Path(sound)
	if err := f.sounds.Play(ctx, path); err != nil {
		f.log.Warn("notification sound failed", zap.String("sound", string(sound)), zap.String("path", path), zap.Error(err))
		return
	}
	f.log.Debug("notification played", zap.String("sound", string(sound)))
}
