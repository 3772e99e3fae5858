package audio

import "context"

const (
	MinVolume  = 0
	MaxVolume  = 100
	VolumeStep = 10

	// NotifyVolume is the level cues are played at.
	NotifyVolume = 75
)

// Clamp bounds v to [MinVolume, MaxVolume].
func Clamp(v int) int {
	if v < MinVolume {
		return MinVolume
	}
	if v > MaxVolume {
		return MaxVolume
	}
	return v
}

// Session owns the user's chosen volume. It is not safe for concurrent use;
// the dispatcher owns it and hands a reference to Feedback.
type Session struct {
	mixer  Mixer
	volume int
}

// NewSession starts a session at initial (clamped). Nothing is applied to the
// mixer until Apply, Set or Step is called.
func NewSession(mixer Mixer, initial int) *Session {
	return &Session{mixer: mixer, volume: Clamp(initial)}
}

// Volume returns the configured level.
func (s *Session) Volume() int {
	return s.volume
}

// Set records v (clamped) and applies it immediately.
func (s *Session) Set(ctx context.Context, v int) error {
	s.volume = Clamp(v)
	return s.Apply(ctx)
}

// Step moves the volume by delta, clamped at the bounds.
func (s *Session) Step(ctx context.Context, delta int) error {
	return s.Set(ctx, s.volume+delta)
}

// Apply pushes the configured level to the mixer.
func (s *Session) Apply(ctx context.Context) error {
	return s.mixer.SetVolume(ctx, s.volume)
}
