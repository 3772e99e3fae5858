package audio

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/five82/mopidy-bridge/internal/command"
)

// journal records every side effect in order so tests can assert sequencing.
type journal struct {
	entries []string
}

func (j *journal) add(entry string) { j.entries = append(j.entries, entry) }

type fakeMixer struct {
	j       *journal
	current int
	err     error
}

func (m *fakeMixer) SetVolume(_ context.Context, v int) error {
	m.current = v
	m.j.add("volume " + strconv.Itoa(v))
	return m.err
}

type fakeSounds struct {
	j   *journal
	err error
}

func (s *fakeSounds) Play(_ context.Context, path string) error {
	s.j.add("sound " + filepath.Base(path))
	return s.err
}

type fakePlayback struct {
	j   *journal
	err error
}

func (p *fakePlayback) Execute(_ context.Context, kind command.Kind, _ string) error {
	p.j.add(kind.String())
	return p.err
}

func newTestFeedback(session *Session, mixer *fakeMixer, sounds *fakeSounds, playback *fakePlayback, log *zap.Logger) *Feedback {
	return NewFeedback(FeedbackOptions{
		Playback: playback,
		Session:  session,
		Mixer:    mixer,
		Sounds:   sounds,
		Library:  Library{Dir: "sounds"},
		Logger:   log,
	})
}

func TestClamp(t *testing.T) {
	tests := []struct{ in, want int }{{-5, 0}, {0, 0}, {55, 55}, {100, 100}, {105, 100}}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Fatalf("Clamp(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSession_StepClampsAtBounds(t *testing.T) {
	j := &journal{}
	mixer := &fakeMixer{j: j}
	s := NewSession(mixer, 95)

	if err := s.Step(context.Background(), VolumeStep); err != nil {
		t.Fatalf("Step returned error: %v", err)
	}
	if s.Volume() != 100 {
		t.Fatalf("Volume = %d, want 100", s.Volume())
	}
	for i := 0; i < 3; i++ {
		_ = s.Step(context.Background(), VolumeStep)
	}
	if s.Volume() != 100 || mixer.current != 100 {
		t.Fatalf("Volume = %d mixer = %d, want 100/100", s.Volume(), mixer.current)
	}

	for i := 0; i < 15; i++ {
		_ = s.Step(context.Background(), -VolumeStep)
	}
	if s.Volume() != 0 || mixer.current != 0 {
		t.Fatalf("Volume = %d mixer = %d, want 0/0", s.Volume(), mixer.current)
	}
}

func TestSession_NewClampsInitial(t *testing.T) {
	if got := NewSession(&fakeMixer{j: &journal{}}, 250).Volume(); got != 100 {
		t.Fatalf("Volume = %d, want 100", got)
	}
}

func TestFeedback_NotifyAffirmativeResumes(t *testing.T) {
	j := &journal{}
	mixer := &fakeMixer{j: j}
	session := NewSession(mixer, 40)
	f := newTestFeedback(session, mixer, &fakeSounds{j: j}, &fakePlayback{j: j}, nil)

	if err := f.Notify(context.Background(), Affirmative); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	want := []string{"stop", "volume 75", "sound affirmative.mp3", "volume 40", "play"}
	if !reflect.DeepEqual(j.entries, want) {
		t.Fatalf("sequence = %v, want %v", j.entries, want)
	}
}

func TestFeedback_NotifyErrorDoesNotResume(t *testing.T) {
	j := &journal{}
	mixer := &fakeMixer{j: j}
	session := NewSession(mixer, 60)
	f := newTestFeedback(session, mixer, &fakeSounds{j: j}, &fakePlayback{j: j}, nil)

	if err := f.Notify(context.Background(), Error); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	want := []string{"stop", "volume 75", "sound error.mp3", "volume 60"}
	if !reflect.DeepEqual(j.entries, want) {
		t.Fatalf("sequence = %v, want %v", j.entries, want)
	}
}

func TestFeedback_SoundFailureIsLoggedAndVolumeRestored(t *testing.T) {
	j := &journal{}
	mixer := &fakeMixer{j: j}
	session := NewSession(mixer, 30)
	core, logs := observer.New(zap.WarnLevel)
	f := newTestFeedback(session, mixer, &fakeSounds{j: j, err: errors.New("no player")}, &fakePlayback{j: j}, zap.New(core))

	if err := f.Notify(context.Background(), Affirmative); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if got := j.entries[len(j.entries)-2]; got != "volume 30" {
		t.Fatalf("volume restore = %q, want volume 30", got)
	}
	if logs.FilterMessage("notification sound failed").Len() != 1 {
		t.Fatalf("expected one warning, got %v", logs.All())
	}
}

func TestFeedback_StopFailureAborts(t *testing.T) {
	j := &journal{}
	mixer := &fakeMixer{j: j}
	f := newTestFeedback(NewSession(mixer, 50), mixer, &fakeSounds{j: j}, &fakePlayback{j: j, err: errors.New("down")}, nil)

	if err := f.Notify(context.Background(), Affirmative); err == nil {
		t.Fatalf("Notify returned nil error, want stop failure")
	}
	if !reflect.DeepEqual(j.entries, []string{"stop"}) {
		t.Fatalf("sequence = %v, want only stop", j.entries)
	}
}

func TestFeedback_AnnounceDoesNotRestore(t *testing.T) {
	j := &journal{}
	mixer := &fakeMixer{j: j}
	f := newTestFeedback(NewSession(mixer, 20), mixer, &fakeSounds{j: j}, &fakePlayback{j: j}, nil)

	f.Announce(context.Background(), Startup)
	want := []string{"volume 75", "sound startup.mp3"}
	if !reflect.DeepEqual(j.entries, want) {
		t.Fatalf("sequence = %v, want %v", j.entries, want)
	}
}

func TestAmixerMixer_Commands(t *testing.T) {
	var got [][]string
	m := NewAmixerMixer("")
	m.run = func(_ context.Context, name string, args ...string) (string, error) {
		got = append(got, append([]string{name}, args...))
		return "", nil
	}

	if err := m.SetVolume(context.Background(), 120); err != nil {
		t.Fatalf("SetVolume returned error: %v", err)
	}
	pcm := NewAmixerMixer(" PCM ")
	pcm.run = m.run
	if err := pcm.SetVolume(context.Background(), -5); err != nil {
		t.Fatalf("SetVolume returned error: %v", err)
	}
	want := [][]string{
		{"amixer", "-q", "sset", "Master", "100%"},
		{"amixer", "-q", "sset", "PCM", "0%"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("commands = %v, want %v", got, want)
	}
}

func TestCommandPlayer_AppendsPath(t *testing.T) {
	var got []string
	p := NewCommandPlayer("  mpg123   -q ")
	p.run = func(_ context.Context, name string, args ...string) (string, error) {
		got = append([]string{name}, args...)
		return "", nil
	}
	if err := p.Play(context.Background(), "/tmp/sounds/error.mp3"); err != nil {
		t.Fatalf("Play returned error: %v", err)
	}
	want := []string{"mpg123", "-q", "/tmp/sounds/error.mp3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("command = %v, want %v", got, want)
	}

	if NewCommandPlayer("").name != "mpg123" {
		t.Fatalf("empty command should fall back to %q", DefaultSoundCommand)
	}
}

func TestLibrary_Path(t *testing.T) {
	got := Library{Dir: "/opt/sounds"}.Path(Shutdown)
	if got != filepath.Join("/opt/sounds", "shutdown.mp3") {
		t.Fatalf("Path = %q, want /opt/sounds/shutdown.mp3", got)
	}
}
