package audio

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Sound names one notification cue.
type Sound string

const (
	Startup     Sound = "startup"
	Shutdown    Sound = "shutdown"
	Affirmative Sound = "affirmative"
	Error       Sound = "error"
)

const soundExt = ".mp3"

// SoundPlayer plays a file and returns once playback has finished.
type SoundPlayer interface {
	Play(ctx context.Context, path string) error
}

// DefaultSoundCommand plays mp3 cues quietly.
const DefaultSoundCommand = "mpg123 -q"

// CommandPlayer plays files with an external program, e.g. "mpg123 -q" or "paplay".
type CommandPlayer struct {
	name string
	args []string
	run  runner
}

// NewCommandPlayer splits command on whitespace; the file path is appended as
// the final argument.
func NewCommandPlayer(command string) *CommandPlayer {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		fields = strings.Fields(DefaultSoundCommand)
	}
	return &CommandPlayer{name: fields[0], args: fields[1:], run: runCmd}
}

// Play implements SoundPlayer.
func (p *CommandPlayer) Play(ctx context.Context, path string) error {
	args := append(append([]string{}, p.args...), path)
	if _, err := p.run(ctx, p.name, args...); err != nil {
		return fmt.Errorf("play %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Library resolves sounds to files inside a directory.
type Library struct {
	Dir string
}

// Path returns the file that holds sound.
func (l Library) Path(sound Sound) string {
	return filepath.Join(l.Dir, string(sound)+soundExt)
}
