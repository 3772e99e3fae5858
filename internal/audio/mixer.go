package audio

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Mixer is the system volume control.
type Mixer interface {
	SetVolume(ctx context.Context, percent int) error
}

// DefaultMixerControl is the ALSA simple control adjusted by default.
const DefaultMixerControl = "Master"

// AmixerMixer drives an ALSA simple mixer control through amixer(1).
type AmixerMixer struct {
	control string
	run     runner
}

// NewAmixerMixer builds a mixer for control (Master when empty).
func NewAmixerMixer(control string) *AmixerMixer {
	control = strings.TrimSpace(control)
	if control == "" {
		control = DefaultMixerControl
	}
	return &AmixerMixer{control: control, run: runCmd}
}

// SetVolume applies percent to every channel of the control.
func (m *AmixerMixer) SetVolume(ctx context.Context, percent int) error {
	percent = Clamp(percent)
	if _, err := m.run(ctx, "amixer", "-q", "sset", m.control, strconv.Itoa(percent)+"%"); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}
	return nil
}
