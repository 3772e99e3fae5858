package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/five82/mopidy-bridge/internal/audio"
	"github.com/five82/mopidy-bridge/internal/bridge"
	"github.com/five82/mopidy-bridge/internal/config"
	"github.com/five82/mopidy-bridge/internal/device"
	"github.com/five82/mopidy-bridge/internal/player"
	"github.com/five82/mopidy-bridge/internal/prefs"
	"github.com/five82/mopidy-bridge/internal/server"
	"github.com/five82/mopidy-bridge/internal/state"
	"github.com/five82/mopidy-bridge/internal/ui"
)

// Mode selects where commands come from.
type Mode string

const (
	ModeIno      Mode = "ino"
	ModeTerminal Mode = "terminal"
)

// Modes lists the valid modes in prompt order.
func Modes() []string {
	return []string{string(ModeIno), string(ModeTerminal)}
}

// ParseMode validates a mode name.
func ParseMode(name string) (Mode, error) {
	switch Mode(name) {
	case ModeIno, ModeTerminal:
		return Mode(name), nil
	}
	return "", fmt.Errorf("unknown mode %q (want ino or terminal)", name)
}

// ErrInterrupted is returned after an orderly shutdown triggered by the user.
var ErrInterrupted = errors.New("interrupted")

// Options configure the bridge.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses ~/.config/mopidy-bridge/prefs.toml
	Mode       Mode
	Verbose    bool
	NoServer   bool // do not launch the server even if configured to
}

// phase is the supervisor's lifecycle position, logged on each transition.
type phase string

const (
	phaseStarting     phase = "starting"
	phasePolling      phase = "polling"
	phaseReady        phase = "ready"
	phaseRunning      phase = "running"
	phaseShuttingDown phase = "shutting_down"
	phaseTerminated   phase = "terminated"
)

// Run boots the bridge and blocks until the input source ends, the user
// interrupts (ErrInterrupted), or the server becomes unreachable.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.NoServer {
		cfg.ManageServer = false
	}

	// The terminal UI owns the screen, so logs go to the file there.
	logPath := ""
	if opts.Mode == ModeTerminal {
		logPath = cfg.LogFile
	}
	log, closeLog, err := newLogger(cfg.LogLevel, opts.Verbose, logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	s := &supervisor{cfg: cfg, opts: opts, log: log, env: defaultEnv()}
	return s.run(ctx)
}

// serverProcess is the managed server as the supervisor sees it.
type serverProcess interface {
	Done() <-chan struct{}
	Stop(grace time.Duration) error
}

type deviceSource interface {
	device.Source
	Close() error
}

// env builds everything the supervisor reaches outside the process with.
type env struct {
	controller  func(config.Config) (player.Controller, func(), error)
	startServer func(command string, log *zap.Logger) (serverProcess, error)
	mixer       func(control string) audio.Mixer
	sounds      func(command string) audio.SoundPlayer
	openDevice  func(path string, baud int) (deviceSource, error)
}

func defaultEnv() env {
	return env{
		controller: newController,
		startServer: func(command string, log *zap.Logger) (serverProcess, error) {
			p, err := server.Start(command, log)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
		mixer: func(control string) audio.Mixer {
			return audio.NewAmixerMixer(control)
		},
		sounds: func(command string) audio.SoundPlayer {
			return audio.NewCommandPlayer(command)
		},
		openDevice: func(path string, baud int) (deviceSource, error) {
			src, err := device.OpenSerial(path, baud)
			if err != nil {
				return nil, err
			}
			return src, nil
		},
	}
}

type supervisor struct {
	cfg  config.Config
	opts Options
	log  *zap.Logger
	env  env

	phase    phase
	process  serverProcess
	feedback *audio.Feedback
}

func (s *supervisor) enter(p phase) {
	s.phase = p
	s.log.Debug("lifecycle", zap.String("phase", string(p)))
}

func (s *supervisor) run(ctx context.Context) error {
	s.enter(phaseStarting)
	s.log.Info("starting bridge", zap.String("mode", string(s.opts.Mode)), zap.String("backend", s.cfg.Backend))

	s.discover(ctx)

	ctrl, closeCtrl, err := s.env.controller(s.cfg)
	if err != nil {
		return err
	}
	defer closeCtrl()

	// Feedback exists before the server so every shutdown from here on,
	// including an interrupt while polling, plays the shutdown cue.
	mixer := s.env.mixer(s.cfg.MixerControl)
	session := audio.NewSession(mixer, s.cfg.InitialVolume)
	s.feedback = audio.NewFeedback(audio.FeedbackOptions{
		Playback:     ctrl,
		Session:      session,
		Mixer:        mixer,
		Sounds:       s.env.sounds(s.cfg.SoundCommand),
		Library:      audio.Library{Dir: s.cfg.SoundsDir},
		NotifyVolume: s.cfg.NotifyVolume,
		Logger:       s.log,
	})

	var exited <-chan struct{}
	if s.cfg.ManageServer {
		s.process, err = s.env.startServer(s.cfg.ServerCommand, s.log)
		if err != nil {
			return s.shutdown(fmt.Errorf("launch server: %w", err))
		}
		exited = s.process.Done()
	}

	s.enter(phasePolling)
	if _, err := waitReady(ctx, ctrl, s.cfg.PollInterval, s.cfg.StartupAttempts, exited, s.log); err != nil {
		if ctx.Err() != nil {
			return s.shutdown(ErrInterrupted)
		}
		return s.shutdown(fmt.Errorf("wait for server: %w", err))
	}

	s.enter(phaseReady)
	s.feedback.Announce(ctx, audio.Startup)

	store := &state.Store{}
	dispatcher := bridge.New(bridge.Options{
		Player:    ctrl,
		Session:   session,
		Notifier:  s.feedback,
		Store:     store,
		Logger:    s.log,
		LoopDelay: s.cfg.LoopDelay,
	})
	if err := dispatcher.Prepare(ctx); err != nil {
		if ctx.Err() != nil {
			return s.shutdown(ErrInterrupted)
		}
		return s.shutdown(fmt.Errorf("prepare: %w", err))
	}

	s.enter(phaseRunning)
	runErr := s.runMode(ctx, dispatcher, store)

	switch {
	case ctx.Err() != nil, errors.Is(runErr, ui.ErrInterrupted):
		return s.shutdown(ErrInterrupted)
	case runErr != nil:
		s.log.Error("bridge stopped", zap.Error(runErr))
		return s.shutdown(runErr)
	}
	return s.shutdown(nil)
}

func (s *supervisor) runMode(ctx context.Context, d *bridge.Dispatcher, store *state.Store) error {
	if s.opts.Mode == ModeTerminal {
		p := prefs.Load(s.opts.PrefsPath)
		return ui.Run(ui.Options{
			Context:    ctx,
			Dispatcher: d,
			Store:      store,
			ThemeName:  p.Theme,
			PrefsPath:  s.prefsPath(),
		})
	}

	src, err := s.env.openDevice(s.cfg.SerialDevice, s.cfg.BaudRate)
	if err != nil {
		return err
	}
	s.log.Info("serial open", zap.String("device", s.cfg.SerialDevice), zap.Int("baud", s.cfg.BaudRate))

	// Closing the port is the only way to unblock a pending read.
	stop := context.AfterFunc(ctx, func() { _ = src.Close() })
	defer func() {
		if stop() {
			_ = src.Close()
		}
	}()
	return d.Run(ctx, src)
}

func (s *supervisor) prefsPath() string {
	if s.opts.PrefsPath != "" {
		return s.opts.PrefsPath
	}
	return prefs.DefaultPath()
}

// shutdown stops the server, plays the shutdown cue and returns cause.
func (s *supervisor) shutdown(cause error) error {
	s.enter(phaseShuttingDown)
	if s.process != nil {
		if err := s.process.Stop(s.cfg.ShutdownGrace); err != nil {
			s.log.Warn("stop server failed", zap.Error(err))
		}
	}
	if s.feedback != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		s.feedback.Announce(ctx, audio.Shutdown)
		cancel()
	}
	s.enter(phaseTerminated)
	return cause
}
