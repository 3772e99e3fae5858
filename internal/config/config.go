package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	toml "github.com/pelletier/go-toml/v2"
)

// Backend selects how commands reach the music server.
const (
	BackendMopidy = "mopidy"
	BackendMPD    = "mpd"
)

// Transport selects the Mopidy JSON-RPC carrier.
const (
	TransportHTTP = "http"
	TransportWS   = "ws"
)

// Config is the resolved bridge configuration.
type Config struct {
	Backend   string
	RPCURL    string
	WSURL     string
	Transport string
	MPDAddr   string

	Discover        bool
	DiscoverTimeout time.Duration
	RequestTimeout  time.Duration

	SerialDevice string
	BaudRate     int

	SoundsDir     string
	SoundCommand  string
	MixerControl  string
	InitialVolume int
	NotifyVolume  int

	ServerCommand   string
	ManageServer    bool
	PollInterval    time.Duration
	StartupAttempts int
	ShutdownGrace   time.Duration
	LoopDelay       time.Duration

	LogLevel string
	LogFile  string
}

const defaultConfigPath = "~/.config/mopidy-bridge/config.toml"

// fileConfig mirrors config.toml. Durations are strings such as "1s".
type fileConfig struct {
	Backend   string `toml:"backend" default:"mopidy"`
	RPCURL    string `toml:"rpc_url" default:"http://localhost:6680/mopidy/rpc"`
	WSURL     string `toml:"ws_url" default:"ws://localhost:6680/mopidy/ws"`
	Transport string `toml:"transport" default:"http"`
	MPDAddr   string `toml:"mpd_addr" default:"localhost:6600"`

	Discover        bool   `toml:"discover"`
	DiscoverTimeout string `toml:"discover_timeout" default:"5s"`
	RequestTimeout  string `toml:"request_timeout" default:"0s"`

	SerialDevice string `toml:"serial_device" default:"/dev/ttyACM0"`
	BaudRate     int    `toml:"baud_rate" default:"9600"`

	SoundsDir     string `toml:"sounds_dir" default:"sounds"`
	SoundCommand  string `toml:"sound_command" default:"mpg123 -q"`
	MixerControl  string `toml:"mixer_control" default:"Master"`
	InitialVolume int    `toml:"initial_volume" default:"50"`
	NotifyVolume  int    `toml:"notify_volume" default:"75"`

	ServerCommand   string `toml:"server_command" default:"mopidy"`
	ManageServer    bool   `toml:"manage_server" default:"true"`
	PollInterval    string `toml:"poll_interval" default:"1s"`
	StartupAttempts int    `toml:"startup_attempts"`
	ShutdownGrace   string `toml:"shutdown_grace" default:"3s"`
	LoopDelay       string `toml:"loop_delay" default:"100ms"`

	LogLevel string `toml:"log_level" default:"info"`
	LogFile  string `toml:"log_file" default:"~/.local/state/mopidy-bridge/bridge.log"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	var raw fileConfig
	if err := defaults.Set(&raw); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	cfg, err := raw.resolve()
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// Load locates and parses the bridge config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	// Defaults first so explicit zero values in the file survive.
	var raw fileConfig
	if err := defaults.Set(&raw); err != nil {
		return Config{}, fmt.Errorf("apply defaults: %w", err)
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := raw.resolve()
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", resolved, err)
	}
	return cfg, nil
}

func (raw fileConfig) resolve() (Config, error) {
	var fallback fileConfig
	_ = defaults.Set(&fallback)

	cfg := Config{
		Backend:         strings.ToLower(orDefault(raw.Backend, fallback.Backend)),
		RPCURL:          orDefault(raw.RPCURL, fallback.RPCURL),
		WSURL:           orDefault(raw.WSURL, fallback.WSURL),
		Transport:       strings.ToLower(orDefault(raw.Transport, fallback.Transport)),
		MPDAddr:         orDefault(raw.MPDAddr, fallback.MPDAddr),
		Discover:        raw.Discover,
		SerialDevice:    orDefault(raw.SerialDevice, fallback.SerialDevice),
		BaudRate:        raw.BaudRate,
		SoundsDir:       mustExpand(orDefault(raw.SoundsDir, fallback.SoundsDir)),
		SoundCommand:    orDefault(raw.SoundCommand, fallback.SoundCommand),
		MixerControl:    orDefault(raw.MixerControl, fallback.MixerControl),
		InitialVolume:   raw.InitialVolume,
		NotifyVolume:    raw.NotifyVolume,
		ServerCommand:   orDefault(raw.ServerCommand, fallback.ServerCommand),
		ManageServer:    raw.ManageServer,
		StartupAttempts: raw.StartupAttempts,
		LogLevel:        strings.ToLower(orDefault(raw.LogLevel, fallback.LogLevel)),
		LogFile:         mustExpand(orDefault(raw.LogFile, fallback.LogFile)),
	}
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = fallback.BaudRate
	}

	var err error
	durations := []struct {
		key      string
		value    string
		fallback string
		dst      *time.Duration
	}{
		{"discover_timeout", raw.DiscoverTimeout, fallback.DiscoverTimeout, &cfg.DiscoverTimeout},
		{"request_timeout", raw.RequestTimeout, fallback.RequestTimeout, &cfg.RequestTimeout},
		{"poll_interval", raw.PollInterval, fallback.PollInterval, &cfg.PollInterval},
		{"shutdown_grace", raw.ShutdownGrace, fallback.ShutdownGrace, &cfg.ShutdownGrace},
		{"loop_delay", raw.LoopDelay, fallback.LoopDelay, &cfg.LoopDelay},
	}
	for _, d := range durations {
		if *d.dst, err = time.ParseDuration(orDefault(d.value, d.fallback)); err != nil {
			return Config{}, fmt.Errorf("%s: %w", d.key, err)
		}
		if *d.dst < 0 {
			return Config{}, fmt.Errorf("%s: must not be negative", d.key)
		}
	}

	return cfg, cfg.Validate()
}

// Validate rejects values the bridge cannot act on.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMopidy, BackendMPD:
	default:
		return fmt.Errorf("backend %q: want %s or %s", c.Backend, BackendMopidy, BackendMPD)
	}
	switch c.Transport {
	case TransportHTTP, TransportWS:
	default:
		return fmt.Errorf("transport %q: want %s or %s", c.Transport, TransportHTTP, TransportWS)
	}
	if c.InitialVolume < 0 || c.InitialVolume > 100 {
		return fmt.Errorf("initial_volume %d: want 0-100", c.InitialVolume)
	}
	if c.NotifyVolume < 0 || c.NotifyVolume > 100 {
		return fmt.Errorf("notify_volume %d: want 0-100", c.NotifyVolume)
	}
	if c.StartupAttempts < 0 {
		return fmt.Errorf("startup_attempts %d: must not be negative", c.StartupAttempts)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
