// Package config loads the bridge's TOML configuration.
//
// # Configuration Discovery
//
// Load reads the explicit path when one is given, otherwise
// ~/.config/mopidy-bridge/config.toml. A missing file is not an error: the
// defaults below are used so the bridge runs out of the box on a Raspberry
// Pi with Mopidy and the controller on /dev/ttyACM0.
//
// # Defaults
//
// Defaults are declared as struct tags on the file schema and applied before
// the file is decoded, so an explicit false or 0 in the file is kept.
//
//	backend = "mopidy"           # or "mpd"
//	transport = "http"           # or "ws"
//	rpc_url = "http://localhost:6680/mopidy/rpc"
//	ws_url = "ws://localhost:6680/mopidy/ws"
//	mpd_addr = "localhost:6600"
//	discover = false             # browse _mopidy-http._tcp first
//	discover_timeout = "5s"
//	request_timeout = "0s"       # 0 waits indefinitely
//	serial_device = "/dev/ttyACM0"
//	baud_rate = 9600
//	sounds_dir = "sounds"
//	sound_command = "mpg123 -q"
//	mixer_control = "Master"
//	initial_volume = 50
//	notify_volume = 75
//	server_command = "mopidy"
//	manage_server = true
//	poll_interval = "1s"
//	startup_attempts = 0         # 0 polls until the server answers
//	shutdown_grace = "3s"
//	loop_delay = "100ms"
//	log_level = "info"
//	log_file = "~/.local/state/mopidy-bridge/bridge.log"
//
// String values are trimmed and blank strings fall back to the default.
// Paths support tilde expansion and are made absolute.
//
// # Error Handling
//
// Load returns errors for unreadable files, TOML syntax errors, unparsable
// durations and values outside their range (unknown backend or transport,
// volumes outside 0-100, negative durations or attempts).
package config
