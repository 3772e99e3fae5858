// Package app is the composition root and lifecycle supervisor of the bridge.
//
// # Lifecycle
//
//	starting      load config, open the log, optionally discover the server
//	              over mDNS, build the RPC client and launch the server
//	polling       ask for the playback state every poll_interval until it
//	              answers (unbounded unless startup_attempts is set)
//	ready         play the startup cue
//	running       apply the initial volume, clear the tracklist, then run
//	              the serial loop (ino) or the terminal UI (terminal)
//	shutting_down interrupt the server's process group, give it
//	              shutdown_grace to exit, play the shutdown cue
//	terminated
//
// # Error Handling
//
// Run returns ErrInterrupted after a user-initiated shutdown (signal or
// ctrl+c in the terminal), which the CLI maps to exit status 130. A lost
// connection to the server during dispatch stops the server and is returned
// as-is. Everything that goes wrong inside a single command (bad link, empty
// search, JSON-RPC error object) is logged and the loop carries on.
//
// # Components
//
//   - app.go: Run, modes and the supervisor state machine
//   - wiring.go: backend selection (Mopidy over HTTP or WebSocket, or MPD)
//     and discovery
//   - poller.go: readiness poll
//   - logging.go: zap logger construction
package app
