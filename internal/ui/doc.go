// Package ui implements the interactive terminal mode.
//
// Run starts a Bubble Tea program with a single text input. Each line is a
// command name from the playback vocabulary (play, pause, next, prev, stop,
// clear, shuffle). "add" switches the input to a URL prompt whose answer is
// queued; "q" quits; anything else prints "Not a valid command!". Only one
// command is in flight at a time and the input is disabled until it returns.
//
// The header is redrawn from state.Store snapshots on a ticker, so the model
// never touches the dispatcher's volume session directly.
//
// # Key Bindings
//
//   - enter: send the current line
//   - esc: leave the URL prompt
//   - ctrl+t: cycle theme (persisted to prefs)
//   - ctrl+c: shut down the bridge
//
// PromptMode asks for the run mode on the terminal before anything else
// starts, using x/term to detect whether stdin can be prompted.
package ui
