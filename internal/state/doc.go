// Package state holds the bridge status shown by the terminal UI.
//
// The dispatcher is the only writer: after each event it folds a Record into
// the Store. The UI reads copies through Snapshot on its own refresh tick, so
// rendering never touches the dispatcher's audio session directly.
//
// A Snapshot carries the configured volume, the last event and its outcome,
// a running count of handled events and the current failure streak.
// IsDegraded reports two or more failed dispatches in a row.
package state
