// Package player executes playback commands against the backing server.
package player

import (
	"context"
	"errors"

	"github.com/five82/mopidy-bridge/internal/command"
)

// StatePlaying is the only playback state the bridge acts on.
const StatePlaying = "playing"

// ErrNotFound is returned when a well-formed URI matches nothing on the server.
var ErrNotFound = errors.New("uri not found")

// Controller runs commands against a playback server.
type Controller interface {
	Execute(ctx context.Context, kind command.Kind, uri string) error
	PlaybackState(ctx context.Context) (string, error)
}
