package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/five82/mopidy-bridge/internal/player"
)

const defaultPollInterval = time.Second

// ErrServerExited is returned when the managed server dies before answering.
var ErrServerExited = errors.New("server exited before becoming ready")

// ErrNotReady is returned when a bounded readiness poll runs out of attempts.
var ErrNotReady = errors.New("server not ready")

// waitReady polls PlaybackState until it succeeds. Failures are expected
// while the server boots and are only logged. attempts <= 0 polls until ctx
// ends; exited, when non-nil, aborts the wait if the server process dies.
func waitReady(ctx context.Context, ctrl player.Controller, interval time.Duration, attempts int, exited <-chan struct{}, log *zap.Logger) (string, error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		playback, err := ctrl.PlaybackState(ctx)
		if err == nil {
			log.Info("server ready", zap.Int("attempt", attempt), zap.String("state", playback))
			return playback, nil
		}
		log.Debug("server not ready", zap.Int("attempt", attempt), zap.Error(err))

		if attempts > 0 && attempt >= attempts {
			return "", fmt.Errorf("%w after %d attempts: %w", ErrNotReady, attempt, err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-exited:
			return "", ErrServerExited
		case <-ticker.C:
		}
	}
}
