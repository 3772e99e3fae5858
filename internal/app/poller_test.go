package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/five82/mopidy-bridge/internal/command"
)

type flakyController struct {
	failures int
	calls    int
}

func (c *flakyController) Execute(context.Context, command.Kind, string) error { return nil }

func (c *flakyController) PlaybackState(context.Context) (string, error) {
	c.calls++
	if c.calls <= c.failures {
		return "", errors.New("connection refused")
	}
	return "stopped", nil
}

func TestWaitReady_RetriesUntilAnswer(t *testing.T) {
	ctrl := &flakyController{failures: 3}
	got, err := waitReady(context.Background(), ctrl, time.Millisecond, 0, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("waitReady returned error: %v", err)
	}
	if got != "stopped" || ctrl.calls != 4 {
		t.Fatalf("state = %q after %d calls, want stopped after 4", got, ctrl.calls)
	}
}

func TestWaitReady_BoundedAttempts(t *testing.T) {
	ctrl := &flakyController{failures: 10}
	_, err := waitReady(context.Background(), ctrl, time.Millisecond, 3, nil, zap.NewNop())
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("waitReady error = %v, want ErrNotReady", err)
	}
	if ctrl.calls != 3 {
		t.Fatalf("calls = %d, want 3", ctrl.calls)
	}
}

func TestWaitReady_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := waitReady(ctx, &flakyController{failures: 100}, time.Hour, 0, nil, zap.NewNop())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("waitReady error = %v, want context.Canceled", err)
	}
}

func TestWaitReady_ServerExit(t *testing.T) {
	exited := make(chan struct{})
	close(exited)
	_, err := waitReady(context.Background(), &flakyController{failures: 100}, time.Hour, 0, exited, zap.NewNop())
	if !errors.Is(err, ErrServerExited) {
		t.Fatalf("waitReady error = %v, want ErrServerExited", err)
	}
}
