package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

var modes = []string{"ino", "terminal"}

func TestPromptMode_RepeatsUntilValid(t *testing.T) {
	var out bytes.Buffer
	got, err := promptMode(context.Background(), strings.NewReader("serial\n\n TERMINAL \n"), &out, modes, "")
	if err != nil {
		t.Fatalf("promptMode returned error: %v", err)
	}
	if got != "terminal" {
		t.Fatalf("mode = %q, want terminal", got)
	}
	if n := strings.Count(out.String(), "Enter mode [ino/terminal]: "); n != 3 {
		t.Fatalf("asked %d times, want 3:\n%s", n, out.String())
	}
}

func TestPromptMode_EmptyAnswerUsesFallback(t *testing.T) {
	var out bytes.Buffer
	got, err := promptMode(context.Background(), strings.NewReader("\n"), &out, modes, "ino")
	if err != nil || got != "ino" {
		t.Fatalf("promptMode = %q, %v; want ino", got, err)
	}
	if !strings.Contains(out.String(), "(ino)") {
		t.Fatalf("prompt should show the fallback: %q", out.String())
	}
}

func TestPromptMode_EOF(t *testing.T) {
	if _, err := promptMode(context.Background(), strings.NewReader("nope\n"), io.Discard, modes, ""); !errors.Is(err, io.EOF) {
		t.Fatalf("promptMode error = %v, want io.EOF", err)
	}
}

func TestPromptMode_CancelledWhileWaiting(t *testing.T) {
	in, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := promptMode(ctx, in, io.Discard, modes, "ino")
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("promptMode error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("promptMode still waiting on input after cancel")
	}
}
