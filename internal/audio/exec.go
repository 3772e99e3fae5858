package audio

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// runner executes an external program and returns its trimmed combined output.
type runner func(ctx context.Context, name string, args ...string) (string, error)

func runCmd(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s %v: %w (%s)", name, args, err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}
