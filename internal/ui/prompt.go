package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/term"
)

// ErrNoTerminal is returned by PromptMode when stdin cannot be prompted and
// no fallback is available.
var ErrNoTerminal = errors.New("stdin is not a terminal")

// PromptMode asks on the controlling terminal which of choices to run,
// repeating until the answer is valid. An empty answer selects fallback when
// it is one of choices. When stdin is not a terminal fallback is returned
// without asking. The prompt gives up with ctx.Err() once ctx ends.
func PromptMode(ctx context.Context, choices []string, fallback string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		if slices.Contains(choices, fallback) {
			return fallback, nil
		}
		return "", ErrNoTerminal
	}
	return promptMode(ctx, os.Stdin, os.Stdout, choices, fallback)
}

func promptMode(ctx context.Context, in io.Reader, out io.Writer, choices []string, fallback string) (string, error) {
	question := fmt.Sprintf("Enter mode [%s]", strings.Join(choices, "/"))
	if slices.Contains(choices, fallback) {
		question += fmt.Sprintf(" (%s)", fallback)
	} else {
		fallback = ""
	}

	// A blocked terminal read cannot be cancelled; the reader is left behind
	// when ctx ends and the process exits shortly after.
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			readErr <- fmt.Errorf("read mode: %w", err)
			return
		}
		readErr <- io.EOF
	}()

	for {
		fmt.Fprintf(out, "%s: ", question)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return "", ctx.Err()
		case err := <-readErr:
			return "", err
		case text := <-lines:
			answer := strings.ToLower(strings.TrimSpace(text))
			if answer == "" && fallback != "" {
				return fallback, nil
			}
			if slices.Contains(choices, answer) {
				return answer, nil
			}
		}
	}
}
