// Package device reads control events from the serial-attached controller.
package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Source yields one event line at a time. Next returns io.EOF when the
// stream ends.
type Source interface {
	Next(ctx context.Context) (string, error)
}

// maxLine bounds a single event; the controller never sends more than a URL.
const maxLine = 4 * 1024

// ErrLineTooLong is returned by LineSource.Next for a line longer than
// maxLine. The line is dropped and the source stays usable.
var ErrLineTooLong = errors.New("device line too long")

// framing is stripped from both ends of each line: line endings, padding and
// the NUL bytes some boards emit on reset.
const framing = " \t\r\n\x00"

// Clean removes device framing artifacts from a raw line.
func Clean(line string) string {
	return strings.Trim(line, framing)
}

// LineSource splits any reader into cleaned lines. Blank lines are skipped.
type LineSource struct {
	r *bufio.Reader
}

// NewLineSource wraps r.
func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{r: bufio.NewReaderSize(r, maxLine)}
}

// Next implements Source. The read itself is not interruptible; callers
// unblock it by closing the underlying reader.
func (s *LineSource) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		raw, err := s.r.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			if err := s.skipLine(); err != nil && !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("read line: %w", err)
			}
			return "", ErrLineTooLong
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read line: %w", err)
		}
		if line := Clean(string(raw)); line != "" {
			return line, nil
		}
		if err != nil {
			return "", io.EOF
		}
	}
}

// skipLine discards input up to and including the next newline.
func (s *LineSource) skipLine() error {
	for {
		if _, err := s.r.ReadSlice('\n'); !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}
