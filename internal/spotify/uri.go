package spotify

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const webPrefix = "https://open.spotify.com/"

var webURLPattern = regexp.MustCompile(`^https://open\.spotify\.com/(album|track|playlist|episode|show)/[0-9a-zA-Z]{22}$`)

// ErrInvalidURL is matched by every ValidationError.
var ErrInvalidURL = errors.New("incorrect spotify url")

// ValidationError reports an input that is not a Spotify web URL.
type ValidationError struct {
	Input string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidURL, e.Input)
}

// Is reports whether target is ErrInvalidURL.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidURL
}

// URI is a Spotify resource in the server's native scheme.
type URI struct {
	Kind string
	ID   string
}

// String renders the URI as spotify:<kind>:<id>.
func (u URI) String() string {
	return "spotify:" + u.Kind + ":" + u.ID
}

// Normalize converts a web URL such as
// https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC into spotify:track:4uLU6hMCjMI75M1A2tKUQC.
// A share-link query string is ignored.
func Normalize(raw string) (URI, error) {
	trimmed := stripQuery(raw)
	if !webURLPattern.MatchString(trimmed) {
		return URI{}, &ValidationError{Input: raw}
	}
	sections := strings.Split(trimmed[len(webPrefix):], "/")
	if len(sections) != 2 {
		return URI{}, &ValidationError{Input: raw}
	}
	return URI{Kind: sections[0], ID: sections[1]}, nil
}

// IsURL reports whether raw normalizes successfully.
func IsURL(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

func stripQuery(raw string) string {
	if idx := strings.IndexByte(raw, '?'); idx >= 0 {
		return raw[:idx]
	}
	return raw
}
