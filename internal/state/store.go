package state

import (
	"fmt"
	"sync"
	"time"
)

// Outcome summarizes how one dispatched event ended.
type Outcome string

const (
	OutcomeDone       Outcome = "done"
	OutcomeDiscarded  Outcome = "discarded"
	OutcomeInvalidURL Outcome = "invalid url"
	OutcomeNotFound   Outcome = "not found"
	OutcomeFailed     Outcome = "failed"
)

// Record is what the dispatcher reports after handling an event.
type Record struct {
	Event   string
	Outcome Outcome
	Volume  int
	Err     error
}

// Snapshot represents the latest bridge status available to the UI.
type Snapshot struct {
	Volume              int
	LastEvent           string
	LastOutcome         Outcome
	Handled             int
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive failed dispatches
}

// IsDegraded returns true when several dispatches in a row have failed.
func (s Snapshot) IsDegraded() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// SetVolume records the volume without counting an event.
func (s *Store) SetVolume(volume int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Volume = volume
	s.snapshot.LastUpdated = time.Now()
}

// Update folds one dispatch record into the snapshot. When rec.Err is non-nil
// the failure streak grows; any other record resets it.
func (s *Store) Update(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Volume = rec.Volume
	s.snapshot.LastEvent = rec.Event
	s.snapshot.LastOutcome = rec.Outcome
	s.snapshot.Handled++
	s.snapshot.LastUpdated = time.Now()

	if rec.Err != nil {
		s.snapshot.LastError = rec.Err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
