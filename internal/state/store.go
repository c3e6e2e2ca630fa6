package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/anayd/kosh/internal/moneta"
)

// Snapshot represents the latest sync data available to the UI.
type Snapshot struct {
	Status              moneta.ConnectionStatus
	HasStatus           bool
	History             []moneta.SyncEntry
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// SyncRunning reports whether the newest history entry is still running.
func (s Snapshot) SyncRunning() bool {
	return len(s.History) > 0 && s.History[0].Status == moneta.SyncRunning
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored snapshot. When err is non-nil the previous data
// is kept but the error is recorded for visibility.
func (s *Store) Update(status *moneta.ConnectionStatus, history []moneta.SyncEntry, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.History = cloneHistory(history)
	if status != nil {
		s.snapshot.Status = *status
		s.snapshot.HasStatus = true
	} else {
		s.snapshot.HasStatus = false
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.History = cloneHistory(s.snapshot.History)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneHistory(entries []moneta.SyncEntry) []moneta.SyncEntry {
	if len(entries) == 0 {
		return nil
	}
	dup := make([]moneta.SyncEntry, len(entries))
	copy(dup, entries)
	return dup
}
