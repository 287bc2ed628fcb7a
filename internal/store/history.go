// internal/store/history.go
package store

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/user/focusguard/internal/types"
)

// HistoryStore is a JSON-file-backed distraction log, one file per room
// under <root>/history/. Entries are kept newest first, capped at
// maxEntries, and entries older than the retention window are dropped
// whenever a room's log is loaded.
type HistoryStore struct {
	root       string
	maxEntries int
	retention  time.Duration
	mu         sync.RWMutex
}

// NewHistoryStore creates a HistoryStore rooted at the given data directory.
func NewHistoryStore(root string, maxEntries int, retention time.Duration) *HistoryStore {
	return &HistoryStore{root: root, maxEntries: maxEntries, retention: retention}
}

func (s *HistoryStore) path(room types.RoomCode) string {
	return filepath.Join(s.root, "history", roomFileName(string(room)))
}

// load reads a room's log and applies the retention window.
func (s *HistoryStore) load(room types.RoomCode) ([]*types.DistractionEvent, error) {
	var events []*types.DistractionEvent
	if _, err := readJSONFile(s.path(room), &events); err != nil {
		return nil, err
	}
	cutoff := time.Now().Add(-s.retention)
	kept := events[:0]
	for _, ev := range events {
		if ev.At.After(cutoff) {
			kept = append(kept, ev)
		}
	}
	return kept, nil
}

// Append prepends an event to the room's log, enforcing the entry cap
// (oldest evicted first).
func (s *HistoryStore) Append(room types.RoomCode, ev *types.DistractionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.load(room)
	if err != nil {
		return err
	}
	events = append([]*types.DistractionEvent{ev}, events...)
	if len(events) > s.maxEntries {
		events = events[:s.maxEntries]
	}
	return writeJSONFile(s.path(room), events)
}

// List returns the room's log, newest first. Stale entries are filtered out.
func (s *HistoryStore) List(room types.RoomCode) ([]*types.DistractionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events, err := s.load(room)
	if err != nil {
		return nil, err
	}
	if events == nil {
		return []*types.DistractionEvent{}, nil
	}
	return events, nil
}

// Replace overwrites the room's log wholesale. Used when the engine provides
// an authoritative server-side history.
func (s *HistoryStore) Replace(room types.RoomCode, evs []*types.DistractionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(evs) > s.maxEntries {
		evs = evs[:s.maxEntries]
	}
	return writeJSONFile(s.path(room), evs)
}

// Clear removes the room's log entirely.
func (s *HistoryStore) Clear(room types.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSONFile(s.path(room), []*types.DistractionEvent{})
}

// Purge durably removes entries recorded before olderThan and returns the
// number removed.
func (s *HistoryStore) Purge(room types.RoomCode, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []*types.DistractionEvent
	ok, err := readJSONFile(s.path(room), &events)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	kept := make([]*types.DistractionEvent, 0, len(events))
	for _, ev := range events {
		if ev.At.After(olderThan) {
			kept = append(kept, ev)
		}
	}
	removed := len(events) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, writeJSONFile(s.path(room), kept)
}
