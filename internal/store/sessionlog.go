// internal/store/sessionlog.go
package store

import (
	"path/filepath"
	"sync"

	"github.com/user/focusguard/internal/types"
)

// maxSessionRecords bounds the archived-session log per room.
const maxSessionRecords = 100

// SessionLogStore is a JSON-file-backed archive of completed sessions, one
// file per room under <root>/sessions/, newest first.
type SessionLogStore struct {
	root string
	mu   sync.RWMutex
}

// NewSessionLogStore creates a SessionLogStore rooted at the data directory.
func NewSessionLogStore(root string) *SessionLogStore {
	return &SessionLogStore{root: root}
}

func (s *SessionLogStore) path(room types.RoomCode) string {
	return filepath.Join(s.root, "sessions", roomFileName(string(room)))
}

// Append prepends a completed-session record to the room's archive.
func (s *SessionLogStore) Append(room types.RoomCode, rec *types.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []*types.SessionRecord
	if _, err := readJSONFile(s.path(room), &records); err != nil {
		return err
	}
	records = append([]*types.SessionRecord{rec}, records...)
	if len(records) > maxSessionRecords {
		records = records[:maxSessionRecords]
	}
	return writeJSONFile(s.path(room), records)
}

// List returns the room's archived sessions, newest first.
func (s *SessionLogStore) List(room types.RoomCode) ([]*types.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*types.SessionRecord
	if _, err := readJSONFile(s.path(room), &records); err != nil {
		return nil, err
	}
	if records == nil {
		return []*types.SessionRecord{}, nil
	}
	return records, nil
}
