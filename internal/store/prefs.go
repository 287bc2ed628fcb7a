// internal/store/prefs.go
package store

import (
	"path/filepath"
	"sync"
)

type prefs struct {
	OnboardingSeen bool `json:"onboarding_seen"`
}

// PrefsStore persists one-shot local preferences at <root>/prefs.json.
type PrefsStore struct {
	path string
	mu   sync.RWMutex
}

// NewPrefsStore creates a PrefsStore rooted at the data directory.
func NewPrefsStore(root string) *PrefsStore {
	return &PrefsStore{path: filepath.Join(root, "prefs.json")}
}

// OnboardingSeen reports whether the first-run hint has been shown.
func (s *PrefsStore) OnboardingSeen() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p prefs
	if _, err := readJSONFile(s.path, &p); err != nil {
		return false, err
	}
	return p.OnboardingSeen, nil
}

// SetOnboardingSeen marks the first-run hint as shown.
func (s *PrefsStore) SetOnboardingSeen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p prefs
	if _, err := readJSONFile(s.path, &p); err != nil {
		return err
	}
	p.OnboardingSeen = true
	return writeJSONFile(s.path, &p)
}
