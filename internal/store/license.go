// internal/store/license.go
package store

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/user/focusguard/internal/types"
)

// LicenseStore caches the entitlement token at <root>/license.json. The
// cached value is a convenience only; callers re-verify before trusting it.
type LicenseStore struct {
	path string
	mu   sync.RWMutex
}

// NewLicenseStore creates a LicenseStore rooted at the data directory.
func NewLicenseStore(root string) *LicenseStore {
	return &LicenseStore{path: filepath.Join(root, "license.json")}
}

// Load returns the cached entitlement, or nil if none has been stored.
func (s *LicenseStore) Load() (*types.Entitlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ent types.Entitlement
	ok, err := readJSONFile(s.path, &ent)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &ent, nil
}

// Save overwrites the cached entitlement.
func (s *LicenseStore) Save(ent *types.Entitlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSONFile(s.path, ent)
}

// Clear removes the cached entitlement.
func (s *LicenseStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
