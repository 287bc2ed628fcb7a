// internal/store/fleet.go
package store

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/user/focusguard/internal/types"
)

// FleetStore is a JSON-file-backed list of paired devices at
// <root>/fleet.json. Room codes are unique within the list; display names
// are not.
type FleetStore struct {
	path string
	mu   sync.RWMutex
}

// NewFleetStore creates a FleetStore rooted at the data directory.
func NewFleetStore(root string) *FleetStore {
	return &FleetStore{path: filepath.Join(root, "fleet.json")}
}

func (s *FleetStore) load() ([]*types.Device, error) {
	var devices []*types.Device
	if _, err := readJSONFile(s.path, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// List returns all paired devices in insertion order.
func (s *FleetStore) List() ([]*types.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	devices, err := s.load()
	if err != nil {
		return nil, err
	}
	if devices == nil {
		return []*types.Device{}, nil
	}
	return devices, nil
}

// Add appends a device. Returns an error if a device with the same room
// code already exists.
func (s *FleetStore) Add(dev *types.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	devices, err := s.load()
	if err != nil {
		return err
	}
	for _, existing := range devices {
		if existing.Room == dev.Room {
			return fmt.Errorf("device with room %s already exists", dev.Room)
		}
	}
	devices = append(devices, dev)
	return writeJSONFile(s.path, devices)
}

// Update replaces the stored device with the same id. Unknown ids are a
// no-op.
func (s *FleetStore) Update(dev *types.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	devices, err := s.load()
	if err != nil {
		return err
	}
	for i, existing := range devices {
		if existing.ID == dev.ID {
			devices[i] = dev
			return writeJSONFile(s.path, devices)
		}
	}
	return nil
}

// Remove deletes the device with the given id. Unknown ids are a no-op.
func (s *FleetStore) Remove(id types.DeviceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	devices, err := s.load()
	if err != nil {
		return err
	}
	kept := devices[:0]
	for _, existing := range devices {
		if existing.ID != id {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(devices) {
		return nil
	}
	return writeJSONFile(s.path, kept)
}

// FindByRoom returns the device paired to the given room code, or nil when
// no device is paired to it. The error reports read failures only.
func (s *FleetStore) FindByRoom(room types.RoomCode) (*types.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	devices, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, dev := range devices {
		if dev.Room == room {
			return dev, nil
		}
	}
	return nil, nil
}
