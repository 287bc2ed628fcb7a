// internal/types/interfaces.go
package types

import "time"

// HistoryStore persists the per-room distraction log, newest first.
// Implementations enforce the entry cap and the retention window.
type HistoryStore interface {
	Append(room RoomCode, ev *DistractionEvent) error
	List(room RoomCode) ([]*DistractionEvent, error)
	Replace(room RoomCode, evs []*DistractionEvent) error
	Clear(room RoomCode) error
	Purge(room RoomCode, olderThan time.Time) (int, error)
}

// SessionLogStore persists archived completed sessions per room.
type SessionLogStore interface {
	Append(room RoomCode, rec *SessionRecord) error
	List(room RoomCode) ([]*SessionRecord, error)
}

// FleetStore persists the paired-device list. FindByRoom returns nil for
// an unpaired room; errors are read failures only.
type FleetStore interface {
	List() ([]*Device, error)
	Add(dev *Device) error
	Update(dev *Device) error
	Remove(id DeviceID) error
	FindByRoom(room RoomCode) (*Device, error)
}

// LicenseStore persists the cached entitlement. Load returns nil when no
// token has ever been cached.
type LicenseStore interface {
	Load() (*Entitlement, error)
	Save(ent *Entitlement) error
	Clear() error
}

// PrefsStore persists one-shot local preferences.
type PrefsStore interface {
	OnboardingSeen() (bool, error)
	SetOnboardingSeen() error
}
