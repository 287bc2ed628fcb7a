// internal/types/models.go
package types

import (
	"time"
)

// Status is the engine-reported activity state for a room.
type Status string

const (
	StatusIdle       Status = "IDLE"
	StatusFocusing   Status = "FOCUSING"
	StatusDistracted Status = "DISTRACTED"
)

// ParseStatus maps a wire status string to a Status. Older engine builds
// report "WORKING" instead of "FOCUSING"; anything unrecognized (including
// an absent field) is treated as IDLE.
func ParseStatus(s string) Status {
	switch s {
	case string(StatusFocusing), "WORKING":
		return StatusFocusing
	case string(StatusDistracted):
		return StatusDistracted
	default:
		return StatusIdle
	}
}

// Active reports whether the status accumulates session time.
func (s Status) Active() bool {
	return s == StatusFocusing || s == StatusDistracted
}

// RemoteEvent is one entry of the engine-side distraction history, present
// only on engine builds that track history server-side.
type RemoteEvent struct {
	Timestamp string `json:"timestamp"`
	Reason    string `json:"reason"`
}

// StatusSnapshot is the decoded body of GET /status/{room}. Zero values
// mean "no active session".
type StatusSnapshot struct {
	SessionID int64         `json:"session_id"`
	Status    string        `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	Timestamp string        `json:"timestamp,omitempty"`
	ImageURL  string        `json:"image_url,omitempty"`
	History   []RemoteEvent `json:"history,omitempty"`
}

// DistractionEvent is one durable history entry for a room.
type DistractionEvent struct {
	ID         EventID   `json:"id"`
	Room       RoomCode  `json:"room_code"`
	At         time.Time `json:"at"`
	Reason     string    `json:"reason"`
	EpisodeKey string    `json:"episode_key,omitempty"`
	Evidence   string    `json:"evidence,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
}

// SessionRecord is an archived completed session.
type SessionRecord struct {
	SessionID int64     `json:"session_id"`
	Room      RoomCode  `json:"room_code"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Seconds   int       `json:"seconds"`
}

// Device is one paired engine in the fleet list.
type Device struct {
	ID      DeviceID  `json:"id"`
	Room    RoomCode  `json:"room_code"`
	Name    string    `json:"display_name"`
	AddedAt time.Time `json:"added_at"`
}

// Entitlement is the cached license state. Pro is only ever set by a
// successful remote verification; it is never trusted straight from disk.
type Entitlement struct {
	Token      string    `json:"token,omitempty"`
	Tier       string    `json:"tier,omitempty"`
	Pro        bool      `json:"pro"`
	VerifiedAt time.Time `json:"verified_at,omitzero"`
}

// SessionState is the reconciler's published view of the active session.
type SessionState struct {
	Room      RoomCode  `json:"room_code"`
	SessionID int64     `json:"session_id"`
	Status    Status    `json:"status"`
	Elapsed   int       `json:"elapsed_seconds"`
	StartedAt time.Time `json:"started_at,omitzero"`
}
