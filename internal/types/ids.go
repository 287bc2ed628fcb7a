// internal/types/ids.go
package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type DeviceID string
type EventID string

// RoomCode is the short pairing identifier shown by the desktop engine.
// Codes are stored upper-cased; comparisons are case-insensitive.
type RoomCode string

// MinRoomCodeLen is the minimum accepted room code length.
const MinRoomCodeLen = 6

func NewDeviceID() DeviceID {
	return DeviceID(uuid.New().String())
}

// NewEventID builds a timestamp-based event id. Committed events are
// debounced well apart, so millisecond resolution is unique in practice.
func NewEventID(at time.Time) EventID {
	return EventID(fmt.Sprintf("evt_%d", at.UnixMilli()))
}

// NormalizeRoomCode trims whitespace and upper-cases the code.
func NormalizeRoomCode(s string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(s)))
}
