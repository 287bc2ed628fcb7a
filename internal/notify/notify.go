// Package notify fans alert events out to registered channels. Channels are
// fire-and-forget: a failing channel is logged, never propagated.
package notify

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/user/focusguard/internal/types"
)

// Kind classifies an alert.
type Kind string

const (
	KindSessionStarted Kind = "session_started"
	KindDistraction    Kind = "distraction"
	KindCapReached     Kind = "cap_reached"
)

// Alert is one notification event.
type Alert struct {
	Kind   Kind
	Room   types.RoomCode
	Reason string
}

// Message renders the alert as a short human-readable line.
func (a Alert) Message() string {
	switch a.Kind {
	case KindSessionStarted:
		return fmt.Sprintf("Focus session started (room %s)", a.Room)
	case KindDistraction:
		if a.Reason != "" {
			return fmt.Sprintf("Distraction recorded (room %s): %s", a.Room, a.Reason)
		}
		return fmt.Sprintf("Distraction recorded (room %s)", a.Room)
	case KindCapReached:
		return fmt.Sprintf("Free-tier time cap reached (room %s); session stopped", a.Room)
	default:
		return fmt.Sprintf("%s (room %s)", a.Kind, a.Room)
	}
}

// Channel delivers a single alert.
type Channel func(alert Alert) error

// Registry routes alerts to named channels.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]Channel
}

// NewRegistry creates an empty notification registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string]Channel),
	}
}

// Register adds a named channel. Re-registering a name replaces it.
func (r *Registry) Register(name string, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[name] = ch
}

// Notify delivers the alert to every registered channel. Channel failures
// are logged and swallowed.
func (r *Registry) Notify(alert Alert) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, ch := range r.channels {
		if err := ch(alert); err != nil {
			slog.Warn("notification channel failed", "channel", name, "kind", alert.Kind, "error", err)
		}
	}
}
