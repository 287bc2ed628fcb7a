// Package policy enforces the client-side free-tier usage cap.
package policy

import "log/slog"

// Guard watches the elapsed-time counter and force-terminates the session
// when a non-pro user reaches the cap. The guard only ever reads elapsed
// time; the reconciler owns the counter.
type Guard struct {
	capSeconds int
	isPro      func() bool
	onCap      func()
	fired      bool
}

// New creates a Guard. isPro is consulted on every check so a mid-session
// license verification takes effect immediately; onCap is invoked exactly
// once per session when the cap is reached.
func New(capSeconds int, isPro func() bool, onCap func()) *Guard {
	return &Guard{
		capSeconds: capSeconds,
		isPro:      isPro,
		onCap:      onCap,
	}
}

// Check is called on each elapsed-time tick. Returns true if the cap fired
// (now or earlier this session). The trigger is purely local: it fires even
// while the engine still reports an active session.
func (g *Guard) Check(elapsedSeconds int) bool {
	if g.fired {
		return true
	}
	if g.isPro() {
		return false
	}
	if elapsedSeconds >= g.capSeconds {
		g.fired = true
		slog.Info("free-tier cap reached; terminating session", "elapsed", elapsedSeconds, "cap", g.capSeconds)
		if g.onCap != nil {
			g.onCap()
		}
		return true
	}
	return false
}

// Reset re-arms the guard for a new session.
func (g *Guard) Reset() {
	g.fired = false
}
