// Package reconcile turns the engine's polled status stream into local
// session state: one goroutine owns the state, driven by a network poll
// ticker and a 1-second elapsed-time ticker.
package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/user/focusguard/internal/notify"
	"github.com/user/focusguard/internal/policy"
	"github.com/user/focusguard/internal/types"
)

// StatusSource fetches the current snapshot for a room. *engine.Client
// satisfies this.
type StatusSource interface {
	Status(ctx context.Context, room types.RoomCode) (*types.StatusSnapshot, error)
}

// SnapshotObserver sees every applied snapshot in arrival order.
// *evidence.Recorder satisfies this.
type SnapshotObserver interface {
	Observe(ctx context.Context, status types.Status, snap *types.StatusSnapshot)
	Rearm()
}

// Options tune the reconciliation loop.
type Options struct {
	// PollInterval is the cadence of status requests (default 2s).
	PollInterval time.Duration
	// TickInterval is the cadence of the local elapsed clock (default 1s).
	TickInterval time.Duration
	// MinSessionSecs is the minimum accumulated time for a finished session
	// to be archived (default 60).
	MinSessionSecs int
	// CapSeconds is the free-tier usage ceiling (default 3600).
	CapSeconds int
}

func (o *Options) fill() {
	if o.PollInterval <= 0 {
		o.PollInterval = 2 * time.Second
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.MinSessionSecs <= 0 {
		o.MinSessionSecs = 60
	}
	if o.CapSeconds <= 0 {
		o.CapSeconds = 3600
	}
}

// pollResult tags a completed status request with its issue sequence number
// so late completions of older requests can be discarded.
type pollResult struct {
	seq  uint64
	snap *types.StatusSnapshot
	err  error
}

// Reconciler owns the session state for one room. All mutation happens on
// the Run goroutine; readers get copies via State or Subscribe. A Reconciler
// is bound to its room for life: switching rooms means a fresh Reconciler.
type Reconciler struct {
	room     types.RoomCode
	source   StatusSource
	sessions types.SessionLogStore
	observer SnapshotObserver
	notifier *notify.Registry
	guard    *policy.Guard
	opts     Options

	// OnCapReached is invoked (on the Run goroutine) after the usage cap
	// force-terminates the session, so the owner can unpair and prompt.
	OnCapReached func()

	mu   sync.Mutex
	st   types.SessionState
	subs []chan types.SessionState

	issued     uint64
	applied    uint64
	results    chan pollResult
	capPending bool

	// cappedID is the engine session terminated by the usage cap. Polls
	// still reporting it are ignored so the session cannot resurrect;
	// only a different nonzero session id clears it.
	cappedID int64
}

// New creates a Reconciler for a room. isPro is consulted by the usage
// guard on every elapsed tick.
func New(room types.RoomCode, source StatusSource, sessions types.SessionLogStore, observer SnapshotObserver, notifier *notify.Registry, isPro func() bool, opts Options) *Reconciler {
	opts.fill()
	r := &Reconciler{
		room:     room,
		source:   source,
		sessions: sessions,
		observer: observer,
		notifier: notifier,
		opts:     opts,
		st:       types.SessionState{Room: room, Status: types.StatusIdle},
		results:  make(chan pollResult, 8),
	}
	r.guard = policy.New(opts.CapSeconds, isPro, r.forceStop)
	return r
}

// State returns a copy of the current session state.
func (r *Reconciler) State() types.SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st
}

// Subscribe returns a channel carrying state updates. The channel holds only
// the latest state: slow consumers see the freshest snapshot, never a
// backlog.
func (r *Reconciler) Subscribe() <-chan types.SessionState {
	ch := make(chan types.SessionState, 1)
	r.mu.Lock()
	r.subs = append(r.subs, ch)
	r.mu.Unlock()
	return ch
}

// publish pushes the current state to all subscribers, latest-wins.
// Caller holds r.mu.
func (r *Reconciler) publish() {
	for _, ch := range r.subs {
		select {
		case <-ch:
		default:
		}
		ch <- r.st
	}
}

// Run drives the reconciliation loop until the context is cancelled. On
// teardown the active session is archived if it qualifies.
func (r *Reconciler) Run(ctx context.Context) error {
	pollTicker := time.NewTicker(r.opts.PollInterval)
	defer pollTicker.Stop()
	tickTicker := time.NewTicker(r.opts.TickInterval)
	defer tickTicker.Stop()

	slog.Info("reconciler started", "room", r.room, "poll_interval", r.opts.PollInterval)

	r.issuePoll(ctx)
	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return nil
		case <-pollTicker.C:
			r.issuePoll(ctx)
		case res := <-r.results:
			r.applyResult(ctx, res)
		case <-tickTicker.C:
			r.tickElapsed()
		}
	}
}

// issuePoll starts one status request on a helper goroutine. Overlapping
// in-flight requests are allowed; sequence numbers order their completions.
func (r *Reconciler) issuePoll(ctx context.Context) {
	r.issued++
	seq := r.issued
	go func() {
		snap, err := r.source.Status(ctx, r.room)
		select {
		case r.results <- pollResult{seq: seq, snap: snap, err: err}:
		case <-ctx.Done():
		}
	}()
}

// applyResult applies one completed poll. A completion older than the
// newest already applied is discarded: polls are idempotent snapshots, so
// last-received-wins.
func (r *Reconciler) applyResult(ctx context.Context, res pollResult) {
	if res.seq <= r.applied {
		slog.Debug("discarding stale poll completion", "seq", res.seq, "applied", r.applied)
		return
	}
	r.applied = res.seq

	r.mu.Lock()
	defer r.mu.Unlock()

	if res.err != nil {
		// Fail safe: show IDLE rather than a stale active state. The session
		// id and elapsed counter are kept so a recovered poll for the same
		// session resumes the timer instead of restarting it.
		r.st.Status = types.StatusIdle
		if r.observer != nil {
			r.observer.Observe(ctx, types.StatusIdle, nil)
		}
		r.publish()
		return
	}

	snap := res.snap
	status := types.ParseStatus(snap.Status)

	switch {
	case snap.SessionID != 0 && snap.SessionID == r.cappedID:
		// The usage cap already terminated this engine session. The engine
		// may keep reporting it as active; it stays terminated here until
		// the engine starts a genuinely new session.
		slog.Debug("ignoring capped session", "room", r.room, "session_id", snap.SessionID)
	case snap.SessionID == 0 || status == types.StatusIdle:
		r.endSessionLocked()
	case snap.SessionID != r.st.SessionID:
		// New session: the previous one (if any) is over.
		r.archiveLocked()
		r.cappedID = 0
		r.st.SessionID = snap.SessionID
		r.st.Status = status
		r.st.Elapsed = 0
		r.st.StartedAt = time.Now()
		r.guard.Reset()
		if r.observer != nil {
			r.observer.Rearm()
		}
		if r.notifier != nil {
			r.notifier.Notify(notify.Alert{Kind: notify.KindSessionStarted, Room: r.room})
		}
		slog.Info("session started", "room", r.room, "session_id", snap.SessionID)
	default:
		r.st.Status = status
	}

	if r.observer != nil {
		r.observer.Observe(ctx, r.st.Status, snap)
	}
	r.publish()
}

// tickElapsed advances the local clock while the session is active, then
// runs the usage-policy check.
func (r *Reconciler) tickElapsed() {
	r.mu.Lock()
	if !r.st.Status.Active() {
		r.mu.Unlock()
		return
	}
	r.st.Elapsed++
	r.guard.Check(r.st.Elapsed)
	pending := r.capPending
	r.capPending = false
	r.publish()
	r.mu.Unlock()

	// The cap callback runs outside the lock so it may read State freely.
	if pending && r.OnCapReached != nil {
		r.OnCapReached()
	}
}

// endSessionLocked archives a qualifying finished session and resets to
// idle. Caller holds r.mu.
func (r *Reconciler) endSessionLocked() {
	r.archiveLocked()
	r.st.SessionID = 0
	r.st.Status = types.StatusIdle
	r.st.Elapsed = 0
	r.st.StartedAt = time.Time{}
}

// archiveLocked records the current session if it was active long enough.
// Caller holds r.mu.
func (r *Reconciler) archiveLocked() {
	if r.st.SessionID == 0 || !r.st.Status.Active() || r.st.Elapsed < r.opts.MinSessionSecs {
		return
	}
	if r.sessions == nil {
		return
	}
	rec := &types.SessionRecord{
		SessionID: r.st.SessionID,
		Room:      r.room,
		StartedAt: r.st.StartedAt,
		EndedAt:   time.Now(),
		Seconds:   r.st.Elapsed,
	}
	if err := r.sessions.Append(r.room, rec); err != nil {
		slog.Error("failed to archive session", "room", r.room, "error", err)
		return
	}
	slog.Info("session archived", "room", r.room, "session_id", rec.SessionID, "seconds", rec.Seconds)
}

// forceStop is the usage guard's cap callback. It runs on the Run goroutine
// inside tickElapsed, which already holds r.mu.
func (r *Reconciler) forceStop() {
	r.archiveLocked()
	r.cappedID = r.st.SessionID
	r.st.SessionID = 0
	r.st.Status = types.StatusIdle
	r.st.Elapsed = 0
	r.st.StartedAt = time.Time{}
	if r.notifier != nil {
		r.notifier.Notify(notify.Alert{Kind: notify.KindCapReached, Room: r.room})
	}
	r.capPending = true
}

// shutdown archives a qualifying in-flight session when the loop stops.
func (r *Reconciler) shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.archiveLocked()
	slog.Info("reconciler stopped", "room", r.room)
}
