// Package evidence turns sustained distraction signals into durable,
// deduplicated history entries with embedded proof imagery.
package evidence

import (
	"context"
	"encoding/base64"
	"log/slog"
	"time"

	"github.com/user/focusguard/internal/notify"
	"github.com/user/focusguard/internal/types"
)

// ProofFetcher fetches the proof-of-distraction snapshot for a room.
// *engine.Client satisfies this.
type ProofFetcher interface {
	FetchProof(ctx context.Context, room types.RoomCode) ([]byte, error)
}

// debounceState is the recorder's position in the episode state machine.
// armed counts consecutive distracted snapshots toward the threshold;
// cooldown holds after a commit until the episode ends, so one long episode
// yields exactly one entry.
type debounceState int

const (
	stateArmed debounceState = iota
	stateCooldown
)

// Recorder watches applied poll snapshots for one room and commits one
// history entry per sustained distraction episode.
type Recorder struct {
	room      types.RoomCode
	history   types.HistoryStore
	fetcher   ProofFetcher
	notifier  *notify.Registry
	threshold int

	state          debounceState
	count          int
	lastEpisodeKey string
	serverHistory  bool

	now func() time.Time
}

// New creates a Recorder for the given room. threshold is the number of
// consecutive DISTRACTED snapshots required before an episode is committed.
func New(room types.RoomCode, history types.HistoryStore, fetcher ProofFetcher, notifier *notify.Registry, threshold int) *Recorder {
	return &Recorder{
		room:      room,
		history:   history,
		fetcher:   fetcher,
		notifier:  notifier,
		threshold: threshold,
		state:     stateArmed,
		now:       time.Now,
	}
}

// Rearm resets the debounce machine. Called when a new session starts.
func (r *Recorder) Rearm() {
	r.state = stateArmed
	r.count = 0
}

// Observe is called once per applied poll snapshot, in arrival order.
//
// If the snapshot carries a server-side history the engine is authoritative:
// the local log is replaced wholesale and the debounce path stays disabled
// for the rest of the pairing, so the two strategies never mix.
func (r *Recorder) Observe(ctx context.Context, status types.Status, snap *types.StatusSnapshot) {
	if snap != nil && snap.History != nil {
		r.adoptServerHistory(snap.History)
		return
	}
	if r.serverHistory {
		return
	}

	distracted := status == types.StatusDistracted

	switch r.state {
	case stateArmed:
		if !distracted {
			r.count = 0
			return
		}
		r.count++
		if r.count >= r.threshold {
			r.commit(ctx, snap)
			r.count = 0
			r.state = stateCooldown
		}
	case stateCooldown:
		if !distracted {
			r.state = stateArmed
			r.count = 0
		}
	}
}

// commit records one episode: dedup by the engine's episode timestamp,
// fetch proof imagery, embed it, append, and notify exactly once. A failed
// proof fetch skips the entry silently.
func (r *Recorder) commit(ctx context.Context, snap *types.StatusSnapshot) {
	var reason, episodeKey string
	if snap != nil {
		reason = snap.Reason
		episodeKey = snap.Timestamp
	}

	if episodeKey != "" && episodeKey == r.lastEpisodeKey {
		slog.Debug("episode already recorded", "room", r.room, "episode", episodeKey)
		return
	}

	var evidence string
	if r.fetcher != nil {
		img, err := r.fetcher.FetchProof(ctx, r.room)
		if err != nil {
			slog.Debug("proof fetch failed; skipping episode entry", "room", r.room, "error", err)
			return
		}
		evidence = base64.StdEncoding.EncodeToString(img)
	}

	at := r.now()
	ev := &types.DistractionEvent{
		ID:         types.NewEventID(at),
		Room:       r.room,
		At:         at,
		Reason:     reason,
		EpisodeKey: episodeKey,
		Evidence:   evidence,
	}
	if err := r.history.Append(r.room, ev); err != nil {
		slog.Error("failed to persist distraction event", "room", r.room, "error", err)
		return
	}
	r.lastEpisodeKey = episodeKey

	if r.notifier != nil {
		r.notifier.Notify(notify.Alert{Kind: notify.KindDistraction, Room: r.room, Reason: reason})
	}
}

// adoptServerHistory replaces the local log with the engine's history.
func (r *Recorder) adoptServerHistory(remote []types.RemoteEvent) {
	if !r.serverHistory {
		slog.Info("engine provides history; switching to server-authoritative log", "room", r.room)
		r.serverHistory = true
	}

	events := make([]*types.DistractionEvent, 0, len(remote))
	for _, re := range remote {
		at := r.now()
		if parsed, err := time.Parse(time.RFC3339, re.Timestamp); err == nil {
			at = parsed
		}
		events = append(events, &types.DistractionEvent{
			ID:         types.NewEventID(at),
			Room:       r.room,
			At:         at,
			Reason:     re.Reason,
			EpisodeKey: re.Timestamp,
		})
	}
	if err := r.history.Replace(r.room, events); err != nil {
		slog.Error("failed to adopt server history", "room", r.room, "error", err)
	}
}
