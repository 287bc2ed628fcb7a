// internal/maintenance/scheduler_test.go
package maintenance

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/focusguard/internal/store"
	"github.com/user/focusguard/internal/types"
)

func TestSweepHistoryPurgesAllRooms(t *testing.T) {
	dir := t.TempDir()
	hist := store.NewHistoryStore(dir, 50, 24*time.Hour)
	devices := store.NewFleetStore(dir)

	for _, room := range []types.RoomCode{"ROOM01", "ROOM02"} {
		if err := devices.Add(&types.Device{ID: types.NewDeviceID(), Room: room, Name: "PC", AddedAt: time.Now()}); err != nil {
			t.Fatal(err)
		}
		old := &types.DistractionEvent{
			ID:     types.NewEventID(time.Now().Add(-48 * time.Hour)),
			Room:   room,
			At:     time.Now().Add(-48 * time.Hour),
			Reason: "stale",
		}
		if err := hist.Append(room, old); err != nil {
			t.Fatal(err)
		}
		fresh := &types.DistractionEvent{
			ID:     types.NewEventID(time.Now()),
			Room:   room,
			At:     time.Now(),
			Reason: "fresh",
		}
		if err := hist.Append(room, fresh); err != nil {
			t.Fatal(err)
		}
	}

	s := New(hist, devices, 24*time.Hour, nil)
	s.sweepHistory()

	for _, room := range []types.RoomCode{"ROOM01", "ROOM02"} {
		events, err := hist.List(room)
		if err != nil {
			t.Fatal(err)
		}
		if len(events) != 1 || events[0].Reason != "fresh" {
			t.Errorf("room %s: expected only fresh entry, got %d entries", room, len(events))
		}
	}
}

func TestSchedulerFiresRefresh(t *testing.T) {
	dir := t.TempDir()
	hist := store.NewHistoryStore(dir, 50, 24*time.Hour)
	devices := store.NewFleetStore(dir)

	var fires atomic.Int32
	s := New(hist, devices, 24*time.Hour, func(ctx context.Context) {
		fires.Add(1)
	})
	s.sweepSpec = "* * * * * *"
	s.refreshSpec = "* * * * * *"

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	deadline := time.After(3 * time.Second)
	for fires.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("refresh job never fired")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	dir := t.TempDir()
	s := New(store.NewHistoryStore(dir, 50, 24*time.Hour), store.NewFleetStore(dir), 24*time.Hour, nil)
	s.sweepSpec = "not a cron spec"

	if err := s.Start(); err == nil {
		t.Error("expected error for malformed schedule")
	}
}
