package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/focusguard/internal/store"
	"github.com/user/focusguard/internal/types"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{61, "00:01:01"},
		{3600, "01:00:00"},
		{3725, "01:02:05"},
		{-5, "00:00:00"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.secs); got != tt.want {
			t.Errorf("FormatElapsed(%d) = %s, want %s", tt.secs, got, tt.want)
		}
	}
}

func newTestModel(t *testing.T) (Model, chan types.SessionState, *store.HistoryStore) {
	t.Helper()
	states := make(chan types.SessionState, 1)
	hist := store.NewHistoryStore(t.TempDir(), 50, 24*time.Hour)
	m := NewModel("ABC123", states, hist, func() bool { return false })
	return m, states, hist
}

func TestUpdateStateMsg(t *testing.T) {
	m, _, _ := newTestModel(t)

	next, cmd := m.Update(stateMsg(types.SessionState{
		Room:      "ABC123",
		SessionID: 7,
		Status:    types.StatusFocusing,
		Elapsed:   90,
	}))
	m = next.(Model)

	if m.st.Status != types.StatusFocusing || m.st.Elapsed != 90 {
		t.Errorf("state not applied: %+v", m.st)
	}
	if cmd == nil {
		t.Error("expected re-subscribe command after state update")
	}

	view := m.View()
	if !strings.Contains(view, "FOCUSING") {
		t.Error("view missing status badge")
	}
	if !strings.Contains(view, "00:01:30") {
		t.Error("view missing formatted timer")
	}
	if !strings.Contains(view, "session 7") {
		t.Error("view missing session id")
	}
}

func TestCapPromptShownForFreeTier(t *testing.T) {
	m, _, _ := newTestModel(t)

	next, _ := m.Update(capReachedMsg{})
	m = next.(Model)

	if !strings.Contains(m.View(), "Free session limit reached") {
		t.Error("expected upgrade prompt after cap hit")
	}

	// A new active session clears the prompt.
	next, _ = m.Update(stateMsg(types.SessionState{SessionID: 8, Status: types.StatusFocusing}))
	m = next.(Model)
	if strings.Contains(m.View(), "Free session limit reached") {
		t.Error("prompt should clear once a session is active again")
	}
}

func TestCapPromptHiddenForPro(t *testing.T) {
	states := make(chan types.SessionState, 1)
	hist := store.NewHistoryStore(t.TempDir(), 50, 24*time.Hour)
	m := NewModel("ABC123", states, hist, func() bool { return true })

	next, _ := m.Update(capReachedMsg{})
	m = next.(Model)

	if strings.Contains(m.View(), "Free session limit reached") {
		t.Error("pro tier should never see the upgrade prompt")
	}
}

func TestHistoryMsgRendered(t *testing.T) {
	m, _, _ := newTestModel(t)

	events := []*types.DistractionEvent{
		{ID: "evt_1", Room: "ABC123", At: time.Date(2026, 9, 1, 10, 0, 2, 0, time.UTC), Reason: "phone"},
	}
	next, _ := m.Update(historyMsg{events: events})
	m = next.(Model)

	if !strings.Contains(m.View(), "phone") {
		t.Error("view missing distraction reason")
	}
}

func TestQuitKey(t *testing.T) {
	m, _, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
