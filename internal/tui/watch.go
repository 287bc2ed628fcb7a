// Package tui renders the interactive watch screen.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/focusguard/internal/types"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	timerStyle  = lipgloss.NewStyle().Bold(true)
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))

	badgeStyles = map[types.Status]lipgloss.Style{
		types.StatusIdle:       lipgloss.NewStyle().Bold(true).Padding(0, 1).Background(lipgloss.Color("240")).Foreground(lipgloss.Color("15")),
		types.StatusFocusing:   lipgloss.NewStyle().Bold(true).Padding(0, 1).Background(lipgloss.Color("28")).Foreground(lipgloss.Color("15")),
		types.StatusDistracted: lipgloss.NewStyle().Bold(true).Padding(0, 1).Background(lipgloss.Color("160")).Foreground(lipgloss.Color("15")),
	}
)

// stateMsg carries a reconciler state update.
type stateMsg types.SessionState

// historyMsg carries a refreshed distraction list.
type historyMsg struct {
	events []*types.DistractionEvent
	err    error
}

// historyTickMsg triggers a periodic history reload.
type historyTickMsg struct{}

// capReachedMsg is sent when the free-tier usage cap terminates a session.
type capReachedMsg struct{}

// Model is the watch screen: a status badge, a live session timer, and the
// most recent distraction entries for the room.
type Model struct {
	room    types.RoomCode
	states  <-chan types.SessionState
	history types.HistoryStore
	isPro   func() bool

	st         types.SessionState
	events     []*types.DistractionEvent
	capHit     bool
	err        error
	width      int
	maxEntries int
}

// NewModel creates the watch model. states is the reconciler's subscription
// channel; the model drains it one update per Bubble Tea message.
func NewModel(room types.RoomCode, states <-chan types.SessionState, history types.HistoryStore, isPro func() bool) Model {
	return Model{
		room:       room,
		states:     states,
		history:    history,
		isPro:      isPro,
		maxEntries: 5,
	}
}

// CapReached returns a message for Program.Send when the usage cap fires.
func CapReached() tea.Msg { return capReachedMsg{} }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForState(), m.loadHistory(), historyTick())
}

func (m Model) waitForState() tea.Cmd {
	return func() tea.Msg {
		st, ok := <-m.states
		if !ok {
			return tea.Quit()
		}
		return stateMsg(st)
	}
}

func (m Model) loadHistory() tea.Cmd {
	return func() tea.Msg {
		events, err := m.history.List(m.room)
		return historyMsg{events: events, err: err}
	}
}

func historyTick() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return historyTickMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case stateMsg:
		m.st = types.SessionState(msg)
		if m.st.Status.Active() {
			m.capHit = false
		}
		return m, m.waitForState()

	case historyMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.events = msg.events
		}

	case historyTickMsg:
		return m, tea.Batch(m.loadHistory(), historyTick())

	case capReachedMsg:
		m.capHit = true
		return m, m.loadHistory()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m, m.loadHistory()
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("focusguard") + mutedStyle.Render("  room "+string(m.room)) + "\n\n")

	badge, ok := badgeStyles[m.st.Status]
	if !ok {
		badge = badgeStyles[types.StatusIdle]
	}
	status := string(m.st.Status)
	if status == "" {
		status = string(types.StatusIdle)
	}
	b.WriteString(badge.Render(status))
	b.WriteString("  " + timerStyle.Render(FormatElapsed(m.st.Elapsed)))
	if m.st.SessionID != 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  session %d", m.st.SessionID)))
	}
	b.WriteString("\n\n")

	if m.capHit && !m.isPro() {
		b.WriteString(promptStyle.Render("Free session limit reached.") + "\n")
		b.WriteString(mutedStyle.Render("Run 'focusguard license verify <key>' to unlock unlimited sessions.") + "\n\n")
	}

	b.WriteString(titleStyle.Render("Recent distractions") + "\n")
	if m.err != nil {
		b.WriteString(mutedStyle.Render("history unavailable: "+m.err.Error()) + "\n")
	} else if len(m.events) == 0 {
		b.WriteString(mutedStyle.Render("none recorded") + "\n")
	} else {
		n := len(m.events)
		if n > m.maxEntries {
			n = m.maxEntries
		}
		for _, ev := range m.events[:n] {
			reason := ev.Reason
			if reason == "" {
				reason = "distracted"
			}
			b.WriteString(fmt.Sprintf("  %s  %s\n", ev.At.Local().Format("15:04:05"), reason))
		}
	}

	b.WriteString("\n" + mutedStyle.Render("r:refresh  q:quit"))
	return b.String()
}

// FormatElapsed renders elapsed seconds as HH:MM:SS.
func FormatElapsed(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}
