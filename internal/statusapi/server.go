// internal/statusapi/server.go
package statusapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/user/focusguard/internal/types"
)

// StateProvider exposes the current reconciled session state. The
// reconciler satisfies this.
type StateProvider interface {
	State() types.SessionState
}

// Server is a lightweight local HTTP handler exposing the daemon's state
// for scripts and status bars.
type Server struct {
	state   StateProvider
	history types.HistoryStore
	devices types.FleetStore
	mux     *http.ServeMux
}

// NewServer creates a Server around the given state provider and stores.
func NewServer(state StateProvider, history types.HistoryStore, devices types.FleetStore) *Server {
	s := &Server{
		state:   state,
		history: history,
		devices: devices,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/state", s.handleState)
	s.mux.HandleFunc("/history/", s.handleHistory)
	s.mux.HandleFunc("/devices", s.handleDevices)
	return s
}

// ServeHTTP delegates to the internal mux, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// stateResponse is the JSON body for GET /state.
type stateResponse struct {
	Room      string `json:"room"`
	SessionID int64  `json:"session_id"`
	Status    string `json:"status"`
	Elapsed   int    `json:"elapsed_seconds"`
	StartedAt string `json:"started_at,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if s.state == nil {
		http.Error(w, `{"error":"no active watch"}`, http.StatusServiceUnavailable)
		return
	}
	st := s.state.State()

	resp := stateResponse{
		Room:      string(st.Room),
		SessionID: st.SessionID,
		Status:    string(st.Status),
		Elapsed:   st.Elapsed,
	}
	if !st.StartedAt.IsZero() {
		resp.StartedAt = st.StartedAt.Format("2006-01-02T15:04:05Z07:00")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	room := types.NormalizeRoomCode(strings.TrimPrefix(r.URL.Path, "/history/"))
	if room == "" {
		http.Error(w, `{"error":"room code required"}`, http.StatusBadRequest)
		return
	}

	events, err := s.history.List(room)
	if err != nil {
		slog.Error("list history failed", "room", room, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	limit := len(events)
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 && n < limit {
			limit = n
		}
	}
	if events == nil {
		events = []*types.DistractionEvent{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events[:limit])
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.devices.List()
	if err != nil {
		slog.Error("list devices failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	if devices == nil {
		devices = []*types.Device{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(devices)
}
