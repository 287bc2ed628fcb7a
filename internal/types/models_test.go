// internal/types/models_test.go
package types

import (
	"encoding/json"
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"FOCUSING", StatusFocusing},
		{"WORKING", StatusFocusing},
		{"DISTRACTED", StatusDistracted},
		{"IDLE", StatusIdle},
		{"", StatusIdle},
		{"garbage", StatusIdle},
	}
	for _, tt := range tests {
		if got := ParseStatus(tt.in); got != tt.want {
			t.Errorf("ParseStatus(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestStatusActive(t *testing.T) {
	if StatusIdle.Active() {
		t.Error("IDLE should not be active")
	}
	if !StatusFocusing.Active() {
		t.Error("FOCUSING should be active")
	}
	if !StatusDistracted.Active() {
		t.Error("DISTRACTED should be active")
	}
}

func TestStatusSnapshotDefaults(t *testing.T) {
	// An empty body must decode to "no active session".
	var snap StatusSnapshot
	if err := json.Unmarshal([]byte(`{}`), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.SessionID != 0 {
		t.Errorf("expected session_id 0, got %d", snap.SessionID)
	}
	if ParseStatus(snap.Status) != StatusIdle {
		t.Errorf("expected IDLE, got %s", ParseStatus(snap.Status))
	}
	if snap.History != nil {
		t.Error("expected nil history")
	}
}
