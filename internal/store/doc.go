// Package store provides JSON-file-backed persistence for history, fleet,
// license, and preference data.
package store

import "github.com/user/focusguard/internal/types"

// Compile-time interface compliance checks.
var _ types.HistoryStore = (*HistoryStore)(nil)
var _ types.SessionLogStore = (*SessionLogStore)(nil)
var _ types.FleetStore = (*FleetStore)(nil)
var _ types.LicenseStore = (*LicenseStore)(nil)
var _ types.PrefsStore = (*PrefsStore)(nil)
