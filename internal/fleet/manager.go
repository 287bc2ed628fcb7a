// Package fleet manages paired devices and the cached license entitlement.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/user/focusguard/internal/engine"
	"github.com/user/focusguard/internal/types"
)

// ErrInvalidLicense is returned when the engine explicitly rejects a key.
var ErrInvalidLicense = errors.New("license key rejected")

// Verifier checks a license key against the engine. *engine.Client
// satisfies this.
type Verifier interface {
	VerifyLicense(ctx context.Context, key string) (*engine.VerifyResult, error)
}

// registerInput is validated before any fleet mutation.
type registerInput struct {
	Room string `validate:"required,min=6,alphanum"`
}

// Manager owns the fleet list and the entitlement state machine. The
// in-memory entitlement starts unverified and only a successful remote
// verification promotes it to pro; any failure demotes it and clears the
// cached token.
type Manager struct {
	devices  types.FleetStore
	licenses types.LicenseStore
	verifier Verifier
	validate *validator.Validate

	mu  sync.RWMutex
	ent types.Entitlement
}

// NewManager creates a Manager around the given stores and verifier.
func NewManager(devices types.FleetStore, licenses types.LicenseStore, verifier Verifier) *Manager {
	return &Manager{
		devices:  devices,
		licenses: licenses,
		verifier: verifier,
		validate: validator.New(),
	}
}

// Register validates and pairs a new device. The room code is normalized
// before validation; rejection happens before any state is created.
func (m *Manager) Register(roomCode, name string) (*types.Device, error) {
	room := types.NormalizeRoomCode(roomCode)
	if err := m.validate.Struct(registerInput{Room: string(room)}); err != nil {
		return nil, fmt.Errorf("invalid room code %q: must be at least %d alphanumeric characters", roomCode, types.MinRoomCodeLen)
	}
	if name == "" {
		name = fmt.Sprintf("Device %s", room)
	}

	dev := &types.Device{
		ID:      types.NewDeviceID(),
		Room:    room,
		Name:    name,
		AddedAt: time.Now(),
	}
	if err := m.devices.Add(dev); err != nil {
		return nil, err
	}
	return dev, nil
}

// Rename updates a device's display name. Unknown ids are a no-op.
func (m *Manager) Rename(id types.DeviceID, name string) error {
	devices, err := m.devices.List()
	if err != nil {
		return err
	}
	for _, dev := range devices {
		if dev.ID == id {
			dev.Name = name
			return m.devices.Update(dev)
		}
	}
	return nil
}

// Remove unpairs a device. Unknown ids are a no-op.
func (m *Manager) Remove(id types.DeviceID) error {
	return m.devices.Remove(id)
}

// List returns all paired devices.
func (m *Manager) List() ([]*types.Device, error) {
	return m.devices.List()
}

// IsPro reports the current in-memory entitlement. Safe to call from any
// goroutine; the reconciler's usage guard consults this each tick.
func (m *Manager) IsPro() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ent.Pro
}

// Entitlement returns a copy of the current in-memory entitlement.
func (m *Manager) Entitlement() types.Entitlement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ent
}

// VerifyLicense checks a key against the engine. Success caches the token
// and promotes the entitlement to pro. Any failure, transport or explicit
// rejection, clears the cached token and demotes to unverified so a stale
// pro state never survives a failed verification.
func (m *Manager) VerifyLicense(ctx context.Context, key string) (types.Entitlement, error) {
	result, err := m.verifier.VerifyLicense(ctx, key)
	if err != nil {
		m.demote()
		return types.Entitlement{}, fmt.Errorf("verify license: %w", err)
	}
	if !result.Valid {
		m.demote()
		return types.Entitlement{}, ErrInvalidLicense
	}

	ent := types.Entitlement{
		Token:      key,
		Tier:       result.Tier,
		Pro:        true,
		VerifiedAt: time.Now(),
	}
	if err := m.licenses.Save(&ent); err != nil {
		slog.Error("failed to cache license", "error", err)
	}

	m.mu.Lock()
	m.ent = ent
	m.mu.Unlock()
	slog.Info("license verified", "tier", ent.Tier)
	return ent, nil
}

// RefreshEntitlement re-verifies the cached token at startup. The cache is
// a convenience, never a trust boundary: with no cached token, or on any
// verification failure, the entitlement stays unverified.
func (m *Manager) RefreshEntitlement(ctx context.Context) types.Entitlement {
	cached, err := m.licenses.Load()
	if err != nil {
		slog.Warn("failed to load cached license", "error", err)
		return m.Entitlement()
	}
	if cached == nil || cached.Token == "" {
		return m.Entitlement()
	}

	ent, err := m.VerifyLicense(ctx, cached.Token)
	if err != nil {
		slog.Warn("cached license failed re-verification", "error", err)
		return m.Entitlement()
	}
	return ent
}

// demote clears both the in-memory and the cached entitlement.
func (m *Manager) demote() {
	m.mu.Lock()
	m.ent = types.Entitlement{}
	m.mu.Unlock()
	if err := m.licenses.Clear(); err != nil {
		slog.Error("failed to clear cached license", "error", err)
	}
}
