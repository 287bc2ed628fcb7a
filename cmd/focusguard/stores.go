package main

import (
	"fmt"
	"time"

	"github.com/user/focusguard/internal/config"
	"github.com/user/focusguard/internal/engine"
	"github.com/user/focusguard/internal/fleet"
	"github.com/user/focusguard/internal/store"
	"github.com/user/focusguard/internal/types"
)

// appStores bundles the file-backed stores every command shares.
type appStores struct {
	history  *store.HistoryStore
	sessions *store.SessionLogStore
	devices  *store.FleetStore
	licenses *store.LicenseStore
	prefs    *store.PrefsStore
}

func openStores(cfg *config.Config) appStores {
	return appStores{
		history:  store.NewHistoryStore(cfg.DataDir, cfg.History.MaxEntries, time.Duration(cfg.History.RetentionHours)*time.Hour),
		sessions: store.NewSessionLogStore(cfg.DataDir),
		devices:  store.NewFleetStore(cfg.DataDir),
		licenses: store.NewLicenseStore(cfg.DataDir),
		prefs:    store.NewPrefsStore(cfg.DataDir),
	}
}

func newEngineClient(cfg *config.Config) *engine.Client {
	return engine.NewClient(cfg.ServerURL)
}

func newFleetManager(cfg *config.Config, s appStores) *fleet.Manager {
	return fleet.NewManager(s.devices, s.licenses, newEngineClient(cfg))
}

// ensurePaired registers the room as a new device unless one is already
// paired to it. Reports whether a new pairing was created.
func ensurePaired(manager *fleet.Manager, devices *store.FleetStore, room types.RoomCode, name string) (bool, error) {
	dev, err := devices.FindByRoom(room)
	if err != nil {
		return false, err
	}
	if dev != nil {
		return false, nil
	}
	if _, err := manager.Register(string(room), name); err != nil {
		return false, err
	}
	return true, nil
}

// resolveRoom picks the room to operate on: an explicit argument wins,
// otherwise a single paired device is used implicitly.
func resolveRoom(args []string, devices *store.FleetStore) (types.RoomCode, error) {
	if len(args) > 0 {
		return types.NormalizeRoomCode(args[0]), nil
	}
	list, err := devices.List()
	if err != nil {
		return "", err
	}
	switch len(list) {
	case 0:
		return "", fmt.Errorf("no devices paired; run 'focusguard device add <room>'")
	case 1:
		return list[0].Room, nil
	default:
		return "", fmt.Errorf("%d devices paired; specify a room code", len(list))
	}
}
