// internal/fleet/manager_test.go
package fleet

import (
	"context"
	"errors"
	"testing"

	"github.com/user/focusguard/internal/engine"
	"github.com/user/focusguard/internal/store"
	"github.com/user/focusguard/internal/types"
)

type fakeVerifier struct {
	result *engine.VerifyResult
	err    error
	calls  int
}

func (f *fakeVerifier) VerifyLicense(ctx context.Context, key string) (*engine.VerifyResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestManager(t *testing.T, verifier Verifier) (*Manager, *store.FleetStore, *store.LicenseStore) {
	t.Helper()
	dir := t.TempDir()
	devices := store.NewFleetStore(dir)
	licenses := store.NewLicenseStore(dir)
	return NewManager(devices, licenses, verifier), devices, licenses
}

func TestRegister_NormalizesAndPersists(t *testing.T) {
	m, devices, _ := newTestManager(t, nil)

	dev, err := m.Register("abc123", "Office PC")
	if err != nil {
		t.Fatal(err)
	}
	if dev.Room != "ABC123" {
		t.Errorf("room not normalized: %s", dev.Room)
	}
	if dev.ID == "" {
		t.Error("expected generated id")
	}

	list, err := devices.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("device not persisted: %d entries", len(list))
	}
}

func TestRegister_RejectsShortCode(t *testing.T) {
	m, devices, _ := newTestManager(t, nil)

	if _, err := m.Register("AB1", "Office PC"); err == nil {
		t.Fatal("expected rejection for 3-char code")
	}

	list, err := devices.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("fleet changed after rejected registration: %d entries", len(list))
	}
}

func TestRegister_RejectsNonAlphanumeric(t *testing.T) {
	m, _, _ := newTestManager(t, nil)

	if _, err := m.Register("ABC-12!", "PC"); err == nil {
		t.Error("expected rejection for non-alphanumeric code")
	}
}

func TestRegister_DefaultName(t *testing.T) {
	m, _, _ := newTestManager(t, nil)

	dev, err := m.Register("XYZ999", "")
	if err != nil {
		t.Fatal(err)
	}
	if dev.Name != "Device XYZ999" {
		t.Errorf("expected default name, got %s", dev.Name)
	}
}

func TestRename(t *testing.T) {
	m, _, _ := newTestManager(t, nil)

	dev, err := m.Register("ABC123", "Old")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Rename(dev.ID, "New"); err != nil {
		t.Fatal(err)
	}

	list, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if list[0].Name != "New" {
		t.Errorf("rename not applied: %s", list[0].Name)
	}

	// Unknown id: no-op, no error.
	if err := m.Rename(types.NewDeviceID(), "Ghost"); err != nil {
		t.Errorf("unexpected error for unknown id: %v", err)
	}
}

func TestVerifyLicense_SuccessPromotes(t *testing.T) {
	verifier := &fakeVerifier{result: &engine.VerifyResult{Valid: true, Tier: "pro"}}
	m, _, licenses := newTestManager(t, verifier)

	ent, err := m.VerifyLicense(context.Background(), "FG-KEY-1")
	if err != nil {
		t.Fatal(err)
	}
	if !ent.Pro || ent.Tier != "pro" || ent.Token != "FG-KEY-1" {
		t.Errorf("entitlement mismatch: %+v", ent)
	}
	if !m.IsPro() {
		t.Error("expected pro after successful verification")
	}

	cached, err := licenses.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cached == nil || cached.Token != "FG-KEY-1" {
		t.Errorf("token not cached: %+v", cached)
	}
}

func TestVerifyLicense_RejectionDemotesFromPro(t *testing.T) {
	verifier := &fakeVerifier{result: &engine.VerifyResult{Valid: true, Tier: "pro"}}
	m, _, licenses := newTestManager(t, verifier)

	if _, err := m.VerifyLicense(context.Background(), "FG-KEY-1"); err != nil {
		t.Fatal(err)
	}

	verifier.result = &engine.VerifyResult{Valid: false}
	_, err := m.VerifyLicense(context.Background(), "FG-KEY-1")
	if !errors.Is(err, ErrInvalidLicense) {
		t.Errorf("expected ErrInvalidLicense, got %v", err)
	}
	if m.IsPro() {
		t.Error("expected UNVERIFIED after rejection, still pro")
	}

	cached, err := licenses.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cached != nil {
		t.Errorf("cached token not cleared: %+v", cached)
	}
}

func TestVerifyLicense_TransportFailureDemotes(t *testing.T) {
	verifier := &fakeVerifier{result: &engine.VerifyResult{Valid: true, Tier: "pro"}}
	m, _, _ := newTestManager(t, verifier)

	if _, err := m.VerifyLicense(context.Background(), "FG-KEY-1"); err != nil {
		t.Fatal(err)
	}

	verifier.err = engine.ErrUnreachable
	if _, err := m.VerifyLicense(context.Background(), "FG-KEY-1"); err == nil {
		t.Fatal("expected error on transport failure")
	}
	if m.IsPro() {
		t.Error("pro state survived unreachable verification")
	}
}

func TestRefreshEntitlement_NoCachedToken(t *testing.T) {
	verifier := &fakeVerifier{result: &engine.VerifyResult{Valid: true, Tier: "pro"}}
	m, _, _ := newTestManager(t, verifier)

	ent := m.RefreshEntitlement(context.Background())
	if ent.Pro {
		t.Error("expected unverified with no cached token")
	}
	if verifier.calls != 0 {
		t.Errorf("verification attempted without a token: %d calls", verifier.calls)
	}
}

func TestRefreshEntitlement_ReverifiesCachedToken(t *testing.T) {
	verifier := &fakeVerifier{result: &engine.VerifyResult{Valid: true, Tier: "pro"}}
	m, _, licenses := newTestManager(t, verifier)

	if err := licenses.Save(&types.Entitlement{Token: "FG-KEY-1", Pro: true, Tier: "pro"}); err != nil {
		t.Fatal(err)
	}

	ent := m.RefreshEntitlement(context.Background())
	if !ent.Pro {
		t.Error("expected pro after successful re-verification")
	}
	if verifier.calls != 1 {
		t.Errorf("expected 1 verification call, got %d", verifier.calls)
	}

	// A cached pro token is never trusted when re-verification fails.
	verifier.err = engine.ErrUnreachable
	m2 := NewManager(nil, licenses, verifier)
	if err := licenses.Save(&types.Entitlement{Token: "FG-KEY-1", Pro: true, Tier: "pro"}); err != nil {
		t.Fatal(err)
	}
	ent = m2.RefreshEntitlement(context.Background())
	if ent.Pro {
		t.Error("stale pro state trusted across failed re-verification")
	}
}
