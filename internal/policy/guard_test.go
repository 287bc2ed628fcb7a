// internal/policy/guard_test.go
package policy

import "testing"

func TestGuard_FiresAtCapForFreeTier(t *testing.T) {
	fired := 0
	g := New(3600, func() bool { return false }, func() { fired++ })

	if g.Check(3599) {
		t.Error("cap fired before threshold")
	}
	if !g.Check(3600) {
		t.Error("cap did not fire at threshold")
	}
	if fired != 1 {
		t.Errorf("expected 1 callback, got %d", fired)
	}

	// Subsequent ticks report fired without re-invoking the callback.
	if !g.Check(3601) {
		t.Error("expected fired state to persist")
	}
	if fired != 1 {
		t.Errorf("callback re-invoked: %d", fired)
	}
}

func TestGuard_NeverFiresForPro(t *testing.T) {
	fired := 0
	g := New(3600, func() bool { return true }, func() { fired++ })

	if g.Check(100000) {
		t.Error("cap fired for pro entitlement")
	}
	if fired != 0 {
		t.Errorf("expected no callback, got %d", fired)
	}
}

func TestGuard_ProUpgradeMidSession(t *testing.T) {
	pro := false
	fired := 0
	g := New(3600, func() bool { return pro }, func() { fired++ })

	if g.Check(1800) {
		t.Error("cap fired early")
	}
	pro = true
	if g.Check(7200) {
		t.Error("cap fired after upgrade")
	}
	if fired != 0 {
		t.Errorf("expected no callback, got %d", fired)
	}
}

func TestGuard_ResetRearms(t *testing.T) {
	fired := 0
	g := New(60, func() bool { return false }, func() { fired++ })

	g.Check(60)
	g.Reset()
	g.Check(60)

	if fired != 2 {
		t.Errorf("expected cap to fire once per session, got %d", fired)
	}
}
