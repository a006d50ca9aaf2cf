package permissions

import (
	"strings"
	"testing"
)

func TestHas(t *testing.T) {
	a := AccessFleetView | AccessWaitlistView
	if !a.Has(AccessFleetView) {
		t.Error("expected Has(AccessFleetView) to be true")
	}
	if !a.Has(AccessWaitlistView) {
		t.Error("expected Has(AccessWaitlistView) to be true")
	}
	if a.Has(AccessBansManage) {
		t.Error("expected Has(AccessBansManage) to be false")
	}
}

func TestHasMultiple(t *testing.T) {
	a := AccessFleetView | AccessFleetInvite | AccessBansManage
	if !a.Has(AccessFleetView | AccessFleetInvite) {
		t.Error("expected Has(FleetView|FleetInvite) to be true")
	}
	if a.Has(AccessFleetView | AccessAccessManage) {
		t.Error("expected Has(FleetView|AccessManage) to be false when AccessManage is missing")
	}
}

func TestAdd(t *testing.T) {
	a := AccessFleetView
	a = a.Add(AccessBansManage)
	if !a.Has(AccessBansManage) {
		t.Error("expected access to be added")
	}
	if !a.Has(AccessFleetView) {
		t.Error("expected original access to remain")
	}
}

func TestRemove(t *testing.T) {
	a := AccessFleetView | AccessBansManage
	a = a.Remove(AccessBansManage)
	if a.Has(AccessBansManage) {
		t.Error("expected access to be removed")
	}
	if !a.Has(AccessFleetView) {
		t.Error("expected other access to remain")
	}
}

func TestRemoveDoesNotAffectOtherBits(t *testing.T) {
	a := AccessAllFleet
	a = a.Remove(AccessFleetConfigure)
	if a.Has(AccessFleetConfigure) {
		t.Error("expected FleetConfigure to be removed")
	}
	if !a.Has(AccessFleetView) {
		t.Error("expected FleetView to remain")
	}
	if !a.Has(AccessFleetInvite) {
		t.Error("expected FleetInvite to remain")
	}
}

func TestByKey(t *testing.T) {
	if ByKey("bans-manage") != AccessBansManage {
		t.Error("expected bans-manage to resolve to AccessBansManage")
	}
	if ByKey("fleet-view") != AccessFleetView {
		t.Error("expected fleet-view to resolve to AccessFleetView")
	}
	if ByKey("no-such-key") != 0 {
		t.Error("expected unknown key to resolve to zero")
	}
}

func TestKeysStableOrder(t *testing.T) {
	a := AccessBansManage | AccessFleetView | AccessSearch
	for i := 0; i < 10; i++ {
		keys := a.Keys()
		if len(keys) != 3 {
			t.Fatalf("expected 3 keys, got %v", keys)
		}
		if keys[0] != "fleet-view" || keys[1] != "search" || keys[2] != "bans-manage" {
			t.Fatalf("unexpected key order: %v", keys)
		}
	}
}

func TestKeysEmpty(t *testing.T) {
	if keys := Access(0).Keys(); keys != nil {
		t.Errorf("expected nil keys for empty set, got %v", keys)
	}
}

func TestString_None(t *testing.T) {
	a := Access(0)
	if a.String() != "NONE" {
		t.Errorf("expected NONE, got %s", a.String())
	}
}

func TestString_Single(t *testing.T) {
	s := AccessBansManage.String()
	if s != "bans-manage" {
		t.Errorf("expected bans-manage, got %s", s)
	}
}

func TestString_Multiple(t *testing.T) {
	a := AccessFleetView | AccessBansManage
	s := a.String()
	if !strings.Contains(s, "fleet-view") {
		t.Error("expected String to contain fleet-view")
	}
	if !strings.Contains(s, "bans-manage") {
		t.Error("expected String to contain bans-manage")
	}
}

func TestAddIdempotent(t *testing.T) {
	a := AccessFleetView
	a = a.Add(AccessFleetView)
	if a != AccessFleetView {
		t.Error("adding the same access twice should be idempotent")
	}
}

func TestRemoveAbsent(t *testing.T) {
	a := AccessFleetView
	a = a.Remove(AccessBansManage)
	if !a.Has(AccessFleetView) {
		t.Error("removing absent access should not affect existing ones")
	}
	if a.Has(AccessBansManage) {
		t.Error("BansManage should still not be present")
	}
}
