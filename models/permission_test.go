package models

import (
	"sort"
	"testing"
)

func TestPermissionSetHas(t *testing.T) {
	t.Parallel()

	set := NewPermissionSet(PermSendMessages, PermViewChannels)

	if !set.Has(PermSendMessages) {
		t.Errorf("expected set to have SEND_MESSAGES")
	}
	if set.Has(PermBanMembers) {
		t.Errorf("expected set to not have BAN_MEMBERS")
	}
}

func TestPermissionSetAdministratorImpliesEverything(t *testing.T) {
	t.Parallel()

	set := NewPermissionSet(PermAdministrator)

	for _, perm := range allPermissions {
		if !set.Has(perm) {
			t.Errorf("ADMINISTRATOR holder should have %s", perm)
		}
	}
}

func TestPermissionSetUnion(t *testing.T) {
	t.Parallel()

	a := NewPermissionSet(PermSendMessages)
	b := NewPermissionSet(PermKickMembers, PermSendMessages)

	union := a.Union(b)

	if !union.Has(PermSendMessages) || !union.Has(PermKickMembers) {
		t.Errorf("union is missing expected permissions: %v", union.Names())
	}
	if len(union) != 2 {
		t.Errorf("expected union of 2 distinct permissions, got %d", len(union))
	}
	// Union girdileri değiştirmemeli.
	if a.Has(PermKickMembers) {
		t.Errorf("union mutated its receiver")
	}
}

func TestPermissionSetFromStrings(t *testing.T) {
	t.Parallel()

	set, err := PermissionSetFromStrings([]string{"SEND_MESSAGES", "MUTE_MEMBERS"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set.Has(PermSendMessages) || !set.Has(PermMuteMembers) {
		t.Errorf("parsed set is missing expected permissions: %v", set.Names())
	}
}

func TestPermissionSetFromStringsRejectsUnknown(t *testing.T) {
	t.Parallel()

	if _, err := PermissionSetFromStrings([]string{"SEND_MESSAGES", "FLY_TO_MOON"}); err == nil {
		t.Errorf("expected error for unknown permission name")
	}
}

func TestPermissionSetNamesSorted(t *testing.T) {
	t.Parallel()

	set := NewPermissionSet(PermViewChannels, PermBanMembers, PermSendMessages)
	names := set.Names()

	if len(names) != 3 {
		t.Fatalf("expected 3 names, got %d", len(names))
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("expected sorted names, got %v", names)
	}
}

func TestPermissionSetScanTolerance(t *testing.T) {
	t.Parallel()

	var set PermissionSet
	if err := set.Scan(`["SEND_MESSAGES","BAN_MEMBERS"]`); err != nil {
		t.Fatalf("unexpected scan error: %v", err)
	}
	if !set.Has(PermBanMembers) {
		t.Errorf("scanned set is missing BAN_MEMBERS")
	}

	// NULL kolon boş sete çözülmeli, hataya değil.
	var empty PermissionSet
	if err := empty.Scan(nil); err != nil {
		t.Fatalf("unexpected scan error for NULL: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty set from NULL, got %v", empty.Names())
	}
}

func TestAllPermissionsIsACopy(t *testing.T) {
	t.Parallel()

	first := AllPermissions()
	delete(first, PermAdministrator)

	if !AllPermissions().Has(PermAdministrator) {
		t.Errorf("mutating a returned set leaked into AllPermissions")
	}
}
