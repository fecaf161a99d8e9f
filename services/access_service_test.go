package services

import (
	"context"
	"testing"

	"github.com/akinalp/kovan/models"
)

func TestEvaluateOwnerHasEverything(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	server := env.createServer(t, owner.ID, "hive")

	access, err := env.access.Evaluate(ctx, server.ID, owner.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !access.IsOwner {
		t.Errorf("expected IsOwner for the server owner")
	}
	if access.HighestPosition != models.OwnerPosition {
		t.Errorf("expected owner position %d, got %d", models.OwnerPosition, access.HighestPosition)
	}
	if !access.Has(models.PermBanMembers) || !access.Has(models.PermManageServer) {
		t.Errorf("owner should hold every permission, got %v", access.Permissions.Names())
	}
}

func TestEvaluateNonMemberResolvesToEmpty(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	outsider := env.createUser(t, "outsider")
	server := env.createServer(t, owner.ID, "hive")

	access, err := env.access.Evaluate(ctx, server.ID, outsider.ID)
	if err != nil {
		t.Fatalf("evaluation must not fail for non-members: %v", err)
	}
	if access.IsOwner {
		t.Errorf("outsider should not be owner")
	}
	if len(access.Permissions) != 0 {
		t.Errorf("expected empty permission set, got %v", access.Permissions.Names())
	}
	if access.HighestPosition != 0 {
		t.Errorf("expected position 0, got %d", access.HighestPosition)
	}
}

func TestEvaluateUnionsRolePermissions(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	member := env.createUser(t, "member")
	server := env.createServer(t, owner.ID, "hive")

	low := env.createRole(t, server.ID, 1, models.PermSendMessages)
	high := env.createRole(t, server.ID, 5, models.PermMuteMembers)
	env.addMember(t, server.ID, member.ID, low.ID, high.ID)

	access, err := env.access.Evaluate(ctx, server.ID, member.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !access.Has(models.PermSendMessages) || !access.Has(models.PermMuteMembers) {
		t.Errorf("expected union of both roles, got %v", access.Permissions.Names())
	}
	if access.Has(models.PermBanMembers) {
		t.Errorf("member should not gain unheld permissions")
	}
	if access.HighestPosition != 5 {
		t.Errorf("expected highest position 5, got %d", access.HighestPosition)
	}
}

func TestEvaluateAdministratorExpandsToAll(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	admin := env.createUser(t, "admin")
	server := env.createServer(t, owner.ID, "hive")

	adminRole := env.createRole(t, server.ID, 3, models.PermAdministrator)
	env.addMember(t, server.ID, admin.ID, adminRole.ID)

	access, err := env.access.Evaluate(ctx, server.ID, admin.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if access.IsOwner {
		t.Errorf("administrator is not the owner")
	}
	if !access.Has(models.PermBanMembers) || !access.Has(models.PermManageServer) {
		t.Errorf("ADMINISTRATOR should expand to the full set, got %v", access.Permissions.Names())
	}
}

func TestEvaluateSkipsDanglingRoles(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	member := env.createUser(t, "member")
	server := env.createServer(t, owner.ID, "hive")

	kept := env.createRole(t, server.ID, 2, models.PermSendMessages)
	doomed := env.createRole(t, server.ID, 7, models.PermBanMembers)
	env.addMember(t, server.ID, member.ID, kept.ID, doomed.ID)

	// Rol silinir ama member_roles kaydı kalır — evaluator sessizce atlamalı.
	if err := env.roles.Delete(ctx, doomed.ID); err != nil {
		t.Fatalf("failed to delete role: %v", err)
	}

	access, err := env.access.Evaluate(ctx, server.ID, member.ID)
	if err != nil {
		t.Fatalf("dangling role reference must not fail evaluation: %v", err)
	}
	if access.Has(models.PermBanMembers) {
		t.Errorf("deleted role must not contribute permissions")
	}
	if access.HighestPosition != 2 {
		t.Errorf("expected position 2 from the surviving role, got %d", access.HighestPosition)
	}
}

func TestGetAccessReportsStanding(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	outsider := env.createUser(t, "outsider")
	server := env.createServer(t, owner.ID, "hive")

	resp, err := env.access.GetAccess(ctx, server.ID, outsider.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.HasAccess {
		t.Errorf("outsider should have no standing")
	}
	if len(resp.Permissions) != 0 {
		t.Errorf("expected no permissions, got %v", resp.Permissions)
	}

	ownerResp, err := env.access.GetAccess(ctx, server.ID, owner.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ownerResp.HasAccess || !ownerResp.IsOwner {
		t.Errorf("owner should have standing and ownership")
	}
}
