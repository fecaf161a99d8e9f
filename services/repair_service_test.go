package services

import (
	"context"
	"errors"
	"testing"

	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
)

// brokenServer, kasıtlı olarak bozulmuş bir sunucu kurar:
// default rol silinmiş, kimsede rol ataması yok, iki legacy üyelik
// bekliyor ve member_count gerçekten kopmuş durumda.
func brokenServer(t *testing.T, env *testEnv) (*models.Server, *models.User) {
	t.Helper()
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	member := env.createUser(t, "member")
	server := env.createServer(t, owner.ID, "hive")
	env.addMember(t, server.ID, member.ID)

	legacyA := env.createUser(t, "legacy-a")
	legacyB := env.createUser(t, "legacy-b")

	if _, err := env.db.Conn.ExecContext(ctx,
		`DELETE FROM roles WHERE server_id = ? AND is_default = 1`, server.ID); err != nil {
		t.Fatalf("failed to remove default role: %v", err)
	}
	if _, err := env.db.Conn.ExecContext(ctx,
		`DELETE FROM member_roles WHERE server_id = ?`, server.ID); err != nil {
		t.Fatalf("failed to strip role assignments: %v", err)
	}
	for _, u := range []*models.User{legacyA, legacyB} {
		if _, err := env.db.Conn.ExecContext(ctx,
			`INSERT INTO legacy_members (server_id, user_id) VALUES (?, ?)`, server.ID, u.ID); err != nil {
			t.Fatalf("failed to seed legacy member: %v", err)
		}
	}
	if _, err := env.db.Conn.ExecContext(ctx,
		`UPDATE servers SET member_count = 99 WHERE id = ?`, server.ID); err != nil {
		t.Fatalf("failed to corrupt member count: %v", err)
	}

	return server, owner
}

func TestDiagnoseFindsEveryDefect(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	server, _ := brokenServer(t, env)

	report, err := env.repair.Diagnose(context.Background(), server.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.NeedsRepair {
		t.Errorf("expected NeedsRepair")
	}
	if report.DefaultRoleExists {
		t.Errorf("default role should be reported missing")
	}
	if report.MembersWithoutDefaultRole != 2 {
		t.Errorf("expected 2 members without the default role, got %d", report.MembersWithoutDefaultRole)
	}
	if report.PendingLegacyMembers != 2 {
		t.Errorf("expected 2 pending legacy members, got %d", report.PendingLegacyMembers)
	}
	if report.MemberCountDrift != 97 { // 99 kayıtlı, 2 gerçek
		t.Errorf("expected drift 97, got %d", report.MemberCountDrift)
	}
}

func TestRepairIsOwnerOnly(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	admin := env.createUser(t, "admin")
	server := env.createServer(t, owner.ID, "hive")

	// ADMINISTRATOR bile yeterli değil.
	adminRole := env.createRole(t, server.ID, 5, models.PermAdministrator)
	env.addMember(t, server.ID, admin.ID, adminRole.ID)

	if _, err := env.repair.Repair(ctx, server.ID, admin.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner, got %v", err)
	}
}

func TestRepairFixesAndIsIdempotent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	server, owner := brokenServer(t, env)

	report, err := env.repair.Repair(ctx, server.ID, owner.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.DefaultRoleCreated {
		t.Errorf("expected the default role to be recreated")
	}
	if report.LegacyMembersMigrated != 2 {
		t.Errorf("expected 2 legacy members migrated, got %d", report.LegacyMembersMigrated)
	}
	// Migration önce koşar: 2 mevcut + 2 taşınan üyenin hepsi rol alır.
	if report.MemberRolesUpdated != 4 {
		t.Errorf("expected 4 members to gain the default role, got %d", report.MemberRolesUpdated)
	}
	if !report.MemberCountCorrected {
		t.Errorf("expected the member count to be corrected")
	}

	// Onarım sonrası teşhis temiz çıkmalı.
	diag, err := env.repair.Diagnose(ctx, server.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diag.NeedsRepair {
		t.Errorf("expected a clean diagnosis after repair, got %+v", diag)
	}

	got, err := env.servers.GetByID(ctx, server.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MemberCount != 4 {
		t.Errorf("expected member count 4, got %d", got.MemberCount)
	}

	// İkinci çalıştırma hiçbir şey değiştirmemeli (idempotence).
	again, err := env.repair.Repair(ctx, server.ID, owner.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.DefaultRoleCreated || again.MemberRolesUpdated != 0 ||
		again.LegacyMembersMigrated != 0 || again.MemberCountCorrected {
		t.Errorf("second repair should be a no-op, got %+v", again)
	}
}

func TestRepairNeverRemovesData(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	server, owner := brokenServer(t, env)

	before, err := env.members.ListByServer(ctx, server.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := env.repair.Repair(ctx, server.ID, owner.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, err := env.members.ListByServer(ctx, server.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(after) < len(before) {
		t.Errorf("repair must only add: had %d members, now %d", len(before), len(after))
	}
}
