package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
)

func TestRedeemJoinsAndIsIdempotent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	joiner := env.createUser(t, "joiner")
	server := env.createServer(t, owner.ID, "hive")

	first, err := env.invites.Redeem(ctx, *server.InviteCode, joiner.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.AlreadyMember {
		t.Errorf("first redeem should not report AlreadyMember")
	}
	if first.ServerID != server.ID || first.ServerName != server.Name {
		t.Errorf("unexpected redeem result: %+v", first)
	}

	// İkinci redeem hata değil, idempotent no-op.
	second, err := env.invites.Redeem(ctx, *server.InviteCode, joiner.ID)
	if err != nil {
		t.Fatalf("repeated redeem should succeed: %v", err)
	}
	if !second.AlreadyMember {
		t.Errorf("second redeem should report AlreadyMember")
	}

	members, err := env.members.ListByServer(ctx, server.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(members) != 2 { // owner + joiner
		t.Errorf("expected 2 members, got %d", len(members))
	}

	// Sayaç yalnızca bir kez artmış olmalı.
	got, err := env.servers.GetByID(ctx, server.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MemberCount != 2 {
		t.Errorf("expected member count 2, got %d", got.MemberCount)
	}
}

func TestRedeemAssignsDefaultRole(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	joiner := env.createUser(t, "joiner")
	server := env.createServer(t, owner.ID, "hive")

	if _, err := env.invites.Redeem(ctx, *server.InviteCode, joiner.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	access, err := env.access.Evaluate(ctx, server.ID, joiner.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !access.Has(models.PermSendMessages) || !access.Has(models.PermViewChannels) {
		t.Errorf("joiner should hold the baseline permissions, got %v", access.Permissions.Names())
	}
}

func TestRedeemSynthesizesMissingDefaultRole(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	joiner := env.createUser(t, "joiner")
	server := env.createServer(t, owner.ID, "hive")

	// Default rolü elle yok et (repository Delete is_default'u korur).
	if _, err := env.db.Conn.ExecContext(ctx,
		`DELETE FROM roles WHERE server_id = ? AND is_default = 1`, server.ID); err != nil {
		t.Fatalf("failed to remove default role: %v", err)
	}

	if _, err := env.invites.Redeem(ctx, *server.InviteCode, joiner.ID); err != nil {
		t.Fatalf("join on a server without a default role must self-heal: %v", err)
	}

	synthesized, err := env.roles.GetDefaultByServer(ctx, server.ID)
	if err != nil {
		t.Fatalf("expected a synthesized default role: %v", err)
	}
	if synthesized.Name != "@everyone" {
		t.Errorf("expected default role name @everyone, got %q", synthesized.Name)
	}
	if synthesized.Position != 0 {
		t.Errorf("synthesized default role must sit at position 0, got %d", synthesized.Position)
	}
	if !synthesized.Permissions.Has(models.PermSendMessages) {
		t.Errorf("synthesized role should carry the baseline set, got %v", synthesized.Permissions.Names())
	}

	roleIDs, err := env.members.GetRoleIDs(ctx, server.ID, joiner.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, id := range roleIDs {
		if id == synthesized.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("joiner should be assigned the synthesized default role")
	}
}

func TestRedeemRejectsInvalidCode(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	user := env.createUser(t, "user")
	if _, err := env.invites.Redeem(context.Background(), "deadbeefdeadbeef", user.ID); !errors.Is(err, pkg.ErrInvalidCode) {
		t.Errorf("expected ErrInvalidCode, got %v", err)
	}
	if _, err := env.invites.Redeem(context.Background(), "", user.ID); !errors.Is(err, pkg.ErrInvalidCode) {
		t.Errorf("expected ErrInvalidCode for empty code, got %v", err)
	}
}

func TestRedeemRejectsBannedUser(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	banned := env.createUser(t, "banned")
	server := env.createServer(t, owner.ID, "hive")

	if err := env.bans.Upsert(ctx, &models.Ban{
		ServerID:    server.ID,
		UserID:      banned.ID,
		ModeratorID: owner.ID,
		Active:      true,
	}); err != nil {
		t.Fatalf("failed to seed ban: %v", err)
	}

	if _, err := env.invites.Redeem(ctx, *server.InviteCode, banned.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("expected ErrForbidden for banned user, got %v", err)
	}
}

func TestRedeemAllowsLapsedBan(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	joiner := env.createUser(t, "joiner")
	server := env.createServer(t, owner.ID, "hive")

	expired := time.Now().Add(-time.Hour)
	if err := env.bans.Upsert(ctx, &models.Ban{
		ServerID:    server.ID,
		UserID:      joiner.ID,
		ModeratorID: owner.ID,
		ExpiresAt:   &expired,
		Active:      true,
	}); err != nil {
		t.Fatalf("failed to seed ban: %v", err)
	}

	// Süresi dolmuş yasak girişi engellemez.
	if _, err := env.invites.Redeem(ctx, *server.InviteCode, joiner.ID); err != nil {
		t.Errorf("lapsed ban should not block redeem: %v", err)
	}
}

func TestRotateAndRevoke(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	joiner := env.createUser(t, "joiner")
	server := env.createServer(t, owner.ID, "hive")
	oldCode := *server.InviteCode

	newCode, err := env.invites.Rotate(ctx, server.ID, owner.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if newCode == oldCode {
		t.Errorf("rotate should mint a fresh code")
	}

	if _, err := env.invites.Redeem(ctx, oldCode, joiner.ID); !errors.Is(err, pkg.ErrInvalidCode) {
		t.Errorf("old code should be dead after rotate, got %v", err)
	}
	if _, err := env.invites.Redeem(ctx, newCode, joiner.ID); err != nil {
		t.Errorf("new code should work: %v", err)
	}

	if err := env.invites.Revoke(ctx, server.ID, owner.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := env.invites.Preview(ctx, newCode); !errors.Is(err, pkg.ErrInvalidCode) {
		t.Errorf("revoked code should not resolve, got %v", err)
	}
}

func TestRotateRequiresManageServer(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	member := env.createUser(t, "member")
	server := env.createServer(t, owner.ID, "hive")

	if _, err := env.invites.Redeem(ctx, *server.InviteCode, member.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Baseline set CREATE_INVITES içerir ama MANAGE_SERVER içermez.
	if _, err := env.invites.Rotate(ctx, server.ID, member.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("expected ErrForbidden for baseline member, got %v", err)
	}
}

func TestPreviewWithoutJoining(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	server := env.createServer(t, owner.ID, "hive")

	preview, err := env.invites.Preview(ctx, *server.InviteCode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if preview.ServerName != "hive" || preview.MemberCount != 1 {
		t.Errorf("unexpected preview: %+v", preview)
	}
}
