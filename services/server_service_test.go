package services

import (
	"context"
	"errors"
	"testing"

	"github.com/akinalp/kovan/pkg"
)

func TestServerCreateBootstrapsEverything(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	server := env.createServer(t, owner.ID, "hive")

	if server.OwnerID != owner.ID {
		t.Errorf("expected owner %s, got %s", owner.ID, server.OwnerID)
	}
	if server.InviteCode == nil || *server.InviteCode == "" {
		t.Errorf("a fresh server should carry an invite code")
	}
	if server.MemberCount != 1 {
		t.Errorf("expected member count 1, got %d", server.MemberCount)
	}

	// Owner üyeliği, default rol ve default kanal birlikte kurulur.
	exists, err := env.members.Exists(ctx, server.ID, owner.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Errorf("owner should be a member of their own server")
	}

	defaultRole, err := env.roles.GetDefaultByServer(ctx, server.ID)
	if err != nil {
		t.Fatalf("a fresh server should have a default role: %v", err)
	}
	if defaultRole.Name != "@everyone" || defaultRole.Position != 0 {
		t.Errorf("unexpected default role: %+v", defaultRole)
	}

	var channelCount int
	if err := env.db.Conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM channels WHERE server_id = ?`, server.ID).Scan(&channelCount); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channelCount != 1 {
		t.Errorf("expected 1 bootstrap channel, got %d", channelCount)
	}
}

func TestServerDeleteIsOwnerOnly(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	member := env.createUser(t, "member")
	server := env.createServer(t, owner.ID, "hive")
	env.addMember(t, server.ID, member.ID)

	if err := env.serverSvc.Delete(ctx, server.ID, member.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner, got %v", err)
	}

	if err := env.serverSvc.Delete(ctx, server.ID, owner.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := env.servers.GetByID(ctx, server.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestServerLeave(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	member := env.createUser(t, "member")
	server := env.createServer(t, owner.ID, "hive")
	env.addMember(t, server.ID, member.ID)

	// Owner ayrılamaz; sunucuyu silmesi gerekir.
	if err := env.serverSvc.Leave(ctx, server.ID, owner.ID); !errors.Is(err, pkg.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest for the owner, got %v", err)
	}

	if err := env.serverSvc.Leave(ctx, server.ID, member.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	exists, err := env.members.Exists(ctx, server.ID, member.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Errorf("member should be gone after leaving")
	}

	got, err := env.servers.GetByID(ctx, server.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MemberCount != 1 {
		t.Errorf("expected member count 1 after leave, got %d", got.MemberCount)
	}

	// Üye olmayan biri ayrılamaz.
	if err := env.serverSvc.Leave(ctx, server.ID, member.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("expected ErrNotFound for non-member, got %v", err)
	}
}

func TestGetUserServers(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	member := env.createUser(t, "member")
	serverA := env.createServer(t, owner.ID, "hive-a")
	env.createServer(t, owner.ID, "hive-b")
	env.addMember(t, serverA.ID, member.ID)

	mine, err := env.serverSvc.GetUserServers(ctx, member.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != serverA.ID {
		t.Errorf("expected only hive-a, got %+v", mine)
	}

	owned, err := env.serverSvc.GetUserServers(ctx, owner.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(owned) != 2 {
		t.Errorf("expected 2 servers for the owner, got %d", len(owned))
	}
}
