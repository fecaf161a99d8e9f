package services

// Test ortamı: gerçek SQLite (t.TempDir içinde) + gerçek repository'ler.
// Service davranışlarının çoğu transaction ve unique index semantiğine
// yaslandığı için mock repository yerine gerçek DB kullanıyoruz.

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/akinalp/kovan/config"
	"github.com/akinalp/kovan/database"
	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/repository"
	"github.com/akinalp/kovan/ws"
)

// nopPublisher, WS broadcast'i test dışı bırakan no-op EventPublisher.
type nopPublisher struct{}

func (nopPublisher) BroadcastToAll(ws.Event)          {}
func (nopPublisher) BroadcastToUser(string, ws.Event) {}
func (nopPublisher) GetOnlineUserIDs() []string       { return nil }

type testEnv struct {
	db      *database.DB
	users   repository.UserRepository
	servers repository.ServerRepository
	roles   repository.RoleRepository
	members repository.MemberRepository
	mods    repository.ModerationRepository
	bans    repository.BanRepository

	bootstrap config.BootstrapConfig

	access     AccessService
	moderation ModerationService
	invites    InviteService
	repair     RepairService
	serverSvc  ServerService
	roleSvc    RoleService
	memberSvc  MemberService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		t.Fatalf("failed to open embedded migrations: %v", err)
	}

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrationsFS)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		db:      db,
		users:   repository.NewSQLiteUserRepo(db.Conn),
		servers: repository.NewSQLiteServerRepo(db.Conn),
		roles:   repository.NewSQLiteRoleRepo(db.Conn),
		members: repository.NewSQLiteMemberRepo(db.Conn),
		mods:    repository.NewSQLiteModerationRepo(db.Conn),
		bans:    repository.NewSQLiteBanRepo(db.Conn),
		bootstrap: config.BootstrapConfig{
			DefaultRoleName:     "@everyone",
			BaselinePermissions: []string{"VIEW_CHANNELS", "READ_MESSAGES", "SEND_MESSAGES", "CREATE_INVITES", "CHANGE_NICKNAME"},
			DefaultChannelName:  "general",
		},
	}

	hub := nopPublisher{}
	env.access = NewAccessService(env.servers, env.members, env.roles)
	env.moderation = NewModerationService(db.Conn, env.servers, env.members, env.mods, env.bans, env.access, hub)
	env.invites = NewInviteService(db.Conn, env.servers, env.members, env.roles, env.bans, env.access, env.bootstrap, hub)
	env.repair = NewRepairService(db.Conn, env.servers, env.members, env.roles, env.bootstrap)
	env.serverSvc = NewServerService(db.Conn, env.servers, env.members, env.bootstrap, hub)
	env.roleSvc = NewRoleService(env.roles, env.access, hub)
	env.memberSvc = NewMemberService(env.users, env.members, env.roles, env.servers, env.access, hub)

	return env
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: "not-a-real-hash",
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %q: %v", username, err)
	}
	return user
}

// createServer, server servisinin tam bootstrap akışıyla sunucu kurar:
// owner üyeliği, default rol ve default kanal dahil.
func (e *testEnv) createServer(t *testing.T, ownerID, name string) *models.Server {
	t.Helper()
	server, err := e.serverSvc.Create(context.Background(), ownerID, &models.CreateServerRequest{Name: name})
	if err != nil {
		t.Fatalf("failed to create server %q: %v", name, err)
	}
	return server
}

// createRole, hiyerarşi kurulumu için rolü doğrudan repository'den yazar.
func (e *testEnv) createRole(t *testing.T, serverID string, position int, perms ...models.Permission) *models.Role {
	t.Helper()
	role := &models.Role{
		ID:          uuid.NewString(),
		ServerID:    serverID,
		Name:        "role-" + uuid.NewString()[:8],
		Color:       "#ffffff",
		Position:    position,
		Permissions: models.NewPermissionSet(perms...),
	}
	if err := e.roles.Create(context.Background(), role); err != nil {
		t.Fatalf("failed to create role: %v", err)
	}
	return role
}

// addMember, kullanıcıyı sunucuya üye yapar ve verilen rolleri atar.
// member_count sayacını da günceller ki diagnose drift görmesin.
func (e *testEnv) addMember(t *testing.T, serverID, userID string, roleIDs ...string) {
	t.Helper()
	ctx := context.Background()
	inserted, err := e.members.Add(ctx, &models.Member{ServerID: serverID, UserID: userID})
	if err != nil {
		t.Fatalf("failed to add member: %v", err)
	}
	if inserted {
		if err := e.servers.AdjustMemberCount(ctx, serverID, 1); err != nil {
			t.Fatalf("failed to adjust member count: %v", err)
		}
	}
	for _, roleID := range roleIDs {
		if err := e.members.AssignRole(ctx, serverID, userID, roleID); err != nil {
			t.Fatalf("failed to assign role: %v", err)
		}
	}
}
