package services

import (
	"context"
	"errors"
	"testing"

	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
)

func TestRoleCreateByOwner(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	server := env.createServer(t, owner.ID, "hive")

	role, err := env.roleSvc.Create(ctx, server.ID, owner.ID, &models.CreateRoleRequest{
		Name:        "mods",
		Color:       "#ff0000",
		Permissions: models.NewPermissionSet(models.PermMuteMembers, models.PermKickMembers),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role.Position < 1 {
		t.Errorf("new role should sit above the default role, got position %d", role.Position)
	}
	if role.IsDefault {
		t.Errorf("created roles are never default")
	}
}

func TestRoleCreateCannotGrantUnheldPermission(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	manager := env.createUser(t, "manager")
	server := env.createServer(t, owner.ID, "hive")

	managerRole := env.createRole(t, server.ID, 5, models.PermManageRoles, models.PermMuteMembers)
	env.addMember(t, server.ID, manager.ID, managerRole.ID)

	// Privilege escalation kapısı: taşımadığın yetkiyi dağıtamazsın.
	_, err := env.roleSvc.Create(ctx, server.ID, manager.ID, &models.CreateRoleRequest{
		Name:        "enforcers",
		Permissions: models.NewPermissionSet(models.PermBanMembers),
	})
	if !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestRoleCreateCappedBelowActor(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	manager := env.createUser(t, "manager")
	server := env.createServer(t, owner.ID, "hive")

	managerRole := env.createRole(t, server.ID, 5, models.PermManageRoles)
	env.createRole(t, server.ID, 8, models.PermBanMembers) // başkasının üst rolü
	env.addMember(t, server.ID, manager.ID, managerRole.ID)

	role, err := env.roleSvc.Create(ctx, server.ID, manager.ID, &models.CreateRoleRequest{Name: "helpers"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role.Position >= 5 {
		t.Errorf("new role must stay below the actor's highest role, got position %d", role.Position)
	}
}

func TestDefaultRoleIsProtected(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	server := env.createServer(t, owner.ID, "hive")

	defaultRole, err := env.roles.GetDefaultByServer(ctx, server.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	name := "everyone-else"
	if _, err := env.roleSvc.Update(ctx, server.ID, owner.ID, defaultRole.ID,
		&models.UpdateRoleRequest{Name: &name}); !errors.Is(err, pkg.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest renaming the default role, got %v", err)
	}

	if err := env.roleSvc.Delete(ctx, server.ID, owner.ID, defaultRole.ID); !errors.Is(err, pkg.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest deleting the default role, got %v", err)
	}

	// Default rolün yetkileri güncellenebilir (ad değil).
	perms := models.NewPermissionSet(models.PermViewChannels)
	if _, err := env.roleSvc.Update(ctx, server.ID, owner.ID, defaultRole.ID,
		&models.UpdateRoleRequest{Permissions: &perms}); err != nil {
		t.Errorf("updating default role permissions should work: %v", err)
	}
}

func TestRoleHierarchyGuardsModification(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	manager := env.createUser(t, "manager")
	server := env.createServer(t, owner.ID, "hive")

	managerRole := env.createRole(t, server.ID, 5, models.PermManageRoles)
	above := env.createRole(t, server.ID, 8, models.PermBanMembers)
	env.addMember(t, server.ID, manager.ID, managerRole.ID)

	color := "#00ff00"
	if _, err := env.roleSvc.Update(ctx, server.ID, manager.ID, above.ID,
		&models.UpdateRoleRequest{Color: &color}); !errors.Is(err, pkg.ErrHierarchy) {
		t.Errorf("expected ErrHierarchy editing a higher role, got %v", err)
	}
	if err := env.roleSvc.Delete(ctx, server.ID, manager.ID, above.ID); !errors.Is(err, pkg.ErrHierarchy) {
		t.Errorf("expected ErrHierarchy deleting a higher role, got %v", err)
	}
}

func TestRoleCrossServerAccessDenied(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	serverA := env.createServer(t, owner.ID, "hive-a")
	serverB := env.createServer(t, owner.ID, "hive-b")

	roleB := env.createRole(t, serverB.ID, 3, models.PermSendMessages)

	// Başka sunucunun rol ID'si bu sunucu altında çözülmez.
	if err := env.roleSvc.Delete(ctx, serverA.ID, owner.ID, roleB.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a foreign role id, got %v", err)
	}
}
