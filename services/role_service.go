// Package services — RoleService: rol yönetimi iş mantığı.
//
// Hiyerarşi kuralı tüm mutating operasyonlarda geçerlidir: aktör sadece
// kendi en yüksek position'ının ALTINDAKI rolleri yönetebilir. Owner
// muaftır (OwnerPosition her şeyin üstünde). Default rol silinemez —
// üyelik modelinin temel taşıdır.
package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
	"github.com/akinalp/kovan/repository"
	"github.com/akinalp/kovan/ws"
)

// RoleService, rol yönetimi iş mantığı interface'i.
type RoleService interface {
	GetAll(ctx context.Context, serverID string) ([]models.Role, error)
	Create(ctx context.Context, serverID, actorID string, req *models.CreateRoleRequest) (*models.Role, error)
	Update(ctx context.Context, serverID, actorID, roleID string, req *models.UpdateRoleRequest) (*models.Role, error)
	Delete(ctx context.Context, serverID, actorID, roleID string) error
}

type roleService struct {
	roleRepo repository.RoleRepository
	access   AccessService
	hub      ws.EventPublisher
}

// NewRoleService, RoleService implementasyonunu oluşturur.
func NewRoleService(roleRepo repository.RoleRepository, access AccessService, hub ws.EventPublisher) RoleService {
	return &roleService{
		roleRepo: roleRepo,
		access:   access,
		hub:      hub,
	}
}

func (s *roleService) GetAll(ctx context.Context, serverID string) ([]models.Role, error) {
	return s.roleRepo.GetAllByServer(ctx, serverID)
}

func (s *roleService) Create(ctx context.Context, serverID, actorID string, req *models.CreateRoleRequest) (*models.Role, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	access, err := s.requireManageRoles(ctx, serverID, actorID)
	if err != nil {
		return nil, err
	}

	// Aktör kendisinde olmayan bir yetkiyi role veremez — privilege
	// escalation kapısı (owner muaf, zaten her yetkiyi taşır).
	if !access.IsOwner {
		for perm := range req.Permissions {
			if !access.Has(perm) {
				return nil, fmt.Errorf("%w: cannot grant %s, you do not hold it", pkg.ErrForbidden, perm)
			}
		}
	}

	maxPos, err := s.roleRepo.GetMaxPosition(ctx, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to get max position: %w", err)
	}

	newPos := maxPos + 1
	// Yeni rol aktörün kendi seviyesinin üstüne çıkamaz.
	if !access.IsOwner && newPos >= access.HighestPosition {
		newPos = access.HighestPosition - 1
		if newPos < 1 {
			return nil, fmt.Errorf("%w: no room below your highest role", pkg.ErrHierarchy)
		}
	}

	perms := req.Permissions
	if perms == nil {
		perms = models.PermissionSet{}
	}

	role := &models.Role{
		ID:          uuid.NewString(),
		ServerID:    serverID,
		Name:        req.Name,
		Color:       req.Color,
		Position:    newPos,
		Permissions: perms,
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpRoleCreate, Data: ws.RoleEventData{
		ServerID: serverID,
		RoleID:   role.ID,
	}})

	log.Printf("[role] created: server=%s role=%s actor=%s", serverID, role.ID, actorID)
	return role, nil
}

func (s *roleService) Update(ctx context.Context, serverID, actorID, roleID string, req *models.UpdateRoleRequest) (*models.Role, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	access, err := s.requireManageRoles(ctx, serverID, actorID)
	if err != nil {
		return nil, err
	}

	role, err := s.getServerRole(ctx, serverID, roleID)
	if err != nil {
		return nil, err
	}

	// Kendi seviyene eşit veya üstündeki rolü düzenleyemezsin.
	if !access.IsOwner && role.Position >= access.HighestPosition {
		return nil, fmt.Errorf("%w: cannot modify a role at or above your highest role", pkg.ErrHierarchy)
	}

	if req.Name != nil {
		// Default rolün adı kanoniktir, değiştirilemez.
		if role.IsDefault {
			return nil, fmt.Errorf("%w: the default role cannot be renamed", pkg.ErrBadRequest)
		}
		role.Name = *req.Name
	}
	if req.Color != nil {
		role.Color = *req.Color
	}
	if req.Permissions != nil {
		if !access.IsOwner {
			for perm := range *req.Permissions {
				if !access.Has(perm) {
					return nil, fmt.Errorf("%w: cannot grant %s, you do not hold it", pkg.ErrForbidden, perm)
				}
			}
		}
		role.Permissions = *req.Permissions
	}

	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpRoleUpdate, Data: ws.RoleEventData{
		ServerID: serverID,
		RoleID:   role.ID,
	}})

	log.Printf("[role] updated: server=%s role=%s actor=%s", serverID, roleID, actorID)
	return role, nil
}

func (s *roleService) Delete(ctx context.Context, serverID, actorID, roleID string) error {
	access, err := s.requireManageRoles(ctx, serverID, actorID)
	if err != nil {
		return err
	}

	role, err := s.getServerRole(ctx, serverID, roleID)
	if err != nil {
		return err
	}

	if role.IsDefault {
		return fmt.Errorf("%w: the default role cannot be deleted", pkg.ErrBadRequest)
	}
	if !access.IsOwner && role.Position >= access.HighestPosition {
		return fmt.Errorf("%w: cannot delete a role at or above your highest role", pkg.ErrHierarchy)
	}

	// member_roles'taki atamalar FK ile bağlı değildir — dangling kalır
	// ve rol çözümlemesi onları doğal olarak atlar. Kasıtlı: silme ucuz,
	// tutarlılık okuma anında sağlanır.
	if err := s.roleRepo.Delete(ctx, roleID); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpRoleDelete, Data: ws.RoleEventData{
		ServerID: serverID,
		RoleID:   roleID,
	}})

	log.Printf("[role] deleted: server=%s role=%s actor=%s", serverID, roleID, actorID)
	return nil
}

func (s *roleService) requireManageRoles(ctx context.Context, serverID, actorID string) (*models.Access, error) {
	access, err := s.access.Evaluate(ctx, serverID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate access: %w", err)
	}
	if !access.Has(models.PermManageRoles) {
		return nil, fmt.Errorf("%w: missing %s permission", pkg.ErrForbidden, models.PermManageRoles)
	}
	return access, nil
}

// getServerRole, rolü çözer ve verilen sunucuya ait olduğunu doğrular.
// Başka sunucunun rol ID'si ile oynamak ErrNotFound'a düşer.
func (s *roleService) getServerRole(ctx context.Context, serverID, roleID string) (*models.Role, error) {
	role, err := s.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	if role.ServerID != serverID {
		return nil, fmt.Errorf("%w: role does not belong to this server", pkg.ErrNotFound)
	}
	return role, nil
}
