// Package services — MemberService: üye listesi ve üye düzenleme iş mantığı.
//
// Rol atama hiyerarşi kuralına tabidir: aktör kendi en yüksek
// position'ına eşit veya üstündeki rolleri atayamaz/çıkaramaz.
// Nickname değişikliği ya kendi hesabın için (CHANGE_NICKNAME) ya da
// başkası için (MANAGE_NICKNAMES) yetki ister.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
	"github.com/akinalp/kovan/repository"
	"github.com/akinalp/kovan/ws"
)

// MemberService, üye yönetimi iş mantığı interface'i.
type MemberService interface {
	// GetAll, sunucunun tüm üyelerini rolleri ve effective permission
	// set'leriyle birlikte döner.
	GetAll(ctx context.Context, serverID string) ([]models.MemberWithRoles, error)

	// GetByID, tek bir üyeyi rolleriyle döner.
	GetByID(ctx context.Context, serverID, userID string) (*models.MemberWithRoles, error)

	// UpdateNickname, üyenin takma adını günceller (nil → temizle).
	UpdateNickname(ctx context.Context, serverID, actorID, targetID string, req *models.UpdateNicknameRequest) error

	// ModifyRoles, üyenin rol setini verilen listeye eşitler (diff-based).
	ModifyRoles(ctx context.Context, serverID, actorID, targetID string, req *models.RoleModifyRequest) (*models.MemberWithRoles, error)
}

type memberService struct {
	userRepo   repository.UserRepository
	memberRepo repository.MemberRepository
	roleRepo   repository.RoleRepository
	serverRepo repository.ServerRepository
	access     AccessService
	hub        ws.EventPublisher
}

// NewMemberService, MemberService implementasyonunu oluşturur.
func NewMemberService(
	userRepo repository.UserRepository,
	memberRepo repository.MemberRepository,
	roleRepo repository.RoleRepository,
	serverRepo repository.ServerRepository,
	access AccessService,
	hub ws.EventPublisher,
) MemberService {
	return &memberService{
		userRepo:   userRepo,
		memberRepo: memberRepo,
		roleRepo:   roleRepo,
		serverRepo: serverRepo,
		access:     access,
		hub:        hub,
	}
}

func (s *memberService) GetAll(ctx context.Context, serverID string) ([]models.MemberWithRoles, error) {
	members, err := s.memberRepo.ListByServer(ctx, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	result := make([]models.MemberWithRoles, 0, len(members))
	for i := range members {
		view, err := s.buildMemberView(ctx, &members[i])
		if err != nil {
			// Kullanıcı kaydı silinmiş üyelik — "treat as absent",
			// listeyi düşürmek yerine o satırı atla.
			if errors.Is(err, pkg.ErrNotFound) {
				continue
			}
			return nil, err
		}
		result = append(result, *view)
	}

	return result, nil
}

func (s *memberService) GetByID(ctx context.Context, serverID, userID string) (*models.MemberWithRoles, error) {
	member, err := s.memberRepo.Get(ctx, serverID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return s.buildMemberView(ctx, member)
}

func (s *memberService) UpdateNickname(ctx context.Context, serverID, actorID, targetID string, req *models.UpdateNicknameRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	access, err := s.access.Evaluate(ctx, serverID, actorID)
	if err != nil {
		return fmt.Errorf("failed to evaluate access: %w", err)
	}

	// Kendi nickname'in için CHANGE_NICKNAME, başkasınınki için
	// MANAGE_NICKNAMES gerekir.
	required := models.PermChangeNickname
	if actorID != targetID {
		required = models.PermManageNicknames
	}
	if !access.Has(required) {
		return fmt.Errorf("%w: missing %s permission", pkg.ErrForbidden, required)
	}

	exists, err := s.memberRepo.Exists(ctx, serverID, targetID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: target is not a member of this server", pkg.ErrNotFound)
	}

	if err := s.memberRepo.UpdateNickname(ctx, serverID, targetID, req.Nickname); err != nil {
		return fmt.Errorf("failed to update nickname: %w", err)
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpMemberUpdate, Data: ws.MemberEventData{
		ServerID: serverID,
		UserID:   targetID,
	}})

	return nil
}

func (s *memberService) ModifyRoles(ctx context.Context, serverID, actorID, targetID string, req *models.RoleModifyRequest) (*models.MemberWithRoles, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	access, err := s.access.Evaluate(ctx, serverID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate access: %w", err)
	}
	if !access.Has(models.PermManageRoles) {
		return nil, fmt.Errorf("%w: missing %s permission", pkg.ErrForbidden, models.PermManageRoles)
	}

	member, err := s.memberRepo.Get(ctx, serverID, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	// Hedef rol listesi doğrulanır: hepsi bu sunucuya ait olmalı; default
	// rol listede olmak zorunda (her üye taşır, çıkarılamaz).
	targetSet := make(map[string]bool, len(req.RoleIDs))
	defaultIncluded := false
	for _, roleID := range req.RoleIDs {
		role, err := s.roleRepo.GetByID(ctx, roleID)
		if err != nil {
			return nil, fmt.Errorf("%w: role %s does not exist", pkg.ErrBadRequest, roleID)
		}
		if role.ServerID != serverID {
			return nil, fmt.Errorf("%w: role %s does not belong to this server", pkg.ErrBadRequest, roleID)
		}
		if role.IsDefault {
			defaultIncluded = true
		}
		// Hiyerarşi: atanan rol aktörün seviyesinin altında olmalı.
		if !access.IsOwner && role.Position >= access.HighestPosition {
			return nil, fmt.Errorf("%w: cannot assign a role at or above your highest role", pkg.ErrHierarchy)
		}
		targetSet[roleID] = true
	}
	if !defaultIncluded {
		return nil, fmt.Errorf("%w: the default role cannot be removed from a member", pkg.ErrBadRequest)
	}

	current, err := s.memberRepo.GetRoleIDs(ctx, serverID, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member roles: %w", err)
	}
	currentSet := make(map[string]bool, len(current))
	for _, id := range current {
		currentSet[id] = true
	}

	// Diff: eksikler eklenir, fazlalar çıkarılır. Çıkarılan rol aktörün
	// seviyesinin üstündeyse işlem reddedilir — üstünün rolünü sökemezsin.
	for roleID := range targetSet {
		if !currentSet[roleID] {
			if err := s.memberRepo.AssignRole(ctx, serverID, targetID, roleID); err != nil {
				return nil, fmt.Errorf("failed to assign role: %w", err)
			}
		}
	}
	for _, roleID := range current {
		if targetSet[roleID] {
			continue
		}
		role, err := s.roleRepo.GetByID(ctx, roleID)
		if err == nil && !access.IsOwner && role.Position >= access.HighestPosition {
			return nil, fmt.Errorf("%w: cannot remove a role at or above your highest role", pkg.ErrHierarchy)
		}
		// Rol artık çözülmüyorsa (dangling atama) çıkarmak serbest —
		// temizlik sayılır.
		if err := s.memberRepo.RemoveRole(ctx, serverID, targetID, roleID); err != nil {
			return nil, fmt.Errorf("failed to remove role: %w", err)
		}
	}

	view, err := s.buildMemberView(ctx, member)
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpMemberUpdate, Data: ws.MemberEventData{
		ServerID: serverID,
		UserID:   targetID,
	}})

	log.Printf("[member] roles modified: server=%s target=%s actor=%s", serverID, targetID, actorID)
	return view, nil
}

// buildMemberView, Member → MemberWithRoles dönüşümünü tek noktada yapar.
func (s *memberService) buildMemberView(ctx context.Context, member *models.Member) (*models.MemberWithRoles, error) {
	user, err := s.userRepo.GetByID(ctx, member.UserID)
	if err != nil {
		return nil, err
	}

	roles, err := s.roleRepo.GetByMember(ctx, member.ServerID, member.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member roles: %w", err)
	}

	view := models.ToMemberWithRoles(member, user.Username, roles)
	return &view, nil
}
