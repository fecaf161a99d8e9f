// Package services — AccessService: yetkilendirme değerlendirme motoru.
//
// Evaluate bu motorun kalbidir: bir aktörün bir sunucudaki yetki duruşunu
// (permission set + hiyerarşi pozisyonu) hesaplar. Saf bir sorgudur —
// hiçbir state değiştirmez, eksik veya bozuk veri her zaman en
// KISITLAYICI yanıta çözülür:
//
//   - Üyelik yok → boş permission set, position 0
//   - Rolü silinmiş üye (dangling atama) → o atama yok sayılır
//   - Hiç çözülebilir rol yok → boş set, position 0
//
// Owner tüm kontrollerden muaftır: Evaluate owner için tam permission
// set ve sanal OwnerPosition döner — o yüzden çağıranların owner'ı ayrıca
// özel-durum olarak ele alması gerekmez.
package services

import (
	"context"
	"fmt"

	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/repository"
)

// AccessService, yetki değerlendirme iş mantığı interface'i.
type AccessService interface {
	// Evaluate, aktörün sunucudaki yetki duruşunu hesaplar.
	// Sunucu yoksa pkg.ErrNotFound; üye olmayan aktör hata DEĞİL,
	// boş Access döner — "yetkisi yok" bir sonuçtur, bir arıza değil.
	Evaluate(ctx context.Context, serverID, userID string) (*models.Access, error)

	// GetAccess, GetAccess operasyonunun dış yanıtını üretir:
	// duruş + çözülmüş roller + permission isimleri.
	GetAccess(ctx context.Context, serverID, userID string) (*models.AccessResponse, error)
}

type accessService struct {
	serverRepo repository.ServerRepository
	memberRepo repository.MemberRepository
	roleRepo   repository.RoleRepository
}

// NewAccessService, AccessService implementasyonunu oluşturur.
func NewAccessService(
	serverRepo repository.ServerRepository,
	memberRepo repository.MemberRepository,
	roleRepo   repository.RoleRepository,
) AccessService {
	return &accessService{
		serverRepo: serverRepo,
		memberRepo: memberRepo,
		roleRepo:   roleRepo,
	}
}

func (s *accessService) Evaluate(ctx context.Context, serverID, userID string) (*models.Access, error) {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to get server: %w", err)
	}

	// Owner kısa devresi: rol tablosuna hiç bakılmaz.
	if server.OwnerID == userID {
		return &models.Access{
			IsOwner:         true,
			Permissions:     models.AllPermissions(),
			HighestPosition: models.OwnerPosition,
		}, nil
	}

	exists, err := s.memberRepo.Exists(ctx, serverID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !exists {
		// Üye değil — en kısıtlayıcı duruş. Hata dönmeyiz: çağıran
		// "erişim yok" sonucunu kendi bağlamında yorumlar.
		return &models.Access{Permissions: models.PermissionSet{}}, nil
	}

	roles, err := s.roleRepo.GetByMember(ctx, serverID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member roles: %w", err)
	}

	perms := models.UnionPermissions(roles)

	// ADMINISTRATOR herhangi bir rolde varsa effective set tamamına
	// genişler. Has() kısayolu tek tek kontrollerde yeterlidir ama dış
	// yanıtta tam listeyi göstermek client cache'ini doğru tutar.
	if perms.Has(models.PermAdministrator) {
		perms = models.AllPermissions()
	}

	return &models.Access{
		IsOwner:         false,
		Permissions:     perms,
		HighestPosition: models.HighestPosition(roles),
	}, nil
}

func (s *accessService) GetAccess(ctx context.Context, serverID, userID string) (*models.AccessResponse, error) {
	access, err := s.Evaluate(ctx, serverID, userID)
	if err != nil {
		return nil, err
	}

	resp := &models.AccessResponse{
		IsOwner:     access.IsOwner,
		Permissions: access.Permissions.Names(),
		Roles:       []models.Role{},
	}

	if access.IsOwner {
		resp.HasAccess = true
		return resp, nil
	}

	exists, err := s.memberRepo.Exists(ctx, serverID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !exists {
		return resp, nil
	}

	resp.HasAccess = true

	roles, err := s.roleRepo.GetByMember(ctx, serverID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member roles: %w", err)
	}
	resp.Roles = roles

	return resp, nil
}
