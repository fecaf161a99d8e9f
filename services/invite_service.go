// Package services — InviteService: davet kodu ve katılım iş mantığı.
//
// Redeem kendi kendini onaran (self-healing) bir path'tir: sunucunun
// default rolü yoksa hata vermek yerine yerinde sentezler — bootstrap
// adımı atlanmış bir sunucuya katılım yine de başarılı olur. Tekrarlanan
// join idempotent'tir: INSERT OR IGNORE ikinci yazarı "zaten üye"
// sonucuna düşürür, duplicate üyelik asla oluşmaz.
package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/kovan/config"
	"github.com/akinalp/kovan/database"
	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
	"github.com/akinalp/kovan/repository"
	"github.com/akinalp/kovan/ws"
)

// InviteService, davet yönetimi iş mantığı interface'i.
type InviteService interface {
	// Redeem, davet kodunu kullanarak kullanıcıyı sunucuya katar.
	// Zaten üye olmak hata değildir — AlreadyMember=true ile başarı döner.
	Redeem(ctx context.Context, code, userID string) (*models.RedeemResult, error)

	// Preview, kodun işaret ettiği sunucunun auth'suz ön izlemesi.
	Preview(ctx context.Context, code string) (*models.InvitePreview, error)

	// Rotate, sunucunun davet kodunu yenisiyle değiştirir (eski kod ölür).
	Rotate(ctx context.Context, serverID, actorID string) (string, error)

	// Revoke, davet kodunu iptal eder — sunucu davete kapanır.
	Revoke(ctx context.Context, serverID, actorID string) error
}

type inviteService struct {
	db         *sql.DB
	serverRepo repository.ServerRepository
	memberRepo repository.MemberRepository
	roleRepo   repository.RoleRepository
	banRepo    repository.BanRepository
	access     AccessService
	bootstrap  config.BootstrapConfig
	hub        ws.EventPublisher
}

// NewInviteService, InviteService implementasyonunu oluşturur.
// bootstrap config'i default rol sentezi için gerekir — rol adı ve
// baseline permission seti deployment bazında değişebilir.
func NewInviteService(
	db *sql.DB,
	serverRepo repository.ServerRepository,
	memberRepo repository.MemberRepository,
	roleRepo repository.RoleRepository,
	banRepo repository.BanRepository,
	access AccessService,
	bootstrap config.BootstrapConfig,
	hub ws.EventPublisher,
) InviteService {
	return &inviteService{
		db:         db,
		serverRepo: serverRepo,
		memberRepo: memberRepo,
		roleRepo:   roleRepo,
		banRepo:    banRepo,
		access:     access,
		bootstrap:  bootstrap,
		hub:        hub,
	}
}

func (s *inviteService) Redeem(ctx context.Context, code, userID string) (*models.RedeemResult, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty code", pkg.ErrInvalidCode)
	}

	server, err := s.serverRepo.GetByInviteCode(ctx, code)
	if errors.Is(err, pkg.ErrNotFound) {
		// Kod hiçbir sunucuya çözülmüyor — geçersiz veya revoke edilmiş.
		return nil, pkg.ErrInvalidCode
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve invite code: %w", err)
	}

	// Banlı kullanıcı davetle geri dönemez.
	banned, err := s.banRepo.IsBanned(ctx, server.ID, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to check ban: %w", err)
	}
	if banned {
		return nil, fmt.Errorf("%w: you are banned from this server", pkg.ErrForbidden)
	}

	result := &models.RedeemResult{ServerID: server.ID, ServerName: server.Name}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		members := repository.NewSQLiteMemberRepo(tx)
		roles := repository.NewSQLiteRoleRepo(tx)
		servers := repository.NewSQLiteServerRepo(tx)
		channels := repository.NewSQLiteChannelRepo(tx)

		// Default rol yoksa sentezle — join self-healing'dir.
		defaultRole, err := s.ensureDefaultRole(ctx, roles, server.ID)
		if err != nil {
			return err
		}

		// INSERT OR IGNORE: eşzamanlı iki redeem'den ikincisi
		// inserted=false görür — duplicate üyelik imkânsız.
		inserted, err := members.Add(ctx, &models.Member{
			ServerID: server.ID,
			UserID:   userID,
		})
		if err != nil {
			return err
		}
		if !inserted {
			result.AlreadyMember = true
			return nil
		}

		if err := members.AssignRole(ctx, server.ID, userID, defaultRole.ID); err != nil {
			return err
		}

		if err := servers.AdjustMemberCount(ctx, server.ID, 1); err != nil {
			return err
		}

		// Sıfır kanallı sunucuya katılım default kanalı da bootstrap'ler.
		count, err := channels.CountByServer(ctx, server.ID)
		if err != nil {
			return err
		}
		if count == 0 {
			if err := channels.Create(ctx, &models.Channel{
				ID:       uuid.NewString(),
				ServerID: server.ID,
				Name:     s.bootstrap.DefaultChannelName,
				Position: 0,
			}); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyMember {
		s.hub.BroadcastToAll(ws.Event{Op: ws.OpMemberJoin, Data: ws.MemberEventData{
			ServerID: server.ID,
			UserID:   userID,
		}})
		// Katılan kullanıcının client'ı sunucuyu listesine eklesin.
		s.hub.BroadcastToUser(userID, ws.Event{Op: ws.OpServerCreate, Data: ws.ServerEventData{
			ServerID: server.ID,
			Name:     server.Name,
		}})

		log.Printf("[invite] redeemed: server=%s user=%s", server.ID, userID)
	}

	return result, nil
}

// ensureDefaultRole, sunucunun default rolünü döner; yoksa baseline
// permission seti ile position 0'da oluşturur.
//
// Partial unique index (is_default=1) eşzamanlı iki sentezi DB seviyesinde
// teke indirir: kaybeden taraf constraint hatası alır ve mevcut rolü
// yeniden okur — idempotent retry.
func (s *inviteService) ensureDefaultRole(ctx context.Context, roles repository.RoleRepository, serverID string) (*models.Role, error) {
	role, err := roles.GetDefaultByServer(ctx, serverID)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, pkg.ErrNotFound) {
		return nil, fmt.Errorf("failed to get default role: %w", err)
	}

	perms, err := models.PermissionSetFromStrings(s.bootstrap.BaselinePermissions)
	if err != nil {
		return nil, fmt.Errorf("invalid baseline permissions config: %w", err)
	}

	synthesized := &models.Role{
		ID:          uuid.NewString(),
		ServerID:    serverID,
		Name:        s.bootstrap.DefaultRoleName,
		Color:       "#99aab5",
		Position:    0,
		Permissions: perms,
		IsDefault:   true,
	}

	if createErr := roles.Create(ctx, synthesized); createErr != nil {
		// Yarışı kaybetmiş olabiliriz — diğer taraf rolü az önce yarattı.
		if role, err := roles.GetDefaultByServer(ctx, serverID); err == nil {
			return role, nil
		}
		return nil, fmt.Errorf("failed to create default role: %w", createErr)
	}

	log.Printf("[invite] synthesized default role for server=%s", serverID)
	return synthesized, nil
}

func (s *inviteService) Preview(ctx context.Context, code string) (*models.InvitePreview, error) {
	server, err := s.serverRepo.GetByInviteCode(ctx, code)
	if errors.Is(err, pkg.ErrNotFound) {
		return nil, pkg.ErrInvalidCode
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve invite code: %w", err)
	}

	return &models.InvitePreview{
		ServerName:  server.Name,
		MemberCount: server.MemberCount,
	}, nil
}

func (s *inviteService) Rotate(ctx context.Context, serverID, actorID string) (string, error) {
	if err := s.requireInviteManagement(ctx, serverID, actorID); err != nil {
		return "", err
	}

	code, err := GenerateInviteCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}

	if err := s.serverRepo.SetInviteCode(ctx, serverID, &code); err != nil {
		return "", fmt.Errorf("failed to set invite code: %w", err)
	}

	log.Printf("[invite] rotated: server=%s actor=%s", serverID, actorID)
	return code, nil
}

func (s *inviteService) Revoke(ctx context.Context, serverID, actorID string) error {
	if err := s.requireInviteManagement(ctx, serverID, actorID); err != nil {
		return err
	}

	if err := s.serverRepo.SetInviteCode(ctx, serverID, nil); err != nil {
		return fmt.Errorf("failed to revoke invite code: %w", err)
	}

	log.Printf("[invite] revoked: server=%s actor=%s", serverID, actorID)
	return nil
}

// requireInviteManagement, rotate/revoke guard'ı: MANAGE_SERVER gerekir —
// davet kodunu değiştirmek CREATE_INVITES'tan daha geniş bir yetkidir,
// eski kodu taşıyan herkesi etkiler.
func (s *inviteService) requireInviteManagement(ctx context.Context, serverID, actorID string) error {
	access, err := s.access.Evaluate(ctx, serverID, actorID)
	if err != nil {
		return fmt.Errorf("failed to evaluate access: %w", err)
	}
	if !access.Has(models.PermManageServer) {
		return fmt.Errorf("%w: missing %s permission", pkg.ErrForbidden, models.PermManageServer)
	}
	return nil
}

// GenerateInviteCode, 8 byte'lık kriptografik rastgele koddan 16 karakterlik
// hex token üretir. Kod tüm sunucular genelinde benzersizdir — UNIQUE
// constraint olası (astronomik düşük ihtimalli) çakışmayı yakalar.
func GenerateInviteCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
