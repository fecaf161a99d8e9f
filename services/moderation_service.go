// Package services — ModerationService: moderasyon motoru iş mantığı.
//
// Apply, üç aksiyon türünü (mute/kick/ban) tek kontratta toplar.
// Ön koşullar SIRALI kontrol edilir — ilk başarısızlık kazanır:
//
//  1. Hedef sunucunun üyesi olmalı (ErrNotFound)
//  2. Hedef sunucu sahibi olmamalı (ErrHierarchy — owner hiç kimse
//     tarafından modere edilemez, ADMINISTRATOR taşıyan biri tarafından bile)
//  3. Aktör türün gerektirdiği capability'yi taşımalı (ErrForbidden)
//  4. Aktör owner değilse position'ı hedefinkinden KESİN büyük olmalı
//     (ErrHierarchy — denk veya üst modere edilemez)
//
// Etkiler database.WithTx içinde atomiktir: audit log + üyelik + ban
// projeksiyonu ya birlikte görünür ya hiç görünmez. Tx içinde üyelik
// YENİDEN kontrol edilir — ön koşul anındaki snapshot ile yazma arasında
// hedef ayrılmış olabilir.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/kovan/database"
	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
	"github.com/akinalp/kovan/repository"
	"github.com/akinalp/kovan/ws"
)

// ModerationService, moderasyon motoru interface'i.
type ModerationService interface {
	// Apply, moderasyon aksiyonunu uygular (mute/kick/ban).
	Apply(ctx context.Context, serverID, actorID string, req *models.ModerationRequest) (*models.ModerationRecord, error)

	// Unmute, aktif susturmayı kaldırır. Aktif susturma yoksa no-op.
	Unmute(ctx context.Context, serverID, actorID, targetID string) error

	// Unban, aktif yasağı kaldırır. Aktif yasak yoksa no-op.
	Unban(ctx context.Context, serverID, actorID, targetID string) error

	// IsMuted, hedefin verilen anda yürürlükte susturması var mı.
	IsMuted(ctx context.Context, serverID, userID string, now time.Time) (bool, error)

	// IsBanned, hedefin verilen anda yürürlükte yasağı var mı.
	IsBanned(ctx context.Context, serverID, userID string, now time.Time) (bool, error)

	// ListLog, audit log'u sayfalar. Yalnızca owner veya herhangi bir
	// moderasyon capability'si taşıyanlar okuyabilir.
	ListLog(ctx context.Context, serverID, requesterID, filterUserID string, limit, offset int) (*models.ModerationLogPage, error)

	// ListBans, aktif yasak listesini döner (moderasyon yetkisi gerekir).
	ListBans(ctx context.Context, serverID, requesterID string) ([]models.Ban, error)
}

type moderationService struct {
	db         *sql.DB
	serverRepo repository.ServerRepository
	memberRepo repository.MemberRepository
	modRepo    repository.ModerationRepository
	banRepo    repository.BanRepository
	access     AccessService
	hub        ws.EventPublisher
}

// NewModerationService, ModerationService implementasyonunu oluşturur.
//
// db doğrudan alınır çünkü Apply'ın üçlü yazımı WithTx gerektirir —
// tx içinde repository'ler tx-bound olarak yeniden kurulur.
func NewModerationService(
	db *sql.DB,
	serverRepo repository.ServerRepository,
	memberRepo repository.MemberRepository,
	modRepo repository.ModerationRepository,
	banRepo repository.BanRepository,
	access AccessService,
	hub ws.EventPublisher,
) ModerationService {
	return &moderationService{
		db:         db,
		serverRepo: serverRepo,
		memberRepo: memberRepo,
		modRepo:    modRepo,
		banRepo:    banRepo,
		access:     access,
		hub:        hub,
	}
}

func (s *moderationService) Apply(ctx context.Context, serverID, actorID string, req *models.ModerationRequest) (*models.ModerationRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}
	if req.TargetUserID == actorID {
		return nil, fmt.Errorf("%w: cannot moderate yourself", pkg.ErrBadRequest)
	}

	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to get server: %w", err)
	}

	// Ön koşul 1: hedef üye olmalı. Tek istisna tekrar ban: ilk ban
	// üyeliği düşürdüğü için, süresi dolmamış yasağı olan hedefe ikinci
	// ban çağrısı mevcut yasağı tazeler.
	isMember, err := s.memberRepo.Exists(ctx, serverID, req.TargetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check target membership: %w", err)
	}
	if !isMember {
		banRefresh := false
		if req.Action == models.ModerationBan {
			banned, banErr := s.banRepo.IsBanned(ctx, serverID, req.TargetUserID, time.Now())
			if banErr != nil {
				return nil, fmt.Errorf("failed to check ban: %w", banErr)
			}
			banRefresh = banned
		}
		if !banRefresh {
			return nil, fmt.Errorf("%w: target is not a member of this server", pkg.ErrNotFound)
		}
	}

	// Ön koşul 2: owner dokunulmazdır.
	if req.TargetUserID == server.OwnerID {
		return nil, fmt.Errorf("%w: the server owner cannot be moderated", pkg.ErrHierarchy)
	}

	// Ön koşul 3: capability kontrolü (evaluator üzerinden).
	actorAccess, err := s.access.Evaluate(ctx, serverID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate actor access: %w", err)
	}
	if !actorAccess.Has(req.Action.RequiredPermission()) {
		return nil, fmt.Errorf("%w: missing %s permission", pkg.ErrForbidden, req.Action.RequiredPermission())
	}

	// Ön koşul 4: strict hiyerarşi (owner muaf).
	targetAccess, err := s.access.Evaluate(ctx, serverID, req.TargetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate target access: %w", err)
	}
	if !actorAccess.Outranks(targetAccess) {
		return nil, fmt.Errorf("%w: target has an equal or higher role", pkg.ErrHierarchy)
	}

	var expiresAt *time.Time
	if d := req.Duration(); d != nil {
		t := time.Now().Add(*d)
		expiresAt = &t
	}

	record := &models.ModerationRecord{
		ID:          uuid.NewString(),
		ServerID:    serverID,
		UserID:      req.TargetUserID,
		ModeratorID: actorID,
		Kind:        req.Action,
		Reason:      req.Reason,
		ExpiresAt:   expiresAt,
		// Kick anlık bir olaydır — kaydı hiçbir zaman aktif olmaz.
		Active: req.Action != models.ModerationKick,
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		members := repository.NewSQLiteMemberRepo(tx)
		mods := repository.NewSQLiteModerationRepo(tx)
		bans := repository.NewSQLiteBanRepo(tx)
		servers := repository.NewSQLiteServerRepo(tx)

		// Snapshot koruması: ön koşul kontrolü ile yazma arasında hedef
		// ayrılmış / atılmış olabilir. Tx içinde yeniden bakılır.
		stillMember, err := members.Exists(ctx, serverID, req.TargetUserID)
		if err != nil {
			return err
		}
		if !stillMember {
			stillBanned := false
			if req.Action == models.ModerationBan {
				stillBanned, err = bans.IsBanned(ctx, serverID, req.TargetUserID, time.Now())
				if err != nil {
					return err
				}
			}
			if !stillBanned {
				return fmt.Errorf("%w: target is not a member of this server", pkg.ErrNotFound)
			}
		}

		switch req.Action {
		case models.ModerationMute, models.ModerationBan:
			// "Update else insert": tekrar mute/ban kayıt çoğaltmaz,
			// mevcut aktif kaydın reason/expiry'sini tazeler.
			refreshed, err := mods.RefreshActive(ctx, serverID, req.TargetUserID, req.Action, actorID, req.Reason, expiresAt)
			if err != nil {
				return err
			}
			if refreshed {
				// Dönen kayıt DB'de gerçekten var olan satır olmalı —
				// yerel record'un id'si hiç yazılmadı.
				surviving, err := mods.GetActive(ctx, serverID, req.TargetUserID, req.Action)
				if err != nil {
					return err
				}
				record = surviving
			} else if err := mods.Insert(ctx, record); err != nil {
				return err
			}

		case models.ModerationKick:
			if err := mods.Insert(ctx, record); err != nil {
				return err
			}
		}

		// Kick ve ban üyeliği düşürür; mute düşürmez. Ban tazelemesinde
		// düşürülecek üyelik zaten yok.
		if (req.Action == models.ModerationKick || req.Action == models.ModerationBan) && stillMember {
			if err := members.Remove(ctx, serverID, req.TargetUserID); err != nil {
				return err
			}
			if err := servers.AdjustMemberCount(ctx, serverID, -1); err != nil {
				return err
			}
		}

		// Ban ek olarak projeksiyon tablosuna yazar — "banlı mı?" sorusu
		// log taraması yerine tek satır lookup'ı ile yanıtlanır.
		if req.Action == models.ModerationBan {
			if err := bans.Upsert(ctx, &models.Ban{
				ServerID:    serverID,
				UserID:      req.TargetUserID,
				ModeratorID: actorID,
				Reason:      req.Reason,
				ExpiresAt:   expiresAt,
			}); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastApplied(serverID, actorID, req, expiresAt)

	log.Printf("[moderation] %s applied: server=%s target=%s actor=%s",
		req.Action, serverID, req.TargetUserID, actorID)

	return record, nil
}

// broadcastApplied, commit SONRASI event dağıtımı. Broadcast başarısızlığı
// aksiyonu geri almaz — WS bildirimi best-effort'tur.
func (s *moderationService) broadcastApplied(serverID, actorID string, req *models.ModerationRequest, expiresAt *time.Time) {
	var op string
	switch req.Action {
	case models.ModerationMute:
		op = ws.OpMemberMuted
	case models.ModerationKick:
		op = ws.OpMemberKicked
	case models.ModerationBan:
		op = ws.OpMemberBanned
	default:
		return
	}

	data := ws.ModerationEventData{
		ServerID:    serverID,
		UserID:      req.TargetUserID,
		ModeratorID: actorID,
		Kind:        string(req.Action),
	}
	if expiresAt != nil {
		data.ExpiresAt = expiresAt.Format(time.RFC3339)
	}

	s.hub.BroadcastToAll(ws.Event{Op: op, Data: data})

	// Kick ve ban üyeliği düşürdü — diğer client'lar üye listesini tazelesin.
	if req.Action == models.ModerationKick || req.Action == models.ModerationBan {
		s.hub.BroadcastToAll(ws.Event{Op: ws.OpMemberLeave, Data: ws.MemberEventData{
			ServerID: serverID,
			UserID:   req.TargetUserID,
		}})
		// Hedefin kendi client'ı sunucuyu listesinden düşürsün.
		s.hub.BroadcastToUser(req.TargetUserID, ws.Event{Op: ws.OpServerDelete, Data: ws.ServerEventData{
			ServerID: serverID,
		}})
	}
}

func (s *moderationService) Unmute(ctx context.Context, serverID, actorID, targetID string) error {
	if err := s.requireCapability(ctx, serverID, actorID, models.PermMuteMembers); err != nil {
		return err
	}

	deactivated, err := s.modRepo.Deactivate(ctx, serverID, targetID, models.ModerationMute)
	if err != nil {
		return fmt.Errorf("failed to deactivate mute: %w", err)
	}
	if !deactivated {
		// Aktif susturma yoktu — unmute idempotent no-op.
		return nil
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpMemberUnmuted, Data: ws.ModerationEventData{
		ServerID:    serverID,
		UserID:      targetID,
		ModeratorID: actorID,
		Kind:        string(models.ModerationMute),
	}})

	log.Printf("[moderation] unmute: server=%s target=%s actor=%s", serverID, targetID, actorID)
	return nil
}

func (s *moderationService) Unban(ctx context.Context, serverID, actorID, targetID string) error {
	if err := s.requireCapability(ctx, serverID, actorID, models.PermBanMembers); err != nil {
		return err
	}

	// Log kaydı ve projeksiyon birlikte kapanır.
	var deactivated bool
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		mods := repository.NewSQLiteModerationRepo(tx)
		bans := repository.NewSQLiteBanRepo(tx)

		logClosed, err := mods.Deactivate(ctx, serverID, targetID, models.ModerationBan)
		if err != nil {
			return err
		}
		banClosed, err := bans.Deactivate(ctx, serverID, targetID)
		if err != nil {
			return err
		}
		deactivated = logClosed || banClosed
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to deactivate ban: %w", err)
	}
	if !deactivated {
		return nil
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpMemberUnbanned, Data: ws.ModerationEventData{
		ServerID:    serverID,
		UserID:      targetID,
		ModeratorID: actorID,
		Kind:        string(models.ModerationBan),
	}})

	log.Printf("[moderation] unban: server=%s target=%s actor=%s", serverID, targetID, actorID)
	return nil
}

func (s *moderationService) IsMuted(ctx context.Context, serverID, userID string, now time.Time) (bool, error) {
	rec, err := s.modRepo.GetActive(ctx, serverID, userID, models.ModerationMute)
	if errors.Is(err, pkg.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get active mute: %w", err)
	}
	return rec.InEffect(now), nil
}

func (s *moderationService) IsBanned(ctx context.Context, serverID, userID string, now time.Time) (bool, error) {
	return s.banRepo.IsBanned(ctx, serverID, userID, now)
}

func (s *moderationService) ListLog(ctx context.Context, serverID, requesterID, filterUserID string, limit, offset int) (*models.ModerationLogPage, error) {
	if err := s.requireAnyModerationCapability(ctx, serverID, requesterID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	logs, total, err := s.modRepo.ListByServer(ctx, serverID, filterUserID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list moderation log: %w", err)
	}

	return &models.ModerationLogPage{Logs: logs, TotalCount: total}, nil
}

func (s *moderationService) ListBans(ctx context.Context, serverID, requesterID string) ([]models.Ban, error) {
	if err := s.requireCapability(ctx, serverID, requesterID, models.PermBanMembers); err != nil {
		return nil, err
	}

	bans, err := s.banRepo.ListActive(ctx, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bans: %w", err)
	}
	return bans, nil
}

// requireCapability, aktörün verilen yetkiyi taşıdığını doğrular.
func (s *moderationService) requireCapability(ctx context.Context, serverID, actorID string, perm models.Permission) error {
	access, err := s.access.Evaluate(ctx, serverID, actorID)
	if err != nil {
		return fmt.Errorf("failed to evaluate access: %w", err)
	}
	if !access.Has(perm) {
		return fmt.Errorf("%w: missing %s permission", pkg.ErrForbidden, perm)
	}
	return nil
}

// requireAnyModerationCapability, log okuma guard'ı: owner veya
// mute/kick/ban yetkilerinden herhangi birini taşıyan okuyabilir.
func (s *moderationService) requireAnyModerationCapability(ctx context.Context, serverID, requesterID string) error {
	access, err := s.access.Evaluate(ctx, serverID, requesterID)
	if err != nil {
		return fmt.Errorf("failed to evaluate access: %w", err)
	}
	if access.IsOwner {
		return nil
	}
	if !access.Permissions.HasAny(models.PermMuteMembers, models.PermKickMembers, models.PermBanMembers) {
		return fmt.Errorf("%w: moderation log requires a moderation permission", pkg.ErrForbidden)
	}
	return nil
}
