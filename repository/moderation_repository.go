package repository

import (
	"context"
	"time"

	"github.com/akinalp/kovan/models"
)

// ModerationRepository, moderation audit log veritabanı işlemleri.
//
// Log append-only'dir: kayıtlar güncellenmez, sadece aktif mute/ban
// kaydının reason/expiry alanları tazelenir veya active işareti kapatılır.
// (sunucu, hedef, tür) başına tek aktif kayıt invariant'ı partial unique
// index ile DB seviyesinde garanti edilir.
type ModerationRepository interface {
	// ─── Read ───
	GetActive(ctx context.Context, serverID, userID string, kind models.ModerationKind) (*models.ModerationRecord, error)

	// ListByServer, audit log'u yeniden eskiye sayfalar.
	// filterUserID boş değilse sadece o hedefin kayıtları döner.
	ListByServer(ctx context.Context, serverID, filterUserID string, limit, offset int) ([]models.ModerationRecord, int, error)

	// ─── Write ───
	Insert(ctx context.Context, rec *models.ModerationRecord) error

	// RefreshActive, mevcut aktif kaydın reason/expiry değerlerini günceller.
	// Aktif kayıt yoksa false döner — çağıran o zaman Insert eder.
	// Bu "update else insert" sırası tekrar mute/ban'in kayıt ÇOĞALTMAK
	// yerine mevcut aktif kaydı tazelemesini sağlar.
	RefreshActive(ctx context.Context, serverID, userID string, kind models.ModerationKind, moderatorID, reason string, expiresAt *time.Time) (bool, error)

	// Deactivate, aktif kaydı kapatır. Kapatılan kayıt yoksa false döner.
	Deactivate(ctx context.Context, serverID, userID string, kind models.ModerationKind) (bool, error)
}
