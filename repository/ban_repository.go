package repository

import (
	"context"
	"time"

	"github.com/akinalp/kovan/models"
)

// BanRepository, aktif yasak projeksiyonu veritabanı işlemleri.
//
// bans tablosu (server_id, user_id) PK'li tek satırlık güncel durumdur;
// geçmiş moderation_records'tadır. Upsert semantiği sayesinde eşzamanlı
// iki ban tek aktif kayda çöker — ikincisi mevcut satırı günceller.
type BanRepository interface {
	Get(ctx context.Context, serverID, userID string) (*models.Ban, error)

	// IsBanned, kullanıcının verilen anda yürürlükte bir yasağı olup
	// olmadığını döner. Süresi dolmuş yasak banlı sayılmaz.
	IsBanned(ctx context.Context, serverID, userID string, now time.Time) (bool, error)

	ListActive(ctx context.Context, serverID string) ([]models.Ban, error)

	// Upsert, yasağı ekler veya mevcut satırı yeni reason/expiry ile
	// günceller ve active işaretler.
	Upsert(ctx context.Context, ban *models.Ban) error

	// Deactivate, yasağı kaldırır. Kaldırılan yoksa false döner.
	Deactivate(ctx context.Context, serverID, userID string) (bool, error)
}
