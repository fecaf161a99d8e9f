package repository

import (
	"context"

	"github.com/akinalp/kovan/models"
)

// ServerRepository, sunucu veritabanı işlemleri için interface.
type ServerRepository interface {
	// ─── Read ───
	GetByID(ctx context.Context, serverID string) (*models.Server, error)

	// GetByInviteCode, davet kodundan sunucuyu çözer.
	// Kod hiçbir sunucuya ait değilse pkg.ErrNotFound döner —
	// invite service bunu ErrInvalidCode'a çevirir.
	GetByInviteCode(ctx context.Context, code string) (*models.Server, error)

	GetUserServers(ctx context.Context, userID string) ([]models.ServerListItem, error)

	// ─── Write ───
	Create(ctx context.Context, server *models.Server) error
	Delete(ctx context.Context, serverID string) error

	// SetInviteCode, sunucunun davet kodunu değiştirir. nil → revoke.
	SetInviteCode(ctx context.Context, serverID string, code *string) error

	// AdjustMemberCount, denormalize üye sayacını delta kadar değiştirir.
	AdjustMemberCount(ctx context.Context, serverID string, delta int) error

	// SyncMemberCount, sayacı members tablosundaki gerçek sayıya eşitler.
	// Düzeltme yapıldıysa true döner — repair raporu için.
	SyncMemberCount(ctx context.Context, serverID string) (bool, error)
}
