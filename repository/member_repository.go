package repository

import (
	"context"

	"github.com/akinalp/kovan/models"
)

// MemberRepository, üyelik veritabanı işlemleri için interface.
//
// Üyelik (server_id, user_id) çifti bazında benzersizdir. Add'in
// INSERT OR IGNORE semantiği check-then-act yarışını DB seviyesinde çözer:
// iki eşzamanlı join'den ikincisi inserted=false görür, hata değil.
type MemberRepository interface {
	// ─── Read ───
	Get(ctx context.Context, serverID, userID string) (*models.Member, error)
	Exists(ctx context.Context, serverID, userID string) (bool, error)
	ListByServer(ctx context.Context, serverID string) ([]models.Member, error)
	GetRoleIDs(ctx context.Context, serverID, userID string) ([]string, error)

	// CountWithoutRole, verilen rolü taşımayan üye sayısını döner (teşhis).
	CountWithoutRole(ctx context.Context, serverID, roleID string) (int, error)

	// CountPendingLegacy, henüz taşınmamış legacy üyelik kaydı sayısını döner.
	CountPendingLegacy(ctx context.Context, serverID string) (int, error)

	// ─── Write ───

	// Add, üyeliği ekler. Kayıt zaten varsa no-op; inserted=false döner.
	Add(ctx context.Context, member *models.Member) (inserted bool, err error)

	Remove(ctx context.Context, serverID, userID string) error
	UpdateNickname(ctx context.Context, serverID, userID string, nickname *string) error

	// AssignRole, üyeye rol atar ($addToSet semantiği — tekrar atama no-op).
	AssignRole(ctx context.Context, serverID, userID, roleID string) error
	RemoveRole(ctx context.Context, serverID, userID, roleID string) error

	// AssignRoleToAll, rolü sunucunun tüm üyelerine atar, halihazırda
	// taşıyanları atlayarak. Eklenen satır sayısını döner (repair raporu).
	AssignRoleToAll(ctx context.Context, serverID, roleID string) (int, error)

	// MigrateLegacy, legacy konumdaki üyelikleri kanonik tabloya taşır.
	// Mevcut (server, user) çiftleri atlanır; taşınan sayısı döner.
	MigrateLegacy(ctx context.Context, serverID string) (int, error)
}
