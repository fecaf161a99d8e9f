package repository

import (
	"context"

	"github.com/akinalp/kovan/models"
)

// RoleRepository, rol veritabanı işlemleri için interface.
type RoleRepository interface {
	// ─── Read ───
	GetByID(ctx context.Context, id string) (*models.Role, error)
	GetAllByServer(ctx context.Context, serverID string) ([]models.Role, error)

	// GetDefaultByServer, sunucunun default rolünü döner.
	// Default rol yoksa pkg.ErrNotFound — join/repair path'leri bunu
	// "sentezle" sinyali olarak kullanır.
	GetDefaultByServer(ctx context.Context, serverID string) (*models.Role, error)

	// GetByMember, bir üyenin çözülebilir rollerini position'a göre
	// (yüksekten düşüğe) döner. member_roles'taki dangling referanslar
	// join tarafından doğal olarak atlanır — hata üretmez.
	GetByMember(ctx context.Context, serverID, userID string) ([]models.Role, error)

	GetMaxPosition(ctx context.Context, serverID string) (int, error)
	CountByServer(ctx context.Context, serverID string) (int, error)

	// ─── Write ───
	Create(ctx context.Context, role *models.Role) error
	Update(ctx context.Context, role *models.Role) error

	// Delete, rolü siler. Default rol DB seviyesinde korunur (silinmez).
	Delete(ctx context.Context, id string) error
}
