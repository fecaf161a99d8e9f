// Package models — Role domain modeli.
//
// Rol hiyerarşisinde position = güç sırası: daha yüksek position = daha
// güçlü rol. Her sunucuda tam olarak bir default rol vardır (kanonik adı
// config'den gelir, geleneksel olarak "@everyone") — her üyeye join
// sırasında atanır ve baseline permission tabanını oluşturur.
package models

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"
)

// Role, bir kullanıcı rolünü temsil eder.
// DB'deki "roles" tablosunun Go karşılığıdır.
type Role struct {
	ID          string        `json:"id"`
	ServerID    string        `json:"server_id"`
	Name        string        `json:"name"`
	Color       string        `json:"color"`
	Position    int           `json:"position"`
	Permissions PermissionSet `json:"permissions"`
	IsDefault   bool          `json:"is_default"`
	CreatedAt   time.Time     `json:"created_at"`
}

// OwnerPosition, sunucu sahibinin sanal rol position'ıdır.
// Owner'ın gücü hiçbir position değerine bağlı değildir — kaç rol
// oluşturulursa oluşturulsun owner her zaman en üstte kalır.
const OwnerPosition = math.MaxInt32

// HighestPosition, bir rol listesindeki en yüksek position değerini döner.
//
// Hiyerarşi kontrollerinde kullanılır: "bir kullanıcı sadece kendisinden
// düşük position'daki kullanıcıları modere edebilir."
// Hiç çözülebilir rol yoksa 0 döner — default rolün position'ı da 0
// olduğundan rolsüz üye default rol seviyesinde sayılır.
func HighestPosition(roles []Role) int {
	max := 0
	for _, r := range roles {
		if r.Position > max {
			max = r.Position
		}
	}
	return max
}

// UnionPermissions, rol listesinin effective permission set'ini hesaplar.
// Tüm rollerin set'leri union'lanır — herhangi bir roldeki yetki geçerlidir.
func UnionPermissions(roles []Role) PermissionSet {
	perms := PermissionSet{}
	for _, r := range roles {
		perms = perms.Union(r.Permissions)
	}
	return perms
}

// CreateRoleRequest, rol oluşturma isteği.
type CreateRoleRequest struct {
	Name        string        `json:"name"`
	Color       string        `json:"color"`
	Permissions PermissionSet `json:"permissions"`
}

// Validate, CreateRoleRequest kontrolü.
func (r *CreateRoleRequest) Validate() error {
	nameLen := utf8.RuneCountInString(r.Name)
	if nameLen < 1 || nameLen > 64 {
		return fmt.Errorf("role name must be between 1 and 64 characters")
	}
	return nil
}

// UpdateRoleRequest, rol güncelleme isteği.
// Partial update pattern: nil field'lar değiştirilmez.
type UpdateRoleRequest struct {
	Name        *string        `json:"name"`
	Color       *string        `json:"color"`
	Permissions *PermissionSet `json:"permissions"`
}

// Validate, UpdateRoleRequest kontrolü.
func (r *UpdateRoleRequest) Validate() error {
	if r.Name != nil {
		nameLen := utf8.RuneCountInString(*r.Name)
		if nameLen < 1 || nameLen > 64 {
			return fmt.Errorf("role name must be between 1 and 64 characters")
		}
	}
	return nil
}
