// Package models — Access: yetkilendirme değerlendirme sonucu.
package models

// Access, bir aktörün bir sunucudaki yetki duruşunu temsil eder.
// AccessService.Evaluate'in sonucudur — evaluator asla state değiştirmez,
// eksik veri (üyelik yok, dangling rol) her zaman en kısıtlayıcı yanıta
// çözülür: boş permission set, position 0.
//
// Owner için Permissions = AllPermissions(), HighestPosition = OwnerPosition.
type Access struct {
	IsOwner         bool          `json:"is_owner"`
	Permissions     PermissionSet `json:"permissions"`
	HighestPosition int           `json:"highest_position"`
}

// Has, aktörün verilen yetkiye sahip olup olmadığını döner.
func (a *Access) Has(perm Permission) bool {
	return a.Permissions.Has(perm)
}

// Outranks, aktörün hedeften hiyerarşik olarak üstün olup olmadığını döner.
// Üstünlük STRICT'tir: eşit position yeterli değildir — bir moderatör
// dengini veya üstünü modere edemez. Owner herkesi outrank eder
// (OwnerPosition her gerçek rol position'ından büyüktür).
func (a *Access) Outranks(target *Access) bool {
	if a.IsOwner {
		return true
	}
	return a.HighestPosition > target.HighestPosition
}

// AccessResponse, GetAccess operasyonunun dış yanıtı.
// HasAccess: aktörün sunucuda herhangi bir duruşu var mı (üye veya owner).
type AccessResponse struct {
	HasAccess   bool     `json:"has_access"`
	IsOwner     bool     `json:"is_owner"`
	Roles       []Role   `json:"roles"`
	Permissions []string `json:"permissions"`
}
