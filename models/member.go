// Package models — Member (sunucu üyeliği) domain modeli.
//
// Member, kullanıcı ↔ sunucu üyelik ilişkisini temsil eder.
// (server_id, user_id) çifti benzersizdir — tekrarlanan join'ler yeni
// kayıt üretmez. Rol atamaları member_roles tablosunda id referansı ile
// tutulur; referans zayıftır, silinmiş role işaret eden atama tolere edilir.
package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Member, bir kullanıcının bir sunucuya üyeliğini temsil eder.
type Member struct {
	ServerID string    `json:"server_id"`
	UserID   string    `json:"user_id"`
	Nickname *string   `json:"nickname"`
	JoinedAt time.Time `json:"joined_at"`
}

// MemberWithRoles, üyelik + çözülmüş roller + hesaplanmış yetkiler.
// Üye listesi API response'larında ve WS event'lerinde kullanılan view model.
type MemberWithRoles struct {
	ServerID             string        `json:"server_id"`
	UserID               string        `json:"user_id"`
	Username             string        `json:"username"`
	Nickname             *string       `json:"nickname"`
	JoinedAt             time.Time     `json:"joined_at"`
	Roles                []Role        `json:"roles"`
	EffectivePermissions PermissionSet `json:"effective_permissions"`
}

// ToMemberWithRoles, Member + User + çözülmüş rol listesinden view model üretir.
// Effective permission hesabı (union) tek noktada burada yapılır.
func ToMemberWithRoles(member *Member, username string, roles []Role) MemberWithRoles {
	return MemberWithRoles{
		ServerID:             member.ServerID,
		UserID:               member.UserID,
		Username:             username,
		Nickname:             member.Nickname,
		JoinedAt:             member.JoinedAt,
		Roles:                roles,
		EffectivePermissions: UnionPermissions(roles),
	}
}

// UpdateNicknameRequest, üye takma adı güncelleme isteği.
// Nickname nil → takma adı temizle.
type UpdateNicknameRequest struct {
	Nickname *string `json:"nickname"`
}

// Validate, UpdateNicknameRequest kontrolü.
func (r *UpdateNicknameRequest) Validate() error {
	if r.Nickname != nil && utf8.RuneCountInString(*r.Nickname) > 32 {
		return fmt.Errorf("nickname must be at most 32 characters")
	}
	return nil
}

// RoleModifyRequest, bir üyenin rollerini değiştirmek için.
//
// RoleIDs hedef rol ID listesidir (tam set). Mevcut roller ile diff yapılır:
// eksik olanlar eklenir, fazla olanlar çıkarılır. Declarative yaklaşım —
// "ekle/çıkar" komutları yerine "sonuç bu olsun".
type RoleModifyRequest struct {
	RoleIDs []string `json:"role_ids"`
}

// Validate, RoleModifyRequest kontrolü.
func (r *RoleModifyRequest) Validate() error {
	if len(r.RoleIDs) == 0 {
		return fmt.Errorf("at least one role is required")
	}
	return nil
}
