// Package models — Server domain modeli.
//
// Server, bir topluluk sunucusunu (Discord'daki "guild" benzeri) temsil eder.
// Her sunucunun bir sahibi (owner) vardır — owner tüm yetki kontrollerinden
// muaftır ve hiç kimse tarafından modere edilemez.
package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Server, sunucu verisini temsil eder.
// DB'deki "servers" tablosunun Go karşılığıdır.
//
// InviteCode nil ise davetler kapalıdır (revoke edilmiş).
// MemberCount denormalize sayaçtır — kaynak gerçeği members tablosudur,
// tutarsızlık repair servisi tarafından giderilir.
type Server struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	OwnerID     string    `json:"owner_id"`
	InviteCode  *string   `json:"invite_code,omitempty"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ServerListItem, kullanıcının sunucu listesi için hafif görünüm.
type ServerListItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
}

// CreateServerRequest, sunucu oluşturma isteği.
type CreateServerRequest struct {
	Name string `json:"name"`
}

// Validate, CreateServerRequest kontrolü.
func (r *CreateServerRequest) Validate() error {
	nameLen := utf8.RuneCountInString(r.Name)
	if nameLen < 1 || nameLen > 100 {
		return fmt.Errorf("server name must be between 1 and 100 characters")
	}
	return nil
}

// InvitePreview, davet kodunun auth gerektirmeyen ön izlemesi —
// katılmadan önce "hangi sunucuya davetliyim?" sorusuna yanıt.
type InvitePreview struct {
	ServerName  string `json:"server_name"`
	MemberCount int    `json:"member_count"`
}

// RedeemResult, başarılı davet kullanımının sonucu.
// AlreadyMember true ise kullanıcı zaten üyeydi — bu bir hata değildir,
// tekrarlanan join idempotent no-op olarak başarı sayılır.
type RedeemResult struct {
	ServerID      string `json:"server_id"`
	ServerName    string `json:"server_name"`
	AlreadyMember bool   `json:"already_member"`
}
