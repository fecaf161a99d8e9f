// Package models — Moderation domain modelleri.
//
// İki ayrı kayıt türü vardır ve ikisi ban aksiyonunda birlikte yazılır:
//
//   - ModerationRecord: append-only audit log. "Kim, kime, ne zaman, neden?"
//   - Ban: aktif yasak projeksiyonu. "Bu kullanıcı şu an banlı mı?" sorusu
//     log taraması yerine tek kayıt lookup'ı ile yanıtlanır.
//
// Süre dolumu arka plan işi ile değil okuma anında değerlendirilir:
// ExpiresAt geçmişteyse kayıt artık yürürlükte değildir (InEffect).
package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// ModerationKind, moderation aksiyon türü.
type ModerationKind string

const (
	ModerationMute ModerationKind = "mute"
	ModerationKick ModerationKind = "kick"
	ModerationBan  ModerationKind = "ban"
)

// Valid, türün tanımlı olup olmadığını kontrol eder.
func (k ModerationKind) Valid() bool {
	switch k {
	case ModerationMute, ModerationKick, ModerationBan:
		return true
	}
	return false
}

// RequiredPermission, bu türdeki aksiyonu uygulamak için gereken capability.
// ADMINISTRATOR her zaman yeterlidir (PermissionSet.Has kısayolu).
func (k ModerationKind) RequiredPermission() Permission {
	switch k {
	case ModerationMute:
		return PermMuteMembers
	case ModerationKick:
		return PermKickMembers
	case ModerationBan:
		return PermBanMembers
	}
	return PermAdministrator // tanımsız tür hiçbir zaman buraya gelmemeli
}

// ModerationRecord, append-only audit log kaydı.
//
// Active: mute/ban için "halen yürürlükte" işareti; kick anlık bir olaydır,
// kayıtları hiçbir zaman aktif olmaz. ExpiresAt nil = süresiz.
type ModerationRecord struct {
	ID          string         `json:"id"`
	ServerID    string         `json:"server_id"`
	UserID      string         `json:"user_id"`
	ModeratorID string         `json:"moderator_id"`
	Kind        ModerationKind `json:"kind"`
	Reason      string         `json:"reason"`
	ExpiresAt   *time.Time     `json:"expires_at"`
	Active      bool           `json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
}

// InEffect, kaydın verilen anda yürürlükte olup olmadığını döner.
func (r *ModerationRecord) InEffect(now time.Time) bool {
	if !r.Active {
		return false
	}
	return r.ExpiresAt == nil || r.ExpiresAt.After(now)
}

// Ban, aktif yasak projeksiyonu. DB'deki "bans" tablosunun Go karşılığıdır.
type Ban struct {
	ServerID    string     `json:"server_id"`
	UserID      string     `json:"user_id"`
	ModeratorID string     `json:"moderator_id"`
	Reason      string     `json:"reason"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
}

// InEffect, yasağın verilen anda yürürlükte olup olmadığını döner.
func (b *Ban) InEffect(now time.Time) bool {
	if !b.Active {
		return false
	}
	return b.ExpiresAt == nil || b.ExpiresAt.After(now)
}

// ModerationRequest, moderation aksiyonu isteği.
// DurationMs 0 = süresiz (mute/ban için); kick için anlamsızdır, yoksayılır.
type ModerationRequest struct {
	Action       ModerationKind `json:"action"`
	TargetUserID string         `json:"target_user_id"`
	Reason       string         `json:"reason"`
	DurationMs   int64          `json:"duration_ms"`
}

// Validate, ModerationRequest kontrolü.
func (r *ModerationRequest) Validate() error {
	if !r.Action.Valid() {
		return fmt.Errorf("invalid moderation action: %q", r.Action)
	}
	if r.TargetUserID == "" {
		return fmt.Errorf("target_user_id is required")
	}
	if utf8.RuneCountInString(r.Reason) > 512 {
		return fmt.Errorf("reason must be at most 512 characters")
	}
	if r.DurationMs < 0 {
		return fmt.Errorf("duration_ms cannot be negative")
	}
	return nil
}

// Duration, DurationMs'i *time.Duration'a çevirir. 0 → nil (süresiz).
func (r *ModerationRequest) Duration() *time.Duration {
	if r.DurationMs <= 0 {
		return nil
	}
	d := time.Duration(r.DurationMs) * time.Millisecond
	return &d
}

// ModerationLogPage, sayfalanmış audit log yanıtı.
type ModerationLogPage struct {
	Logs       []ModerationRecord `json:"logs"`
	TotalCount int                `json:"total_count"`
}
