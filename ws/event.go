// Package ws, WebSocket bağlantı yönetimi ve gerçek zamanlı event dağıtımını sağlar.
//
// Mimari:
// - Hub: Tüm bağlantıları yöneten merkezi yapı (Observer pattern)
// - Client: Her WebSocket bağlantısını temsil eder
// - Event: Client-server arası iletilen mesaj formatı
//
// Event akışı:
// 1. Moderatör bir işlem yapar → HTTP POST → Service → DB kayıt
// 2. Service, Hub'ın BroadcastToAll / BroadcastToUser metodunu çağırır
// 3. Hub, event'i ilgili client'lara iletir
// 4. Her client'ın WritePump'ı event'i WebSocket'e yazar
//
// Bu motor mesajlaşma taşımaz — event'ler yalnızca üyelik ve yetki
// durumundaki değişiklikleri bildirir; client cache'ini tazelemek ve
// banlanan/atılan kullanıcıyı anında bilgilendirmek için.
package ws

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Op (operation): Event türü — "member_join", "member_banned" vb.
// Data: Event'e özgü payload.
// Seq (sequence number): Her outbound event'e verilen artan sayı.
//   Client eksik event tespit etmek için seq'i takip eder.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server operasyonları
const (
	OpHeartbeat = "heartbeat" // Client periyodik gönderir — "hâlâ bağlıyım" sinyali
)

// Server → Client operasyonları
const (
	OpHeartbeatAck = "heartbeat_ack" // Heartbeat'e yanıt

	OpMemberJoin   = "member_join"   // Davet koduyla yeni üye katıldı
	OpMemberLeave  = "member_leave"  // Üye ayrıldı veya atıldı
	OpMemberUpdate = "member_update" // Üye bilgileri güncellendi (rol değişikliği, nickname)

	OpMemberMuted    = "member_muted"    // Üye susturuldu
	OpMemberUnmuted  = "member_unmuted"  // Susturma kaldırıldı
	OpMemberKicked   = "member_kicked"   // Üye sunucudan atıldı
	OpMemberBanned   = "member_banned"   // Üye yasaklandı
	OpMemberUnbanned = "member_unbanned" // Yasak kaldırıldı

	OpRoleCreate = "role_create" // Yeni rol oluşturuldu
	OpRoleUpdate = "role_update" // Rol güncellendi (izinler değişmiş olabilir)
	OpRoleDelete = "role_delete" // Rol silindi

	OpServerCreate = "server_create" // Kullanıcı yeni sunucu oluşturdu veya katıldı
	OpServerUpdate = "server_update" // Sunucu bilgileri güncellendi
	OpServerDelete = "server_delete" // Sunucu silindi veya kullanıcı ayrıldı
)

// MemberEventData, üyelik değişikliği event'lerinin ortak payload'ı.
// ws paketinin models'a bağımlılığını kırmak için ayrı tanımlanır.
type MemberEventData struct {
	ServerID string `json:"server_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
}

// ModerationEventData, moderasyon event'lerinin payload'ı.
//
// ExpiresAt RFC3339 string'dir, kalıcı yaptırımda boş. Reason hiçbir
// zaman hedefe gösterilmez — payload sadece moderatörlere giden
// broadcast'lerde reason taşır.
type ModerationEventData struct {
	ServerID    string `json:"server_id"`
	UserID      string `json:"user_id"`
	ModeratorID string `json:"moderator_id"`
	Kind        string `json:"kind"`
	ExpiresAt   string `json:"expires_at,omitempty"`
}

// RoleEventData, rol değişikliği event'lerinin payload'ı.
// Rol izinleri değiştiğinde client'lar access cache'ini geçersiz kılar.
type RoleEventData struct {
	ServerID string `json:"server_id"`
	RoleID   string `json:"role_id"`
}

// ServerEventData, sunucu düzeyi event'lerin payload'ı.
type ServerEventData struct {
	ServerID string `json:"server_id"`
	Name     string `json:"name,omitempty"`
}
