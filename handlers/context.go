// Package handlers, HTTP katmanını barındırır.
//
// Handler'lar incedir: request parse → service çağrısı → response yaz.
// İş kuralı handler'da yaşamaz — handler sadece HTTP çevirmenidir.
package handlers

// contextKey, context value key'leri için özel tip.
// Düz string kullanmak paketler arası key çakışmasına açıktır —
// özel tip bunu derleme zamanında imkânsız kılar.
type contextKey string

// UserContextKey, context'te doğrulanmış kullanıcıyı taşıyan key.
// AuthMiddleware tarafından eklenir.
const UserContextKey contextKey = "user"

// ServerIDContextKey, context'te aktif sunucu ID'sini taşıyan key.
// ServerAccessMiddleware tarafından eklenir.
const ServerIDContextKey contextKey = "server_id"

// AccessContextKey, context'te aktörün değerlendirilmiş yetki duruşunu
// (*models.Access) taşıyan key. ServerAccessMiddleware tarafından eklenir —
// handler'lar yetki kararını yeniden evaluate etmeden buradan okur.
const AccessContextKey contextKey = "access"
