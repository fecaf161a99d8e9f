// Package middleware — PermissionMiddleware: capability kontrolü.
//
// ServerAccessMiddleware'den SONRA çalışır — context'te evaluator'ın
// hesapladığı Access zaten mevcuttur; bu katman sadece branch eder,
// DB'ye gitmez.
package middleware

import (
	"net/http"

	"github.com/akinalp/kovan/handlers"
	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
)

// PermissionMiddleware, capability kontrolü middleware'ı.
type PermissionMiddleware struct{}

// NewPermissionMiddleware, constructor.
func NewPermissionMiddleware() *PermissionMiddleware {
	return &PermissionMiddleware{}
}

// Require, belirli bir yetkiyi gerektiren middleware döner.
//
// Kullanım:
//
//	permMW.Require(models.PermManageRoles, http.HandlerFunc(roleHandler.Create))
//
// "Middleware factory" pattern'i: Require bir http.Handler döner,
// dönen handler next'i wrap eder. ADMINISTRATOR ve owner her kontrolden
// geçer — Access.Has bunu zaten kapsar.
func (m *PermissionMiddleware) Require(perm models.Permission, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		access, ok := r.Context().Value(handlers.AccessContextKey).(*models.Access)
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusInternalServerError, "access not found in context")
			return
		}

		if !access.Has(perm) {
			pkg.ErrorWithMessage(w, http.StatusForbidden, "missing required permission: "+string(perm))
			return
		}

		next.ServeHTTP(w, r)
	})
}
