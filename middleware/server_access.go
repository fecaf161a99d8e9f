// Package middleware — ServerAccessMiddleware: sunucu erişim kontrolü.
//
// URL'den {serverID} path parameter'ını alır, aktörün o sunucudaki
// duruşunu evaluator üzerinden hesaplar ve hem serverID'yi hem Access'i
// context'e ekler. Downstream permission kontrolleri DB'ye tekrar gitmez.
//
// Akış: HTTP request → AuthMiddleware → ServerAccessMiddleware → Handler
//
// Üye olmayan ve owner olmayan aktör 403 alır. Owner üyelik kaydı
// olmasa bile geçer — ownership üyelikten üstündür.
package middleware

import (
	"context"
	"net/http"

	"github.com/akinalp/kovan/handlers"
	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
	"github.com/akinalp/kovan/repository"
	"github.com/akinalp/kovan/services"
)

// ServerAccessMiddleware, sunucu erişim kontrolü middleware'ı.
type ServerAccessMiddleware struct {
	memberRepo    repository.MemberRepository
	accessService services.AccessService
}

// NewServerAccessMiddleware, constructor.
func NewServerAccessMiddleware(memberRepo repository.MemberRepository, accessService services.AccessService) *ServerAccessMiddleware {
	return &ServerAccessMiddleware{
		memberRepo:    memberRepo,
		accessService: accessService,
	}
}

// Require, sunucu erişimi zorunlu kılan middleware.
func (m *ServerAccessMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value(handlers.UserContextKey).(*models.User)
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
			return
		}

		// Go 1.22+ PathValue: route tanımındaki {serverID} parametresi.
		serverID := r.PathValue("serverID")
		if serverID == "" {
			pkg.ErrorWithMessage(w, http.StatusBadRequest, "serverID is required")
			return
		}

		access, err := m.accessService.Evaluate(r.Context(), serverID, user.ID)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		if !access.IsOwner {
			isMember, err := m.memberRepo.Exists(r.Context(), serverID, user.ID)
			if err != nil {
				pkg.ErrorWithMessage(w, http.StatusInternalServerError, "failed to check server membership")
				return
			}
			if !isMember {
				pkg.ErrorWithMessage(w, http.StatusForbidden, "you are not a member of this server")
				return
			}
		}

		ctx := context.WithValue(r.Context(), handlers.ServerIDContextKey, serverID)
		ctx = context.WithValue(ctx, handlers.AccessContextKey, access)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
