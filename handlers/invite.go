// Package handlers — InviteHandler: davet kodu HTTP endpoint'leri.
//
// Route'lar:
//
//	GET    /api/invites/{code}            → Preview (auth gerekmez)
//	POST   /api/invites/{code}/redeem     → Redeem
//	POST   /api/servers/{serverID}/invite → Rotate
//	DELETE /api/servers/{serverID}/invite → Revoke
package handlers

import (
	"net/http"

	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
	"github.com/akinalp/kovan/services"
)

// InviteHandler, davet endpoint'lerini yöneten struct.
type InviteHandler struct {
	inviteService services.InviteService
}

// NewInviteHandler, constructor.
func NewInviteHandler(inviteService services.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

// Preview godoc
// GET /api/invites/{code}
// Katılmadan önce sunucu adı ve üye sayısını gösterir. Auth gerektirmez.
func (h *InviteHandler) Preview(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invite code is required")
		return
	}

	preview, err := h.inviteService.Preview(r.Context(), code)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, preview)
}

// Redeem godoc
// POST /api/invites/{code}/redeem
// Zaten üye olmak hata değildir — already_member=true ile 200 döner.
func (h *InviteHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	code := r.PathValue("code")
	if code == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invite code is required")
		return
	}

	result, err := h.inviteService.Redeem(r.Context(), code, user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, result)
}

// Rotate godoc
// POST /api/servers/{serverID}/invite
// Eski kodu geçersiz kılıp yenisini üretir.
func (h *InviteHandler) Rotate(w http.ResponseWriter, r *http.Request) {
	user, serverID, ok := requireUserAndServer(w, r)
	if !ok {
		return
	}

	code, err := h.inviteService.Rotate(r.Context(), serverID, user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"invite_code": code})
}

// Revoke godoc
// DELETE /api/servers/{serverID}/invite
// Sunucuyu davete kapatır.
func (h *InviteHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	user, serverID, ok := requireUserAndServer(w, r)
	if !ok {
		return
	}

	if err := h.inviteService.Revoke(r.Context(), serverID, user.ID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "invite revoked"})
}

// requireUserAndServer, context'ten user + serverID çıkaran ortak yardımcı.
// Eksikse hata yanıtını kendisi yazar ve ok=false döner.
func requireUserAndServer(w http.ResponseWriter, r *http.Request) (*models.User, string, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return nil, "", false
	}

	serverID, ok := r.Context().Value(ServerIDContextKey).(string)
	if !ok || serverID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "server context required")
		return nil, "", false
	}

	return user, serverID, true
}
