// Package handlers — AccessHandler: yetki duruşu sorgu endpoint'i.
//
// Route:
//
//	GET /api/servers/{serverID}/access → Get
//
// Not: Bu endpoint ServerAccessMiddleware'ın ARKASINDA değildir —
// üye olmayan aktörün de "erişimim var mı?" diye sorabilmesi gerekir.
// Yanıt o durumda hasAccess=false, boş permission listesidir.
package handlers

import (
	"net/http"

	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
	"github.com/akinalp/kovan/services"
)

// AccessHandler, access endpoint'ini yöneten struct.
type AccessHandler struct {
	accessService services.AccessService
}

// NewAccessHandler, constructor.
func NewAccessHandler(accessService services.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

// Get godoc
// GET /api/servers/{serverID}/access
// Aktörün bu sunucudaki tam yetki duruşunu döner.
func (h *AccessHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	serverID := r.PathValue("serverID")
	if serverID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "serverID is required")
		return
	}

	resp, err := h.accessService.GetAccess(r.Context(), serverID, user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, resp)
}
