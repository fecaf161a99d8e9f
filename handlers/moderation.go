// Package handlers — ModerationHandler: moderasyon HTTP endpoint'leri.
//
// Route'lar:
//
//	POST   /api/servers/{serverID}/moderation                 → Apply
//	GET    /api/servers/{serverID}/moderation/log             → ListLog
//	GET    /api/servers/{serverID}/moderation/bans            → ListBans
//	DELETE /api/servers/{serverID}/moderation/mute/{userID}   → Unmute
//	DELETE /api/servers/{serverID}/moderation/ban/{userID}    → Unban
//
// Yetki kontrolleri middleware'da DEĞİL service'tedir: gereken capability
// action türüne göre değişir (mute/kick/ban), tek bir Require(perm) ile
// ifade edilemez.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
	"github.com/akinalp/kovan/services"
)

// ModerationHandler, moderasyon endpoint'lerini yöneten struct.
type ModerationHandler struct {
	moderationService services.ModerationService
}

// NewModerationHandler, constructor.
func NewModerationHandler(moderationService services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

// Apply godoc
// POST /api/servers/{serverID}/moderation
// Body: { "action": "ban", "target_user_id": "...", "reason": "...", "duration_ms": 3600000 }
func (h *ModerationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	serverID, ok := r.Context().Value(ServerIDContextKey).(string)
	if !ok || serverID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "server context required")
		return
	}

	var req models.ModerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.moderationService.Apply(r.Context(), serverID, user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, record)
}

// ListLog godoc
// GET /api/servers/{serverID}/moderation/log?user_id=&limit=&offset=
func (h *ModerationHandler) ListLog(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	serverID, ok := r.Context().Value(ServerIDContextKey).(string)
	if !ok || serverID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "server context required")
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	page, err := h.moderationService.ListLog(r.Context(), serverID, user.ID, q.Get("user_id"), limit, offset)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// ListBans godoc
// GET /api/servers/{serverID}/moderation/bans
func (h *ModerationHandler) ListBans(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	serverID, ok := r.Context().Value(ServerIDContextKey).(string)
	if !ok || serverID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "server context required")
		return
	}

	bans, err := h.moderationService.ListBans(r.Context(), serverID, user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, bans)
}

// Unmute godoc
// DELETE /api/servers/{serverID}/moderation/mute/{userID}
func (h *ModerationHandler) Unmute(w http.ResponseWriter, r *http.Request) {
	h.deactivate(w, r, func(serverID, actorID, targetID string) error {
		return h.moderationService.Unmute(r.Context(), serverID, actorID, targetID)
	})
}

// Unban godoc
// DELETE /api/servers/{serverID}/moderation/ban/{userID}
func (h *ModerationHandler) Unban(w http.ResponseWriter, r *http.Request) {
	h.deactivate(w, r, func(serverID, actorID, targetID string) error {
		return h.moderationService.Unban(r.Context(), serverID, actorID, targetID)
	})
}

// deactivate, unmute/unban'in ortak parse-and-dispatch gövdesi.
func (h *ModerationHandler) deactivate(w http.ResponseWriter, r *http.Request, fn func(serverID, actorID, targetID string) error) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	serverID, ok := r.Context().Value(ServerIDContextKey).(string)
	if !ok || serverID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "server context required")
		return
	}

	targetID := r.PathValue("userID")
	if targetID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "userID is required")
		return
	}

	if err := fn(serverID, user.ID, targetID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "ok"})
}
