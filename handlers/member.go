// Package handlers — MemberHandler: üye HTTP endpoint'leri.
//
// Route'lar:
//
//	GET   /api/servers/{serverID}/members                  → List
//	GET   /api/servers/{serverID}/members/{userID}         → Get
//	PATCH /api/servers/{serverID}/members/{userID}/nickname → UpdateNickname
//	PUT   /api/servers/{serverID}/members/{userID}/roles   → ModifyRoles
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
	"github.com/akinalp/kovan/services"
)

// MemberHandler, üye endpoint'lerini yöneten struct.
type MemberHandler struct {
	memberService services.MemberService
}

// NewMemberHandler, constructor.
func NewMemberHandler(memberService services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// List godoc
// GET /api/servers/{serverID}/members
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	serverID, ok := r.Context().Value(ServerIDContextKey).(string)
	if !ok || serverID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "server context required")
		return
	}

	members, err := h.memberService.GetAll(r.Context(), serverID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, members)
}

// Get godoc
// GET /api/servers/{serverID}/members/{userID}
func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	serverID, ok := r.Context().Value(ServerIDContextKey).(string)
	if !ok || serverID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "server context required")
		return
	}

	userID := r.PathValue("userID")
	if userID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "userID is required")
		return
	}

	member, err := h.memberService.GetByID(r.Context(), serverID, userID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, member)
}

// UpdateNickname godoc
// PATCH /api/servers/{serverID}/members/{userID}/nickname
// Body: { "nickname": "..." } — null nickname takma adı temizler.
func (h *MemberHandler) UpdateNickname(w http.ResponseWriter, r *http.Request) {
	user, serverID, ok := requireUserAndServer(w, r)
	if !ok {
		return
	}

	targetID := r.PathValue("userID")
	if targetID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "userID is required")
		return
	}

	var req models.UpdateNicknameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.memberService.UpdateNickname(r.Context(), serverID, user.ID, targetID, &req); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "nickname updated"})
}

// ModifyRoles godoc
// PUT /api/servers/{serverID}/members/{userID}/roles
// Body: { "role_ids": ["..."] } — hedef rol setinin TAMAMI.
func (h *MemberHandler) ModifyRoles(w http.ResponseWriter, r *http.Request) {
	user, serverID, ok := requireUserAndServer(w, r)
	if !ok {
		return
	}

	targetID := r.PathValue("userID")
	if targetID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "userID is required")
		return
	}

	var req models.RoleModifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member, err := h.memberService.ModifyRoles(r.Context(), serverID, user.ID, targetID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, member)
}
