// Package handlers — RoleHandler: rol HTTP endpoint'leri.
//
// Route'lar:
//
//	GET    /api/servers/{serverID}/roles          → List
//	POST   /api/servers/{serverID}/roles          → Create
//	PATCH  /api/servers/{serverID}/roles/{roleID} → Update
//	DELETE /api/servers/{serverID}/roles/{roleID} → Delete
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
	"github.com/akinalp/kovan/services"
)

// RoleHandler, rol endpoint'lerini yöneten struct.
type RoleHandler struct {
	roleService services.RoleService
}

// NewRoleHandler, constructor.
func NewRoleHandler(roleService services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// List godoc
// GET /api/servers/{serverID}/roles
func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	serverID, ok := r.Context().Value(ServerIDContextKey).(string)
	if !ok || serverID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "server context required")
		return
	}

	roles, err := h.roleService.GetAll(r.Context(), serverID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, roles)
}

// Create godoc
// POST /api/servers/{serverID}/roles
// Body: { "name": "...", "color": "#...", "permissions": ["KICK_MEMBERS"] }
func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, serverID, ok := requireUserAndServer(w, r)
	if !ok {
		return
	}

	var req models.CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.roleService.Create(r.Context(), serverID, user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, role)
}

// Update godoc
// PATCH /api/servers/{serverID}/roles/{roleID}
func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, serverID, ok := requireUserAndServer(w, r)
	if !ok {
		return
	}

	roleID := r.PathValue("roleID")
	if roleID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "roleID is required")
		return
	}

	var req models.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.roleService.Update(r.Context(), serverID, user.ID, roleID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, role)
}

// Delete godoc
// DELETE /api/servers/{serverID}/roles/{roleID}
func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, serverID, ok := requireUserAndServer(w, r)
	if !ok {
		return
	}

	roleID := r.PathValue("roleID")
	if roleID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "roleID is required")
		return
	}

	if err := h.roleService.Delete(r.Context(), serverID, user.ID, roleID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "role deleted"})
}
