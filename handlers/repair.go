// Package handlers — RepairHandler: yapısal onarım HTTP endpoint'leri.
//
// Route'lar:
//
//	GET  /api/servers/{serverID}/repair → Diagnose (salt okunur, her üye)
//	POST /api/servers/{serverID}/repair → Repair (yalnızca owner — service kontrol eder)
package handlers

import (
	"net/http"

	"github.com/akinalp/kovan/pkg"
	"github.com/akinalp/kovan/services"
)

// RepairHandler, repair endpoint'lerini yöneten struct.
type RepairHandler struct {
	repairService services.RepairService
}

// NewRepairHandler, constructor.
func NewRepairHandler(repairService services.RepairService) *RepairHandler {
	return &RepairHandler{repairService: repairService}
}

// Diagnose godoc
// GET /api/servers/{serverID}/repair
func (h *RepairHandler) Diagnose(w http.ResponseWriter, r *http.Request) {
	serverID, ok := r.Context().Value(ServerIDContextKey).(string)
	if !ok || serverID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "server context required")
		return
	}

	report, err := h.repairService.Diagnose(r.Context(), serverID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, report)
}

// Repair godoc
// POST /api/servers/{serverID}/repair
func (h *RepairHandler) Repair(w http.ResponseWriter, r *http.Request) {
	user, serverID, ok := requireUserAndServer(w, r)
	if !ok {
		return
	}

	report, err := h.repairService.Repair(r.Context(), serverID, user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, report)
}
