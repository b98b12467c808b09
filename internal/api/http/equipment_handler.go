package http

import (
	"net/http"

	"equiplend-backend/internal/service"
)

type EquipmentHandler struct {
	equipmentSvc service.EquipmentService
}

func NewEquipmentHandler(equipmentSvc service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipmentSvc: equipmentSvc}
}

// GetAvailability reports the recomputed per-status unit counts for one
// equipment type.
func (h *EquipmentHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	availability, err := h.equipmentSvc.GetAvailability(r.Context(), equipmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availability)
}
