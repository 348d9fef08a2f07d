package handler

import (
	"encoding/json"
	"net/http"

	"truckbay-api/internal/apperr"
	"truckbay-api/internal/model"
	"truckbay-api/internal/service"
)

// ComplianceHandler serves the weight compliance endpoint
type ComplianceHandler struct {
	compliance *service.ComplianceService
}

func NewComplianceHandler(compliance *service.ComplianceService) *ComplianceHandler {
	return &ComplianceHandler{compliance: compliance}
}

// Calculate computes a compliance report for a stored vehicle configuration
func (h *ComplianceHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.CalculateComplianceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request body"})
		return
	}

	result, err := h.compliance.Calculate(ctx, req.VehicleConfigID, req.EquipmentConfigID)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		if apperr.Is(err, apperr.KindConfigNotFound) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "Vehicle config not found"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Compliance calculation failed"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
