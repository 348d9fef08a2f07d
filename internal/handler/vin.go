package handler

import (
	"encoding/json"
	"net/http"

	"truckbay-api/internal/apperr"
	"truckbay-api/internal/model"
	"truckbay-api/internal/service"
)

// VinHandler serves the VIN decode endpoint
type VinHandler struct {
	enrichment *service.EnrichmentService
}

func NewVinHandler(enrichment *service.EnrichmentService) *VinHandler {
	return &VinHandler{enrichment: enrichment}
}

// Decode runs the enrichment pipeline for the VIN in the request body
func (h *VinHandler) Decode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.DecodeVinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVinError(w, http.StatusBadRequest, "Invalid VIN")
		return
	}

	result, err := h.enrichment.Enrich(ctx, req.VIN)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindInvalidInput:
			writeVinError(w, http.StatusBadRequest, "Invalid VIN")
		case apperr.KindNotFound:
			writeVinError(w, http.StatusNotFound, "No data found for VIN")
		default:
			writeVinError(w, http.StatusInternalServerError, "VIN decode failed")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.DecodeVinResponse{
		Success: true,
		Data:    result,
	})
}

func writeVinError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.DecodeVinResponse{
		Success: false,
		Error:   message,
	})
}
