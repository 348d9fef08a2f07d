package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"truckbay-api/internal/apperr"
	"truckbay-api/internal/model"
	"truckbay-api/internal/repository"
)

// DealerHandler serves dealer onboarding and lookup
type DealerHandler struct {
	repo *repository.DealerRepo
}

func NewDealerHandler(repo *repository.DealerRepo) *DealerHandler {
	return &DealerHandler{repo: repo}
}

// Create onboards a new dealer
func (h *DealerHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.CreateDealerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "Name and email are required")
		return
	}

	dealer := &model.Dealer{
		Name:  strings.TrimSpace(req.Name),
		City:  strings.TrimSpace(req.City),
		State: strings.TrimSpace(req.State),
		Phone: strings.TrimSpace(req.Phone),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
	}

	if err := h.repo.Create(ctx, dealer); err != nil {
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to create dealer")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(dealer)
}

// Get returns a dealer by id
func (h *DealerHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Dealer id must be a number")
		return
	}

	dealer, err := h.repo.GetByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Dealer not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to fetch dealer")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dealer)
}

// List returns all dealers
func (h *DealerHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dealers, err := h.repo.List(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to list dealers")
		return
	}

	if dealers == nil {
		dealers = []model.Dealer{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.DealersResponse{Dealers: dealers})
}
