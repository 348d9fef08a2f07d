package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"truckbay-api/internal/apperr"
	"truckbay-api/internal/model"
	"truckbay-api/internal/service"
	"truckbay-api/internal/storage"
)

const maxImageUploadBytes = 10 << 20 // 10 MiB

// ListingHandler serves the listing CRUD and image upload endpoints
type ListingHandler struct {
	listings *service.ListingService
	store    storage.ObjectStore
}

func NewListingHandler(listings *service.ListingService, store storage.ObjectStore) *ListingHandler {
	return &ListingHandler{
		listings: listings,
		store:    store,
	}
}

// Create creates a listing, enriching it from the VIN
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}

	listing, err := h.listings.Create(ctx, req)
	if err != nil {
		if apperr.Is(err, apperr.KindInvalidInput) {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to create listing")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(listing)
}

// Get returns a single listing
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Listing id must be a number")
		return
	}

	listing, err := h.listings.Get(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Listing not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to fetch listing")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listing)
}

// List returns listings filtered by dealer and status
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dealerID, _ := strconv.Atoi(r.URL.Query().Get("dealer_id"))
	status := r.URL.Query().Get("status")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	response, err := h.listings.List(ctx, dealerID, status, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to list listings")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Update applies the mutable fields to a listing
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Listing id must be a number")
		return
	}

	var req model.UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}

	listing, err := h.listings.Update(ctx, id, req)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindNotFound:
			writeError(w, http.StatusNotFound, "not_found", "Listing not found")
		case apperr.KindInvalidInput:
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "database_error", "Failed to update listing")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listing)
}

// Delete removes a listing
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Listing id must be a number")
		return
	}

	if err := h.listings.Delete(ctx, id); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Listing not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to delete listing")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage stores a listing photo in the object store and records its URL
func (h *ListingHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Listing id must be a number")
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Expected multipart form with an image file")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Missing image file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "invalid_request", "Only image uploads are allowed")
		return
	}

	key := fmt.Sprintf("listings/%d/%d%s", id, time.Now().UnixNano(), path.Ext(header.Filename))

	url, err := h.store.Put(ctx, key, file, header.Size, contentType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "Failed to store image")
		return
	}

	if err := h.listings.AttachImage(ctx, id, url); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Listing not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to record image")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(model.ImageUploadResponse{URL: url, Key: key})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{
		Error:   code,
		Message: message,
	})
}
