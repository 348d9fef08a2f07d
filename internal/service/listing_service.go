package service

import (
	"context"
	"log/slog"
	"strings"

	"truckbay-api/internal/apperr"
	"truckbay-api/internal/model"
)

// ListingStore persists listings
type ListingStore interface {
	Create(ctx context.Context, listing *model.Listing) error
	GetByID(ctx context.Context, id int) (*model.Listing, error)
	List(ctx context.Context, dealerID int, status string, limit, offset int) ([]model.Listing, int, error)
	Update(ctx context.Context, listing *model.Listing) error
	Delete(ctx context.Context, id int) error
	AddImageURL(ctx context.Context, id int, url string) error
}

// FailureRecorder records enrichment failures for later retry
type FailureRecorder interface {
	Record(ctx context.Context, failure *model.EnrichmentFailure) error
}

// Enricher runs the enrichment pipeline for a VIN
type Enricher interface {
	Enrich(ctx context.Context, vin string) (*model.EnrichmentResult, error)
}

// ListingService implements the listing workflow. Creation runs the
// enrichment pipeline; an enrichment failure degrades the listing to
// unenriched instead of blocking creation.
type ListingService struct {
	listings ListingStore
	enricher Enricher
	failures FailureRecorder
	logger   *slog.Logger
}

// NewListingService wires the listing workflow
func NewListingService(listings ListingStore, enricher Enricher, failures FailureRecorder) *ListingService {
	return &ListingService{
		listings: listings,
		enricher: enricher,
		failures: failures,
		logger:   slog.Default(),
	}
}

// Create validates the request, enriches the VIN and persists the listing
func (s *ListingService) Create(ctx context.Context, req model.CreateListingRequest) (*model.Listing, error) {
	vin := strings.ToUpper(strings.TrimSpace(req.VIN))
	if len(vin) != 17 {
		return nil, apperr.InvalidInput("VIN must be exactly 17 characters")
	}
	if req.DealerID <= 0 {
		return nil, apperr.InvalidInput("dealer_id is required")
	}

	listing := &model.Listing{
		DealerID: req.DealerID,
		VIN:      vin,
		Price:    req.Price,
		Mileage:  req.Mileage,
		Status:   model.ListingStatusDraft,
	}

	enrichment, err := s.enricher.Enrich(ctx, vin)
	if err != nil {
		// Degraded listing: keep it, record the failure for the backfill
		s.logger.Warn("enrichment failed at listing creation", "vin", vin, "error", err)
	} else {
		listing.Year = enrichment.Year
		listing.Make = enrichment.Make
		listing.Model = enrichment.Model
		listing.Attributes = enrichment
	}

	if createErr := s.listings.Create(ctx, listing); createErr != nil {
		return nil, createErr
	}

	if err != nil && s.failures != nil {
		failure := &model.EnrichmentFailure{
			ListingID:   listing.ID,
			VIN:         vin,
			ErrorKind:   string(apperr.KindOf(err)),
			ErrorDetail: err.Error(),
		}
		if recErr := s.failures.Record(ctx, failure); recErr != nil {
			s.logger.Error("failed to record enrichment failure", "vin", vin, "error", recErr)
		}
	}

	return listing, nil
}

// Get returns a listing by id
func (s *ListingService) Get(ctx context.Context, id int) (*model.Listing, error) {
	return s.listings.GetByID(ctx, id)
}

// List returns listings filtered by dealer and status
func (s *ListingService) List(ctx context.Context, dealerID int, status string, limit, offset int) (*model.ListingsResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	listings, total, err := s.listings.List(ctx, dealerID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	if listings == nil {
		listings = []model.Listing{}
	}

	return &model.ListingsResponse{Listings: listings, Total: total}, nil
}

// Update applies the mutable fields to a listing
func (s *ListingService) Update(ctx context.Context, id int, req model.UpdateListingRequest) (*model.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Price != nil {
		listing.Price = req.Price
	}
	if req.Mileage != nil {
		listing.Mileage = req.Mileage
	}
	if req.Status != nil {
		switch *req.Status {
		case model.ListingStatusDraft, model.ListingStatusPublished, model.ListingStatusSold:
			listing.Status = *req.Status
		default:
			return nil, apperr.InvalidInput("invalid listing status")
		}
	}

	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Delete removes a listing
func (s *ListingService) Delete(ctx context.Context, id int) error {
	return s.listings.Delete(ctx, id)
}

// AttachImage records an uploaded image URL on the listing
func (s *ListingService) AttachImage(ctx context.Context, id int, url string) error {
	if _, err := s.listings.GetByID(ctx, id); err != nil {
		return err
	}
	return s.listings.AddImageURL(ctx, id, url)
}
