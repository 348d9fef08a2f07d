package model

import "time"

// DecodeVinRequest is the body of the VIN decode endpoint
type DecodeVinRequest struct {
	VIN string `json:"vin"`
}

// DecodeVinResponse wraps a successful decode
type DecodeVinResponse struct {
	Success bool              `json:"success"`
	Data    *EnrichmentResult `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// CalculateComplianceRequest is the body of the compliance endpoint.
// The option id lists are accepted on the wire but stored configs carry
// no per-option weight data, so the calculation ignores them.
type CalculateComplianceRequest struct {
	VehicleConfigID          int   `json:"vehicleConfigId"`
	EquipmentConfigID        *int  `json:"equipmentConfigId,omitempty"`
	SelectedVehicleOptions   []int `json:"selectedVehicleOptions,omitempty"`
	SelectedEquipmentOptions []int `json:"selectedEquipmentOptions,omitempty"`
}

// CreateListingRequest is the body of the listing creation endpoint
type CreateListingRequest struct {
	DealerID int      `json:"dealer_id"`
	VIN      string   `json:"vin"`
	Price    *float64 `json:"price,omitempty"`
	Mileage  *int     `json:"mileage,omitempty"`
}

// UpdateListingRequest carries the mutable listing fields
type UpdateListingRequest struct {
	Price   *float64 `json:"price,omitempty"`
	Mileage *int     `json:"mileage,omitempty"`
	Status  *string  `json:"status,omitempty"`
}

// CreateDealerRequest is the body of the dealer onboarding endpoint
type CreateDealerRequest struct {
	Name  string `json:"name"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email"`
}

// ListingsResponse wraps a listing collection
type ListingsResponse struct {
	Listings []Listing `json:"listings"`
	Total    int       `json:"total"`
}

// DealersResponse wraps a dealer collection
type DealersResponse struct {
	Dealers []Dealer `json:"dealers"`
}

// ImageUploadResponse is returned after a listing image upload
type ImageUploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// HealthResponse is the health check body
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the canonical error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
