package model

import "time"

// Listing statuses
const (
	ListingStatusDraft     = "draft"
	ListingStatusPublished = "published"
	ListingStatusSold      = "sold"
)

// Dealer is a marketplace seller account
type Dealer struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Listing is a vehicle offered for sale by a dealer
type Listing struct {
	ID        int      `json:"id"`
	DealerID  int      `json:"dealer_id"`
	VIN       string   `json:"vin"`
	Year      int      `json:"year"`
	Make      string   `json:"make"`
	Model     string   `json:"model"`
	Price     *float64 `json:"price,omitempty"`
	Mileage   *int     `json:"mileage,omitempty"`
	Status    string   `json:"status"`
	ImageURLs []string `json:"image_urls,omitempty"`

	// Enrichment output, persisted as JSON alongside the listing
	Attributes *EnrichmentResult `json:"attributes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
