package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"truckbay-api/internal/apperr"
	"truckbay-api/internal/model"
)

// ListingRepo persists marketplace listings
type ListingRepo struct {
	db *pgxpool.Pool
}

func NewListingRepo(db *pgxpool.Pool) *ListingRepo {
	return &ListingRepo{db: db}
}

// Create inserts a listing and fills its generated id and timestamps
func (r *ListingRepo) Create(ctx context.Context, l *model.Listing) error {
	attributes, err := marshalAttributes(l.Attributes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO listings (dealer_id, vin, year, make, model, price, mileage, status, image_urls, attributes)
		VALUES ($1, $2, NULLIF($3, 0), NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, '[]', $9)
		RETURNING id, created_at, updated_at
	`

	err = r.db.QueryRow(ctx, query,
		l.DealerID, l.VIN, l.Year, l.Make, l.Model, l.Price, l.Mileage, l.Status, attributes,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}

	return nil
}

// GetByID returns a listing by id
func (r *ListingRepo) GetByID(ctx context.Context, id int) (*model.Listing, error) {
	query := `
		SELECT id, dealer_id, vin, COALESCE(year, 0), COALESCE(make, ''), COALESCE(model, ''),
			price, mileage, status, image_urls, attributes, created_at, updated_at
		FROM listings
		WHERE id = $1
	`

	l, err := scanListing(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("listing not found")
		}
		return nil, fmt.Errorf("failed to query listing: %w", err)
	}

	return l, nil
}

// List returns listings filtered by dealer and status, newest first
func (r *ListingRepo) List(ctx context.Context, dealerID int, status string, limit, offset int) ([]model.Listing, int, error) {
	query := `
		SELECT id, dealer_id, vin, COALESCE(year, 0), COALESCE(make, ''), COALESCE(model, ''),
			price, mileage, status, image_urls, attributes, created_at, updated_at
		FROM listings
		WHERE 1=1
	`
	countQuery := `SELECT COUNT(*) FROM listings WHERE 1=1`

	args := []interface{}{}
	argIndex := 1

	if dealerID > 0 {
		filter := fmt.Sprintf(` AND dealer_id = $%d`, argIndex)
		query += filter
		countQuery += filter
		args = append(args, dealerID)
		argIndex++
	}

	if status != "" {
		filter := fmt.Sprintf(` AND status = $%d`, argIndex)
		query += filter
		countQuery += filter
		args = append(args, status)
		argIndex++
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *l)
	}

	return listings, total, rows.Err()
}

// Update persists the mutable listing fields
func (r *ListingRepo) Update(ctx context.Context, l *model.Listing) error {
	attributes, err := marshalAttributes(l.Attributes)
	if err != nil {
		return err
	}

	query := `
		UPDATE listings
		SET year = NULLIF($2, 0), make = NULLIF($3, ''), model = NULLIF($4, ''),
			price = $5, mileage = $6, status = $7, attributes = $8, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, l.ID, l.Year, l.Make, l.Model, l.Price, l.Mileage, l.Status, attributes)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("listing not found")
	}

	return nil
}

// CountUnenriched counts listings that have no enrichment attributes yet
func (r *ListingRepo) CountUnenriched(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM listings WHERE attributes IS NULL`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count unenriched listings: %w", err)
	}
	return total, nil
}

// ListUnenriched pages through listings without enrichment attributes in id
// order, starting after afterID
func (r *ListingRepo) ListUnenriched(ctx context.Context, afterID, limit int) ([]model.Listing, error) {
	query := `
		SELECT id, dealer_id, vin, COALESCE(year, 0), COALESCE(make, ''), COALESCE(model, ''),
			price, mileage, status, image_urls, attributes, created_at, updated_at
		FROM listings
		WHERE attributes IS NULL AND id > $1
		ORDER BY id
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unenriched listings: %w", err)
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *l)
	}

	return listings, rows.Err()
}

// Delete removes a listing
func (r *ListingRepo) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("listing not found")
	}
	return nil
}

// AddImageURL appends an uploaded image URL to the listing
func (r *ListingRepo) AddImageURL(ctx context.Context, id int, url string) error {
	query := `
		UPDATE listings
		SET image_urls = image_urls || to_jsonb($2::text), updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, url)
	if err != nil {
		return fmt.Errorf("failed to append image url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("listing not found")
	}
	return nil
}

func marshalAttributes(attrs *model.EnrichmentResult) ([]byte, error) {
	if attrs == nil {
		return nil, nil
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal listing attributes: %w", err)
	}
	return data, nil
}

func scanListing(row pgx.Row) (*model.Listing, error) {
	var (
		l          model.Listing
		imageURLs  []byte
		attributes []byte
	)

	err := row.Scan(
		&l.ID, &l.DealerID, &l.VIN, &l.Year, &l.Make, &l.Model,
		&l.Price, &l.Mileage, &l.Status, &imageURLs, &attributes,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(imageURLs) > 0 {
		if err := json.Unmarshal(imageURLs, &l.ImageURLs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal image urls: %w", err)
		}
	}
	if len(attributes) > 0 {
		if err := json.Unmarshal(attributes, &l.Attributes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal listing attributes: %w", err)
		}
	}

	return &l, nil
}
