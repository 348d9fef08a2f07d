package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"truckbay-api/internal/apperr"
	"truckbay-api/internal/model"
)

// DealerRepo persists dealer accounts
type DealerRepo struct {
	db *pgxpool.Pool
}

func NewDealerRepo(db *pgxpool.Pool) *DealerRepo {
	return &DealerRepo{db: db}
}

// Create inserts a dealer and fills its generated id
func (r *DealerRepo) Create(ctx context.Context, d *model.Dealer) error {
	query := `
		INSERT INTO dealers (name, city, state, phone, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, d.Name, d.City, d.State, d.Phone, d.Email).
		Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert dealer: %w", err)
	}

	return nil
}

// GetByID returns a dealer by id
func (r *DealerRepo) GetByID(ctx context.Context, id int) (*model.Dealer, error) {
	query := `
		SELECT id, name, COALESCE(city, ''), COALESCE(state, ''), COALESCE(phone, ''), email, created_at
		FROM dealers
		WHERE id = $1
	`

	var d model.Dealer
	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Name, &d.City, &d.State, &d.Phone, &d.Email, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("dealer not found")
		}
		return nil, fmt.Errorf("failed to query dealer: %w", err)
	}

	return &d, nil
}

// List returns all dealers ordered by name
func (r *DealerRepo) List(ctx context.Context) ([]model.Dealer, error) {
	query := `
		SELECT id, name, COALESCE(city, ''), COALESCE(state, ''), COALESCE(phone, ''), email, created_at
		FROM dealers
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query dealers: %w", err)
	}
	defer rows.Close()

	var dealers []model.Dealer
	for rows.Next() {
		var d model.Dealer
		if err := rows.Scan(&d.ID, &d.Name, &d.City, &d.State, &d.Phone, &d.Email, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dealer: %w", err)
		}
		dealers = append(dealers, d)
	}

	return dealers, rows.Err()
}
