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

// VehicleRepo reads the vehicle and configuration records the compliance
// calculator depends on. All access is read-only.
type VehicleRepo struct {
	db *pgxpool.Pool
}

func NewVehicleRepo(db *pgxpool.Pool) *VehicleRepo {
	return &VehicleRepo{db: db}
}

// GetVehicle returns a vehicle by id
func (r *VehicleRepo) GetVehicle(ctx context.Context, id int) (*model.Vehicle, error) {
	query := `
		SELECT id, year, make, model, COALESCE(body_style, ''), created_at
		FROM vehicles
		WHERE id = $1
	`

	var v model.Vehicle
	err := r.db.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.Year, &v.Make, &v.Model, &v.BodyStyle, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("vehicle not found")
		}
		return nil, fmt.Errorf("failed to query vehicle: %w", err)
	}

	return &v, nil
}

// GetVehicleConfig returns a vehicle configuration by id
func (r *VehicleRepo) GetVehicleConfig(ctx context.Context, id int) (*model.VehicleConfig, error) {
	query := `
		SELECT id, vehicle_id, name, curb_weight, gvwr, gawr_front, gawr_rear, front_axle_ratio
		FROM vehicle_configs
		WHERE id = $1
	`

	var cfg model.VehicleConfig
	err := r.db.QueryRow(ctx, query, id).Scan(
		&cfg.ID, &cfg.VehicleID, &cfg.Name, &cfg.CurbWeight,
		&cfg.GVWR, &cfg.GAWRFront, &cfg.GAWRRear, &cfg.FrontAxleRatio,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("vehicle config not found")
		}
		return nil, fmt.Errorf("failed to query vehicle config: %w", err)
	}

	return &cfg, nil
}

// GetEquipmentConfig returns an equipment configuration by id
func (r *VehicleRepo) GetEquipmentConfig(ctx context.Context, id int) (*model.EquipmentConfig, error) {
	query := `
		SELECT id, name, weight
		FROM equipment_configs
		WHERE id = $1
	`

	var eq model.EquipmentConfig
	err := r.db.QueryRow(ctx, query, id).Scan(&eq.ID, &eq.Name, &eq.Weight)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("equipment config not found")
		}
		return nil, fmt.Errorf("failed to query equipment config: %w", err)
	}

	return &eq, nil
}
