package service

import (
	"context"
	"fmt"
	"log/slog"

	"truckbay-api/internal/apperr"
	"truckbay-api/internal/model"
)

const (
	// Default axle load split applied when a configuration carries no
	// distribution data of its own. A placeholder ratio, not physics.
	defaultFrontAxleRatio = 0.40

	// Remaining payload below this margin triggers an advisory
	lowPayloadMarginLbs = 500
)

// ComplianceStore provides read access to the persisted configurations
type ComplianceStore interface {
	GetVehicle(ctx context.Context, id int) (*model.Vehicle, error)
	GetVehicleConfig(ctx context.Context, id int) (*model.VehicleConfig, error)
	GetEquipmentConfig(ctx context.Context, id int) (*model.EquipmentConfig, error)
}

// ComplianceService computes weight compliance for a stored vehicle
// configuration with an optional equipment configuration.
type ComplianceService struct {
	store          ComplianceStore
	frontAxleRatio float64
	logger         *slog.Logger
}

// ComplianceOption customizes the service
type ComplianceOption func(*ComplianceService)

// WithFrontAxleRatio overrides the default front axle load share
func WithFrontAxleRatio(ratio float64) ComplianceOption {
	return func(s *ComplianceService) {
		if ratio > 0 && ratio < 1 {
			s.frontAxleRatio = ratio
		}
	}
}

// NewComplianceService creates a compliance calculator over the store
func NewComplianceService(store ComplianceStore, opts ...ComplianceOption) *ComplianceService {
	s := &ComplianceService{
		store:          store,
		frontAxleRatio: defaultFrontAxleRatio,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calculate loads the vehicle configuration and computes the compliance
// report. The vehicle configuration is mandatory; a missing equipment
// configuration is treated as no equipment selected.
func (s *ComplianceService) Calculate(ctx context.Context, vehicleConfigID int, equipmentConfigID *int) (*model.ComplianceResult, error) {
	cfg, err := s.store.GetVehicleConfig(ctx, vehicleConfigID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.ConfigNotFound("vehicle config not found")
		}
		return nil, err
	}

	if cfg.VehicleID > 0 {
		vehicle, err := s.store.GetVehicle(ctx, cfg.VehicleID)
		switch {
		case err == nil:
			s.logger.Debug("calculating compliance",
				"vehicle_config_id", cfg.ID,
				"year", vehicle.Year, "make", vehicle.Make, "model", vehicle.Model)
		case apperr.Is(err, apperr.KindNotFound):
			// Orphaned config; the weight figures are on the config itself
			s.logger.Warn("vehicle record missing for config", "vehicle_id", cfg.VehicleID)
		default:
			return nil, err
		}
	}

	equipmentWeight := 0
	if equipmentConfigID != nil {
		equipment, err := s.store.GetEquipmentConfig(ctx, *equipmentConfigID)
		switch {
		case err == nil:
			equipmentWeight = equipment.Weight
		case apperr.Is(err, apperr.KindNotFound):
			// No equipment selected; not an error
			s.logger.Debug("equipment config not found, assuming none",
				"equipment_config_id", *equipmentConfigID)
		default:
			return nil, err
		}
	}

	ratio := s.frontAxleRatio
	if cfg.FrontAxleRatio != nil {
		ratio = *cfg.FrontAxleRatio
	}

	result := computeCompliance(cfg, equipmentWeight, ratio)
	return &result, nil
}

// computeCompliance is the pure weight arithmetic. Missing source weights
// are zero, never unknown: the calculation always produces numbers.
func computeCompliance(cfg *model.VehicleConfig, equipmentWeight int, frontAxleRatio float64) model.ComplianceResult {
	if equipmentWeight < 0 {
		equipmentWeight = 0
	}
	curb := cfg.CurbWeight
	if curb < 0 {
		curb = 0
	}

	total := curb + equipmentWeight
	front := int(float64(total)*frontAxleRatio + 0.5)
	rear := total - front

	result := model.ComplianceResult{
		GVWRCompliant:       total <= cfg.GVWR,
		GAWRFrontCompliant:  front <= cfg.GAWRFront,
		GAWRRearCompliant:   rear <= cfg.GAWRRear,
		TotalCombinedWeight: total,
		FrontAxleWeight:     front,
		RearAxleWeight:      rear,
		PayloadRemaining:    cfg.GVWR - total,
		Warnings:            []string{},
		Recommendations:     []string{},
	}

	// Warning order is fixed: GVWR, then front axle, then rear axle
	if !result.GVWRCompliant {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Total combined weight %d lbs exceeds GVWR %d lbs by %d lbs",
			total, cfg.GVWR, total-cfg.GVWR))
	}
	if !result.GAWRFrontCompliant {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Front axle load %d lbs exceeds front GAWR %d lbs by %d lbs",
			front, cfg.GAWRFront, front-cfg.GAWRFront))
	}
	if !result.GAWRRearCompliant {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Rear axle load %d lbs exceeds rear GAWR %d lbs by %d lbs",
			rear, cfg.GAWRRear, rear-cfg.GAWRRear))
	}

	if result.PayloadRemaining < 0 {
		result.Recommendations = append(result.Recommendations, fmt.Sprintf(
			"Payload capacity exceeded by %d lbs", -result.PayloadRemaining))
	} else if result.PayloadRemaining < lowPayloadMarginLbs {
		result.Recommendations = append(result.Recommendations, fmt.Sprintf(
			"Remaining payload capacity is only %d lbs; consider a higher-capacity configuration",
			result.PayloadRemaining))
	}
	if !result.GVWRCompliant {
		result.Recommendations = append(result.Recommendations,
			"Reduce equipment weight or select a vehicle with a higher GVWR")
	}

	return result
}
