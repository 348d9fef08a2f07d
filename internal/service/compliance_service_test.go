package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truckbay-api/internal/apperr"
	"truckbay-api/internal/model"
)

type fakeComplianceStore struct {
	vehicles         map[int]*model.Vehicle
	vehicleConfigs   map[int]*model.VehicleConfig
	equipmentConfigs map[int]*model.EquipmentConfig
}

func (f *fakeComplianceStore) GetVehicle(ctx context.Context, id int) (*model.Vehicle, error) {
	if v, ok := f.vehicles[id]; ok {
		return v, nil
	}
	return nil, apperr.NotFound("vehicle not found")
}

func (f *fakeComplianceStore) GetVehicleConfig(ctx context.Context, id int) (*model.VehicleConfig, error) {
	if cfg, ok := f.vehicleConfigs[id]; ok {
		return cfg, nil
	}
	return nil, apperr.NotFound("vehicle config not found")
}

func (f *fakeComplianceStore) GetEquipmentConfig(ctx context.Context, id int) (*model.EquipmentConfig, error) {
	if cfg, ok := f.equipmentConfigs[id]; ok {
		return cfg, nil
	}
	return nil, apperr.NotFound("equipment config not found")
}

func f550Config() *model.VehicleConfig {
	return &model.VehicleConfig{
		ID:         1,
		CurbWeight: 10000,
		GVWR:       12000,
		GAWRFront:  5000,
		GAWRRear:   8000,
	}
}

func newTestComplianceService(store *fakeComplianceStore) *ComplianceService {
	return NewComplianceService(store)
}

func TestCalculate_CompliantWithoutEquipment(t *testing.T) {
	store := &fakeComplianceStore{vehicleConfigs: map[int]*model.VehicleConfig{1: f550Config()}}
	svc := newTestComplianceService(store)

	result, err := svc.Calculate(context.Background(), 1, nil)
	require.NoError(t, err)

	assert.Equal(t, 10000, result.TotalCombinedWeight)
	assert.Equal(t, 4000, result.FrontAxleWeight)
	assert.Equal(t, 6000, result.RearAxleWeight)
	assert.True(t, result.GVWRCompliant)
	assert.True(t, result.GAWRFrontCompliant)
	assert.True(t, result.GAWRRearCompliant)
	assert.Equal(t, 2000, result.PayloadRemaining)
	assert.Empty(t, result.Warnings)
	assert.Empty(t, result.Recommendations)
}

func TestCalculate_OverweightWithEquipment(t *testing.T) {
	store := &fakeComplianceStore{
		vehicleConfigs:   map[int]*model.VehicleConfig{1: f550Config()},
		equipmentConfigs: map[int]*model.EquipmentConfig{7: {ID: 7, Weight: 3000}},
	}
	svc := newTestComplianceService(store)

	equipmentID := 7
	result, err := svc.Calculate(context.Background(), 1, &equipmentID)
	require.NoError(t, err)

	assert.Equal(t, 13000, result.TotalCombinedWeight)
	assert.Equal(t, 5200, result.FrontAxleWeight)
	assert.Equal(t, 7800, result.RearAxleWeight)
	assert.False(t, result.GVWRCompliant)
	assert.False(t, result.GAWRFrontCompliant)
	assert.True(t, result.GAWRRearCompliant)
	assert.Equal(t, -1000, result.PayloadRemaining)

	// Warnings keep a fixed order with exact overage amounts
	require.Len(t, result.Warnings, 2)
	assert.Equal(t, "Total combined weight 13000 lbs exceeds GVWR 12000 lbs by 1000 lbs", result.Warnings[0])
	assert.Equal(t, "Front axle load 5200 lbs exceeds front GAWR 5000 lbs by 200 lbs", result.Warnings[1])

	require.Len(t, result.Recommendations, 2)
	assert.Equal(t, "Payload capacity exceeded by 1000 lbs", result.Recommendations[0])
	assert.Contains(t, result.Recommendations[1], "higher GVWR")
}

func TestCalculate_ExactlyAtLimitsIsCompliant(t *testing.T) {
	store := &fakeComplianceStore{
		vehicleConfigs: map[int]*model.VehicleConfig{1: {
			ID:         1,
			CurbWeight: 12000,
			GVWR:       12000,
			GAWRFront:  4800,
			GAWRRear:   7200,
		}},
	}
	svc := newTestComplianceService(store)

	result, err := svc.Calculate(context.Background(), 1, nil)
	require.NoError(t, err)

	assert.True(t, result.GVWRCompliant)
	assert.True(t, result.GAWRFrontCompliant)
	assert.True(t, result.GAWRRearCompliant)
	assert.Equal(t, 0, result.PayloadRemaining)
	assert.Empty(t, result.Warnings)
	// Zero remaining payload still draws the low-margin advisory
	require.Len(t, result.Recommendations, 1)
	assert.Contains(t, result.Recommendations[0], "only 0 lbs")
}

func TestCalculate_LowPayloadMarginAdvisory(t *testing.T) {
	cfg := f550Config()
	cfg.CurbWeight = 11600
	store := &fakeComplianceStore{vehicleConfigs: map[int]*model.VehicleConfig{1: cfg}}
	svc := newTestComplianceService(store)

	result, err := svc.Calculate(context.Background(), 1, nil)
	require.NoError(t, err)

	assert.True(t, result.GVWRCompliant)
	assert.Equal(t, 400, result.PayloadRemaining)
	require.Len(t, result.Recommendations, 1)
	assert.Contains(t, result.Recommendations[0], "only 400 lbs")
}

func TestCalculate_MissingVehicleConfig(t *testing.T) {
	store := &fakeComplianceStore{}
	svc := newTestComplianceService(store)

	_, err := svc.Calculate(context.Background(), 99, nil)
	assert.True(t, apperr.Is(err, apperr.KindConfigNotFound))
}

func TestCalculate_MissingEquipmentConfigTreatedAsNone(t *testing.T) {
	store := &fakeComplianceStore{vehicleConfigs: map[int]*model.VehicleConfig{1: f550Config()}}
	svc := newTestComplianceService(store)

	equipmentID := 404
	result, err := svc.Calculate(context.Background(), 1, &equipmentID)
	require.NoError(t, err)
	assert.Equal(t, 10000, result.TotalCombinedWeight)
}

func TestCalculate_ToleratesOrphanedConfig(t *testing.T) {
	cfg := f550Config()
	cfg.VehicleID = 9
	store := &fakeComplianceStore{vehicleConfigs: map[int]*model.VehicleConfig{1: cfg}}
	svc := newTestComplianceService(store)

	result, err := svc.Calculate(context.Background(), 1, nil)
	require.NoError(t, err, "a missing parent vehicle must not block the calculation")
	assert.Equal(t, 10000, result.TotalCombinedWeight)
}

func TestCalculate_ConfigRatioOverridesDefault(t *testing.T) {
	ratio := 0.5
	cfg := f550Config()
	cfg.FrontAxleRatio = &ratio
	store := &fakeComplianceStore{vehicleConfigs: map[int]*model.VehicleConfig{1: cfg}}
	svc := newTestComplianceService(store)

	result, err := svc.Calculate(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 5000, result.FrontAxleWeight)
	assert.Equal(t, 5000, result.RearAxleWeight)
}

func TestCalculate_IsIdempotent(t *testing.T) {
	store := &fakeComplianceStore{
		vehicleConfigs:   map[int]*model.VehicleConfig{1: f550Config()},
		equipmentConfigs: map[int]*model.EquipmentConfig{7: {ID: 7, Weight: 3000}},
	}
	svc := newTestComplianceService(store)

	equipmentID := 7
	first, err := svc.Calculate(context.Background(), 1, &equipmentID)
	require.NoError(t, err)
	second, err := svc.Calculate(context.Background(), 1, &equipmentID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeCompliance_NegativeWeightsClampToZero(t *testing.T) {
	cfg := &model.VehicleConfig{CurbWeight: -500, GVWR: 12000, GAWRFront: 5000, GAWRRear: 8000}

	result := computeCompliance(cfg, -100, 0.40)

	assert.Equal(t, 0, result.TotalCombinedWeight)
	assert.Equal(t, 12000, result.PayloadRemaining)
	assert.True(t, result.GVWRCompliant)
}

func TestComputeCompliance_AxleSplitRounds(t *testing.T) {
	cfg := &model.VehicleConfig{CurbWeight: 10001, GVWR: 12000, GAWRFront: 5000, GAWRRear: 8000}

	result := computeCompliance(cfg, 0, 0.40)

	// 10001 * 0.40 = 4000.4, rounds down; rear takes the remainder
	assert.Equal(t, 4000, result.FrontAxleWeight)
	assert.Equal(t, 6001, result.RearAxleWeight)
	assert.Equal(t, result.TotalCombinedWeight, result.FrontAxleWeight+result.RearAxleWeight)
}
