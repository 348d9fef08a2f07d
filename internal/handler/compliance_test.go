package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truckbay-api/internal/apperr"
	"truckbay-api/internal/model"
	"truckbay-api/internal/service"
)

type stubComplianceStore struct {
	vehicleConfigs   map[int]*model.VehicleConfig
	equipmentConfigs map[int]*model.EquipmentConfig
}

func (s *stubComplianceStore) GetVehicle(ctx context.Context, id int) (*model.Vehicle, error) {
	return nil, apperr.NotFound("vehicle not found")
}

func (s *stubComplianceStore) GetVehicleConfig(ctx context.Context, id int) (*model.VehicleConfig, error) {
	if cfg, ok := s.vehicleConfigs[id]; ok {
		return cfg, nil
	}
	return nil, apperr.NotFound("vehicle config not found")
}

func (s *stubComplianceStore) GetEquipmentConfig(ctx context.Context, id int) (*model.EquipmentConfig, error) {
	if cfg, ok := s.equipmentConfigs[id]; ok {
		return cfg, nil
	}
	return nil, apperr.NotFound("equipment config not found")
}

func newComplianceHandler() *ComplianceHandler {
	store := &stubComplianceStore{
		vehicleConfigs: map[int]*model.VehicleConfig{
			1: {ID: 1, CurbWeight: 10000, GVWR: 12000, GAWRFront: 5000, GAWRRear: 8000},
		},
		equipmentConfigs: map[int]*model.EquipmentConfig{
			7: {ID: 7, Weight: 3000},
		},
	}
	return NewComplianceHandler(service.NewComplianceService(store))
}

func postCompliance(t *testing.T, h *ComplianceHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/compliance/calculate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Calculate(rec, req)
	return rec
}

func TestComplianceCalculate_Success(t *testing.T) {
	h := newComplianceHandler()

	rec := postCompliance(t, h, `{"vehicleConfigId":1}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result model.ComplianceResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.GVWRCompliant)
	assert.Equal(t, 10000, result.TotalCombinedWeight)
	assert.Equal(t, 2000, result.PayloadRemaining)
	assert.NotNil(t, result.Warnings)
}

func TestComplianceCalculate_Overweight(t *testing.T) {
	h := newComplianceHandler()

	rec := postCompliance(t, h, `{"vehicleConfigId":1,"equipmentConfigId":7}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result model.ComplianceResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.GVWRCompliant)
	assert.Equal(t, -1000, result.PayloadRemaining)
	assert.NotEmpty(t, result.Warnings)
}

func TestComplianceCalculate_OptionIDsAccepted(t *testing.T) {
	h := newComplianceHandler()

	rec := postCompliance(t, h,
		`{"vehicleConfigId":1,"selectedVehicleOptions":[4,5],"selectedEquipmentOptions":[9]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Option ids carry no weight data, so the result matches the bare config
	var result model.ComplianceResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 10000, result.TotalCombinedWeight)
	assert.Equal(t, 2000, result.PayloadRemaining)
}

func TestComplianceCalculate_MissingConfig(t *testing.T) {
	h := newComplianceHandler()

	rec := postCompliance(t, h, `{"vehicleConfigId":99}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Vehicle config not found", body["error"])
}

func TestComplianceCalculate_MalformedBody(t *testing.T) {
	h := newComplianceHandler()

	rec := postCompliance(t, h, `{"vehicleConfigId":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
