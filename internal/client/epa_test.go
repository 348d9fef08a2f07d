package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindVehicleID_FirstOptionWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/rest/vehicle/menu/options", r.URL.Path)
		assert.Equal(t, "2022", r.URL.Query().Get("year"))
		assert.Equal(t, "Ford", r.URL.Query().Get("make"))
		assert.Equal(t, "F-250", r.URL.Query().Get("model"))

		w.Write([]byte(`{"menuItem":[
			{"text":"Auto 10-spd, 8 cyl, 6.2 L", "value":"44071"},
			{"text":"Auto 10-spd, 8 cyl, 7.3 L", "value":"44072"}
		]}`))
	}))
	defer server.Close()

	c := NewEPAClient(server.URL, time.Second, nil)

	id, err := c.FindVehicleID(context.Background(), 2022, "Ford", "F-250")
	require.NoError(t, err)
	assert.Equal(t, 44071, id)
}

func TestFindVehicleID_NoOptionsIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"menuItem":[]}`))
	}))
	defer server.Close()

	c := NewEPAClient(server.URL, time.Second, nil)

	id, err := c.FindVehicleID(context.Background(), 2022, "Freightliner", "M2 106")
	require.NoError(t, err)
	assert.Equal(t, 0, id)
}

func TestGetVehicleData_ParsesStringFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/rest/vehicle/44071", r.URL.Path)
		w.Write([]byte(`{
			"id": "44071",
			"city08": "15",
			"highway08": "19",
			"comb08": "16",
			"fuelCost08": "3850",
			"co2TailpipeGpm": "555.4",
			"fuelType": "Regular Gasoline",
			"fuelType1": "Regular Gasoline",
			"trany": "Automatic 10-spd",
			"drive": "4-Wheel Drive",
			"cylinders": "8",
			"displ": "6.2"
		}`))
	}))
	defer server.Close()

	c := NewEPAClient(server.URL, time.Second, nil)

	data, err := c.GetVehicleData(context.Background(), 44071)
	require.NoError(t, err)

	assert.Equal(t, 44071, data.EPAID)
	require.NotNil(t, data.MPGCity)
	assert.Equal(t, 15.0, *data.MPGCity)
	require.NotNil(t, data.MPGCombined)
	assert.Equal(t, 16.0, *data.MPGCombined)
	require.NotNil(t, data.AnnualFuelCostEstimate)
	assert.Equal(t, 3850.0, *data.AnnualFuelCostEstimate)
	require.NotNil(t, data.CO2TailpipeGramsPerMile)
	assert.Equal(t, 555.4, *data.CO2TailpipeGramsPerMile)
	require.NotNil(t, data.FuelType)
	assert.Equal(t, "gasoline", *data.FuelType)
	require.NotNil(t, data.Cylinders)
	assert.Equal(t, 8, *data.Cylinders)
}

func TestGetVehicleData_AbsentFieldsStayNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"44071","city08":"","range":"","batteryCapacity":""}`))
	}))
	defer server.Close()

	c := NewEPAClient(server.URL, time.Second, nil)

	data, err := c.GetVehicleData(context.Background(), 44071)
	require.NoError(t, err)

	assert.Nil(t, data.MPGCity)
	assert.Nil(t, data.ElectricRange)
	assert.Nil(t, data.BatteryCapacityKWh)
	assert.Nil(t, data.FuelType)
}

func TestGetDataForVehicle_DegradesToNil(t *testing.T) {
	t.Run("no coverage", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"menuItem":[]}`))
		}))
		defer server.Close()

		c := NewEPAClient(server.URL, time.Second, nil)
		assert.Nil(t, c.GetDataForVehicle(context.Background(), 2023, "Peterbilt", "579"))
	})

	t.Run("registry down", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		c := NewEPAClient(server.URL, time.Second, nil)
		assert.Nil(t, c.GetDataForVehicle(context.Background(), 2023, "Ford", "F-250"))
	})

	t.Run("detail fetch fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/ws/rest/vehicle/menu/options" {
				w.Write([]byte(`{"menuItem":[{"text":"trim","value":"44071"}]}`))
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		c := NewEPAClient(server.URL, time.Second, nil)
		assert.Nil(t, c.GetDataForVehicle(context.Background(), 2022, "Ford", "F-250"))
	})
}

func TestNormalizeEPAFuelType(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Diesel", "diesel"},
		{"Regular Gasoline", "gasoline"},
		{"Premium Gasoline", "gasoline"},
		{"Electricity", "electric"},
		{"Compressed Natural Gas", "cng"},
		{"Gasoline or E85", "flex_fuel"},
		{"Regular Gas and Electricity", "hybrid"},
		// Unrecognized labels pass through lower-cased
		{"Hydrogen Fuel Cell", "hydrogen fuel cell"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEPAFuelType(tt.raw), "raw %q", tt.raw)
	}
}
