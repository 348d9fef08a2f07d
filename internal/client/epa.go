package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"truckbay-api/internal/apperr"
	"truckbay-api/internal/model"
)

// epaMenuResponse is the raw menu-options payload. The registry serializes
// its XML menu as JSON, so every value arrives as a string.
type epaMenuResponse struct {
	MenuItem []struct {
		Text  string `json:"text"`
		Value string `json:"value"`
	} `json:"menuItem"`
}

// epaVehicleResponse is the raw vehicle detail payload. Absent fields stay
// empty strings and map to unknown, never to zero.
type epaVehicleResponse struct {
	ID              string `json:"id"`
	ATVType         string `json:"atvType"`
	City08          string `json:"city08"`
	Highway08       string `json:"highway08"`
	Comb08          string `json:"comb08"`
	CombA08         string `json:"combA08"`
	Range           string `json:"range"`
	BatteryCapacity string `json:"batteryCapacity"`
	Charge240       string `json:"charge240"`
	FuelCost08      string `json:"fuelCost08"`
	CO2             string `json:"co2"`
	CO2TailpipeGpm  string `json:"co2TailpipeGpm"`
	FuelType        string `json:"fuelType"`
	FuelType1       string `json:"fuelType1"`
	FuelType2       string `json:"fuelType2"`
	EngDscr         string `json:"eng_dscr"`
	Trany           string `json:"trany"`
	Drive           string `json:"drive"`
	Cylinders       string `json:"cylinders"`
	Displ           string `json:"displ"`
}

// Canonical fuel type labels
var epaFuelTypes = map[string]string{
	"regular gasoline":            "gasoline",
	"midgrade gasoline":           "gasoline",
	"premium gasoline":            "gasoline",
	"gasoline or e85":             "flex_fuel",
	"e85":                         "flex_fuel",
	"diesel":                      "diesel",
	"electricity":                 "electric",
	"compressed natural gas":      "cng",
	"cng":                         "cng",
	"hybrid":                      "hybrid",
	"regular gas and electricity": "hybrid",
	"premium gas or electricity":  "hybrid",
}

// EPAClient looks up fuel economy data by year, make and model. Missing EPA
// coverage is an expected outcome for commercial configurations, so lookup
// failures degrade to nil rather than erroring.
type EPAClient struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *RateLimiter
	logger      *slog.Logger
}

// NewEPAClient creates a fuel economy registry client
func NewEPAClient(baseURL string, timeout time.Duration, rl *RateLimiter) *EPAClient {
	return &EPAClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiter: rl,
		logger:      slog.Default(),
	}
}

// FindVehicleID resolves a (year, make, model) triple to a registry id.
// Zero options is not an error; it returns (0, nil). When several trims
// match, the first menu option wins; the registry orders options itself and
// trim disambiguation is not attempted.
func (c *EPAClient) FindVehicleID(ctx context.Context, year int, vehicleMake, modelName string) (int, error) {
	reqURL := fmt.Sprintf("%s/ws/rest/vehicle/menu/options?year=%d&make=%s&model=%s",
		c.baseURL, year, url.QueryEscape(vehicleMake), url.QueryEscape(modelName))

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return 0, err
	}

	var menu epaMenuResponse
	if err := json.Unmarshal(body, &menu); err != nil {
		return 0, apperr.UpstreamParse("failed to parse fuel economy menu response", err)
	}

	if len(menu.MenuItem) == 0 {
		return 0, nil
	}

	id, err := strconv.Atoi(strings.TrimSpace(menu.MenuItem[0].Value))
	if err != nil {
		return 0, apperr.UpstreamParse("fuel economy menu returned a non-numeric id", err)
	}

	return id, nil
}

// GetVehicleData fetches full attributes for a registry id
func (c *EPAClient) GetVehicleData(ctx context.Context, id int) (*model.EPAVehicleData, error) {
	reqURL := fmt.Sprintf("%s/ws/rest/vehicle/%d", c.baseURL, id)

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var raw epaVehicleResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperr.UpstreamParse("failed to parse fuel economy vehicle response", err)
	}

	data := &model.EPAVehicleData{
		EPAID:                   id,
		ATVType:                 optional(raw.ATVType),
		MPGCity:                 parseFloat(raw.City08),
		MPGHighway:              parseFloat(raw.Highway08),
		MPGCombined:             parseFloat(raw.Comb08),
		MPGe:                    parseFloat(raw.CombA08),
		ElectricRange:           parseFloat(raw.Range),
		BatteryCapacityKWh:      parseFloat(raw.BatteryCapacity),
		ChargeTime240V:          parseFloat(raw.Charge240),
		AnnualFuelCostEstimate:  parseFloat(raw.FuelCost08),
		CO2GramsPerMile:         parseFloat(raw.CO2),
		CO2TailpipeGramsPerMile: parseFloat(raw.CO2TailpipeGpm),
		FuelType1:               optional(raw.FuelType1),
		FuelType2:               optional(raw.FuelType2),
		EngineDescription:       optional(raw.EngDscr),
		TransmissionDescription: optional(raw.Trany),
		DriveType:               optional(raw.Drive),
		Cylinders:               parseInt(raw.Cylinders),
		DisplacementL:           parseFloat(raw.Displ),
	}

	if raw.FuelType != "" {
		canonical := NormalizeEPAFuelType(raw.FuelType)
		data.FuelType = &canonical
	}

	return data, nil
}

// GetDataForVehicle composes id lookup and detail fetch. Every failure path
// collapses to nil: callers must treat a nil result as "enrichment
// unavailable", not as a hard failure.
func (c *EPAClient) GetDataForVehicle(ctx context.Context, year int, vehicleMake, modelName string) *model.EPAVehicleData {
	id, err := c.FindVehicleID(ctx, year, vehicleMake, modelName)
	if err != nil {
		c.logger.Warn("fuel economy id lookup failed",
			"year", year, "make", vehicleMake, "model", modelName, "error", err)
		return nil
	}
	if id == 0 {
		return nil
	}

	data, err := c.GetVehicleData(ctx, id)
	if err != nil {
		c.logger.Warn("fuel economy detail fetch failed", "id", id, "error", err)
		return nil
	}

	return data
}

// NormalizeEPAFuelType maps a registry fuel label to the canonical
// enumeration. Unrecognized labels pass through lower-cased.
func NormalizeEPAFuelType(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := epaFuelTypes[normalized]; ok {
		return canonical
	}
	return normalized
}

func (c *EPAClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.Internal("failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError("fuel economy registry", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.UpstreamConnection("failed to read fuel economy response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.UpstreamConnection(
			fmt.Sprintf("fuel economy registry returned status %d", resp.StatusCode), nil)
	}

	return body, nil
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}
