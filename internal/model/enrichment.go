package model

import "time"

// Confidence labels derived from the registry's own error signaling.
// The decode either came back clean or it did not; there is no middle
// ground in the upstream signal, so only two variants exist.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// Data source labels recorded in provenance
const (
	SourceNHTSA = "nhtsa"
	SourceEPA   = "epa"
)

// VinDecodeResult holds the canonical vehicle attributes decoded from a VIN.
// Year, make and model are always present on a successful decode; everything
// else is best-effort.
type VinDecodeResult struct {
	VIN          string  `json:"vin"`
	Year         int     `json:"year"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Series       *string `json:"series,omitempty"`
	BodyStyle    *string `json:"bodyStyle,omitempty"`
	GVWR         *int    `json:"gvwr,omitempty"`
	Engine       *string `json:"engine,omitempty"`
	Transmission *string `json:"transmission,omitempty"`
	DriveType    *string `json:"driveType,omitempty"`
	FuelType     *string `json:"fuelType,omitempty"`

	// Surfaced through the provenance metadata, not serialized here
	Confidence Confidence `json:"-"`
}

// EPAVehicleData holds fuel economy registry attributes. A nil field means
// the registry did not publish it; zero is a real measurement and is kept.
type EPAVehicleData struct {
	EPAID   int     `json:"epaId"`
	ATVType *string `json:"atvType,omitempty"`

	// Fuel economy
	MPGCity     *float64 `json:"mpgCity,omitempty"`
	MPGHighway  *float64 `json:"mpgHighway,omitempty"`
	MPGCombined *float64 `json:"mpgCombined,omitempty"`
	MPGe        *float64 `json:"mpge,omitempty"`

	// Electric vehicle specifics
	ElectricRange      *float64 `json:"electricRange,omitempty"`
	BatteryCapacityKWh *float64 `json:"batteryCapacityKWh,omitempty"`
	ChargeTime240V     *float64 `json:"chargeTime240V,omitempty"`

	// Cost and emissions
	AnnualFuelCostEstimate  *float64 `json:"annualFuelCostEstimate,omitempty"`
	CO2GramsPerMile         *float64 `json:"co2GramsPerMile,omitempty"`
	CO2TailpipeGramsPerMile *float64 `json:"co2TailpipeGramsPerMile,omitempty"`

	// Engine detail
	FuelType                *string  `json:"fuelType,omitempty"`
	FuelType1               *string  `json:"fuelType1,omitempty"`
	FuelType2               *string  `json:"fuelType2,omitempty"`
	EngineDescription       *string  `json:"engineDescription,omitempty"`
	TransmissionDescription *string  `json:"transmissionDescription,omitempty"`
	DriveType               *string  `json:"driveType,omitempty"`
	Cylinders               *int     `json:"cylinders,omitempty"`
	DisplacementL           *float64 `json:"displacementL,omitempty"`
}

// EnrichmentMetadata is the provenance envelope attached to every decoded
// vehicle record. DecodedAt is set at decode time and never updated.
type EnrichmentMetadata struct {
	NHTSAConfidence Confidence `json:"nhtsaConfidence"`
	EPAAvailable    bool       `json:"epaAvailable"`
	DecodedAt       time.Time  `json:"decodedAt"`
	DataSources     []string   `json:"dataSources"`
}

// EnrichmentResult is the merged output of the enrichment pipeline
type EnrichmentResult struct {
	VinDecodeResult
	EPA      *EPAVehicleData    `json:"epa,omitempty"`
	Metadata EnrichmentMetadata `json:"enrichmentMetadata"`
}

// EnrichmentFailure records a failed enrichment attempt for later retry
type EnrichmentFailure struct {
	ID          int        `json:"id"`
	ListingID   int        `json:"listing_id"`
	VIN         string     `json:"vin"`
	ErrorKind   string     `json:"error_kind"`
	ErrorDetail string     `json:"error_detail"`
	Attempts    int        `json:"attempts"`
	LastAttempt time.Time  `json:"last_attempt"`
	NextAttempt *time.Time `json:"next_attempt,omitempty"`
	Resolved    bool       `json:"resolved"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
