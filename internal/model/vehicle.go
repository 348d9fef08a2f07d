package model

import "time"

// Vehicle is a catalog vehicle a configuration belongs to
type Vehicle struct {
	ID        int       `json:"id"`
	Year      int       `json:"year"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	BodyStyle string    `json:"body_style,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// VehicleConfig holds the weight figures the compliance calculator reads.
// Ratings are in pounds.
type VehicleConfig struct {
	ID         int     `json:"id"`
	VehicleID  int     `json:"vehicle_id"`
	Name       string  `json:"name"`
	CurbWeight int     `json:"curb_weight"`
	GVWR       int     `json:"gvwr"`
	GAWRFront  int     `json:"gawr_front"`
	GAWRRear   int     `json:"gawr_rear"`
	// Optional per-config axle split; nil falls back to the calculator default
	FrontAxleRatio *float64 `json:"front_axle_ratio,omitempty"`
}

// EquipmentConfig is an optional body/equipment package mounted on a vehicle
type EquipmentConfig struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

// ComplianceResult is the output of the compliance calculator. A false flag
// always has a matching warning entry.
type ComplianceResult struct {
	GVWRCompliant      bool `json:"gvwrCompliant"`
	GAWRFrontCompliant bool `json:"gawrFrontCompliant"`
	GAWRRearCompliant  bool `json:"gawrRearCompliant"`

	TotalCombinedWeight int `json:"totalCombinedWeight"`
	FrontAxleWeight     int `json:"frontAxleWeight"`
	RearAxleWeight      int `json:"rearAxleWeight"`
	PayloadRemaining    int `json:"payloadRemaining"`

	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
}
