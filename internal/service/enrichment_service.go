package service

import (
	"context"
	"log/slog"
	"time"

	"truckbay-api/internal/matching"
	"truckbay-api/internal/model"
	"truckbay-api/internal/retry"
)

// VinDecoder decodes a VIN against the vehicle registry
type VinDecoder interface {
	DecodeVin(ctx context.Context, vin string) (*model.VinDecodeResult, error)
}

// FuelEconomySource looks up fuel economy data; nil means no coverage
type FuelEconomySource interface {
	GetDataForVehicle(ctx context.Context, year int, vehicleMake, modelName string) *model.EPAVehicleData
}

// EnrichmentService runs the vehicle data enrichment pipeline: VIN decode,
// fuel economy cross-reference, merge with provenance.
type EnrichmentService struct {
	decoder  VinDecoder
	fuelEcon FuelEconomySource
	retryCfg retry.Config
	now      func() time.Time
	logger   *slog.Logger
}

// EnrichmentOption customizes the service
type EnrichmentOption func(*EnrichmentService)

// WithRetryConfig overrides the backoff applied to the VIN decode call
func WithRetryConfig(cfg retry.Config) EnrichmentOption {
	return func(s *EnrichmentService) {
		s.retryCfg = cfg
	}
}

// WithClock injects a clock for tests
func WithClock(now func() time.Time) EnrichmentOption {
	return func(s *EnrichmentService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewEnrichmentService wires the registry clients into the pipeline
func NewEnrichmentService(decoder VinDecoder, fuelEcon FuelEconomySource, opts ...EnrichmentOption) *EnrichmentService {
	s := &EnrichmentService{
		decoder:  decoder,
		fuelEcon: fuelEcon,
		retryCfg: retry.DefaultConfig(),
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enrich decodes a VIN and merges fuel economy data into one attributes
// record. The VIN decode is the primary source: its failure fails the whole
// enrichment. The fuel economy lookup is secondary and never aborts the
// result; its absence only changes provenance.
func (s *EnrichmentService) Enrich(ctx context.Context, vin string) (*model.EnrichmentResult, error) {
	var decoded *model.VinDecodeResult

	err := retry.Do(ctx, s.retryCfg, nil, func(ctx context.Context) error {
		var decodeErr error
		decoded, decodeErr = s.decoder.DecodeVin(ctx, vin)
		return decodeErr
	})
	if err != nil {
		return nil, err
	}

	result := &model.EnrichmentResult{
		VinDecodeResult: *decoded,
		Metadata: model.EnrichmentMetadata{
			NHTSAConfidence: decoded.Confidence,
			DecodedAt:       s.now().UTC(),
			DataSources:     []string{model.SourceNHTSA},
		},
	}

	if s.fuelEcon != nil {
		// The registry spells makes for consumers, not for VIN decoders
		epaMake := matching.CanonicalMake(decoded.Make)
		if epa := s.fuelEcon.GetDataForVehicle(ctx, decoded.Year, epaMake, decoded.Model); epa != nil {
			result.EPA = epa
			result.Metadata.EPAAvailable = true
			result.Metadata.DataSources = append(result.Metadata.DataSources, model.SourceEPA)
		}
	}

	return result, nil
}
