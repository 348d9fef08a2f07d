package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"truckbay-api/internal/apperr"
	"truckbay-api/internal/matching"
	"truckbay-api/internal/model"
)

const vinLength = 17

// nhtsaDecodeResponse is the raw vPIC DecodeVinValues payload
type nhtsaDecodeResponse struct {
	Count   int    `json:"Count"`
	Message string `json:"Message"`
	Results []struct {
		ModelYear         string `json:"ModelYear"`
		Make              string `json:"Make"`
		Model             string `json:"Model"`
		Series            string `json:"Series"`
		BodyClass         string `json:"BodyClass"`
		GVWR              string `json:"GVWR"`
		EngineModel       string `json:"EngineModel"`
		EngineCylinders   string `json:"EngineCylinders"`
		DisplacementL     string `json:"DisplacementL"`
		TransmissionStyle string `json:"TransmissionStyle"`
		DriveType         string `json:"DriveType"`
		FuelTypePrimary   string `json:"FuelTypePrimary"`
		ErrorCode         string `json:"ErrorCode"`
		ErrorText         string `json:"ErrorText"`
	} `json:"Results"`
}

// NHTSAClient calls the vehicle registry's VIN decode endpoint. It performs
// no retries itself; compose with the retry package where needed.
type NHTSAClient struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewNHTSAClient creates a VIN decoder client. The rate limiter may be nil.
func NewNHTSAClient(baseURL string, timeout time.Duration, rl *RateLimiter) *NHTSAClient {
	return &NHTSAClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiter: rl,
	}
}

// DecodeVin decodes a 17-character VIN into canonical vehicle attributes.
// The length check happens before any network call.
func (c *NHTSAClient) DecodeVin(ctx context.Context, vin string) (*model.VinDecodeResult, error) {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	if len(vin) != vinLength {
		return nil, apperr.InvalidInput("VIN must be exactly 17 characters")
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	reqURL := fmt.Sprintf("%s/vehicles/DecodeVinValues/%s?format=json", c.baseURL, url.PathEscape(vin))

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var decoded nhtsaDecodeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, apperr.UpstreamParse("failed to parse VIN decode response", err)
	}

	if len(decoded.Results) == 0 {
		return nil, apperr.NotFound("no data found for VIN")
	}

	raw := decoded.Results[0]

	year, err := strconv.Atoi(strings.TrimSpace(raw.ModelYear))
	if err != nil || raw.Make == "" || raw.Model == "" {
		return nil, apperr.NotFound("no data found for VIN")
	}

	result := &model.VinDecodeResult{
		VIN:          vin,
		Year:         year,
		Make:         raw.Make,
		Model:        raw.Model,
		Series:       optional(raw.Series),
		BodyStyle:    optional(raw.BodyClass),
		Transmission: optional(raw.TransmissionStyle),
		DriveType:    optional(raw.DriveType),
		FuelType:     optional(raw.FuelTypePrimary),
		Confidence:   confidenceFromErrorCode(raw.ErrorCode),
	}

	if engine := engineDescription(raw.EngineModel, raw.EngineCylinders, raw.DisplacementL); engine != "" {
		result.Engine = &engine
	}

	// GVWR comes back as a rating class label; an unparseable label leaves
	// the field unknown rather than failing the decode
	if gvwr, ok := matching.ParsePounds(raw.GVWR); ok {
		result.GVWR = &gvwr
	}

	return result, nil
}

func (c *NHTSAClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.Internal("failed to create request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError("VIN registry", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.UpstreamConnection("failed to read VIN registry response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.UpstreamConnection(
			fmt.Sprintf("VIN registry returned status %d", resp.StatusCode), nil)
	}

	return body, nil
}

// confidenceFromErrorCode maps the registry's own per-decode error code to a
// confidence label: a clean decode ("0" or empty) is high, anything else low.
func confidenceFromErrorCode(code string) model.Confidence {
	code = strings.TrimSpace(code)
	if code == "" || code == "0" {
		return model.ConfidenceHigh
	}
	return model.ConfidenceLow
}

func engineDescription(engineModel, cylinders, displacement string) string {
	parts := []string{}
	if s := strings.TrimSpace(engineModel); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(displacement); s != "" {
		parts = append(parts, s+"L")
	}
	if s := strings.TrimSpace(cylinders); s != "" {
		parts = append(parts, s+"-cyl")
	}
	return strings.Join(parts, " ")
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "Not Applicable") {
		return nil
	}
	return &s
}

// classifyTransportError turns an http.Client error into a typed upstream
// error so retry eligibility never depends on message matching
func classifyTransportError(registry string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperr.UpstreamTimeout(registry+" request timed out", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.UpstreamTimeout(registry+" request timed out", err)
	}
	return apperr.UpstreamConnection(registry+" request failed", err)
}
