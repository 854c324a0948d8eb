package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// Address identifies an external party: a policyholder, a weather data
// provider, or the contract owner. Opaque to the core.
type Address string

// TriggerType is the weather condition class and direction that defines a
// policy's payout rule.
type TriggerType string

const (
	TriggerRainfallBelow    TriggerType = "rainfall_below"    // drought
	TriggerRainfallAbove    TriggerType = "rainfall_above"    // flood
	TriggerTemperatureBelow TriggerType = "temperature_below" // frost
	TriggerTemperatureAbove TriggerType = "temperature_above" // heat
	TriggerWindSpeedAbove   TriggerType = "wind_speed_above"  // storm
)

// Valid reports whether t is one of the five supported trigger types.
func (t TriggerType) Valid() bool {
	switch t {
	case TriggerRainfallBelow, TriggerRainfallAbove,
		TriggerTemperatureBelow, TriggerTemperatureAbove,
		TriggerWindSpeedAbove:
		return true
	}
	return false
}

// PolicyStatus is a policy's lifecycle state.
type PolicyStatus string

const (
	PolicyActive    PolicyStatus = "active"
	PolicyExpired   PolicyStatus = "expired"
	PolicyClaimPaid PolicyStatus = "claim_paid"
	PolicyCancelled PolicyStatus = "cancelled"
)

// Location is a coordinate pair in integer microdegrees.
type Location struct {
	LatMicro int64 `json:"lat_micro"`
	LonMicro int64 `json:"lon_micro"`
}

// LocationFromDegrees rounds decimal-degree coordinates to microdegrees.
func LocationFromDegrees(lat, lon float64) Location {
	return Location{
		LatMicro: int64(math.Round(lat * 1e6)),
		LonMicro: int64(math.Round(lon * 1e6)),
	}
}

// Degrees returns the coordinates as decimal degrees.
func (l Location) Degrees() (lat, lon float64) {
	return float64(l.LatMicro) / 1e6, float64(l.LonMicro) / 1e6
}

// IsZero reports whether the location is the unset zero coordinate.
func (l Location) IsZero() bool {
	return l.LatMicro == 0 && l.LonMicro == 0
}

// ID returns the deterministic location identifier: a short SHA-256 hash of
// the microdegree pair. The same coordinates always hash to the same ID.
func (l Location) ID() string {
	input := fmt.Sprintf("%d|%d", l.LatMicro, l.LonMicro)
	hash := sha256.Sum256([]byte(input))
	return "loc-" + hex.EncodeToString(hash[:8])
}

// WeatherReading is a single attested weather observation at a location.
// Immutable once verified.
type WeatherReading struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature int64     `json:"temperature"` // °C × 100, signed
	Rainfall    int64     `json:"rainfall"`    // mm × 100
	Humidity    int64     `json:"humidity"`    // % × 100
	WindSpeed   int64     `json:"wind_speed"`  // km/h × 100
	SourceID    string    `json:"source_id"`
	Verified    bool      `json:"verified"`
}

// RunningAverages holds the streaming per-location means over all verified
// readings. The update formula avg' = (avg*count + v) / (count+1) uses
// truncating integer division.
type RunningAverages struct {
	AvgTemperature int64     `json:"avg_temperature"`
	AvgRainfall    int64     `json:"avg_rainfall"`
	AvgHumidity    int64     `json:"avg_humidity"`
	AvgWindSpeed   int64     `json:"avg_wind_speed"`
	Count          int64     `json:"count"`
	LastUpdated    time.Time `json:"last_updated"`
}

// Accumulate folds one reading into the running averages.
func (a RunningAverages) Accumulate(r WeatherReading, at time.Time) RunningAverages {
	n := a.Count
	return RunningAverages{
		AvgTemperature: (a.AvgTemperature*n + r.Temperature) / (n + 1),
		AvgRainfall:    (a.AvgRainfall*n + r.Rainfall) / (n + 1),
		AvgHumidity:    (a.AvgHumidity*n + r.Humidity) / (n + 1),
		AvgWindSpeed:   (a.AvgWindSpeed*n + r.WindSpeed) / (n + 1),
		Count:          n + 1,
		LastUpdated:    at,
	}
}

// Policy is a parametric coverage contract for one holder at one location.
type Policy struct {
	ID               string       `json:"id"`
	Holder           Address      `json:"holder"`
	Location         Location     `json:"location"`
	LocationID       string       `json:"location_id"`
	TriggerType      TriggerType  `json:"trigger_type"`
	TriggerThreshold int64        `json:"trigger_threshold"` // scaled × 100, signed
	Premium          int64        `json:"premium"`
	CoverageAmount   int64        `json:"coverage_amount"`
	StartTime        time.Time    `json:"start_time"`
	EndTime          time.Time    `json:"end_time"`
	Status           PolicyStatus `json:"status"`
	CropType         string       `json:"crop_type"`
	FarmSize         int64        `json:"farm_size"` // hectares × 100
}

// Claim records one settlement attempt against a policy. Processed is set
// exactly once and never reset.
type Claim struct {
	ID              string    `json:"id"`
	PolicyID        string    `json:"policy_id"`
	FiledAt         time.Time `json:"filed_at"`
	OracleRequestID string    `json:"oracle_request_id"`
	ActualValue     int64     `json:"actual_value"`
	PayoutAmount    int64     `json:"payout_amount"`
	Processed       bool      `json:"processed"`
}

// OracleRequest tracks one outstanding weather attestation. Fulfilled at most
// once; a verified request's reading is immutable.
type OracleRequest struct {
	ID         string         `json:"id"`
	Location   Location       `json:"location"`
	LocationID string         `json:"location_id"`
	Timestamp  time.Time      `json:"timestamp"`
	Reading    WeatherReading `json:"reading"`
	Verified   bool           `json:"verified"`
}
