// Package pricing computes parametric policy premiums with fixed-point
// basis-point arithmetic. Every multiplication truncates toward zero before
// the next division; the order of operations must not be reordered, since
// that changes quoted premiums.
package pricing

import (
	"sync"

	"github.com/fieldsure/fieldsure/internal/domain"
)

const secondsPerYear = 365 * 24 * 60 * 60

// maxBaseRateBps caps the annual base rate at 100% of coverage. Rates beyond
// that are nonsensical and would risk overflowing the premium arithmetic.
const maxBaseRateBps = 10_000

// Risk multipliers, percent-scaled (100 = 1.0x). Flood carries the highest
// loading, frost the lowest.
const (
	multiplierRainfallBelow    = 120
	multiplierRainfallAbove    = 150
	multiplierTemperatureBelow = 110
	multiplierTemperatureAbove = 130
	multiplierWindSpeedAbove   = 140
)

// Params are the owner-tunable pricing inputs.
type Params struct {
	BaseRateBps    int64 // annual base rate in basis points of coverage
	MinimumPremium int64 // floor applied after all multipliers
}

// DefaultParams returns the launch configuration: 5% annual base rate.
func DefaultParams() Params {
	return Params{
		BaseRateBps:    500,
		MinimumPremium: 100,
	}
}

// Engine prices policies from the current Params. Safe for concurrent use;
// admin updates are serialized against quotes.
type Engine struct {
	mu     sync.RWMutex
	params Params
	owner  domain.Address
}

// NewEngine creates a pricing engine owned by the given admin address.
func NewEngine(params Params, owner domain.Address) *Engine {
	return &Engine{params: params, owner: owner}
}

// RiskMultiplier returns the percent-scaled loading for a trigger type.
// Unknown trigger types carry no loading (100).
func RiskMultiplier(t domain.TriggerType) int64 {
	switch t {
	case domain.TriggerRainfallBelow:
		return multiplierRainfallBelow
	case domain.TriggerRainfallAbove:
		return multiplierRainfallAbove
	case domain.TriggerTemperatureBelow:
		return multiplierTemperatureBelow
	case domain.TriggerTemperatureAbove:
		return multiplierTemperatureAbove
	case domain.TriggerWindSpeedAbove:
		return multiplierWindSpeedAbove
	}
	return 100
}

// CalculatePremium computes the premium for a coverage amount, duration in
// seconds, and trigger type. Pure function of Params and inputs; never
// returns less than MinimumPremium.
func (e *Engine) CalculatePremium(coverageAmount, durationSeconds int64, t domain.TriggerType) int64 {
	e.mu.RLock()
	p := e.params
	e.mu.RUnlock()

	premium := coverageAmount * p.BaseRateBps / 10000
	durationMultiplier := durationSeconds * 100 / secondsPerYear
	premium = premium * durationMultiplier / 100
	premium = premium * RiskMultiplier(t) / 100

	if premium < p.MinimumPremium {
		return p.MinimumPremium
	}
	return premium
}

// Params returns the current pricing parameters.
func (e *Engine) Params() Params {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.params
}

// SetBaseRate updates the annual base rate, bounded to (0, 10000] bps.
// Owner only.
func (e *Engine) SetBaseRate(caller domain.Address, bps int64) error {
	if caller != e.owner {
		return domain.ErrNotOwner
	}
	if bps <= 0 || bps > maxBaseRateBps {
		return domain.ErrInvalidAmount
	}
	e.mu.Lock()
	e.params.BaseRateBps = bps
	e.mu.Unlock()
	return nil
}

// SetMinimumPremium updates the premium floor. Owner only.
func (e *Engine) SetMinimumPremium(caller domain.Address, min int64) error {
	if caller != e.owner {
		return domain.ErrNotOwner
	}
	if min <= 0 {
		return domain.ErrInvalidAmount
	}
	e.mu.Lock()
	e.params.MinimumPremium = min
	e.mu.Unlock()
	return nil
}
