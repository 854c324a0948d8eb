package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldsure/fieldsure/internal/domain"
)

const (
	testOwner = domain.Address("owner-1")
	oneYear   = int64(365 * 24 * 60 * 60)
)

func testEngine() *Engine {
	return NewEngine(DefaultParams(), testOwner)
}

func TestCalculatePremium_OneYearDrought(t *testing.T) {
	e := testEngine()

	// 1,000,000 coverage * 500bps = 50,000; full-year multiplier 100;
	// drought loading 120% => 60,000.
	premium := e.CalculatePremium(1_000_000, oneYear, domain.TriggerRainfallBelow)
	assert.Equal(t, int64(60_000), premium)
}

func TestCalculatePremium_ThirtyDayTruncation(t *testing.T) {
	e := testEngine()
	thirtyDays := int64((30 * 24 * time.Hour).Seconds())

	// Duration multiplier truncates: 2592000*100/31536000 = 8 (not 8.21).
	// 50,000 * 8 / 100 = 4,000; * 120 / 100 = 4,800.
	premium := e.CalculatePremium(1_000_000, thirtyDays, domain.TriggerRainfallBelow)
	assert.Equal(t, int64(4_800), premium)
}

func TestCalculatePremium_NeverBelowMinimum(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name     string
		coverage int64
		duration int64
	}{
		{"unit coverage", 1, oneYear},
		{"one-day duration", 1_000_000, 24 * 60 * 60},
		{"zero duration", 1_000_000, 0},
		{"both tiny", 10, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			premium := e.CalculatePremium(tt.coverage, tt.duration, domain.TriggerRainfallBelow)
			assert.GreaterOrEqual(t, premium, DefaultParams().MinimumPremium)
		})
	}
}

func TestCalculatePremium_RiskOrdering(t *testing.T) {
	e := testEngine()

	flood := e.CalculatePremium(1_000_000, oneYear, domain.TriggerRainfallAbove)
	storm := e.CalculatePremium(1_000_000, oneYear, domain.TriggerWindSpeedAbove)
	heat := e.CalculatePremium(1_000_000, oneYear, domain.TriggerTemperatureAbove)
	drought := e.CalculatePremium(1_000_000, oneYear, domain.TriggerRainfallBelow)
	frost := e.CalculatePremium(1_000_000, oneYear, domain.TriggerTemperatureBelow)

	assert.Greater(t, flood, storm)
	assert.Greater(t, storm, heat)
	assert.Greater(t, heat, drought)
	assert.Greater(t, drought, frost)
}

func TestRiskMultiplier(t *testing.T) {
	assert.Equal(t, int64(120), RiskMultiplier(domain.TriggerRainfallBelow))
	assert.Equal(t, int64(150), RiskMultiplier(domain.TriggerRainfallAbove))
	assert.Equal(t, int64(110), RiskMultiplier(domain.TriggerTemperatureBelow))
	assert.Equal(t, int64(130), RiskMultiplier(domain.TriggerTemperatureAbove))
	assert.Equal(t, int64(140), RiskMultiplier(domain.TriggerWindSpeedAbove))
	assert.Equal(t, int64(100), RiskMultiplier(domain.TriggerType("unknown")))
}

func TestSetBaseRate(t *testing.T) {
	e := testEngine()

	require.NoError(t, e.SetBaseRate(testOwner, 1000))
	assert.Equal(t, int64(1000), e.Params().BaseRateBps)

	// Doubled rate doubles the premium.
	premium := e.CalculatePremium(1_000_000, oneYear, domain.TriggerRainfallBelow)
	assert.Equal(t, int64(120_000), premium)
}

func TestSetBaseRate_Rejections(t *testing.T) {
	e := testEngine()

	assert.ErrorIs(t, e.SetBaseRate("intruder", 1000), domain.ErrNotOwner)
	assert.ErrorIs(t, e.SetBaseRate(testOwner, 0), domain.ErrInvalidAmount)
	assert.ErrorIs(t, e.SetBaseRate(testOwner, 10_001), domain.ErrInvalidAmount)
	assert.Equal(t, DefaultParams(), e.Params())

	// The full allowed range is accepted.
	require.NoError(t, e.SetBaseRate(testOwner, 10_000))
}

func TestSetMinimumPremium(t *testing.T) {
	e := testEngine()

	require.NoError(t, e.SetMinimumPremium(testOwner, 5000))
	assert.Equal(t, int64(5000), e.CalculatePremium(1, 60, domain.TriggerRainfallBelow))

	assert.ErrorIs(t, e.SetMinimumPremium("intruder", 1), domain.ErrNotOwner)
	assert.ErrorIs(t, e.SetMinimumPremium(testOwner, -5), domain.ErrInvalidAmount)
}
