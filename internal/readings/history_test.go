package readings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldsure/fieldsure/internal/domain"
)

const testLoc = "loc-abc12345"

func reading(rainfall int64, at time.Time) domain.WeatherReading {
	return domain.WeatherReading{
		Timestamp: at,
		Rainfall:  rainfall,
		SourceID:  "station-1",
		Verified:  true,
	}
}

func TestHistory_AppendAndLatest(t *testing.T) {
	h := NewHistory()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	_, ok := h.Latest(testLoc)
	assert.False(t, ok)

	h.Append(testLoc, reading(1000, now))
	h.Append(testLoc, reading(3000, now.Add(time.Hour)))

	latest, ok := h.Latest(testLoc)
	require.True(t, ok)
	assert.Equal(t, int64(3000), latest.Rainfall)
	assert.Equal(t, 2, h.Count(testLoc))
}

func TestHistory_Averages(t *testing.T) {
	h := NewHistory()
	now := time.Now().UTC()

	for i, rain := range []int64{1000, 2000, 3000} {
		h.Append(testLoc, reading(rain, now.Add(time.Duration(i)*time.Hour)))
	}

	avg := h.Averages(testLoc)
	assert.Equal(t, int64(2000), avg.AvgRainfall)
	assert.Equal(t, int64(3), avg.Count)

	assert.Equal(t, int64(0), h.Averages("loc-unknown").Count)
}

func TestHistory_Recent(t *testing.T) {
	h := NewHistory()
	now := time.Now().UTC()

	for i := int64(1); i <= 5; i++ {
		h.Append(testLoc, reading(i*100, now.Add(time.Duration(i)*time.Minute)))
	}

	last2 := h.Recent(testLoc, 2)
	require.Len(t, last2, 2)
	assert.Equal(t, int64(400), last2[0].Rainfall)
	assert.Equal(t, int64(500), last2[1].Rainfall)

	// n larger than history returns everything, oldest first.
	all := h.Recent(testLoc, 10)
	require.Len(t, all, 5)
	assert.Equal(t, int64(100), all[0].Rainfall)
}

func TestRiskScore_EmptyHistoryIsNeutral(t *testing.T) {
	h := NewHistory()

	score := h.RiskScore(testLoc, domain.TriggerRainfallBelow, 2000)
	assert.Equal(t, int64(50), score)
}

func TestRiskScore_CountsTriggeringFraction(t *testing.T) {
	h := NewHistory()
	now := time.Now().UTC()

	// 4 readings, 1 below the 2000 threshold => 25%.
	for i, rain := range []int64{1500, 2500, 3000, 4000} {
		h.Append(testLoc, reading(rain, now.Add(time.Duration(i)*time.Hour)))
	}

	score := h.RiskScore(testLoc, domain.TriggerRainfallBelow, 2000)
	assert.Equal(t, int64(25), score)
}

func TestRiskScore_TruncatesPercentage(t *testing.T) {
	h := NewHistory()
	now := time.Now().UTC()

	// 1 of 3 readings triggers: 100/3 truncates to 33.
	for i, rain := range []int64{1000, 5000, 5000} {
		h.Append(testLoc, reading(rain, now.Add(time.Duration(i)*time.Hour)))
	}

	score := h.RiskScore(testLoc, domain.TriggerRainfallBelow, 2000)
	assert.Equal(t, int64(33), score)
}

func TestRiskScore_WindowsLastHundred(t *testing.T) {
	h := NewHistory()
	now := time.Now().UTC()

	// 50 old triggering readings pushed out of the window by 100 calm ones.
	for i := 0; i < 50; i++ {
		h.Append(testLoc, reading(500, now.Add(time.Duration(i)*time.Minute)))
	}
	for i := 0; i < 100; i++ {
		h.Append(testLoc, reading(9000, now.Add(time.Duration(50+i)*time.Minute)))
	}

	score := h.RiskScore(testLoc, domain.TriggerRainfallBelow, 2000)
	assert.Equal(t, int64(0), score)
}
