package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldsure/fieldsure/internal/domain"
	"github.com/fieldsure/fieldsure/internal/oracle"
	"github.com/fieldsure/fieldsure/internal/readings"
)

const (
	testOwner    = domain.Address("owner-1")
	testProvider = domain.Address("provider-1")
)

type stubFetcher struct {
	obs   Observation
	err   error
	calls int
}

func (s *stubFetcher) Fetch(context.Context, float64, float64) (Observation, error) {
	s.calls++
	return s.obs, s.err
}

func newBroker(t *testing.T) (*oracle.Broker, *readings.History) {
	t.Helper()
	history := readings.NewHistory()
	b := oracle.NewBroker(testOwner, history, nil)
	require.NoError(t, b.Authorize(testOwner, testProvider))
	require.NoError(t, b.Authorize(testOwner, SyntheticSource))
	return b, history
}

func TestRunPending_FulfillsFromProvider(t *testing.T) {
	broker, history := newBroker(t)
	loc := domain.LocationFromDegrees(31.02, -98.44)
	id := broker.RequestReading(context.Background(), loc, time.Now().UTC())

	fetcher := &stubFetcher{obs: Observation{
		TemperatureC: 24.5,
		RainfallMm:   12.34,
		HumidityPct:  65,
		WindKmh:      30.1,
	}}
	f := NewFulfiller(broker, history, fetcher, testProvider, time.Minute, nil)

	f.RunPending(context.Background())

	req, err := broker.Get(id)
	require.NoError(t, err)
	assert.True(t, req.Verified)
	assert.Equal(t, int64(2450), req.Reading.Temperature)
	assert.Equal(t, int64(1234), req.Reading.Rainfall)
	assert.Equal(t, int64(6500), req.Reading.Humidity)
	assert.Equal(t, int64(3010), req.Reading.WindSpeed)
	assert.Equal(t, string(testProvider), req.Reading.SourceID)
	assert.Equal(t, 1, fetcher.calls)

	assert.Empty(t, broker.Pending())
}

func TestRunPending_ProviderFailureFallsBackToAverages(t *testing.T) {
	broker, history := newBroker(t)
	loc := domain.LocationFromDegrees(31.02, -98.44)

	// Seed history so the synthetic estimate has something to average.
	history.Append(loc.ID(), domain.WeatherReading{Temperature: 2000, Rainfall: 4000, Humidity: 6000, WindSpeed: 1000})
	history.Append(loc.ID(), domain.WeatherReading{Temperature: 3000, Rainfall: 6000, Humidity: 7000, WindSpeed: 2000})

	id := broker.RequestReading(context.Background(), loc, time.Now().UTC())

	fetcher := &stubFetcher{err: errors.New("provider down")}
	f := NewFulfiller(broker, history, fetcher, testProvider, time.Minute, nil)
	f.RunPending(context.Background())

	req, err := broker.Get(id)
	require.NoError(t, err)
	assert.True(t, req.Verified)
	assert.Equal(t, string(SyntheticSource), req.Reading.SourceID)
	assert.Equal(t, int64(2500), req.Reading.Temperature)
	assert.Equal(t, int64(5000), req.Reading.Rainfall)
}

func TestRunPending_NoHistoryUsesNeutralEstimate(t *testing.T) {
	broker, history := newBroker(t)
	loc := domain.LocationFromDegrees(10.5, 20.5)
	id := broker.RequestReading(context.Background(), loc, time.Now().UTC())

	f := NewFulfiller(broker, history, nil, testProvider, time.Minute, nil)
	f.RunPending(context.Background())

	req, err := broker.Get(id)
	require.NoError(t, err)
	assert.True(t, req.Verified)
	assert.Equal(t, string(SyntheticSource), req.Reading.SourceID)
	assert.Equal(t, int64(1500), req.Reading.Temperature)
	assert.Equal(t, int64(5000), req.Reading.Rainfall)
	assert.Equal(t, int64(5000), req.Reading.Humidity)
	assert.Equal(t, int64(1500), req.Reading.WindSpeed)
}

func TestRunPending_UnauthorizedSyntheticLeavesRequestPending(t *testing.T) {
	history := readings.NewHistory()
	broker := oracle.NewBroker(testOwner, history, nil)
	// Neither the provider identity nor the synthetic source is allow-listed.

	loc := domain.LocationFromDegrees(1, 2)
	broker.RequestReading(context.Background(), loc, time.Now().UTC())

	f := NewFulfiller(broker, history, nil, testProvider, time.Minute, nil)
	f.RunPending(context.Background())

	assert.Len(t, broker.Pending(), 1)
}

func TestScale_Rounding(t *testing.T) {
	assert.Equal(t, int64(1234), scale(12.335))
	assert.Equal(t, int64(-450), scale(-4.5))
	assert.Equal(t, int64(0), scale(0))
}
