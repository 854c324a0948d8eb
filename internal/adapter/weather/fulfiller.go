package weather

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/fieldsure/fieldsure/internal/domain"
	"github.com/fieldsure/fieldsure/internal/oracle"
	"github.com/fieldsure/fieldsure/internal/readings"
)

// SyntheticSource is the submitter identity used for estimated readings, so
// consumers can tell them apart from real provider data by SourceID.
const SyntheticSource = domain.Address("synthetic")

// Neutral estimate used when a location has no history to derive one from.
var neutralEstimate = Observation{
	TemperatureC: 15,
	RainfallMm:   50,
	HumidityPct:  50,
	WindKmh:      15,
}

// Fetcher is the provider lookup the fulfiller depends on.
type Fetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (Observation, error)
}

// Fulfiller drains pending oracle requests on a schedule. Provider failures
// (or a missing provider) fall back to a synthetic reading instead of leaving
// the request pending.
type Fulfiller struct {
	broker    *oracle.Broker
	history   *readings.History
	fetcher   Fetcher
	identity  domain.Address
	interval  time.Duration
	scheduler *gocron.Scheduler
	logger    *slog.Logger
}

// NewFulfiller creates a fulfiller submitting under identity. fetcher may be
// nil, in which case every request is fulfilled synthetically.
func NewFulfiller(broker *oracle.Broker, history *readings.History, fetcher Fetcher, identity domain.Address, interval time.Duration, logger *slog.Logger) *Fulfiller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fulfiller{
		broker:    broker,
		history:   history,
		fetcher:   fetcher,
		identity:  identity,
		interval:  interval,
		scheduler: gocron.NewScheduler(time.UTC),
		logger:    logger,
	}
}

// Start schedules the periodic drain job.
func (f *Fulfiller) Start() error {
	seconds := int(f.interval.Seconds())
	if seconds <= 0 {
		seconds = 60
	}

	_, err := f.scheduler.Every(seconds).Seconds().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		f.RunPending(ctx)
	})
	if err != nil {
		return err
	}

	f.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (f *Fulfiller) Stop() {
	if f.scheduler != nil {
		f.scheduler.Stop()
	}
}

// RunPending fulfills every currently pending request once.
func (f *Fulfiller) RunPending(ctx context.Context) {
	pending := f.broker.Pending()
	for _, req := range pending {
		if err := f.fulfillOne(ctx, req); err != nil {
			f.logger.ErrorContext(ctx, "fulfillment failed",
				slog.String("request_id", req.ID),
				slog.Any("error", err),
			)
		}
	}
}

func (f *Fulfiller) fulfillOne(ctx context.Context, req domain.OracleRequest) error {
	lat, lon := req.Location.Degrees()

	submitter := f.identity
	var obs Observation
	var err error

	if f.fetcher != nil {
		obs, err = f.fetcher.Fetch(ctx, lat, lon)
	}
	if f.fetcher == nil || err != nil {
		if err != nil {
			f.logger.WarnContext(ctx, "provider unavailable, using synthetic reading",
				slog.String("request_id", req.ID),
				slog.Any("error", err),
			)
		}
		obs = f.estimate(req.LocationID)
		submitter = SyntheticSource
	}

	return f.broker.Fulfill(ctx, req.ID,
		scale(obs.TemperatureC),
		scale(obs.RainfallMm),
		scale(obs.HumidityPct),
		scale(obs.WindKmh),
		submitter,
	)
}

// estimate derives a synthetic observation from the location's running
// averages, or the neutral defaults when no history exists.
func (f *Fulfiller) estimate(locationID string) Observation {
	avg := f.history.Averages(locationID)
	if avg.Count == 0 {
		return neutralEstimate
	}
	return Observation{
		TemperatureC: float64(avg.AvgTemperature) / 100,
		RainfallMm:   float64(avg.AvgRainfall) / 100,
		HumidityPct:  float64(avg.AvgHumidity) / 100,
		WindKmh:      float64(avg.AvgWindSpeed) / 100,
	}
}

func scale(v float64) int64 {
	return int64(math.Round(v * 100))
}
