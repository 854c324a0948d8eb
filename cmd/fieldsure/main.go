package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/fieldsure/fieldsure/internal/adapter/httpapi"
	kafkaadapter "github.com/fieldsure/fieldsure/internal/adapter/kafka"
	"github.com/fieldsure/fieldsure/internal/adapter/weather"
	"github.com/fieldsure/fieldsure/internal/claims"
	"github.com/fieldsure/fieldsure/internal/config"
	"github.com/fieldsure/fieldsure/internal/domain"
	"github.com/fieldsure/fieldsure/internal/ledger"
	"github.com/fieldsure/fieldsure/internal/observability"
	"github.com/fieldsure/fieldsure/internal/oracle"
	"github.com/fieldsure/fieldsure/internal/pricing"
	"github.com/fieldsure/fieldsure/internal/readings"
	"github.com/fieldsure/fieldsure/internal/store"
	"github.com/fieldsure/fieldsure/internal/store/sqlite"
	"github.com/fieldsure/fieldsure/internal/treasury"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()
	owner := domain.Address(cfg.Owner)

	// Event sinks: metrics always, Kafka when enabled.
	sinks := observability.MultiSink{observability.NewMetricsSink(metrics)}
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		sinks = append(sinks, publisher)
		logger.Info("kafka event publishing enabled", "topic", cfg.KafkaTopic)
	}

	// Store: durable when a path is configured, in-memory otherwise.
	var st store.Store
	if cfg.SQLitePath != "" {
		st, err = sqlite.New(cfg.SQLitePath)
		if err != nil {
			logger.Error("failed to open sqlite store", "path", cfg.SQLitePath, "error", err)
			os.Exit(1)
		}
		logger.Info("using sqlite store", "path", cfg.SQLitePath)
	} else {
		st = store.NewMemoryStore()
		logger.Info("using in-memory store")
	}

	history := readings.NewHistory()
	rail := treasury.NewInProcessRail()
	tre := treasury.New(owner, rail, sinks, clock)
	engine := pricing.NewEngine(pricing.Params{
		BaseRateBps:    cfg.BaseRateBps,
		MinimumPremium: cfg.MinimumPremium,
	}, owner)
	broker := oracle.NewBroker(owner, history, sinks)
	led := ledger.New(st, engine, tre, ledger.DefaultBounds(), owner, sinks, clock, logger)
	evaluator := claims.New(st, broker, led, sinks, clock, logger)

	// The configured fulfiller identity and the synthetic fallback source are
	// allow-listed up front.
	providerID := domain.Address(cfg.ProviderIdentity)
	if err := broker.Authorize(owner, providerID); err != nil {
		logger.Error("failed to authorize provider", "error", err)
		os.Exit(1)
	}
	if err := broker.Authorize(owner, weather.SyntheticSource); err != nil {
		logger.Error("failed to authorize synthetic source", "error", err)
		os.Exit(1)
	}

	var fetcher weather.Fetcher
	if cfg.ProviderURL != "" {
		fetcher = weather.NewClient(cfg.ProviderURL, cfg.ProviderTimeout)
		logger.Info("weather provider configured", "url", cfg.ProviderURL)
	} else {
		logger.Info("no weather provider configured, fulfilling synthetically")
	}

	fulfiller := weather.NewFulfiller(broker, history, fetcher, providerID, cfg.FulfillInterval, logger)
	if err := fulfiller.Start(); err != nil {
		logger.Error("failed to start fulfiller", "error", err)
		os.Exit(1)
	}
	defer fulfiller.Stop()

	sweeper := ledger.NewSweeper(led, cfg.ExpireInterval, logger)
	if err := sweeper.Start(); err != nil {
		logger.Error("failed to start expiry sweeper", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	app := httpapi.NewApp(httpapi.Deps{
		Ledger:   led,
		Claims:   evaluator,
		Broker:   broker,
		History:  history,
		Pricing:  engine,
		Treasury: tre,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			logger.Error("http server error", "error", err)
		}
	}()
	logger.Info("fieldsure started", "addr", cfg.HTTPAddr)

	<-ctx.Done()
	logger.Info("shutting down")

	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if err := st.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
