// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Owner is the address holding the admin capability (pricing params,
	// bounds, provider allow-list, treasury withdrawals).
	Owner string

	// SQLitePath selects the durable store; empty keeps state in memory.
	SQLitePath string

	// Weather provider + oracle fulfiller.
	ProviderURL      string
	ProviderTimeout  time.Duration
	ProviderIdentity string
	FulfillInterval  time.Duration

	// Policy expiry sweep.
	ExpireInterval time.Duration

	// Pricing.
	BaseRateBps    int64
	MinimumPremium int64

	// Event publishing (feature-flagged).
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	providerTimeout, err := parsePositiveDuration("WEATHER_PROVIDER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	fulfillInterval, err := parsePositiveDuration("FULFILL_INTERVAL", "1m")
	if err != nil {
		return nil, err
	}
	expireInterval, err := parsePositiveDuration("EXPIRE_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}
	baseRateBps, err := parsePositiveInt64("BASE_RATE_BPS", 500)
	if err != nil {
		return nil, err
	}
	minimumPremium, err := parsePositiveInt64("MINIMUM_PREMIUM", 100)
	if err != nil {
		return nil, err
	}

	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		Owner: envOrDefault("OWNER_ADDRESS", "owner-local"),

		SQLitePath: os.Getenv("SQLITE_PATH"),

		ProviderURL:      os.Getenv("WEATHER_PROVIDER_URL"),
		ProviderTimeout:  providerTimeout,
		ProviderIdentity: envOrDefault("WEATHER_PROVIDER_ID", "provider-local"),
		FulfillInterval:  fulfillInterval,

		ExpireInterval: expireInterval,

		BaseRateBps:    baseRateBps,
		MinimumPremium: minimumPremium,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: splitCommas(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "insurance-events"),
	}

	if cfg.Owner == "" {
		return nil, errors.New("OWNER_ADDRESS must not be empty")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt64(key string, fallback int64) (int64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func splitCommas(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
