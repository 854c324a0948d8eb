package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// insurance core.
type Metrics struct {
	PoliciesCreated   prometheus.Counter
	PoliciesCancelled prometheus.Counter
	PoliciesExpired   prometheus.Counter
	ActivePolicies    prometheus.Gauge

	ClaimsInitiated prometheus.Counter
	ClaimsProcessed *prometheus.CounterVec // labels: outcome={paid,denied}

	OracleRequests     prometheus.Counter
	OracleFulfillments prometheus.Counter

	PremiumVolume prometheus.Counter
	PayoutVolume  prometheus.Counter
	RefundVolume  prometheus.Counter

	PremiumSize prometheus.Histogram
	PayoutSize  prometheus.Histogram
}

// NewMetrics creates and registers all core metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.PoliciesCreated,
		m.PoliciesCancelled,
		m.PoliciesExpired,
		m.ActivePolicies,
		m.ClaimsInitiated,
		m.ClaimsProcessed,
		m.OracleRequests,
		m.OracleFulfillments,
		m.PremiumVolume,
		m.PayoutVolume,
		m.RefundVolume,
		m.PremiumSize,
		m.PayoutSize,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PoliciesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldsure",
			Name:      "policies_created_total",
			Help:      "Total policies purchased.",
		}),
		PoliciesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldsure",
			Name:      "policies_cancelled_total",
			Help:      "Total policies cancelled by their holders.",
		}),
		PoliciesExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldsure",
			Name:      "policies_expired_total",
			Help:      "Total policies moved to expired by the sweep.",
		}),
		ActivePolicies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fieldsure",
			Name:      "active_policies",
			Help:      "Policies currently in the Active state.",
		}),
		ClaimsInitiated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldsure",
			Name:      "claims_initiated_total",
			Help:      "Total claims filed.",
		}),
		ClaimsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldsure",
			Name:      "claims_processed_total",
			Help:      "Processed claims by outcome.",
		}, []string{"outcome"}),
		OracleRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldsure",
			Name:      "oracle_requests_total",
			Help:      "Total weather attestation requests opened.",
		}),
		OracleFulfillments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldsure",
			Name:      "oracle_fulfillments_total",
			Help:      "Total oracle requests fulfilled.",
		}),
		PremiumVolume: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldsure",
			Name:      "premium_volume_total",
			Help:      "Cumulative premium amounts collected.",
		}),
		PayoutVolume: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldsure",
			Name:      "payout_volume_total",
			Help:      "Cumulative claim payout amounts.",
		}),
		RefundVolume: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldsure",
			Name:      "refund_volume_total",
			Help:      "Cumulative cancellation refund amounts.",
		}),
		PremiumSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fieldsure",
			Name:      "premium_size",
			Help:      "Premium amount per policy purchase.",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 7),
		}),
		PayoutSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fieldsure",
			Name:      "payout_size",
			Help:      "Payout amount per paid claim.",
			Buckets:   prometheus.ExponentialBuckets(1000, 10, 7),
		}),
	}
}
