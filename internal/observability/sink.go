package observability

import (
	"context"

	"github.com/fieldsure/fieldsure/internal/domain"
)

// MetricsSink updates Prometheus metrics from domain events so the engines
// never touch metrics directly.
type MetricsSink struct {
	m *Metrics
}

// NewMetricsSink wraps metrics as an event sink.
func NewMetricsSink(m *Metrics) *MetricsSink {
	return &MetricsSink{m: m}
}

func (s *MetricsSink) Publish(_ context.Context, e domain.Event) {
	switch ev := e.(type) {
	case domain.PolicyCreated:
		s.m.PoliciesCreated.Inc()
		s.m.ActivePolicies.Inc()
		s.m.PremiumVolume.Add(float64(ev.Policy.Premium))
		s.m.PremiumSize.Observe(float64(ev.Policy.Premium))
	case domain.PolicyCancellation:
		s.m.PoliciesCancelled.Inc()
		s.m.ActivePolicies.Dec()
		s.m.RefundVolume.Add(float64(ev.Refund))
	case domain.PolicyExpiration:
		s.m.PoliciesExpired.Inc()
		s.m.ActivePolicies.Dec()
	case domain.ClaimInitiated:
		s.m.ClaimsInitiated.Inc()
	case domain.ClaimProcessed:
		if ev.TriggerMet {
			s.m.ClaimsProcessed.WithLabelValues("paid").Inc()
			s.m.PayoutVolume.Add(float64(ev.Payout))
			s.m.PayoutSize.Observe(float64(ev.Payout))
			s.m.ActivePolicies.Dec()
		} else {
			s.m.ClaimsProcessed.WithLabelValues("denied").Inc()
		}
	case domain.OracleRequested:
		s.m.OracleRequests.Inc()
	case domain.OracleFulfilled:
		s.m.OracleFulfillments.Inc()
	}
}

// MultiSink fans each event out to every wrapped sink in order.
type MultiSink []domain.EventSink

func (s MultiSink) Publish(ctx context.Context, e domain.Event) {
	for _, sink := range s {
		sink.Publish(ctx, e)
	}
}
