// Package claims runs the settlement state machine: a claim opens an oracle
// request at filing time and is processed exactly once when the attested
// reading arrives. A denied claim leaves the policy Active so the holder can
// claim again within the coverage window.
package claims

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/fieldsure/fieldsure/internal/domain"
	"github.com/fieldsure/fieldsure/internal/ledger"
	"github.com/fieldsure/fieldsure/internal/oracle"
	"github.com/fieldsure/fieldsure/internal/store"
)

// Evaluator settles claims against the policy book. Payouts and the ClaimPaid
// status flip go through the ledger, whose mutex also guards cancellation and
// expiry, so a claim settlement cannot interleave with either.
type Evaluator struct {
	mu     sync.Mutex
	store  store.Store
	broker *oracle.Broker
	ledger *ledger.Ledger
	sink   domain.EventSink
	clock  clockwork.Clock
	logger *slog.Logger
}

// New creates a claim evaluator over the given ledger.
func New(st store.Store, broker *oracle.Broker, led *ledger.Ledger, sink domain.EventSink, clock clockwork.Clock, logger *slog.Logger) *Evaluator {
	if sink == nil {
		sink = domain.NopSink{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		store:  st,
		broker: broker,
		ledger: led,
		sink:   sink,
		clock:  clock,
		logger: logger,
	}
}

// InitiateClaim files a claim on an active, in-window policy and opens an
// oracle request for the policy's location at the current time.
func (e *Evaluator) InitiateClaim(ctx context.Context, policyID string, caller domain.Address) (domain.Claim, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.ledger.GetPolicy(ctx, policyID)
	if err != nil {
		return domain.Claim{}, err
	}
	if p.Holder != caller {
		return domain.Claim{}, domain.ErrNotPolicyholder
	}
	if p.Status != domain.PolicyActive {
		return domain.Claim{}, domain.ErrPolicyNotActive
	}
	now := e.clock.Now()
	if now.Before(p.StartTime) {
		return domain.Claim{}, domain.ErrPolicyNotStarted
	}
	if now.After(p.EndTime) {
		return domain.Claim{}, domain.ErrPolicyExpired
	}

	requestID := e.broker.RequestReading(ctx, p.Location, now)
	c := domain.Claim{
		ID:              "clm-" + uuid.NewString(),
		PolicyID:        p.ID,
		FiledAt:         now,
		OracleRequestID: requestID,
	}
	if err := e.store.SaveClaim(ctx, c); err != nil {
		return domain.Claim{}, err
	}

	e.logger.InfoContext(ctx, "claim initiated",
		slog.String("claim_id", c.ID),
		slog.String("policy_id", p.ID),
		slog.String("request_id", requestID),
	)
	e.sink.Publish(ctx, domain.ClaimInitiated{
		ClaimID:         c.ID,
		PolicyID:        p.ID,
		OracleRequestID: requestID,
		At:              now,
	})
	return c, nil
}

// ProcessClaim settles a filed claim once its oracle request is fulfilled.
// When the trigger is met the full coverage amount is paid out and the policy
// becomes ClaimPaid; a payout failure aborts with no state change. When the
// trigger is not met the claim is marked processed with a zero payout and the
// policy stays Active.
func (e *Evaluator) ProcessClaim(ctx context.Context, claimID string) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, err := e.store.GetClaim(ctx, claimID)
	if err != nil {
		return 0, err
	}
	if c.Processed {
		return 0, domain.ErrAlreadyProcessed
	}

	p, err := e.ledger.GetPolicy(ctx, c.PolicyID)
	if err != nil {
		return 0, err
	}
	if p.Status != domain.PolicyActive {
		return 0, domain.ErrPolicyNotActive
	}

	exists, verified := e.broker.IsAvailable(c.OracleRequestID)
	if !exists || !verified {
		return 0, domain.ErrWeatherDataNotReady
	}
	req, err := e.broker.Get(c.OracleRequestID)
	if err != nil {
		return 0, err
	}

	triggerMet := domain.EvaluateTrigger(p.TriggerType, p.TriggerThreshold, req.Reading)

	var payout int64
	if triggerMet {
		// SettleClaim re-checks the status under the ledger mutex.
		payout, err = e.ledger.SettleClaim(ctx, p.ID)
		if err != nil {
			return 0, err
		}
	}

	c.Processed = true
	c.ActualValue = domain.TriggerValue(p.TriggerType, req.Reading)
	c.PayoutAmount = payout
	if err := e.store.SaveClaim(ctx, c); err != nil {
		return 0, err
	}

	now := e.clock.Now()
	e.logger.InfoContext(ctx, "claim processed",
		slog.String("claim_id", c.ID),
		slog.String("policy_id", p.ID),
		slog.Bool("trigger_met", triggerMet),
		slog.Int64("payout", payout),
	)
	e.sink.Publish(ctx, domain.ClaimProcessed{
		ClaimID:     c.ID,
		PolicyID:    p.ID,
		TriggerMet:  triggerMet,
		ActualValue: c.ActualValue,
		Payout:      payout,
		At:          now,
	})
	return payout, nil
}

// GetClaim returns a claim by ID.
func (e *Evaluator) GetClaim(ctx context.Context, claimID string) (domain.Claim, error) {
	return e.store.GetClaim(ctx, claimID)
}

// ClaimsByPolicy returns all claims filed against a policy, oldest first.
func (e *Evaluator) ClaimsByPolicy(ctx context.Context, policyID string) ([]domain.Claim, error) {
	return e.store.ClaimsByPolicy(ctx, policyID)
}
