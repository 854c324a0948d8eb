// Package ledger owns the policy lifecycle: purchase, cancellation with a
// prorated refund, expiry, and refundable overpayment balances. All mutations
// are serialized behind one mutex so callers never observe a half-updated
// policy.
package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/fieldsure/fieldsure/internal/domain"
	"github.com/fieldsure/fieldsure/internal/pricing"
	"github.com/fieldsure/fieldsure/internal/store"
	"github.com/fieldsure/fieldsure/internal/treasury"
)

// Bounds are the owner-tunable policy acceptance limits.
type Bounds struct {
	MinCoverage int64
	MaxCoverage int64
	MinDuration time.Duration
	MaxDuration time.Duration
}

// DefaultBounds returns the launch acceptance limits.
func DefaultBounds() Bounds {
	return Bounds{
		MinCoverage: 1_000,
		MaxCoverage: 1_000_000_000,
		MinDuration: 24 * time.Hour,
		MaxDuration: 365 * 24 * time.Hour,
	}
}

// CreatePolicyInput carries a policy purchase request.
type CreatePolicyInput struct {
	Holder           domain.Address
	Location         domain.Location
	TriggerType      domain.TriggerType
	TriggerThreshold int64
	CoverageAmount   int64
	Duration         time.Duration
	CropType         string
	FarmSize         int64
	PaidAmount       int64
}

// Ledger is the policy book.
type Ledger struct {
	mu      sync.Mutex
	bounds  Bounds
	store   store.Store
	pricing *pricing.Engine
	tre     *treasury.Treasury
	sink    domain.EventSink
	clock   clockwork.Clock
	owner   domain.Address
	logger  *slog.Logger
}

// New creates a ledger over the given store, priced by engine, with premiums
// deposited into tre.
func New(st store.Store, engine *pricing.Engine, tre *treasury.Treasury, bounds Bounds, owner domain.Address, sink domain.EventSink, clock clockwork.Clock, logger *slog.Logger) *Ledger {
	if sink == nil {
		sink = domain.NopSink{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		bounds:  bounds,
		store:   st,
		pricing: engine,
		tre:     tre,
		sink:    sink,
		clock:   clock,
		owner:   owner,
		logger:  logger,
	}
}

// CreatePolicy validates a purchase, deposits the paid amount into the
// treasury, and persists the new Active policy. Any overpayment above the
// computed premium is recorded as refundable to the holder.
func (l *Ledger) CreatePolicy(ctx context.Context, in CreatePolicyInput) (domain.Policy, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if in.Location.IsZero() {
		return domain.Policy{}, domain.ErrInvalidLocation
	}
	if !in.TriggerType.Valid() {
		return domain.Policy{}, domain.ErrInvalidTriggerType
	}
	if in.CoverageAmount < l.bounds.MinCoverage || in.CoverageAmount > l.bounds.MaxCoverage {
		return domain.Policy{}, domain.ErrCoverageOutOfRange
	}
	if in.Duration < l.bounds.MinDuration || in.Duration > l.bounds.MaxDuration {
		return domain.Policy{}, domain.ErrDurationOutOfRange
	}
	if in.CropType == "" {
		return domain.Policy{}, domain.ErrEmptyCropType
	}
	if in.FarmSize <= 0 {
		return domain.Policy{}, domain.ErrInvalidFarmSize
	}

	premium := l.pricing.CalculatePremium(in.CoverageAmount, int64(in.Duration.Seconds()), in.TriggerType)
	if in.PaidAmount < premium {
		return domain.Policy{}, domain.ErrInsufficientPremium
	}

	now := l.clock.Now()
	p := domain.Policy{
		ID:               "pol-" + uuid.NewString(),
		Holder:           in.Holder,
		Location:         in.Location,
		LocationID:       in.Location.ID(),
		TriggerType:      in.TriggerType,
		TriggerThreshold: in.TriggerThreshold,
		Premium:          premium,
		CoverageAmount:   in.CoverageAmount,
		StartTime:        now,
		EndTime:          now.Add(in.Duration),
		Status:           domain.PolicyActive,
		CropType:         in.CropType,
		FarmSize:         in.FarmSize,
	}
	if err := l.store.SavePolicy(ctx, p); err != nil {
		return domain.Policy{}, err
	}

	overpaid := in.PaidAmount - premium
	if overpaid > 0 {
		if err := l.store.AddRefund(ctx, in.Holder, overpaid); err != nil {
			return domain.Policy{}, err
		}
	}

	// Deposit after the store writes, so a failed write never strands the
	// paid amount in the treasury. PaidAmount is at least the premium, which
	// is positive, so the deposit itself cannot fail.
	if err := l.tre.Fund(ctx, in.Holder, in.PaidAmount); err != nil {
		return domain.Policy{}, err
	}

	l.logger.InfoContext(ctx, "policy created",
		slog.String("policy_id", p.ID),
		slog.String("holder", string(p.Holder)),
		slog.Int64("premium", premium),
		slog.Int64("coverage", p.CoverageAmount),
	)
	l.sink.Publish(ctx, domain.PolicyCreated{Policy: p, PaidOver: overpaid, At: now})
	return p, nil
}

// CancelPolicy refunds the premium prorated for unused duration, less a flat
// 10% cancellation fee on the prorated amount, and marks the policy
// Cancelled. The rail payment happens before the status change so a failed
// transfer leaves the policy Active.
func (l *Ledger) CancelPolicy(ctx context.Context, policyID string, caller domain.Address) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.store.GetPolicy(ctx, policyID)
	if err != nil {
		return 0, err
	}
	if p.Holder != caller {
		return 0, domain.ErrNotPolicyholder
	}
	if p.Status != domain.PolicyActive {
		return 0, domain.ErrPolicyNotActive
	}
	now := l.clock.Now()
	if now.After(p.EndTime) {
		return 0, domain.ErrPolicyExpired
	}

	total := int64(p.EndTime.Sub(p.StartTime).Seconds())
	elapsed := int64(now.Sub(p.StartTime).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	refund := p.Premium * (total - elapsed) / total
	fee := refund / 10
	refund -= fee

	if refund > 0 {
		if err := l.tre.Refund(ctx, caller, refund); err != nil {
			return 0, err
		}
	}

	p.Status = domain.PolicyCancelled
	if err := l.store.SavePolicy(ctx, p); err != nil {
		return 0, err
	}

	l.logger.InfoContext(ctx, "policy cancelled",
		slog.String("policy_id", p.ID),
		slog.Int64("refund", refund),
		slog.Int64("fee", fee),
	)
	l.sink.Publish(ctx, domain.PolicyCancellation{
		PolicyID: p.ID,
		Holder:   p.Holder,
		Refund:   refund,
		Fee:      fee,
		At:       now,
	})
	return refund, nil
}

// SettleClaim pays the policy's full coverage amount to its holder and moves
// the policy to ClaimPaid, returning the payout. It holds the same mutex as
// CancelPolicy and ExpireDue, and re-checks the status under it, so a policy
// cannot be cancelled or expired while a payout is in flight and a settled
// policy can never be refunded afterwards. The payout happens before the
// status change: a failed transfer leaves the policy Active.
func (l *Ledger) SettleClaim(ctx context.Context, policyID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.store.GetPolicy(ctx, policyID)
	if err != nil {
		return 0, err
	}
	if p.Status != domain.PolicyActive {
		return 0, domain.ErrPolicyNotActive
	}

	if err := l.tre.Payout(ctx, p.Holder, p.CoverageAmount); err != nil {
		return 0, err
	}

	p.Status = domain.PolicyClaimPaid
	if err := l.store.SavePolicy(ctx, p); err != nil {
		return 0, err
	}

	l.logger.InfoContext(ctx, "claim settled",
		slog.String("policy_id", p.ID),
		slog.Int64("payout", p.CoverageAmount),
	)
	return p.CoverageAmount, nil
}

// GetPolicy returns a policy by ID.
func (l *Ledger) GetPolicy(ctx context.Context, policyID string) (domain.Policy, error) {
	return l.store.GetPolicy(ctx, policyID)
}

// PoliciesByHolder returns all policies held by an address, oldest first.
// Unknown holders get an empty slice.
func (l *Ledger) PoliciesByHolder(ctx context.Context, holder domain.Address) ([]domain.Policy, error) {
	return l.store.PoliciesByHolder(ctx, holder)
}

// CountPolicies returns the total number of policies ever created.
func (l *Ledger) CountPolicies(ctx context.Context) (int64, error) {
	return l.store.CountPolicies(ctx)
}

// ExpireDue moves Active policies past their end time to Expired and returns
// how many transitioned. Claims enforce the coverage window by timestamp, so
// sweep timing only affects reported status.
func (l *Ledger) ExpireDue(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	active, err := l.store.PoliciesByStatus(ctx, domain.PolicyActive)
	if err != nil {
		return 0, err
	}

	now := l.clock.Now()
	expired := 0
	for _, p := range active {
		if !now.After(p.EndTime) {
			continue
		}
		p.Status = domain.PolicyExpired
		if err := l.store.SavePolicy(ctx, p); err != nil {
			return expired, err
		}
		expired++
		l.sink.Publish(ctx, domain.PolicyExpiration{PolicyID: p.ID, Holder: p.Holder, At: now})
	}

	if expired > 0 {
		l.logger.InfoContext(ctx, "expired policies", slog.Int("count", expired))
	}
	return expired, nil
}

// RefundBalance returns a holder's accumulated refundable overpayment.
func (l *Ledger) RefundBalance(ctx context.Context, holder domain.Address) (int64, error) {
	return l.store.RefundBalance(ctx, holder)
}

// WithdrawRefund pays out the holder's entire refundable balance through the
// rail and zeroes it. Fails with InvalidAmount when nothing is owed; a failed
// transfer leaves the balance intact.
func (l *Ledger) WithdrawRefund(ctx context.Context, holder domain.Address) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, err := l.store.RefundBalance(ctx, holder)
	if err != nil {
		return 0, err
	}
	if balance <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	if err := l.tre.Refund(ctx, holder, balance); err != nil {
		return 0, err
	}
	if err := l.store.SetRefundBalance(ctx, holder, 0); err != nil {
		return 0, err
	}
	return balance, nil
}

// SetCoverageBounds updates the accepted coverage range. Owner only.
func (l *Ledger) SetCoverageBounds(caller domain.Address, min, max int64) error {
	if caller != l.owner {
		return domain.ErrNotOwner
	}
	if min <= 0 || max < min {
		return domain.ErrInvalidAmount
	}
	l.mu.Lock()
	l.bounds.MinCoverage, l.bounds.MaxCoverage = min, max
	l.mu.Unlock()
	return nil
}

// SetDurationBounds updates the accepted duration range. Owner only.
func (l *Ledger) SetDurationBounds(caller domain.Address, min, max time.Duration) error {
	if caller != l.owner {
		return domain.ErrNotOwner
	}
	if min <= 0 || max < min {
		return domain.ErrInvalidAmount
	}
	l.mu.Lock()
	l.bounds.MinDuration, l.bounds.MaxDuration = min, max
	l.mu.Unlock()
	return nil
}

// Bounds returns the current acceptance limits.
func (l *Ledger) Bounds() Bounds {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bounds
}
