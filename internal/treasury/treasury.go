// Package treasury holds the premium reserve that claim payouts, refunds, and
// owner withdrawals draw from. Every outbound transfer is all-or-nothing: the
// rail payment happens before any balance mutation, so a failed transfer
// leaves the reserve untouched.
package treasury

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/fieldsure/fieldsure/internal/domain"
)

// Rail is the value transfer mechanism used for refunds and payouts. Pay must
// report success or failure synchronously.
type Rail interface {
	Pay(ctx context.Context, to domain.Address, amount int64) error
}

// Treasury is the serialized reserve ledger.
type Treasury struct {
	mu        sync.RWMutex
	balance   int64
	totalPaid int64

	owner domain.Address
	rail  Rail
	sink  domain.EventSink
	clock clockwork.Clock
}

// New creates an empty treasury administered by owner, paying through rail.
func New(owner domain.Address, rail Rail, sink domain.EventSink, clock clockwork.Clock) *Treasury {
	if sink == nil {
		sink = domain.NopSink{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Treasury{owner: owner, rail: rail, sink: sink, clock: clock}
}

// Balance returns the current reserve.
func (t *Treasury) Balance() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.balance
}

// TotalPaid returns the cumulative claim payout amount.
func (t *Treasury) TotalPaid() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totalPaid
}

// Fund credits the reserve. Any party may fund; premium deposits flow through
// here as well.
func (t *Treasury) Fund(ctx context.Context, from domain.Address, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}

	t.mu.Lock()
	t.balance += amount
	t.mu.Unlock()

	t.sink.Publish(ctx, domain.TreasuryFunded{From: from, Amount: amount, At: t.clock.Now()})
	return nil
}

// Withdraw moves reserve funds to the owner. Owner only.
func (t *Treasury) Withdraw(ctx context.Context, caller domain.Address, amount int64) error {
	if caller != t.owner {
		return domain.ErrNotOwner
	}
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}

	if err := t.debit(ctx, caller, amount, false); err != nil {
		return err
	}

	t.sink.Publish(ctx, domain.TreasuryWithdrawal{To: caller, Amount: amount, At: t.clock.Now()})
	return nil
}

// Payout transfers a claim payout and advances the cumulative-paid counter.
func (t *Treasury) Payout(ctx context.Context, to domain.Address, amount int64) error {
	return t.debit(ctx, to, amount, true)
}

// Refund transfers a policy refund out of the reserve.
func (t *Treasury) Refund(ctx context.Context, to domain.Address, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return t.debit(ctx, to, amount, false)
}

// debit pays first, then decrements. The rail call happens under the lock so
// reserve checks and balance updates stay totally ordered.
func (t *Treasury) debit(ctx context.Context, to domain.Address, amount int64, isPayout bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.balance < amount {
		return domain.ErrInsufficientReserve
	}
	if err := t.rail.Pay(ctx, to, amount); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransferFailed, err)
	}
	t.balance -= amount
	if isPayout {
		t.totalPaid += amount
	}
	return nil
}

// InProcessRail is a Rail backed by an in-memory account map, used in
// development mode and tests.
type InProcessRail struct {
	mu       sync.Mutex
	accounts map[domain.Address]int64
}

// NewInProcessRail creates an empty in-memory rail.
func NewInProcessRail() *InProcessRail {
	return &InProcessRail{accounts: make(map[domain.Address]int64)}
}

// Pay credits the recipient's in-memory account.
func (r *InProcessRail) Pay(_ context.Context, to domain.Address, amount int64) error {
	r.mu.Lock()
	r.accounts[to] += amount
	r.mu.Unlock()
	return nil
}

// BalanceOf returns the amount credited to an address so far.
func (r *InProcessRail) BalanceOf(addr domain.Address) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[addr]
}
