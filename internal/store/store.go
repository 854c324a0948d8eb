// Package store defines the persistence boundary for policies, claims, and
// refundable holder balances, with an in-memory implementation used by
// default and in tests.
package store

import (
	"context"

	"github.com/fieldsure/fieldsure/internal/domain"
)

// Store persists ledger state. Implementations must return
// domain.ErrPolicyNotFound / domain.ErrClaimNotFound on missing IDs and must
// be safe for concurrent use.
type Store interface {
	SavePolicy(ctx context.Context, p domain.Policy) error
	GetPolicy(ctx context.Context, id string) (domain.Policy, error)
	PoliciesByHolder(ctx context.Context, holder domain.Address) ([]domain.Policy, error)
	PoliciesByStatus(ctx context.Context, status domain.PolicyStatus) ([]domain.Policy, error)
	CountPolicies(ctx context.Context) (int64, error)

	SaveClaim(ctx context.Context, c domain.Claim) error
	GetClaim(ctx context.Context, id string) (domain.Claim, error)
	ClaimsByPolicy(ctx context.Context, policyID string) ([]domain.Claim, error)

	AddRefund(ctx context.Context, holder domain.Address, amount int64) error
	RefundBalance(ctx context.Context, holder domain.Address) (int64, error)
	SetRefundBalance(ctx context.Context, holder domain.Address, amount int64) error

	Close() error
}
