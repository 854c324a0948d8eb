package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldsure/fieldsure/internal/domain"
)

func testPolicy(id string, holder domain.Address, status domain.PolicyStatus) domain.Policy {
	loc := domain.LocationFromDegrees(31.02, -98.44)
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	return domain.Policy{
		ID:               id,
		Holder:           holder,
		Location:         loc,
		LocationID:       loc.ID(),
		TriggerType:      domain.TriggerRainfallBelow,
		TriggerThreshold: 2000,
		Premium:          4_800,
		CoverageAmount:   1_000_000,
		StartTime:        start,
		EndTime:          start.AddDate(0, 0, 30),
		Status:           status,
		CropType:         "corn",
		FarmSize:         2_550,
	}
}

func TestMemoryStore_Policies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetPolicy(ctx, "pol-missing")
	assert.ErrorIs(t, err, domain.ErrPolicyNotFound)

	require.NoError(t, s.SavePolicy(ctx, testPolicy("pol-1", "farmer-1", domain.PolicyActive)))
	require.NoError(t, s.SavePolicy(ctx, testPolicy("pol-2", "farmer-2", domain.PolicyActive)))
	require.NoError(t, s.SavePolicy(ctx, testPolicy("pol-3", "farmer-1", domain.PolicyCancelled)))

	got, err := s.GetPolicy(ctx, "pol-1")
	require.NoError(t, err)
	assert.Equal(t, domain.Address("farmer-1"), got.Holder)
	assert.Equal(t, int64(1_000_000), got.CoverageAmount)

	byHolder, err := s.PoliciesByHolder(ctx, "farmer-1")
	require.NoError(t, err)
	require.Len(t, byHolder, 2)
	assert.Equal(t, "pol-1", byHolder[0].ID)
	assert.Equal(t, "pol-3", byHolder[1].ID)

	active, err := s.PoliciesByStatus(ctx, domain.PolicyActive)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	n, err := s.CountPolicies(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestMemoryStore_SavePolicyUpdatesStatus(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p := testPolicy("pol-1", "farmer-1", domain.PolicyActive)
	require.NoError(t, s.SavePolicy(ctx, p))

	p.Status = domain.PolicyClaimPaid
	require.NoError(t, s.SavePolicy(ctx, p))

	got, err := s.GetPolicy(ctx, "pol-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyClaimPaid, got.Status)

	n, err := s.CountPolicies(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryStore_Claims(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetClaim(ctx, "clm-missing")
	assert.ErrorIs(t, err, domain.ErrClaimNotFound)

	claim := domain.Claim{
		ID:              "clm-1",
		PolicyID:        "pol-1",
		FiledAt:         time.Date(2026, 6, 10, 8, 0, 0, 0, time.UTC),
		OracleRequestID: "req-1",
	}
	require.NoError(t, s.SaveClaim(ctx, claim))

	claim.Processed = true
	claim.ActualValue = 1500
	claim.PayoutAmount = 1_000_000
	require.NoError(t, s.SaveClaim(ctx, claim))

	got, err := s.GetClaim(ctx, "clm-1")
	require.NoError(t, err)
	assert.True(t, got.Processed)
	assert.Equal(t, int64(1_000_000), got.PayoutAmount)

	byPolicy, err := s.ClaimsByPolicy(ctx, "pol-1")
	require.NoError(t, err)
	assert.Len(t, byPolicy, 1)
}

func TestMemoryStore_Refunds(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	balance, err := s.RefundBalance(ctx, "farmer-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	require.NoError(t, s.AddRefund(ctx, "farmer-1", 500))
	require.NoError(t, s.AddRefund(ctx, "farmer-1", 250))

	balance, err = s.RefundBalance(ctx, "farmer-1")
	require.NoError(t, err)
	assert.Equal(t, int64(750), balance)

	require.NoError(t, s.SetRefundBalance(ctx, "farmer-1", 0))
	balance, err = s.RefundBalance(ctx, "farmer-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}
