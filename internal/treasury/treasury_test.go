package treasury

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldsure/fieldsure/internal/domain"
)

const (
	testOwner  = domain.Address("owner-1")
	testFarmer = domain.Address("farmer-1")
)

type failingRail struct{}

func (failingRail) Pay(context.Context, domain.Address, int64) error {
	return errors.New("rail unavailable")
}

func TestFundAndBalance(t *testing.T) {
	tr := New(testOwner, NewInProcessRail(), nil, nil)

	require.NoError(t, tr.Fund(context.Background(), testFarmer, 10_000))
	require.NoError(t, tr.Fund(context.Background(), testOwner, 5_000))
	assert.Equal(t, int64(15_000), tr.Balance())

	assert.ErrorIs(t, tr.Fund(context.Background(), testFarmer, 0), domain.ErrInvalidAmount)
	assert.ErrorIs(t, tr.Fund(context.Background(), testFarmer, -100), domain.ErrInvalidAmount)
}

func TestPayout(t *testing.T) {
	rail := NewInProcessRail()
	tr := New(testOwner, rail, nil, nil)
	require.NoError(t, tr.Fund(context.Background(), testOwner, 10_000))

	require.NoError(t, tr.Payout(context.Background(), testFarmer, 6_000))

	assert.Equal(t, int64(4_000), tr.Balance())
	assert.Equal(t, int64(6_000), tr.TotalPaid())
	assert.Equal(t, int64(6_000), rail.BalanceOf(testFarmer))
}

func TestPayout_InsufficientReserve(t *testing.T) {
	rail := NewInProcessRail()
	tr := New(testOwner, rail, nil, nil)
	require.NoError(t, tr.Fund(context.Background(), testOwner, 1_000))

	err := tr.Payout(context.Background(), testFarmer, 2_000)
	assert.ErrorIs(t, err, domain.ErrInsufficientReserve)

	assert.Equal(t, int64(1_000), tr.Balance())
	assert.Equal(t, int64(0), tr.TotalPaid())
	assert.Equal(t, int64(0), rail.BalanceOf(testFarmer))
}

func TestPayout_RailFailureLeavesStateUntouched(t *testing.T) {
	tr := New(testOwner, failingRail{}, nil, nil)
	require.NoError(t, tr.Fund(context.Background(), testOwner, 10_000))

	err := tr.Payout(context.Background(), testFarmer, 6_000)
	assert.ErrorIs(t, err, domain.ErrTransferFailed)

	assert.Equal(t, int64(10_000), tr.Balance())
	assert.Equal(t, int64(0), tr.TotalPaid())
}

func TestRefund_DoesNotCountAsPayout(t *testing.T) {
	rail := NewInProcessRail()
	tr := New(testOwner, rail, nil, nil)
	require.NoError(t, tr.Fund(context.Background(), testOwner, 10_000))

	require.NoError(t, tr.Refund(context.Background(), testFarmer, 3_000))

	assert.Equal(t, int64(7_000), tr.Balance())
	assert.Equal(t, int64(0), tr.TotalPaid())
	assert.Equal(t, int64(3_000), rail.BalanceOf(testFarmer))
}

func TestWithdraw(t *testing.T) {
	rail := NewInProcessRail()
	tr := New(testOwner, rail, nil, nil)
	require.NoError(t, tr.Fund(context.Background(), testFarmer, 10_000))

	require.NoError(t, tr.Withdraw(context.Background(), testOwner, 4_000))
	assert.Equal(t, int64(6_000), tr.Balance())
	assert.Equal(t, int64(4_000), rail.BalanceOf(testOwner))

	assert.ErrorIs(t, tr.Withdraw(context.Background(), testFarmer, 100), domain.ErrNotOwner)
	assert.ErrorIs(t, tr.Withdraw(context.Background(), testOwner, 0), domain.ErrInvalidAmount)
	assert.ErrorIs(t, tr.Withdraw(context.Background(), testOwner, 100_000), domain.ErrInsufficientReserve)
}
