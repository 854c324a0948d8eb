package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Event names must not shadow the PolicyStatus constants; both sets are
// referenced here so a collision fails to compile.
func TestEventKindsAndKeys(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		event    Event
		wantKind string
		wantKey  string
	}{
		{PolicyCreated{Policy: Policy{ID: "pol-1", Status: PolicyActive}}, "policy_created", "pol-1"},
		{PolicyCancellation{PolicyID: "pol-2", At: now}, "policy_cancelled", "pol-2"},
		{PolicyExpiration{PolicyID: "pol-3", At: now}, "policy_expired", "pol-3"},
		{ClaimInitiated{ClaimID: "clm-1"}, "claim_initiated", "clm-1"},
		{ClaimProcessed{ClaimID: "clm-2"}, "claim_processed", "clm-2"},
		{OracleRequested{RequestID: "req-1"}, "oracle_requested", "req-1"},
		{OracleFulfilled{RequestID: "req-2"}, "oracle_fulfilled", "req-2"},
		{TreasuryFunded{From: "farmer-1"}, "treasury_funded", "farmer-1"},
		{TreasuryWithdrawal{To: "owner-1"}, "treasury_withdrawal", "owner-1"},
	}

	for _, tt := range tests {
		t.Run(tt.wantKind, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, tt.event.EventKind())
			assert.Equal(t, tt.wantKey, tt.event.EventKey())
		})
	}

	// The status constants the cancellation and expiry events correspond to.
	assert.Equal(t, PolicyStatus("cancelled"), PolicyCancelled)
	assert.Equal(t, PolicyStatus("expired"), PolicyExpired)
}
