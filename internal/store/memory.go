package store

import (
	"context"
	"sync"

	"github.com/fieldsure/fieldsure/internal/domain"
)

// MemoryStore is an in-memory Store. Insertion order is preserved for listing
// so reads are deterministic.
type MemoryStore struct {
	mu          sync.RWMutex
	policies    map[string]domain.Policy
	policyOrder []string
	claims      map[string]domain.Claim
	claimOrder  []string
	refunds     map[domain.Address]int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		policies: make(map[string]domain.Policy),
		claims:   make(map[string]domain.Claim),
		refunds:  make(map[domain.Address]int64),
	}
}

func (s *MemoryStore) SavePolicy(_ context.Context, p domain.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[p.ID]; !ok {
		s.policyOrder = append(s.policyOrder, p.ID)
	}
	s.policies[p.ID] = p
	return nil
}

func (s *MemoryStore) GetPolicy(_ context.Context, id string) (domain.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.policies[id]
	if !ok {
		return domain.Policy{}, domain.ErrPolicyNotFound
	}
	return p, nil
}

func (s *MemoryStore) PoliciesByHolder(_ context.Context, holder domain.Address) ([]domain.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Policy
	for _, id := range s.policyOrder {
		if p := s.policies[id]; p.Holder == holder {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) PoliciesByStatus(_ context.Context, status domain.PolicyStatus) ([]domain.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Policy
	for _, id := range s.policyOrder {
		if p := s.policies[id]; p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) CountPolicies(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.policies)), nil
}

func (s *MemoryStore) SaveClaim(_ context.Context, c domain.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.claims[c.ID]; !ok {
		s.claimOrder = append(s.claimOrder, c.ID)
	}
	s.claims[c.ID] = c
	return nil
}

func (s *MemoryStore) GetClaim(_ context.Context, id string) (domain.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.claims[id]
	if !ok {
		return domain.Claim{}, domain.ErrClaimNotFound
	}
	return c, nil
}

func (s *MemoryStore) ClaimsByPolicy(_ context.Context, policyID string) ([]domain.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Claim
	for _, id := range s.claimOrder {
		if c := s.claims[id]; c.PolicyID == policyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) AddRefund(_ context.Context, holder domain.Address, amount int64) error {
	s.mu.Lock()
	s.refunds[holder] += amount
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) RefundBalance(_ context.Context, holder domain.Address) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.refunds[holder], nil
}

func (s *MemoryStore) SetRefundBalance(_ context.Context, holder domain.Address, amount int64) error {
	s.mu.Lock()
	s.refunds[holder] = amount
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
