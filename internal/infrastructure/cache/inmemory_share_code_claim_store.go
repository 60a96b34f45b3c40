package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type claimEntry struct {
	expiresAt time.Time
}

// InMemoryShareCodeClaimStore is a single-instance claim store for
// deployments without Redis and for tests.
type InMemoryShareCodeClaimStore struct {
	mu      sync.Mutex
	entries map[string]claimEntry
	ttl     time.Duration
}

// NewInMemoryShareCodeClaimStore creates an in-memory claim store
func NewInMemoryShareCodeClaimStore(ttl time.Duration) *InMemoryShareCodeClaimStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &InMemoryShareCodeClaimStore{
		entries: make(map[string]claimEntry),
		ttl:     ttl,
	}
}

func claimKey(tenantID uuid.UUID, code string) string {
	return tenantID.String() + ":" + code
}

// TryClaim claims the share code for this tenant. Returns false when
// another checkout already holds an unexpired claim.
func (s *InMemoryShareCodeClaimStore) TryClaim(_ context.Context, tenantID uuid.UUID, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := claimKey(tenantID, code)
	if e, exists := s.entries[key]; exists && time.Now().Before(e.expiresAt) {
		return false, nil
	}
	s.entries[key] = claimEntry{expiresAt: time.Now().Add(s.ttl)}
	return true, nil
}

// Release drops the claim
func (s *InMemoryShareCodeClaimStore) Release(_ context.Context, tenantID uuid.UUID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, claimKey(tenantID, code))
	return nil
}
