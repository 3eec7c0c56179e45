package cache

import (
	"context"
	"sync"
	"time"
)

// MemorySessionRevocationStore is a process-local denylist for single
// instance and test runs. Expired entries are pruned lazily.
type MemorySessionRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	nowFn   func() time.Time
}

func NewMemorySessionRevocationStore() *MemorySessionRevocationStore {
	return &MemorySessionRevocationStore{revoked: map[string]time.Time{}, nowFn: time.Now}
}

func (s *MemorySessionRevocationStore) MarkRevoked(_ context.Context, tokenID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	for id, until := range s.revoked {
		if !until.After(now) {
			delete(s.revoked, id)
		}
	}
	if expiresAt.After(now) {
		s.revoked[tokenID] = expiresAt
	}
	return nil
}

func (s *MemorySessionRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.revoked[tokenID]
	return ok && until.After(s.nowFn()), nil
}
