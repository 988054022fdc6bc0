package cache

import (
	"context"
	"sync"
	"time"

	"github.com/netbill/backend/internal/domain/billing"
)

type entry struct {
	expiresAt time.Time
}

// InMemoryIdempotencyStore implements billing.IdempotencyStore with a map.
// Suitable for single-instance deployments and testing.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	entries   map[string]entry
	ttl       time.Duration
	stopChan  chan struct{}
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates an in-memory idempotency store and
// starts a background sweep for expired entries
func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	store := &InMemoryIdempotencyStore{
		entries:  make(map[string]entry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	go store.cleanupLoop()
	return store
}

// MarkProcessed claims a transaction ID. Returns true when the ID was
// fresh, false when already claimed and not yet expired.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, transactionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.entries[transactionID]; exists && time.Now().Before(e.expiresAt) {
		return false, nil
	}
	s.entries[transactionID] = entry{expiresAt: time.Now().Add(s.ttl)}
	return true, nil
}

// Release frees a claimed transaction ID
func (s *InMemoryIdempotencyStore) Release(ctx context.Context, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, transactionID)
	return nil
}

// Close stops the background cleanup
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
	})
	return nil
}

func (s *InMemoryIdempotencyStore) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for id, e := range s.entries {
				if now.After(e.expiresAt) {
					delete(s.entries, id)
				}
			}
			s.mu.Unlock()
		}
	}
}

var _ billing.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
