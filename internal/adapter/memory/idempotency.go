package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	portidem "github.com/MustafaBasol/crm-sub007/internal/port/idempotency"
)

var _ portidem.Store = (*IdempotencyStore)(nil)

type idemKey struct {
	tenantID uuid.UUID
	key      string
}

type idemEntry struct {
	record    portidem.Record
	expiresAt time.Time
}

// IdempotencyStore is a TTL map of replayable responses. Expired entries are
// dropped lazily on read.
type IdempotencyStore struct {
	mu      sync.RWMutex
	entries map[idemKey]idemEntry
	now     func() time.Time
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		entries: make(map[idemKey]idemEntry),
		now:     time.Now,
	}
}

func (s *IdempotencyStore) Check(_ context.Context, tenantID uuid.UUID, key string) (portidem.Record, bool, error) {
	k := idemKey{tenantID, key}
	s.mu.RLock()
	entry, ok := s.entries[k]
	s.mu.RUnlock()

	if !ok {
		return portidem.Record{}, false, nil
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, k)
		s.mu.Unlock()
		return portidem.Record{}, false, nil
	}
	return entry.record, true, nil
}

// Save keeps the first live record for a key.
func (s *IdempotencyStore) Save(_ context.Context, tenantID uuid.UUID, key, _ string, rec portidem.Record, ttl time.Duration) error {
	k := idemKey{tenantID, key}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[k]; ok && now.Before(existing.expiresAt) {
		return nil
	}
	s.entries[k] = idemEntry{record: rec, expiresAt: now.Add(ttl)}
	return nil
}
