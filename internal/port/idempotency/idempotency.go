package idempotency

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is a replayable HTTP response.
type Record struct {
	StatusCode int
	Body       []byte
}

// Store remembers the first response for an Idempotency-Key per tenant.
type Store interface {
	Check(ctx context.Context, tenantID uuid.UUID, key string) (Record, bool, error)
	Save(ctx context.Context, tenantID uuid.UUID, key, operation string, rec Record, ttl time.Duration) error
}
