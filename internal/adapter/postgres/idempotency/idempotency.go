package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	portidem "github.com/MustafaBasol/crm-sub007/internal/port/idempotency"
)

var _ portidem.Store = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Check looks up an unexpired idempotency key for the tenant.
func (r *Repository) Check(ctx context.Context, tenantID uuid.UUID, key string) (portidem.Record, bool, error) {
	query := `SELECT status_code, response_body FROM processed_operations
		WHERE tenant_id = $1 AND idempotency_key = $2 AND expires_at > NOW()`

	var rec portidem.Record
	err := r.pool.QueryRow(ctx, query, tenantID, key).Scan(&rec.StatusCode, &rec.Body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return portidem.Record{}, false, nil
		}
		return portidem.Record{}, false, fmt.Errorf("checking idempotency key: %w", err)
	}
	return rec, true, nil
}

// Save records the first response for the key. An expired row is replaced;
// a live one is kept.
func (r *Repository) Save(ctx context.Context, tenantID uuid.UUID, key, operation string, rec portidem.Record, ttl time.Duration) error {
	query := `
		INSERT INTO processed_operations (tenant_id, idempotency_key, operation_type, status_code, response_body, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW() + $6 * INTERVAL '1 second')
		ON CONFLICT (tenant_id, idempotency_key) DO UPDATE
		SET operation_type = EXCLUDED.operation_type,
		    status_code = EXCLUDED.status_code,
		    response_body = EXCLUDED.response_body,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at
		WHERE processed_operations.expires_at <= NOW()`

	_, err := r.pool.Exec(ctx, query, tenantID, key, operation, rec.StatusCode, rec.Body, int64(ttl/time.Second))
	if err != nil {
		return fmt.Errorf("storing idempotency key: %w", err)
	}
	return nil
}
