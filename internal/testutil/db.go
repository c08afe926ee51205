//go:build integration

package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MustafaBasol/crm-sub007/internal/adapter/postgres/migrations"
	pgtenant "github.com/MustafaBasol/crm-sub007/internal/adapter/postgres/tenant"
	domaintenant "github.com/MustafaBasol/crm-sub007/internal/domain/tenant"
)

// SetupTestDB connects to the test database and applies the embedded
// migrations. It skips the test if TEST_DATABASE_URL is not set.
// Each call uses the same DB; callers isolate by creating their own tenant.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect to test DB: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("ping test DB: %v", err)
	}
	if err := migrations.Apply(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("apply migrations: %v", err)
	}

	t.Cleanup(func() { pool.Close() })
	return pool
}

// NewTenant inserts a fresh tenant so each test owns its rows.
func NewTenant(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	tn := domaintenant.New("test-"+uuid.NewString()[:8], time.Now().UTC())
	if err := pgtenant.New(pool).Create(context.Background(), tn); err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	return tn.ID
}
