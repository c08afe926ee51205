package tenant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MustafaBasol/crm-sub007/internal/adapter/postgres"
	domaintenant "github.com/MustafaBasol/crm-sub007/internal/domain/tenant"
	porttenant "github.com/MustafaBasol/crm-sub007/internal/port/tenant"
)

var _ porttenant.Repository = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, t domaintenant.Tenant) error {
	_, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO tenants (id, name, created_at) VALUES ($1, $2, $3)`,
		t.ID, t.Name, t.CreatedAt,
	)
	return postgres.Translate(err, "insert tenant")
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domaintenant.Tenant, error) {
	var t domaintenant.Tenant
	err := postgres.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, created_at FROM tenants WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		return domaintenant.Tenant{}, postgres.Translate(err, "get tenant")
	}
	return t, nil
}

func (r *Repository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := postgres.Conn(ctx, r.pool).Query(ctx, `SELECT id FROM tenants ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tenant id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
