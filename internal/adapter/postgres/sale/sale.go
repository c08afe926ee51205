package sale

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MustafaBasol/crm-sub007/internal/adapter/postgres"
	domainsale "github.com/MustafaBasol/crm-sub007/internal/domain/sale"
	portsale "github.com/MustafaBasol/crm-sub007/internal/port/sale"
)

var _ portsale.Repository = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, s domainsale.Sale) error {
	_, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO sales (id, tenant_id, number, opportunity_id, quote_id, total, currency, sold_at,
			created_by_user_id, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		s.ID, s.TenantID, s.Number, s.OpportunityID, s.QuoteID, s.Total, s.Currency, s.SoldAt,
		s.CreatedByUserID, s.CreatedAt,
	)
	return postgres.Translate(err, "insert sale")
}

func (r *Repository) ListNumbers(ctx context.Context, tenantID uuid.UUID, prefix string) ([]string, error) {
	rows, err := postgres.Conn(ctx, r.pool).Query(ctx,
		`SELECT number FROM sales WHERE tenant_id = $1 AND number LIKE $2 || '%'`, tenantID, prefix)
	if err != nil {
		return nil, fmt.Errorf("list sale numbers: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan sale number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func (r *Repository) List(ctx context.Context, tenantID uuid.UUID) ([]domainsale.Sale, error) {
	rows, err := postgres.Conn(ctx, r.pool).Query(ctx,
		`SELECT id, tenant_id, number, opportunity_id, quote_id, total, currency, sold_at, created_by_user_id, created_at
		 FROM sales WHERE tenant_id = $1 ORDER BY sold_at DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	out := []domainsale.Sale{}
	for rows.Next() {
		var s domainsale.Sale
		if err := rows.Scan(&s.ID, &s.TenantID, &s.Number, &s.OpportunityID, &s.QuoteID, &s.Total, &s.Currency,
			&s.SoldAt, &s.CreatedByUserID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
