package quote

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MustafaBasol/crm-sub007/internal/adapter/postgres"
	domainquote "github.com/MustafaBasol/crm-sub007/internal/domain/quote"
	portquote "github.com/MustafaBasol/crm-sub007/internal/port/quote"
)

var _ portquote.Repository = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create relies on UNIQUE (tenant_id, number); a duplicate is ErrConflict.
func (r *Repository) Create(ctx context.Context, q domainquote.Quote) error {
	_, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO quotes (id, tenant_id, number, opportunity_id, account_id, total, currency, status,
			valid_until, created_by_user_id, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		q.ID, q.TenantID, q.Number, q.OpportunityID, q.AccountID, q.Total, q.Currency, string(q.Status),
		q.ValidUntil, q.CreatedByUserID, q.CreatedAt,
	)
	return postgres.Translate(err, "insert quote")
}

func (r *Repository) ListNumbers(ctx context.Context, tenantID uuid.UUID, prefix string) ([]string, error) {
	rows, err := postgres.Conn(ctx, r.pool).Query(ctx,
		`SELECT number FROM quotes WHERE tenant_id = $1 AND number LIKE $2 || '%'`, tenantID, prefix)
	if err != nil {
		return nil, fmt.Errorf("list quote numbers: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan quote number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func (r *Repository) List(ctx context.Context, tenantID uuid.UUID) ([]domainquote.Quote, error) {
	rows, err := postgres.Conn(ctx, r.pool).Query(ctx,
		`SELECT id, tenant_id, number, opportunity_id, account_id, total, currency, status, valid_until,
			created_by_user_id, created_at
		 FROM quotes WHERE tenant_id = $1 ORDER BY number DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	out := []domainquote.Quote{}
	for rows.Next() {
		var (
			q      domainquote.Quote
			status string
		)
		if err := rows.Scan(&q.ID, &q.TenantID, &q.Number, &q.OpportunityID, &q.AccountID, &q.Total, &q.Currency,
			&status, &q.ValidUntil, &q.CreatedByUserID, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		q.Status = domainquote.Status(status)
		out = append(out, q)
	}
	return out, rows.Err()
}
