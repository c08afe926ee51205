package lead

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MustafaBasol/crm-sub007/internal/adapter/postgres"
	domainlead "github.com/MustafaBasol/crm-sub007/internal/domain/lead"
	portlead "github.com/MustafaBasol/crm-sub007/internal/port/lead"
)

var _ portlead.Repository = (*Repository)(nil)

const leadColumns = `id, tenant_id, name, email, phone, company, status,
	created_by_user_id, updated_by_user_id, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, l domainlead.Lead) error {
	_, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO crm_leads (`+leadColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		l.ID, l.TenantID, l.Name, l.Email, l.Phone, l.Company, l.Status,
		l.CreatedByUserID, l.UpdatedByUserID, l.CreatedAt, l.UpdatedAt,
	)
	return postgres.Translate(err, "insert lead")
}

func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domainlead.Lead, error) {
	row := postgres.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+leadColumns+` FROM crm_leads WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	l, err := scanLead(row)
	if err != nil {
		return domainlead.Lead{}, postgres.Translate(err, "get lead")
	}
	return l, nil
}

func (r *Repository) List(ctx context.Context, tenantID uuid.UUID) ([]domainlead.Lead, error) {
	rows, err := postgres.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+leadColumns+` FROM crm_leads WHERE tenant_id = $1 ORDER BY updated_at DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	out := []domainlead.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, l domainlead.Lead) error {
	tag, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE crm_leads SET name = $3, email = $4, phone = $5, company = $6, status = $7,
		        updated_by_user_id = $8, updated_at = $9
		 WHERE tenant_id = $1 AND id = $2`,
		l.TenantID, l.ID, l.Name, l.Email, l.Phone, l.Company, l.Status, l.UpdatedByUserID, l.UpdatedAt,
	)
	if err != nil {
		return postgres.Translate(err, "update lead")
	}
	if tag.RowsAffected() == 0 {
		return postgres.Translate(pgx.ErrNoRows, "update lead")
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM crm_leads WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return postgres.Translate(err, "delete lead")
	}
	if tag.RowsAffected() == 0 {
		return postgres.Translate(pgx.ErrNoRows, "delete lead")
	}
	return nil
}

func scanLead(row pgx.Row) (domainlead.Lead, error) {
	var l domainlead.Lead
	err := row.Scan(&l.ID, &l.TenantID, &l.Name, &l.Email, &l.Phone, &l.Company, &l.Status,
		&l.CreatedByUserID, &l.UpdatedByUserID, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}
