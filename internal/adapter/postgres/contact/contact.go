package contact

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MustafaBasol/crm-sub007/internal/adapter/postgres"
	domaincontact "github.com/MustafaBasol/crm-sub007/internal/domain/contact"
	portcontact "github.com/MustafaBasol/crm-sub007/internal/port/contact"
)

var _ portcontact.Repository = (*Repository)(nil)

const contactColumns = `id, tenant_id, name, email, phone, company, account_id,
	created_by_user_id, updated_by_user_id, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, c domaincontact.Contact) error {
	_, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO crm_contacts (`+contactColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		c.ID, c.TenantID, c.Name, c.Email, c.Phone, c.Company, c.AccountID,
		c.CreatedByUserID, c.UpdatedByUserID, c.CreatedAt, c.UpdatedAt,
	)
	return postgres.Translate(err, "insert contact")
}

func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domaincontact.Contact, error) {
	row := postgres.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+contactColumns+` FROM crm_contacts WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	c, err := scanContact(row)
	if err != nil {
		return domaincontact.Contact{}, postgres.Translate(err, "get contact")
	}
	return c, nil
}

func (r *Repository) List(ctx context.Context, f domaincontact.ListFilters) ([]domaincontact.Contact, error) {
	where := []string{"tenant_id = $1"}
	args := []any{f.TenantID}
	if f.AccountID != nil {
		args = append(args, *f.AccountID)
		where = append(where, fmt.Sprintf("account_id = $%d", len(args)))
	}
	if f.VisibleTo != nil {
		accounts := f.VisibleTo.Accounts
		if accounts == nil {
			accounts = []uuid.UUID{}
		}
		args = append(args, f.VisibleTo.CreatedBy, accounts)
		where = append(where, fmt.Sprintf("(created_by_user_id = $%d OR account_id = ANY($%d))", len(args)-1, len(args)))
	}

	rows, err := postgres.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+contactColumns+` FROM crm_contacts
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY updated_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	out := []domaincontact.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, c domaincontact.Contact) error {
	tag, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE crm_contacts SET name = $3, email = $4, phone = $5, company = $6, account_id = $7,
		        updated_by_user_id = $8, updated_at = $9
		 WHERE tenant_id = $1 AND id = $2`,
		c.TenantID, c.ID, c.Name, c.Email, c.Phone, c.Company, c.AccountID, c.UpdatedByUserID, c.UpdatedAt,
	)
	if err != nil {
		return postgres.Translate(err, "update contact")
	}
	if tag.RowsAffected() == 0 {
		return postgres.Translate(pgx.ErrNoRows, "update contact")
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM crm_contacts WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return postgres.Translate(err, "delete contact")
	}
	if tag.RowsAffected() == 0 {
		return postgres.Translate(pgx.ErrNoRows, "delete contact")
	}
	return nil
}

func scanContact(row pgx.Row) (domaincontact.Contact, error) {
	var c domaincontact.Contact
	err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.AccountID,
		&c.CreatedByUserID, &c.UpdatedByUserID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
