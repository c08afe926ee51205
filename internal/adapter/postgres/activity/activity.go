package activity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MustafaBasol/crm-sub007/internal/adapter/postgres"
	domainactivity "github.com/MustafaBasol/crm-sub007/internal/domain/activity"
	portactivity "github.com/MustafaBasol/crm-sub007/internal/port/activity"
)

var _ portactivity.Repository = (*Repository)(nil)

const activityColumns = `id, tenant_id, type, title, notes, opportunity_id, account_id, due_at, completed,
	created_by_user_id, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, a domainactivity.Activity) error {
	_, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO crm_activities (`+activityColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		a.ID, a.TenantID, string(a.Type), a.Title, postgres.NilIfEmpty(a.Notes), a.OpportunityID, a.AccountID,
		a.DueAt, a.Completed, a.CreatedByUserID, a.CreatedAt, a.UpdatedAt,
	)
	return postgres.Translate(err, "insert activity")
}

func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domainactivity.Activity, error) {
	row := postgres.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+activityColumns+` FROM crm_activities WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	a, err := scanActivity(row)
	if err != nil {
		return domainactivity.Activity{}, postgres.Translate(err, "get activity")
	}
	return a, nil
}

func (r *Repository) List(ctx context.Context, f domainactivity.ListFilters) ([]domainactivity.Activity, error) {
	where := []string{"tenant_id = $1"}
	args := []any{f.TenantID}
	if f.OpportunityID != nil {
		args = append(args, *f.OpportunityID)
		where = append(where, fmt.Sprintf("opportunity_id = $%d", len(args)))
	}
	if f.AccountID != nil {
		args = append(args, *f.AccountID)
		where = append(where, fmt.Sprintf("account_id = $%d", len(args)))
	}

	rows, err := postgres.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+activityColumns+` FROM crm_activities
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	out := []domainactivity.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, a domainactivity.Activity) error {
	tag, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE crm_activities SET type = $3, title = $4, notes = $5, due_at = $6, completed = $7, updated_at = $8
		 WHERE tenant_id = $1 AND id = $2`,
		a.TenantID, a.ID, string(a.Type), a.Title, postgres.NilIfEmpty(a.Notes), a.DueAt, a.Completed, a.UpdatedAt,
	)
	if err != nil {
		return postgres.Translate(err, "update activity")
	}
	if tag.RowsAffected() == 0 {
		return postgres.Translate(pgx.ErrNoRows, "update activity")
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM crm_activities WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return postgres.Translate(err, "delete activity")
	}
	if tag.RowsAffected() == 0 {
		return postgres.Translate(pgx.ErrNoRows, "delete activity")
	}
	return nil
}

func scanActivity(row pgx.Row) (domainactivity.Activity, error) {
	var (
		a     domainactivity.Activity
		typ   string
		notes *string
	)
	err := row.Scan(&a.ID, &a.TenantID, &typ, &a.Title, &notes, &a.OpportunityID, &a.AccountID, &a.DueAt,
		&a.Completed, &a.CreatedByUserID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domainactivity.Activity{}, err
	}
	a.Type = domainactivity.Type(typ)
	if notes != nil {
		a.Notes = *notes
	}
	return a, nil
}
