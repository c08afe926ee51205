package crmtask

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MustafaBasol/crm-sub007/internal/adapter/postgres"
	domaintask "github.com/MustafaBasol/crm-sub007/internal/domain/crmtask"
	porttask "github.com/MustafaBasol/crm-sub007/internal/port/crmtask"
)

var _ porttask.Repository = (*Repository)(nil)

const taskColumns = `id, tenant_id, title, opportunity_id, account_id, due_at, completed, assignee_user_id,
	created_by_user_id, updated_by_user_id, source, source_rule_id, source_task_id, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, t domaintask.Task) error {
	_, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO crm_tasks (`+taskColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		t.ID, t.TenantID, t.Title, t.OpportunityID, t.AccountID, t.DueAt, t.Completed, t.AssigneeUserID,
		t.CreatedByUserID, t.UpdatedByUserID, postgres.NilIfEmpty(t.Source), t.SourceRuleID, t.SourceTaskID,
		t.CreatedAt, t.UpdatedAt,
	)
	return postgres.Translate(err, "insert crm task")
}

func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domaintask.Task, error) {
	row := postgres.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+taskColumns+` FROM crm_tasks WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	t, err := scanTask(row)
	if err != nil {
		return domaintask.Task{}, postgres.Translate(err, "get crm task")
	}
	return t, nil
}

func (r *Repository) List(ctx context.Context, f domaintask.ListFilters) ([]domaintask.Task, error) {
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
	if f.Incomplete {
		where = append(where, "NOT completed")
	}

	rows, err := postgres.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+taskColumns+` FROM crm_tasks
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY updated_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list crm tasks: %w", err)
	}
	defer rows.Close()

	out := []domaintask.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan crm task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, t domaintask.Task) error {
	tag, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE crm_tasks SET title = $3, due_at = $4, completed = $5, assignee_user_id = $6,
			updated_by_user_id = $7, updated_at = $8
		 WHERE tenant_id = $1 AND id = $2`,
		t.TenantID, t.ID, t.Title, t.DueAt, t.Completed, t.AssigneeUserID, t.UpdatedByUserID, t.UpdatedAt,
	)
	if err != nil {
		return postgres.Translate(err, "update crm task")
	}
	if tag.RowsAffected() == 0 {
		return postgres.Translate(pgx.ErrNoRows, "update crm task")
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM crm_tasks WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return postgres.Translate(err, "delete crm task")
	}
	if tag.RowsAffected() == 0 {
		return postgres.Translate(pgx.ErrNoRows, "delete crm task")
	}
	return nil
}

// ExistsSince matches on the subject that is set in q: the source task for
// overdue reminders, the opportunity for stale-deal reminders.
func (r *Repository) ExistsSince(ctx context.Context, q domaintask.ProvenanceQuery) (bool, error) {
	where := []string{"tenant_id = $1", "source_rule_id = $2", "created_at >= $3"}
	args := []any{q.TenantID, q.SourceRuleID, q.Since}
	if q.OpportunityID != nil {
		args = append(args, *q.OpportunityID)
		where = append(where, fmt.Sprintf("opportunity_id = $%d", len(args)))
	}
	if q.SourceTaskID != nil {
		args = append(args, *q.SourceTaskID)
		where = append(where, fmt.Sprintf("source_task_id = $%d", len(args)))
	}

	var exists bool
	err := postgres.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM crm_tasks WHERE `+strings.Join(where, " AND ")+`)`, args...,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check task provenance: %w", err)
	}
	return exists, nil
}

func scanTask(row pgx.Row) (domaintask.Task, error) {
	var (
		t      domaintask.Task
		source *string
	)
	err := row.Scan(&t.ID, &t.TenantID, &t.Title, &t.OpportunityID, &t.AccountID, &t.DueAt, &t.Completed,
		&t.AssigneeUserID, &t.CreatedByUserID, &t.UpdatedByUserID, &source, &t.SourceRuleID, &t.SourceTaskID,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domaintask.Task{}, err
	}
	if source != nil {
		t.Source = *source
	}
	return t, nil
}
