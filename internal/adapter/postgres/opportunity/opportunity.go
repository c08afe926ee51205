package opportunity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MustafaBasol/crm-sub007/internal/adapter/postgres"
	domainopp "github.com/MustafaBasol/crm-sub007/internal/domain/opportunity"
	portopp "github.com/MustafaBasol/crm-sub007/internal/port/opportunity"
)

var _ portopp.Repository = (*Repository)(nil)

const oppColumns = `o.id, o.tenant_id, o.pipeline_id, o.stage_id, o.account_id, o.owner_user_id, o.name,
	o.amount, o.currency, o.probability, o.expected_close_date, o.status, o.won_at, o.lost_at,
	o.lost_reason, o.created_at, o.updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, o domainopp.Opportunity) error {
	_, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO crm_opportunities (id, tenant_id, pipeline_id, stage_id, account_id, owner_user_id, name,
			amount, currency, probability, expected_close_date, status, won_at, lost_at, lost_reason,
			created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		o.ID, o.TenantID, o.PipelineID, o.StageID, o.AccountID, o.OwnerUserID, o.Name,
		o.Amount, o.Currency, o.Probability, o.ExpectedCloseDate, string(o.Status), o.WonAt, o.LostAt, o.LostReason,
		o.CreatedAt, o.UpdatedAt,
	)
	return postgres.Translate(err, "insert opportunity")
}

func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domainopp.Opportunity, error) {
	row := postgres.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+oppColumns+` FROM crm_opportunities o WHERE o.tenant_id = $1 AND o.id = $2`,
		tenantID, id)
	o, err := scanOpportunity(row)
	if err != nil {
		return domainopp.Opportunity{}, postgres.Translate(err, "get opportunity")
	}
	return o, nil
}

// GetVisible applies the owner-or-member condition in SQL so an invisible
// row and a missing row are indistinguishable.
func (r *Repository) GetVisible(ctx context.Context, tenantID, id, userID uuid.UUID) (domainopp.Opportunity, error) {
	row := postgres.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+oppColumns+` FROM crm_opportunities o
		 WHERE o.tenant_id = $1 AND o.id = $2
		   AND (o.owner_user_id = $3 OR EXISTS (
		        SELECT 1 FROM crm_opportunity_members m
		        WHERE m.tenant_id = o.tenant_id AND m.opportunity_id = o.id AND m.user_id = $3))`,
		tenantID, id, userID)
	o, err := scanOpportunity(row)
	if err != nil {
		return domainopp.Opportunity{}, postgres.Translate(err, "get opportunity")
	}
	return o, nil
}

func (r *Repository) Update(ctx context.Context, o domainopp.Opportunity) error {
	tag, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE crm_opportunities SET stage_id = $3, account_id = $4, name = $5, amount = $6, currency = $7,
			probability = $8, expected_close_date = $9, status = $10, won_at = $11, lost_at = $12,
			lost_reason = $13, updated_at = $14
		 WHERE tenant_id = $1 AND id = $2`,
		o.TenantID, o.ID, o.StageID, o.AccountID, o.Name, o.Amount, o.Currency,
		o.Probability, o.ExpectedCloseDate, string(o.Status), o.WonAt, o.LostAt,
		o.LostReason, o.UpdatedAt,
	)
	if err != nil {
		return postgres.Translate(err, "update opportunity")
	}
	if tag.RowsAffected() == 0 {
		return postgres.Translate(pgx.ErrNoRows, "update opportunity")
	}
	return nil
}

func (r *Repository) List(ctx context.Context, f domainopp.ListFilters) ([]domainopp.Opportunity, error) {
	where := []string{"o.tenant_id = $1"}
	args := []any{f.TenantID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.PipelineID != nil {
		add("o.pipeline_id = $%d", *f.PipelineID)
	}
	if f.AccountID != nil {
		add("o.account_id = $%d", *f.AccountID)
	}
	if f.Status != nil {
		add("o.status = $%d", string(*f.Status))
	}
	if f.StageID != nil {
		add("o.stage_id = $%d", *f.StageID)
	}
	if f.UpdatedBefore != nil {
		add("o.updated_at < $%d", *f.UpdatedBefore)
	}
	if f.VisibleTo != nil {
		args = append(args, *f.VisibleTo)
		n := len(args)
		where = append(where, fmt.Sprintf(`(o.owner_user_id = $%d OR EXISTS (
			SELECT 1 FROM crm_opportunity_members m
			WHERE m.tenant_id = o.tenant_id AND m.opportunity_id = o.id AND m.user_id = $%d))`, n, n))
	}

	rows, err := postgres.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+oppColumns+` FROM crm_opportunities o
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY o.updated_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()

	out := []domainopp.Opportunity{}
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repository) ReplaceMembers(ctx context.Context, tenantID, opportunityID uuid.UUID, userIDs []uuid.UUID) error {
	q := postgres.Conn(ctx, r.pool)
	if _, err := q.Exec(ctx,
		`DELETE FROM crm_opportunity_members WHERE tenant_id = $1 AND opportunity_id = $2`,
		tenantID, opportunityID,
	); err != nil {
		return postgres.Translate(err, "delete members")
	}
	if len(userIDs) == 0 {
		return nil
	}
	_, err := q.Exec(ctx,
		`INSERT INTO crm_opportunity_members (tenant_id, opportunity_id, user_id, position)
		 SELECT $1, $2, u.id, u.n FROM unnest($3::uuid[]) WITH ORDINALITY AS u(id, n)
		 ON CONFLICT DO NOTHING`,
		tenantID, opportunityID, userIDs,
	)
	return postgres.Translate(err, "insert members")
}

// ListMembers returns each opportunity's member ids in the order they were set.
func (r *Repository) ListMembers(ctx context.Context, tenantID uuid.UUID, opportunityIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID, len(opportunityIDs))
	if len(opportunityIDs) == 0 {
		return out, nil
	}
	rows, err := postgres.Conn(ctx, r.pool).Query(ctx,
		`SELECT opportunity_id, user_id FROM crm_opportunity_members
		 WHERE tenant_id = $1 AND opportunity_id = ANY($2)
		 ORDER BY opportunity_id, position ASC`, tenantID, opportunityIDs)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var oppID, userID uuid.UUID
		if err := rows.Scan(&oppID, &userID); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out[oppID] = append(out[oppID], userID)
	}
	return out, rows.Err()
}

func (r *Repository) AppendStageHistory(ctx context.Context, h domainopp.StageHistory) error {
	_, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO crm_opportunity_stage_history
			(id, tenant_id, opportunity_id, from_stage_id, to_stage_id, changed_by_user_id, changed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		h.ID, h.TenantID, h.OpportunityID, h.FromStageID, h.ToStageID, h.ChangedByUserID, h.ChangedAt,
	)
	return postgres.Translate(err, "append stage history")
}

func (r *Repository) ListStageHistory(ctx context.Context, tenantID, opportunityID uuid.UUID) ([]domainopp.StageHistory, error) {
	rows, err := postgres.Conn(ctx, r.pool).Query(ctx,
		`SELECT id, tenant_id, opportunity_id, from_stage_id, to_stage_id, changed_by_user_id, changed_at
		 FROM crm_opportunity_stage_history
		 WHERE tenant_id = $1 AND opportunity_id = $2
		 ORDER BY changed_at ASC, seq ASC`, tenantID, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("list stage history: %w", err)
	}
	defer rows.Close()

	out := []domainopp.StageHistory{}
	for rows.Next() {
		var h domainopp.StageHistory
		if err := rows.Scan(&h.ID, &h.TenantID, &h.OpportunityID, &h.FromStageID, &h.ToStageID, &h.ChangedByUserID, &h.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan stage history: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func scanOpportunity(row pgx.Row) (domainopp.Opportunity, error) {
	var (
		o           domainopp.Opportunity
		status      string
		probability decimal.NullDecimal
	)
	err := row.Scan(&o.ID, &o.TenantID, &o.PipelineID, &o.StageID, &o.AccountID, &o.OwnerUserID, &o.Name,
		&o.Amount, &o.Currency, &probability, &o.ExpectedCloseDate, &status, &o.WonAt, &o.LostAt,
		&o.LostReason, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domainopp.Opportunity{}, err
	}
	o.Status = domainopp.Status(status)
	if probability.Valid {
		p := probability.Decimal
		o.Probability = &p
	}
	return o, nil
}
