package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MustafaBasol/crm-sub007/internal/adapter/postgres"
	domainpipeline "github.com/MustafaBasol/crm-sub007/internal/domain/pipeline"
	portpipeline "github.com/MustafaBasol/crm-sub007/internal/port/pipeline"
)

var _ portpipeline.Repository = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetDefault(ctx context.Context, tenantID uuid.UUID) (domainpipeline.Pipeline, error) {
	row := postgres.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, tenant_id, name, is_default, created_at, updated_at
		 FROM crm_pipelines WHERE tenant_id = $1 AND is_default`, tenantID)

	var p domainpipeline.Pipeline
	if err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.IsDefault, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domainpipeline.Pipeline{}, postgres.Translate(err, "get default pipeline")
	}
	return p, nil
}

// CreateWithStages inserts the pipeline and its stages in one batch. The
// partial unique index on is_default turns a racing bootstrap into ErrConflict.
func (r *Repository) CreateWithStages(ctx context.Context, p domainpipeline.Pipeline, stages []domainpipeline.Stage) error {
	q := postgres.Conn(ctx, r.pool)
	if _, err := q.Exec(ctx,
		`INSERT INTO crm_pipelines (id, tenant_id, name, is_default, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.TenantID, p.Name, p.IsDefault, p.CreatedAt, p.UpdatedAt,
	); err != nil {
		return postgres.Translate(err, "insert pipeline")
	}

	batch := &pgx.Batch{}
	for _, s := range stages {
		batch.Queue(
			`INSERT INTO crm_stages (id, tenant_id, pipeline_id, name, sort_order, is_closed_won, is_closed_lost, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			s.ID, s.TenantID, s.PipelineID, s.Name, s.Order, s.IsClosedWon, s.IsClosedLost, s.CreatedAt,
		)
	}
	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return postgres.Translate(err, "insert stages")
	}
	return nil
}

func (r *Repository) ListStages(ctx context.Context, tenantID, pipelineID uuid.UUID) ([]domainpipeline.Stage, error) {
	rows, err := postgres.Conn(ctx, r.pool).Query(ctx,
		`SELECT id, tenant_id, pipeline_id, name, sort_order, is_closed_won, is_closed_lost, created_at
		 FROM crm_stages WHERE tenant_id = $1 AND pipeline_id = $2
		 ORDER BY sort_order ASC, created_at ASC`, tenantID, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	stages := []domainpipeline.Stage{}
	for rows.Next() {
		var s domainpipeline.Stage
		if err := rows.Scan(&s.ID, &s.TenantID, &s.PipelineID, &s.Name, &s.Order, &s.IsClosedWon, &s.IsClosedLost, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}
