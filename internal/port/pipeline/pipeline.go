package pipeline

import (
	"context"

	"github.com/google/uuid"

	domainpipeline "github.com/MustafaBasol/crm-sub007/internal/domain/pipeline"
)

// Repository persists pipelines and their stages.
type Repository interface {
	// GetDefault returns apperr.ErrNotFound when the tenant has no default pipeline.
	GetDefault(ctx context.Context, tenantID uuid.UUID) (domainpipeline.Pipeline, error)
	// CreateWithStages returns apperr.ErrConflict when a default pipeline already exists.
	CreateWithStages(ctx context.Context, p domainpipeline.Pipeline, stages []domainpipeline.Stage) error
	// ListStages returns stages ordered by order, then creation.
	ListStages(ctx context.Context, tenantID, pipelineID uuid.UUID) ([]domainpipeline.Stage, error)
}

// Bootstrapper seeds a tenant's default pipeline. Implementations are
// idempotent.
type Bootstrapper interface {
	Bootstrap(ctx context.Context, tenantID uuid.UUID) (domainpipeline.BootstrapResult, error)
}
