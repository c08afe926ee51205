package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	domainpipeline "github.com/MustafaBasol/crm-sub007/internal/domain/pipeline"
	portclock "github.com/MustafaBasol/crm-sub007/internal/port/clock"
	portpipeline "github.com/MustafaBasol/crm-sub007/internal/port/pipeline"
	porttx "github.com/MustafaBasol/crm-sub007/internal/port/tx"
	"github.com/MustafaBasol/crm-sub007/internal/retry"
)

// bootstrapAttempts covers one lost race on the unique default index plus the
// re-read of the winner.
const bootstrapAttempts = 3

// Service owns the per-tenant default pipeline and its stages.
type Service struct {
	repo  portpipeline.Repository
	tx    porttx.Manager
	clock portclock.Clock
}

func NewService(repo portpipeline.Repository, tx porttx.Manager, clock portclock.Clock) *Service {
	return &Service{repo: repo, tx: tx, clock: clock}
}

// Bootstrap returns the tenant's default pipeline, creating it with the seed
// stages on first call. Repeated calls return the same ids.
func (s *Service) Bootstrap(ctx context.Context, tenantID uuid.UUID) (domainpipeline.BootstrapResult, error) {
	var result domainpipeline.BootstrapResult
	err := retry.Do(ctx, bootstrapAttempts, isConflict, func(ctx context.Context, _ int) error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			existing, err := s.repo.GetDefault(ctx, tenantID)
			switch {
			case err == nil:
				stages, err := s.repo.ListStages(ctx, tenantID, existing.ID)
				if err != nil {
					return err
				}
				result = domainpipeline.BootstrapResult{PipelineID: existing.ID, StageIDs: domainpipeline.StageIDs(stages)}
				return nil
			case !errors.Is(err, apperr.ErrNotFound):
				return err
			}

			now := s.clock.Now()
			p := domainpipeline.NewDefault(tenantID, now)
			stages := domainpipeline.SeedStages(p, now)
			if err := s.repo.CreateWithStages(ctx, p, stages); err != nil {
				return err
			}
			result = domainpipeline.BootstrapResult{PipelineID: p.ID, StageIDs: domainpipeline.StageIDs(stages)}
			return nil
		})
	})
	if err != nil {
		return domainpipeline.BootstrapResult{}, fmt.Errorf("bootstrap default pipeline: %w", err)
	}
	return result, nil
}

// GetDefault returns nil when the tenant has not been bootstrapped.
func (s *Service) GetDefault(ctx context.Context, tenantID uuid.UUID) (*domainpipeline.Default, error) {
	p, err := s.repo.GetDefault(ctx, tenantID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get default pipeline: %w", err)
	}
	stages, err := s.repo.ListStages(ctx, tenantID, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	return &domainpipeline.Default{Pipeline: p, Stages: stages}, nil
}

// ListStages returns the default pipeline's stages in order, or an empty list
// before bootstrap.
func (s *Service) ListStages(ctx context.Context, tenantID uuid.UUID) ([]domainpipeline.Stage, error) {
	d, err := s.GetDefault(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return []domainpipeline.Stage{}, nil
	}
	return d.Stages, nil
}

func isConflict(err error) bool { return errors.Is(err, apperr.ErrConflict) }
