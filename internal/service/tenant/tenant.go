package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	domaintenant "github.com/MustafaBasol/crm-sub007/internal/domain/tenant"
	portclock "github.com/MustafaBasol/crm-sub007/internal/port/clock"
	portpipeline "github.com/MustafaBasol/crm-sub007/internal/port/pipeline"
	porttenant "github.com/MustafaBasol/crm-sub007/internal/port/tenant"
)

type Service struct {
	repo      porttenant.Repository
	pipelines portpipeline.Bootstrapper
	clock     portclock.Clock
}

func NewService(repo porttenant.Repository, pipelines portpipeline.Bootstrapper, clock portclock.Clock) *Service {
	return &Service{repo: repo, pipelines: pipelines, clock: clock}
}

// Create onboards a tenant and seeds its default pipeline.
func (s *Service) Create(ctx context.Context, name string) (domaintenant.Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domaintenant.Tenant{}, apperr.Validation("name is required")
	}
	t := domaintenant.New(name, s.clock.Now())
	if err := s.repo.Create(ctx, t); err != nil {
		return domaintenant.Tenant{}, fmt.Errorf("create tenant: %w", err)
	}
	if _, err := s.pipelines.Bootstrap(ctx, t.ID); err != nil {
		return domaintenant.Tenant{}, fmt.Errorf("onboard tenant: %w", err)
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domaintenant.Tenant, error) {
	t, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return domaintenant.Tenant{}, apperr.NotFound("tenant not found")
	}
	if err != nil {
		return domaintenant.Tenant{}, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

func (s *Service) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return ids, nil
}
