package lead

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/actor"
	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	domainlead "github.com/MustafaBasol/crm-sub007/internal/domain/lead"
	portclock "github.com/MustafaBasol/crm-sub007/internal/port/clock"
	portlead "github.com/MustafaBasol/crm-sub007/internal/port/lead"
)

// Service manages the tenant's lead list. Every member sees every lead;
// only the creator or an admin may change one.
type Service struct {
	repo  portlead.Repository
	clock portclock.Clock
}

func NewService(repo portlead.Repository, clock portclock.Clock) *Service {
	return &Service{repo: repo, clock: clock}
}

func (s *Service) List(ctx context.Context, a actor.Actor) ([]domainlead.Lead, error) {
	leads, err := s.repo.List(ctx, a.TenantID)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

func (s *Service) Create(ctx context.Context, a actor.Actor, in domainlead.CreateInput) (domainlead.Lead, error) {
	if err := in.Validate(); err != nil {
		return domainlead.Lead{}, err
	}
	l := domainlead.New(a.TenantID, a.ID, in, s.clock.Now())
	if err := s.repo.Create(ctx, l); err != nil {
		return domainlead.Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return l, nil
}

func (s *Service) Update(ctx context.Context, a actor.Actor, id uuid.UUID, in domainlead.UpdateInput) (domainlead.Lead, error) {
	if err := in.Validate(); err != nil {
		return domainlead.Lead{}, err
	}
	l, err := s.editable(ctx, a, id)
	if err != nil {
		return domainlead.Lead{}, err
	}
	in.Apply(&l, a.ID, s.clock.Now())
	if err := s.repo.Update(ctx, l); err != nil {
		return domainlead.Lead{}, fmt.Errorf("update lead: %w", err)
	}
	return l, nil
}

func (s *Service) Delete(ctx context.Context, a actor.Actor, id uuid.UUID) error {
	l, err := s.editable(ctx, a, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, l.TenantID, l.ID); err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	return nil
}

func (s *Service) editable(ctx context.Context, a actor.Actor, id uuid.UUID) (domainlead.Lead, error) {
	l, err := s.repo.GetByID(ctx, a.TenantID, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return domainlead.Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return domainlead.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	if !l.CanEdit(a.ID, a.IsAdmin()) {
		return domainlead.Lead{}, apperr.Permission("only the creator or an admin can change this lead")
	}
	return l, nil
}
