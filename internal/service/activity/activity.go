package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	domainactivity "github.com/MustafaBasol/crm-sub007/internal/domain/activity"
	"github.com/MustafaBasol/crm-sub007/internal/domain/actor"
	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	portactivity "github.com/MustafaBasol/crm-sub007/internal/port/activity"
	portclock "github.com/MustafaBasol/crm-sub007/internal/port/clock"
	portopp "github.com/MustafaBasol/crm-sub007/internal/port/opportunity"
)

type Service struct {
	repo  portactivity.Repository
	opps  portopp.Reader
	clock portclock.Clock
}

func NewService(repo portactivity.Repository, opps portopp.Reader, clock portclock.Clock) *Service {
	return &Service{repo: repo, opps: opps, clock: clock}
}

func (s *Service) Create(ctx context.Context, a actor.Actor, in domainactivity.CreateInput) (domainactivity.Activity, error) {
	if err := in.Validate(); err != nil {
		return domainactivity.Activity{}, err
	}
	if err := s.checkLink(ctx, a, in.OpportunityID); err != nil {
		return domainactivity.Activity{}, err
	}
	act := domainactivity.New(a.TenantID, a.ID, in, s.clock.Now())
	if err := s.repo.Create(ctx, act); err != nil {
		return domainactivity.Activity{}, fmt.Errorf("create activity: %w", err)
	}
	return act, nil
}

func (s *Service) List(ctx context.Context, a actor.Actor, opportunityID, accountID *uuid.UUID) ([]domainactivity.Activity, error) {
	if opportunityID == nil && accountID == nil {
		return nil, apperr.Validation("opportunityId or accountId is required")
	}
	if err := s.checkLink(ctx, a, opportunityID); err != nil {
		return nil, err
	}
	acts, err := s.repo.List(ctx, domainactivity.ListFilters{
		TenantID:      a.TenantID,
		OpportunityID: opportunityID,
		AccountID:     accountID,
	})
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return acts, nil
}

// Complete marks the activity done. Completing twice is a no-op.
func (s *Service) Complete(ctx context.Context, a actor.Actor, id uuid.UUID) (domainactivity.Activity, error) {
	act, err := s.repo.GetByID(ctx, a.TenantID, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return domainactivity.Activity{}, apperr.NotFound("activity not found")
	}
	if err != nil {
		return domainactivity.Activity{}, fmt.Errorf("get activity: %w", err)
	}
	if err := s.checkLink(ctx, a, act.OpportunityID); err != nil {
		return domainactivity.Activity{}, err
	}
	if act.Completed {
		return act, nil
	}
	act.Completed = true
	act.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, act); err != nil {
		return domainactivity.Activity{}, fmt.Errorf("complete activity: %w", err)
	}
	return act, nil
}

func (s *Service) Update(ctx context.Context, a actor.Actor, id uuid.UUID, in domainactivity.UpdateInput) (domainactivity.Activity, error) {
	if err := in.Validate(); err != nil {
		return domainactivity.Activity{}, err
	}
	act, err := s.editable(ctx, a, id)
	if err != nil {
		return domainactivity.Activity{}, err
	}
	in.Apply(&act, s.clock.Now())
	if err := s.repo.Update(ctx, act); err != nil {
		return domainactivity.Activity{}, fmt.Errorf("update activity: %w", err)
	}
	return act, nil
}

func (s *Service) Delete(ctx context.Context, a actor.Actor, id uuid.UUID) error {
	act, err := s.editable(ctx, a, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, act.TenantID, act.ID); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}

// editable loads an activity for a change. Opportunity-linked activities are
// open to anyone who can see the opportunity; the rest only to their creator
// or an admin.
func (s *Service) editable(ctx context.Context, a actor.Actor, id uuid.UUID) (domainactivity.Activity, error) {
	act, err := s.repo.GetByID(ctx, a.TenantID, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return domainactivity.Activity{}, apperr.NotFound("activity not found")
	}
	if err != nil {
		return domainactivity.Activity{}, fmt.Errorf("get activity: %w", err)
	}
	if act.OpportunityID != nil {
		if err := s.checkLink(ctx, a, act.OpportunityID); err != nil {
			return domainactivity.Activity{}, err
		}
		return act, nil
	}
	if !a.IsAdmin() && act.CreatedByUserID != a.ID {
		return domainactivity.Activity{}, apperr.Permission("only the creator or an admin can change this activity")
	}
	return act, nil
}

func (s *Service) checkLink(ctx context.Context, a actor.Actor, opportunityID *uuid.UUID) error {
	if opportunityID == nil {
		return nil
	}
	_, err := s.opps.Get(ctx, a, *opportunityID)
	return err
}
