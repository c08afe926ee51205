package crmtask

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/actor"
	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	domaintask "github.com/MustafaBasol/crm-sub007/internal/domain/crmtask"
	"github.com/MustafaBasol/crm-sub007/internal/domain/event"
	portclock "github.com/MustafaBasol/crm-sub007/internal/port/clock"
	porttask "github.com/MustafaBasol/crm-sub007/internal/port/crmtask"
	portbus "github.com/MustafaBasol/crm-sub007/internal/port/eventbus"
	portopp "github.com/MustafaBasol/crm-sub007/internal/port/opportunity"
)

// Service manages manually created CRM tasks. Tasks linked to an opportunity
// inherit its visibility.
type Service struct {
	repo  porttask.Repository
	opps  portopp.Reader
	bus   portbus.EventBus
	clock portclock.Clock
}

func NewService(repo porttask.Repository, opps portopp.Reader, bus portbus.EventBus, clock portclock.Clock) *Service {
	return &Service{repo: repo, opps: opps, bus: bus, clock: clock}
}

func (s *Service) Create(ctx context.Context, a actor.Actor, in domaintask.CreateInput) (domaintask.Task, error) {
	if err := in.Validate(); err != nil {
		return domaintask.Task{}, err
	}
	if err := s.checkLink(ctx, a, in.OpportunityID); err != nil {
		return domaintask.Task{}, err
	}

	t := domaintask.New(a.TenantID, a.ID, in, s.clock.Now())
	if err := s.repo.Create(ctx, t); err != nil {
		return domaintask.Task{}, fmt.Errorf("create crm task: %w", err)
	}
	s.bus.Publish(ctx, event.New(event.TypeTaskCreated, t.TenantID, t.ID)) //nolint:errcheck
	return t, nil
}

// List returns the tasks of one opportunity or one account, newest first.
func (s *Service) List(ctx context.Context, a actor.Actor, opportunityID, accountID *uuid.UUID) ([]domaintask.Task, error) {
	if (opportunityID == nil) == (accountID == nil) {
		return nil, apperr.Validation("exactly one of opportunityId or accountId is required")
	}
	if err := s.checkLink(ctx, a, opportunityID); err != nil {
		return nil, err
	}
	tasks, err := s.repo.List(ctx, domaintask.ListFilters{
		TenantID:      a.TenantID,
		OpportunityID: opportunityID,
		AccountID:     accountID,
	})
	if err != nil {
		return nil, fmt.Errorf("list crm tasks: %w", err)
	}
	return tasks, nil
}

func (s *Service) Update(ctx context.Context, a actor.Actor, id uuid.UUID, in domaintask.UpdateInput) (domaintask.Task, error) {
	if err := in.Validate(); err != nil {
		return domaintask.Task{}, err
	}
	t, err := s.get(ctx, a, id)
	if err != nil {
		return domaintask.Task{}, err
	}
	in.Apply(&t, a.ID, s.clock.Now())
	if err := s.repo.Update(ctx, t); err != nil {
		return domaintask.Task{}, fmt.Errorf("update crm task: %w", err)
	}
	s.bus.Publish(ctx, event.New(event.TypeTaskUpdated, t.TenantID, t.ID)) //nolint:errcheck
	return t, nil
}

func (s *Service) Delete(ctx context.Context, a actor.Actor, id uuid.UUID) error {
	t, err := s.get(ctx, a, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, t.TenantID, t.ID); err != nil {
		return fmt.Errorf("delete crm task: %w", err)
	}
	s.bus.Publish(ctx, event.New(event.TypeTaskDeleted, t.TenantID, t.ID)) //nolint:errcheck
	return nil
}

func (s *Service) get(ctx context.Context, a actor.Actor, id uuid.UUID) (domaintask.Task, error) {
	t, err := s.repo.GetByID(ctx, a.TenantID, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return domaintask.Task{}, apperr.NotFound("task not found")
	}
	if err != nil {
		return domaintask.Task{}, fmt.Errorf("get crm task: %w", err)
	}
	if err := s.checkLink(ctx, a, t.OpportunityID); err != nil {
		return domaintask.Task{}, err
	}
	return t, nil
}

func (s *Service) checkLink(ctx context.Context, a actor.Actor, opportunityID *uuid.UUID) error {
	if opportunityID == nil {
		return nil
	}
	_, err := s.opps.Get(ctx, a, *opportunityID)
	return err
}
