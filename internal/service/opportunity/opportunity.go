package opportunity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/actor"
	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	domainauto "github.com/MustafaBasol/crm-sub007/internal/domain/automation"
	"github.com/MustafaBasol/crm-sub007/internal/domain/event"
	domainopp "github.com/MustafaBasol/crm-sub007/internal/domain/opportunity"
	domainpipeline "github.com/MustafaBasol/crm-sub007/internal/domain/pipeline"
	portauto "github.com/MustafaBasol/crm-sub007/internal/port/automation"
	portclock "github.com/MustafaBasol/crm-sub007/internal/port/clock"
	portbus "github.com/MustafaBasol/crm-sub007/internal/port/eventbus"
	portopp "github.com/MustafaBasol/crm-sub007/internal/port/opportunity"
	portpipeline "github.com/MustafaBasol/crm-sub007/internal/port/pipeline"
	porttx "github.com/MustafaBasol/crm-sub007/internal/port/tx"
)

var (
	_ portopp.Reader        = (*Service)(nil)
	_ portopp.AccountAccess = (*Service)(nil)
)

// Service is the opportunity store and the stage transition engine.
// Every method is scoped to the actor's tenant.
type Service struct {
	repo      portopp.Repository
	pipelines portpipeline.Repository
	tx        porttx.Manager
	bus       portbus.EventBus
	trigger   portauto.Trigger
	clock     portclock.Clock
}

func NewService(
	repo portopp.Repository,
	pipelines portpipeline.Repository,
	tx porttx.Manager,
	bus portbus.EventBus,
	trigger portauto.Trigger,
	clock portclock.Clock,
) *Service {
	return &Service{
		repo:      repo,
		pipelines: pipelines,
		tx:        tx,
		bus:       bus,
		trigger:   trigger,
		clock:     clock,
	}
}

func (s *Service) Create(ctx context.Context, a actor.Actor, in domainopp.CreateInput) (domainopp.View, error) {
	if err := in.Validate(); err != nil {
		return domainopp.View{}, err
	}
	p, stages, err := s.defaultPipeline(ctx, a.TenantID)
	if err != nil {
		return domainopp.View{}, err
	}

	var stage domainpipeline.Stage
	if in.StageID == nil {
		lowest, ok := domainpipeline.LowestStage(stages)
		if !ok {
			return domainopp.View{}, apperr.Validation("default pipeline has no stages")
		}
		stage = lowest
	} else {
		found, ok := domainpipeline.FindStage(stages, *in.StageID)
		if !ok {
			return domainopp.View{}, apperr.Validation("invalid stage for default pipeline")
		}
		stage = found
	}

	o := domainopp.New(a.TenantID, p.ID, stage.ID, a.ID, in, s.clock.Now())
	team := domainopp.TeamWithOwner(in.TeamUserIDs, o.OwnerUserID)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, o); err != nil {
			return err
		}
		return s.repo.ReplaceMembers(ctx, o.TenantID, o.ID, team)
	})
	if err != nil {
		return domainopp.View{}, fmt.Errorf("create opportunity: %w", err)
	}

	s.bus.Publish(ctx, event.New(event.TypeOpportunityCreated, o.TenantID, o.ID)) //nolint:errcheck
	return domainopp.View{Opportunity: o, TeamUserIDs: team}, nil
}

// Get returns the opportunity with its team. Invisible opportunities are
// reported as not found.
func (s *Service) Get(ctx context.Context, a actor.Actor, id uuid.UUID) (domainopp.View, error) {
	o, err := s.access(ctx, a, id)
	if err != nil {
		return domainopp.View{}, err
	}
	team, err := s.team(ctx, o)
	if err != nil {
		return domainopp.View{}, err
	}
	return domainopp.View{Opportunity: o, TeamUserIDs: team}, nil
}

func (s *Service) Update(ctx context.Context, a actor.Actor, id uuid.UUID, in domainopp.UpdateInput) (domainopp.View, error) {
	if err := in.Validate(); err != nil {
		return domainopp.View{}, err
	}
	o, err := s.manageable(ctx, a, id, "only the owner or an admin can edit this opportunity")
	if err != nil {
		return domainopp.View{}, err
	}

	in.Apply(&o, s.clock.Now())
	if err := s.repo.Update(ctx, o); err != nil {
		return domainopp.View{}, fmt.Errorf("update opportunity: %w", err)
	}
	s.bus.Publish(ctx, event.New(event.TypeOpportunityUpdated, o.TenantID, o.ID)) //nolint:errcheck

	team, err := s.team(ctx, o)
	if err != nil {
		return domainopp.View{}, err
	}
	return domainopp.View{Opportunity: o, TeamUserIDs: team}, nil
}

// SetTeam replaces the membership set. The owner is always kept.
func (s *Service) SetTeam(ctx context.Context, a actor.Actor, id uuid.UUID, userIDs []uuid.UUID) (domainopp.Team, error) {
	o, err := s.manageable(ctx, a, id, "only the owner or an admin can change the team")
	if err != nil {
		return domainopp.Team{}, err
	}

	team := domainopp.TeamWithOwner(userIDs, o.OwnerUserID)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.repo.ReplaceMembers(ctx, o.TenantID, o.ID, team)
	})
	if err != nil {
		return domainopp.Team{}, fmt.Errorf("set opportunity team: %w", err)
	}

	s.bus.Publish(ctx, event.New(event.TypeOpportunityTeamChanged, o.TenantID, o.ID)) //nolint:errcheck
	return domainopp.Team{OpportunityID: o.ID, UserIDs: team}, nil
}

// Board lists the default pipeline's stages and the opportunities visible to
// the actor, each with its team and a forecast probability.
func (s *Service) Board(ctx context.Context, a actor.Actor) (domainopp.Board, error) {
	board := domainopp.Board{Stages: []domainopp.BoardStage{}, Opportunities: []domainopp.BoardItem{}}

	p, err := s.pipelines.GetDefault(ctx, a.TenantID)
	if errors.Is(err, apperr.ErrNotFound) {
		return board, nil
	}
	if err != nil {
		return domainopp.Board{}, fmt.Errorf("get default pipeline: %w", err)
	}
	stages, err := s.pipelines.ListStages(ctx, a.TenantID, p.ID)
	if err != nil {
		return domainopp.Board{}, fmt.Errorf("list stages: %w", err)
	}
	board.Pipeline = &domainopp.BoardPipeline{ID: p.ID, Name: p.Name}
	board.Stages = domainopp.BoardStages(stages)

	filters := domainopp.ListFilters{TenantID: a.TenantID, PipelineID: &p.ID}
	if !a.IsAdmin() {
		userID := a.ID
		filters.VisibleTo = &userID
	}
	opps, err := s.repo.List(ctx, filters)
	if err != nil {
		return domainopp.Board{}, fmt.Errorf("list opportunities: %w", err)
	}
	if len(opps) == 0 {
		return board, nil
	}

	ids := make([]uuid.UUID, 0, len(opps))
	for _, o := range opps {
		ids = append(ids, o.ID)
	}
	members, err := s.repo.ListMembers(ctx, a.TenantID, ids)
	if err != nil {
		return domainopp.Board{}, fmt.Errorf("list opportunity members: %w", err)
	}

	for _, o := range opps {
		team := members[o.ID]
		if team == nil {
			team = []uuid.UUID{}
		}
		board.Opportunities = append(board.Opportunities, domainopp.BoardItem{
			View:                domainopp.View{Opportunity: o, TeamUserIDs: team},
			ForecastProbability: domainopp.ForecastProbability(o, stages),
		})
	}
	return board, nil
}

// History returns the stage history of a visible opportunity, oldest first.
func (s *Service) History(ctx context.Context, a actor.Actor, id uuid.UUID) ([]domainopp.StageHistory, error) {
	o, err := s.access(ctx, a, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListStageHistory(ctx, o.TenantID, o.ID)
	if err != nil {
		return nil, fmt.Errorf("list stage history: %w", err)
	}
	return rows, nil
}

func (s *Service) CanAccessAccount(ctx context.Context, a actor.Actor, accountID uuid.UUID) (bool, error) {
	if a.IsAdmin() {
		return true, nil
	}
	userID := a.ID
	opps, err := s.repo.List(ctx, domainopp.ListFilters{TenantID: a.TenantID, VisibleTo: &userID, AccountID: &accountID})
	if err != nil {
		return false, fmt.Errorf("list account opportunities: %w", err)
	}
	return len(opps) > 0, nil
}

func (s *Service) AccessibleAccounts(ctx context.Context, a actor.Actor) ([]uuid.UUID, error) {
	if a.IsAdmin() {
		return nil, nil
	}
	userID := a.ID
	opps, err := s.repo.List(ctx, domainopp.ListFilters{TenantID: a.TenantID, VisibleTo: &userID})
	if err != nil {
		return nil, fmt.Errorf("list visible opportunities: %w", err)
	}
	seen := make(map[uuid.UUID]bool)
	out := []uuid.UUID{}
	for _, o := range opps {
		if o.AccountID == nil || seen[*o.AccountID] {
			continue
		}
		seen[*o.AccountID] = true
		out = append(out, *o.AccountID)
	}
	return out, nil
}

// access resolves an opportunity for the actor. Non-admins only find
// opportunities they own or belong to; anything else is not found.
func (s *Service) access(ctx context.Context, a actor.Actor, id uuid.UUID) (domainopp.Opportunity, error) {
	var (
		o   domainopp.Opportunity
		err error
	)
	if a.IsAdmin() {
		o, err = s.repo.GetByID(ctx, a.TenantID, id)
	} else {
		o, err = s.repo.GetVisible(ctx, a.TenantID, id, a.ID)
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return domainopp.Opportunity{}, apperr.NotFound("opportunity not found")
	}
	if err != nil {
		return domainopp.Opportunity{}, fmt.Errorf("get opportunity: %w", err)
	}
	return o, nil
}

// manageable loads an opportunity of the actor's tenant for an owner or admin
// edit. Other users get a permission error whether or not they are on the
// team.
func (s *Service) manageable(ctx context.Context, a actor.Actor, id uuid.UUID, denied string) (domainopp.Opportunity, error) {
	o, err := s.repo.GetByID(ctx, a.TenantID, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return domainopp.Opportunity{}, apperr.NotFound("opportunity not found")
	}
	if err != nil {
		return domainopp.Opportunity{}, fmt.Errorf("get opportunity: %w", err)
	}
	if !actor.CanManageOpportunity(a, o.OwnerUserID) {
		return domainopp.Opportunity{}, apperr.Permission("%s", denied)
	}
	return o, nil
}

func (s *Service) defaultPipeline(ctx context.Context, tenantID uuid.UUID) (domainpipeline.Pipeline, []domainpipeline.Stage, error) {
	p, err := s.pipelines.GetDefault(ctx, tenantID)
	if errors.Is(err, apperr.ErrNotFound) {
		return domainpipeline.Pipeline{}, nil, apperr.Configuration("default pipeline is not initialized")
	}
	if err != nil {
		return domainpipeline.Pipeline{}, nil, fmt.Errorf("get default pipeline: %w", err)
	}
	stages, err := s.pipelines.ListStages(ctx, tenantID, p.ID)
	if err != nil {
		return domainpipeline.Pipeline{}, nil, fmt.Errorf("list stages: %w", err)
	}
	return p, stages, nil
}

func (s *Service) team(ctx context.Context, o domainopp.Opportunity) ([]uuid.UUID, error) {
	members, err := s.repo.ListMembers(ctx, o.TenantID, []uuid.UUID{o.ID})
	if err != nil {
		return nil, fmt.Errorf("list opportunity members: %w", err)
	}
	team := members[o.ID]
	if team == nil {
		team = []uuid.UUID{}
	}
	return team, nil
}

// Move carries an opportunity to stageID. The opportunity write and the
// history row commit together; automation runs afterwards and cannot fail
// the move.
func (s *Service) Move(ctx context.Context, a actor.Actor, id, stageID uuid.UUID) (domainopp.View, error) {
	o, err := s.access(ctx, a, id)
	if err != nil {
		return domainopp.View{}, err
	}
	if !actor.CanManageOpportunity(a, o.OwnerUserID) {
		return domainopp.View{}, apperr.Permission("only the owner or an admin can move this opportunity")
	}
	_, stages, err := s.defaultPipeline(ctx, a.TenantID)
	if err != nil {
		return domainopp.View{}, err
	}
	target, ok := domainpipeline.FindStage(stages, stageID)
	if !ok {
		return domainopp.View{}, apperr.Validation("invalid stage for default pipeline")
	}

	fromStageID := o.StageID
	now := s.clock.Now()
	o.ApplyStage(target, now)
	history := domainopp.NewStageHistory(o.TenantID, o.ID, &fromStageID, target.ID, a.ID, now)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, o); err != nil {
			return err
		}
		return s.repo.AppendStageHistory(ctx, history)
	})
	if err != nil {
		return domainopp.View{}, fmt.Errorf("move opportunity stage: %w", err)
	}

	s.bus.Publish(ctx, event.New(event.TypeOpportunityStageChanged, o.TenantID, o.ID)) //nolint:errcheck

	transition := domainauto.Transition{
		TenantID:    o.TenantID,
		Opportunity: o,
		ToStage:     target,
		MoverUserID: a.ID,
		At:          now,
	}
	if from, ok := domainpipeline.FindStage(stages, fromStageID); ok {
		transition.FromStage = &from
	}
	s.runAutomation(context.WithoutCancel(ctx), transition)

	team, err := s.team(ctx, o)
	if err != nil {
		return domainopp.View{}, err
	}
	return domainopp.View{Opportunity: o, TeamUserIDs: team}, nil
}

// runAutomation is the post-commit effect of a move. Errors and panics are
// logged and dropped.
func (s *Service) runAutomation(ctx context.Context, t domainauto.Transition) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "automation panicked after stage move",
				"opportunity_id", t.Opportunity.ID, "to_stage_id", t.ToStage.ID, "panic", r)
		}
	}()
	created, err := s.trigger.OnStageChanged(ctx, t)
	if err != nil {
		slog.ErrorContext(ctx, "automation failed after stage move",
			"opportunity_id", t.Opportunity.ID, "from_stage_id", t.FromStageID(), "to_stage_id", t.ToStage.ID,
			"error", errors.Join(apperr.ErrAutomation, err))
		return
	}
	if created > 0 {
		slog.Info("automation created tasks", "opportunity_id", t.Opportunity.ID, "count", created)
	}
}
