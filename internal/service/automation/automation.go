package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/actor"
	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	domainauto "github.com/MustafaBasol/crm-sub007/internal/domain/automation"
	domaintask "github.com/MustafaBasol/crm-sub007/internal/domain/crmtask"
	"github.com/MustafaBasol/crm-sub007/internal/domain/event"
	domainopp "github.com/MustafaBasol/crm-sub007/internal/domain/opportunity"
	domainpipeline "github.com/MustafaBasol/crm-sub007/internal/domain/pipeline"
	portauto "github.com/MustafaBasol/crm-sub007/internal/port/automation"
	portclock "github.com/MustafaBasol/crm-sub007/internal/port/clock"
	porttask "github.com/MustafaBasol/crm-sub007/internal/port/crmtask"
	portbus "github.com/MustafaBasol/crm-sub007/internal/port/eventbus"
	portlocker "github.com/MustafaBasol/crm-sub007/internal/port/locker"
	portopp "github.com/MustafaBasol/crm-sub007/internal/port/opportunity"
	portpipeline "github.com/MustafaBasol/crm-sub007/internal/port/pipeline"
)

// Result reports what one evaluation pass produced.
type Result struct {
	TasksCreated int `json:"tasks_created"`
}

// Service evaluates automation rules and manages their definitions.
// It satisfies port/automation.Trigger.
type Service struct {
	rules     portauto.RuleRepository
	tasks     porttask.Repository
	opps      portopp.Repository
	pipelines portpipeline.Repository
	locker    portlocker.Locker
	bus       portbus.EventBus
	clock     portclock.Clock
}

func NewService(
	rules portauto.RuleRepository,
	tasks porttask.Repository,
	opps portopp.Repository,
	pipelines portpipeline.Repository,
	locker portlocker.Locker,
	bus portbus.EventBus,
	clock portclock.Clock,
) *Service {
	return &Service{
		rules:     rules,
		tasks:     tasks,
		opps:      opps,
		pipelines: pipelines,
		locker:    locker,
		bus:       bus,
		clock:     clock,
	}
}

var _ portauto.Trigger = (*Service)(nil)

// ── Event-driven ────────────────────────────────────────────────────────────

// OnStageChanged materializes the stage-task, stage-sequence and won-checklist
// tasks for a committed move. A failed insert is logged and the remaining
// plans still run; the joined error is returned alongside the count.
func (s *Service) OnStageChanged(ctx context.Context, t domainauto.Transition) (int, error) {
	rules, err := s.rules.List(ctx, domainauto.ListFilters{TenantID: t.TenantID, EnabledOnly: true})
	if err != nil {
		return 0, fmt.Errorf("list automation rules: %w", err)
	}

	var errs []error
	created := 0
	for _, plan := range domainauto.PlanTransition(rules, t) {
		task := plan.Task(t.TenantID, t.MoverUserID, t.At)
		if err := s.tasks.Create(ctx, task); err != nil {
			slog.ErrorContext(ctx, "failed to create automation task",
				"rule_id", plan.RuleID, "opportunity_id", t.Opportunity.ID, "error", err)
			errs = append(errs, fmt.Errorf("rule %s: %w", plan.RuleID, err))
			continue
		}
		created++
		s.bus.Publish(ctx, event.New(event.TypeTaskCreated, t.TenantID, task.ID)) //nolint:errcheck
	}
	if created > 0 {
		s.bus.Publish(ctx, event.New(event.TypeAutomationTasksCreated, t.TenantID, t.Opportunity.ID)) //nolint:errcheck
	}
	return created, errors.Join(errs...)
}

// ── Time-driven ─────────────────────────────────────────────────────────────

// EvaluateTimeDriven runs every enabled overdue-task and stale-deal rule of
// the tenant at now. It is the entry point of the scheduler.
func (s *Service) EvaluateTimeDriven(ctx context.Context, tenantID uuid.UUID, now time.Time) (Result, error) {
	return s.evaluate(ctx, tenantID, now, nil)
}

// Run is the manual trigger behind the admin endpoints. A nil kind runs
// both time-driven kinds.
func (s *Service) Run(ctx context.Context, a actor.Actor, kind *domainauto.Kind) (Result, error) {
	if !a.IsAdmin() {
		return Result{}, apperr.Permission("only admins can run automation")
	}
	if kind != nil && !kind.TimeDriven() {
		return Result{}, apperr.Validation("%s rules run on stage changes only", *kind)
	}
	return s.evaluate(ctx, a.TenantID, s.clock.Now(), kind)
}

func scanLockKey(tenantID uuid.UUID) string { return "crm:automation-scan:" + tenantID.String() }

func (s *Service) evaluate(ctx context.Context, tenantID uuid.UUID, now time.Time, kind *domainauto.Kind) (Result, error) {
	var result Result
	err := s.locker.WithLock(ctx, scanLockKey(tenantID), func(ctx context.Context) error {
		filters := domainauto.ListFilters{TenantID: tenantID, Kind: kind, EnabledOnly: true}
		rules, err := s.rules.List(ctx, filters)
		if err != nil {
			return fmt.Errorf("list automation rules: %w", err)
		}

		scan := newScan(s, tenantID, now)
		for _, r := range rules {
			var (
				n   int
				err error
			)
			switch r.Kind {
			case domainauto.KindOverdueTask:
				n, err = scan.overdue(ctx, r)
			case domainauto.KindStaleDeal:
				n, err = scan.stale(ctx, r)
			default:
				continue
			}
			result.TasksCreated += n
			if err != nil {
				slog.ErrorContext(ctx, "automation rule evaluation failed",
					"tenant_id", tenantID, "rule_id", r.ID, "kind", r.Kind, "error", err)
			}
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("evaluate time-driven rules: %w", err)
	}
	return result, nil
}

// scan caches lookups shared by the rules of one evaluation pass.
type scan struct {
	svc      *Service
	tenantID uuid.UUID
	now      time.Time

	openTasks     []domaintask.Task
	openTasksRead bool
	opps          map[uuid.UUID]*domainopp.Opportunity

	pipeline     *domainpipeline.Pipeline
	stages       []domainpipeline.Stage
	pipelineRead bool
}

func newScan(s *Service, tenantID uuid.UUID, now time.Time) *scan {
	return &scan{svc: s, tenantID: tenantID, now: now, opps: make(map[uuid.UUID]*domainopp.Opportunity)}
}

func (sc *scan) overdue(ctx context.Context, r domainauto.Rule) (int, error) {
	if !sc.openTasksRead {
		tasks, err := sc.svc.tasks.List(ctx, domaintask.ListFilters{TenantID: sc.tenantID, Incomplete: true})
		if err != nil {
			return 0, fmt.Errorf("list incomplete tasks: %w", err)
		}
		sc.openTasks, sc.openTasksRead = tasks, true
	}

	created := 0
	for _, t := range sc.openTasks {
		subject, err := sc.overdueSubject(ctx, t)
		if err != nil {
			return created, err
		}
		plan, ok := domainauto.PlanOverdue(r, subject, sc.now)
		if !ok {
			continue
		}
		q := domaintask.ProvenanceQuery{
			TenantID:     sc.tenantID,
			SourceRuleID: r.ID,
			SourceTaskID: plan.SourceTaskID,
			Since:        domainauto.CooldownSince(r.OverdueTask.CooldownDays, sc.now),
		}
		ok, err = sc.create(ctx, q, plan)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// overdueSubject resolves who owns a task for assignee purposes: the
// opportunity owner when linked, else the assignee, else the creator.
func (sc *scan) overdueSubject(ctx context.Context, t domaintask.Task) (domainauto.OverdueSubject, error) {
	subject := domainauto.OverdueSubject{Task: t}
	if t.OpportunityID != nil {
		o, err := sc.opportunity(ctx, *t.OpportunityID)
		if err != nil {
			return subject, err
		}
		if o != nil {
			owner := o.OwnerUserID
			subject.OwnerUserID = &owner
			subject.OpportunityName = o.Name
			return subject, nil
		}
	}
	switch {
	case t.AssigneeUserID != nil:
		subject.OwnerUserID = t.AssigneeUserID
	case t.CreatedByUserID != nil:
		subject.OwnerUserID = t.CreatedByUserID
	}
	return subject, nil
}

func (sc *scan) opportunity(ctx context.Context, id uuid.UUID) (*domainopp.Opportunity, error) {
	if o, ok := sc.opps[id]; ok {
		return o, nil
	}
	o, err := sc.svc.opps.GetByID(ctx, sc.tenantID, id)
	if errors.Is(err, apperr.ErrNotFound) {
		sc.opps[id] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get opportunity %s: %w", id, err)
	}
	sc.opps[id] = &o
	return &o, nil
}

func (sc *scan) stale(ctx context.Context, r domainauto.Rule) (int, error) {
	if !sc.pipelineRead {
		p, err := sc.svc.pipelines.GetDefault(ctx, sc.tenantID)
		switch {
		case errors.Is(err, apperr.ErrNotFound):
		case err != nil:
			return 0, fmt.Errorf("get default pipeline: %w", err)
		default:
			stages, err := sc.svc.pipelines.ListStages(ctx, sc.tenantID, p.ID)
			if err != nil {
				return 0, fmt.Errorf("list stages: %w", err)
			}
			sc.pipeline, sc.stages = &p, stages
		}
		sc.pipelineRead = true
	}
	if sc.pipeline == nil {
		return 0, nil
	}

	status := domainopp.StatusOpen
	cutoff := domainauto.StaleCutoff(r.StaleDeal.StaleDays, sc.now)
	opps, err := sc.svc.opps.List(ctx, domainopp.ListFilters{
		TenantID:      sc.tenantID,
		PipelineID:    &sc.pipeline.ID,
		Status:        &status,
		StageID:       r.StaleDeal.StageID,
		UpdatedBefore: &cutoff,
	})
	if err != nil {
		return 0, fmt.Errorf("list stale opportunities: %w", err)
	}

	created := 0
	for _, o := range opps {
		var stageName string
		if st, ok := domainpipeline.FindStage(sc.stages, o.StageID); ok {
			stageName = st.Name
		}
		plan, ok := domainauto.PlanStale(r, o, stageName, sc.now)
		if !ok {
			continue
		}
		q := domaintask.ProvenanceQuery{
			TenantID:      sc.tenantID,
			SourceRuleID:  r.ID,
			OpportunityID: plan.OpportunityID,
			Since:         domainauto.CooldownSince(r.StaleDeal.CooldownDays, sc.now),
		}
		ok, err := sc.create(ctx, q, plan)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// create inserts plan unless the rule already produced a task for the same
// subject inside the cooldown window.
func (sc *scan) create(ctx context.Context, q domaintask.ProvenanceQuery, plan domainauto.TaskPlan) (bool, error) {
	exists, err := sc.svc.tasks.ExistsSince(ctx, q)
	if err != nil {
		return false, fmt.Errorf("check cooldown: %w", err)
	}
	if exists {
		return false, nil
	}
	task := plan.Task(sc.tenantID, uuid.Nil, sc.now)
	if err := sc.svc.tasks.Create(ctx, task); err != nil {
		return false, fmt.Errorf("create reminder task: %w", err)
	}
	sc.svc.bus.Publish(ctx, event.New(event.TypeTaskCreated, sc.tenantID, task.ID)) //nolint:errcheck
	return true, nil
}

// ── Rule management ─────────────────────────────────────────────────────────

func (s *Service) CreateRule(ctx context.Context, a actor.Actor, in domainauto.RuleInput) (domainauto.Rule, error) {
	if !a.IsAdmin() {
		return domainauto.Rule{}, apperr.Permission("only admins can manage automation rules")
	}
	kind, err := domainauto.ParseKind(string(in.Kind))
	if err != nil {
		return domainauto.Rule{}, err
	}
	now := s.clock.Now()
	r := domainauto.New(a.TenantID, now)
	r.Kind = kind
	in.Apply(&r, now)
	if err := s.check(ctx, &r); err != nil {
		return domainauto.Rule{}, err
	}
	if err := s.rules.Create(ctx, r); err != nil {
		return domainauto.Rule{}, fmt.Errorf("create automation rule: %w", err)
	}
	return r, nil
}

func (s *Service) UpdateRule(ctx context.Context, a actor.Actor, id uuid.UUID, in domainauto.RuleInput) (domainauto.Rule, error) {
	r, err := s.GetRule(ctx, a, id)
	if err != nil {
		return domainauto.Rule{}, err
	}
	if in.Kind != "" {
		if kind, err := domainauto.ParseKind(string(in.Kind)); err != nil || kind != r.Kind {
			return domainauto.Rule{}, apperr.Validation("rule kind cannot be changed")
		}
	}
	in.Apply(&r, s.clock.Now())
	if err := s.check(ctx, &r); err != nil {
		return domainauto.Rule{}, err
	}
	if err := s.rules.Update(ctx, r); err != nil {
		return domainauto.Rule{}, fmt.Errorf("update automation rule: %w", err)
	}
	return r, nil
}

func (s *Service) GetRule(ctx context.Context, a actor.Actor, id uuid.UUID) (domainauto.Rule, error) {
	if !a.IsAdmin() {
		return domainauto.Rule{}, apperr.Permission("only admins can manage automation rules")
	}
	r, err := s.rules.GetByID(ctx, a.TenantID, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return domainauto.Rule{}, apperr.NotFound("automation rule not found")
	}
	if err != nil {
		return domainauto.Rule{}, fmt.Errorf("get automation rule: %w", err)
	}
	return r, nil
}

func (s *Service) ListRules(ctx context.Context, a actor.Actor, kind *domainauto.Kind) ([]domainauto.Rule, error) {
	if !a.IsAdmin() {
		return nil, apperr.Permission("only admins can manage automation rules")
	}
	rules, err := s.rules.List(ctx, domainauto.ListFilters{TenantID: a.TenantID, Kind: kind})
	if err != nil {
		return nil, fmt.Errorf("list automation rules: %w", err)
	}
	return rules, nil
}

// check validates the rule shape and that every referenced stage belongs to
// the tenant's default pipeline.
func (s *Service) check(ctx context.Context, r *domainauto.Rule) error {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return err
	}
	refs := r.StageRefs()
	if len(refs) == 0 {
		return nil
	}
	p, err := s.pipelines.GetDefault(ctx, r.TenantID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.Configuration("default pipeline is not initialized")
	}
	if err != nil {
		return fmt.Errorf("get default pipeline: %w", err)
	}
	stages, err := s.pipelines.ListStages(ctx, r.TenantID, p.ID)
	if err != nil {
		return fmt.Errorf("list stages: %w", err)
	}
	for _, id := range refs {
		if _, ok := domainpipeline.FindStage(stages, id); !ok {
			return apperr.Validation("stage %s is not in the default pipeline", id)
		}
	}
	return nil
}
