package automation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MustafaBasol/crm-sub007/internal/adapter/memory"
	"github.com/MustafaBasol/crm-sub007/internal/domain/actor"
	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	domainauto "github.com/MustafaBasol/crm-sub007/internal/domain/automation"
	domaintask "github.com/MustafaBasol/crm-sub007/internal/domain/crmtask"
	"github.com/MustafaBasol/crm-sub007/internal/domain/event"
	domainopp "github.com/MustafaBasol/crm-sub007/internal/domain/opportunity"
	domainpipeline "github.com/MustafaBasol/crm-sub007/internal/domain/pipeline"
	"github.com/MustafaBasol/crm-sub007/internal/mocks"
	autosvc "github.com/MustafaBasol/crm-sub007/internal/service/automation"
	pipelinesvc "github.com/MustafaBasol/crm-sub007/internal/service/pipeline"
	"github.com/MustafaBasol/crm-sub007/internal/testutil"
)

var day0 = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type env struct {
	svc   *autosvc.Service
	store *memory.Store
	bus   *memory.EventBus
	clock *testutil.Clock

	tenantID uuid.UUID
	stages   map[string]domainpipeline.Stage
	pipeline domainpipeline.Pipeline
	admin    actor.Actor
	owner    uuid.UUID
	mover    uuid.UUID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	bus := memory.NewEventBus()
	clock := testutil.NewClock(day0)
	tenantID := uuid.New()

	psvc := pipelinesvc.NewService(store.Pipelines(), store, clock)
	_, err := psvc.Bootstrap(context.Background(), tenantID)
	require.NoError(t, err)
	d, err := psvc.GetDefault(context.Background(), tenantID)
	require.NoError(t, err)

	e := &env{
		svc: autosvc.NewService(store.Rules(), store.Tasks(), store.Opportunities(), store.Pipelines(),
			memory.NewLocker(), bus, clock),
		store:    store,
		bus:      bus,
		clock:    clock,
		tenantID: tenantID,
		stages:   make(map[string]domainpipeline.Stage),
		pipeline: d.Pipeline,
		admin:    actor.Actor{ID: uuid.New(), TenantID: tenantID, Role: actor.RoleTenantAdmin},
		owner:    uuid.New(),
		mover:    uuid.New(),
	}
	for _, st := range d.Stages {
		e.stages[st.Name] = st
	}
	return e
}

func (e *env) rule(t *testing.T, in domainauto.RuleInput) domainauto.Rule {
	t.Helper()
	r, err := e.svc.CreateRule(context.Background(), e.admin, in)
	require.NoError(t, err)
	// Rules evaluate in creation order.
	e.clock.Advance(time.Second)
	return r
}

func (e *env) opportunity(t *testing.T, name, stage string, updatedAt time.Time) domainopp.Opportunity {
	t.Helper()
	st := e.stages[stage]
	o := domainopp.New(e.tenantID, e.pipeline.ID, st.ID, e.owner, domainopp.CreateInput{Name: name}, updatedAt)
	o.ApplyStage(st, updatedAt)
	require.NoError(t, e.store.Opportunities().Create(context.Background(), o))
	return o
}

func (e *env) transition(o domainopp.Opportunity, from *domainpipeline.Stage, to string) domainauto.Transition {
	target := e.stages[to]
	o.ApplyStage(target, e.clock.Now())
	return domainauto.Transition{
		TenantID:    e.tenantID,
		Opportunity: o,
		FromStage:   from,
		ToStage:     target,
		MoverUserID: e.mover,
		At:          e.clock.Now(),
	}
}

func (e *env) stage(name string) *domainpipeline.Stage {
	st := e.stages[name]
	return &st
}

func (e *env) stageID(name string) *uuid.UUID {
	id := e.stages[name].ID
	return &id
}

func (e *env) tasks(t *testing.T) []domaintask.Task {
	t.Helper()
	tasks, err := e.store.Tasks().List(context.Background(), domaintask.ListFilters{TenantID: e.tenantID})
	require.NoError(t, err)
	return tasks
}

func (e *env) tasksFrom(t *testing.T, ruleID uuid.UUID) []domaintask.Task {
	t.Helper()
	var out []domaintask.Task
	for _, task := range e.tasks(t) {
		if task.SourceRuleID != nil && *task.SourceRuleID == ruleID {
			out = append(out, task)
		}
	}
	return out
}

func ptr[T any](v T) *T { return &v }

// ── Stage-driven rules ────────────────────────────────────────────────────────

func TestOnStageChanged_WildcardStageTask(t *testing.T) {
	e := newEnv(t)
	r := e.rule(t, domainauto.RuleInput{
		Kind: domainauto.KindStageTask,
		StageTask: &domainauto.StageTask{
			ToStageID:     e.stages["Proposal"].ID,
			TitleTemplate: "Send proposal for {{opportunityName}} ({{fromStageName}} -> {{toStageName}})",
			DueInDays:     2,
		},
	})
	o := e.opportunity(t, "Acme", "Lead", day0)

	n, err := e.svc.OnStageChanged(context.Background(), e.transition(o, e.stage("Lead"), "Proposal"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tasks := e.tasksFrom(t, r.ID)
	require.Len(t, tasks, 1)
	task := tasks[0]
	assert.Equal(t, "Send proposal for Acme (Lead -> Proposal)", task.Title)
	assert.Equal(t, &o.ID, task.OpportunityID)
	assert.Equal(t, ptr(e.clock.Now().AddDate(0, 0, 2).Format(time.DateOnly)), task.DueAt)
	assert.Equal(t, &e.owner, task.AssigneeUserID)
	assert.Equal(t, &e.mover, task.CreatedByUserID)
	assert.Equal(t, string(domainauto.KindStageTask), task.Source)
	assert.False(t, task.Completed)

	var types []event.Type
	for _, ev := range e.bus.Published() {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []event.Type{event.TypeTaskCreated, event.TypeAutomationTasksCreated}, types)
}

func TestOnStageChanged_FromStageMatching(t *testing.T) {
	tests := []struct {
		name     string
		ruleFrom string
		moveFrom string
		want     int
	}{
		{"wildcard from lead", "", "Lead", 1},
		{"wildcard from nowhere", "", "", 1},
		{"bound from matches", "Qualified", "Qualified", 1},
		{"bound from differs", "Qualified", "Lead", 0},
		{"bound from nowhere", "Qualified", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			st := &domainauto.StageTask{ToStageID: e.stages["Negotiation"].ID, TitleTemplate: "Negotiate"}
			if tt.ruleFrom != "" {
				st.FromStageID = e.stageID(tt.ruleFrom)
			}
			e.rule(t, domainauto.RuleInput{Kind: domainauto.KindStageTask, StageTask: st})
			o := e.opportunity(t, "Deal", "Lead", day0)

			var from *domainpipeline.Stage
			if tt.moveFrom != "" {
				from = e.stage(tt.moveFrom)
			}
			n, err := e.svc.OnStageChanged(context.Background(), e.transition(o, from, "Negotiation"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
			assert.Len(t, e.tasks(t), tt.want)
		})
	}
}

func TestOnStageChanged_RepeatTransitionsAlwaysFire(t *testing.T) {
	e := newEnv(t)
	e.rule(t, domainauto.RuleInput{
		Kind:      domainauto.KindStageTask,
		StageTask: &domainauto.StageTask{ToStageID: e.stages["Won"].ID, TitleTemplate: "Kickoff {{opportunityName}}"},
	})
	o := e.opportunity(t, "Deal", "Lead", day0)

	for i, step := range []struct{ from, to string }{{"Lead", "Won"}, {"Won", "Lead"}, {"Lead", "Won"}} {
		_, err := e.svc.OnStageChanged(context.Background(), e.transition(o, e.stage(step.from), step.to))
		require.NoError(t, err, "step %d", i)
		e.clock.Advance(time.Minute)
	}
	assert.Len(t, e.tasks(t), 2, "each arrival at Won creates its own task")
}

func TestOnStageChanged_SequenceKeepsItemOrder(t *testing.T) {
	e := newEnv(t)
	e.rule(t, domainauto.RuleInput{
		Kind:           domainauto.KindStageSequence,
		AssigneeTarget: ptr(domainauto.AssigneeMover),
		StageSequence: &domainauto.StageSequence{
			ToStageID: e.stages["Qualified"].ID,
			Items: []domainauto.SequenceItem{
				{TitleTemplate: "Discovery call", DueInDays: 0},
				{TitleTemplate: "Budget check", DueInDays: 3},
				{TitleTemplate: "Decision map", DueInDays: 7},
			},
		},
	})
	o := e.opportunity(t, "Deal", "Lead", day0)

	n, err := e.svc.OnStageChanged(context.Background(), e.transition(o, e.stage("Lead"), "Qualified"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	due := map[string]string{}
	for _, task := range e.tasks(t) {
		due[task.Title] = *task.DueAt
		assert.Equal(t, &e.mover, task.AssigneeUserID)
	}
	assert.Equal(t, map[string]string{
		"Discovery call": "2026-05-04",
		"Budget check":   "2026-05-07",
		"Decision map":   "2026-05-11",
	}, due)
}

func TestOnStageChanged_WonChecklistOnlyOnClosedWon(t *testing.T) {
	e := newEnv(t)
	specific := uuid.New()
	r := e.rule(t, domainauto.RuleInput{
		Kind:           domainauto.KindWonChecklist,
		AssigneeTarget: ptr(domainauto.AssigneeSpecific),
		AssigneeUserID: &specific,
		WonChecklist: &domainauto.WonChecklist{
			TitleTemplates: []string{"Invoice {{opportunityName}}", "Handover"},
			DueInDays:      1,
		},
	})
	o := e.opportunity(t, "Deal", "Lead", day0)

	n, err := e.svc.OnStageChanged(context.Background(), e.transition(o, e.stage("Lead"), "Lost"))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = e.svc.OnStageChanged(context.Background(), e.transition(o, e.stage("Lost"), "Won"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	for _, task := range e.tasksFrom(t, r.ID) {
		assert.Equal(t, &specific, task.AssigneeUserID)
		assert.Equal(t, string(domainauto.KindWonChecklist), task.Source)
	}
}

func TestOnStageChanged_DisabledRulesSkipped(t *testing.T) {
	e := newEnv(t)
	r := e.rule(t, domainauto.RuleInput{
		Kind:      domainauto.KindStageTask,
		StageTask: &domainauto.StageTask{ToStageID: e.stages["Won"].ID, TitleTemplate: "x"},
	})
	_, err := e.svc.UpdateRule(context.Background(), e.admin, r.ID, domainauto.RuleInput{Enabled: ptr(false)})
	require.NoError(t, err)
	o := e.opportunity(t, "Deal", "Lead", day0)

	n, err := e.svc.OnStageChanged(context.Background(), e.transition(o, e.stage("Lead"), "Won"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOnStageChanged_FailedInsertDoesNotStopOthers(t *testing.T) {
	ctrl := gomock.NewController(t)
	rules := mocks.NewMockRuleRepository(ctrl)
	tasks := mocks.NewMockTaskRepository(ctrl)
	bus := memory.NewEventBus()
	svc := autosvc.NewService(rules, tasks, nil, nil, memory.NewLocker(), bus, testutil.NewClock(day0))

	tenantID := uuid.New()
	won := domainpipeline.Stage{ID: uuid.New(), TenantID: tenantID, Name: "Won", IsClosedWon: true}
	first := domainauto.New(tenantID, day0)
	first.Kind = domainauto.KindStageTask
	first.StageTask = &domainauto.StageTask{ToStageID: won.ID, TitleTemplate: "first"}
	second := domainauto.New(tenantID, day0)
	second.Kind = domainauto.KindStageTask
	second.StageTask = &domainauto.StageTask{ToStageID: won.ID, TitleTemplate: "second"}

	rules.EXPECT().List(gomock.Any(), domainauto.ListFilters{TenantID: tenantID, EnabledOnly: true}).
		Return([]domainauto.Rule{first, second}, nil)
	gomock.InOrder(
		tasks.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("constraint violation")),
		tasks.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, task domaintask.Task) error {
				assert.Equal(t, "second", task.Title)
				return nil
			}),
	)

	n, err := svc.OnStageChanged(context.Background(), domainauto.Transition{
		TenantID:    tenantID,
		Opportunity: domainopp.Opportunity{ID: uuid.New(), TenantID: tenantID, OwnerUserID: uuid.New(), Name: "Deal"},
		ToStage:     won,
		MoverUserID: uuid.New(),
		At:          day0,
	})
	assert.Equal(t, 1, n)
	assert.ErrorContains(t, err, "constraint violation")
	assert.ErrorContains(t, err, first.ID.String())
}

func TestOnStageChanged_RuleListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	rules := mocks.NewMockRuleRepository(ctrl)
	svc := autosvc.NewService(rules, mocks.NewMockTaskRepository(ctrl), nil, nil, memory.NewLocker(),
		memory.NewEventBus(), testutil.NewClock(day0))

	rules.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("relation does not exist"))

	n, err := svc.OnStageChanged(context.Background(), domainauto.Transition{TenantID: uuid.New()})
	assert.Zero(t, n)
	assert.ErrorContains(t, err, "relation does not exist")
}

// ── Overdue-task scan ─────────────────────────────────────────────────────────

func (e *env) overdueRule(t *testing.T, cooldown int) domainauto.Rule {
	return e.rule(t, domainauto.RuleInput{
		Kind: domainauto.KindOverdueTask,
		OverdueTask: &domainauto.OverdueTask{
			OverdueDays:   1,
			TitleTemplate: "Chase: {{taskTitle}} on {{opportunityName}}",
			DueInDays:     1,
			CooldownDays:  cooldown,
		},
	})
}

func (e *env) task(t *testing.T, in domaintask.CreateInput, createdBy uuid.UUID) domaintask.Task {
	t.Helper()
	task := domaintask.New(e.tenantID, createdBy, in, day0.AddDate(0, 0, -10))
	require.NoError(t, e.store.Tasks().Create(context.Background(), task))
	return task
}

func TestEvaluateTimeDriven_OverdueReminder(t *testing.T) {
	e := newEnv(t)
	r := e.overdueRule(t, 7)
	o := e.opportunity(t, "Acme", "Lead", day0)
	late := e.task(t, domaintask.CreateInput{
		Title:         "Call back",
		OpportunityID: &o.ID,
		DueAt:         ptr(day0.AddDate(0, 0, -3).Format(time.DateOnly)),
	}, uuid.New())
	// Due yesterday is inside the one-day grace window.
	e.task(t, domaintask.CreateInput{
		Title:         "Grace",
		OpportunityID: &o.ID,
		DueAt:         ptr(day0.AddDate(0, 0, -1).Format(time.DateOnly)),
	}, uuid.New())
	e.task(t, domaintask.CreateInput{Title: "No due", OpportunityID: &o.ID}, uuid.New())
	e.task(t, domaintask.CreateInput{
		Title:         "Done",
		OpportunityID: &o.ID,
		DueAt:         ptr("2020-01-01"),
		Completed:     true,
	}, uuid.New())

	res, err := e.svc.EvaluateTimeDriven(context.Background(), e.tenantID, e.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, res.TasksCreated)

	reminders := e.tasksFrom(t, r.ID)
	require.Len(t, reminders, 1)
	rem := reminders[0]
	assert.Equal(t, "Chase: Call back on Acme", rem.Title)
	assert.Equal(t, &late.ID, rem.SourceTaskID)
	assert.Equal(t, &o.ID, rem.OpportunityID)
	assert.Equal(t, &e.owner, rem.AssigneeUserID, "opportunity owner takes the reminder")
	assert.Nil(t, rem.CreatedByUserID)
	assert.Equal(t, string(domainauto.KindOverdueTask), rem.Source)
}

func TestEvaluateTimeDriven_OverdueCooldownBoundary(t *testing.T) {
	e := newEnv(t)
	r := e.overdueRule(t, 7)
	account := uuid.New()
	creator := uuid.New()
	e.task(t, domaintask.CreateInput{
		Title:     "Renew contract",
		AccountID: &account,
		DueAt:     ptr("2026-04-01"),
	}, creator)

	steps := []struct {
		offset int
		want   int
	}{
		{0, 1},
		{1, 0},
		{7, 0},
		{8, 1},
	}
	for _, s := range steps {
		now := day0.AddDate(0, 0, s.offset)
		e.clock.Set(now)
		res, err := e.svc.EvaluateTimeDriven(context.Background(), e.tenantID, now)
		require.NoError(t, err)
		assert.Equal(t, s.want, res.TasksCreated, "day %d", s.offset)
	}

	reminders := e.tasksFrom(t, r.ID)
	require.Len(t, reminders, 2)
	for _, rem := range reminders {
		assert.Equal(t, &creator, rem.AssigneeUserID, "account tasks fall back to the creator")
		assert.Equal(t, &account, rem.AccountID)
	}
}

func TestEvaluateTimeDriven_RemindersAreNotChased(t *testing.T) {
	e := newEnv(t)
	e.overdueRule(t, 0)
	account := uuid.New()
	e.task(t, domaintask.CreateInput{Title: "Old", AccountID: &account, DueAt: ptr("2026-01-01")}, uuid.New())

	res, err := e.svc.EvaluateTimeDriven(context.Background(), e.tenantID, day0)
	require.NoError(t, err)
	require.Equal(t, 1, res.TasksCreated)

	// A month later the reminder itself is overdue, yet only the source task
	// is reminded about again.
	later := day0.AddDate(0, 1, 0)
	res, err = e.svc.EvaluateTimeDriven(context.Background(), e.tenantID, later)
	require.NoError(t, err)
	assert.Equal(t, 1, res.TasksCreated)
	assert.Len(t, e.tasks(t), 3)
}

// ── Stale-deal scan ───────────────────────────────────────────────────────────

func TestEvaluateTimeDriven_StaleDeals(t *testing.T) {
	e := newEnv(t)
	r := e.rule(t, domainauto.RuleInput{
		Kind: domainauto.KindStaleDeal,
		StaleDeal: &domainauto.StaleDeal{
			StaleDays:     30,
			TitleTemplate: "{{opportunityName}} idle in {{stageName}}",
			DueInDays:     0,
			CooldownDays:  7,
		},
	})
	stale := e.opportunity(t, "Dusty", "Proposal", day0.AddDate(0, 0, -31))
	e.opportunity(t, "Fresh", "Proposal", day0.AddDate(0, 0, -10))
	e.opportunity(t, "Closed", "Won", day0.AddDate(0, 0, -90))

	res, err := e.svc.EvaluateTimeDriven(context.Background(), e.tenantID, day0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.TasksCreated)

	reminders := e.tasksFrom(t, r.ID)
	require.Len(t, reminders, 1)
	assert.Equal(t, "Dusty idle in Proposal", reminders[0].Title)
	assert.Equal(t, &stale.ID, reminders[0].OpportunityID)
	assert.Equal(t, ptr("2026-05-04"), reminders[0].DueAt)
	assert.Equal(t, &e.owner, reminders[0].AssigneeUserID)

	e.clock.Set(day0.AddDate(0, 0, 3))
	res, err = e.svc.EvaluateTimeDriven(context.Background(), e.tenantID, e.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, res.TasksCreated, "cooldown suppresses the repeat")
}

func TestEvaluateTimeDriven_StaleStageFilter(t *testing.T) {
	e := newEnv(t)
	e.rule(t, domainauto.RuleInput{
		Kind: domainauto.KindStaleDeal,
		StaleDeal: &domainauto.StaleDeal{
			StaleDays:     10,
			StageID:       e.stageID("Negotiation"),
			TitleTemplate: "Nudge {{opportunityName}}",
			CooldownDays:  7,
		},
	})
	e.opportunity(t, "In negotiation", "Negotiation", day0.AddDate(0, 0, -20))
	e.opportunity(t, "In lead", "Lead", day0.AddDate(0, 0, -20))

	res, err := e.svc.EvaluateTimeDriven(context.Background(), e.tenantID, day0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.TasksCreated)
	assert.Equal(t, "Nudge In negotiation", e.tasks(t)[0].Title)
}

func TestEvaluateTimeDriven_NoPipeline(t *testing.T) {
	store := memory.NewStore()
	tenantID := uuid.New()
	r := domainauto.New(tenantID, day0)
	r.Kind = domainauto.KindStaleDeal
	r.StaleDeal = &domainauto.StaleDeal{StaleDays: 1, TitleTemplate: "x"}
	require.NoError(t, store.Rules().Create(context.Background(), r))

	svc := autosvc.NewService(store.Rules(), store.Tasks(), store.Opportunities(), store.Pipelines(),
		memory.NewLocker(), memory.NewEventBus(), testutil.NewClock(day0))

	res, err := svc.EvaluateTimeDriven(context.Background(), tenantID, day0)
	require.NoError(t, err)
	assert.Zero(t, res.TasksCreated)
}

func TestEvaluateTimeDriven_LockError(t *testing.T) {
	ctrl := gomock.NewController(t)
	locker := mocks.NewMockLocker(ctrl)
	svc := autosvc.NewService(mocks.NewMockRuleRepository(ctrl), mocks.NewMockTaskRepository(ctrl), nil, nil,
		locker, memory.NewEventBus(), testutil.NewClock(day0))
	tenantID := uuid.New()

	locker.EXPECT().WithLock(gomock.Any(), "crm:automation-scan:"+tenantID.String(), gomock.Any()).
		Return(errors.New("lock held"))

	_, err := svc.EvaluateTimeDriven(context.Background(), tenantID, day0)
	assert.ErrorContains(t, err, "lock held")
}

// ── Manual run ────────────────────────────────────────────────────────────────

func TestRun(t *testing.T) {
	e := newEnv(t)
	e.overdueRule(t, 7)
	e.rule(t, domainauto.RuleInput{
		Kind:      domainauto.KindStaleDeal,
		StaleDeal: &domainauto.StaleDeal{StaleDays: 30, TitleTemplate: "Stale {{opportunityName}}", CooldownDays: 7},
	})
	o := e.opportunity(t, "Old", "Lead", day0.AddDate(0, 0, -60))
	e.task(t, domaintask.CreateInput{Title: "Late", OpportunityID: &o.ID, DueAt: ptr("2026-04-01")}, uuid.New())

	t.Run("member denied", func(t *testing.T) {
		member := actor.Actor{ID: uuid.New(), TenantID: e.tenantID, Role: actor.RoleMember}
		_, err := e.svc.Run(context.Background(), member, nil)
		assert.ErrorIs(t, err, apperr.ErrPermission)
	})

	t.Run("event-driven kind rejected", func(t *testing.T) {
		_, err := e.svc.Run(context.Background(), e.admin, ptr(domainauto.KindWonChecklist))
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("stale only", func(t *testing.T) {
		res, err := e.svc.Run(context.Background(), e.admin, ptr(domainauto.KindStaleDeal))
		require.NoError(t, err)
		assert.Equal(t, 1, res.TasksCreated)
	})

	t.Run("all kinds", func(t *testing.T) {
		res, err := e.svc.Run(context.Background(), e.admin, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, res.TasksCreated, "the stale reminder is still cooling down")
	})
}

// ── Rule management ───────────────────────────────────────────────────────────

func TestCreateRule(t *testing.T) {
	tests := []struct {
		name    string
		actor   func(e *env) actor.Actor
		in      func(e *env) domainauto.RuleInput
		wantErr error
	}{
		{
			name: "member denied",
			actor: func(e *env) actor.Actor {
				return actor.Actor{ID: uuid.New(), TenantID: e.tenantID, Role: actor.RoleMember}
			},
			in: func(e *env) domainauto.RuleInput {
				return domainauto.RuleInput{Kind: domainauto.KindWonChecklist, WonChecklist: &domainauto.WonChecklist{TitleTemplates: []string{"x"}}}
			},
			wantErr: apperr.ErrPermission,
		},
		{
			name: "unknown kind",
			in: func(e *env) domainauto.RuleInput {
				return domainauto.RuleInput{Kind: "webhook"}
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "missing payload",
			in: func(e *env) domainauto.RuleInput {
				return domainauto.RuleInput{Kind: domainauto.KindStageTask}
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "blank title",
			in: func(e *env) domainauto.RuleInput {
				return domainauto.RuleInput{
					Kind:      domainauto.KindStageTask,
					StageTask: &domainauto.StageTask{ToStageID: e.stages["Won"].ID, TitleTemplate: "   "},
				}
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "stage outside default pipeline",
			in: func(e *env) domainauto.RuleInput {
				return domainauto.RuleInput{
					Kind:      domainauto.KindStageTask,
					StageTask: &domainauto.StageTask{ToStageID: uuid.New(), TitleTemplate: "x"},
				}
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "specific assignee without user",
			in: func(e *env) domainauto.RuleInput {
				return domainauto.RuleInput{
					Kind:           domainauto.KindWonChecklist,
					AssigneeTarget: ptr(domainauto.AssigneeSpecific),
					WonChecklist:   &domainauto.WonChecklist{TitleTemplates: []string{"x"}},
				}
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "hyphenated kind",
			in: func(e *env) domainauto.RuleInput {
				return domainauto.RuleInput{
					Kind:      "stale-deal",
					StaleDeal: &domainauto.StaleDeal{StaleDays: 14, TitleTemplate: "x"},
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			a := e.admin
			if tt.actor != nil {
				a = tt.actor(e)
			}
			r, err := e.svc.CreateRule(context.Background(), a, tt.in(e))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, r.Enabled)
			assert.Equal(t, domainauto.AssigneeOwner, r.AssigneeTarget)

			got, err := e.svc.GetRule(context.Background(), e.admin, r.ID)
			require.NoError(t, err)
			assert.Equal(t, r.Kind, got.Kind)
		})
	}
}

func TestCreateRule_StageRefBeforeBootstrap(t *testing.T) {
	store := memory.NewStore()
	tenantID := uuid.New()
	svc := autosvc.NewService(store.Rules(), store.Tasks(), store.Opportunities(), store.Pipelines(),
		memory.NewLocker(), memory.NewEventBus(), testutil.NewClock(day0))
	admin := actor.Actor{ID: uuid.New(), TenantID: tenantID, Role: actor.RoleTenantAdmin}

	_, err := svc.CreateRule(context.Background(), admin, domainauto.RuleInput{
		Kind:      domainauto.KindStageTask,
		StageTask: &domainauto.StageTask{ToStageID: uuid.New(), TitleTemplate: "x"},
	})
	assert.ErrorIs(t, err, apperr.ErrConfiguration)
}

func TestUpdateRule(t *testing.T) {
	e := newEnv(t)
	r := e.rule(t, domainauto.RuleInput{
		Kind:      domainauto.KindStageTask,
		StageTask: &domainauto.StageTask{ToStageID: e.stages["Won"].ID, TitleTemplate: "x"},
	})

	t.Run("kind is immutable", func(t *testing.T) {
		_, err := e.svc.UpdateRule(context.Background(), e.admin, r.ID, domainauto.RuleInput{Kind: domainauto.KindStaleDeal})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("replaces payload", func(t *testing.T) {
		got, err := e.svc.UpdateRule(context.Background(), e.admin, r.ID, domainauto.RuleInput{
			Kind:      "stage-task",
			StageTask: &domainauto.StageTask{ToStageID: e.stages["Lost"].ID, TitleTemplate: " Post-mortem "},
		})
		require.NoError(t, err)
		assert.Equal(t, e.stages["Lost"].ID, got.StageTask.ToStageID)
		assert.Equal(t, "Post-mortem", got.StageTask.TitleTemplate)
	})

	t.Run("unknown rule", func(t *testing.T) {
		_, err := e.svc.UpdateRule(context.Background(), e.admin, uuid.New(), domainauto.RuleInput{Enabled: ptr(false)})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("other tenant", func(t *testing.T) {
		stranger := actor.Actor{ID: uuid.New(), TenantID: uuid.New(), Role: actor.RoleTenantAdmin}
		_, err := e.svc.GetRule(context.Background(), stranger, r.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestListRules(t *testing.T) {
	e := newEnv(t)
	e.overdueRule(t, 7)
	e.rule(t, domainauto.RuleInput{
		Kind:         domainauto.KindWonChecklist,
		WonChecklist: &domainauto.WonChecklist{TitleTemplates: []string{"x"}},
	})

	all, err := e.svc.ListRules(context.Background(), e.admin, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, domainauto.KindOverdueTask, all[0].Kind)

	won, err := e.svc.ListRules(context.Background(), e.admin, ptr(domainauto.KindWonChecklist))
	require.NoError(t, err)
	require.Len(t, won, 1)
	assert.Equal(t, domainauto.KindWonChecklist, won[0].Kind)

	_, err = e.svc.ListRules(context.Background(), actor.Actor{ID: uuid.New(), TenantID: e.tenantID, Role: actor.RoleMember}, nil)
	assert.ErrorIs(t, err, apperr.ErrPermission)
}
