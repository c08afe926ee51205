package automation_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MustafaBasol/crm-sub007/internal/domain/automation"
	"github.com/MustafaBasol/crm-sub007/internal/domain/crmtask"
	"github.com/MustafaBasol/crm-sub007/internal/domain/opportunity"
	"github.com/MustafaBasol/crm-sub007/internal/domain/pipeline"
)

type fixture struct {
	stages []pipeline.Stage
	opp    opportunity.Opportunity
	owner  uuid.UUID
	mover  uuid.UUID
	now    time.Time
}

func newFixture() fixture {
	now := time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC)
	p := pipeline.NewDefault(uuid.New(), now)
	owner := uuid.New()
	return fixture{
		stages: pipeline.SeedStages(p, now),
		opp: opportunity.Opportunity{
			ID: uuid.New(), TenantID: p.TenantID, Name: "Acme renewal",
			OwnerUserID: owner, Status: opportunity.StatusOpen,
		},
		owner: owner,
		mover: uuid.New(),
		now:   now,
	}
}

func (f fixture) transition(from, to int) automation.Transition {
	var fromStage *pipeline.Stage
	if from >= 0 {
		s := f.stages[from]
		fromStage = &s
	}
	return automation.Transition{
		TenantID:    f.opp.TenantID,
		Opportunity: f.opp,
		FromStage:   fromStage,
		ToStage:     f.stages[to],
		MoverUserID: f.mover,
		At:          f.now,
	}
}

func stageTaskRule(from *uuid.UUID, to uuid.UUID, title string) automation.Rule {
	return automation.Rule{
		ID: uuid.New(), Kind: automation.KindStageTask, Enabled: true, AssigneeTarget: automation.AssigneeOwner,
		StageTask: &automation.StageTask{FromStageID: from, ToStageID: to, TitleTemplate: title, DueInDays: 3},
	}
}

// ── MatchesTransition ─────────────────────────────────────────────────────────

func TestMatchesTransition(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name     string
		ruleFrom *uuid.UUID
		ruleTo   uuid.UUID
		from     *uuid.UUID
		to       uuid.UUID
		want     bool
	}{
		{name: "wildcard origin", ruleFrom: nil, ruleTo: b, from: &a, to: b, want: true},
		{name: "wildcard matches no origin", ruleFrom: nil, ruleTo: b, from: nil, to: b, want: true},
		{name: "exact origin", ruleFrom: &a, ruleTo: b, from: &a, to: b, want: true},
		{name: "wrong origin", ruleFrom: &a, ruleTo: b, from: &c, to: b, want: false},
		{name: "bound origin needs an origin", ruleFrom: &a, ruleTo: b, from: nil, to: b, want: false},
		{name: "wrong destination", ruleFrom: nil, ruleTo: b, from: &a, to: c, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, automation.MatchesTransition(tt.ruleFrom, tt.ruleTo, tt.from, tt.to))
		})
	}
}

// ── PlanTransition ────────────────────────────────────────────────────────────

func TestPlanTransition_WildcardFiresFromAnyOrigin(t *testing.T) {
	f := newFixture()
	won := f.stages[4]
	rule := stageTaskRule(nil, won.ID, "Kickoff for {{opportunityName}}")

	for _, from := range []int{1, 2} {
		plans := automation.PlanTransition([]automation.Rule{rule}, f.transition(from, 4))
		require.Len(t, plans, 1)
		assert.Equal(t, "Kickoff for Acme renewal", plans[0].Title)
		assert.Equal(t, "2026-04-13", plans[0].DueAt)
		assert.Equal(t, rule.ID, plans[0].RuleID)
		assert.Equal(t, automation.KindStageTask, plans[0].Kind)
		assert.Equal(t, f.opp.ID, *plans[0].OpportunityID)
		assert.Equal(t, f.owner, *plans[0].AssigneeUserID)
	}

	assert.Empty(t, automation.PlanTransition([]automation.Rule{rule}, f.transition(4, 0)), "move back to Lead")
}

func TestPlanTransition_DisabledAndBoundOrigin(t *testing.T) {
	f := newFixture()
	qualified := f.stages[1].ID
	disabled := stageTaskRule(nil, f.stages[2].ID, "x")
	disabled.Enabled = false
	bound := stageTaskRule(&qualified, f.stages[2].ID, "From qualified")

	plans := automation.PlanTransition([]automation.Rule{disabled, bound}, f.transition(0, 2))
	assert.Empty(t, plans)

	plans = automation.PlanTransition([]automation.Rule{disabled, bound}, f.transition(1, 2))
	require.Len(t, plans, 1)
	assert.Equal(t, "From qualified", plans[0].Title)
}

func TestPlanTransition_SequenceKeepsOrder(t *testing.T) {
	f := newFixture()
	rule := automation.Rule{
		ID: uuid.New(), Kind: automation.KindStageSequence, Enabled: true, AssigneeTarget: automation.AssigneeMover,
		StageSequence: &automation.StageSequence{
			ToStageID: f.stages[2].ID,
			Items: []automation.SequenceItem{
				{TitleTemplate: "Draft proposal", DueInDays: 0},
				{TitleTemplate: "Review {{toStageName}}", DueInDays: 2},
				{TitleTemplate: "Send", DueInDays: 5},
			},
		},
	}

	plans := automation.PlanTransition([]automation.Rule{rule}, f.transition(1, 2))
	require.Len(t, plans, 3)
	assert.Equal(t, "Draft proposal", plans[0].Title)
	assert.Equal(t, "2026-04-10", plans[0].DueAt)
	assert.Equal(t, "Review Proposal", plans[1].Title)
	assert.Equal(t, "2026-04-12", plans[1].DueAt)
	assert.Equal(t, "2026-04-15", plans[2].DueAt)
	for _, p := range plans {
		assert.Equal(t, f.mover, *p.AssigneeUserID)
	}
}

func TestPlanTransition_WonChecklistOnlyOnClosedWon(t *testing.T) {
	f := newFixture()
	specific := uuid.New()
	rule := automation.Rule{
		ID: uuid.New(), Kind: automation.KindWonChecklist, Enabled: true,
		AssigneeTarget: automation.AssigneeSpecific, AssigneeUserID: &specific,
		WonChecklist: &automation.WonChecklist{TitleTemplates: []string{"Invoice", "Handover"}, DueInDays: 1},
	}

	assert.Empty(t, automation.PlanTransition([]automation.Rule{rule}, f.transition(3, 5)), "lost")
	assert.Empty(t, automation.PlanTransition([]automation.Rule{rule}, f.transition(0, 3)), "open")

	plans := automation.PlanTransition([]automation.Rule{rule}, f.transition(3, 4))
	require.Len(t, plans, 2)
	assert.Equal(t, "Invoice", plans[0].Title)
	assert.Equal(t, "Handover", plans[1].Title)
	assert.Equal(t, specific, *plans[0].AssigneeUserID)
}

func TestPlanTransition_IgnoresTimeDrivenRules(t *testing.T) {
	f := newFixture()
	rules := []automation.Rule{
		{ID: uuid.New(), Kind: automation.KindOverdueTask, Enabled: true, OverdueTask: &automation.OverdueTask{TitleTemplate: "x"}},
		{ID: uuid.New(), Kind: automation.KindStaleDeal, Enabled: true, StaleDeal: &automation.StaleDeal{StaleDays: 1, TitleTemplate: "x"}},
	}
	assert.Empty(t, automation.PlanTransition(rules, f.transition(0, 4)))
}

// ── Time-driven ───────────────────────────────────────────────────────────────

func overdueRule(overdueDays int) automation.Rule {
	return automation.Rule{
		ID: uuid.New(), Kind: automation.KindOverdueTask, Enabled: true, AssigneeTarget: automation.AssigneeMover,
		OverdueTask: &automation.OverdueTask{OverdueDays: overdueDays, TitleTemplate: "Overdue: {{taskTitle}}", DueInDays: 1, CooldownDays: 7},
	}
}

func TestIsOverdue(t *testing.T) {
	due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, automation.IsOverdue(due, 1, time.Date(2026, 1, 2, 23, 0, 0, 0, time.UTC)))
	assert.True(t, automation.IsOverdue(due, 1, time.Date(2026, 1, 3, 0, 30, 0, 0, time.UTC)))
	assert.False(t, automation.IsOverdue(due, 0, time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC)))
	assert.True(t, automation.IsOverdue(due, 0, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)))
}

func TestPlanOverdue(t *testing.T) {
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	owner := uuid.New()
	oppID := uuid.New()
	due := "2026-04-01"
	base := crmtask.Task{ID: uuid.New(), Title: "Send quote", OpportunityID: &oppID, DueAt: &due}

	t.Run("creates reminder assigned to owner when no mover", func(t *testing.T) {
		plan, ok := automation.PlanOverdue(overdueRule(1), automation.OverdueSubject{Task: base, OwnerUserID: &owner}, now)
		require.True(t, ok)
		assert.Equal(t, "Overdue: Send quote", plan.Title)
		assert.Equal(t, "2026-04-11", plan.DueAt)
		assert.Equal(t, owner, *plan.AssigneeUserID)
		assert.Equal(t, base.ID, *plan.SourceTaskID)
		assert.Equal(t, oppID, *plan.OpportunityID)
	})

	tests := []struct {
		name   string
		mutate func(task *crmtask.Task)
	}{
		{name: "completed", mutate: func(task *crmtask.Task) { task.Completed = true }},
		{name: "no due date", mutate: func(task *crmtask.Task) { task.DueAt = nil }},
		{name: "unparseable due date", mutate: func(task *crmtask.Task) { s := "soon"; task.DueAt = &s }},
		{name: "not yet overdue", mutate: func(task *crmtask.Task) { s := "2026-04-09"; task.DueAt = &s }},
		{name: "is itself a reminder", mutate: func(task *crmtask.Task) { task.Source = string(automation.KindOverdueTask) }},
	}
	for _, tt := range tests {
		t.Run("skips "+tt.name, func(t *testing.T) {
			task := base
			tt.mutate(&task)
			_, ok := automation.PlanOverdue(overdueRule(1), automation.OverdueSubject{Task: task, OwnerUserID: &owner}, now)
			assert.False(t, ok)
		})
	}
}

func TestPlanStale(t *testing.T) {
	f := newFixture()
	rule := automation.Rule{
		ID: uuid.New(), Kind: automation.KindStaleDeal, Enabled: true, AssigneeTarget: automation.AssigneeOwner,
		StaleDeal: &automation.StaleDeal{StaleDays: 30, TitleTemplate: "Revive {{opportunityName}} in {{stageName}}", DueInDays: 0, CooldownDays: 7},
	}

	opp := f.opp
	opp.StageID = f.stages[2].ID
	opp.UpdatedAt = f.now.AddDate(0, 0, -31)

	plan, ok := automation.PlanStale(rule, opp, "Proposal", f.now)
	require.True(t, ok)
	assert.Equal(t, "Revive Acme renewal in Proposal", plan.Title)
	assert.Equal(t, "2026-04-10", plan.DueAt)
	assert.Equal(t, f.owner, *plan.AssigneeUserID)

	fresh := opp
	fresh.UpdatedAt = f.now.AddDate(0, 0, -29)
	_, ok = automation.PlanStale(rule, fresh, "Proposal", f.now)
	assert.False(t, ok, "recently updated")

	won := opp
	won.Status = opportunity.StatusWon
	_, ok = automation.PlanStale(rule, won, "Won", f.now)
	assert.False(t, ok, "closed deals are never stale")

	filtered := rule
	lead := f.stages[0].ID
	filtered.StaleDeal = &automation.StaleDeal{StaleDays: 30, StageID: &lead, TitleTemplate: "x"}
	_, ok = automation.PlanStale(filtered, opp, "Proposal", f.now)
	assert.False(t, ok, "stage filter")
}

func TestCooldownSince(t *testing.T) {
	first := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	day7 := first.AddDate(0, 0, 7)
	day8 := first.AddDate(0, 0, 8)

	assert.False(t, first.Before(automation.CooldownSince(7, day7)), "day 7 still suppressed")
	assert.True(t, first.Before(automation.CooldownSince(7, day8)), "day 8 fires again")
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func TestResolveAssignee(t *testing.T) {
	owner, mover, specific := uuid.New(), uuid.New(), uuid.New()
	nilID := uuid.Nil

	assert.Equal(t, owner, *automation.ResolveAssignee(automation.AssigneeOwner, &specific, owner, &mover))
	assert.Equal(t, mover, *automation.ResolveAssignee(automation.AssigneeMover, nil, owner, &mover))
	assert.Equal(t, owner, *automation.ResolveAssignee(automation.AssigneeMover, nil, owner, nil))
	assert.Equal(t, owner, *automation.ResolveAssignee(automation.AssigneeMover, nil, owner, &nilID))
	assert.Equal(t, specific, *automation.ResolveAssignee(automation.AssigneeSpecific, &specific, owner, &mover))
	assert.Nil(t, automation.ResolveAssignee(automation.AssigneeOwner, nil, uuid.Nil, nil))
}

func TestRenderTitle(t *testing.T) {
	vars := map[string]string{"opportunityName": "Acme", "toStageName": "Won"}

	assert.Equal(t, "Acme moved to Won", automation.RenderTitle("{{opportunityName}} moved to {{ toStageName }}", vars))
	assert.Equal(t, "Literal title", automation.RenderTitle("Literal title", vars))
	assert.Equal(t, "Hi {{unknown}}", automation.RenderTitle("Hi {{unknown}}", vars))
	assert.Len(t, []rune(automation.RenderTitle(strings.Repeat("é", 300), nil)), crmtask.MaxTitleLength)
}

func TestTaskPlan_Task(t *testing.T) {
	oppID := uuid.New()
	plan := automation.TaskPlan{RuleID: uuid.New(), Kind: automation.KindStageTask, Title: "t", DueAt: "2026-01-01", OpportunityID: &oppID}
	task := plan.Task(uuid.New(), uuid.Nil, time.Now())

	assert.Equal(t, "stage_task", task.Source)
	assert.Equal(t, plan.RuleID, *task.SourceRuleID)
	assert.Equal(t, "2026-01-01", *task.DueAt)
	assert.Nil(t, task.CreatedByUserID)
	assert.True(t, task.IsAutomated())
}
