package automation

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/crmtask"
	"github.com/MustafaBasol/crm-sub007/internal/domain/opportunity"
	"github.com/MustafaBasol/crm-sub007/internal/domain/pipeline"
)

// Transition is the context of a committed stage move.
type Transition struct {
	TenantID    uuid.UUID
	Opportunity opportunity.Opportunity
	FromStage   *pipeline.Stage
	ToStage     pipeline.Stage
	MoverUserID uuid.UUID
	At          time.Time
}

func (t Transition) FromStageID() *uuid.UUID {
	if t.FromStage == nil {
		return nil
	}
	id := t.FromStage.ID
	return &id
}

// TaskPlan is a task the engine has decided to create.
type TaskPlan struct {
	RuleID         uuid.UUID
	Kind           Kind
	Title          string
	DueAt          string
	AssigneeUserID *uuid.UUID
	OpportunityID  *uuid.UUID
	AccountID      *uuid.UUID
	SourceTaskID   *uuid.UUID
}

// Task materializes the plan. createdBy may be uuid.Nil for scheduled runs.
func (p TaskPlan) Task(tenantID, createdBy uuid.UUID, now time.Time) crmtask.Task {
	due := p.DueAt
	t := crmtask.New(tenantID, createdBy, crmtask.CreateInput{
		Title:          p.Title,
		OpportunityID:  p.OpportunityID,
		AccountID:      p.AccountID,
		DueAt:          &due,
		AssigneeUserID: p.AssigneeUserID,
	}, now)
	ruleID := p.RuleID
	t.Source = string(p.Kind)
	t.SourceRuleID = &ruleID
	t.SourceTaskID = p.SourceTaskID
	return t
}

// MatchesTransition reports whether a rule bound to (ruleFrom, ruleTo) fires
// for a move from -> to. A nil ruleFrom matches any origin, including none.
func MatchesTransition(ruleFrom *uuid.UUID, ruleTo uuid.UUID, from *uuid.UUID, to uuid.UUID) bool {
	if ruleTo != to {
		return false
	}
	if ruleFrom == nil {
		return true
	}
	return from != nil && *from == *ruleFrom
}

// PlanTransition evaluates the event-driven rules against t in rule order.
// Sequence items keep their list order; won-checklist rules fire only when
// the destination stage is closed-won.
func PlanTransition(rules []Rule, t Transition) []TaskPlan {
	var plans []TaskPlan
	from := t.FromStageID()
	vars := transitionVars(t)
	oppID := t.Opportunity.ID
	owner := t.Opportunity.OwnerUserID
	mover := t.MoverUserID

	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		assignee := ResolveAssignee(r.AssigneeTarget, r.AssigneeUserID, owner, &mover)
		switch {
		case r.Kind == KindStageTask && r.StageTask != nil:
			p := r.StageTask
			if !MatchesTransition(p.FromStageID, p.ToStageID, from, t.ToStage.ID) {
				continue
			}
			plans = append(plans, TaskPlan{
				RuleID:         r.ID,
				Kind:           r.Kind,
				Title:          RenderTitle(p.TitleTemplate, vars),
				DueAt:          DueDate(t.At, p.DueInDays),
				AssigneeUserID: assignee,
				OpportunityID:  &oppID,
			})
		case r.Kind == KindStageSequence && r.StageSequence != nil:
			p := r.StageSequence
			if !MatchesTransition(p.FromStageID, p.ToStageID, from, t.ToStage.ID) {
				continue
			}
			for _, item := range p.Items {
				plans = append(plans, TaskPlan{
					RuleID:         r.ID,
					Kind:           r.Kind,
					Title:          RenderTitle(item.TitleTemplate, vars),
					DueAt:          DueDate(t.At, item.DueInDays),
					AssigneeUserID: assignee,
					OpportunityID:  &oppID,
				})
			}
		case r.Kind == KindWonChecklist && r.WonChecklist != nil:
			if !t.ToStage.IsClosedWon {
				continue
			}
			for _, tmpl := range r.WonChecklist.TitleTemplates {
				plans = append(plans, TaskPlan{
					RuleID:         r.ID,
					Kind:           r.Kind,
					Title:          RenderTitle(tmpl, vars),
					DueAt:          DueDate(t.At, r.WonChecklist.DueInDays),
					AssigneeUserID: assignee,
					OpportunityID:  &oppID,
				})
			}
		}
	}
	return plans
}

func transitionVars(t Transition) map[string]string {
	vars := map[string]string{
		"opportunityName": t.Opportunity.Name,
		"toStageName":     t.ToStage.Name,
		"stageName":       t.ToStage.Name,
	}
	if t.FromStage != nil {
		vars["fromStageName"] = t.FromStage.Name
	}
	return vars
}

// OverdueSubject is an incomplete task examined by an overdue-task rule.
// OwnerUserID is the opportunity owner when the task is opportunity-linked,
// otherwise the task's assignee or creator.
type OverdueSubject struct {
	Task            crmtask.Task
	OpportunityName string
	OwnerUserID     *uuid.UUID
}

// IsOverdue reports whether due lies more than overdueDays before now's date.
func IsOverdue(due time.Time, overdueDays int, now time.Time) bool {
	today := truncateDay(now)
	return truncateDay(due).Before(today.AddDate(0, 0, -overdueDays))
}

// PlanOverdue returns a reminder for s when it is overdue under r. Reminders
// produced by overdue rules are never chased themselves.
func PlanOverdue(r Rule, s OverdueSubject, now time.Time) (TaskPlan, bool) {
	if !r.Enabled || r.Kind != KindOverdueTask || r.OverdueTask == nil {
		return TaskPlan{}, false
	}
	if s.Task.Completed || s.Task.Source == string(KindOverdueTask) {
		return TaskPlan{}, false
	}
	due, ok := s.Task.DueDate()
	if !ok || !IsOverdue(due, r.OverdueTask.OverdueDays, now) {
		return TaskPlan{}, false
	}

	var owner uuid.UUID
	if s.OwnerUserID != nil {
		owner = *s.OwnerUserID
	}
	taskID := s.Task.ID
	vars := map[string]string{
		"taskTitle":       s.Task.Title,
		"opportunityName": s.OpportunityName,
	}
	return TaskPlan{
		RuleID:         r.ID,
		Kind:           r.Kind,
		Title:          RenderTitle(r.OverdueTask.TitleTemplate, vars),
		DueAt:          DueDate(now, r.OverdueTask.DueInDays),
		AssigneeUserID: ResolveAssignee(r.AssigneeTarget, r.AssigneeUserID, owner, nil),
		OpportunityID:  s.Task.OpportunityID,
		AccountID:      s.Task.AccountID,
		SourceTaskID:   &taskID,
	}, true
}

// StaleCutoff is the updatedAt bound below which an open deal is stale.
func StaleCutoff(staleDays int, now time.Time) time.Time {
	return now.AddDate(0, 0, -staleDays)
}

// PlanStale returns a reminder for an open opportunity not touched since the
// rule's stale window. stageName feeds the {{stageName}} token.
func PlanStale(r Rule, o opportunity.Opportunity, stageName string, now time.Time) (TaskPlan, bool) {
	if !r.Enabled || r.Kind != KindStaleDeal || r.StaleDeal == nil {
		return TaskPlan{}, false
	}
	p := r.StaleDeal
	if o.Status != opportunity.StatusOpen {
		return TaskPlan{}, false
	}
	if p.StageID != nil && *p.StageID != o.StageID {
		return TaskPlan{}, false
	}
	if !o.UpdatedAt.Before(StaleCutoff(p.StaleDays, now)) {
		return TaskPlan{}, false
	}
	oppID := o.ID
	vars := map[string]string{
		"opportunityName": o.Name,
		"stageName":       stageName,
	}
	return TaskPlan{
		RuleID:         r.ID,
		Kind:           r.Kind,
		Title:          RenderTitle(p.TitleTemplate, vars),
		DueAt:          DueDate(now, p.DueInDays),
		AssigneeUserID: ResolveAssignee(r.AssigneeTarget, r.AssigneeUserID, o.OwnerUserID, nil),
		OpportunityID:  &oppID,
		AccountID:      o.AccountID,
	}, true
}

// CooldownSince is the earliest creation time of a previous reminder that
// still suppresses a new one.
func CooldownSince(cooldownDays int, now time.Time) time.Time {
	return now.AddDate(0, 0, -cooldownDays)
}

// ResolveAssignee maps a target to a user. mover falls back to owner when no
// one moved the deal; specific falls back to owner when unset.
func ResolveAssignee(target AssigneeTarget, specific *uuid.UUID, owner uuid.UUID, mover *uuid.UUID) *uuid.UUID {
	pick := owner
	switch target {
	case AssigneeMover:
		if mover != nil && *mover != uuid.Nil {
			pick = *mover
		}
	case AssigneeSpecific:
		if specific != nil && *specific != uuid.Nil {
			pick = *specific
		}
	}
	if pick == uuid.Nil {
		return nil
	}
	return &pick
}

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z]+)\s*\}\}`)

// RenderTitle substitutes {{token}} placeholders. Unknown tokens are kept
// verbatim and the result is capped at the task title limit.
func RenderTitle(template string, vars map[string]string) string {
	out := tokenPattern.ReplaceAllStringFunc(template, func(m string) string {
		key := tokenPattern.FindStringSubmatch(m)[1]
		if v, ok := vars[key]; ok {
			return v
		}
		return m
	})
	if r := []rune(out); len(r) > crmtask.MaxTitleLength {
		out = string(r[:crmtask.MaxTitleLength])
	}
	return out
}

// DueDate renders ref + days as YYYY-MM-DD in UTC.
func DueDate(ref time.Time, days int) string {
	return ref.UTC().AddDate(0, 0, days).Format(time.DateOnly)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
