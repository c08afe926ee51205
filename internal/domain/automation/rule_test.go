package automation_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	"github.com/MustafaBasol/crm-sub007/internal/domain/automation"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    automation.Kind
		wantErr bool
	}{
		{in: "stage-task", want: automation.KindStageTask},
		{in: "stage_sequence", want: automation.KindStageSequence},
		{in: "Overdue-Task", want: automation.KindOverdueTask},
		{in: "stale-deal", want: automation.KindStaleDeal},
		{in: "won-checklist", want: automation.KindWonChecklist},
		{in: "lead-score", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := automation.ParseKind(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, apperr.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind_TimeDriven(t *testing.T) {
	assert.True(t, automation.KindOverdueTask.TimeDriven())
	assert.True(t, automation.KindStaleDeal.TimeDriven())
	assert.False(t, automation.KindStageTask.TimeDriven())
	assert.False(t, automation.KindWonChecklist.TimeDriven())
}

func validStageTask() automation.Rule {
	r := automation.New(uuid.New(), time.Now())
	r.Kind = automation.KindStageTask
	r.StageTask = &automation.StageTask{ToStageID: uuid.New(), TitleTemplate: "Send contract", DueInDays: 2}
	return r
}

func TestRule_Validate(t *testing.T) {
	specific := uuid.New()

	tests := []struct {
		name    string
		mutate  func(r *automation.Rule)
		wantErr string
	}{
		{name: "valid stage task", mutate: func(r *automation.Rule) {}},
		{name: "unknown kind", mutate: func(r *automation.Rule) { r.Kind = "nope" }, wantErr: "unknown rule kind"},
		{name: "missing payload", mutate: func(r *automation.Rule) { r.StageTask = nil }, wantErr: "missing"},
		{
			name: "two payloads",
			mutate: func(r *automation.Rule) {
				r.WonChecklist = &automation.WonChecklist{TitleTemplates: []string{"x"}}
			},
			wantErr: "exactly one payload",
		},
		{name: "missing to stage", mutate: func(r *automation.Rule) { r.StageTask.ToStageID = uuid.Nil }, wantErr: "ToStageID"},
		{name: "empty title", mutate: func(r *automation.Rule) { r.StageTask.TitleTemplate = "" }, wantErr: "TitleTemplate"},
		{name: "negative due", mutate: func(r *automation.Rule) { r.StageTask.DueInDays = -1 }, wantErr: "DueInDays"},
		{
			name:    "title too long",
			mutate:  func(r *automation.Rule) { r.StageTask.TitleTemplate = strings.Repeat("a", 221) },
			wantErr: "max=220",
		},
		{
			name:    "specific without user",
			mutate:  func(r *automation.Rule) { r.AssigneeTarget = automation.AssigneeSpecific },
			wantErr: "assignee_user_id",
		},
		{
			name: "specific with user",
			mutate: func(r *automation.Rule) {
				r.AssigneeTarget = automation.AssigneeSpecific
				r.AssigneeUserID = &specific
			},
		},
		{name: "bad target", mutate: func(r *automation.Rule) { r.AssigneeTarget = "team" }, wantErr: "assignee_target"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validStageTask()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRule_Validate_Sequence(t *testing.T) {
	r := automation.New(uuid.New(), time.Now())
	r.Kind = automation.KindStageSequence
	r.StageSequence = &automation.StageSequence{ToStageID: uuid.New()}

	require.Error(t, r.Validate(), "empty item list")

	for i := 0; i < 51; i++ {
		r.StageSequence.Items = append(r.StageSequence.Items, automation.SequenceItem{TitleTemplate: "step", DueInDays: i})
	}
	require.Error(t, r.Validate(), "more than 50 items")

	r.StageSequence.Items = r.StageSequence.Items[:3]
	assert.NoError(t, r.Validate())

	r.StageSequence.Items[1].TitleTemplate = "   "
	r.Normalize()
	assert.Error(t, r.Validate(), "whitespace title after normalize")
}

func TestRule_Validate_TimeDriven(t *testing.T) {
	overdue := automation.New(uuid.New(), time.Now())
	overdue.Kind = automation.KindOverdueTask
	overdue.OverdueTask = &automation.OverdueTask{OverdueDays: 0, TitleTemplate: "Chase {{taskTitle}}", CooldownDays: 7}
	assert.NoError(t, overdue.Validate())

	stale := automation.New(uuid.New(), time.Now())
	stale.Kind = automation.KindStaleDeal
	stale.StaleDeal = &automation.StaleDeal{StaleDays: 0, TitleTemplate: "Revive"}
	assert.Error(t, stale.Validate(), "stale days must be positive")

	stale.StaleDeal.StaleDays = 30
	assert.NoError(t, stale.Validate())
}

func TestRule_StageRefs(t *testing.T) {
	from := uuid.New()
	r := validStageTask()
	r.StageTask.FromStageID = &from
	assert.ElementsMatch(t, []uuid.UUID{r.StageTask.ToStageID, from}, r.StageRefs())

	stale := automation.Rule{Kind: automation.KindStaleDeal, StaleDeal: &automation.StaleDeal{}}
	assert.Empty(t, stale.StageRefs())
}
