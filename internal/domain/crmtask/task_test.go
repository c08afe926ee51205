package crmtask_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	"github.com/MustafaBasol/crm-sub007/internal/domain/crmtask"
)

func ptr[T any](v T) *T { return &v }

func TestCreateInput_Validate(t *testing.T) {
	opp, acct := uuid.New(), uuid.New()

	tests := []struct {
		name    string
		in      crmtask.CreateInput
		wantErr bool
	}{
		{name: "opportunity linked", in: crmtask.CreateInput{Title: "Call", OpportunityID: &opp}},
		{name: "account linked", in: crmtask.CreateInput{Title: "Call", AccountID: &acct}},
		{name: "both linked", in: crmtask.CreateInput{Title: "Call", OpportunityID: &opp, AccountID: &acct}, wantErr: true},
		{name: "unlinked", in: crmtask.CreateInput{Title: "Call"}, wantErr: true},
		{name: "blank title", in: crmtask.CreateInput{Title: " ", OpportunityID: &opp}, wantErr: true},
		{name: "title too long", in: crmtask.CreateInput{Title: strings.Repeat("x", 221), OpportunityID: &opp}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, apperr.ErrValidation))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNew_SystemActorLeavesCreatorEmpty(t *testing.T) {
	opp := uuid.New()
	task := crmtask.New(uuid.New(), uuid.Nil, crmtask.CreateInput{Title: " Follow up ", OpportunityID: &opp}, time.Now())
	assert.Nil(t, task.CreatedByUserID)
	assert.Equal(t, "Follow up", task.Title)
	assert.False(t, task.IsAutomated())
}

func TestUpdateInput_Apply(t *testing.T) {
	user := uuid.New()
	task := crmtask.Task{Title: "a", DueAt: ptr("2026-01-01"), AssigneeUserID: ptr(uuid.New())}
	now := time.Now()

	crmtask.UpdateInput{Title: ptr("b"), ClearDueAt: true, Completed: ptr(true), ClearAssignee: true}.Apply(&task, user, now)

	assert.Equal(t, "b", task.Title)
	assert.Nil(t, task.DueAt)
	assert.True(t, task.Completed)
	assert.Nil(t, task.AssigneeUserID)
	require.NotNil(t, task.UpdatedByUserID)
	assert.Equal(t, user, *task.UpdatedByUserID)
}

func TestDueDate(t *testing.T) {
	tests := []struct {
		name   string
		due    *string
		want   time.Time
		wantOK bool
	}{
		{name: "nil", due: nil},
		{name: "date only", due: ptr("2026-02-03"), want: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "rfc3339", due: ptr("2026-02-03T10:00:00+02:00"), want: time.Date(2026, 2, 3, 8, 0, 0, 0, time.UTC), wantOK: true},
		{name: "free form", due: ptr("end of month")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := crmtask.Task{DueAt: tt.due}.DueDate()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got))
			}
		})
	}
}
