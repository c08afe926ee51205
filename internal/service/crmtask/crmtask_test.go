package crmtask_test

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
	domaintask "github.com/MustafaBasol/crm-sub007/internal/domain/crmtask"
	"github.com/MustafaBasol/crm-sub007/internal/domain/event"
	domainopp "github.com/MustafaBasol/crm-sub007/internal/domain/opportunity"
	"github.com/MustafaBasol/crm-sub007/internal/mocks"
	tasksvc "github.com/MustafaBasol/crm-sub007/internal/service/crmtask"
	"github.com/MustafaBasol/crm-sub007/internal/testutil"
)

var t0 = time.Date(2026, 6, 1, 8, 30, 0, 0, time.UTC)

func newSvc(t *testing.T) (*tasksvc.Service, *mocks.MockOpportunityReader, *memory.EventBus, *testutil.Clock) {
	t.Helper()
	ctrl := gomock.NewController(t)
	opps := mocks.NewMockOpportunityReader(ctrl)
	bus := memory.NewEventBus()
	clock := testutil.NewClock(t0)
	return tasksvc.NewService(memory.NewStore().Tasks(), opps, bus, clock), opps, bus, clock
}

func member() actor.Actor {
	return actor.Actor{ID: uuid.New(), TenantID: uuid.New(), Role: actor.RoleMember}
}

func ptr[T any](v T) *T { return &v }

// ── Create ────────────────────────────────────────────────────────────────────

func TestCreate(t *testing.T) {
	oppID := uuid.New()
	accountID := uuid.New()

	tests := []struct {
		name    string
		in      domaintask.CreateInput
		reader  func(a actor.Actor, m *mocks.MockOpportunityReader)
		wantErr error
	}{
		{
			name: "linked to visible opportunity",
			in:   domaintask.CreateInput{Title: " Call ", OpportunityID: &oppID, DueAt: ptr("2026-06-03")},
			reader: func(a actor.Actor, m *mocks.MockOpportunityReader) {
				m.EXPECT().Get(gomock.Any(), a, oppID).Return(domainopp.View{}, nil)
			},
		},
		{
			name: "account task skips opportunity lookup",
			in:   domaintask.CreateInput{Title: "Renew", AccountID: &accountID},
		},
		{
			name: "invisible opportunity",
			in:   domaintask.CreateInput{Title: "Call", OpportunityID: &oppID},
			reader: func(a actor.Actor, m *mocks.MockOpportunityReader) {
				m.EXPECT().Get(gomock.Any(), a, oppID).Return(domainopp.View{}, apperr.NotFound("opportunity not found"))
			},
			wantErr: apperr.ErrNotFound,
		},
		{
			name:    "both links",
			in:      domaintask.CreateInput{Title: "Call", OpportunityID: &oppID, AccountID: &accountID},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "no link",
			in:      domaintask.CreateInput{Title: "Call"},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "blank title",
			in:      domaintask.CreateInput{Title: "  ", AccountID: &accountID},
			wantErr: apperr.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, opps, bus, _ := newSvc(t)
			a := member()
			if tt.reader != nil {
				tt.reader(a, opps)
			}

			task, err := svc.Create(context.Background(), a, tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, bus.Published())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, a.TenantID, task.TenantID)
			assert.Equal(t, &a.ID, task.CreatedByUserID)
			assert.Equal(t, t0, task.CreatedAt)
			assert.Empty(t, task.Source, "manual tasks carry no provenance")
			assert.Nil(t, task.SourceRuleID)
			require.Len(t, bus.Published(), 1)
			assert.Equal(t, event.TypeTaskCreated, bus.Published()[0].Type)
		})
	}
}

// ── List ──────────────────────────────────────────────────────────────────────

func TestList(t *testing.T) {
	svc, opps, _, clock := newSvc(t)
	a := member()
	oppID, accountID := uuid.New(), uuid.New()
	opps.EXPECT().Get(gomock.Any(), a, oppID).Return(domainopp.View{}, nil).AnyTimes()

	for _, title := range []string{"first", "second"} {
		_, err := svc.Create(context.Background(), a, domaintask.CreateInput{Title: title, OpportunityID: &oppID})
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}
	_, err := svc.Create(context.Background(), a, domaintask.CreateInput{Title: "account", AccountID: &accountID})
	require.NoError(t, err)

	t.Run("by opportunity newest first", func(t *testing.T) {
		tasks, err := svc.List(context.Background(), a, &oppID, nil)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "second", tasks[0].Title)
	})

	t.Run("by account", func(t *testing.T) {
		tasks, err := svc.List(context.Background(), a, nil, &accountID)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "account", tasks[0].Title)
	})

	t.Run("needs exactly one filter", func(t *testing.T) {
		_, err := svc.List(context.Background(), a, nil, nil)
		assert.ErrorIs(t, err, apperr.ErrValidation)
		_, err = svc.List(context.Background(), a, &oppID, &accountID)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("other tenant sees nothing", func(t *testing.T) {
		tasks, err := svc.List(context.Background(), member(), nil, &accountID)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}

// ── Update and delete ─────────────────────────────────────────────────────────

func TestUpdate(t *testing.T) {
	svc, _, bus, clock := newSvc(t)
	a := member()
	accountID := uuid.New()
	assignee := uuid.New()
	task, err := svc.Create(context.Background(), a, domaintask.CreateInput{
		Title: "Call", AccountID: &accountID, DueAt: ptr("2026-06-02"), AssigneeUserID: &assignee,
	})
	require.NoError(t, err)

	editor := actor.Actor{ID: uuid.New(), TenantID: a.TenantID, Role: actor.RoleMember}
	clock.Advance(time.Hour)
	got, err := svc.Update(context.Background(), editor, task.ID, domaintask.UpdateInput{
		Completed:     ptr(true),
		ClearDueAt:    true,
		ClearAssignee: true,
	})
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Nil(t, got.DueAt)
	assert.Nil(t, got.AssigneeUserID)
	assert.Equal(t, &editor.ID, got.UpdatedByUserID)
	assert.Equal(t, &a.ID, got.CreatedByUserID)
	assert.Equal(t, t0.Add(time.Hour), got.UpdatedAt)
	assert.Equal(t, event.TypeTaskUpdated, bus.Published()[len(bus.Published())-1].Type)

	_, err = svc.Update(context.Background(), a, task.ID, domaintask.UpdateInput{Title: ptr(" ")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Update(context.Background(), a, uuid.New(), domaintask.UpdateInput{Completed: ptr(true)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdate_ChecksLinkedOpportunity(t *testing.T) {
	svc, opps, _, _ := newSvc(t)
	owner := member()
	oppID := uuid.New()
	opps.EXPECT().Get(gomock.Any(), owner, oppID).Return(domainopp.View{}, nil)
	task, err := svc.Create(context.Background(), owner, domaintask.CreateInput{Title: "Call", OpportunityID: &oppID})
	require.NoError(t, err)

	outsider := actor.Actor{ID: uuid.New(), TenantID: owner.TenantID, Role: actor.RoleMember}
	opps.EXPECT().Get(gomock.Any(), outsider, oppID).Return(domainopp.View{}, apperr.NotFound("opportunity not found"))

	_, err = svc.Update(context.Background(), outsider, task.ID, domaintask.UpdateInput{Completed: ptr(true)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc, _, bus, _ := newSvc(t)
	a := member()
	accountID := uuid.New()
	task, err := svc.Create(context.Background(), a, domaintask.CreateInput{Title: "Call", AccountID: &accountID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), a, task.ID))
	assert.Equal(t, event.TypeTaskDeleted, bus.Published()[len(bus.Published())-1].Type)

	err = svc.Delete(context.Background(), a, task.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreate_RepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTaskRepository(ctrl)
	bus := mocks.NewMockEventBus(ctrl)
	svc := tasksvc.NewService(repo, mocks.NewMockOpportunityReader(ctrl), bus, testutil.NewClock(t0))
	accountID := uuid.New()

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.Create(context.Background(), member(), domaintask.CreateInput{Title: "Call", AccountID: &accountID})
	assert.ErrorContains(t, err, "connection reset")
}
