package crmtask_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MustafaBasol/crm-sub007/internal/adapter/memory"
	"github.com/MustafaBasol/crm-sub007/internal/domain/actor"
	domaintask "github.com/MustafaBasol/crm-sub007/internal/domain/crmtask"
	domainopp "github.com/MustafaBasol/crm-sub007/internal/domain/opportunity"
	autosvc "github.com/MustafaBasol/crm-sub007/internal/service/automation"
	tasksvc "github.com/MustafaBasol/crm-sub007/internal/service/crmtask"
	oppsvc "github.com/MustafaBasol/crm-sub007/internal/service/opportunity"
	pipelinesvc "github.com/MustafaBasol/crm-sub007/internal/service/pipeline"
	"github.com/MustafaBasol/crm-sub007/internal/testutil"
	"github.com/MustafaBasol/crm-sub007/internal/transport"
	transporttask "github.com/MustafaBasol/crm-sub007/internal/transport/crmtask"
)

func init() { gin.SetMode(gin.TestMode) }

type fixture struct {
	router *gin.Engine
	opps   *oppsvc.Service
	owner  actor.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	bus := memory.NewEventBus()
	clock := testutil.NewClock(time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC))
	tenantID := uuid.New()

	_, err := pipelinesvc.NewService(store.Pipelines(), store, clock).Bootstrap(context.Background(), tenantID)
	require.NoError(t, err)
	auto := autosvc.NewService(store.Rules(), store.Tasks(), store.Opportunities(), store.Pipelines(),
		memory.NewLocker(), bus, clock)
	opps := oppsvc.NewService(store.Opportunities(), store.Pipelines(), store, bus, auto, clock)
	tasks := tasksvc.NewService(store.Tasks(), opps, bus, clock)

	r := gin.New()
	transporttask.Register(r.Group("/api/crm/tasks", transport.ActorMiddleware()), tasks)
	return &fixture{
		router: r,
		opps:   opps,
		owner:  actor.Actor{ID: uuid.New(), TenantID: tenantID, Role: actor.RoleMember},
	}
}

func (f *fixture) do(t *testing.T, a actor.Actor, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(transport.HeaderTenantID, a.TenantID.String())
	req.Header.Set(transport.HeaderUserID, a.ID.String())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) opportunity(t *testing.T) domainopp.View {
	t.Helper()
	v, err := f.opps.Create(context.Background(), f.owner, domainopp.CreateInput{Name: "Acme"})
	require.NoError(t, err)
	return v
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// ── POST / ────────────────────────────────────────────────────────────────────

func TestCreateTask(t *testing.T) {
	f := newFixture(t)
	opp := f.opportunity(t)
	stranger := actor.Actor{ID: uuid.New(), TenantID: f.owner.TenantID, Role: actor.RoleMember}

	tests := []struct {
		name       string
		actor      actor.Actor
		body       map[string]any
		wantStatus int
	}{
		{"opportunity task", f.owner, map[string]any{"title": "Call", "opportunity_id": opp.ID}, http.StatusCreated},
		{"account task", f.owner, map[string]any{"title": "Call", "account_id": uuid.New()}, http.StatusCreated},
		{"missing title", f.owner, map[string]any{"account_id": uuid.New()}, http.StatusBadRequest},
		{"both links", f.owner, map[string]any{"title": "x", "account_id": uuid.New(), "opportunity_id": opp.ID}, http.StatusBadRequest},
		{"invisible opportunity", stranger, map[string]any{"title": "x", "opportunity_id": opp.ID}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.actor, http.MethodPost, "/api/crm/tasks", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

// ── GET / ─────────────────────────────────────────────────────────────────────

func TestListTasks(t *testing.T) {
	f := newFixture(t)
	opp := f.opportunity(t)
	w := f.do(t, f.owner, http.MethodPost, "/api/crm/tasks", map[string]any{"title": "Call", "opportunity_id": opp.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, f.owner, http.MethodGet, "/api/crm/tasks?opportunityId="+opp.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decode[[]domaintask.Task](t, w)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Call", tasks[0].Title)

	w = f.do(t, f.owner, http.MethodGet, "/api/crm/tasks?accountId="+uuid.NewString(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, f.do(t, f.owner, http.MethodGet, "/api/crm/tasks", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, f.owner, http.MethodGet, "/api/crm/tasks?accountId=bad", nil).Code)
}

// ── PATCH /:id and DELETE /:id ────────────────────────────────────────────────

func TestUpdateAndDeleteTask(t *testing.T) {
	f := newFixture(t)
	assignee := uuid.New()
	w := f.do(t, f.owner, http.MethodPost, "/api/crm/tasks", map[string]any{
		"title": "Call", "account_id": uuid.New(), "due_at": "2026-07-03", "assignee_user_id": assignee,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[domaintask.Task](t, w)
	path := "/api/crm/tasks/" + created.ID.String()

	w = f.do(t, f.owner, http.MethodPatch, path, map[string]any{"completed": true, "due_at": nil})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[domaintask.Task](t, w)
	assert.True(t, updated.Completed)
	assert.Nil(t, updated.DueAt)
	assert.Equal(t, &assignee, updated.AssigneeUserID, "absent keys are untouched")

	w = f.do(t, f.owner, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(t, f.owner, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
