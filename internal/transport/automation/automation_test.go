package automation_test

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
	domainauto "github.com/MustafaBasol/crm-sub007/internal/domain/automation"
	domaintask "github.com/MustafaBasol/crm-sub007/internal/domain/crmtask"
	autosvc "github.com/MustafaBasol/crm-sub007/internal/service/automation"
	pipelinesvc "github.com/MustafaBasol/crm-sub007/internal/service/pipeline"
	"github.com/MustafaBasol/crm-sub007/internal/testutil"
	"github.com/MustafaBasol/crm-sub007/internal/transport"
	transportauto "github.com/MustafaBasol/crm-sub007/internal/transport/automation"
)

func init() { gin.SetMode(gin.TestMode) }

var now = time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	router *gin.Engine
	store  *memory.Store
	admin  actor.Actor
	member actor.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := testutil.NewClock(now)
	tenantID := uuid.New()
	_, err := pipelinesvc.NewService(store.Pipelines(), store, clock).Bootstrap(context.Background(), tenantID)
	require.NoError(t, err)
	svc := autosvc.NewService(store.Rules(), store.Tasks(), store.Opportunities(), store.Pipelines(),
		memory.NewLocker(), memory.NewEventBus(), clock)

	r := gin.New()
	transportauto.Register(r.Group("/api/crm/automation", transport.ActorMiddleware()), svc)
	return &fixture{
		router: r,
		store:  store,
		admin:  actor.Actor{ID: uuid.New(), TenantID: tenantID, Role: actor.RoleTenantAdmin},
		member: actor.Actor{ID: uuid.New(), TenantID: tenantID, Role: actor.RoleMember},
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
	req.Header.Set(transport.HeaderUserRole, string(a.Role))
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

var overdueBody = map[string]any{
	"kind": "overdue-task",
	"overdue_task": map[string]any{
		"overdue_days":   1,
		"title_template": "Chase {{taskTitle}}",
		"due_in_days":    1,
		"cooldown_days":  7,
	},
}

// ── Rules ─────────────────────────────────────────────────────────────────────

func TestRuleLifecycle(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, f.admin, http.MethodPost, "/api/crm/automation/rules", overdueBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rule domainauto.Rule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rule))
	assert.Equal(t, domainauto.KindOverdueTask, rule.Kind)
	assert.True(t, rule.Enabled)

	path := "/api/crm/automation/rules/" + rule.ID.String()
	w = f.do(t, f.admin, http.MethodPatch, path, map[string]any{"enabled": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rule))
	assert.False(t, rule.Enabled)

	w = f.do(t, f.admin, http.MethodPatch, path, map[string]any{"kind": "stale_deal"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, f.admin, http.MethodGet, "/api/crm/automation/rules?kind=overdue-task", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rules []domainauto.Rule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rules))
	assert.Len(t, rules, 1)

	w = f.do(t, f.admin, http.MethodGet, "/api/crm/automation/rules?kind=won_checklist", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, f.do(t, f.admin, http.MethodGet, "/api/crm/automation/rules?kind=bogus", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, f.admin, http.MethodGet, "/api/crm/automation/rules/"+uuid.NewString(), nil).Code)
}

func TestRules_AdminOnly(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusForbidden, f.do(t, f.member, http.MethodPost, "/api/crm/automation/rules", overdueBody).Code)
	assert.Equal(t, http.StatusForbidden, f.do(t, f.member, http.MethodGet, "/api/crm/automation/rules", nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(t, f.member, http.MethodPost, "/api/crm/automation/run", nil).Code)
}

// ── Manual runs ───────────────────────────────────────────────────────────────

func TestRunOverdueTasks(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, f.admin, http.MethodPost, "/api/crm/automation/rules", overdueBody).Code)

	account := uuid.New()
	due := "2026-08-01"
	late := domaintask.New(f.admin.TenantID, f.member.ID, domaintask.CreateInput{
		Title: "Send contract", AccountID: &account, DueAt: &due,
	}, now.AddDate(0, 0, -14))
	require.NoError(t, f.store.Tasks().Create(context.Background(), late))

	w := f.do(t, f.admin, http.MethodPost, "/api/crm/automation/run/stale-deals", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tasks_created":0}`, w.Body.String())

	w = f.do(t, f.admin, http.MethodPost, "/api/crm/automation/run/overdue-tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tasks_created":1}`, w.Body.String())

	w = f.do(t, f.admin, http.MethodPost, "/api/crm/automation/run", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tasks_created":0}`, w.Body.String(), "cooldown holds across manual runs")
}
