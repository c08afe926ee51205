//go:build integration

package crmtask_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgtask "github.com/MustafaBasol/crm-sub007/internal/adapter/postgres/crmtask"
	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	domaintask "github.com/MustafaBasol/crm-sub007/internal/domain/crmtask"
	"github.com/MustafaBasol/crm-sub007/internal/testutil"
)

func makeTask(t *testing.T, ctx context.Context, r *pgtask.Repository, tenantID, accountID uuid.UUID, now time.Time) domaintask.Task {
	t.Helper()
	task := domaintask.New(tenantID, uuid.New(), domaintask.CreateInput{
		Title:     "t-" + uuid.NewString()[:8],
		AccountID: &accountID,
	}, now)
	require.NoError(t, r.Create(ctx, task))
	return task
}

func TestTaskRepository_CRUD(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	tenantID := testutil.NewTenant(t, pool)
	repo := pgtask.New(pool)
	accountID := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	first := makeTask(t, ctx, repo, tenantID, accountID, now.Add(-time.Hour))
	second := makeTask(t, ctx, repo, tenantID, accountID, now)

	list, err := repo.List(ctx, domaintask.ListFilters{TenantID: tenantID, AccountID: &accountID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "most recently updated first")

	first.Completed = true
	first.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, repo.Update(ctx, first))

	open, err := repo.List(ctx, domaintask.ListFilters{TenantID: tenantID, AccountID: &accountID, Incomplete: true})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, second.ID, open[0].ID)

	require.NoError(t, repo.Delete(ctx, tenantID, second.ID))
	_, err = repo.GetByID(ctx, tenantID, second.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = repo.Delete(ctx, tenantID, second.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTaskRepository_ExistsSince(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	tenantID := testutil.NewTenant(t, pool)
	repo := pgtask.New(pool)
	now := time.Now().UTC().Truncate(time.Microsecond)

	source := makeTask(t, ctx, repo, tenantID, uuid.New(), now.AddDate(0, 0, -10))
	ruleID := uuid.New()

	reminder := domaintask.New(tenantID, uuid.Nil, domaintask.CreateInput{
		Title:     "Follow up",
		AccountID: source.AccountID,
	}, now.AddDate(0, 0, -2))
	reminder.Source = "automation"
	reminder.SourceRuleID = &ruleID
	reminder.SourceTaskID = &source.ID
	require.NoError(t, repo.Create(ctx, reminder))

	tests := []struct {
		name  string
		query domaintask.ProvenanceQuery
		want  bool
	}{
		{"inside window", domaintask.ProvenanceQuery{TenantID: tenantID, SourceRuleID: ruleID, SourceTaskID: &source.ID, Since: now.AddDate(0, 0, -7)}, true},
		{"boundary is inclusive", domaintask.ProvenanceQuery{TenantID: tenantID, SourceRuleID: ruleID, SourceTaskID: &source.ID, Since: reminder.CreatedAt}, true},
		{"outside window", domaintask.ProvenanceQuery{TenantID: tenantID, SourceRuleID: ruleID, SourceTaskID: &source.ID, Since: now.AddDate(0, 0, -1)}, false},
		{"other rule", domaintask.ProvenanceQuery{TenantID: tenantID, SourceRuleID: uuid.New(), SourceTaskID: &source.ID, Since: now.AddDate(0, 0, -7)}, false},
		{"other source task", domaintask.ProvenanceQuery{TenantID: tenantID, SourceRuleID: ruleID, SourceTaskID: &reminder.ID, Since: now.AddDate(0, 0, -7)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ExistsSince(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
