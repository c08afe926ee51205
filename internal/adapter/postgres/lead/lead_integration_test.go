//go:build integration

package lead_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pglead "github.com/MustafaBasol/crm-sub007/internal/adapter/postgres/lead"
	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	domainlead "github.com/MustafaBasol/crm-sub007/internal/domain/lead"
	"github.com/MustafaBasol/crm-sub007/internal/testutil"
)

func TestLeadRepository_CRUD(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	tenantID := testutil.NewTenant(t, pool)
	repo := pglead.New(pool)
	now := time.Now().UTC().Truncate(time.Microsecond)
	status := "new"

	first := domainlead.New(tenantID, uuid.New(), domainlead.CreateInput{Name: "Ada", Status: &status}, now.Add(-time.Hour))
	second := domainlead.New(tenantID, uuid.New(), domainlead.CreateInput{Name: "Grace"}, now)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.List(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "most recently updated first")
	require.NotNil(t, list[1].Status)
	assert.Equal(t, status, *list[1].Status)

	other, err := repo.List(ctx, testutil.NewTenant(t, pool))
	require.NoError(t, err)
	assert.Empty(t, other)

	first.Status = nil
	first.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, repo.Update(ctx, first))
	got, err := repo.GetByID(ctx, tenantID, first.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Status)

	require.NoError(t, repo.Delete(ctx, tenantID, first.ID))
	_, err = repo.GetByID(ctx, tenantID, first.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, tenantID, first.ID), apperr.ErrNotFound)
}
