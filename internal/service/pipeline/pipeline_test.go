package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MustafaBasol/crm-sub007/internal/adapter/memory"
	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	domainpipeline "github.com/MustafaBasol/crm-sub007/internal/domain/pipeline"
	"github.com/MustafaBasol/crm-sub007/internal/mocks"
	portclock "github.com/MustafaBasol/crm-sub007/internal/port/clock"
	pipelinesvc "github.com/MustafaBasol/crm-sub007/internal/service/pipeline"
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func fixedClock() portclock.Clock {
	return portclock.Func(func() time.Time { return fixedNow })
}

func newMemorySvc() (*pipelinesvc.Service, *memory.Store) {
	store := memory.NewStore()
	return pipelinesvc.NewService(store.Pipelines(), store, fixedClock()), store
}

// passthroughTx runs fn directly, as a mock of the transaction manager.
func passthroughTx(ctrl *gomock.Controller) *mocks.MockTxManager {
	tx := mocks.NewMockTxManager(ctrl)
	tx.EXPECT().WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()
	return tx
}

// ── Bootstrap ─────────────────────────────────────────────────────────────────

func TestBootstrap_SeedsDefaultStages(t *testing.T) {
	svc, _ := newMemorySvc()
	tenantID := uuid.New()

	res, err := svc.Bootstrap(context.Background(), tenantID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.PipelineID)
	require.Len(t, res.StageIDs, 6)

	d, err := svc.GetDefault(context.Background(), tenantID)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, domainpipeline.DefaultPipelineName, d.Pipeline.Name)
	assert.True(t, d.Pipeline.IsDefault)

	names := make([]string, 0, len(d.Stages))
	for _, st := range d.Stages {
		names = append(names, st.Name)
	}
	assert.Equal(t, []string{"Lead", "Qualified", "Proposal", "Negotiation", "Won", "Lost"}, names)
	assert.True(t, d.Stages[4].IsClosedWon)
	assert.True(t, d.Stages[5].IsClosedLost)
	assert.Equal(t, res.StageIDs, domainpipeline.StageIDs(d.Stages))
}

func TestBootstrap_Idempotent(t *testing.T) {
	svc, _ := newMemorySvc()
	tenantID := uuid.New()

	first, err := svc.Bootstrap(context.Background(), tenantID)
	require.NoError(t, err)
	second, err := svc.Bootstrap(context.Background(), tenantID)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	stages, err := svc.ListStages(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Len(t, stages, 6, "a second bootstrap must not add stages")
}

func TestBootstrap_Concurrent_SingleDefault(t *testing.T) {
	svc, _ := newMemorySvc()
	tenantID := uuid.New()

	const callers = 8
	results := make([]domainpipeline.BootstrapResult, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Bootstrap(context.Background(), tenantID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].PipelineID, results[i].PipelineID)
	}
}

func TestBootstrap_TenantsIsolated(t *testing.T) {
	svc, _ := newMemorySvc()

	a, err := svc.Bootstrap(context.Background(), uuid.New())
	require.NoError(t, err)
	b, err := svc.Bootstrap(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.NotEqual(t, a.PipelineID, b.PipelineID)
}

func TestBootstrap_RetriesLostRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockPipelineRepository(ctrl)
	svc := pipelinesvc.NewService(repo, passthroughTx(ctrl), fixedClock())

	tenantID := uuid.New()
	winner := domainpipeline.NewDefault(tenantID, fixedNow)
	winnerStages := domainpipeline.SeedStages(winner, fixedNow)

	gomock.InOrder(
		repo.EXPECT().GetDefault(gomock.Any(), tenantID).Return(domainpipeline.Pipeline{}, apperr.NotFound("default pipeline")),
		repo.EXPECT().CreateWithStages(gomock.Any(), gomock.Any(), gomock.Any()).Return(apperr.Conflict("default pipeline exists")),
		repo.EXPECT().GetDefault(gomock.Any(), tenantID).Return(winner, nil),
		repo.EXPECT().ListStages(gomock.Any(), tenantID, winner.ID).Return(winnerStages, nil),
	)

	res, err := svc.Bootstrap(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, res.PipelineID)
	assert.Equal(t, domainpipeline.StageIDs(winnerStages), res.StageIDs)
}

func TestBootstrap_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockPipelineRepository(ctrl)
	svc := pipelinesvc.NewService(repo, passthroughTx(ctrl), fixedClock())

	repo.EXPECT().GetDefault(gomock.Any(), gomock.Any()).Return(domainpipeline.Pipeline{}, errors.New("db down"))

	_, err := svc.Bootstrap(context.Background(), uuid.New())
	assert.ErrorContains(t, err, "db down")
}

// ── GetDefault / ListStages ───────────────────────────────────────────────────

func TestGetDefault_NotBootstrapped(t *testing.T) {
	svc, _ := newMemorySvc()

	d, err := svc.GetDefault(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, d)

	stages, err := svc.ListStages(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, stages)
	assert.NotNil(t, stages)
}

func TestListStages_OrderedByOrder(t *testing.T) {
	svc, store := newMemorySvc()
	tenantID := uuid.New()
	res, err := svc.Bootstrap(context.Background(), tenantID)
	require.NoError(t, err)

	store.Pipelines().AddStage(domainpipeline.Stage{
		ID: uuid.New(), TenantID: tenantID, PipelineID: res.PipelineID,
		Name: "Discovery", Order: 15, CreatedAt: fixedNow,
	})

	stages, err := svc.ListStages(context.Background(), tenantID)
	require.NoError(t, err)
	require.Len(t, stages, 7)
	assert.Equal(t, "Lead", stages[0].Name)
	assert.Equal(t, "Discovery", stages[1].Name)
	assert.Equal(t, "Qualified", stages[2].Name)
}
