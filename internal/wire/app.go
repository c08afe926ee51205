package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	pgdb "github.com/MustafaBasol/crm-sub007/internal/adapter/postgres"
	pgactivity "github.com/MustafaBasol/crm-sub007/internal/adapter/postgres/activity"
	pgauto "github.com/MustafaBasol/crm-sub007/internal/adapter/postgres/automation"
	pgcontact "github.com/MustafaBasol/crm-sub007/internal/adapter/postgres/contact"
	pgtask "github.com/MustafaBasol/crm-sub007/internal/adapter/postgres/crmtask"
	pgeventbus "github.com/MustafaBasol/crm-sub007/internal/adapter/postgres/eventbus"
	pgidem "github.com/MustafaBasol/crm-sub007/internal/adapter/postgres/idempotency"
	pglead "github.com/MustafaBasol/crm-sub007/internal/adapter/postgres/lead"
	pglocker "github.com/MustafaBasol/crm-sub007/internal/adapter/postgres/locker"
	"github.com/MustafaBasol/crm-sub007/internal/adapter/postgres/migrations"
	pgopp "github.com/MustafaBasol/crm-sub007/internal/adapter/postgres/opportunity"
	pgpipeline "github.com/MustafaBasol/crm-sub007/internal/adapter/postgres/pipeline"
	pgquote "github.com/MustafaBasol/crm-sub007/internal/adapter/postgres/quote"
	pgsale "github.com/MustafaBasol/crm-sub007/internal/adapter/postgres/sale"
	pgtenant "github.com/MustafaBasol/crm-sub007/internal/adapter/postgres/tenant"
	redislocker "github.com/MustafaBasol/crm-sub007/internal/adapter/redis/locker"

	"github.com/MustafaBasol/crm-sub007/internal/config"
	portclock "github.com/MustafaBasol/crm-sub007/internal/port/clock"
	portlocker "github.com/MustafaBasol/crm-sub007/internal/port/locker"

	activitysvc "github.com/MustafaBasol/crm-sub007/internal/service/activity"
	autosvc "github.com/MustafaBasol/crm-sub007/internal/service/automation"
	contactsvc "github.com/MustafaBasol/crm-sub007/internal/service/contact"
	tasksvc "github.com/MustafaBasol/crm-sub007/internal/service/crmtask"
	leadsvc "github.com/MustafaBasol/crm-sub007/internal/service/lead"
	oppsvc "github.com/MustafaBasol/crm-sub007/internal/service/opportunity"
	pipelinesvc "github.com/MustafaBasol/crm-sub007/internal/service/pipeline"
	quotesvc "github.com/MustafaBasol/crm-sub007/internal/service/quote"
	salesvc "github.com/MustafaBasol/crm-sub007/internal/service/sale"
	tenantsvc "github.com/MustafaBasol/crm-sub007/internal/service/tenant"

	"github.com/MustafaBasol/crm-sub007/internal/transport"
	mcptransport "github.com/MustafaBasol/crm-sub007/internal/transport/mcp"
)

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	Pool      *pgxpool.Pool
	Redis     redis.UniversalClient
	EventBus  *pgeventbus.EventBus
	Server    *http.Server
	Scheduler *Scheduler
}

// Close stops the event listeners, then releases the pool and the optional
// Redis client.
func (a *App) Close() {
	a.EventBus.Close()
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Warn("redis close failed", "error", err)
		}
	}
	a.Pool.Close()
}

// Build is the composition root: the only place concrete types are wired to their
// interface dependencies.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	// ── Database ─────────────────────────────────────────────────────────────
	pool, err := pgdb.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := migrations.Apply(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	// ── Adapters ─────────────────────────────────────────────────────────────
	tenantRepo := pgtenant.New(pool)
	pipelineRepo := pgpipeline.New(pool)
	oppRepo := pgopp.New(pool)
	ruleRepo := pgauto.New(pool)
	taskRepo := pgtask.New(pool)
	activityRepo := pgactivity.New(pool)
	leadRepo := pglead.New(pool)
	contactRepo := pgcontact.New(pool)
	quoteRepo := pgquote.New(pool)
	saleRepo := pgsale.New(pool)
	idemStore := pgidem.New(pool)
	eventBus := pgeventbus.New(pool)
	txManager := pgdb.NewTxManager(pool)
	clock := portclock.System

	// The scan lock must be shared by every instance. Redis when configured,
	// Postgres advisory locks otherwise.
	var (
		locker portlocker.Locker
		rdb    redis.UniversalClient
	)
	if cfg.RedisAddress != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			pool.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		locker = redislocker.New(rdb, cfg.LockTTL)
		slog.Info("automation scan lock: redis", "addr", cfg.RedisAddress)
	} else {
		locker = pglocker.New(pool)
		slog.Info("automation scan lock: postgres advisory")
	}

	// ── Services ─────────────────────────────────────────────────────────────
	pipelineSvc := pipelinesvc.NewService(pipelineRepo, txManager, clock)
	tenantSvc := tenantsvc.NewService(tenantRepo, pipelineSvc, clock)

	// The automation engine reads opportunities through the repository, so it
	// can be built before the opportunity service that triggers it.
	autoSvc := autosvc.NewService(ruleRepo, taskRepo, oppRepo, pipelineRepo, locker, eventBus, clock)
	oppSvc := oppsvc.NewService(oppRepo, pipelineRepo, txManager, eventBus, autoSvc, clock)

	taskSvc := tasksvc.NewService(taskRepo, oppSvc, eventBus, clock)
	activitySvc := activitysvc.NewService(activityRepo, oppSvc, clock)
	leadSvc := leadsvc.NewService(leadRepo, clock)
	contactSvc := contactsvc.NewService(contactRepo, oppSvc, clock)
	quoteSvc := quotesvc.NewService(quoteRepo, clock, cfg.DefaultCurrency)
	saleSvc := salesvc.NewService(saleRepo, clock, cfg.DefaultCurrency)

	reg := mcptransport.NewSessionRegistry()
	mcpServer := mcptransport.New(reg, oppSvc, taskSvc, autoSvc)

	// ── Transport ─────────────────────────────────────────────────────────────
	router := transport.NewRouter(ctx, transport.Services{
		Tenants:       tenantSvc,
		Pipelines:     pipelineSvc,
		Opportunities: oppSvc,
		Tasks:         taskSvc,
		Activities:    activitySvc,
		Leads:         leadSvc,
		Contacts:      contactSvc,
		Automation:    autoSvc,
		Quotes:        quoteSvc,
		Sales:         saleSvc,
	}, transport.RouterConfig{
		Idempotency:    idemStore,
		IdempotencyTTL: cfg.IdempotencyTTL,
		EventBus:       eventBus,
		Notifier:       reg,
		MCP:            mcpServer.Handler(),
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	slog.Info("application wired", "port", cfg.Port)

	return &App{
		Pool:      pool,
		Redis:     rdb,
		EventBus:  eventBus,
		Server:    server,
		Scheduler: NewScheduler(tenantSvc, autoSvc, clock, cfg.ScanInterval),
	}, nil
}
