package wire

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	portclock "github.com/MustafaBasol/crm-sub007/internal/port/clock"
	autosvc "github.com/MustafaBasol/crm-sub007/internal/service/automation"
)

type TenantLister interface {
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

type TimeDrivenEvaluator interface {
	EvaluateTimeDriven(ctx context.Context, tenantID uuid.UUID, now time.Time) (autosvc.Result, error)
}

// Scheduler runs the time-driven automation scan for every tenant on a
// fixed interval. Overlap across instances is prevented by the scan lock
// inside the evaluator, not here.
type Scheduler struct {
	tenants   TenantLister
	evaluator TimeDrivenEvaluator
	clock     portclock.Clock
	interval  time.Duration
}

func NewScheduler(tenants TenantLister, evaluator TimeDrivenEvaluator, clock portclock.Clock, interval time.Duration) *Scheduler {
	return &Scheduler{tenants: tenants, evaluator: evaluator, clock: clock, interval: interval}
}

// Start runs the loop until ctx is cancelled. A zero interval disables it.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		slog.Info("scheduler: disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		slog.Info("scheduler: started", "interval", s.interval)
		for {
			select {
			case <-ctx.Done():
				slog.Info("scheduler: stopped")
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce scans every tenant once and returns the number of tasks created.
// A failing tenant is logged and skipped.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	ids, err := s.tenants.ListIDs(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "scheduler: list tenants failed", "error", err)
		return 0
	}

	now := s.clock.Now()
	total := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		res, err := s.evaluator.EvaluateTimeDriven(ctx, id, now)
		total += res.TasksCreated
		if err != nil {
			slog.ErrorContext(ctx, "scheduler: time-driven scan failed", "tenant_id", id, "error", err)
			continue
		}
		if res.TasksCreated > 0 {
			slog.Info("scheduler: automation tasks created", "tenant_id", id, "tasks_created", res.TasksCreated)
		}
	}
	return total
}
