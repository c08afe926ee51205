package crmtask

import (
	"context"

	"github.com/google/uuid"

	domaintask "github.com/MustafaBasol/crm-sub007/internal/domain/crmtask"
)

type Repository interface {
	Create(ctx context.Context, t domaintask.Task) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (domaintask.Task, error)
	// List orders by updated_at DESC.
	List(ctx context.Context, filters domaintask.ListFilters) ([]domaintask.Task, error)
	Update(ctx context.Context, t domaintask.Task) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// ExistsSince reports whether the rule produced a task for the subject at
	// or after q.Since. It backs the cooldown guard of time-driven rules.
	ExistsSince(ctx context.Context, q domaintask.ProvenanceQuery) (bool, error)
}
