package automation

import (
	"context"

	"github.com/google/uuid"

	domainauto "github.com/MustafaBasol/crm-sub007/internal/domain/automation"
)

// RuleRepository stores every rule kind in one tagged table.
type RuleRepository interface {
	Create(ctx context.Context, r domainauto.Rule) error
	Update(ctx context.Context, r domainauto.Rule) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (domainauto.Rule, error)
	// List orders by created_at ASC so evaluation order is stable.
	List(ctx context.Context, filters domainauto.ListFilters) ([]domainauto.Rule, error)
}

// Trigger is what the transition engine calls once a stage move committed.
// It returns the number of tasks created.
type Trigger interface {
	OnStageChanged(ctx context.Context, t domainauto.Transition) (int, error)
}
