package notifier

import (
	"context"

	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/event"
)

// TenantNotifier pushes a domain event to every live client of one tenant.
// The MCP session registry implements it; the router feeds it from the
// event bus.
type TenantNotifier interface {
	NotifyTenant(ctx context.Context, tenantID uuid.UUID, e event.Event) error
}
