package tenant

import (
	"context"

	"github.com/google/uuid"

	domaintenant "github.com/MustafaBasol/crm-sub007/internal/domain/tenant"
)

type Repository interface {
	Create(ctx context.Context, t domaintenant.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (domaintenant.Tenant, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}
