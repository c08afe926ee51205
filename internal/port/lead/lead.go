package lead

import (
	"context"

	"github.com/google/uuid"

	domainlead "github.com/MustafaBasol/crm-sub007/internal/domain/lead"
)

type Repository interface {
	Create(ctx context.Context, l domainlead.Lead) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (domainlead.Lead, error)
	// List orders by updated_at DESC.
	List(ctx context.Context, tenantID uuid.UUID) ([]domainlead.Lead, error)
	Update(ctx context.Context, l domainlead.Lead) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
