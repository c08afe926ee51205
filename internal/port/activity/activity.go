package activity

import (
	"context"

	"github.com/google/uuid"

	domainactivity "github.com/MustafaBasol/crm-sub007/internal/domain/activity"
)

type Repository interface {
	Create(ctx context.Context, a domainactivity.Activity) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (domainactivity.Activity, error)
	List(ctx context.Context, filters domainactivity.ListFilters) ([]domainactivity.Activity, error)
	Update(ctx context.Context, a domainactivity.Activity) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
