package contact

import (
	"context"

	"github.com/google/uuid"

	domaincontact "github.com/MustafaBasol/crm-sub007/internal/domain/contact"
)

type Repository interface {
	Create(ctx context.Context, c domaincontact.Contact) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (domaincontact.Contact, error)
	// List orders by updated_at DESC.
	List(ctx context.Context, filters domaincontact.ListFilters) ([]domaincontact.Contact, error)
	Update(ctx context.Context, c domaincontact.Contact) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
