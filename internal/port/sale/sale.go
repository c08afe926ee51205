package sale

import (
	"context"

	"github.com/google/uuid"

	domainsale "github.com/MustafaBasol/crm-sub007/internal/domain/sale"
)

type Repository interface {
	// Create returns apperr.ErrConflict when the number is already taken.
	Create(ctx context.Context, s domainsale.Sale) error
	ListNumbers(ctx context.Context, tenantID uuid.UUID, prefix string) ([]string, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]domainsale.Sale, error)
}
