package quote

import (
	"context"

	"github.com/google/uuid"

	domainquote "github.com/MustafaBasol/crm-sub007/internal/domain/quote"
)

type Repository interface {
	// Create returns apperr.ErrConflict when the number is already taken.
	Create(ctx context.Context, q domainquote.Quote) error
	ListNumbers(ctx context.Context, tenantID uuid.UUID, prefix string) ([]string, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]domainquote.Quote, error)
}
