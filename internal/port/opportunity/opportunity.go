package opportunity

import (
	"context"

	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/actor"
	domainopp "github.com/MustafaBasol/crm-sub007/internal/domain/opportunity"
)

// Repository persists opportunities, their members and the stage history.
// Lookups return apperr.ErrNotFound on a miss.
type Repository interface {
	Create(ctx context.Context, o domainopp.Opportunity) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (domainopp.Opportunity, error)
	// GetVisible finds the opportunity only if userID owns it or is a member.
	GetVisible(ctx context.Context, tenantID, id, userID uuid.UUID) (domainopp.Opportunity, error)
	Update(ctx context.Context, o domainopp.Opportunity) error
	// List orders by updated_at DESC.
	List(ctx context.Context, filters domainopp.ListFilters) ([]domainopp.Opportunity, error)

	// ReplaceMembers deletes every member row then inserts userIDs.
	ReplaceMembers(ctx context.Context, tenantID, opportunityID uuid.UUID, userIDs []uuid.UUID) error
	ListMembers(ctx context.Context, tenantID uuid.UUID, opportunityIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)

	AppendStageHistory(ctx context.Context, h domainopp.StageHistory) error
	ListStageHistory(ctx context.Context, tenantID, opportunityID uuid.UUID) ([]domainopp.StageHistory, error)
}

// Reader is the narrow access-checked lookup that services guarding
// opportunity-linked records depend on. Invisible opportunities are
// reported as apperr.ErrNotFound.
type Reader interface {
	Get(ctx context.Context, a actor.Actor, id uuid.UUID) (domainopp.View, error)
}

// AccountAccess answers whether an actor may see every record filed under an
// account. Admins always can; other users can when they own or belong to an
// opportunity on that account.
type AccountAccess interface {
	CanAccessAccount(ctx context.Context, a actor.Actor, accountID uuid.UUID) (bool, error)
	// AccessibleAccounts is nil for admins, who are not restricted.
	AccessibleAccounts(ctx context.Context, a actor.Actor) ([]uuid.UUID, error)
}
