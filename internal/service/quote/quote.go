package quote

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/actor"
	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	"github.com/MustafaBasol/crm-sub007/internal/domain/numbering"
	domainquote "github.com/MustafaBasol/crm-sub007/internal/domain/quote"
	portclock "github.com/MustafaBasol/crm-sub007/internal/port/clock"
	portquote "github.com/MustafaBasol/crm-sub007/internal/port/quote"
	"github.com/MustafaBasol/crm-sub007/internal/retry"
)

type Service struct {
	repo            portquote.Repository
	clock           portclock.Clock
	defaultCurrency string
}

func NewService(repo portquote.Repository, clock portclock.Clock, defaultCurrency string) *Service {
	return &Service{repo: repo, clock: clock, defaultCurrency: defaultCurrency}
}

// Create numbers the quote Q-YYYY-NNNN. A concurrent insert of the same
// number is retried with a fresh candidate.
func (s *Service) Create(ctx context.Context, a actor.Actor, in domainquote.CreateInput) (domainquote.Quote, error) {
	if err := in.Validate(); err != nil {
		return domainquote.Quote{}, err
	}
	now := s.clock.Now()
	q := domainquote.New(a.TenantID, a.ID, in, s.defaultCurrency, now)
	prefix := numbering.Quote.Prefix(now)

	err := retry.Do(ctx, domainquote.MaxNumberAttempts, isConflict, func(ctx context.Context, _ int) error {
		existing, err := s.repo.ListNumbers(ctx, a.TenantID, prefix)
		if err != nil {
			return err
		}
		q.Number = numbering.Quote.Format(now, numbering.Next(prefix, existing))
		return s.repo.Create(ctx, q)
	})
	if err != nil {
		return domainquote.Quote{}, fmt.Errorf("create quote: %w", err)
	}
	return q, nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]domainquote.Quote, error) {
	quotes, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return quotes, nil
}

func isConflict(err error) bool { return errors.Is(err, apperr.ErrConflict) }
