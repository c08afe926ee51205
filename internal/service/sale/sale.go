package sale

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/actor"
	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	"github.com/MustafaBasol/crm-sub007/internal/domain/numbering"
	domainsale "github.com/MustafaBasol/crm-sub007/internal/domain/sale"
	portclock "github.com/MustafaBasol/crm-sub007/internal/port/clock"
	portsale "github.com/MustafaBasol/crm-sub007/internal/port/sale"
	"github.com/MustafaBasol/crm-sub007/internal/retry"
)

type Service struct {
	repo            portsale.Repository
	clock           portclock.Clock
	defaultCurrency string
}

func NewService(repo portsale.Repository, clock portclock.Clock, defaultCurrency string) *Service {
	return &Service{repo: repo, clock: clock, defaultCurrency: defaultCurrency}
}

// Create numbers the sale SAL-YYYY-MM-NNN for the month it was sold in.
func (s *Service) Create(ctx context.Context, a actor.Actor, in domainsale.CreateInput) (domainsale.Sale, error) {
	if err := in.Validate(); err != nil {
		return domainsale.Sale{}, err
	}
	sale := domainsale.New(a.TenantID, a.ID, in, s.defaultCurrency, s.clock.Now())
	prefix := numbering.Sale.Prefix(sale.SoldAt)

	err := retry.Do(ctx, domainsale.MaxNumberAttempts, isConflict, func(ctx context.Context, _ int) error {
		existing, err := s.repo.ListNumbers(ctx, a.TenantID, prefix)
		if err != nil {
			return err
		}
		sale.Number = numbering.Sale.Format(sale.SoldAt, numbering.Next(prefix, existing))
		return s.repo.Create(ctx, sale)
	})
	if err != nil {
		return domainsale.Sale{}, fmt.Errorf("create sale: %w", err)
	}
	return sale, nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]domainsale.Sale, error) {
	sales, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

func isConflict(err error) bool { return errors.Is(err, apperr.ErrConflict) }
