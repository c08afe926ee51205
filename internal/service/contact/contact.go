package contact

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/actor"
	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	domaincontact "github.com/MustafaBasol/crm-sub007/internal/domain/contact"
	portclock "github.com/MustafaBasol/crm-sub007/internal/port/clock"
	portcontact "github.com/MustafaBasol/crm-sub007/internal/port/contact"
	portopp "github.com/MustafaBasol/crm-sub007/internal/port/opportunity"
)

// Service manages contacts. Visibility follows account access: a user sees
// the contacts they created plus every contact under an account they can
// access through an opportunity.
type Service struct {
	repo     portcontact.Repository
	accounts portopp.AccountAccess
	clock    portclock.Clock
}

func NewService(repo portcontact.Repository, accounts portopp.AccountAccess, clock portclock.Clock) *Service {
	return &Service{repo: repo, accounts: accounts, clock: clock}
}

// List returns visible contacts, optionally narrowed to one account.
func (s *Service) List(ctx context.Context, a actor.Actor, accountID *uuid.UUID) ([]domaincontact.Contact, error) {
	f := domaincontact.ListFilters{TenantID: a.TenantID, AccountID: accountID}
	if !a.IsAdmin() {
		vis := &domaincontact.Visibility{CreatedBy: a.ID}
		if accountID != nil {
			ok, err := s.accounts.CanAccessAccount(ctx, a, *accountID)
			if err != nil {
				return nil, err
			}
			if ok {
				vis.Accounts = []uuid.UUID{*accountID}
			}
		} else {
			ids, err := s.accounts.AccessibleAccounts(ctx, a)
			if err != nil {
				return nil, err
			}
			vis.Accounts = ids
		}
		f.VisibleTo = vis
	}

	contacts, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

func (s *Service) Create(ctx context.Context, a actor.Actor, in domaincontact.CreateInput) (domaincontact.Contact, error) {
	if err := in.Validate(); err != nil {
		return domaincontact.Contact{}, err
	}
	if err := s.checkAccount(ctx, a, in.AccountID); err != nil {
		return domaincontact.Contact{}, err
	}
	c := domaincontact.New(a.TenantID, a.ID, in, s.clock.Now())
	if err := s.repo.Create(ctx, c); err != nil {
		return domaincontact.Contact{}, fmt.Errorf("create contact: %w", err)
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, a actor.Actor, id uuid.UUID, in domaincontact.UpdateInput) (domaincontact.Contact, error) {
	if err := in.Validate(); err != nil {
		return domaincontact.Contact{}, err
	}
	c, err := s.editable(ctx, a, id)
	if err != nil {
		return domaincontact.Contact{}, err
	}
	if !in.ClearAccount {
		if err := s.checkAccount(ctx, a, in.AccountID); err != nil {
			return domaincontact.Contact{}, err
		}
	}
	in.Apply(&c, a.ID, s.clock.Now())
	if err := s.repo.Update(ctx, c); err != nil {
		return domaincontact.Contact{}, fmt.Errorf("update contact: %w", err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, a actor.Actor, id uuid.UUID) error {
	c, err := s.editable(ctx, a, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, c.TenantID, c.ID); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

func (s *Service) editable(ctx context.Context, a actor.Actor, id uuid.UUID) (domaincontact.Contact, error) {
	c, err := s.repo.GetByID(ctx, a.TenantID, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return domaincontact.Contact{}, apperr.NotFound("contact not found")
	}
	if err != nil {
		return domaincontact.Contact{}, fmt.Errorf("get contact: %w", err)
	}
	if !c.CanEdit(a.ID, a.IsAdmin()) {
		return domaincontact.Contact{}, apperr.Permission("only the creator or an admin can change this contact")
	}
	return c, nil
}

// checkAccount lets non-admins file contacts only under accounts they can
// access.
func (s *Service) checkAccount(ctx context.Context, a actor.Actor, accountID *uuid.UUID) error {
	if accountID == nil || a.IsAdmin() {
		return nil
	}
	ok, err := s.accounts.CanAccessAccount(ctx, a, *accountID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Permission("no access to account %s", *accountID)
	}
	return nil
}
