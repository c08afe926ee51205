package contact

import (
	"time"

	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/party"
)

// Contact is a person, optionally filed under an account. Users who can
// access the account see its contacts; everyone sees the contacts they
// created.
type Contact struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Name     string    `json:"name"`
	party.Details
	AccountID       *uuid.UUID `json:"account_id"`
	CreatedByUserID uuid.UUID  `json:"created_by_user_id"`
	UpdatedByUserID *uuid.UUID `json:"updated_by_user_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type CreateInput struct {
	Name      string
	Details   party.Details
	AccountID *uuid.UUID
}

func (in CreateInput) Validate() error {
	if _, err := party.Name(in.Name); err != nil {
		return err
	}
	d := in.Details
	d.Normalize()
	return d.Validate()
}

func New(tenantID, createdBy uuid.UUID, in CreateInput, now time.Time) Contact {
	name, _ := party.Name(in.Name)
	d := in.Details
	d.Normalize()
	return Contact{
		ID:              uuid.New(),
		TenantID:        tenantID,
		Name:            name,
		Details:         d,
		AccountID:       in.AccountID,
		CreatedByUserID: createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

type UpdateInput struct {
	Name         *string
	Details      party.Patch
	AccountID    *uuid.UUID
	ClearAccount bool
}

func (in UpdateInput) Validate() error {
	if in.Name != nil {
		if _, err := party.Name(*in.Name); err != nil {
			return err
		}
	}
	return in.Details.Validate()
}

func (in UpdateInput) Apply(c *Contact, updatedBy uuid.UUID, now time.Time) {
	if in.Name != nil {
		c.Name, _ = party.Name(*in.Name)
	}
	in.Details.Apply(&c.Details)
	switch {
	case in.ClearAccount:
		c.AccountID = nil
	case in.AccountID != nil:
		c.AccountID = in.AccountID
	}
	c.UpdatedByUserID = &updatedBy
	c.UpdatedAt = now
}

func (c Contact) CanEdit(userID uuid.UUID, admin bool) bool {
	return admin || c.CreatedByUserID == userID
}

// ListFilters selects contacts. A nil VisibleTo lists the whole tenant;
// otherwise only contacts created by that user or filed under one of
// Accounts match.
type ListFilters struct {
	TenantID  uuid.UUID
	AccountID *uuid.UUID
	VisibleTo *Visibility
}

type Visibility struct {
	CreatedBy uuid.UUID
	Accounts  []uuid.UUID
}

// Matches applies the filter to a single contact.
func (f ListFilters) Matches(c Contact) bool {
	if c.TenantID != f.TenantID {
		return false
	}
	if f.AccountID != nil && (c.AccountID == nil || *c.AccountID != *f.AccountID) {
		return false
	}
	if f.VisibleTo == nil || c.CreatedByUserID == f.VisibleTo.CreatedBy {
		return true
	}
	if c.AccountID == nil {
		return false
	}
	for _, id := range f.VisibleTo.Accounts {
		if id == *c.AccountID {
			return true
		}
	}
	return false
}
