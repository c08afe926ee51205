package lead

import (
	"time"

	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	"github.com/MustafaBasol/crm-sub007/internal/domain/party"
)

const MaxStatusLength = 64

// Lead is an unqualified prospect. Status is free text chosen by the team.
type Lead struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Name     string    `json:"name"`
	party.Details
	Status          *string    `json:"status"`
	CreatedByUserID uuid.UUID  `json:"created_by_user_id"`
	UpdatedByUserID *uuid.UUID `json:"updated_by_user_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type CreateInput struct {
	Name    string
	Details party.Details
	Status  *string
}

func (in CreateInput) Validate() error {
	if _, err := party.Name(in.Name); err != nil {
		return err
	}
	d := in.Details
	d.Normalize()
	if err := d.Validate(); err != nil {
		return err
	}
	return validateStatus(party.Clean(in.Status))
}

func New(tenantID, createdBy uuid.UUID, in CreateInput, now time.Time) Lead {
	name, _ := party.Name(in.Name)
	d := in.Details
	d.Normalize()
	return Lead{
		ID:              uuid.New(),
		TenantID:        tenantID,
		Name:            name,
		Details:         d,
		Status:          party.Clean(in.Status),
		CreatedByUserID: createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

type UpdateInput struct {
	Name    *string
	Details party.Patch
	// Status follows the patch rule: nil keeps, blank clears.
	Status *string
}

func (in UpdateInput) Validate() error {
	if in.Name != nil {
		if _, err := party.Name(*in.Name); err != nil {
			return err
		}
	}
	if err := in.Details.Validate(); err != nil {
		return err
	}
	return validateStatus(party.Clean(in.Status))
}

func (in UpdateInput) Apply(l *Lead, updatedBy uuid.UUID, now time.Time) {
	if in.Name != nil {
		l.Name, _ = party.Name(*in.Name)
	}
	in.Details.Apply(&l.Details)
	if in.Status != nil {
		l.Status = party.Clean(in.Status)
	}
	l.UpdatedByUserID = &updatedBy
	l.UpdatedAt = now
}

// CanEdit reports whether the user may change or delete the lead.
func (l Lead) CanEdit(userID uuid.UUID, admin bool) bool {
	return admin || l.CreatedByUserID == userID
}

func validateStatus(status *string) error {
	if status != nil && len([]rune(*status)) > MaxStatusLength {
		return apperr.Validation("status exceeds %d characters", MaxStatusLength)
	}
	return nil
}
