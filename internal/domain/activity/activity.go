package activity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
)

type Type string

const (
	TypeCall    Type = "call"
	TypeEmail   Type = "email"
	TypeMeeting Type = "meeting"
	TypeNote    Type = "note"
)

var validTypes = map[Type]bool{
	TypeCall:    true,
	TypeEmail:   true,
	TypeMeeting: true,
	TypeNote:    true,
}

// Activity is a timeline entry on an opportunity or account.
type Activity struct {
	ID              uuid.UUID  `json:"id"`
	TenantID        uuid.UUID  `json:"tenant_id"`
	Type            Type       `json:"type"`
	Title           string     `json:"title"`
	Notes           string     `json:"notes,omitempty"`
	OpportunityID   *uuid.UUID `json:"opportunity_id,omitempty"`
	AccountID       *uuid.UUID `json:"account_id,omitempty"`
	DueAt           *string    `json:"due_at,omitempty"`
	Completed       bool       `json:"completed"`
	CreatedByUserID uuid.UUID  `json:"created_by_user_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type CreateInput struct {
	Type          Type
	Title         string
	Notes         string
	OpportunityID *uuid.UUID
	AccountID     *uuid.UUID
	DueAt         *string
}

func (in CreateInput) Validate() error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return apperr.Validation("title is required")
	}
	if len([]rune(title)) > 220 {
		return apperr.Validation("title exceeds 220 characters")
	}
	if in.Type != "" && !validTypes[in.Type] {
		return apperr.Validation("invalid activity type %q", in.Type)
	}
	if in.OpportunityID == nil && in.AccountID == nil {
		return apperr.Validation("provide opportunityId or accountId")
	}
	return nil
}

func New(tenantID, createdBy uuid.UUID, in CreateInput, now time.Time) Activity {
	typ := in.Type
	if typ == "" {
		typ = TypeNote
	}
	return Activity{
		ID:              uuid.New(),
		TenantID:        tenantID,
		Type:            typ,
		Title:           strings.TrimSpace(in.Title),
		Notes:           in.Notes,
		OpportunityID:   in.OpportunityID,
		AccountID:       in.AccountID,
		DueAt:           in.DueAt,
		CreatedByUserID: createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// UpdateInput is a partial edit. The links are fixed once the activity is
// created.
type UpdateInput struct {
	Type       *Type
	Title      *string
	Notes      *string
	DueAt      *string
	ClearDueAt bool
	Completed  *bool
}

func (in UpdateInput) Validate() error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return apperr.Validation("title is required")
		}
		if len([]rune(title)) > 220 {
			return apperr.Validation("title exceeds 220 characters")
		}
	}
	if in.Type != nil && !validTypes[*in.Type] {
		return apperr.Validation("invalid activity type %q", *in.Type)
	}
	return nil
}

func (in UpdateInput) Apply(a *Activity, now time.Time) {
	if in.Type != nil {
		a.Type = *in.Type
	}
	if in.Title != nil {
		a.Title = strings.TrimSpace(*in.Title)
	}
	if in.Notes != nil {
		a.Notes = *in.Notes
	}
	switch {
	case in.ClearDueAt:
		a.DueAt = nil
	case in.DueAt != nil:
		a.DueAt = in.DueAt
	}
	if in.Completed != nil {
		a.Completed = *in.Completed
	}
	a.UpdatedAt = now
}

type ListFilters struct {
	TenantID      uuid.UUID
	OpportunityID *uuid.UUID
	AccountID     *uuid.UUID
}
