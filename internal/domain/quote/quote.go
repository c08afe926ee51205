package quote

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

// MaxNumberAttempts bounds the unique-violation retry loop for quote numbers.
const MaxNumberAttempts = 5

type Quote struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	Number          string          `json:"number"`
	OpportunityID   *uuid.UUID      `json:"opportunity_id,omitempty"`
	AccountID       *uuid.UUID      `json:"account_id,omitempty"`
	Total           decimal.Decimal `json:"total"`
	Currency        string          `json:"currency"`
	Status          Status          `json:"status"`
	ValidUntil      *string         `json:"valid_until,omitempty"`
	CreatedByUserID *uuid.UUID      `json:"created_by_user_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type CreateInput struct {
	OpportunityID *uuid.UUID
	AccountID     *uuid.UUID
	Total         decimal.Decimal
	Currency      string
	ValidUntil    *string
}

func (in CreateInput) Validate() error {
	if in.Total.IsNegative() {
		return apperr.Validation("total must not be negative")
	}
	if c := strings.TrimSpace(in.Currency); c != "" && len(c) != 3 {
		return apperr.Validation("currency must be a 3-letter code")
	}
	return nil
}

func New(tenantID, createdBy uuid.UUID, in CreateInput, defaultCurrency string, now time.Time) Quote {
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	q := Quote{
		ID:            uuid.New(),
		TenantID:      tenantID,
		OpportunityID: in.OpportunityID,
		AccountID:     in.AccountID,
		Total:         in.Total.Round(2),
		Currency:      currency,
		Status:        StatusDraft,
		ValidUntil:    in.ValidUntil,
		CreatedAt:     now,
	}
	if createdBy != uuid.Nil {
		q.CreatedByUserID = &createdBy
	}
	return q
}
