package sale

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
)

// MaxNumberAttempts bounds the unique-violation retry loop for sale numbers.
const MaxNumberAttempts = 3

type Sale struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	Number          string          `json:"number"`
	OpportunityID   *uuid.UUID      `json:"opportunity_id,omitempty"`
	QuoteID         *uuid.UUID      `json:"quote_id,omitempty"`
	Total           decimal.Decimal `json:"total"`
	Currency        string          `json:"currency"`
	SoldAt          time.Time       `json:"sold_at"`
	CreatedByUserID *uuid.UUID      `json:"created_by_user_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type CreateInput struct {
	OpportunityID *uuid.UUID
	QuoteID       *uuid.UUID
	Total         decimal.Decimal
	Currency      string
	SoldAt        *time.Time
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

// New builds a sale. The number period follows SoldAt, defaulting to now.
func New(tenantID, createdBy uuid.UUID, in CreateInput, defaultCurrency string, now time.Time) Sale {
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	soldAt := now
	if in.SoldAt != nil {
		soldAt = in.SoldAt.UTC()
	}
	s := Sale{
		ID:            uuid.New(),
		TenantID:      tenantID,
		OpportunityID: in.OpportunityID,
		QuoteID:       in.QuoteID,
		Total:         in.Total.Round(2),
		Currency:      currency,
		SoldAt:        soldAt,
		CreatedAt:     now,
	}
	if createdBy != uuid.Nil {
		s.CreatedByUserID = &createdBy
	}
	return s
}
