package opportunity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	"github.com/MustafaBasol/crm-sub007/internal/domain/pipeline"
)

type Status string

const (
	StatusOpen Status = "open"
	StatusWon  Status = "won"
	StatusLost Status = "lost"
)

const DefaultCurrency = "TRY"

type Opportunity struct {
	ID                uuid.UUID        `json:"id"`
	TenantID          uuid.UUID        `json:"tenant_id"`
	PipelineID        uuid.UUID        `json:"pipeline_id"`
	StageID           uuid.UUID        `json:"stage_id"`
	AccountID         *uuid.UUID       `json:"account_id,omitempty"`
	OwnerUserID       uuid.UUID        `json:"owner_user_id"`
	Name              string           `json:"name"`
	Amount            decimal.Decimal  `json:"amount"`
	Currency          string           `json:"currency"`
	Probability       *decimal.Decimal `json:"probability,omitempty"`
	ExpectedCloseDate *string          `json:"expected_close_date,omitempty"` // YYYY-MM-DD
	Status            Status           `json:"status"`
	WonAt             *time.Time       `json:"won_at,omitempty"`
	LostAt            *time.Time       `json:"lost_at,omitempty"`
	LostReason        *string          `json:"lost_reason,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// ApplyStage moves o onto stage and rederives status from the stage's closed
// flags alone. The previous status is never consulted.
func (o *Opportunity) ApplyStage(stage pipeline.Stage, now time.Time) {
	o.StageID = stage.ID
	switch {
	case stage.IsClosedWon:
		o.Status = StatusWon
		o.WonAt = &now
		o.LostAt = nil
	case stage.IsClosedLost:
		o.Status = StatusLost
		o.LostAt = &now
		o.WonAt = nil
	default:
		o.Status = StatusOpen
		o.WonAt = nil
		o.LostAt = nil
	}
	o.UpdatedAt = now
}

// CreateInput is the caller-supplied part of a new opportunity.
type CreateInput struct {
	Name              string
	AccountID         *uuid.UUID
	StageID           *uuid.UUID
	Amount            *decimal.Decimal
	Currency          string
	Probability       *decimal.Decimal
	ExpectedCloseDate *string
	TeamUserIDs       []uuid.UUID
}

// New builds an open opportunity on stage. Closed flags of the stage are not
// consulted at creation time.
func New(tenantID, pipelineID, stageID, ownerUserID uuid.UUID, in CreateInput, now time.Time) Opportunity {
	amount := decimal.Zero
	if in.Amount != nil {
		amount = *in.Amount
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	return Opportunity{
		ID:                uuid.New(),
		TenantID:          tenantID,
		PipelineID:        pipelineID,
		StageID:           stageID,
		AccountID:         in.AccountID,
		OwnerUserID:       ownerUserID,
		Name:              strings.TrimSpace(in.Name),
		Amount:            amount.Round(2),
		Currency:          currency,
		Probability:       in.Probability,
		ExpectedCloseDate: in.ExpectedCloseDate,
		Status:            StatusOpen,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func (in CreateInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Validation("name is required")
	}
	if in.Amount != nil && in.Amount.IsNegative() {
		return apperr.Validation("invalid amount")
	}
	if err := validateCurrency(in.Currency); err != nil {
		return err
	}
	return validateProbability(in.Probability)
}

// UpdateInput carries a partial edit. Nil fields are left unchanged; the
// Clear flags null out optional fields.
type UpdateInput struct {
	Name                   *string
	AccountID              *uuid.UUID
	ClearAccount           bool
	Amount                 *decimal.Decimal
	Currency               *string
	Probability            *decimal.Decimal
	ClearProbability       bool
	ExpectedCloseDate      *string
	ClearExpectedCloseDate bool
	LostReason             *string
}

func (in UpdateInput) Validate() error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return apperr.Validation("name is required")
	}
	if in.Amount != nil && in.Amount.IsNegative() {
		return apperr.Validation("invalid amount")
	}
	if in.Currency != nil {
		if err := validateCurrency(*in.Currency); err != nil {
			return err
		}
	}
	return validateProbability(in.Probability)
}

// Apply copies the set fields of in onto o.
func (in UpdateInput) Apply(o *Opportunity, now time.Time) {
	if in.Name != nil {
		o.Name = strings.TrimSpace(*in.Name)
	}
	switch {
	case in.ClearAccount:
		o.AccountID = nil
	case in.AccountID != nil:
		o.AccountID = in.AccountID
	}
	if in.Amount != nil {
		o.Amount = in.Amount.Round(2)
	}
	if in.Currency != nil {
		o.Currency = strings.ToUpper(strings.TrimSpace(*in.Currency))
	}
	switch {
	case in.ClearProbability:
		o.Probability = nil
	case in.Probability != nil:
		o.Probability = in.Probability
	}
	switch {
	case in.ClearExpectedCloseDate:
		o.ExpectedCloseDate = nil
	case in.ExpectedCloseDate != nil:
		o.ExpectedCloseDate = in.ExpectedCloseDate
	}
	if in.LostReason != nil {
		reason := strings.TrimSpace(*in.LostReason)
		if reason == "" {
			o.LostReason = nil
		} else {
			o.LostReason = &reason
		}
	}
	o.UpdatedAt = now
}

func validateCurrency(c string) error {
	c = strings.TrimSpace(c)
	if c == "" {
		return nil
	}
	if len(c) != 3 {
		return apperr.Validation("currency must be a 3-letter code")
	}
	for _, r := range c {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return apperr.Validation("currency must be a 3-letter code")
		}
	}
	return nil
}

func validateProbability(p *decimal.Decimal) error {
	if p == nil {
		return nil
	}
	if p.IsNegative() || p.GreaterThan(decimal.NewFromInt(1)) {
		return apperr.Validation("probability must be between 0 and 1")
	}
	return nil
}

// NormalizeDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// date part. Empty input yields nil.
func NormalizeDate(raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		s := t.Format(time.DateOnly)
		return &s, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperr.Validation("invalid date %q", raw)
	}
	s := t.UTC().Format(time.DateOnly)
	return &s, nil
}

// TeamWithOwner returns userIDs deduplicated in first-seen order with the
// owner appended when absent. Nil ids are dropped.
func TeamWithOwner(userIDs []uuid.UUID, owner uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(userIDs)+1)
	team := make([]uuid.UUID, 0, len(userIDs)+1)
	for _, id := range append(append([]uuid.UUID(nil), userIDs...), owner) {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		team = append(team, id)
	}
	return team
}

type Member struct {
	TenantID      uuid.UUID `json:"tenant_id"`
	OpportunityID uuid.UUID `json:"opportunity_id"`
	UserID        uuid.UUID `json:"user_id"`
}

// StageHistory is one immutable row of the pipeline audit trail.
type StageHistory struct {
	ID              uuid.UUID  `json:"id"`
	TenantID        uuid.UUID  `json:"tenant_id"`
	OpportunityID   uuid.UUID  `json:"opportunity_id"`
	FromStageID     *uuid.UUID `json:"from_stage_id,omitempty"`
	ToStageID       uuid.UUID  `json:"to_stage_id"`
	ChangedByUserID *uuid.UUID `json:"changed_by_user_id,omitempty"`
	ChangedAt       time.Time  `json:"changed_at"`
}

func NewStageHistory(tenantID, opportunityID uuid.UUID, from *uuid.UUID, to uuid.UUID, changedBy uuid.UUID, now time.Time) StageHistory {
	h := StageHistory{
		ID:            uuid.New(),
		TenantID:      tenantID,
		OpportunityID: opportunityID,
		FromStageID:   from,
		ToStageID:     to,
		ChangedAt:     now,
	}
	if changedBy != uuid.Nil {
		h.ChangedByUserID = &changedBy
	}
	return h
}

// View is an opportunity with its team, the shape returned to callers.
type View struct {
	Opportunity
	TeamUserIDs []uuid.UUID `json:"team_user_ids"`
}

type Team struct {
	OpportunityID uuid.UUID   `json:"opportunity_id"`
	UserIDs       []uuid.UUID `json:"user_ids"`
}

type BoardPipeline struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type BoardStage struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Order        int       `json:"order"`
	IsClosedWon  bool      `json:"is_closed_won"`
	IsClosedLost bool      `json:"is_closed_lost"`
}

type BoardItem struct {
	View
	ForecastProbability decimal.Decimal `json:"forecast_probability"`
}

// Board is the kanban view of the default pipeline. Pipeline is nil when the
// tenant has not bootstrapped one.
type Board struct {
	Pipeline      *BoardPipeline `json:"pipeline"`
	Stages        []BoardStage   `json:"stages"`
	Opportunities []BoardItem    `json:"opportunities"`
}

func BoardStages(stages []pipeline.Stage) []BoardStage {
	out := make([]BoardStage, 0, len(stages))
	for _, s := range stages {
		out = append(out, BoardStage{
			ID:           s.ID,
			Name:         s.Name,
			Order:        s.Order,
			IsClosedWon:  s.IsClosedWon,
			IsClosedLost: s.IsClosedLost,
		})
	}
	return out
}

// ForecastProbability returns the stored probability when set. Otherwise won
// is 1, lost is 0, and an open stage at position i (1-based) among n ordered
// open stages gets i/(n+1).
func ForecastProbability(o Opportunity, stages []pipeline.Stage) decimal.Decimal {
	if o.Probability != nil {
		return *o.Probability
	}
	switch o.Status {
	case StatusWon:
		return decimal.NewFromInt(1)
	case StatusLost:
		return decimal.Zero
	}
	open := make([]pipeline.Stage, 0, len(stages))
	for _, s := range stages {
		if !s.IsClosed() {
			open = append(open, s)
		}
	}
	pipeline.SortStages(open)
	for i, s := range open {
		if s.ID == o.StageID {
			return decimal.NewFromInt(int64(i+1)).
				DivRound(decimal.NewFromInt(int64(len(open)+1)), 4)
		}
	}
	return decimal.Zero
}

// ListFilters narrows repository listings. VisibleTo restricts to opportunities
// the user owns or is a member of.
type ListFilters struct {
	TenantID      uuid.UUID
	PipelineID    *uuid.UUID
	VisibleTo     *uuid.UUID
	AccountID     *uuid.UUID
	Status        *Status
	StageID       *uuid.UUID
	UpdatedBefore *time.Time
}
