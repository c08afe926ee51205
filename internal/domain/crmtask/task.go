package crmtask

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
)

const MaxTitleLength = 220

// Task is a CRM to-do linked to exactly one opportunity or account. Source
// and SourceRuleID record which automation rule produced it; both are empty
// for manually created tasks.
type Task struct {
	ID              uuid.UUID  `json:"id"`
	TenantID        uuid.UUID  `json:"tenant_id"`
	Title           string     `json:"title"`
	OpportunityID   *uuid.UUID `json:"opportunity_id,omitempty"`
	AccountID       *uuid.UUID `json:"account_id,omitempty"`
	DueAt           *string    `json:"due_at,omitempty"`
	Completed       bool       `json:"completed"`
	AssigneeUserID  *uuid.UUID `json:"assignee_user_id,omitempty"`
	CreatedByUserID *uuid.UUID `json:"created_by_user_id,omitempty"`
	UpdatedByUserID *uuid.UUID `json:"updated_by_user_id,omitempty"`
	Source          string     `json:"source,omitempty"`
	SourceRuleID    *uuid.UUID `json:"source_rule_id,omitempty"`
	SourceTaskID    *uuid.UUID `json:"source_task_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (t Task) IsAutomated() bool { return t.SourceRuleID != nil }

type CreateInput struct {
	Title          string
	OpportunityID  *uuid.UUID
	AccountID      *uuid.UUID
	DueAt          *string
	Completed      bool
	AssigneeUserID *uuid.UUID
}

func (in CreateInput) Validate() error {
	if err := validateTitle(in.Title); err != nil {
		return err
	}
	return validateLink(in.OpportunityID, in.AccountID)
}

func New(tenantID uuid.UUID, createdBy uuid.UUID, in CreateInput, now time.Time) Task {
	t := Task{
		ID:             uuid.New(),
		TenantID:       tenantID,
		Title:          strings.TrimSpace(in.Title),
		OpportunityID:  in.OpportunityID,
		AccountID:      in.AccountID,
		DueAt:          in.DueAt,
		Completed:      in.Completed,
		AssigneeUserID: in.AssigneeUserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if createdBy != uuid.Nil {
		t.CreatedByUserID = &createdBy
	}
	return t
}

type UpdateInput struct {
	Title          *string
	DueAt          *string
	ClearDueAt     bool
	Completed      *bool
	AssigneeUserID *uuid.UUID
	ClearAssignee  bool
}

func (in UpdateInput) Validate() error {
	if in.Title != nil {
		return validateTitle(*in.Title)
	}
	return nil
}

func (in UpdateInput) Apply(t *Task, updatedBy uuid.UUID, now time.Time) {
	if in.Title != nil {
		t.Title = strings.TrimSpace(*in.Title)
	}
	switch {
	case in.ClearDueAt:
		t.DueAt = nil
	case in.DueAt != nil:
		t.DueAt = in.DueAt
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	switch {
	case in.ClearAssignee:
		t.AssigneeUserID = nil
	case in.AssigneeUserID != nil:
		t.AssigneeUserID = in.AssigneeUserID
	}
	if updatedBy != uuid.Nil {
		t.UpdatedByUserID = &updatedBy
	}
	t.UpdatedAt = now
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return apperr.Validation("title is required")
	}
	if len([]rune(title)) > MaxTitleLength {
		return apperr.Validation("title exceeds %d characters", MaxTitleLength)
	}
	return nil
}

func validateLink(opportunityID, accountID *uuid.UUID) error {
	switch {
	case opportunityID != nil && accountID != nil:
		return apperr.Validation("provide either opportunityId or accountId, not both")
	case opportunityID == nil && accountID == nil:
		return apperr.Validation("provide opportunityId or accountId")
	}
	return nil
}

// DueDate parses the free-form DueAt. It understands YYYY-MM-DD and RFC 3339;
// anything else reports ok=false and the task is never considered overdue.
func (t Task) DueDate() (time.Time, bool) {
	if t.DueAt == nil {
		return time.Time{}, false
	}
	raw := strings.TrimSpace(*t.DueAt)
	if d, err := time.Parse(time.DateOnly, raw); err == nil {
		return d, true
	}
	if d, err := time.Parse(time.RFC3339, raw); err == nil {
		return d.UTC(), true
	}
	return time.Time{}, false
}

// ListFilters selects tasks. Exactly one of OpportunityID/AccountID is set by
// the service for user-facing listings; the automation scan uses Incomplete.
type ListFilters struct {
	TenantID      uuid.UUID
	OpportunityID *uuid.UUID
	AccountID     *uuid.UUID
	Incomplete    bool
}

// ProvenanceQuery asks whether a rule already produced a task for a subject
// since a point in time. Subject is an opportunity (stale-deal) or a source
// task (overdue-task).
type ProvenanceQuery struct {
	TenantID      uuid.UUID
	SourceRuleID  uuid.UUID
	OpportunityID *uuid.UUID
	SourceTaskID  *uuid.UUID
	Since         time.Time
}
