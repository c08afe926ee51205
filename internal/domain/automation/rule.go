package automation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
)

// Kind tags a rule variant. The same value is written to crm_tasks.source for
// tasks the rule materializes.
type Kind string

const (
	KindStageTask     Kind = "stage_task"
	KindStageSequence Kind = "stage_sequence"
	KindOverdueTask   Kind = "overdue_task"
	KindStaleDeal     Kind = "stale_deal"
	KindWonChecklist  Kind = "won_checklist"
)

var allKinds = []Kind{KindStageTask, KindStageSequence, KindOverdueTask, KindStaleDeal, KindWonChecklist}

// ParseKind accepts both the snake_case tag and the hyphenated form used in
// URLs (stage-task).
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range allKinds {
		if k == known {
			return k, nil
		}
	}
	return "", apperr.Validation("unknown rule kind %q", s)
}

// TimeDriven reports whether the kind is evaluated by the periodic scan
// rather than on stage transitions.
func (k Kind) TimeDriven() bool { return k == KindOverdueTask || k == KindStaleDeal }

type AssigneeTarget string

const (
	AssigneeOwner    AssigneeTarget = "owner"
	AssigneeMover    AssigneeTarget = "mover"
	AssigneeSpecific AssigneeTarget = "specific"
)

const (
	MaxTitleTemplateLength = 220
	MaxSequenceItems       = 50

	DefaultOverdueDays  = 1
	DefaultStaleDays    = 30
	DefaultCooldownDays = 7
)

type StageTask struct {
	FromStageID   *uuid.UUID `json:"from_stage_id,omitempty"`
	ToStageID     uuid.UUID  `json:"to_stage_id" validate:"required"`
	TitleTemplate string     `json:"title_template" validate:"required,max=220"`
	DueInDays     int        `json:"due_in_days" validate:"min=0,max=3650"`
}

type SequenceItem struct {
	TitleTemplate string `json:"title_template" validate:"required,max=220"`
	DueInDays     int    `json:"due_in_days" validate:"min=0,max=3650"`
}

type StageSequence struct {
	FromStageID *uuid.UUID     `json:"from_stage_id,omitempty"`
	ToStageID   uuid.UUID      `json:"to_stage_id" validate:"required"`
	Items       []SequenceItem `json:"items" validate:"required,min=1,max=50,dive"`
}

type OverdueTask struct {
	OverdueDays   int    `json:"overdue_days" validate:"min=0,max=3650"`
	TitleTemplate string `json:"title_template" validate:"required,max=220"`
	DueInDays     int    `json:"due_in_days" validate:"min=0,max=3650"`
	CooldownDays  int    `json:"cooldown_days" validate:"min=0,max=3650"`
}

type StaleDeal struct {
	StaleDays     int        `json:"stale_days" validate:"min=1,max=3650"`
	StageID       *uuid.UUID `json:"stage_id,omitempty"`
	TitleTemplate string     `json:"title_template" validate:"required,max=220"`
	DueInDays     int        `json:"due_in_days" validate:"min=0,max=3650"`
	CooldownDays  int        `json:"cooldown_days" validate:"min=0,max=3650"`
}

type WonChecklist struct {
	TitleTemplates []string `json:"title_templates" validate:"required,min=1,max=50,dive,required,max=220"`
	DueInDays      int      `json:"due_in_days" validate:"min=0,max=3650"`
}

// Rule is a tagged union: Kind selects which one of the payload pointers is
// set. The common fields apply to every kind.
type Rule struct {
	ID             uuid.UUID      `json:"id"`
	TenantID       uuid.UUID      `json:"tenant_id"`
	Kind           Kind           `json:"kind"`
	Enabled        bool           `json:"enabled"`
	AssigneeTarget AssigneeTarget `json:"assignee_target"`
	AssigneeUserID *uuid.UUID     `json:"assignee_user_id,omitempty"`

	StageTask     *StageTask     `json:"stage_task,omitempty"`
	StageSequence *StageSequence `json:"stage_sequence,omitempty"`
	OverdueTask   *OverdueTask   `json:"overdue_task,omitempty"`
	StaleDeal     *StaleDeal     `json:"stale_deal,omitempty"`
	WonChecklist  *WonChecklist  `json:"won_checklist,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func New(tenantID uuid.UUID, now time.Time) Rule {
	return Rule{
		ID:             uuid.New(),
		TenantID:       tenantID,
		Enabled:        true,
		AssigneeTarget: AssigneeOwner,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Payload returns the variant for r.Kind, or nil when it is missing.
func (r Rule) Payload() any {
	switch r.Kind {
	case KindStageTask:
		if r.StageTask != nil {
			return r.StageTask
		}
	case KindStageSequence:
		if r.StageSequence != nil {
			return r.StageSequence
		}
	case KindOverdueTask:
		if r.OverdueTask != nil {
			return r.OverdueTask
		}
	case KindStaleDeal:
		if r.StaleDeal != nil {
			return r.StaleDeal
		}
	case KindWonChecklist:
		if r.WonChecklist != nil {
			return r.WonChecklist
		}
	}
	return nil
}

func (r Rule) payloadCount() int {
	n := 0
	for _, set := range []bool{
		r.StageTask != nil, r.StageSequence != nil, r.OverdueTask != nil,
		r.StaleDeal != nil, r.WonChecklist != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// StageRefs lists the stage ids the rule points at; each must belong to the
// tenant's default pipeline.
func (r Rule) StageRefs() []uuid.UUID {
	var refs []uuid.UUID
	switch {
	case r.StageTask != nil:
		refs = append(refs, r.StageTask.ToStageID)
		if r.StageTask.FromStageID != nil {
			refs = append(refs, *r.StageTask.FromStageID)
		}
	case r.StageSequence != nil:
		refs = append(refs, r.StageSequence.ToStageID)
		if r.StageSequence.FromStageID != nil {
			refs = append(refs, *r.StageSequence.FromStageID)
		}
	case r.StaleDeal != nil && r.StaleDeal.StageID != nil:
		refs = append(refs, *r.StaleDeal.StageID)
	}
	return refs
}

var validate = validator.New()

// Normalize trims template text so whitespace-only titles fail validation.
func (r *Rule) Normalize() {
	switch {
	case r.StageTask != nil:
		r.StageTask.TitleTemplate = strings.TrimSpace(r.StageTask.TitleTemplate)
	case r.StageSequence != nil:
		for i := range r.StageSequence.Items {
			r.StageSequence.Items[i].TitleTemplate = strings.TrimSpace(r.StageSequence.Items[i].TitleTemplate)
		}
	case r.OverdueTask != nil:
		r.OverdueTask.TitleTemplate = strings.TrimSpace(r.OverdueTask.TitleTemplate)
	case r.StaleDeal != nil:
		r.StaleDeal.TitleTemplate = strings.TrimSpace(r.StaleDeal.TitleTemplate)
	case r.WonChecklist != nil:
		for i := range r.WonChecklist.TitleTemplates {
			r.WonChecklist.TitleTemplates[i] = strings.TrimSpace(r.WonChecklist.TitleTemplates[i])
		}
	}
}

// Validate checks the union shape, the assignee and the payload constraints.
func (r Rule) Validate() error {
	if _, err := ParseKind(string(r.Kind)); err != nil {
		return err
	}
	switch r.AssigneeTarget {
	case AssigneeOwner, AssigneeMover:
	case AssigneeSpecific:
		if r.AssigneeUserID == nil || *r.AssigneeUserID == uuid.Nil {
			return apperr.Validation("assignee_user_id is required when assignee_target is specific")
		}
	default:
		return apperr.Validation("invalid assignee_target %q", r.AssigneeTarget)
	}

	payload := r.Payload()
	if payload == nil {
		return apperr.Validation("%s rule is missing its %s payload", r.Kind, r.Kind)
	}
	if r.payloadCount() != 1 {
		return apperr.Validation("%s rule must carry exactly one payload", r.Kind)
	}
	if err := validate.Struct(payload); err != nil {
		return apperr.Validation("%s rule: %s", r.Kind, describe(err))
	}
	if r.StageSequence != nil && len(r.StageSequence.Items) > MaxSequenceItems {
		return apperr.Validation("stage sequence supports at most %d items", MaxSequenceItems)
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

type ListFilters struct {
	TenantID    uuid.UUID
	Kind        *Kind
	EnabledOnly bool
}

// RuleInput is a create or partial update request. On update the kind is
// fixed; a payload for the rule's own kind replaces the stored one.
type RuleInput struct {
	Kind           Kind            `json:"kind"`
	Enabled        *bool           `json:"enabled,omitempty"`
	AssigneeTarget *AssigneeTarget `json:"assignee_target,omitempty"`
	AssigneeUserID *uuid.UUID      `json:"assignee_user_id,omitempty"`
	ClearAssignee  bool            `json:"clear_assignee,omitempty"`

	StageTask     *StageTask     `json:"stage_task,omitempty"`
	StageSequence *StageSequence `json:"stage_sequence,omitempty"`
	OverdueTask   *OverdueTask   `json:"overdue_task,omitempty"`
	StaleDeal     *StaleDeal     `json:"stale_deal,omitempty"`
	WonChecklist  *WonChecklist  `json:"won_checklist,omitempty"`
}

// Apply copies the set fields of in onto r. Payloads of other kinds are
// ignored so a rule always carries one variant.
func (in RuleInput) Apply(r *Rule, now time.Time) {
	if in.Enabled != nil {
		r.Enabled = *in.Enabled
	}
	if in.AssigneeTarget != nil {
		r.AssigneeTarget = *in.AssigneeTarget
	}
	switch {
	case in.ClearAssignee:
		r.AssigneeUserID = nil
	case in.AssigneeUserID != nil:
		r.AssigneeUserID = in.AssigneeUserID
	}
	switch r.Kind {
	case KindStageTask:
		if in.StageTask != nil {
			r.StageTask = in.StageTask
		}
	case KindStageSequence:
		if in.StageSequence != nil {
			r.StageSequence = in.StageSequence
		}
	case KindOverdueTask:
		if in.OverdueTask != nil {
			r.OverdueTask = in.OverdueTask
		}
	case KindStaleDeal:
		if in.StaleDeal != nil {
			r.StaleDeal = in.StaleDeal
		}
	case KindWonChecklist:
		if in.WonChecklist != nil {
			r.WonChecklist = in.WonChecklist
		}
	}
	r.UpdatedAt = now
}
