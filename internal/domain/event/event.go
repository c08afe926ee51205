package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeOpportunityCreated      Type = "opportunity_created"
	TypeOpportunityUpdated      Type = "opportunity_updated"
	TypeOpportunityStageChanged Type = "opportunity_stage_changed"
	TypeOpportunityTeamChanged  Type = "opportunity_team_changed"
	TypeTaskCreated             Type = "crm_task_created"
	TypeTaskUpdated             Type = "crm_task_updated"
	TypeTaskDeleted             Type = "crm_task_deleted"
	TypeAutomationTasksCreated  Type = "automation_tasks_created"
)

// Channel is a domain-scoped Postgres NOTIFY channel.
// All event types within a domain share one LISTEN connection.
type Channel string

const (
	ChannelOpportunity Channel = "opportunity"
	ChannelTask        Channel = "task"
)

var typeToChannel = map[Type]Channel{
	TypeOpportunityCreated:      ChannelOpportunity,
	TypeOpportunityUpdated:      ChannelOpportunity,
	TypeOpportunityStageChanged: ChannelOpportunity,
	TypeOpportunityTeamChanged:  ChannelOpportunity,
	TypeTaskCreated:             ChannelTask,
	TypeTaskUpdated:             ChannelTask,
	TypeTaskDeleted:             ChannelTask,
	TypeAutomationTasksCreated:  ChannelTask,
}

// ChannelFor returns the domain channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

var Channels = []Channel{ChannelOpportunity, ChannelTask}

// Event carries identifiers only. Subscribers fetch fresh state themselves.
type Event struct {
	Type      Type      `json:"type"`
	TenantID  uuid.UUID `json:"tenant_id"`
	EntityID  uuid.UUID `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

func New(eventType Type, tenantID, entityID uuid.UUID) Event {
	return Event{
		Type:      eventType,
		TenantID:  tenantID,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}
