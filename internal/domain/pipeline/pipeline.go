package pipeline

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

const DefaultPipelineName = "Default Pipeline"

type Pipeline struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Stage struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	PipelineID   uuid.UUID `json:"pipeline_id"`
	Name         string    `json:"name"`
	Order        int       `json:"order"`
	IsClosedWon  bool      `json:"is_closed_won"`
	IsClosedLost bool      `json:"is_closed_lost"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s Stage) IsClosed() bool { return s.IsClosedWon || s.IsClosedLost }

// StageSeed describes one stage created by bootstrap.
type StageSeed struct {
	Name         string
	Order        int
	IsClosedWon  bool
	IsClosedLost bool
}

// DefaultStages is the fixed seed for a new tenant. Orders are sparse so a
// stage can be inserted later without renumbering.
var DefaultStages = []StageSeed{
	{Name: "Lead", Order: 10},
	{Name: "Qualified", Order: 20},
	{Name: "Proposal", Order: 30},
	{Name: "Negotiation", Order: 40},
	{Name: "Won", Order: 90, IsClosedWon: true},
	{Name: "Lost", Order: 100, IsClosedLost: true},
}

func NewDefault(tenantID uuid.UUID, now time.Time) Pipeline {
	return Pipeline{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      DefaultPipelineName,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SeedStages materializes DefaultStages for p in seed order.
func SeedStages(p Pipeline, now time.Time) []Stage {
	stages := make([]Stage, 0, len(DefaultStages))
	for _, seed := range DefaultStages {
		stages = append(stages, Stage{
			ID:           uuid.New(),
			TenantID:     p.TenantID,
			PipelineID:   p.ID,
			Name:         seed.Name,
			Order:        seed.Order,
			IsClosedWon:  seed.IsClosedWon,
			IsClosedLost: seed.IsClosedLost,
			CreatedAt:    now,
		})
	}
	return stages
}

// SortStages orders by Order, breaking ties by creation time.
func SortStages(stages []Stage) {
	sort.SliceStable(stages, func(i, j int) bool {
		if stages[i].Order != stages[j].Order {
			return stages[i].Order < stages[j].Order
		}
		return stages[i].CreatedAt.Before(stages[j].CreatedAt)
	})
}

// LowestStage returns the first stage in pipeline order.
func LowestStage(stages []Stage) (Stage, bool) {
	if len(stages) == 0 {
		return Stage{}, false
	}
	sorted := append([]Stage(nil), stages...)
	SortStages(sorted)
	return sorted[0], true
}

func FindStage(stages []Stage, id uuid.UUID) (Stage, bool) {
	for _, s := range stages {
		if s.ID == id {
			return s, true
		}
	}
	return Stage{}, false
}

func StageIDs(stages []Stage) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(stages))
	for _, s := range stages {
		ids = append(ids, s.ID)
	}
	return ids
}

// Default is a pipeline together with its ordered stages.
type Default struct {
	Pipeline Pipeline `json:"pipeline"`
	Stages   []Stage  `json:"stages"`
}

type BootstrapResult struct {
	PipelineID uuid.UUID   `json:"pipeline_id"`
	StageIDs   []uuid.UUID `json:"stage_ids"`
}
