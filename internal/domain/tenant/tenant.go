package tenant

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func New(name string, now time.Time) Tenant {
	return Tenant{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
	}
}
