package actor

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleTenantAdmin Role = "tenant_admin"
	RoleMember      Role = "member"
)

var validRoles = map[Role]bool{
	RoleSuperAdmin:  true,
	RoleTenantAdmin: true,
	RoleMember:      true,
}

// ParseRole accepts the lower-case role names plus the upper-case spelling
// used by the identity provider (SUPER_ADMIN, TENANT_ADMIN).
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !validRoles[r] {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Actor is the identity performing an operation.
type Actor struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Role     Role      `json:"role"`
	Name     string    `json:"name,omitempty"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleSuperAdmin || a.Role == RoleTenantAdmin
}

// CanManageOpportunity is the single authorization predicate for mutating an
// opportunity: stage moves, team changes and field edits.
func CanManageOpportunity(a Actor, ownerUserID uuid.UUID) bool {
	return a.IsAdmin() || a.ID == ownerUserID
}

// System is the actor used by scheduled automation runs.
func System(tenantID uuid.UUID) Actor {
	return Actor{TenantID: tenantID, Role: RoleTenantAdmin, Name: "system"}
}
