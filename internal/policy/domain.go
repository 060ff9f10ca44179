package policy

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role is a closed set of actor categories.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleStaff      Role = "STAFF"
)

// Roles lists every assignable role.
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleManager, RoleStaff}
}

// ParseRole validates a raw role claim.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleManager, RoleStaff:
		return role, nil
	}
	return "", fmt.Errorf("policy: unknown role %q", raw)
}

// Resource is a domain noun permissions attach to.
type Resource string

const (
	ResourceBrand      Resource = "brand"
	ResourceCampaign   Resource = "campaign"
	ResourceInfluencer Resource = "influencer"
	ResourceAssignment Resource = "assignment"
	ResourceContent    Resource = "content"
	ResourcePayment    Resource = "payment"
	ResourceAdminUser  Resource = "admin-user"
	ResourceSettings   Resource = "settings"
	ResourcePermission Resource = "permission"
	ResourceAudit      Resource = "audit"
)

// Action is a verb applied to a resource.
type Action string

const (
	ActionView    Action = "view"
	ActionCreate  Action = "create"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionReview  Action = "review"
)

// Rule grants or withholds one action on one resource for one role.
// At most one rule exists per (role, resource, action) triple.
type Rule struct {
	Role      Role
	Resource  Resource
	Action    Action
	Allowed   bool
	UpdatedAt time.Time
}

// Key renders the resource:action permission name.
func Key(resource Resource, action Action) string {
	return string(resource) + ":" + string(action)
}

// Actor is the authenticated identity the upstream gateway vouches for.
type Actor struct {
	ID   int64
	Role Role
}

// ErrStoreUnavailable signals the override backing store cannot be reached.
// Callers must treat it as deny, never as allow.
var ErrStoreUnavailable = errors.New("policy: store unavailable")
