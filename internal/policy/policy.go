// Package policy decides what an authenticated principal may see and change.
//
// Two strategies exist and exactly one is active per process: RoleBased grants
// admins everything and normal users only what carries their email or id;
// TenantScoped confines every principal to its own tenant and hides
// everything else. Policies are pure: they never touch the store.
package policy

import (
	"errors"
	"fmt"

	"github.com/yukikurage/taskz/internal/models"
)

// Decision is the outcome of an access check on a single record.
type Decision int

const (
	// Allow permits read, update and delete.
	Allow Decision = iota
	// Deny reports the record as forbidden.
	Deny
	// Hide reports the record as missing so its existence is not disclosed.
	Hide
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	case Hide:
		return "hide"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

type Strategy string

const (
	StrategyRole   Strategy = "role"
	StrategyTenant Strategy = "tenant"
)

var (
	ErrCrossTenant     = errors.New("cannot create user in a different tenant")
	ErrTenantRequired  = errors.New("tenant_id is required")
	ErrRoleNotAllowed  = errors.New("not allowed to grant this role")
	ErrInvalidRole     = errors.New("role must be admin or normal")
	ErrUnknownStrategy = errors.New("unknown authorization strategy")
)

// Scope narrows a list query. The zero Scope matches nothing.
type Scope struct {
	// All lifts every restriction.
	All bool
	// TenantID restricts to records of one tenant.
	TenantID string
	// Email matches tasks whose creator or assignee is this email.
	Email string
	// UserID restricts a user listing to a single user.
	UserID string
}

// Empty reports whether the scope can match no record at all.
func (s Scope) Empty() bool {
	return !s.All && s.TenantID == "" && s.Email == "" && s.UserID == ""
}

// Assignee describes how a client-supplied assigned_to value is stored and
// which user must exist for it to be accepted.
type Assignee struct {
	// Value is persisted in Task.AssignedTo.
	Value string
	// Verify requires a matching user before the task is written.
	Verify bool
	// Exactly one of Email or UserID identifies the user to look up.
	Email  string
	UserID string
	// TenantID, when set, must match the looked-up user's tenant.
	TenantID string
}

// Enrollment is where a newly registered user lands.
type Enrollment struct {
	TenantID *string
	Role     models.Role
	// RequireEmptyTenant admits an anonymous registration only as the
	// first member of TenantID.
	RequireEmptyTenant bool
	// RequireNoUsers admits an anonymous admin only into an empty store.
	RequireNoUsers bool
}

// Policy is implemented by RoleBased and TenantScoped.
type Policy interface {
	Strategy() Strategy

	TaskScope(p *models.User) Scope
	TaskAccess(p *models.User, t *models.Task) Decision
	// Assignee normalizes a raw assigned_to value. creating distinguishes
	// task creation from reassignment on update.
	Assignee(p *models.User, raw string, creating bool) Assignee
	// StampTask copies ownership fields from the principal onto a new task.
	StampTask(p *models.User, t *models.Task)

	UserScope(p *models.User) Scope
	UserAccess(p *models.User, target *models.User) Decision
	// Enroll decides tenant and role for a registration. p is nil for an
	// anonymous caller.
	Enroll(p *models.User, tenantID *string, role models.Role) (Enrollment, error)

	TenantAccess(p *models.User, t *models.Tenant) Decision
}

// New returns the policy for strategy.
func New(strategy Strategy) (Policy, error) {
	switch strategy {
	case StrategyRole:
		return RoleBased{}, nil
	case StrategyTenant:
		return TenantScoped{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}
