package policy

import "github.com/yukikurage/taskz/internal/models"

// RoleBased is a flat namespace: admins see and change everything, normal users
// see tasks they created or are assigned to but change only the ones they
// created, and see only themselves among users.
type RoleBased struct{}

var _ Policy = RoleBased{}

func (RoleBased) Strategy() Strategy { return StrategyRole }

func (RoleBased) TaskScope(p *models.User) Scope {
	if p.IsAdmin() {
		return Scope{All: true}
	}
	return Scope{Email: models.NormalizeEmail(p.Email)}
}

// TaskAccess keys on created_by only. An assignee who did not create the task
// can list it but not read, update or delete it.
func (RoleBased) TaskAccess(p *models.User, t *models.Task) Decision {
	if p.IsAdmin() {
		return Allow
	}
	if t.CreatedBy == models.NormalizeEmail(p.Email) {
		return Allow
	}
	return Deny
}

// Assignee lowercases the email. Creation stores it unchecked; reassignment
// requires the user to exist.
func (RoleBased) Assignee(_ *models.User, raw string, creating bool) Assignee {
	email := models.NormalizeEmail(raw)
	return Assignee{
		Value:  email,
		Verify: !creating,
		Email:  email,
	}
}

func (RoleBased) StampTask(p *models.User, t *models.Task) {
	t.CreatedBy = models.NormalizeEmail(p.Email)
	t.TenantID = p.TenantID
}

func (RoleBased) UserScope(p *models.User) Scope {
	if p.IsAdmin() {
		return Scope{All: true}
	}
	return Scope{UserID: p.ID}
}

func (RoleBased) UserAccess(p *models.User, target *models.User) Decision {
	if p.IsAdmin() || p.ID == target.ID {
		return Allow
	}
	return Deny
}

// Enroll ignores tenantID: under this strategy users carry no tenant.
func (RoleBased) Enroll(p *models.User, _ *string, role models.Role) (Enrollment, error) {
	if role == "" {
		role = models.RoleNormal
	}
	if !role.Valid() {
		return Enrollment{}, ErrInvalidRole
	}

	e := Enrollment{Role: role}
	if role == models.RoleAdmin {
		switch {
		case p == nil:
			e.RequireNoUsers = true
		case !p.IsAdmin():
			return Enrollment{}, ErrRoleNotAllowed
		}
	}
	return e, nil
}

// TenantAccess is only reachable when tenant routes are mounted, which the
// role strategy never does; admins are still allowed for completeness.
func (RoleBased) TenantAccess(p *models.User, _ *models.Tenant) Decision {
	if p.IsAdmin() {
		return Allow
	}
	return Deny
}
