package policy

import "github.com/yukikurage/taskz/internal/models"

// TenantScoped confines each principal to its tenant. There is no role
// concept, and records of other tenants are reported as missing.
type TenantScoped struct{}

var _ Policy = TenantScoped{}

func (TenantScoped) Strategy() Strategy { return StrategyTenant }

func (TenantScoped) TaskScope(p *models.User) Scope {
	return tenantScope(p)
}

func (TenantScoped) TaskAccess(p *models.User, t *models.Task) Decision {
	return sameTenant(p, t.TenantID)
}

// Assignee holds a user id that must exist inside the caller's tenant, on
// create and on reassignment alike.
func (TenantScoped) Assignee(p *models.User, raw string, _ bool) Assignee {
	a := Assignee{
		Value:  raw,
		Verify: true,
		UserID: raw,
	}
	if p.TenantID != nil {
		a.TenantID = *p.TenantID
	}
	return a
}

func (TenantScoped) StampTask(p *models.User, t *models.Task) {
	t.CreatedBy = models.NormalizeEmail(p.Email)
	t.TenantID = p.TenantID
}

func (TenantScoped) UserScope(p *models.User) Scope {
	return tenantScope(p)
}

func (TenantScoped) UserAccess(p *models.User, target *models.User) Decision {
	return sameTenant(p, target.TenantID)
}

// Enroll places authenticated registrations in the caller's tenant. Anonymous
// registrations must name a tenant and may only bootstrap its first member.
func (TenantScoped) Enroll(p *models.User, tenantID *string, _ models.Role) (Enrollment, error) {
	if p != nil {
		if p.TenantID == nil {
			return Enrollment{}, ErrTenantRequired
		}
		if tenantID != nil && *tenantID != *p.TenantID {
			return Enrollment{}, ErrCrossTenant
		}
		return Enrollment{TenantID: p.TenantID, Role: models.RoleNormal}, nil
	}

	if tenantID == nil || *tenantID == "" {
		return Enrollment{}, ErrTenantRequired
	}
	return Enrollment{
		TenantID:           tenantID,
		Role:               models.RoleNormal,
		RequireEmptyTenant: true,
	}, nil
}

func (TenantScoped) TenantAccess(p *models.User, t *models.Tenant) Decision {
	return sameTenant(p, &t.ID)
}

func tenantScope(p *models.User) Scope {
	if p.TenantID == nil {
		return Scope{}
	}
	return Scope{TenantID: *p.TenantID}
}

func sameTenant(p *models.User, tenantID *string) Decision {
	if p.InTenant(tenantID) {
		return Allow
	}
	return Hide
}
