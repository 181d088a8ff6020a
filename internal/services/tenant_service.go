package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/taskz/internal/models"
	"github.com/yukikurage/taskz/internal/policy"
	"github.com/yukikurage/taskz/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TenantService handles tenant business logic
type TenantService struct {
	base
}

// NewTenantService creates a new TenantService
func NewTenantService(store *repository.Store, pol policy.Policy, logger *zap.Logger) *TenantService {
	return &TenantService{base{store: store, policy: pol, logger: logger}}
}

// ListTenants returns all tenants. Listing is public.
func (s *TenantService) ListTenants(ctx context.Context, page repository.Page) ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		var err error
		tenants, err = r.Tenants.List(ctx, page)
		if err != nil {
			return s.storeError("list tenants", err)
		}
		return nil
	})
	return tenants, err
}

// CreateTenant creates a tenant with a unique, case-sensitive name. Creation
// is public so the first tenant can be bootstrapped.
func (s *TenantService) CreateTenant(ctx context.Context, name string) (*models.Tenant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrTenantNameRequired
	}

	tenant := &models.Tenant{ID: uuid.NewString(), Name: name}
	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		if err := s.ensureNameFree(ctx, r, name, ""); err != nil {
			return err
		}
		if err := r.Tenants.Create(ctx, tenant); err != nil {
			return s.writeError("create tenant", err, ErrTenantNameTaken)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// GetTenant returns the principal's own tenant
func (s *TenantService) GetTenant(ctx context.Context, p *models.User, id string) (*models.Tenant, error) {
	var tenant *models.Tenant
	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		var err error
		tenant, err = s.loadTenant(ctx, r, p, id)
		return err
	})
	return tenant, err
}

// UpdateTenant renames the principal's tenant
func (s *TenantService) UpdateTenant(ctx context.Context, p *models.User, id string, name *string) (*models.Tenant, error) {
	if name != nil && strings.TrimSpace(*name) == "" {
		return nil, ErrTenantNameRequired
	}

	var tenant *models.Tenant
	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		var err error
		tenant, err = s.loadTenant(ctx, r, p, id)
		if err != nil {
			return err
		}
		if name == nil || *name == tenant.Name {
			return nil
		}
		if err := s.ensureNameFree(ctx, r, *name, tenant.ID); err != nil {
			return err
		}
		tenant.Name = *name
		if err := r.Tenants.Update(ctx, tenant); err != nil {
			return s.writeError("update tenant", err, ErrTenantNameTaken)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// DeleteTenant removes the tenant row only. Its users and tasks keep the
// dangling tenant_id.
func (s *TenantService) DeleteTenant(ctx context.Context, p *models.User, id string) error {
	return s.store.Transaction(ctx, func(r repository.Repositories) error {
		if _, err := s.loadTenant(ctx, r, p, id); err != nil {
			return err
		}
		if err := r.Tenants.Delete(ctx, id); err != nil {
			return s.storeError("delete tenant", err)
		}
		return nil
	})
}

func (s *TenantService) loadTenant(ctx context.Context, r repository.Repositories, p *models.User, id string) (*models.Tenant, error) {
	tenant, err := r.Tenants.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError("find tenant", err, ErrTenantNotFound)
	}
	if err := decide(s.policy.TenantAccess(p, tenant), ErrTenantNotFound); err != nil {
		return nil, err
	}
	return tenant, nil
}

// ensureNameFree fails when another tenant than selfID already uses name.
func (s *TenantService) ensureNameFree(ctx context.Context, r repository.Repositories, name, selfID string) error {
	existing, err := r.Tenants.FindByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return ErrTenantNameTaken
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return s.storeError("find tenant by name", err)
	}
}
