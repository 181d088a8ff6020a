package repository

import (
	"context"

	"github.com/yukikurage/taskz/internal/models"
)

// TenantRepository defines the interface for tenant data access
type TenantRepository interface {
	// Create creates a new tenant
	Create(ctx context.Context, tenant *models.Tenant) error

	// FindByID finds a tenant by ID
	FindByID(ctx context.Context, id string) (*models.Tenant, error)

	// FindByName finds a tenant by its exact name
	FindByName(ctx context.Context, name string) (*models.Tenant, error)

	// List returns tenants ordered by name
	List(ctx context.Context, page Page) ([]models.Tenant, error)

	// Update saves a tenant
	Update(ctx context.Context, tenant *models.Tenant) error

	// Delete removes a tenant without touching its users or tasks
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email, case-insensitively
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindInTenant finds a user by ID restricted to one tenant
	FindInTenant(ctx context.Context, id, tenantID string) (*models.User, error)

	// List retrieves users matching the filter
	List(ctx context.Context, filter UserFilter) ([]models.User, error)

	// Count counts users, optionally restricted to one tenant
	Count(ctx context.Context, tenantID *string) (int64, error)

	// Update saves a user
	Update(ctx context.Context, user *models.User) error

	// Delete removes a user
	Delete(ctx context.Context, id string) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id string) (*models.Task, error)

	// List retrieves tasks matching the filter
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	// Update saves a task
	Update(ctx context.Context, task *models.Task) error

	// Delete removes a task
	Delete(ctx context.Context, id string) error

	// RenameEmail rewrites created_by and assigned_to references from one
	// email to another
	RenameEmail(ctx context.Context, from, to string) error
}

// Page limits a listing. The zero Page returns everything.
type Page struct {
	Offset int
	Limit  int
}

// TaskFilter holds filtering options for listing tasks. With All unset, the
// remaining fields are combined with AND; an empty filter matches nothing.
type TaskFilter struct {
	All bool
	// TenantID restricts to one tenant.
	TenantID string
	// Email matches created_by OR assigned_to.
	Email string
	Page  Page
}

// UserFilter holds filtering options for listing users.
type UserFilter struct {
	All      bool
	TenantID string
	UserID   string
	Page     Page
}

// Repositories bundles the entity stores bound to one connection or transaction.
type Repositories struct {
	Tenants TenantRepository
	Users   UserRepository
	Tasks   TaskRepository
}
