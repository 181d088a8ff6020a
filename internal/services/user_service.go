package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/yukikurage/taskz/internal/auth"
	"github.com/yukikurage/taskz/internal/constants"
	"github.com/yukikurage/taskz/internal/models"
	"github.com/yukikurage/taskz/internal/policy"
	"github.com/yukikurage/taskz/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService handles user business logic
type UserService struct {
	base
	hasher auth.PasswordHasher
}

// NewUserService creates a new UserService
func NewUserService(store *repository.Store, pol policy.Policy, hasher auth.PasswordHasher, logger *zap.Logger) *UserService {
	return &UserService{
		base:   base{store: store, policy: pol, logger: logger},
		hasher: hasher,
	}
}

// RegisterInput represents input for creating a user
type RegisterInput struct {
	Email    string
	Name     string
	Password string
	TenantID *string
	Role     models.Role
}

// UpdateUserInput represents a partial user update
type UpdateUserInput struct {
	Email    *string
	Name     *string
	Password *string
}

// ListUsers returns the users visible to the principal
func (s *UserService) ListUsers(ctx context.Context, p *models.User, page repository.Page) ([]models.User, error) {
	scope := s.policy.UserScope(p)
	if scope.Empty() {
		return []models.User{}, nil
	}

	var users []models.User
	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		var err error
		users, err = r.Users.List(ctx, scopeToUserFilter(scope, page))
		if err != nil {
			return s.storeError("list users", err)
		}
		return nil
	})
	return users, err
}

// GetUser returns a user the principal may access
func (s *UserService) GetUser(ctx context.Context, p *models.User, id string) (*models.User, error) {
	var user *models.User
	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		var err error
		user, err = s.loadUser(ctx, r, p, id)
		return err
	})
	return user, err
}

// Register creates a user, with or without an authenticated caller.
//
// An unused email is registered as the policy's enrollment rules allow. A taken
// email never updates anything: without a usable token the caller gets
// auth.ErrUnauthenticated, a token for someone else gets ErrForbidden, and the
// owner's own token gets ErrEmailTaken.
func (s *UserService) Register(ctx context.Context, identity auth.Identity, input RegisterInput) (*models.User, error) {
	email := models.NormalizeEmail(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	var principal *models.User
	if identity.State == auth.Authenticated {
		principal = identity.Principal
	}

	var user *models.User
	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		existing, err := r.Users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			return registrationConflict(principal, existing)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return s.storeError("find user by email", err)
		}

		enrollment, err := s.policy.Enroll(principal, input.TenantID, input.Role)
		if err != nil {
			return err
		}
		if err := s.checkEnrollment(ctx, r, enrollment); err != nil {
			return err
		}

		hash, err := s.hasher.Hash(input.Password)
		if err != nil {
			return err
		}

		user = &models.User{
			ID:           uuid.NewString(),
			Email:        email,
			Name:         input.Name,
			PasswordHash: hash,
			TenantID:     enrollment.TenantID,
			Role:         enrollment.Role,
		}
		if err := r.Users.Create(ctx, user); err != nil {
			return s.writeError("create user", err, ErrEmailTaken)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID))
	return user, nil
}

func registrationConflict(principal, existing *models.User) error {
	switch {
	case principal == nil:
		return auth.ErrUnauthenticated
	case principal.ID != existing.ID:
		return ErrForbidden
	default:
		return ErrEmailTaken
	}
}

func (s *UserService) checkEnrollment(ctx context.Context, r repository.Repositories, e policy.Enrollment) error {
	if e.TenantID != nil {
		if _, err := r.Tenants.FindByID(ctx, *e.TenantID); err != nil {
			return s.lookupError("find tenant", err, ErrTenantNotFound)
		}
	}

	if e.RequireEmptyTenant {
		members, err := r.Users.Count(ctx, e.TenantID)
		if err != nil {
			return s.storeError("count tenant users", err)
		}
		if members > 0 {
			return auth.ErrUnauthenticated
		}
	}

	if e.RequireNoUsers {
		total, err := r.Users.Count(ctx, nil)
		if err != nil {
			return s.storeError("count users", err)
		}
		if total > 0 {
			return policy.ErrRoleNotAllowed
		}
	}
	return nil
}

// UpdateUser applies a partial update. A changed email must stay unique.
func (s *UserService) UpdateUser(ctx context.Context, p *models.User, id string, input UpdateUserInput) (*models.User, error) {
	if input.Password != nil && len(*input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	var user *models.User
	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		var err error
		user, err = s.loadUser(ctx, r, p, id)
		if err != nil {
			return err
		}

		if input.Email != nil {
			email := models.NormalizeEmail(*input.Email)
			if email == "" {
				return ErrEmailRequired
			}
			if email != user.Email {
				other, err := r.Users.FindByEmail(ctx, email)
				switch {
				case err == nil && other.ID != user.ID:
					return ErrEmailTaken
				case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
					return s.storeError("find user by email", err)
				}
				if err := r.Tasks.RenameEmail(ctx, user.Email, email); err != nil {
					return s.storeError("rename task references", err)
				}
				user.Email = email
			}
		}
		if input.Name != nil {
			user.Name = *input.Name
		}
		if input.Password != nil {
			hash, err := s.hasher.Hash(*input.Password)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
		}

		if err := r.Users.Update(ctx, user); err != nil {
			return s.writeError("update user", err, ErrEmailTaken)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user the principal may access. Tasks referencing the
// user are left as they are.
func (s *UserService) DeleteUser(ctx context.Context, p *models.User, id string) error {
	return s.store.Transaction(ctx, func(r repository.Repositories) error {
		if _, err := s.loadUser(ctx, r, p, id); err != nil {
			return err
		}
		if err := r.Users.Delete(ctx, id); err != nil {
			return s.storeError("delete user", err)
		}
		return nil
	})
}

func (s *UserService) loadUser(ctx context.Context, r repository.Repositories, p *models.User, id string) (*models.User, error) {
	user, err := r.Users.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError("find user", err, ErrUserNotFound)
	}
	if err := decide(s.policy.UserAccess(p, user), ErrUserNotFound); err != nil {
		return nil, err
	}
	return user, nil
}
