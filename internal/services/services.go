package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/taskz/internal/policy"
	"github.com/yukikurage/taskz/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrForbidden is returned when the policy denies an authenticated principal.
	ErrForbidden = errors.New("not enough permissions")

	ErrTaskNotFound     = errors.New("task not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrTenantNotFound   = errors.New("tenant not found")
	ErrAssigneeNotFound = errors.New("assigned user not found")

	ErrEmailTaken      = errors.New("user with this email already exists")
	ErrTenantNameTaken = errors.New("tenant with this name already exists")

	ErrTitleRequired      = errors.New("title is required")
	ErrTenantNameRequired = errors.New("tenant name is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordTooShort   = errors.New("password is too short")

	ErrInvalidCredentials = errors.New("invalid email or password")
)

// base carries what every resource service needs.
type base struct {
	store  *repository.Store
	policy policy.Policy
	logger *zap.Logger
}

// storeError logs a persistence failure and wraps it. Returning it from a
// transaction callback rolls the transaction back.
func (b base) storeError(op string, err error) error {
	b.logger.Error("Store operation failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("failed to %s: %w", op, err)
}

// lookupError maps a missing record to notFound and anything else to a store error.
func (b base) lookupError(op string, err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return b.storeError(op, err)
}

// writeError maps a unique-key violation to conflict. A concurrent writer can
// take a key between the uniqueness check and the write.
func (b base) writeError(op string, err error, conflict error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict
	}
	return b.storeError(op, err)
}

// decide turns a policy decision into the error the caller sees.
func decide(d policy.Decision, notFound error) error {
	switch d {
	case policy.Allow:
		return nil
	case policy.Hide:
		return notFound
	default:
		return ErrForbidden
	}
}

func scopeToTaskFilter(s policy.Scope, page repository.Page) repository.TaskFilter {
	return repository.TaskFilter{
		All:      s.All,
		TenantID: s.TenantID,
		Email:    s.Email,
		Page:     page,
	}
}

func scopeToUserFilter(s policy.Scope, page repository.Page) repository.UserFilter {
	return repository.UserFilter{
		All:      s.All,
		TenantID: s.TenantID,
		UserID:   s.UserID,
		Page:     page,
	}
}
