package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/taskz/internal/auth"
	"github.com/yukikurage/taskz/internal/constants"
	apierrors "github.com/yukikurage/taskz/internal/errors"
	"github.com/yukikurage/taskz/internal/logger"
	"github.com/yukikurage/taskz/internal/policy"
	"github.com/yukikurage/taskz/internal/services"
	"go.uber.org/zap"
)

// respondError maps service errors to API errors. Anything unrecognized is a
// store or internal failure and is reported without detail.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		apierrors.Unauthorized(c, "Not authenticated")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)

	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, policy.ErrCrossTenant),
		errors.Is(err, policy.ErrRoleNotAllowed):
		apierrors.Forbidden(c, err.Error())

	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTenantNotFound),
		errors.Is(err, services.ErrAssigneeNotFound):
		apierrors.NotFound(c, err.Error())

	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrTenantNameTaken):
		apierrors.Conflict(c, err.Error())

	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTenantNameRequired),
		errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, policy.ErrTenantRequired),
		errors.Is(err, policy.ErrInvalidRole):
		apierrors.BadRequest(c, err.Error())

	default:
		logger.FromGin(c, log).Error("Request failed", zap.Error(err))
		apierrors.InternalError(c, "")
	}
}

// respondBindError reports a request body that failed to bind. Validation
// failures list the offending fields with the rule each one broke.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	apierrors.BadRequestWithDetails(c, "Invalid request body", details)
}
