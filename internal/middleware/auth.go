package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskz/internal/auth"
	"github.com/yukikurage/taskz/internal/constants"
	apierrors "github.com/yukikurage/taskz/internal/errors"
	"github.com/yukikurage/taskz/internal/logger"
	"github.com/yukikurage/taskz/internal/models"
	"go.uber.org/zap"
)

// RequireAuth resolves the bearer token to a principal on every request.
// A missing or invalid token is a 401; a valid token whose user was deleted
// is a 404.
func RequireAuth(resolver *auth.Resolver, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			apierrors.Unauthorized(c, "Not authenticated")
			return
		}

		user, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			reqLog := logger.FromGin(c, log)
			switch {
			case errors.Is(err, auth.ErrUnauthenticated):
				reqLog.Warn("Rejected bearer token", zap.String("path", c.FullPath()))
				apierrors.Unauthorized(c, "Invalid or expired token")
			case errors.Is(err, auth.ErrPrincipalNotFound):
				reqLog.Warn("Token subject no longer exists", zap.String("path", c.FullPath()))
				apierrors.NotFound(c, "User not found")
			default:
				reqLog.Error("Failed to resolve principal", zap.Error(err))
				apierrors.InternalError(c, "")
			}
			return
		}

		c.Set(constants.ContextKeyPrincipal, user)
		c.Next()
	}
}

// GetPrincipal retrieves the authenticated user from context
func GetPrincipal(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
