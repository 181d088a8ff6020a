package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/yukikurage/taskz/internal/constants"
	"github.com/yukikurage/taskz/internal/dto"
	apierrors "github.com/yukikurage/taskz/internal/errors"
	"github.com/yukikurage/taskz/internal/middleware"
	"github.com/yukikurage/taskz/internal/services"
	"go.uber.org/zap"
)

// LoginObserver records login outcomes.
type LoginObserver interface {
	ObserveLogin(outcome string)
}

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	observer    LoginObserver
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. observer may be nil.
func NewAuthHandler(authService *services.AuthService, observer LoginObserver, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		observer:    observer,
		logger:      logger,
	}
}

// Login exchanges form-encoded credentials for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `form:"username" binding:"required"`
		Password string `form:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		apierrors.BadRequest(c, "username and password are required")
		return
	}

	_, token, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.observe("failure")
		respondError(c, h.logger, err)
		return
	}

	h.observe("success")
	c.JSON(http.StatusOK, dto.TokenDTO{
		AccessToken: token.Value,
		TokenType:   constants.TokenType,
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func (h *AuthHandler) observe(outcome string) {
	if h.observer != nil {
		h.observer.ObserveLogin(outcome)
	}
}
