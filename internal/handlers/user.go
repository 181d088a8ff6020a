package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskz/internal/auth"
	"github.com/yukikurage/taskz/internal/dto"
	apierrors "github.com/yukikurage/taskz/internal/errors"
	"github.com/yukikurage/taskz/internal/middleware"
	"github.com/yukikurage/taskz/internal/models"
	"github.com/yukikurage/taskz/internal/services"
	"github.com/yukikurage/taskz/internal/utils"
	"go.uber.org/zap"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
	resolver    *auth.Resolver
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService, resolver *auth.Resolver, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		resolver:    resolver,
		logger:      logger,
	}
}

// CreateUser handles POST /users/. It works with or without a bearer token;
// the token only matters when the email is already registered.
func (h *UserHandler) CreateUser(c *gin.Context) {
	type CreateUserRequest struct {
		Email    string      `json:"email" binding:"required,email"`
		Name     string      `json:"name"`
		Password string      `json:"password" binding:"required"`
		TenantID *string     `json:"tenant_id"`
		Role     models.Role `json:"role"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	identity, err := h.resolver.ResolveOptional(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), identity, services.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		TenantID: req.TenantID,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// ListUsers handles GET /users/
func (h *UserHandler) ListUsers(c *gin.Context) {
	user, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	users, err := h.userService.ListUsers(c.Request.Context(), user, utils.ListPage(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	target, err := h.userService.GetUser(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*target))
}

// UpdateUser handles PUT /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	type UpdateUserRequest struct {
		Email    *string `json:"email" binding:"omitempty,email"`
		Name     *string `json:"name"`
		Password *string `json:"password"`
	}

	user, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.userService.UpdateUser(c.Request.Context(), user, c.Param("id"), services.UpdateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*updated))
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	user, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), user, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
