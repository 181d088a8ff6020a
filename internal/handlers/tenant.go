package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskz/internal/dto"
	apierrors "github.com/yukikurage/taskz/internal/errors"
	"github.com/yukikurage/taskz/internal/middleware"
	"github.com/yukikurage/taskz/internal/services"
	"github.com/yukikurage/taskz/internal/utils"
	"go.uber.org/zap"
)

// TenantHandler handles tenant-related HTTP requests
type TenantHandler struct {
	tenantService *services.TenantService
	logger        *zap.Logger
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService *services.TenantService, logger *zap.Logger) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
		logger:        logger,
	}
}

// ListTenants handles GET /tenants/
func (h *TenantHandler) ListTenants(c *gin.Context) {
	tenants, err := h.tenantService.ListTenants(c.Request.Context(), utils.ListPage(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTenantDTOs(tenants))
}

// CreateTenant handles POST /tenants/
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	type CreateTenantRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tenant, err := h.tenantService.CreateTenant(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTenantDTO(*tenant))
}

// GetTenant handles GET /tenants/:id
func (h *TenantHandler) GetTenant(c *gin.Context) {
	user, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	tenant, err := h.tenantService.GetTenant(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTenantDTO(*tenant))
}

// UpdateTenant handles PUT /tenants/:id
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	type UpdateTenantRequest struct {
		Name *string `json:"name"`
	}

	user, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tenant, err := h.tenantService.UpdateTenant(c.Request.Context(), user, c.Param("id"), req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTenantDTO(*tenant))
}

// DeleteTenant handles DELETE /tenants/:id
func (h *TenantHandler) DeleteTenant(c *gin.Context) {
	user, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.tenantService.DeleteTenant(c.Request.Context(), user, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
