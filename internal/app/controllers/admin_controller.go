package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/coursebooking/internal/app/models/dto"
	"github.com/yigit/coursebooking/internal/app/services"
	"github.com/yigit/coursebooking/internal/middleware"
)

// AdminController exposes the operator API
type AdminController struct {
	adminService services.AdminService
	logger       zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService services.AdminService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

// Login issues an operator access token
// @Summary Operator login
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Operator credentials"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /admin/login [post]
func (c *AdminController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	token, err := c.adminService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, token)
}

// ListOutbox lists undelivered messages
// @Summary List outbox artifacts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ArtifactResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /admin/outbox [get]
func (c *AdminController) ListOutbox(ctx *gin.Context) {
	artifacts, err := c.adminService.ListOutbox(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, artifacts)
}

// RedeliverOutbox retries every stored message once
// @Summary Redeliver outbox artifacts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.RedeliveryResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 503 {object} dto.ErrorResponse "Mail transport not configured"
// @Router /admin/outbox/redeliver [post]
func (c *AdminController) RedeliverOutbox(ctx *gin.Context) {
	result, err := c.adminService.RedeliverOutbox(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Str("operator", ctx.GetString(middleware.ContextUsername)).
		Int("attempted", result.Attempted).
		Int("delivered", result.Delivered).
		Msg("Operator triggered outbox redelivery")

	ctx.JSON(http.StatusOK, result)
}
