package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/channelsync/backend/internal/application/integration"
	"github.com/channelsync/backend/internal/domain/sync"
	"github.com/channelsync/backend/internal/interfaces/http/middleware"
	"github.com/channelsync/backend/internal/interfaces/http/router"
)

// IntegrationHandler handles store integration endpoints
type IntegrationHandler struct {
	BaseHandler
	service *integration.Service
}

// NewIntegrationHandler creates a new IntegrationHandler
func NewIntegrationHandler(service *integration.Service) *IntegrationHandler {
	return &IntegrationHandler{service: service}
}

// RegisterRoutes registers integration routes
func (h *IntegrationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	integrations := rg.Group("/integrations", middleware.Tenant())
	{
		integrations.POST("", h.Connect)
		integrations.GET("", h.List)
		integrations.GET("/:id", h.Get)
		integrations.DELETE("/:id", h.Disconnect)
		integrations.POST("/:id/test", h.TestConnection)
		integrations.PUT("/:id/enabled", h.SetEnabled)
		integrations.GET("/:id/configuration", h.GetConfiguration)
		integrations.PUT("/:id/configuration", h.UpdateConfiguration)
		integrations.POST("/:id/links", h.LinkProduct)
	}
	rg.DELETE("/links/:id", middleware.Tenant(), h.UnlinkProduct)
}

// ConnectRequest is the request body for connecting a store
type ConnectRequest struct {
	Platform        string `json:"platform" binding:"required"`
	StoreIdentifier string `json:"store_identifier" binding:"required"`
	CredentialsRef  string `json:"credentials_ref"`
	WebhookSecret   string `json:"webhook_secret"`
}

// Connect registers a new store integration
func (h *IntegrationHandler) Connect(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}

	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Connect(c.Request.Context(), tenantID, integration.ConnectInput{
		Platform:        req.Platform,
		StoreIdentifier: req.StoreIdentifier,
		CredentialsRef:  req.CredentialsRef,
		WebhookSecret:   req.WebhookSecret,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// List returns all integrations for the tenant
func (h *IntegrationHandler) List(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}

	integrations, err := h.service.List(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, integrations)
}

// Get returns one integration
func (h *IntegrationHandler) Get(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}
	integrationID, ok := uuidParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid integration ID")
		return
	}

	result, err := h.service.Get(c.Request.Context(), tenantID, integrationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Disconnect removes an integration and its configuration
func (h *IntegrationHandler) Disconnect(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}
	integrationID, ok := uuidParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid integration ID")
		return
	}

	if err := h.service.Disconnect(c.Request.Context(), tenantID, integrationID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// TestConnection verifies the integration's platform credentials
func (h *IntegrationHandler) TestConnection(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}
	integrationID, ok := uuidParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid integration ID")
		return
	}

	result, err := h.service.TestConnection(c.Request.Context(), tenantID, integrationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// SetEnabledRequest is the request body for enabling or disabling an integration
type SetEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SetEnabled enables or disables an integration
func (h *IntegrationHandler) SetEnabled(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}
	integrationID, ok := uuidParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid integration ID")
		return
	}

	var req SetEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SetEnabled(c.Request.Context(), tenantID, integrationID, *req.Enabled)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetConfiguration returns the integration's sync configuration
func (h *IntegrationHandler) GetConfiguration(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}
	integrationID, ok := uuidParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid integration ID")
		return
	}

	config, err := h.service.GetConfiguration(c.Request.Context(), tenantID, integrationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, config)
}

// UpdateConfigurationRequest is the request body for configuration updates
type UpdateConfigurationRequest struct {
	Modules        sync.ModuleToggles `json:"modules"`
	Direction      string             `json:"direction" binding:"required"`
	Frequency      string             `json:"frequency" binding:"required"`
	ConflictPolicy string             `json:"conflict_policy" binding:"required"`
	IsActive       *bool              `json:"is_active"`
}

// UpdateConfiguration replaces the integration's sync configuration
func (h *IntegrationHandler) UpdateConfiguration(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}
	integrationID, ok := uuidParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid integration ID")
		return
	}

	var req UpdateConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	config, err := h.service.UpdateConfiguration(c.Request.Context(), tenantID, integrationID, integration.ConfigurationInput{
		Modules:        req.Modules,
		Direction:      req.Direction,
		Frequency:      req.Frequency,
		ConflictPolicy: req.ConflictPolicy,
		IsActive:       req.IsActive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, config)
}

// LinkProductRequest is the request body for linking a product to a store
type LinkProductRequest struct {
	ProductID         string `json:"product_id" binding:"required,uuid"`
	ExternalProductID string `json:"external_product_id" binding:"required"`
}

// LinkProduct links a canonical product to an external store product
func (h *IntegrationHandler) LinkProduct(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}
	integrationID, ok := uuidParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid integration ID")
		return
	}

	var req LinkProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "invalid product ID")
		return
	}

	link, err := h.service.LinkProduct(c.Request.Context(), tenantID, integrationID, productID, req.ExternalProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, link)
}

// UnlinkProduct removes a product store link
func (h *IntegrationHandler) UnlinkProduct(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}
	linkID, ok := uuidParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid link ID")
		return
	}

	if err := h.service.UnlinkProduct(c.Request.Context(), tenantID, linkID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Ensure IntegrationHandler implements RouteRegistrar
var _ router.RouteRegistrar = (*IntegrationHandler)(nil)
