package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/channelsync/backend/internal/application/webhook"
	"github.com/channelsync/backend/internal/interfaces/http/middleware"
	"github.com/channelsync/backend/internal/interfaces/http/router"
)

// WebhookHandler exposes the inbound webhook gateway. The webhook route is
// unauthenticated beyond the HMAC signature and carries no tenant header;
// the gateway resolves the tenant from the store identifier.
type WebhookHandler struct {
	BaseHandler
	gateway *webhook.GatewayService
	maxBody int64
}

// NewWebhookHandler creates a new WebhookHandler. maxBody bounds the accepted
// payload size; zero or negative falls back to 1MB.
func NewWebhookHandler(gateway *webhook.GatewayService, maxBody int64) *WebhookHandler {
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &WebhookHandler{gateway: gateway, maxBody: maxBody}
}

// RegisterRoutes registers webhook routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/:platform", h.Receive)
	rg.GET("/integrations/:id/webhook-events", middleware.Tenant(), h.ListEvents)
}

// Receive accepts one platform webhook delivery
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody))
	if err != nil {
		h.BadRequest(c, "failed to read request body")
		return
	}

	receipt, err := h.gateway.HandleInbound(c.Request.Context(), &webhook.InboundWebhook{
		PlatformHint: c.Param("platform"),
		StoreID:      c.Query("store"),
		Header:       c.GetHeader,
		Body:         body,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, receipt)
}

// ListEvents returns recent webhook audit records for an integration
func (h *WebhookHandler) ListEvents(c *gin.Context) {
	integrationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid integration ID")
		return
	}

	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}

	limit := intQuery(c, "limit", 0)
	events, err := h.gateway.ListEvents(c.Request.Context(), tenantID, integrationID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, events)
}

// Ensure WebhookHandler implements RouteRegistrar
var _ router.RouteRegistrar = (*WebhookHandler)(nil)
