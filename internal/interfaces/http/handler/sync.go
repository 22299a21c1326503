package handler

import (
	"github.com/gin-gonic/gin"

	appsync "github.com/channelsync/backend/internal/application/sync"
	"github.com/channelsync/backend/internal/interfaces/http/middleware"
	"github.com/channelsync/backend/internal/interfaces/http/router"
)

// SyncHandler handles sync trigger, queue, and conflict resolution endpoints
type SyncHandler struct {
	BaseHandler
	service      *appsync.Service
	resolution   *appsync.ResolutionService
	orchestrator *appsync.Orchestrator
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(service *appsync.Service, resolution *appsync.ResolutionService, orchestrator *appsync.Orchestrator) *SyncHandler {
	return &SyncHandler{service: service, resolution: resolution, orchestrator: orchestrator}
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	syncGroup := rg.Group("/sync", middleware.Tenant())
	{
		syncGroup.POST("/full", h.TriggerFullSync)
		syncGroup.POST("/integrations/:id/modules/:type", h.TriggerModule)
		syncGroup.POST("/queue/process", h.ProcessQueue)
		syncGroup.DELETE("/queue/:id", h.CancelQueueItem)
		syncGroup.GET("/stats", h.Stats)
		syncGroup.GET("/logs", h.Logs)
	}

	rg.GET("/integrations/:id/staged-links", middleware.Tenant(), h.ListStaged)
	links := rg.Group("/links", middleware.Tenant())
	{
		links.POST("/:id/resolve", h.ResolveLink)
		links.POST("/:id/flag", h.FlagLink)
	}
}

// TriggerFullSyncRequest is the request body for a full sync run
type TriggerFullSyncRequest struct {
	Platforms []string `json:"platforms"`
}

// TriggerFullSync runs a full sync across the tenant's eligible integrations
func (h *SyncHandler) TriggerFullSync(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}

	var req TriggerFullSyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	report, err := h.service.TriggerFullSync(c.Request.Context(), tenantID, req.Platforms)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// TriggerModule enqueues one sync module run for an integration
func (h *SyncHandler) TriggerModule(c *gin.Context) {
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

	item, err := h.service.TriggerModule(c.Request.Context(), tenantID, integrationID, c.Param("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, item)
}

// CancelQueueItem cancels a pending queue item
func (h *SyncHandler) CancelQueueItem(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}
	itemID, ok := uuidParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid queue item ID")
		return
	}

	item, err := h.service.CancelQueueItem(c.Request.Context(), tenantID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// ProcessQueue drains one batch of due queue items immediately instead of
// waiting for the next poll tick
func (h *SyncHandler) ProcessQueue(c *gin.Context) {
	report, err := h.orchestrator.ProcessBatch(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// Stats returns sync statistics and queue counts for the tenant
func (h *SyncHandler) Stats(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}

	overview, err := h.service.Stats(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, overview)
}

// Logs returns recent sync logs for the tenant
func (h *SyncHandler) Logs(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}

	logs, err := h.service.Logs(c.Request.Context(), tenantID, intQuery(c, "limit", 0))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, logs)
}

// ListStaged returns links with staged remote changes for an integration
func (h *SyncHandler) ListStaged(c *gin.Context) {
	integrationID, ok := uuidParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid integration ID")
		return
	}

	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}

	links, err := h.resolution.ListStaged(c.Request.Context(), tenantID, integrationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, links)
}

// ResolveLinkRequest is the request body for resolving a staged change
type ResolveLinkRequest struct {
	// Policy optionally overrides the configured conflict policy for this
	// resolution only
	Policy string `json:"policy"`
}

// ResolveLink resolves a staged remote change on a product store link
func (h *SyncHandler) ResolveLink(c *gin.Context) {
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

	var req ResolveLinkRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	resolution, err := h.resolution.Resolve(c.Request.Context(), tenantID, linkID, req.Policy)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resolution)
}

// FlagLink marks a staged link as requiring manual attention
func (h *SyncHandler) FlagLink(c *gin.Context) {
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

	link, err := h.resolution.Flag(c.Request.Context(), tenantID, linkID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, link)
}

// Ensure SyncHandler implements RouteRegistrar
var _ router.RouteRegistrar = (*SyncHandler)(nil)
