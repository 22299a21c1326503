package handler

import (
	"github.com/gin-gonic/gin"

	appfeedrule "github.com/channelsync/backend/internal/application/feedrule"
	"github.com/channelsync/backend/internal/domain/feedrule"
	"github.com/channelsync/backend/internal/interfaces/http/middleware"
	"github.com/channelsync/backend/internal/interfaces/http/router"
)

// FeedRuleHandler handles feed rule endpoints
type FeedRuleHandler struct {
	BaseHandler
	service *appfeedrule.Service
}

// NewFeedRuleHandler creates a new FeedRuleHandler
func NewFeedRuleHandler(service *appfeedrule.Service) *FeedRuleHandler {
	return &FeedRuleHandler{service: service}
}

// RegisterRoutes registers feed rule routes
func (h *FeedRuleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rules := rg.Group("/feed-rules", middleware.Tenant())
	{
		rules.POST("", h.Create)
		rules.GET("", h.List)
		rules.GET("/:id", h.Get)
		rules.PUT("/:id", h.Update)
		rules.DELETE("/:id", h.Delete)
		rules.POST("/:id/execute", h.Execute)
		rules.GET("/:id/history", h.History)
	}
}

// RuleRequest is the request body for creating or updating a feed rule
type RuleRequest struct {
	Name       string               `json:"name" binding:"required"`
	MatchType  string               `json:"match_type" binding:"required,oneof=all any"`
	Conditions []feedrule.Condition `json:"conditions"`
	Actions    []feedrule.Action    `json:"actions"`
	IsActive   *bool                `json:"is_active"`
}

// Create creates a feed rule
func (h *FeedRuleHandler) Create(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}

	var req RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rule, err := h.service.Create(c.Request.Context(), tenantID, appfeedrule.CreateRuleInput{
		Name:       req.Name,
		MatchType:  req.MatchType,
		Conditions: req.Conditions,
		Actions:    req.Actions,
		IsActive:   req.IsActive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, rule)
}

// List returns all feed rules for the tenant
func (h *FeedRuleHandler) List(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}

	rules, err := h.service.List(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rules)
}

// Get returns one feed rule
func (h *FeedRuleHandler) Get(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}
	ruleID, ok := uuidParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid rule ID")
		return
	}

	rule, err := h.service.Get(c.Request.Context(), tenantID, ruleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rule)
}

// Update updates a feed rule
func (h *FeedRuleHandler) Update(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}
	ruleID, ok := uuidParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid rule ID")
		return
	}

	var req RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rule, err := h.service.Update(c.Request.Context(), tenantID, ruleID, appfeedrule.CreateRuleInput{
		Name:       req.Name,
		MatchType:  req.MatchType,
		Conditions: req.Conditions,
		Actions:    req.Actions,
		IsActive:   req.IsActive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rule)
}

// Delete deletes a feed rule
func (h *FeedRuleHandler) Delete(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}
	ruleID, ok := uuidParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid rule ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), tenantID, ruleID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ExecuteRuleRequest is the request body for running a feed rule
type ExecuteRuleRequest struct {
	// PreviewOnly computes the report without writing any product
	PreviewOnly bool `json:"preview_only"`
	// Limit caps how many products the run covers
	Limit int `json:"limit" binding:"omitempty,min=1,max=500"`
}

// Execute runs a feed rule. With preview_only no product is written; the
// report shows what would change.
func (h *FeedRuleHandler) Execute(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}
	ruleID, ok := uuidParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid rule ID")
		return
	}

	var req ExecuteRuleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}
	// ?preview=true still works for quick manual checks
	if !req.PreviewOnly {
		req.PreviewOnly = boolQuery(c, "preview", false)
	}

	report, err := h.service.Execute(c.Request.Context(), tenantID, ruleID, appfeedrule.ExecuteInput{
		Preview: req.PreviewOnly,
		Limit:   req.Limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// History returns recent execution logs for a rule
func (h *FeedRuleHandler) History(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "tenant not resolved")
		return
	}
	ruleID, ok := uuidParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid rule ID")
		return
	}

	logs, err := h.service.History(c.Request.Context(), tenantID, ruleID, intQuery(c, "limit", 0))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, logs)
}

// Ensure FeedRuleHandler implements RouteRegistrar
var _ router.RouteRegistrar = (*FeedRuleHandler)(nil)
