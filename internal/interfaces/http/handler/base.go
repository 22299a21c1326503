package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/channelsync/backend/internal/domain/catalog"
	"github.com/channelsync/backend/internal/domain/feedrule"
	"github.com/channelsync/backend/internal/domain/sync"
	"github.com/channelsync/backend/internal/interfaces/http/dto"
	"github.com/channelsync/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getTenantID extracts the tenant ID resolved by the tenant middleware
func getTenantID(c *gin.Context) (uuid.UUID, bool) {
	return middleware.GetTenantID(c)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError maps domain errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	code := errorCode(err)
	h.Error(c, dto.GetHTTPStatus(code), code, err.Error())
}

// errorCode classifies a domain error into an API error code
func errorCode(err error) string {
	switch {
	case errors.Is(err, sync.ErrMissingSignature):
		return dto.ErrCodeMissingSignature
	case errors.Is(err, sync.ErrInvalidSignature):
		return dto.ErrCodeInvalidSignature
	case errors.Is(err, sync.ErrUnknownStore):
		return dto.ErrCodeUnknownStore
	case errors.Is(err, sync.ErrUnknownPlatform):
		return dto.ErrCodeUnknownPlatform

	case errors.Is(err, sync.ErrIntegrationNotFound),
		errors.Is(err, sync.ErrConfigurationNotFound),
		errors.Is(err, sync.ErrQueueItemNotFound),
		errors.Is(err, sync.ErrLinkNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrOrderNotFound),
		errors.Is(err, catalog.ErrCustomerNotFound),
		errors.Is(err, feedrule.ErrRuleNotFound):
		return dto.ErrCodeNotFound

	case errors.Is(err, sync.ErrModuleDisabled):
		return dto.ErrCodeModuleDisabled
	case errors.Is(err, sync.ErrIntegrationInactive),
		errors.Is(err, sync.ErrIntegrationDisabled):
		return dto.ErrCodeIntegrationInactive
	case errors.Is(err, sync.ErrQueueItemTerminal),
		errors.Is(err, sync.ErrLinkNotInConflict):
		return dto.ErrCodeInvalidState

	case errors.Is(err, sync.ErrConnectorUnavailable),
		errors.Is(err, sync.ErrConnectorRequestFailed):
		return dto.ErrCodePlatformUnavailable
	case errors.Is(err, sync.ErrConnectorRateLimited):
		return dto.ErrCodeRateLimited
	case errors.Is(err, sync.ErrConnectorAuthFailed):
		return dto.ErrCodeForbidden

	case errors.Is(err, sync.ErrInvalidStoreIdentifier),
		errors.Is(err, sync.ErrInvalidDirection),
		errors.Is(err, sync.ErrInvalidFrequency),
		errors.Is(err, sync.ErrInvalidConflictPolicy),
		errors.Is(err, sync.ErrInvalidSyncType),
		errors.Is(err, sync.ErrInvalidTenantID),
		errors.Is(err, sync.ErrPayloadUnreadable),
		errors.Is(err, sync.ErrMissingExternalID),
		errors.Is(err, feedrule.ErrRuleInvalidName),
		errors.Is(err, feedrule.ErrInvalidMatchType),
		errors.Is(err, feedrule.ErrInvalidActionType),
		errors.Is(err, feedrule.ErrActionMissingField),
		errors.Is(err, catalog.ErrProductInvalidTitle):
		return dto.ErrCodeValidation

	default:
		return dto.ErrCodeInternal
	}
}
