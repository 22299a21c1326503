package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
)

// Webhook error codes
const (
	// ErrCodeMissingSignature is used when a webhook carries no signature
	ErrCodeMissingSignature = "ERR_WEBHOOK_MISSING_SIGNATURE"
	// ErrCodeInvalidSignature is used when signature verification fails
	ErrCodeInvalidSignature = "ERR_WEBHOOK_INVALID_SIGNATURE"
	// ErrCodeUnknownStore is used when no integration matches the store
	ErrCodeUnknownStore = "ERR_WEBHOOK_UNKNOWN_STORE"
	// ErrCodeUnknownPlatform is used when the platform cannot be determined
	ErrCodeUnknownPlatform = "ERR_WEBHOOK_UNKNOWN_PLATFORM"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeModuleDisabled is used when a sync module is disabled in configuration
	ErrCodeModuleDisabled = "ERR_MODULE_DISABLED"
	// ErrCodeIntegrationInactive is used when an integration cannot run syncs
	ErrCodeIntegrationInactive = "ERR_INTEGRATION_INACTIVE"
)

// Upstream error codes
const (
	// ErrCodePlatformUnavailable is used when the storefront platform is down
	ErrCodePlatformUnavailable = "ERR_PLATFORM_UNAVAILABLE"
	// ErrCodeRateLimited is used when the storefront platform rate limits us
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Signature failures are authentication failures: fail closed with 401
	ErrCodeMissingSignature: http.StatusUnauthorized,
	ErrCodeInvalidSignature: http.StatusUnauthorized,
	ErrCodeUnknownStore:     http.StatusNotFound,
	ErrCodeUnknownPlatform:  http.StatusNotFound,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeModuleDisabled:      http.StatusUnprocessableEntity,
	ErrCodeIntegrationInactive: http.StatusUnprocessableEntity,

	ErrCodePlatformUnavailable: http.StatusBadGateway,
	ErrCodeRateLimited:         http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
