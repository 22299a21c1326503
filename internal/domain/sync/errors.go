package sync

import "errors"

var (
	// Gateway errors
	ErrUnknownPlatform   = errors.New("sync: unknown platform")
	ErrUnknownStore      = errors.New("sync: unknown store")
	ErrMissingSignature  = errors.New("sync: missing webhook signature")
	ErrInvalidSignature  = errors.New("sync: invalid webhook signature")
	ErrMissingExternalID = errors.New("sync: payload missing external identifier")
	ErrPayloadUnreadable = errors.New("sync: webhook payload unreadable")

	// Integration errors
	ErrIntegrationNotFound    = errors.New("sync: integration not found")
	ErrIntegrationInactive    = errors.New("sync: integration is not active")
	ErrIntegrationDisabled    = errors.New("sync: integration disabled after repeated failures")
	ErrInvalidTenantID        = errors.New("sync: invalid tenant ID")
	ErrInvalidStoreIdentifier = errors.New("sync: invalid store identifier")

	// Configuration errors
	ErrConfigurationNotFound = errors.New("sync: sync configuration not found")
	ErrInvalidDirection      = errors.New("sync: invalid sync direction")
	ErrInvalidFrequency      = errors.New("sync: invalid sync frequency")
	ErrInvalidConflictPolicy = errors.New("sync: invalid conflict resolution policy")
	ErrModuleDisabled        = errors.New("sync: module disabled in sync configuration")

	// Queue errors
	ErrQueueItemNotFound = errors.New("sync: queue item not found")
	ErrQueueItemTerminal = errors.New("sync: queue item is in a terminal state")
	ErrInvalidSyncType   = errors.New("sync: invalid sync type")

	// Link errors
	ErrLinkNotFound        = errors.New("sync: product store link not found")
	ErrLinkNotInConflict   = errors.New("sync: link has no staged remote change")
	ErrLinkMissingSnapshot = errors.New("sync: link has no remote snapshot")

	// Connector errors
	ErrConnectorNotRegistered = errors.New("sync: no connector registered for platform")
	ErrConnectorRequestFailed = errors.New("sync: connector request failed")
	ErrConnectorUnavailable   = errors.New("sync: platform temporarily unavailable")
	ErrConnectorRateLimited   = errors.New("sync: platform rate limited")
	ErrConnectorAuthFailed    = errors.New("sync: platform authentication failed")
)

// IsTransient reports whether a connector error should be retried through the
// queue rather than failing terminally.
func IsTransient(err error) bool {
	return errors.Is(err, ErrConnectorUnavailable) ||
		errors.Is(err, ErrConnectorRateLimited) ||
		errors.Is(err, ErrConnectorRequestFailed)
}
