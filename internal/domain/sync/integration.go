package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Integration Entity
// ---------------------------------------------------------------------------

// ConnectionStatus represents the health of an integration's connection
type ConnectionStatus string

const (
	// ConnectionStatusConnected indicates the last connection test succeeded
	ConnectionStatusConnected ConnectionStatus = "CONNECTED"
	// ConnectionStatusError indicates the last sync or test failed
	ConnectionStatusError ConnectionStatus = "ERROR"
	// ConnectionStatusDisabled indicates the integration was soft-disabled
	// after repeated failures
	ConnectionStatusDisabled ConnectionStatus = "DISABLED"
)

// disableFailureThreshold is the number of consecutive failures after which an
// integration is soft-disabled.
const disableFailureThreshold = 5

// Integration represents a connection to one store on one platform.
// Owned by a tenant; created on connect, updated on each sync or connection
// test, soft-disabled after repeated failures.
type Integration struct {
	// ID is the unique identifier of this integration
	ID uuid.UUID
	// TenantID is the tenant this integration belongs to
	TenantID uuid.UUID
	// Platform identifies the storefront platform
	Platform Platform
	// StoreIdentifier is the platform-side store identifier (shop domain or
	// store URL). Unique per (tenant, platform).
	StoreIdentifier string
	// CredentialsRef references the stored credentials for this store
	// (API key/token reference, never the secret itself)
	CredentialsRef string
	// WebhookSecret is the shared secret used to verify webhook signatures
	WebhookSecret string
	// ConnectionStatus is the current connection health
	ConnectionStatus ConnectionStatus
	// ConsecutiveFailures counts sync failures since the last success
	ConsecutiveFailures int
	// LastError is the error from the last failed sync, if any
	LastError string
	// LastSyncAt is when this integration was last synced
	LastSyncAt *time.Time
	// IsActive indicates whether this integration participates in syncs
	IsActive bool
	// CreatedAt is when this integration was created
	CreatedAt time.Time
	// UpdatedAt is when this integration was last updated
	UpdatedAt time.Time
}

// NewIntegration creates a new integration for a tenant
func NewIntegration(tenantID uuid.UUID, platform Platform, storeIdentifier, webhookSecret string) (*Integration, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if !platform.IsValid() {
		return nil, ErrUnknownPlatform
	}
	if storeIdentifier == "" {
		return nil, ErrInvalidStoreIdentifier
	}

	now := time.Now()
	return &Integration{
		ID:               uuid.New(),
		TenantID:         tenantID,
		Platform:         platform,
		StoreIdentifier:  storeIdentifier,
		WebhookSecret:    webhookSecret,
		ConnectionStatus: ConnectionStatusConnected,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Eligible reports whether the integration may participate in sync runs
func (i *Integration) Eligible() bool {
	return i.IsActive && i.ConnectionStatus != ConnectionStatusDisabled
}

// RecordSyncSuccess records a successful sync run and resets failure tracking
func (i *Integration) RecordSyncSuccess() {
	now := time.Now()
	i.LastSyncAt = &now
	i.ConnectionStatus = ConnectionStatusConnected
	i.ConsecutiveFailures = 0
	i.LastError = ""
	i.UpdatedAt = now
}

// RecordSyncFailure records a failed sync run. After the failure threshold is
// reached the integration is soft-disabled; it stays queryable but is skipped
// by full-sync fan-out until re-enabled.
func (i *Integration) RecordSyncFailure(errMsg string) {
	now := time.Now()
	i.ConsecutiveFailures++
	i.LastError = errMsg
	if i.ConsecutiveFailures >= disableFailureThreshold {
		i.ConnectionStatus = ConnectionStatusDisabled
	} else {
		i.ConnectionStatus = ConnectionStatusError
	}
	i.UpdatedAt = now
}

// Enable re-enables a disabled integration and clears failure tracking
func (i *Integration) Enable() {
	i.IsActive = true
	i.ConnectionStatus = ConnectionStatusConnected
	i.ConsecutiveFailures = 0
	i.LastError = ""
	i.UpdatedAt = time.Now()
}

// Disable deactivates the integration
func (i *Integration) Disable() {
	i.IsActive = false
	i.UpdatedAt = time.Now()
}

// ---------------------------------------------------------------------------
// IntegrationRepository Interface
// ---------------------------------------------------------------------------

// IntegrationRepository defines persistence for integrations
type IntegrationRepository interface {
	// FindByID finds an integration by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Integration, error)

	// FindByStore finds the integration for a platform store identifier.
	// Used by the webhook gateway; store identifiers are unique per platform.
	FindByStore(ctx context.Context, platform Platform, storeIdentifier string) (*Integration, error)

	// FindByTenant finds all integrations for a tenant
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]Integration, error)

	// FindEligible finds active, non-disabled integrations, optionally
	// filtered by platform. Used by full-sync fan-out.
	FindEligible(ctx context.Context, tenantID uuid.UUID, platforms []Platform) ([]Integration, error)

	// Save creates or updates an integration
	Save(ctx context.Context, integration *Integration) error

	// Delete deletes an integration
	Delete(ctx context.Context, id uuid.UUID) error
}
