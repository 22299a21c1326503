package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// SyncConfiguration Entity
// ---------------------------------------------------------------------------

// SyncDirection controls which way entity changes flow for an integration
type SyncDirection string

const (
	// SyncDirectionImport pulls remote changes into the canonical store only
	SyncDirectionImport SyncDirection = "IMPORT"
	// SyncDirectionExport pushes canonical changes to the platform only
	SyncDirectionExport SyncDirection = "EXPORT"
	// SyncDirectionBidirectional syncs both ways
	SyncDirectionBidirectional SyncDirection = "BIDIRECTIONAL"
)

// IsValid returns true if the direction is valid
func (d SyncDirection) IsValid() bool {
	switch d {
	case SyncDirectionImport, SyncDirectionExport, SyncDirectionBidirectional:
		return true
	default:
		return false
	}
}

// AllowsImport reports whether inbound changes are applied
func (d SyncDirection) AllowsImport() bool {
	return d == SyncDirectionImport || d == SyncDirectionBidirectional
}

// AllowsExport reports whether outbound changes are pushed
func (d SyncDirection) AllowsExport() bool {
	return d == SyncDirectionExport || d == SyncDirectionBidirectional
}

// SyncFrequency controls how often scheduled syncs run for an integration
type SyncFrequency string

const (
	SyncFrequencyRealtime SyncFrequency = "REALTIME"
	SyncFrequency15Min    SyncFrequency = "EVERY_15M"
	SyncFrequencyHourly   SyncFrequency = "HOURLY"
	SyncFrequency6Hours   SyncFrequency = "EVERY_6H"
	SyncFrequencyDaily    SyncFrequency = "DAILY"
)

// IsValid returns true if the frequency is valid
func (f SyncFrequency) IsValid() bool {
	switch f {
	case SyncFrequencyRealtime, SyncFrequency15Min, SyncFrequencyHourly,
		SyncFrequency6Hours, SyncFrequencyDaily:
		return true
	default:
		return false
	}
}

// Interval returns the scheduling interval for interval-tier frequencies.
// Realtime returns zero; realtime integrations are driven by webhooks.
func (f SyncFrequency) Interval() time.Duration {
	switch f {
	case SyncFrequency15Min:
		return 15 * time.Minute
	case SyncFrequencyHourly:
		return time.Hour
	case SyncFrequency6Hours:
		return 6 * time.Hour
	case SyncFrequencyDaily:
		return 24 * time.Hour
	default:
		return 0
	}
}

// ConflictPolicy decides how staged remote changes are resolved against
// canonical data
type ConflictPolicy string

const (
	// ConflictPolicyLocalPriority discards the remote snapshot
	ConflictPolicyLocalPriority ConflictPolicy = "LOCAL_PRIORITY"
	// ConflictPolicyRemotePriority applies the remote snapshot to canonical
	// fields
	ConflictPolicyRemotePriority ConflictPolicy = "REMOTE_PRIORITY"
	// ConflictPolicyNewestWins compares the remote event time against the
	// canonical record's last write time
	ConflictPolicyNewestWins ConflictPolicy = "NEWEST_WINS"
)

// IsValid returns true if the policy is valid
func (p ConflictPolicy) IsValid() bool {
	switch p {
	case ConflictPolicyLocalPriority, ConflictPolicyRemotePriority, ConflictPolicyNewestWins:
		return true
	default:
		return false
	}
}

// ModuleToggles holds the per-module enable flags of a sync configuration
type ModuleToggles struct {
	Products  bool `json:"products"`
	Prices    bool `json:"prices"`
	Stock     bool `json:"stock"`
	Orders    bool `json:"orders"`
	Customers bool `json:"customers"`
	Tracking  bool `json:"tracking"`
	Reviews   bool `json:"reviews"`
}

// Enabled reports whether the given sync type is toggled on
func (t ModuleToggles) Enabled(syncType SyncType) bool {
	switch syncType {
	case SyncTypeProducts:
		return t.Products
	case SyncTypePrices:
		return t.Prices
	case SyncTypeStock:
		return t.Stock
	case SyncTypeOrders:
		return t.Orders
	case SyncTypeCustomers:
		return t.Customers
	case SyncTypeTracking:
		return t.Tracking
	case SyncTypeReviews:
		return t.Reviews
	default:
		return false
	}
}

// SyncConfiguration holds the per-integration sync settings.
// One per (tenant, integration); mutated by the user through the settings
// surface and by the orchestrator (LastFullSyncAt).
type SyncConfiguration struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	IntegrationID  uuid.UUID
	Modules        ModuleToggles
	Direction      SyncDirection
	Frequency      SyncFrequency
	ConflictPolicy ConflictPolicy
	IsActive       bool
	LastFullSyncAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewSyncConfiguration creates a configuration with conservative defaults:
// import-only, hourly, local data wins conflicts, product/stock/order modules
// enabled.
func NewSyncConfiguration(tenantID, integrationID uuid.UUID) (*SyncConfiguration, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if integrationID == uuid.Nil {
		return nil, ErrIntegrationNotFound
	}

	now := time.Now()
	return &SyncConfiguration{
		ID:            uuid.New(),
		TenantID:      tenantID,
		IntegrationID: integrationID,
		Modules: ModuleToggles{
			Products: true,
			Stock:    true,
			Orders:   true,
		},
		Direction:      SyncDirectionImport,
		Frequency:      SyncFrequencyHourly,
		ConflictPolicy: ConflictPolicyLocalPriority,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Validate validates the configuration
func (c *SyncConfiguration) Validate() error {
	if !c.Direction.IsValid() {
		return ErrInvalidDirection
	}
	if !c.Frequency.IsValid() {
		return ErrInvalidFrequency
	}
	if !c.ConflictPolicy.IsValid() {
		return ErrInvalidConflictPolicy
	}
	return nil
}

// RecordFullSync stamps the completion of a full sync run
func (c *SyncConfiguration) RecordFullSync() {
	now := time.Now()
	c.LastFullSyncAt = &now
	c.UpdatedAt = now
}

// DueForFullSync reports whether an interval-tier configuration is due for a
// scheduled full sync. Realtime configurations are never due; they are driven
// by webhooks.
func (c *SyncConfiguration) DueForFullSync(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	interval := c.Frequency.Interval()
	if interval == 0 {
		return false
	}
	if c.LastFullSyncAt == nil {
		return true
	}
	return now.Sub(*c.LastFullSyncAt) >= interval
}

// ---------------------------------------------------------------------------
// SyncConfigurationRepository Interface
// ---------------------------------------------------------------------------

// SyncConfigurationRepository defines persistence for sync configurations
type SyncConfigurationRepository interface {
	// FindByIntegration finds the configuration for an integration
	FindByIntegration(ctx context.Context, integrationID uuid.UUID) (*SyncConfiguration, error)

	// FindByTenant finds all configurations for a tenant
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]SyncConfiguration, error)

	// FindActive finds all active configurations across tenants. Used by the
	// full-sync scheduler.
	FindActive(ctx context.Context) ([]SyncConfiguration, error)

	// Save creates or updates a configuration
	Save(ctx context.Context, cfg *SyncConfiguration) error

	// Delete deletes a configuration
	Delete(ctx context.Context, id uuid.UUID) error
}
