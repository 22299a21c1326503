package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/channelsync/backend/internal/domain/sync"
)

// ---------------------------------------------------------------------------
// Integration
// ---------------------------------------------------------------------------

// IntegrationModel is the persistence model for the Integration domain entity.
type IntegrationModel struct {
	ID                  uuid.UUID             `gorm:"type:uuid;primary_key"`
	TenantID            uuid.UUID             `gorm:"type:uuid;not null;index:idx_integrations_tenant"`
	Platform            sync.Platform         `gorm:"type:varchar(20);not null;uniqueIndex:idx_integrations_store,priority:1"`
	StoreIdentifier     string                `gorm:"type:varchar(255);not null;uniqueIndex:idx_integrations_store,priority:2"`
	CredentialsRef      string                `gorm:"type:varchar(255)"`
	WebhookSecret       string                `gorm:"type:varchar(255)"`
	ConnectionStatus    sync.ConnectionStatus `gorm:"type:varchar(20);not null;default:'CONNECTED'"`
	ConsecutiveFailures int                   `gorm:"not null;default:0"`
	LastError           string                `gorm:"type:text"`
	LastSyncAt          *time.Time            `gorm:"index"`
	IsActive            bool                  `gorm:"not null;default:true"`
	CreatedAt           time.Time             `gorm:"not null"`
	UpdatedAt           time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (IntegrationModel) TableName() string {
	return "integrations"
}

// ToDomain converts the persistence model to a domain Integration entity.
func (m *IntegrationModel) ToDomain() *sync.Integration {
	return &sync.Integration{
		ID:                  m.ID,
		TenantID:            m.TenantID,
		Platform:            m.Platform,
		StoreIdentifier:     m.StoreIdentifier,
		CredentialsRef:      m.CredentialsRef,
		WebhookSecret:       m.WebhookSecret,
		ConnectionStatus:    m.ConnectionStatus,
		ConsecutiveFailures: m.ConsecutiveFailures,
		LastError:           m.LastError,
		LastSyncAt:          m.LastSyncAt,
		IsActive:            m.IsActive,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Integration entity.
func (m *IntegrationModel) FromDomain(i *sync.Integration) {
	m.ID = i.ID
	m.TenantID = i.TenantID
	m.Platform = i.Platform
	m.StoreIdentifier = i.StoreIdentifier
	m.CredentialsRef = i.CredentialsRef
	m.WebhookSecret = i.WebhookSecret
	m.ConnectionStatus = i.ConnectionStatus
	m.ConsecutiveFailures = i.ConsecutiveFailures
	m.LastError = i.LastError
	m.LastSyncAt = i.LastSyncAt
	m.IsActive = i.IsActive
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// IntegrationModelFromDomain creates a new persistence model from a domain entity.
func IntegrationModelFromDomain(i *sync.Integration) *IntegrationModel {
	m := &IntegrationModel{}
	m.FromDomain(i)
	return m
}

// ---------------------------------------------------------------------------
// SyncConfiguration
// ---------------------------------------------------------------------------

// SyncConfigurationModel is the persistence model for SyncConfiguration.
// Module toggles are stored as JSONB so new modules never need a migration.
type SyncConfigurationModel struct {
	ID             uuid.UUID           `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID           `gorm:"type:uuid;not null;index:idx_sync_configs_tenant"`
	IntegrationID  uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_sync_configs_integration"`
	ModulesJSON    string              `gorm:"type:jsonb;column:modules"`
	Direction      sync.SyncDirection  `gorm:"type:varchar(20);not null;default:'IMPORT'"`
	Frequency      sync.SyncFrequency  `gorm:"type:varchar(20);not null;default:'HOURLY'"`
	ConflictPolicy sync.ConflictPolicy `gorm:"type:varchar(20);not null;default:'LOCAL_PRIORITY'"`
	IsActive       bool                `gorm:"not null;default:true"`
	LastFullSyncAt *time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SyncConfigurationModel) TableName() string {
	return "sync_configurations"
}

// ToDomain converts the persistence model to a domain SyncConfiguration.
func (m *SyncConfigurationModel) ToDomain() *sync.SyncConfiguration {
	cfg := &sync.SyncConfiguration{
		ID:             m.ID,
		TenantID:       m.TenantID,
		IntegrationID:  m.IntegrationID,
		Direction:      m.Direction,
		Frequency:      m.Frequency,
		ConflictPolicy: m.ConflictPolicy,
		IsActive:       m.IsActive,
		LastFullSyncAt: m.LastFullSyncAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.ModulesJSON != "" {
		var toggles sync.ModuleToggles
		if err := json.Unmarshal([]byte(m.ModulesJSON), &toggles); err == nil {
			cfg.Modules = toggles
		}
	}
	return cfg
}

// FromDomain populates the persistence model from a domain SyncConfiguration.
func (m *SyncConfigurationModel) FromDomain(c *sync.SyncConfiguration) {
	m.ID = c.ID
	m.TenantID = c.TenantID
	m.IntegrationID = c.IntegrationID
	m.Direction = c.Direction
	m.Frequency = c.Frequency
	m.ConflictPolicy = c.ConflictPolicy
	m.IsActive = c.IsActive
	m.LastFullSyncAt = c.LastFullSyncAt
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt

	if jsonBytes, err := json.Marshal(c.Modules); err == nil {
		m.ModulesJSON = string(jsonBytes)
	}
}

// SyncConfigurationModelFromDomain creates a new persistence model from a domain entity.
func SyncConfigurationModelFromDomain(c *sync.SyncConfiguration) *SyncConfigurationModel {
	m := &SyncConfigurationModel{}
	m.FromDomain(c)
	return m
}

// ---------------------------------------------------------------------------
// SyncQueueItem
// ---------------------------------------------------------------------------

// SyncQueueItemModel is the persistence model for SyncQueueItem.
type SyncQueueItemModel struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key"`
	TenantID      uuid.UUID        `gorm:"type:uuid;not null;index:idx_sync_queue_tenant"`
	IntegrationID uuid.UUID        `gorm:"type:uuid;not null;index:idx_sync_queue_integration"`
	SyncType      sync.SyncType    `gorm:"type:varchar(20);not null"`
	EntityType    string           `gorm:"type:varchar(50)"`
	EntityID      string           `gorm:"type:varchar(100)"`
	Action        string           `gorm:"type:varchar(20);not null"`
	Payload       string           `gorm:"type:text"`
	Status        sync.QueueStatus `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_sync_queue_claim,priority:1"`
	Priority      int              `gorm:"not null;default:5;index:idx_sync_queue_claim,priority:2"`
	RetryCount    int              `gorm:"not null;default:0"`
	MaxRetries    int              `gorm:"not null;default:3"`
	ErrorMessage  string           `gorm:"type:text"`
	ScheduledAt   time.Time        `gorm:"not null;index:idx_sync_queue_claim,priority:3"`
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SyncQueueItemModel) TableName() string {
	return "sync_queue"
}

// ToDomain converts the persistence model to a domain SyncQueueItem.
func (m *SyncQueueItemModel) ToDomain() *sync.SyncQueueItem {
	return &sync.SyncQueueItem{
		ID:            m.ID,
		TenantID:      m.TenantID,
		IntegrationID: m.IntegrationID,
		SyncType:      m.SyncType,
		EntityType:    m.EntityType,
		EntityID:      m.EntityID,
		Action:        m.Action,
		Payload:       m.Payload,
		Status:        m.Status,
		Priority:      m.Priority,
		RetryCount:    m.RetryCount,
		MaxRetries:    m.MaxRetries,
		ErrorMessage:  m.ErrorMessage,
		ScheduledAt:   m.ScheduledAt,
		StartedAt:     m.StartedAt,
		CompletedAt:   m.CompletedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain SyncQueueItem.
func (m *SyncQueueItemModel) FromDomain(q *sync.SyncQueueItem) {
	m.ID = q.ID
	m.TenantID = q.TenantID
	m.IntegrationID = q.IntegrationID
	m.SyncType = q.SyncType
	m.EntityType = q.EntityType
	m.EntityID = q.EntityID
	m.Action = q.Action
	m.Payload = q.Payload
	m.Status = q.Status
	m.Priority = q.Priority
	m.RetryCount = q.RetryCount
	m.MaxRetries = q.MaxRetries
	m.ErrorMessage = q.ErrorMessage
	m.ScheduledAt = q.ScheduledAt
	m.StartedAt = q.StartedAt
	m.CompletedAt = q.CompletedAt
	m.CreatedAt = q.CreatedAt
	m.UpdatedAt = q.UpdatedAt
}

// SyncQueueItemModelFromDomain creates a new persistence model from a domain entity.
func SyncQueueItemModelFromDomain(q *sync.SyncQueueItem) *SyncQueueItemModel {
	m := &SyncQueueItemModel{}
	m.FromDomain(q)
	return m
}

// ---------------------------------------------------------------------------
// ProductStoreLink
// ---------------------------------------------------------------------------

// ProductStoreLinkModel is the persistence model for ProductStoreLink.
// The staged remote snapshot is stored as JSONB.
type ProductStoreLinkModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_links_tenant"`
	IntegrationID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_links_external,priority:1;index:idx_links_staged,priority:1"`
	LocalProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_links_local_product"`
	ExternalProductID  string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_links_external,priority:2"`
	Status             sync.LinkStatus `gorm:"type:varchar(20);not null;default:'SYNCED';index:idx_links_staged,priority:2"`
	RemoteSnapshotJSON string          `gorm:"type:jsonb;column:remote_snapshot"`
	LastRemoteUpdate   *time.Time
	LastSyncedAt       *time.Time
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductStoreLinkModel) TableName() string {
	return "product_store_links"
}

// ToDomain converts the persistence model to a domain ProductStoreLink.
func (m *ProductStoreLinkModel) ToDomain() *sync.ProductStoreLink {
	link := &sync.ProductStoreLink{
		ID:                m.ID,
		TenantID:          m.TenantID,
		IntegrationID:     m.IntegrationID,
		LocalProductID:    m.LocalProductID,
		ExternalProductID: m.ExternalProductID,
		Status:            m.Status,
		LastRemoteUpdate:  m.LastRemoteUpdate,
		LastSyncedAt:      m.LastSyncedAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.RemoteSnapshotJSON != "" && m.RemoteSnapshotJSON != "null" {
		var snapshot sync.RemoteSnapshot
		if err := json.Unmarshal([]byte(m.RemoteSnapshotJSON), &snapshot); err == nil {
			link.RemoteSnapshot = &snapshot
		}
	}
	return link
}

// FromDomain populates the persistence model from a domain ProductStoreLink.
func (m *ProductStoreLinkModel) FromDomain(l *sync.ProductStoreLink) {
	m.ID = l.ID
	m.TenantID = l.TenantID
	m.IntegrationID = l.IntegrationID
	m.LocalProductID = l.LocalProductID
	m.ExternalProductID = l.ExternalProductID
	m.Status = l.Status
	m.LastRemoteUpdate = l.LastRemoteUpdate
	m.LastSyncedAt = l.LastSyncedAt
	m.CreatedAt = l.CreatedAt
	m.UpdatedAt = l.UpdatedAt

	if l.RemoteSnapshot != nil {
		if jsonBytes, err := json.Marshal(l.RemoteSnapshot); err == nil {
			m.RemoteSnapshotJSON = string(jsonBytes)
		}
	} else {
		m.RemoteSnapshotJSON = "null"
	}
}

// ProductStoreLinkModelFromDomain creates a new persistence model from a domain entity.
func ProductStoreLinkModelFromDomain(l *sync.ProductStoreLink) *ProductStoreLinkModel {
	m := &ProductStoreLinkModel{}
	m.FromDomain(l)
	return m
}

// ---------------------------------------------------------------------------
// SyncLog
// ---------------------------------------------------------------------------

// SyncLogModel is the persistence model for SyncLog. Rows are append-only.
type SyncLogModel struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID          `gorm:"type:uuid;not null;index:idx_sync_logs_tenant"`
	IntegrationID  uuid.UUID          `gorm:"type:uuid;not null;index:idx_sync_logs_integration"`
	SyncType       sync.SyncType      `gorm:"type:varchar(20);not null"`
	Status         sync.SyncLogStatus `gorm:"type:varchar(20);not null"`
	ItemsProcessed int                `gorm:"not null;default:0"`
	ItemsSucceeded int                `gorm:"not null;default:0"`
	ItemsFailed    int                `gorm:"not null;default:0"`
	DurationMS     int64              `gorm:"not null;default:0;column:duration_ms"`
	ErrorDetails   string             `gorm:"type:text"`
	StartedAt      time.Time          `gorm:"not null"`
	CompletedAt    time.Time          `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (SyncLogModel) TableName() string {
	return "sync_logs"
}

// ToDomain converts the persistence model to a domain SyncLog.
func (m *SyncLogModel) ToDomain() *sync.SyncLog {
	return &sync.SyncLog{
		ID:             m.ID,
		TenantID:       m.TenantID,
		IntegrationID:  m.IntegrationID,
		SyncType:       m.SyncType,
		Status:         m.Status,
		ItemsProcessed: m.ItemsProcessed,
		ItemsSucceeded: m.ItemsSucceeded,
		ItemsFailed:    m.ItemsFailed,
		Duration:       time.Duration(m.DurationMS) * time.Millisecond,
		ErrorDetails:   m.ErrorDetails,
		StartedAt:      m.StartedAt,
		CompletedAt:    m.CompletedAt,
	}
}

// SyncLogModelFromDomain creates a new persistence model from a domain entity.
func SyncLogModelFromDomain(l *sync.SyncLog) *SyncLogModel {
	return &SyncLogModel{
		ID:             l.ID,
		TenantID:       l.TenantID,
		IntegrationID:  l.IntegrationID,
		SyncType:       l.SyncType,
		Status:         l.Status,
		ItemsProcessed: l.ItemsProcessed,
		ItemsSucceeded: l.ItemsSucceeded,
		ItemsFailed:    l.ItemsFailed,
		DurationMS:     l.Duration.Milliseconds(),
		ErrorDetails:   l.ErrorDetails,
		StartedAt:      l.StartedAt,
		CompletedAt:    l.CompletedAt,
	}
}

// ---------------------------------------------------------------------------
// WebhookEvent
// ---------------------------------------------------------------------------

// WebhookEventModel is the persistence model for the webhook audit record.
type WebhookEventModel struct {
	ID            uuid.UUID     `gorm:"type:uuid;primary_key"`
	TenantID      uuid.UUID     `gorm:"type:uuid;not null;index:idx_webhook_events_tenant"`
	IntegrationID uuid.UUID     `gorm:"type:uuid;not null;index:idx_webhook_events_integration"`
	Platform      sync.Platform `gorm:"type:varchar(20);not null"`
	Topic         string        `gorm:"type:varchar(100)"`
	DeliveryID    string        `gorm:"type:varchar(255);index"`
	Payload       string        `gorm:"type:jsonb"`
	Result        string        `gorm:"type:text"`
	ReceivedAt    time.Time     `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (WebhookEventModel) TableName() string {
	return "webhook_events"
}

// ToDomain converts the persistence model to a domain WebhookEvent.
func (m *WebhookEventModel) ToDomain() *sync.WebhookEvent {
	return &sync.WebhookEvent{
		ID:            m.ID,
		TenantID:      m.TenantID,
		IntegrationID: m.IntegrationID,
		Platform:      m.Platform,
		Topic:         sync.Topic(m.Topic),
		DeliveryID:    m.DeliveryID,
		Payload:       m.Payload,
		Result:        m.Result,
		ReceivedAt:    m.ReceivedAt,
	}
}

// WebhookEventModelFromDomain creates a new persistence model from a domain entity.
func WebhookEventModelFromDomain(e *sync.WebhookEvent) *WebhookEventModel {
	return &WebhookEventModel{
		ID:            e.ID,
		TenantID:      e.TenantID,
		IntegrationID: e.IntegrationID,
		Platform:      e.Platform,
		Topic:         e.Topic.String(),
		DeliveryID:    e.DeliveryID,
		Payload:       e.Payload,
		Result:        e.Result,
		ReceivedAt:    e.ReceivedAt,
	}
}

// ---------------------------------------------------------------------------
// StockObservation
// ---------------------------------------------------------------------------

// StockObservationModel is the persistence model for StockObservation.
type StockObservationModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID          uuid.UUID `gorm:"type:uuid;not null;index:idx_stock_obs_tenant"`
	IntegrationID     uuid.UUID `gorm:"type:uuid;not null;index:idx_stock_obs_integration"`
	ExternalProductID string    `gorm:"type:varchar(100);not null"`
	Available         int       `gorm:"not null"`
	ObservedAt        time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockObservationModel) TableName() string {
	return "stock_observations"
}

// ToDomain converts the persistence model to a domain StockObservation.
func (m *StockObservationModel) ToDomain() *sync.StockObservation {
	return &sync.StockObservation{
		ID:                m.ID,
		TenantID:          m.TenantID,
		IntegrationID:     m.IntegrationID,
		ExternalProductID: m.ExternalProductID,
		Available:         m.Available,
		ObservedAt:        m.ObservedAt,
	}
}

// StockObservationModelFromDomain creates a new persistence model from a domain entity.
func StockObservationModelFromDomain(o *sync.StockObservation) *StockObservationModel {
	return &StockObservationModel{
		ID:                o.ID,
		TenantID:          o.TenantID,
		IntegrationID:     o.IntegrationID,
		ExternalProductID: o.ExternalProductID,
		Available:         o.Available,
		ObservedAt:        o.ObservedAt,
	}
}
