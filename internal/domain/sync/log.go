package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// SyncLog: immutable record of one sync execution
// ---------------------------------------------------------------------------

// SyncLogStatus is the outcome recorded for one execution
type SyncLogStatus string

const (
	SyncLogStatusSuccess SyncLogStatus = "SUCCESS"
	SyncLogStatusPartial SyncLogStatus = "PARTIAL"
	SyncLogStatusFailed  SyncLogStatus = "FAILED"
)

// SyncLog records one queue-item execution or direct module run. Append-only;
// stats are derived by aggregation, never stored redundantly.
type SyncLog struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	IntegrationID  uuid.UUID
	SyncType       SyncType
	Status         SyncLogStatus
	ItemsProcessed int
	ItemsSucceeded int
	ItemsFailed    int
	Duration       time.Duration
	ErrorDetails   string
	StartedAt      time.Time
	CompletedAt    time.Time
}

// NewSyncLog builds the log row for a finished execution
func NewSyncLog(tenantID, integrationID uuid.UUID, syncType SyncType, startedAt time.Time, processed, succeeded, failed int, errDetails string) *SyncLog {
	completedAt := time.Now()
	status := SyncLogStatusSuccess
	if failed > 0 {
		if succeeded > 0 {
			status = SyncLogStatusPartial
		} else {
			status = SyncLogStatusFailed
		}
	}
	return &SyncLog{
		ID:             uuid.New(),
		TenantID:       tenantID,
		IntegrationID:  integrationID,
		SyncType:       syncType,
		Status:         status,
		ItemsProcessed: processed,
		ItemsSucceeded: succeeded,
		ItemsFailed:    failed,
		Duration:       completedAt.Sub(startedAt),
		ErrorDetails:   errDetails,
		StartedAt:      startedAt,
		CompletedAt:    completedAt,
	}
}

// SyncStats is the aggregate view over sync logs for a tenant
type SyncStats struct {
	TotalRuns      int64              `json:"total_runs"`
	SuccessfulRuns int64              `json:"successful_runs"`
	FailedRuns     int64              `json:"failed_runs"`
	ItemsProcessed int64              `json:"items_processed"`
	ItemsSucceeded int64              `json:"items_succeeded"`
	ItemsFailed    int64              `json:"items_failed"`
	RunsByType     map[SyncType]int64 `json:"runs_by_type"`
	LastRunAt      *time.Time         `json:"last_run_at,omitempty"`
}

// SyncLogRepository defines persistence for sync logs
type SyncLogRepository interface {
	// Append persists a log row; logs are never updated
	Append(ctx context.Context, log *SyncLog) error

	// FindByTenant returns recent logs for a tenant, newest first
	FindByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]SyncLog, error)

	// FindByIntegration returns recent logs for an integration, newest first
	FindByIntegration(ctx context.Context, integrationID uuid.UUID, limit int) ([]SyncLog, error)

	// Stats aggregates logs for a tenant
	Stats(ctx context.Context, tenantID uuid.UUID) (*SyncStats, error)
}

// ---------------------------------------------------------------------------
// WebhookEvent: audit record of every accepted webhook
// ---------------------------------------------------------------------------

// WebhookEvent is the audit record persisted before dispatch, so replay and
// debugging remain possible even when the handler later fails.
type WebhookEvent struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	IntegrationID uuid.UUID
	Platform      Platform
	Topic         Topic
	DeliveryID    string
	Payload       string
	// Result records the handler outcome, filled in after dispatch
	Result     string
	ReceivedAt time.Time
}

// NewWebhookEvent creates the audit record for an accepted webhook
func NewWebhookEvent(tenantID, integrationID uuid.UUID, platform Platform, topic Topic, deliveryID, payload string) *WebhookEvent {
	return &WebhookEvent{
		ID:            uuid.New(),
		TenantID:      tenantID,
		IntegrationID: integrationID,
		Platform:      platform,
		Topic:         topic,
		DeliveryID:    deliveryID,
		Payload:       payload,
		ReceivedAt:    time.Now(),
	}
}

// WebhookEventRepository defines persistence for webhook audit records
type WebhookEventRepository interface {
	// Append persists the audit record before dispatch
	Append(ctx context.Context, event *WebhookEvent) error

	// RecordResult updates the handler outcome of an audit record
	RecordResult(ctx context.Context, id uuid.UUID, result string) error

	// FindByIntegration returns recent events for an integration, newest first
	FindByIntegration(ctx context.Context, integrationID uuid.UUID, limit int) ([]WebhookEvent, error)
}

// StockObservation is the audit record of a remote stock level reported by an
// inventory webhook. Observations never mutate canonical stock; the stock
// module reconciles from them.
type StockObservation struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	IntegrationID     uuid.UUID
	ExternalProductID string
	Available         int
	ObservedAt        time.Time
}

// StockObservationRepository defines persistence for stock observations
type StockObservationRepository interface {
	// Append persists an observation; observations are never updated
	Append(ctx context.Context, obs *StockObservation) error

	// FindByIntegration returns recent observations, newest first
	FindByIntegration(ctx context.Context, integrationID uuid.UUID, limit int) ([]StockObservation, error)
}
