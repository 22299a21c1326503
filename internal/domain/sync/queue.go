package sync

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

func normalizeUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ---------------------------------------------------------------------------
// SyncType: one sync concern handled independently
// ---------------------------------------------------------------------------

// SyncType identifies a sync module
type SyncType string

const (
	SyncTypeProducts  SyncType = "PRODUCTS"
	SyncTypePrices    SyncType = "PRICES"
	SyncTypeStock     SyncType = "STOCK"
	SyncTypeOrders    SyncType = "ORDERS"
	SyncTypeCustomers SyncType = "CUSTOMERS"
	SyncTypeTracking  SyncType = "TRACKING"
	SyncTypeReviews   SyncType = "REVIEWS"
)

// IsValid returns true if the sync type is valid
func (t SyncType) IsValid() bool {
	switch t {
	case SyncTypeProducts, SyncTypePrices, SyncTypeStock, SyncTypeOrders,
		SyncTypeCustomers, SyncTypeTracking, SyncTypeReviews:
		return true
	default:
		return false
	}
}

// String returns the string representation of SyncType
func (t SyncType) String() string {
	return string(t)
}

// AllSyncTypes returns the sync types in dispatch order
func AllSyncTypes() []SyncType {
	return []SyncType{
		SyncTypeProducts, SyncTypePrices, SyncTypeStock, SyncTypeOrders,
		SyncTypeCustomers, SyncTypeTracking, SyncTypeReviews,
	}
}

// ParseSyncType parses a sync type identifier (case-insensitive)
func ParseSyncType(s string) (SyncType, error) {
	candidate := SyncType(normalizeUpper(s))
	if !candidate.IsValid() {
		return "", ErrInvalidSyncType
	}
	return candidate, nil
}

// ---------------------------------------------------------------------------
// SyncQueueItem Entity
// ---------------------------------------------------------------------------

// QueueStatus represents the lifecycle state of a queue item
type QueueStatus string

const (
	QueueStatusPending    QueueStatus = "PENDING"
	QueueStatusProcessing QueueStatus = "PROCESSING"
	QueueStatusCompleted  QueueStatus = "COMPLETED"
	QueueStatusFailed     QueueStatus = "FAILED"
	QueueStatusCancelled  QueueStatus = "CANCELLED"
)

// IsTerminal reports whether the status is terminal. Terminal items never
// re-enter the queue automatically.
func (s QueueStatus) IsTerminal() bool {
	switch s {
	case QueueStatusCompleted, QueueStatusFailed, QueueStatusCancelled:
		return true
	default:
		return false
	}
}

// Default queue priorities; lower runs sooner.
const (
	PriorityRealtime = 1
	PriorityDefault  = 5
	PriorityBackfill = 9
)

// DefaultMaxRetries is the retry budget for queue items unless overridden
const DefaultMaxRetries = 3

// SyncQueueItem is one unit of sync work. Created by webhook handlers or
// manual triggers, claimed and executed by the orchestrator.
type SyncQueueItem struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	IntegrationID uuid.UUID
	SyncType      SyncType
	// EntityType names the canonical entity kind ("product", "order", ...);
	// empty for whole-module runs
	EntityType string
	// EntityID identifies the canonical entity; empty for whole-module runs
	EntityID string
	// Action is the requested operation ("import", "export", "full")
	Action string
	// Payload carries the serialized event payload, if any
	Payload string
	Status  QueueStatus
	// Priority orders the queue; lower runs sooner
	Priority   int
	RetryCount int
	MaxRetries int
	ErrorMessage string
	ScheduledAt  time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewSyncQueueItem creates a pending queue item scheduled for immediate
// execution
func NewSyncQueueItem(tenantID, integrationID uuid.UUID, syncType SyncType, action string) (*SyncQueueItem, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if !syncType.IsValid() {
		return nil, ErrInvalidSyncType
	}

	now := time.Now()
	return &SyncQueueItem{
		ID:            uuid.New(),
		TenantID:      tenantID,
		IntegrationID: integrationID,
		SyncType:      syncType,
		Action:        action,
		Status:        QueueStatusPending,
		Priority:      PriorityDefault,
		MaxRetries:    DefaultMaxRetries,
		ScheduledAt:   now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Start marks a claimed item as processing
func (q *SyncQueueItem) Start() {
	now := time.Now()
	q.Status = QueueStatusProcessing
	q.StartedAt = &now
	q.UpdatedAt = now
}

// Complete marks the item as successfully completed
func (q *SyncQueueItem) Complete() {
	now := time.Now()
	q.Status = QueueStatusCompleted
	q.CompletedAt = &now
	q.ErrorMessage = ""
	q.UpdatedAt = now
}

// Cancel moves a non-terminal item to cancelled
func (q *SyncQueueItem) Cancel() error {
	if q.Status.IsTerminal() {
		return ErrQueueItemTerminal
	}
	now := time.Now()
	q.Status = QueueStatusCancelled
	q.CompletedAt = &now
	q.UpdatedAt = now
	return nil
}

// RetryOutcome is the decision for a failed queue item
type RetryOutcome int

const (
	// RetryOutcomeRequeue re-queues the item for another attempt
	RetryOutcomeRequeue RetryOutcome = iota
	// RetryOutcomeTerminalFail marks the item terminally failed
	RetryOutcomeTerminalFail
)

// RetryDecision is the centralized retry policy: a pure function of the retry
// counters. An item past its budget never re-enters pending.
func RetryDecision(retryCount, maxRetries int) RetryOutcome {
	if retryCount < maxRetries {
		return RetryOutcomeRequeue
	}
	return RetryOutcomeTerminalFail
}

// RetryBackoff returns the delay before the next attempt, doubling per retry
// from the base and capped at 30 minutes.
func RetryBackoff(retryCount int, base time.Duration) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	delay := base * time.Duration(1<<(retryCount-1))
	if delay > 30*time.Minute {
		delay = 30 * time.Minute
	}
	return delay
}

// Fail records a failed attempt. Within the retry budget the item goes back
// to pending with a backoff; past it the item fails terminally with the error
// preserved.
func (q *SyncQueueItem) Fail(errMsg string, backoffBase time.Duration) RetryOutcome {
	now := time.Now()
	q.ErrorMessage = errMsg
	q.UpdatedAt = now

	if RetryDecision(q.RetryCount, q.MaxRetries) == RetryOutcomeRequeue {
		q.RetryCount++
		q.Status = QueueStatusPending
		q.StartedAt = nil
		q.ScheduledAt = now.Add(RetryBackoff(q.RetryCount, backoffBase))
		return RetryOutcomeRequeue
	}

	q.Status = QueueStatusFailed
	q.CompletedAt = &now
	return RetryOutcomeTerminalFail
}

// ---------------------------------------------------------------------------
// SyncQueueRepository Interface
// ---------------------------------------------------------------------------

// SyncQueueRepository defines persistence for the sync queue
type SyncQueueRepository interface {
	// FindByID finds a queue item by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*SyncQueueItem, error)

	// NextBatch returns up to limit due pending items ordered by priority
	// ascending then creation time descending. Items scheduled in the future
	// (retry backoff) are excluded.
	NextBatch(ctx context.Context, limit int) ([]SyncQueueItem, error)

	// Claim atomically transitions an item from pending to processing.
	// Returns false when the item was already claimed, completed, or
	// cancelled by another consumer; the caller must skip it.
	Claim(ctx context.Context, id uuid.UUID) (bool, error)

	// Save creates or updates a queue item
	Save(ctx context.Context, item *SyncQueueItem) error

	// CountByStatus returns item counts grouped by status for a tenant
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[QueueStatus]int64, error)
}
