package sync

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/channelsync/backend/internal/domain/sync"
)

// Service is the application facade for manual sync operations: triggers,
// queue management, stats, and logs. Background execution belongs to the
// orchestrator; this type only enqueues, cancels, and reads.
type Service struct {
	queue        sync.SyncQueueRepository
	integrations sync.IntegrationRepository
	logs         sync.SyncLogRepository
	fullSync     *FullSyncService
	logger       *zap.Logger
}

// NewService creates the sync service
func NewService(
	queue sync.SyncQueueRepository,
	integrations sync.IntegrationRepository,
	logs sync.SyncLogRepository,
	fullSync *FullSyncService,
	logger *zap.Logger,
) *Service {
	return &Service{
		queue:        queue,
		integrations: integrations,
		logs:         logs,
		fullSync:     fullSync,
		logger:       logger,
	}
}

// TriggerFullSync runs a synchronous full sync for a tenant, optionally
// restricted to specific platforms
func (s *Service) TriggerFullSync(ctx context.Context, tenantID uuid.UUID, platformNames []string) (*FullSyncReport, error) {
	platforms := make([]sync.Platform, 0, len(platformNames))
	for _, name := range platformNames {
		platform := sync.ParsePlatform(name)
		if !platform.IsValid() {
			return nil, sync.ErrUnknownPlatform
		}
		platforms = append(platforms, platform)
	}
	return s.fullSync.Run(ctx, tenantID, platforms)
}

// TriggerModule enqueues a single-module sync for one integration. The item
// runs asynchronously through the orchestrator.
func (s *Service) TriggerModule(ctx context.Context, tenantID, integrationID uuid.UUID, syncTypeName string) (*sync.SyncQueueItem, error) {
	syncType, err := sync.ParseSyncType(syncTypeName)
	if err != nil {
		return nil, err
	}

	integration, err := s.integrations.FindByID(ctx, integrationID)
	if err != nil {
		return nil, err
	}
	if integration.TenantID != tenantID {
		return nil, sync.ErrIntegrationNotFound
	}
	if !integration.Eligible() {
		return nil, sync.ErrIntegrationInactive
	}

	item, err := sync.NewSyncQueueItem(tenantID, integrationID, syncType, "full")
	if err != nil {
		return nil, err
	}
	if err := s.queue.Save(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("module sync enqueued",
		zap.String("item_id", item.ID.String()),
		zap.String("integration_id", integrationID.String()),
		zap.String("sync_type", syncType.String()))
	return item, nil
}

// CancelQueueItem cancels a pending or processing queue item. Terminal items
// reject cancellation.
func (s *Service) CancelQueueItem(ctx context.Context, tenantID, itemID uuid.UUID) (*sync.SyncQueueItem, error) {
	item, err := s.queue.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.TenantID != tenantID {
		return nil, sync.ErrQueueItemNotFound
	}
	if err := item.Cancel(); err != nil {
		return nil, err
	}
	if err := s.queue.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// StatsOverview combines log aggregates with the live queue depth
type StatsOverview struct {
	Stats *sync.SyncStats            `json:"stats"`
	Queue map[sync.QueueStatus]int64 `json:"queue"`
}

// Stats returns the tenant's sync statistics
func (s *Service) Stats(ctx context.Context, tenantID uuid.UUID) (*StatsOverview, error) {
	stats, err := s.logs.Stats(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	queueCounts, err := s.queue.CountByStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &StatsOverview{Stats: stats, Queue: queueCounts}, nil
}

// Logs returns recent sync logs for a tenant, newest first
func (s *Service) Logs(ctx context.Context, tenantID uuid.UUID, limit int) ([]sync.SyncLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.logs.FindByTenant(ctx, tenantID, limit)
}
