package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/channelsync/backend/internal/domain/sync"
	"github.com/channelsync/backend/internal/infrastructure/persistence/models"
)

// GormSyncLogRepository implements SyncLogRepository using GORM
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Append persists a log row; logs are never updated
func (r *GormSyncLogRepository) Append(ctx context.Context, log *sync.SyncLog) error {
	model := models.SyncLogModelFromDomain(log)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByTenant returns recent logs for a tenant, newest first
func (r *GormSyncLogRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]sync.SyncLog, error) {
	var logModels []models.SyncLogModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("started_at DESC").
		Limit(limit).
		Find(&logModels).Error; err != nil {
		return nil, err
	}
	return syncLogsToDomain(logModels), nil
}

// FindByIntegration returns recent logs for an integration, newest first
func (r *GormSyncLogRepository) FindByIntegration(ctx context.Context, integrationID uuid.UUID, limit int) ([]sync.SyncLog, error) {
	var logModels []models.SyncLogModel
	if err := r.db.WithContext(ctx).
		Where("integration_id = ?", integrationID).
		Order("started_at DESC").
		Limit(limit).
		Find(&logModels).Error; err != nil {
		return nil, err
	}
	return syncLogsToDomain(logModels), nil
}

// Stats aggregates logs for a tenant
func (r *GormSyncLogRepository) Stats(ctx context.Context, tenantID uuid.UUID) (*sync.SyncStats, error) {
	type totalsRow struct {
		TotalRuns      int64
		SuccessfulRuns int64
		FailedRuns     int64
		ItemsProcessed int64
		ItemsSucceeded int64
		ItemsFailed    int64
		LastRunAt      *time.Time
	}

	var totals totalsRow
	if err := r.db.WithContext(ctx).
		Model(&models.SyncLogModel{}).
		Select(
			"COUNT(*) as total_runs, "+
				"COUNT(*) FILTER (WHERE status = ?) as successful_runs, "+
				"COUNT(*) FILTER (WHERE status = ?) as failed_runs, "+
				"COALESCE(SUM(items_processed), 0) as items_processed, "+
				"COALESCE(SUM(items_succeeded), 0) as items_succeeded, "+
				"COALESCE(SUM(items_failed), 0) as items_failed, "+
				"MAX(started_at) as last_run_at",
			sync.SyncLogStatusSuccess, sync.SyncLogStatusFailed,
		).
		Where("tenant_id = ?", tenantID).
		Scan(&totals).Error; err != nil {
		return nil, err
	}

	type typeRow struct {
		SyncType sync.SyncType
		Count    int64
	}

	var typeRows []typeRow
	if err := r.db.WithContext(ctx).
		Model(&models.SyncLogModel{}).
		Select("sync_type, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("sync_type").
		Scan(&typeRows).Error; err != nil {
		return nil, err
	}

	stats := &sync.SyncStats{
		TotalRuns:      totals.TotalRuns,
		SuccessfulRuns: totals.SuccessfulRuns,
		FailedRuns:     totals.FailedRuns,
		ItemsProcessed: totals.ItemsProcessed,
		ItemsSucceeded: totals.ItemsSucceeded,
		ItemsFailed:    totals.ItemsFailed,
		RunsByType:     make(map[sync.SyncType]int64, len(typeRows)),
		LastRunAt:      totals.LastRunAt,
	}
	for _, row := range typeRows {
		stats.RunsByType[row.SyncType] = row.Count
	}
	return stats, nil
}

func syncLogsToDomain(logModels []models.SyncLogModel) []sync.SyncLog {
	logs := make([]sync.SyncLog, len(logModels))
	for i, model := range logModels {
		logs[i] = *model.ToDomain()
	}
	return logs
}
