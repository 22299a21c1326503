package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/channelsync/backend/internal/domain/sync"
	"github.com/channelsync/backend/internal/infrastructure/persistence/models"
)

// GormSyncQueueRepository implements SyncQueueRepository using GORM
type GormSyncQueueRepository struct {
	db *gorm.DB
}

// NewGormSyncQueueRepository creates a new GormSyncQueueRepository
func NewGormSyncQueueRepository(db *gorm.DB) *GormSyncQueueRepository {
	return &GormSyncQueueRepository{db: db}
}

// FindByID finds a queue item by its ID
func (r *GormSyncQueueRepository) FindByID(ctx context.Context, id uuid.UUID) (*sync.SyncQueueItem, error) {
	var model models.SyncQueueItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrQueueItemNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// NextBatch returns up to limit due pending items ordered by priority
// ascending then creation time descending
func (r *GormSyncQueueRepository) NextBatch(ctx context.Context, limit int) ([]sync.SyncQueueItem, error) {
	var itemModels []models.SyncQueueItemModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", sync.QueueStatusPending, time.Now().UTC()).
		Order("priority ASC, created_at DESC").
		Limit(limit).
		Find(&itemModels).Error; err != nil {
		return nil, err
	}

	items := make([]sync.SyncQueueItem, len(itemModels))
	for i, model := range itemModels {
		items[i] = *model.ToDomain()
	}
	return items, nil
}

// Claim atomically transitions an item from pending to processing. The
// conditional update makes concurrent consumers safe: only one sees
// RowsAffected == 1.
func (r *GormSyncQueueRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.SyncQueueItemModel{}).
		Where("id = ? AND status = ?", id, sync.QueueStatusPending).
		Updates(map[string]any{
			"status":     sync.QueueStatusProcessing,
			"started_at": now,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Save creates or updates a queue item
func (r *GormSyncQueueRepository) Save(ctx context.Context, item *sync.SyncQueueItem) error {
	model := models.SyncQueueItemModelFromDomain(item)
	return r.db.WithContext(ctx).Save(model).Error
}

// CountByStatus returns item counts grouped by status for a tenant
func (r *GormSyncQueueRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[sync.QueueStatus]int64, error) {
	type statusCount struct {
		Status sync.QueueStatus
		Count  int64
	}

	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.SyncQueueItemModel{}).
		Select("status, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[sync.QueueStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
