package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/channelsync/backend/internal/domain/sync"
	"github.com/channelsync/backend/internal/infrastructure/persistence/models"
)

// GormWebhookEventRepository implements WebhookEventRepository using GORM
type GormWebhookEventRepository struct {
	db *gorm.DB
}

// NewGormWebhookEventRepository creates a new GormWebhookEventRepository
func NewGormWebhookEventRepository(db *gorm.DB) *GormWebhookEventRepository {
	return &GormWebhookEventRepository{db: db}
}

// Append persists the audit record before dispatch
func (r *GormWebhookEventRepository) Append(ctx context.Context, event *sync.WebhookEvent) error {
	model := models.WebhookEventModelFromDomain(event)
	return r.db.WithContext(ctx).Create(model).Error
}

// RecordResult updates the handler outcome of an audit record
func (r *GormWebhookEventRepository) RecordResult(ctx context.Context, id uuid.UUID, result string) error {
	res := r.db.WithContext(ctx).
		Model(&models.WebhookEventModel{}).
		Where("id = ?", id).
		Update("result", result)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByIntegration returns recent events for an integration, newest first
func (r *GormWebhookEventRepository) FindByIntegration(ctx context.Context, integrationID uuid.UUID, limit int) ([]sync.WebhookEvent, error) {
	var eventModels []models.WebhookEventModel
	if err := r.db.WithContext(ctx).
		Where("integration_id = ?", integrationID).
		Order("received_at DESC").
		Limit(limit).
		Find(&eventModels).Error; err != nil {
		return nil, err
	}

	events := make([]sync.WebhookEvent, len(eventModels))
	for i, model := range eventModels {
		events[i] = *model.ToDomain()
	}
	return events, nil
}
