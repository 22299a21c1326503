package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/channelsync/backend/internal/domain/sync"
	"github.com/channelsync/backend/internal/infrastructure/persistence/models"
)

// GormSyncConfigurationRepository implements SyncConfigurationRepository using GORM
type GormSyncConfigurationRepository struct {
	db *gorm.DB
}

// NewGormSyncConfigurationRepository creates a new GormSyncConfigurationRepository
func NewGormSyncConfigurationRepository(db *gorm.DB) *GormSyncConfigurationRepository {
	return &GormSyncConfigurationRepository{db: db}
}

// FindByIntegration finds the configuration for an integration
func (r *GormSyncConfigurationRepository) FindByIntegration(ctx context.Context, integrationID uuid.UUID) (*sync.SyncConfiguration, error) {
	var model models.SyncConfigurationModel
	if err := r.db.WithContext(ctx).
		Where("integration_id = ?", integrationID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrConfigurationNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTenant finds all configurations for a tenant
func (r *GormSyncConfigurationRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]sync.SyncConfiguration, error) {
	var configModels []models.SyncConfigurationModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&configModels).Error; err != nil {
		return nil, err
	}

	configs := make([]sync.SyncConfiguration, len(configModels))
	for i, model := range configModels {
		configs[i] = *model.ToDomain()
	}
	return configs, nil
}

// FindActive finds all active configurations across tenants
func (r *GormSyncConfigurationRepository) FindActive(ctx context.Context) ([]sync.SyncConfiguration, error) {
	var configModels []models.SyncConfigurationModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&configModels).Error; err != nil {
		return nil, err
	}

	configs := make([]sync.SyncConfiguration, len(configModels))
	for i, model := range configModels {
		configs[i] = *model.ToDomain()
	}
	return configs, nil
}

// Save creates or updates a configuration
func (r *GormSyncConfigurationRepository) Save(ctx context.Context, cfg *sync.SyncConfiguration) error {
	model := models.SyncConfigurationModelFromDomain(cfg)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a configuration
func (r *GormSyncConfigurationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SyncConfigurationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return sync.ErrConfigurationNotFound
	}
	return nil
}
