package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/channelsync/backend/internal/domain/sync"
	"github.com/channelsync/backend/internal/infrastructure/persistence/models"
)

// GormIntegrationRepository implements IntegrationRepository using GORM
type GormIntegrationRepository struct {
	db *gorm.DB
}

// NewGormIntegrationRepository creates a new GormIntegrationRepository
func NewGormIntegrationRepository(db *gorm.DB) *GormIntegrationRepository {
	return &GormIntegrationRepository{db: db}
}

// FindByID finds an integration by its ID
func (r *GormIntegrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*sync.Integration, error) {
	var model models.IntegrationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrIntegrationNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStore finds the integration for a platform store identifier
func (r *GormIntegrationRepository) FindByStore(ctx context.Context, platform sync.Platform, storeIdentifier string) (*sync.Integration, error) {
	var model models.IntegrationModel
	if err := r.db.WithContext(ctx).
		Where("platform = ? AND store_identifier = ?", platform, storeIdentifier).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrUnknownStore
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTenant finds all integrations for a tenant
func (r *GormIntegrationRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]sync.Integration, error) {
	var integrationModels []models.IntegrationModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&integrationModels).Error; err != nil {
		return nil, err
	}

	integrations := make([]sync.Integration, len(integrationModels))
	for i, model := range integrationModels {
		integrations[i] = *model.ToDomain()
	}
	return integrations, nil
}

// FindEligible finds active, non-disabled integrations, optionally filtered
// by platform. tenantID of uuid.Nil matches all tenants.
func (r *GormIntegrationRepository) FindEligible(ctx context.Context, tenantID uuid.UUID, platforms []sync.Platform) ([]sync.Integration, error) {
	query := r.db.WithContext(ctx).
		Where("is_active = ? AND connection_status <> ?", true, sync.ConnectionStatusDisabled)
	if tenantID != uuid.Nil {
		query = query.Where("tenant_id = ?", tenantID)
	}
	if len(platforms) > 0 {
		query = query.Where("platform IN ?", platforms)
	}

	var integrationModels []models.IntegrationModel
	if err := query.Order("created_at ASC").Find(&integrationModels).Error; err != nil {
		return nil, err
	}

	integrations := make([]sync.Integration, len(integrationModels))
	for i, model := range integrationModels {
		integrations[i] = *model.ToDomain()
	}
	return integrations, nil
}

// Save creates or updates an integration
func (r *GormIntegrationRepository) Save(ctx context.Context, integration *sync.Integration) error {
	model := models.IntegrationModelFromDomain(integration)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes an integration
func (r *GormIntegrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.IntegrationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return sync.ErrIntegrationNotFound
	}
	return nil
}
