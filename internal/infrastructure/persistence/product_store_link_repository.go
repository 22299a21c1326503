package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/channelsync/backend/internal/domain/sync"
	"github.com/channelsync/backend/internal/infrastructure/persistence/models"
)

// GormProductStoreLinkRepository implements ProductStoreLinkRepository using GORM
type GormProductStoreLinkRepository struct {
	db *gorm.DB
}

// NewGormProductStoreLinkRepository creates a new GormProductStoreLinkRepository
func NewGormProductStoreLinkRepository(db *gorm.DB) *GormProductStoreLinkRepository {
	return &GormProductStoreLinkRepository{db: db}
}

// FindByID finds a link by its ID
func (r *GormProductStoreLinkRepository) FindByID(ctx context.Context, id uuid.UUID) (*sync.ProductStoreLink, error) {
	var model models.ProductStoreLinkModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrLinkNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalProduct finds the link for an external product on an integration
func (r *GormProductStoreLinkRepository) FindByExternalProduct(ctx context.Context, integrationID uuid.UUID, externalProductID string) (*sync.ProductStoreLink, error) {
	var model models.ProductStoreLinkModel
	if err := r.db.WithContext(ctx).
		Where("integration_id = ? AND external_product_id = ?", integrationID, externalProductID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrLinkNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLocalProduct finds all links for a canonical product
func (r *GormProductStoreLinkRepository) FindByLocalProduct(ctx context.Context, tenantID, localProductID uuid.UUID) ([]sync.ProductStoreLink, error) {
	var linkModels []models.ProductStoreLinkModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND local_product_id = ?", tenantID, localProductID).
		Order("created_at ASC").
		Find(&linkModels).Error; err != nil {
		return nil, err
	}
	return linksToDomain(linkModels), nil
}

// FindByIntegration finds all links for an integration
func (r *GormProductStoreLinkRepository) FindByIntegration(ctx context.Context, integrationID uuid.UUID) ([]sync.ProductStoreLink, error) {
	var linkModels []models.ProductStoreLinkModel
	if err := r.db.WithContext(ctx).
		Where("integration_id = ?", integrationID).
		Order("created_at ASC").
		Find(&linkModels).Error; err != nil {
		return nil, err
	}
	return linksToDomain(linkModels), nil
}

// FindStaged finds links awaiting resolution for an integration
func (r *GormProductStoreLinkRepository) FindStaged(ctx context.Context, integrationID uuid.UUID) ([]sync.ProductStoreLink, error) {
	var linkModels []models.ProductStoreLinkModel
	if err := r.db.WithContext(ctx).
		Where("integration_id = ? AND status IN ?", integrationID, []sync.LinkStatus{
			sync.LinkStatusRemoteUpdated,
			sync.LinkStatusRemoteDeleted,
			sync.LinkStatusConflict,
		}).
		Order("updated_at ASC").
		Find(&linkModels).Error; err != nil {
		return nil, err
	}
	return linksToDomain(linkModels), nil
}

// Save creates or updates a link
func (r *GormProductStoreLinkRepository) Save(ctx context.Context, link *sync.ProductStoreLink) error {
	model := models.ProductStoreLinkModelFromDomain(link)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a link
func (r *GormProductStoreLinkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductStoreLinkModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return sync.ErrLinkNotFound
	}
	return nil
}

func linksToDomain(linkModels []models.ProductStoreLinkModel) []sync.ProductStoreLink {
	links := make([]sync.ProductStoreLink, len(linkModels))
	for i, model := range linkModels {
		links[i] = *model.ToDomain()
	}
	return links
}
