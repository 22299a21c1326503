package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/channelsync/backend/internal/domain/sync"
	"github.com/channelsync/backend/internal/infrastructure/persistence/models"
)

// GormStockObservationRepository implements StockObservationRepository using GORM
type GormStockObservationRepository struct {
	db *gorm.DB
}

// NewGormStockObservationRepository creates a new GormStockObservationRepository
func NewGormStockObservationRepository(db *gorm.DB) *GormStockObservationRepository {
	return &GormStockObservationRepository{db: db}
}

// Append persists an observation; observations are never updated
func (r *GormStockObservationRepository) Append(ctx context.Context, obs *sync.StockObservation) error {
	model := models.StockObservationModelFromDomain(obs)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByIntegration returns recent observations, newest first
func (r *GormStockObservationRepository) FindByIntegration(ctx context.Context, integrationID uuid.UUID, limit int) ([]sync.StockObservation, error) {
	var obsModels []models.StockObservationModel
	if err := r.db.WithContext(ctx).
		Where("integration_id = ?", integrationID).
		Order("observed_at DESC").
		Limit(limit).
		Find(&obsModels).Error; err != nil {
		return nil, err
	}

	observations := make([]sync.StockObservation, len(obsModels))
	for i, model := range obsModels {
		observations[i] = *model.ToDomain()
	}
	return observations, nil
}
