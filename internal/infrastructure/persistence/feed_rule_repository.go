package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/channelsync/backend/internal/domain/feedrule"
	"github.com/channelsync/backend/internal/infrastructure/persistence/models"
)

// GormFeedRuleRepository implements FeedRuleRepository using GORM
type GormFeedRuleRepository struct {
	db *gorm.DB
}

// NewGormFeedRuleRepository creates a new GormFeedRuleRepository
func NewGormFeedRuleRepository(db *gorm.DB) *GormFeedRuleRepository {
	return &GormFeedRuleRepository{db: db}
}

// FindByID finds a rule by its ID
func (r *GormFeedRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*feedrule.FeedRule, error) {
	var model models.FeedRuleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, feedrule.ErrRuleNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTenant returns all rules for a tenant
func (r *GormFeedRuleRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]feedrule.FeedRule, error) {
	var ruleModels []models.FeedRuleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&ruleModels).Error; err != nil {
		return nil, err
	}

	rules := make([]feedrule.FeedRule, len(ruleModels))
	for i, model := range ruleModels {
		rules[i] = *model.ToDomain()
	}
	return rules, nil
}

// Save creates or updates a rule
func (r *GormFeedRuleRepository) Save(ctx context.Context, rule *feedrule.FeedRule) error {
	model := models.FeedRuleModelFromDomain(rule)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a rule
func (r *GormFeedRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.FeedRuleModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return feedrule.ErrRuleNotFound
	}
	return nil
}

// GormRuleExecutionLogRepository implements ExecutionLogRepository using GORM
type GormRuleExecutionLogRepository struct {
	db *gorm.DB
}

// NewGormRuleExecutionLogRepository creates a new GormRuleExecutionLogRepository
func NewGormRuleExecutionLogRepository(db *gorm.DB) *GormRuleExecutionLogRepository {
	return &GormRuleExecutionLogRepository{db: db}
}

// Append persists a log row; logs are never updated
func (r *GormRuleExecutionLogRepository) Append(ctx context.Context, log *feedrule.ExecutionLog) error {
	model := models.RuleExecutionLogModelFromDomain(log)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByRule returns recent execution logs for a rule, newest first
func (r *GormRuleExecutionLogRepository) FindByRule(ctx context.Context, ruleID uuid.UUID, limit int) ([]feedrule.ExecutionLog, error) {
	var logModels []models.RuleExecutionLogModel
	if err := r.db.WithContext(ctx).
		Where("rule_id = ?", ruleID).
		Order("executed_at DESC").
		Limit(limit).
		Find(&logModels).Error; err != nil {
		return nil, err
	}

	logs := make([]feedrule.ExecutionLog, len(logModels))
	for i, model := range logModels {
		logs[i] = *model.ToDomain()
	}
	return logs, nil
}
