package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/channelsync/backend/internal/domain/feedrule"
)

// FeedRuleModel is the persistence model for the FeedRule entity.
// Conditions and actions are stored as JSONB; the engine consumes them whole.
type FeedRuleModel struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID          `gorm:"type:uuid;not null;index:idx_feed_rules_tenant"`
	Name           string             `gorm:"type:varchar(255);not null"`
	ConditionsJSON string             `gorm:"type:jsonb;column:conditions"`
	ActionsJSON    string             `gorm:"type:jsonb;column:actions"`
	MatchType      feedrule.MatchType `gorm:"type:varchar(10);not null;default:'all'"`
	IsActive       bool               `gorm:"not null;default:true"`
	ExecutionCount int64              `gorm:"not null;default:0"`
	LastExecutedAt *time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FeedRuleModel) TableName() string {
	return "feed_rules"
}

// ToDomain converts the persistence model to a domain FeedRule.
func (m *FeedRuleModel) ToDomain() *feedrule.FeedRule {
	rule := &feedrule.FeedRule{
		ID:             m.ID,
		TenantID:       m.TenantID,
		Name:           m.Name,
		Conditions:     make([]feedrule.Condition, 0),
		Actions:        make([]feedrule.Action, 0),
		MatchType:      m.MatchType,
		IsActive:       m.IsActive,
		ExecutionCount: m.ExecutionCount,
		LastExecutedAt: m.LastExecutedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.ConditionsJSON != "" {
		var conditions []feedrule.Condition
		if err := json.Unmarshal([]byte(m.ConditionsJSON), &conditions); err == nil {
			rule.Conditions = conditions
		}
	}
	if m.ActionsJSON != "" {
		var actions []feedrule.Action
		if err := json.Unmarshal([]byte(m.ActionsJSON), &actions); err == nil {
			rule.Actions = actions
		}
	}
	return rule
}

// FromDomain populates the persistence model from a domain FeedRule.
func (m *FeedRuleModel) FromDomain(r *feedrule.FeedRule) {
	m.ID = r.ID
	m.TenantID = r.TenantID
	m.Name = r.Name
	m.MatchType = r.MatchType
	m.IsActive = r.IsActive
	m.ExecutionCount = r.ExecutionCount
	m.LastExecutedAt = r.LastExecutedAt
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt

	if jsonBytes, err := json.Marshal(r.Conditions); err == nil {
		m.ConditionsJSON = string(jsonBytes)
	}
	if jsonBytes, err := json.Marshal(r.Actions); err == nil {
		m.ActionsJSON = string(jsonBytes)
	}
}

// FeedRuleModelFromDomain creates a new persistence model from a domain entity.
func FeedRuleModelFromDomain(r *feedrule.FeedRule) *FeedRuleModel {
	m := &FeedRuleModel{}
	m.FromDomain(r)
	return m
}

// RuleExecutionLogModel is the persistence model for rule execution logs.
// Rows are append-only.
type RuleExecutionLogModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	RuleID           uuid.UUID `gorm:"type:uuid;not null;index:idx_rule_exec_logs_rule"`
	TenantID         uuid.UUID `gorm:"type:uuid;not null;index:idx_rule_exec_logs_tenant"`
	ProductsTotal    int       `gorm:"not null;default:0"`
	ProductsMatched  int       `gorm:"not null;default:0"`
	ProductsModified int       `gorm:"not null;default:0"`
	DurationMS       int64     `gorm:"not null;default:0;column:duration_ms"`
	ExecutedAt       time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (RuleExecutionLogModel) TableName() string {
	return "feed_rule_execution_logs"
}

// ToDomain converts the persistence model to a domain ExecutionLog.
func (m *RuleExecutionLogModel) ToDomain() *feedrule.ExecutionLog {
	return &feedrule.ExecutionLog{
		ID:               m.ID,
		RuleID:           m.RuleID,
		TenantID:         m.TenantID,
		ProductsTotal:    m.ProductsTotal,
		ProductsMatched:  m.ProductsMatched,
		ProductsModified: m.ProductsModified,
		Duration:         time.Duration(m.DurationMS) * time.Millisecond,
		ExecutedAt:       m.ExecutedAt,
	}
}

// RuleExecutionLogModelFromDomain creates a new persistence model from a domain entity.
func RuleExecutionLogModelFromDomain(l *feedrule.ExecutionLog) *RuleExecutionLogModel {
	return &RuleExecutionLogModel{
		ID:               l.ID,
		RuleID:           l.RuleID,
		TenantID:         l.TenantID,
		ProductsTotal:    l.ProductsTotal,
		ProductsMatched:  l.ProductsMatched,
		ProductsModified: l.ProductsModified,
		DurationMS:       l.Duration.Milliseconds(),
		ExecutedAt:       l.ExecutedAt,
	}
}
