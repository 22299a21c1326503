package feedrule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRuleNotFound       = errors.New("feedrule: rule not found")
	ErrRuleInvalidName    = errors.New("feedrule: rule name is required")
	ErrRuleInvalidTenant  = errors.New("feedrule: invalid tenant ID")
	ErrInvalidMatchType   = errors.New("feedrule: invalid match type")
	ErrActionMissingField = errors.New("feedrule: action requires a field")
	ErrInvalidActionType  = errors.New("feedrule: invalid action type")
)

// ---------------------------------------------------------------------------
// Conditions
// ---------------------------------------------------------------------------

// Operator is a condition operator. Unknown operators evaluate to false
// (fail-safe, never fail-open).
type Operator string

const (
	OperatorEquals         Operator = "equals"
	OperatorNotEquals      Operator = "not_equals"
	OperatorContains       Operator = "contains"
	OperatorNotContains    Operator = "not_contains"
	OperatorStartsWith     Operator = "starts_with"
	OperatorEndsWith       Operator = "ends_with"
	OperatorGreaterThan    Operator = "greater_than"
	OperatorLessThan       Operator = "less_than"
	OperatorGreaterOrEqual Operator = "greater_or_equal"
	OperatorLessOrEqual    Operator = "less_or_equal"
	OperatorIsEmpty        Operator = "is_empty"
	OperatorIsNotEmpty     Operator = "is_not_empty"
)

// Condition is one predicate over a rule-addressable product field
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value,omitempty"`
}

// MatchType controls how a rule's conditions combine
type MatchType string

const (
	// MatchAll requires every condition to be true
	MatchAll MatchType = "all"
	// MatchAny requires at least one condition to be true
	MatchAny MatchType = "any"
)

// IsValid returns true if the match type is valid
func (m MatchType) IsValid() bool {
	return m == MatchAll || m == MatchAny
}

// ---------------------------------------------------------------------------
// Actions
// ---------------------------------------------------------------------------

// ActionType is a transformation kind applied to matched products
type ActionType string

const (
	ActionSetField    ActionType = "set_field"
	ActionAppendText  ActionType = "append_text"
	ActionPrependText ActionType = "prepend_text"
	// ActionReplaceText replaces regex matches of Value with Replacement
	ActionReplaceText ActionType = "replace_text"
	// ActionModifyField applies a numeric Operation (add, subtract,
	// multiply, divide, round) with Value as the operand
	ActionModifyField ActionType = "modify_field"
	ActionSetCategory ActionType = "set_category"
	ActionAddTag      ActionType = "add_tag"
	ActionRemoveTag   ActionType = "remove_tag"
)

// IsValid returns true if the action type is valid
func (a ActionType) IsValid() bool {
	switch a {
	case ActionSetField, ActionAppendText, ActionPrependText, ActionReplaceText,
		ActionModifyField, ActionSetCategory, ActionAddTag, ActionRemoveTag:
		return true
	default:
		return false
	}
}

// NumericOperation is the arithmetic applied by modify_field
type NumericOperation string

const (
	OperationAdd      NumericOperation = "add"
	OperationSubtract NumericOperation = "subtract"
	OperationMultiply NumericOperation = "multiply"
	OperationDivide   NumericOperation = "divide"
	OperationRound    NumericOperation = "round"
)

// Action is one transformation in a rule's action list. Actions run in
// declared order against a working copy of the product.
type Action struct {
	Type  ActionType `json:"type"`
	Field string     `json:"field,omitempty"`
	Value any        `json:"value,omitempty"`
	// Operation is the arithmetic for modify_field (case-insensitive)
	Operation string `json:"operation,omitempty"`
	// Replacement is the substitution text for replace_text
	Replacement string `json:"replacement,omitempty"`
}

// Validate validates the action
func (a Action) Validate() error {
	if !a.Type.IsValid() {
		return ErrInvalidActionType
	}
	switch a.Type {
	case ActionSetCategory, ActionAddTag, ActionRemoveTag:
		// Field is implied
	default:
		if a.Field == "" {
			return ErrActionMissingField
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// FeedRule Entity
// ---------------------------------------------------------------------------

// FeedRule is a user-defined transformation rule applied to products before
// outbound sync. Rules are mutated through the rule editor and consumed
// read-only by the engine.
type FeedRule struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	Name           string
	Conditions     []Condition
	Actions        []Action
	MatchType      MatchType
	IsActive       bool
	ExecutionCount int64
	LastExecutedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewFeedRule creates a feed rule
func NewFeedRule(tenantID uuid.UUID, name string, matchType MatchType) (*FeedRule, error) {
	if tenantID == uuid.Nil {
		return nil, ErrRuleInvalidTenant
	}
	if name == "" {
		return nil, ErrRuleInvalidName
	}
	if !matchType.IsValid() {
		return nil, ErrInvalidMatchType
	}

	now := time.Now()
	return &FeedRule{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Name:       name,
		Conditions: make([]Condition, 0),
		Actions:    make([]Action, 0),
		MatchType:  matchType,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Validate validates the rule
func (r *FeedRule) Validate() error {
	if r.Name == "" {
		return ErrRuleInvalidName
	}
	if !r.MatchType.IsValid() {
		return ErrInvalidMatchType
	}
	for _, action := range r.Actions {
		if err := action.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RecordExecution bumps the execution counters after an apply run.
// Preview runs never call this.
func (r *FeedRule) RecordExecution() {
	now := time.Now()
	r.ExecutionCount++
	r.LastExecutedAt = &now
	r.UpdatedAt = now
}

// ---------------------------------------------------------------------------
// Execution Log
// ---------------------------------------------------------------------------

// ExecutionLog is the append-only record of one apply run
type ExecutionLog struct {
	ID               uuid.UUID
	RuleID           uuid.UUID
	TenantID         uuid.UUID
	ProductsTotal    int
	ProductsMatched  int
	ProductsModified int
	Duration         time.Duration
	ExecutedAt       time.Time
}

// ---------------------------------------------------------------------------
// Repository Interfaces
// ---------------------------------------------------------------------------

// FeedRuleRepository defines persistence for feed rules
type FeedRuleRepository interface {
	// FindByID finds a rule by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*FeedRule, error)

	// FindByTenant returns all rules for a tenant
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]FeedRule, error)

	// Save creates or updates a rule
	Save(ctx context.Context, rule *FeedRule) error

	// Delete deletes a rule
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExecutionLogRepository defines persistence for rule execution logs
type ExecutionLogRepository interface {
	// Append persists a log row; logs are never updated
	Append(ctx context.Context, log *ExecutionLog) error

	// FindByRule returns recent execution logs for a rule, newest first
	FindByRule(ctx context.Context, ruleID uuid.UUID, limit int) ([]ExecutionLog, error)
}
