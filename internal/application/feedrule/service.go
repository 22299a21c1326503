package feedrule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/channelsync/backend/internal/domain/catalog"
	"github.com/channelsync/backend/internal/domain/feedrule"
)

// executionBatchSize bounds how many products one execution touches
const executionBatchSize = 500

// reportSampleSize caps how many per-product diffs one report carries;
// counters always cover the whole batch
const reportSampleSize = 100

// ProductChange reports the field diffs for one modified product
type ProductChange struct {
	ProductID uuid.UUID             `json:"product_id"`
	Title     string                `json:"title"`
	Changes   []feedrule.FieldChange `json:"changes"`
}

// ProductFailure reports one product the rule failed on
type ProductFailure struct {
	ProductID uuid.UUID `json:"product_id"`
	Error     string    `json:"error"`
}

// ExecutionReport is the outcome of one rule execution or preview
type ExecutionReport struct {
	RuleID           uuid.UUID        `json:"rule_id"`
	Preview          bool             `json:"preview"`
	ProductsTotal    int              `json:"products_total"`
	ProductsMatched  int              `json:"products_matched"`
	ProductsModified int              `json:"products_modified"`
	Changes          []ProductChange  `json:"changes"`
	Failures         []ProductFailure `json:"failures,omitempty"`
	DurationMS       int64            `json:"execution_time_ms"`
	Duration         time.Duration    `json:"-"`
}

// ExecuteInput controls one rule execution
type ExecuteInput struct {
	// Preview computes the report without persisting anything
	Preview bool
	// Limit caps how many products the run covers; zero or out-of-range
	// values fall back to the batch default
	Limit int
}

// Service executes feed rules over the tenant catalog. Execution is two phase
// per product: evaluate conditions against the unmodified product, then apply
// actions in order. Preview runs compute the same report without persisting
// anything; a failing product is isolated and never aborts the rest.
type Service struct {
	rules    feedrule.FeedRuleRepository
	logs     feedrule.ExecutionLogRepository
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewService creates the feed rule service
func NewService(
	rules feedrule.FeedRuleRepository,
	logs feedrule.ExecutionLogRepository,
	products catalog.ProductRepository,
	logger *zap.Logger,
) *Service {
	return &Service{rules: rules, logs: logs, products: products, logger: logger}
}

// Execute runs a rule over the tenant catalog. With preview true nothing is
// persisted: no product writes, no execution counters, no log row.
func (s *Service) Execute(ctx context.Context, tenantID, ruleID uuid.UUID, input ExecuteInput) (*ExecutionReport, error) {
	rule, err := s.rules.FindByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule.TenantID != tenantID {
		return nil, feedrule.ErrRuleNotFound
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 || limit > executionBatchSize {
		limit = executionBatchSize
	}
	products, err := s.products.FindByTenant(ctx, tenantID, limit)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	report := &ExecutionReport{
		RuleID:        rule.ID,
		Preview:       input.Preview,
		ProductsTotal: len(products),
		Changes:       make([]ProductChange, 0),
	}

	for i := range products {
		s.executeOne(ctx, rule, &products[i], input.Preview, report)
	}
	report.Duration = time.Since(started)
	report.DurationMS = report.Duration.Milliseconds()

	if !input.Preview {
		s.recordExecution(ctx, rule, report)
	}

	s.logger.Info("feed rule executed",
		zap.String("rule_id", rule.ID.String()),
		zap.Bool("preview", input.Preview),
		zap.Int("matched", report.ProductsMatched),
		zap.Int("modified", report.ProductsModified),
		zap.Int("failed", len(report.Failures)))
	return report, nil
}

// executeOne evaluates and applies the rule to a single product. Actions run
// against a clone; canonical state only changes on a persisted apply, so a
// mid-action failure can never leave a half-modified product behind.
func (s *Service) executeOne(ctx context.Context, rule *feedrule.FeedRule, product *catalog.Product, preview bool, report *ExecutionReport) {
	if !feedrule.Matches(rule, product) {
		return
	}
	report.ProductsMatched++

	working := product.Clone()
	changes, err := feedrule.Apply(rule, working)
	if err != nil {
		report.Failures = append(report.Failures, ProductFailure{ProductID: product.ID, Error: err.Error()})
		s.logger.Warn("rule failed on product",
			zap.String("rule_id", rule.ID.String()),
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
		return
	}
	if len(changes) == 0 {
		// Matched but nothing changed; counted as matched, not modified
		return
	}

	if !preview {
		// Persist the typed values off the working copy, not the stringified
		// diff: tags stay []string, price stays decimal, stock stays int
		fields := make(map[string]any, len(changes))
		for _, change := range changes {
			value, ok := working.FieldValue(change.Field)
			if !ok {
				continue
			}
			fields[change.Field] = value
		}
		if err := s.products.UpdateFields(ctx, product.ID, fields); err != nil {
			report.Failures = append(report.Failures, ProductFailure{ProductID: product.ID, Error: err.Error()})
			return
		}
	}

	report.ProductsModified++
	if len(report.Changes) < reportSampleSize {
		report.Changes = append(report.Changes, ProductChange{
			ProductID: product.ID,
			Title:     product.Title,
			Changes:   changes,
		})
	}
}

func (s *Service) recordExecution(ctx context.Context, rule *feedrule.FeedRule, report *ExecutionReport) {
	rule.RecordExecution()
	if err := s.rules.Save(ctx, rule); err != nil {
		s.logger.Warn("failed to bump rule execution counters",
			zap.String("rule_id", rule.ID.String()), zap.Error(err))
	}

	log := &feedrule.ExecutionLog{
		ID:               uuid.New(),
		RuleID:           rule.ID,
		TenantID:         rule.TenantID,
		ProductsTotal:    report.ProductsTotal,
		ProductsMatched:  report.ProductsMatched,
		ProductsModified: report.ProductsModified,
		Duration:         report.Duration,
		ExecutedAt:       time.Now(),
	}
	if err := s.logs.Append(ctx, log); err != nil {
		s.logger.Warn("failed to append execution log",
			zap.String("rule_id", rule.ID.String()), zap.Error(err))
	}
}

// ---------------------------------------------------------------------------
// Rule CRUD
// ---------------------------------------------------------------------------

// CreateRuleInput holds the fields for creating or replacing a rule
type CreateRuleInput struct {
	Name       string
	MatchType  string
	Conditions []feedrule.Condition
	Actions    []feedrule.Action
	IsActive   *bool
}

// Create creates a feed rule
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, input CreateRuleInput) (*feedrule.FeedRule, error) {
	rule, err := feedrule.NewFeedRule(tenantID, input.Name, feedrule.MatchType(input.MatchType))
	if err != nil {
		return nil, err
	}
	rule.Conditions = input.Conditions
	rule.Actions = input.Actions
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if err := s.rules.Save(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// Update replaces a rule's definition
func (s *Service) Update(ctx context.Context, tenantID, ruleID uuid.UUID, input CreateRuleInput) (*feedrule.FeedRule, error) {
	rule, err := s.rules.FindByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule.TenantID != tenantID {
		return nil, feedrule.ErrRuleNotFound
	}

	rule.Name = input.Name
	rule.MatchType = feedrule.MatchType(input.MatchType)
	rule.Conditions = input.Conditions
	rule.Actions = input.Actions
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}
	rule.UpdatedAt = time.Now()
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if err := s.rules.Save(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// Get returns a rule by ID
func (s *Service) Get(ctx context.Context, tenantID, ruleID uuid.UUID) (*feedrule.FeedRule, error) {
	rule, err := s.rules.FindByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule.TenantID != tenantID {
		return nil, feedrule.ErrRuleNotFound
	}
	return rule, nil
}

// List returns all rules for a tenant
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]feedrule.FeedRule, error) {
	return s.rules.FindByTenant(ctx, tenantID)
}

// Delete deletes a rule
func (s *Service) Delete(ctx context.Context, tenantID, ruleID uuid.UUID) error {
	rule, err := s.rules.FindByID(ctx, ruleID)
	if err != nil {
		return err
	}
	if rule.TenantID != tenantID {
		return feedrule.ErrRuleNotFound
	}
	return s.rules.Delete(ctx, ruleID)
}

// History returns recent execution logs for a rule
func (s *Service) History(ctx context.Context, tenantID, ruleID uuid.UUID, limit int) ([]feedrule.ExecutionLog, error) {
	if _, err := s.Get(ctx, tenantID, ruleID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.logs.FindByRule(ctx, ruleID, limit)
}
