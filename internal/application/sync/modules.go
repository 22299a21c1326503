package sync

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/channelsync/backend/internal/application/webhook"
	"github.com/channelsync/backend/internal/domain/catalog"
	"github.com/channelsync/backend/internal/domain/sync"
)

// exportBatchSize bounds one export run; larger catalogs sync across runs
const exportBatchSize = 200

// orderBackfillWindow is how far back the first order pull reaches when an
// integration has never synced
const orderBackfillWindow = 24 * time.Hour

// ModuleReport is the outcome of one module run against one integration
type ModuleReport struct {
	SyncType  sync.SyncType `json:"sync_type"`
	Processed int           `json:"processed"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	// SkipReason is set when the run did nothing, with the reason
	SkipReason string   `json:"skip_reason,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

// ModuleRunner executes one sync module for one integration through its
// platform connector. Every run appends a sync log and updates the
// integration's connection bookkeeping.
type ModuleRunner struct {
	registry     sync.ConnectorRegistry
	integrations sync.IntegrationRepository
	links        sync.ProductStoreLinkRepository
	products     catalog.ProductRepository
	orders       catalog.OrderRepository
	customers    catalog.CustomerRepository
	logs         sync.SyncLogRepository
	logger       *zap.Logger
}

// NewModuleRunner creates a module runner
func NewModuleRunner(
	registry sync.ConnectorRegistry,
	integrations sync.IntegrationRepository,
	links sync.ProductStoreLinkRepository,
	products catalog.ProductRepository,
	orders catalog.OrderRepository,
	customers catalog.CustomerRepository,
	logs sync.SyncLogRepository,
	logger *zap.Logger,
) *ModuleRunner {
	return &ModuleRunner{
		registry:     registry,
		integrations: integrations,
		links:        links,
		products:     products,
		orders:       orders,
		customers:    customers,
		logs:         logs,
		logger:       logger,
	}
}

// Run executes one module for one integration. Per-item failures are
// tolerated and reported; only integration-level failures (connector down,
// auth) return an error so the queue can retry.
func (r *ModuleRunner) Run(ctx context.Context, integration *sync.Integration, config *sync.SyncConfiguration, syncType sync.SyncType) (*ModuleReport, error) {
	if !config.Modules.Enabled(syncType) {
		return nil, sync.ErrModuleDisabled
	}
	if !integration.Eligible() {
		return nil, sync.ErrIntegrationInactive
	}

	connector, err := r.registry.Get(integration.Platform)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	report, err := r.dispatch(ctx, connector, integration, config, syncType)
	if err != nil {
		r.recordFailure(ctx, integration, syncType, started, err)
		return nil, err
	}

	r.recordSuccess(ctx, integration, syncType, started, report)
	return report, nil
}

func (r *ModuleRunner) dispatch(ctx context.Context, connector sync.StorefrontConnector, integration *sync.Integration, config *sync.SyncConfiguration, syncType sync.SyncType) (*ModuleReport, error) {
	switch syncType {
	case sync.SyncTypeProducts:
		return r.runProductExport(ctx, integration, config, sync.SyncTypeProducts, connector.PushProducts)
	case sync.SyncTypePrices:
		return r.runProductExport(ctx, integration, config, sync.SyncTypePrices, connector.PushPrices)
	case sync.SyncTypeStock:
		return r.runStockExport(ctx, connector, integration, config)
	case sync.SyncTypeOrders:
		return r.runOrderImport(ctx, connector, integration, config)
	case sync.SyncTypeCustomers:
		return r.runCustomerImport(ctx, connector, integration, config)
	case sync.SyncTypeTracking, sync.SyncTypeReviews:
		// No local data source feeds these modules yet; runs are recorded as
		// skipped rather than failed so schedules keep working.
		return &ModuleReport{SyncType: syncType, SkipReason: "no local data source"}, nil
	default:
		return nil, sync.ErrInvalidSyncType
	}
}

type pushFunc func(ctx context.Context, integration *sync.Integration, products []sync.ProductPush) (*sync.PushResult, error)

func (r *ModuleRunner) runProductExport(ctx context.Context, integration *sync.Integration, config *sync.SyncConfiguration, syncType sync.SyncType, push pushFunc) (*ModuleReport, error) {
	report := &ModuleReport{SyncType: syncType}
	if !config.Direction.AllowsExport() {
		report.SkipReason = "export disabled by sync direction"
		return report, nil
	}

	pushes, err := r.collectProductPushes(ctx, integration)
	if err != nil {
		return nil, err
	}
	if len(pushes) == 0 {
		report.SkipReason = "no linked products"
		return report, nil
	}

	result, err := push(ctx, integration, pushes)
	if err != nil {
		return nil, err
	}
	report.Processed = len(pushes)
	report.Succeeded = result.Succeeded
	report.Failed = result.Failed
	report.Errors = result.Errors
	return report, nil
}

func (r *ModuleRunner) runStockExport(ctx context.Context, connector sync.StorefrontConnector, integration *sync.Integration, config *sync.SyncConfiguration) (*ModuleReport, error) {
	report := &ModuleReport{SyncType: sync.SyncTypeStock}
	if !config.Direction.AllowsExport() {
		report.SkipReason = "export disabled by sync direction"
		return report, nil
	}

	pushes, err := r.collectProductPushes(ctx, integration)
	if err != nil {
		return nil, err
	}
	if len(pushes) == 0 {
		report.SkipReason = "no linked products"
		return report, nil
	}

	levels := make([]sync.StockPush, 0, len(pushes))
	for _, p := range pushes {
		levels = append(levels, sync.StockPush{ExternalProductID: p.ExternalProductID, Available: p.Stock})
	}

	result, err := connector.PushStock(ctx, integration, levels)
	if err != nil {
		return nil, err
	}
	report.Processed = len(levels)
	report.Succeeded = result.Succeeded
	report.Failed = result.Failed
	report.Errors = result.Errors
	return report, nil
}

// collectProductPushes resolves the integration's linked products into push
// payloads. Unlinked products are not exported: link creation is an explicit
// user action, not a side effect of a sync run.
func (r *ModuleRunner) collectProductPushes(ctx context.Context, integration *sync.Integration) ([]sync.ProductPush, error) {
	linked, err := r.links.FindByIntegration(ctx, integration.ID)
	if err != nil {
		return nil, err
	}

	pushes := make([]sync.ProductPush, 0, len(linked))
	for _, link := range linked {
		if len(pushes) >= exportBatchSize {
			break
		}
		product, err := r.products.FindByID(ctx, link.LocalProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				r.logger.Warn("link references missing product",
					zap.String("link_id", link.ID.String()),
					zap.String("product_id", link.LocalProductID.String()))
				continue
			}
			return nil, err
		}
		pushes = append(pushes, sync.ProductPush{
			ExternalProductID: link.ExternalProductID,
			Title:             product.Title,
			Description:       product.Description,
			Price:             product.Price,
			CompareAtPrice:    product.CompareAtPrice,
			Stock:             product.Stock,
			Category:          product.Category,
			Tags:              product.Tags,
			SKU:               product.SKU,
		})
	}
	return pushes, nil
}

func (r *ModuleRunner) runOrderImport(ctx context.Context, connector sync.StorefrontConnector, integration *sync.Integration, config *sync.SyncConfiguration) (*ModuleReport, error) {
	report := &ModuleReport{SyncType: sync.SyncTypeOrders}
	if !config.Direction.AllowsImport() {
		report.SkipReason = "import disabled by sync direction"
		return report, nil
	}

	remote, err := connector.PullOrders(ctx, integration, r.pullSince(integration))
	if err != nil {
		return nil, err
	}

	for _, remoteOrder := range remote {
		report.Processed++
		if err := r.ingestRemoteOrder(ctx, integration, remoteOrder); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, remoteOrder.ExternalOrderID+": "+err.Error())
			continue
		}
		report.Succeeded++
	}
	return report, nil
}

// ingestRemoteOrder reuses the webhook normalizer so pulled and pushed orders
// land identically. Already-ingested orders are counted as succeeded.
func (r *ModuleRunner) ingestRemoteOrder(ctx context.Context, integration *sync.Integration, remote sync.RemoteOrder) error {
	normalized, err := webhook.NormalizeOrder(integration.Platform, remote.Payload)
	if err != nil {
		return err
	}

	exists, err := r.orders.ExistsByExternalID(ctx, integration.TenantID, normalized.ExternalOrderID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	order, err := webhook.OrderFromNormalized(integration, normalized)
	if err != nil {
		return err
	}
	return r.orders.Save(ctx, order)
}

func (r *ModuleRunner) runCustomerImport(ctx context.Context, connector sync.StorefrontConnector, integration *sync.Integration, config *sync.SyncConfiguration) (*ModuleReport, error) {
	report := &ModuleReport{SyncType: sync.SyncTypeCustomers}
	if !config.Direction.AllowsImport() {
		report.SkipReason = "import disabled by sync direction"
		return report, nil
	}

	remote, err := connector.PullCustomers(ctx, integration, r.pullSince(integration))
	if err != nil {
		return nil, err
	}

	for _, remoteCustomer := range remote {
		report.Processed++
		if err := r.upsertCustomer(ctx, integration, remoteCustomer); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, remoteCustomer.ExternalCustomerID+": "+err.Error())
			continue
		}
		report.Succeeded++
	}
	return report, nil
}

func (r *ModuleRunner) upsertCustomer(ctx context.Context, integration *sync.Integration, remote sync.RemoteCustomer) error {
	customer, err := r.customers.FindByExternalID(ctx, integration.TenantID, remote.ExternalCustomerID)
	if err != nil {
		if !errors.Is(err, catalog.ErrCustomerNotFound) {
			return err
		}
		customer, err = catalog.NewCustomer(integration.TenantID, integration.ID, remote.ExternalCustomerID)
		if err != nil {
			return err
		}
	}
	customer.ApplyContact(remote.Email, remote.Name, remote.Phone)
	return r.customers.Save(ctx, customer)
}

func (r *ModuleRunner) pullSince(integration *sync.Integration) time.Time {
	if integration.LastSyncAt != nil {
		return *integration.LastSyncAt
	}
	return time.Now().Add(-orderBackfillWindow)
}

// ---------------------------------------------------------------------------
// Run bookkeeping
// ---------------------------------------------------------------------------

func (r *ModuleRunner) recordSuccess(ctx context.Context, integration *sync.Integration, syncType sync.SyncType, started time.Time, report *ModuleReport) {
	log := sync.NewSyncLog(integration.TenantID, integration.ID, syncType, started,
		report.Processed, report.Succeeded, report.Failed, strings.Join(report.Errors, "; "))
	if err := r.logs.Append(ctx, log); err != nil {
		r.logger.Warn("failed to append sync log", zap.Error(err))
	}

	integration.RecordSyncSuccess()
	if err := r.integrations.Save(ctx, integration); err != nil {
		r.logger.Warn("failed to update integration after sync",
			zap.String("integration_id", integration.ID.String()), zap.Error(err))
	}
}

func (r *ModuleRunner) recordFailure(ctx context.Context, integration *sync.Integration, syncType sync.SyncType, started time.Time, runErr error) {
	log := sync.NewSyncLog(integration.TenantID, integration.ID, syncType, started, 0, 0, 0, runErr.Error())
	if err := r.logs.Append(ctx, log); err != nil {
		r.logger.Warn("failed to append sync log", zap.Error(err))
	}

	integration.RecordSyncFailure(runErr.Error())
	if err := r.integrations.Save(ctx, integration); err != nil {
		r.logger.Warn("failed to update integration after sync failure",
			zap.String("integration_id", integration.ID.String()), zap.Error(err))
	}
	if integration.ConnectionStatus == sync.ConnectionStatusDisabled {
		r.logger.Warn("integration disabled after repeated failures",
			zap.String("integration_id", integration.ID.String()),
			zap.Int("consecutive_failures", integration.ConsecutiveFailures))
	}
}
