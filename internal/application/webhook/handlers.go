package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/channelsync/backend/internal/domain/catalog"
	"github.com/channelsync/backend/internal/domain/sync"
)

// EventContext carries an accepted, verified webhook into a topic handler
type EventContext struct {
	Integration *sync.Integration
	Config      *sync.SyncConfiguration
	Topic       sync.Topic
	Payload     []byte
}

// TopicHandler processes one webhook topic family. The returned result string
// is recorded on the audit event; it describes the outcome for operators
// ("order created", "skipped: duplicate order", ...).
type TopicHandler interface {
	Handle(ctx context.Context, evt *EventContext) (string, error)
}

// ---------------------------------------------------------------------------
// OrderEventHandler: orders/* topics
// ---------------------------------------------------------------------------

// OrderEventHandler ingests platform orders into the canonical store.
// Ingestion is idempotent on (tenant, external order ID): redelivered or
// duplicated create events are skipped, never double-ingested.
type OrderEventHandler struct {
	orders catalog.OrderRepository
	queue  sync.SyncQueueRepository
	logger *zap.Logger
}

// NewOrderEventHandler creates an order event handler
func NewOrderEventHandler(orders catalog.OrderRepository, queue sync.SyncQueueRepository, logger *zap.Logger) *OrderEventHandler {
	return &OrderEventHandler{orders: orders, queue: queue, logger: logger}
}

// Handle processes an orders/* webhook
func (h *OrderEventHandler) Handle(ctx context.Context, evt *EventContext) (string, error) {
	if !evt.Config.Direction.AllowsImport() {
		return "skipped: import disabled", nil
	}
	if !evt.Config.Modules.Enabled(sync.SyncTypeOrders) {
		return "skipped: orders module disabled", nil
	}

	normalized, err := NormalizeOrder(evt.Integration.Platform, evt.Payload)
	if err != nil {
		return "", err
	}

	switch evt.Topic.Action() {
	case "create", "created":
		return h.ingest(ctx, evt, normalized)
	case "updated", "paid":
		return h.update(ctx, evt, normalized)
	case "cancelled":
		return h.transition(ctx, evt, normalized.ExternalOrderID, (*catalog.Order).MarkCancelled, "order cancelled")
	case "refunded", "refund_created":
		return h.transition(ctx, evt, normalized.ExternalOrderID, (*catalog.Order).MarkRefunded, "order refunded")
	default:
		return "ignored: unhandled order action", nil
	}
}

func (h *OrderEventHandler) ingest(ctx context.Context, evt *EventContext, normalized *NormalizedOrder) (string, error) {
	exists, err := h.orders.ExistsByExternalID(ctx, evt.Integration.TenantID, normalized.ExternalOrderID)
	if err != nil {
		return "", err
	}
	if exists {
		return "skipped: duplicate order", nil
	}

	order, err := OrderFromNormalized(evt.Integration, normalized)
	if err != nil {
		return "", err
	}
	if err := h.orders.Save(ctx, order); err != nil {
		return "", err
	}

	h.logger.Info("order ingested",
		zap.String("order_id", order.ID.String()),
		zap.String("external_order_id", order.ExternalOrderID),
		zap.String("platform", evt.Integration.Platform.String()))

	h.scheduleStockReconcile(ctx, evt)
	return "order created", nil
}

// update applies the latest platform state to an existing order, falling back
// to ingestion when the create event was never delivered
func (h *OrderEventHandler) update(ctx context.Context, evt *EventContext, normalized *NormalizedOrder) (string, error) {
	order, err := h.orders.FindByExternalID(ctx, evt.Integration.TenantID, normalized.ExternalOrderID)
	if err != nil {
		if errors.Is(err, catalog.ErrOrderNotFound) {
			return h.ingest(ctx, evt, normalized)
		}
		return "", err
	}
	if order.Status.IsTerminal() {
		return "skipped: order already terminal", nil
	}

	if mapOrderStatus(normalized.Status) == catalog.OrderStatusPaid && order.Status != catalog.OrderStatusPaid {
		if err := order.MarkPaid(); err != nil {
			return "", err
		}
		if err := h.orders.Save(ctx, order); err != nil {
			return "", err
		}
		return "order marked paid", nil
	}
	return "skipped: no status change", nil
}

func (h *OrderEventHandler) transition(ctx context.Context, evt *EventContext, externalOrderID string, mutate func(*catalog.Order) error, result string) (string, error) {
	order, err := h.orders.FindByExternalID(ctx, evt.Integration.TenantID, externalOrderID)
	if err != nil {
		if errors.Is(err, catalog.ErrOrderNotFound) {
			return "skipped: order not found", nil
		}
		return "", err
	}

	if err := mutate(order); err != nil {
		if errors.Is(err, catalog.ErrOrderTerminal) {
			return "skipped: order already terminal", nil
		}
		return "", err
	}
	if err := h.orders.Save(ctx, order); err != nil {
		return "", err
	}
	return result, nil
}

// scheduleStockReconcile enqueues a realtime stock sync after an order lands,
// since an accepted order changes remote stock levels. Enqueue failures are
// logged and swallowed: the order ingestion must not fail because of them.
func (h *OrderEventHandler) scheduleStockReconcile(ctx context.Context, evt *EventContext) {
	if !evt.Config.Modules.Enabled(sync.SyncTypeStock) || evt.Config.Frequency != sync.SyncFrequencyRealtime {
		return
	}

	item, err := sync.NewSyncQueueItem(evt.Integration.TenantID, evt.Integration.ID, sync.SyncTypeStock, "export")
	if err != nil {
		h.logger.Warn("failed to build stock reconcile item", zap.Error(err))
		return
	}
	item.Priority = sync.PriorityRealtime
	if err := h.queue.Save(ctx, item); err != nil {
		h.logger.Warn("failed to enqueue stock reconcile",
			zap.String("integration_id", evt.Integration.ID.String()),
			zap.Error(err))
	}
}

// OrderFromNormalized builds a canonical order from a normalized platform
// order. Shared with the scheduled order-pull module.
func OrderFromNormalized(integration *sync.Integration, normalized *NormalizedOrder) (*catalog.Order, error) {
	order, err := catalog.NewOrder(integration.TenantID, integration.ID, normalized.ExternalOrderID)
	if err != nil {
		return nil, err
	}

	order.OrderNumber = normalized.OrderNumber
	order.Status = mapOrderStatus(normalized.Status)
	order.TotalAmount = normalized.TotalAmount
	order.Currency = normalized.Currency
	order.Customer = catalog.OrderCustomer{
		Email: normalized.Customer.Email,
		Name:  normalized.Customer.Name,
		Phone: normalized.Customer.Phone,
	}
	order.ShippingAddress = normalized.ShippingAddress
	order.LineItems = make([]catalog.OrderLineItem, 0, len(normalized.LineItems))
	for _, item := range normalized.LineItems {
		order.LineItems = append(order.LineItems, catalog.OrderLineItem{
			Title:             item.Title,
			Quantity:          item.Quantity,
			Price:             item.Price,
			SKU:               item.SKU,
			ExternalProductID: item.ExternalProductID,
		})
	}
	return order, nil
}

// mapOrderStatus folds platform payment statuses into the canonical order
// states. Unknown statuses stay CREATED rather than failing the event.
func mapOrderStatus(platformStatus string) catalog.OrderStatus {
	switch platformStatus {
	case "paid", "partially_paid", "processing", "completed":
		return catalog.OrderStatusPaid
	case "voided", "cancelled":
		return catalog.OrderStatusCancelled
	case "refunded", "partially_refunded":
		return catalog.OrderStatusRefunded
	default:
		return catalog.OrderStatusCreated
	}
}

// ---------------------------------------------------------------------------
// ProductEventHandler: products/* topics
// ---------------------------------------------------------------------------

// ProductEventHandler stages remote product changes on the product store link.
// Remote data is never applied to canonical products here; it waits for an
// explicit conflict resolution.
type ProductEventHandler struct {
	links  sync.ProductStoreLinkRepository
	logger *zap.Logger
}

// NewProductEventHandler creates a product event handler
func NewProductEventHandler(links sync.ProductStoreLinkRepository, logger *zap.Logger) *ProductEventHandler {
	return &ProductEventHandler{links: links, logger: logger}
}

// Handle processes a products/* webhook
func (h *ProductEventHandler) Handle(ctx context.Context, evt *EventContext) (string, error) {
	if !evt.Config.Direction.AllowsImport() {
		return "skipped: import disabled", nil
	}
	if !evt.Config.Modules.Enabled(sync.SyncTypeProducts) {
		return "skipped: products module disabled", nil
	}

	normalized, err := NormalizeProduct(evt.Integration.Platform, evt.Payload)
	if err != nil {
		return "", err
	}

	link, err := h.links.FindByExternalProduct(ctx, evt.Integration.ID, normalized.ExternalProductID)
	if err != nil {
		if errors.Is(err, sync.ErrLinkNotFound) {
			return "skipped: product not linked", nil
		}
		return "", err
	}

	switch evt.Topic.Action() {
	case "delete", "deleted":
		link.StageRemoteDelete()
	default:
		link.StageRemoteUpdate(sync.RemoteSnapshot{
			Title:       normalized.Title,
			Description: normalized.Description,
			Price:       normalized.Price,
			Stock:       normalized.Stock,
			Category:    normalized.Category,
			Tags:        normalized.Tags,
			SKU:         normalized.SKU,
			EventTime:   normalized.EventTime,
		})
	}

	if err := h.links.Save(ctx, link); err != nil {
		return "", err
	}

	h.logger.Info("remote product change staged",
		zap.String("link_id", link.ID.String()),
		zap.String("external_product_id", link.ExternalProductID),
		zap.String("status", string(link.Status)))
	return fmt.Sprintf("staged: %s", link.Status), nil
}

// ---------------------------------------------------------------------------
// InventoryEventHandler: inventory topics
// ---------------------------------------------------------------------------

// InventoryEventHandler records remote stock levels as observations. Canonical
// stock is reconciled from observations by the stock module, never mutated
// inline.
type InventoryEventHandler struct {
	observations sync.StockObservationRepository
	logger       *zap.Logger
}

// NewInventoryEventHandler creates an inventory event handler
func NewInventoryEventHandler(observations sync.StockObservationRepository, logger *zap.Logger) *InventoryEventHandler {
	return &InventoryEventHandler{observations: observations, logger: logger}
}

// Handle processes an inventory webhook
func (h *InventoryEventHandler) Handle(ctx context.Context, evt *EventContext) (string, error) {
	if !evt.Config.Modules.Enabled(sync.SyncTypeStock) {
		return "skipped: stock module disabled", nil
	}

	normalized, err := NormalizeInventory(evt.Integration.Platform, evt.Payload)
	if err != nil {
		return "", err
	}

	obs := &sync.StockObservation{
		ID:                uuid.New(),
		TenantID:          evt.Integration.TenantID,
		IntegrationID:     evt.Integration.ID,
		ExternalProductID: normalized.ExternalProductID,
		Available:         normalized.Available,
		ObservedAt:        time.Now(),
	}
	if err := h.observations.Append(ctx, obs); err != nil {
		return "", err
	}
	return "stock observation recorded", nil
}

// ---------------------------------------------------------------------------
// NoopHandler: everything outside the known families
// ---------------------------------------------------------------------------

// NoopHandler accepts topics outside the known families without side effects,
// so that platform topic additions never surface as webhook errors.
type NoopHandler struct{}

// Handle records the topic as unhandled
func (h *NoopHandler) Handle(_ context.Context, _ *EventContext) (string, error) {
	return "ignored: unhandled topic", nil
}
