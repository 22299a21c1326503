package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound          = errors.New("catalog: order not found")
	ErrOrderMissingExternalID = errors.New("catalog: order missing external ID")
	ErrOrderTerminal          = errors.New("catalog: order is in a terminal state")
)

// OrderStatus represents the lifecycle state of a canonical order.
// Orders move absent → created → (cancelled | refunded); cancelled and
// refunded are terminal for webhook-driven transitions.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRefunded  OrderStatus = "REFUNDED"
)

// IsTerminal reports whether webhook events may still transition the order
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusRefunded
}

// OrderCustomer holds the buyer details of an order
type OrderCustomer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// OrderLineItem is one line of an order
type OrderLineItem struct {
	Title             string          `json:"title"`
	Quantity          int             `json:"quantity"`
	Price             decimal.Decimal `json:"price"`
	SKU               string          `json:"sku"`
	ExternalProductID string          `json:"external_product_id"`
}

// Order is the canonical order record. ExternalOrderID is unique per tenant
// and carries the idempotency guarantee under at-least-once webhook delivery.
type Order struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	IntegrationID   uuid.UUID
	ExternalOrderID string
	OrderNumber     string
	Status          OrderStatus
	TotalAmount     decimal.Decimal
	Currency        string
	Customer        OrderCustomer
	ShippingAddress string
	LineItems       []OrderLineItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewOrder creates a canonical order from a normalized platform order
func NewOrder(tenantID, integrationID uuid.UUID, externalOrderID string) (*Order, error) {
	if externalOrderID == "" {
		return nil, ErrOrderMissingExternalID
	}
	now := time.Now()
	return &Order{
		ID:              uuid.New(),
		TenantID:        tenantID,
		IntegrationID:   integrationID,
		ExternalOrderID: externalOrderID,
		Status:          OrderStatusCreated,
		Currency:        "EUR",
		LineItems:       make([]OrderLineItem, 0),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// MarkCancelled transitions the order to cancelled. No-op error when the
// order is already terminal.
func (o *Order) MarkCancelled() error {
	if o.Status.IsTerminal() {
		return ErrOrderTerminal
	}
	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now()
	return nil
}

// MarkRefunded transitions the order to refunded
func (o *Order) MarkRefunded() error {
	if o.Status.IsTerminal() {
		return ErrOrderTerminal
	}
	o.Status = OrderStatusRefunded
	o.UpdatedAt = time.Now()
	return nil
}

// MarkPaid records payment on a created order
func (o *Order) MarkPaid() error {
	if o.Status.IsTerminal() {
		return ErrOrderTerminal
	}
	o.Status = OrderStatusPaid
	o.UpdatedAt = time.Now()
	return nil
}

// ---------------------------------------------------------------------------
// OrderRepository Interface
// ---------------------------------------------------------------------------

// OrderRepository defines persistence for canonical orders
type OrderRepository interface {
	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByExternalID finds an order by (tenant, external order ID).
	// This lookup backs the order handler's idempotency check.
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalOrderID string) (*Order, error)

	// ExistsByExternalID checks whether an order was already ingested
	ExistsByExternalID(ctx context.Context, tenantID uuid.UUID, externalOrderID string) (bool, error)

	// Save creates or updates an order
	Save(ctx context.Context, order *Order) error
}
