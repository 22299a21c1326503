package sync

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// StorefrontConnector Port Interface
// ---------------------------------------------------------------------------

// ProductPush is a canonical product prepared for export to a platform
type ProductPush struct {
	ExternalProductID string
	Title             string
	Description       string
	Price             decimal.Decimal
	CompareAtPrice    decimal.Decimal
	Stock             int
	Category          string
	Tags              []string
	SKU               string
}

// StockPush is a stock level prepared for export to a platform
type StockPush struct {
	ExternalProductID string
	Available         int
}

// TrackingPush is fulfillment tracking prepared for export to a platform
type TrackingPush struct {
	ExternalOrderID string
	Carrier         string
	TrackingNumber  string
}

// RemoteOrder is an order pulled from a platform, pre-normalization
type RemoteOrder struct {
	ExternalOrderID string
	Payload         []byte
	CreatedAt       time.Time
}

// RemoteCustomer is a customer pulled from a platform
type RemoteCustomer struct {
	ExternalCustomerID string
	Email              string
	Name               string
	Phone              string
}

// PushResult reports per-item outcomes of an outbound batch
type PushResult struct {
	Succeeded int
	Failed    int
	Errors    []string
}

// StorefrontConnector is the port interface to one storefront platform.
// Defined in the domain layer; concrete adapters (Shopify, WooCommerce) live
// in the infrastructure layer.
type StorefrontConnector interface {
	// Platform returns the platform this connector handles
	Platform() Platform

	// TestConnection verifies the integration's credentials against the
	// platform API
	TestConnection(ctx context.Context, integration *Integration) error

	// PushProducts creates or updates products on the platform
	PushProducts(ctx context.Context, integration *Integration, products []ProductPush) (*PushResult, error)

	// PushPrices updates product prices on the platform
	PushPrices(ctx context.Context, integration *Integration, products []ProductPush) (*PushResult, error)

	// PushStock updates stock levels on the platform
	PushStock(ctx context.Context, integration *Integration, levels []StockPush) (*PushResult, error)

	// PushTracking sends fulfillment tracking to the platform
	PushTracking(ctx context.Context, integration *Integration, tracking []TrackingPush) (*PushResult, error)

	// PullOrders pulls orders created or updated since the given time
	PullOrders(ctx context.Context, integration *Integration, since time.Time) ([]RemoteOrder, error)

	// PullCustomers pulls customers created or updated since the given time
	PullCustomers(ctx context.Context, integration *Integration, since time.Time) ([]RemoteCustomer, error)
}

// ConnectorRegistry provides access to registered platform connectors
type ConnectorRegistry interface {
	// Get returns the connector for the given platform
	Get(platform Platform) (StorefrontConnector, error)

	// List returns all registered connectors
	List() []StorefrontConnector
}
