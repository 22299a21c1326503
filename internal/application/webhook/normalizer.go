package webhook

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/channelsync/backend/internal/domain/sync"
)

// Normalizers are pure functions from platform payloads to canonical shapes.
// Missing optional fields become zero values; only a missing external
// identifier rejects the event, since that breaks idempotency.

// ---------------------------------------------------------------------------
// Canonical shapes
// ---------------------------------------------------------------------------

// NormalizedCustomer is the canonical customer shape of an order
type NormalizedCustomer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// NormalizedLineItem is the canonical order line shape
type NormalizedLineItem struct {
	Title             string          `json:"title"`
	Quantity          int             `json:"quantity"`
	Price             decimal.Decimal `json:"price"`
	SKU               string          `json:"sku"`
	ExternalProductID string          `json:"external_product_id"`
}

// NormalizedOrder is the canonical order shape both inbound platforms
// converge to
type NormalizedOrder struct {
	ExternalOrderID string               `json:"external_order_id"`
	OrderNumber     string               `json:"order_number"`
	Status          string               `json:"status"`
	TotalAmount     decimal.Decimal      `json:"total_amount"`
	Currency        string               `json:"currency"`
	Customer        NormalizedCustomer   `json:"customer"`
	ShippingAddress string               `json:"shipping_address"`
	LineItems       []NormalizedLineItem `json:"line_items"`
}

// NormalizedProduct is the canonical product shape of a product webhook
type NormalizedProduct struct {
	ExternalProductID string          `json:"external_product_id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	Stock             int             `json:"stock"`
	Category          string          `json:"category"`
	Tags              []string        `json:"tags"`
	SKU               string          `json:"sku"`
	// EventTime is the remote update timestamp when the payload carries one
	EventTime time.Time `json:"event_time"`
}

// NormalizedInventory is the canonical shape of an inventory level webhook
type NormalizedInventory struct {
	ExternalProductID string `json:"external_product_id"`
	Available         int    `json:"available"`
}

// NormalizeOrder dispatches to the platform-specific order normalizer
func NormalizeOrder(platform sync.Platform, payload []byte) (*NormalizedOrder, error) {
	switch platform {
	case sync.PlatformShopify:
		return normalizeShopifyOrder(payload)
	case sync.PlatformWooCommerce, sync.PlatformPrestaShop:
		return normalizeWooOrder(payload)
	default:
		return nil, sync.ErrUnknownPlatform
	}
}

// NormalizeProduct dispatches to the platform-specific product normalizer
func NormalizeProduct(platform sync.Platform, payload []byte) (*NormalizedProduct, error) {
	switch platform {
	case sync.PlatformShopify:
		return normalizeShopifyProduct(payload)
	case sync.PlatformWooCommerce, sync.PlatformPrestaShop:
		return normalizeWooProduct(payload)
	default:
		return nil, sync.ErrUnknownPlatform
	}
}

// NormalizeInventory dispatches to the platform-specific inventory normalizer
func NormalizeInventory(platform sync.Platform, payload []byte) (*NormalizedInventory, error) {
	var raw struct {
		InventoryItemID json.Number `json:"inventory_item_id"`
		ProductID       json.Number `json:"product_id"`
		ID              json.Number `json:"id"`
		Available       *int        `json:"available"`
		StockQuantity   *int        `json:"stock_quantity"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, sync.ErrPayloadUnreadable
	}

	externalID := firstNonEmpty(raw.InventoryItemID.String(), raw.ProductID.String(), raw.ID.String())
	if externalID == "" {
		return nil, sync.ErrMissingExternalID
	}

	available := 0
	if raw.Available != nil {
		available = *raw.Available
	} else if raw.StockQuantity != nil {
		available = *raw.StockQuantity
	}

	return &NormalizedInventory{ExternalProductID: externalID, Available: available}, nil
}

// ---------------------------------------------------------------------------
// Shopify
// ---------------------------------------------------------------------------

type shopifyAddress struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

type shopifyOrderPayload struct {
	ID              json.Number `json:"id"`
	OrderNumber     json.Number `json:"order_number"`
	Name            string      `json:"name"`
	FinancialStatus string      `json:"financial_status"`
	TotalPrice      string      `json:"total_price"`
	Currency        string      `json:"currency"`
	Email           string      `json:"email"`
	Customer        struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
	} `json:"customer"`
	ShippingAddress shopifyAddress `json:"shipping_address"`
	LineItems       []struct {
		Title     string      `json:"title"`
		Quantity  int         `json:"quantity"`
		Price     string      `json:"price"`
		SKU       string      `json:"sku"`
		ProductID json.Number `json:"product_id"`
	} `json:"line_items"`
}

func normalizeShopifyOrder(payload []byte) (*NormalizedOrder, error) {
	var raw shopifyOrderPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, sync.ErrPayloadUnreadable
	}
	if raw.ID.String() == "" {
		return nil, sync.ErrMissingExternalID
	}

	order := &NormalizedOrder{
		ExternalOrderID: raw.ID.String(),
		OrderNumber:     firstNonEmpty(raw.Name, raw.OrderNumber.String()),
		Status:          firstNonEmpty(raw.FinancialStatus, "pending"),
		TotalAmount:     parseAmount(raw.TotalPrice),
		Currency:        raw.Currency,
		Customer: NormalizedCustomer{
			Email: firstNonEmpty(raw.Customer.Email, raw.Email),
			Name:  joinName(raw.Customer.FirstName, raw.Customer.LastName),
			Phone: raw.Customer.Phone,
		},
		ShippingAddress: joinAddress(
			raw.ShippingAddress.Address1, raw.ShippingAddress.Address2,
			raw.ShippingAddress.Zip, raw.ShippingAddress.City, raw.ShippingAddress.Country,
		),
		LineItems: make([]NormalizedLineItem, 0, len(raw.LineItems)),
	}

	for _, item := range raw.LineItems {
		order.LineItems = append(order.LineItems, NormalizedLineItem{
			Title:             item.Title,
			Quantity:          item.Quantity,
			Price:             parseAmount(item.Price),
			SKU:               item.SKU,
			ExternalProductID: item.ProductID.String(),
		})
	}
	return order, nil
}

type shopifyProductPayload struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	BodyHTML    string      `json:"body_html"`
	ProductType string      `json:"product_type"`
	Tags        string      `json:"tags"`
	UpdatedAt   string      `json:"updated_at"`
	Variants    []struct {
		Price             string `json:"price"`
		SKU               string `json:"sku"`
		InventoryQuantity int    `json:"inventory_quantity"`
	} `json:"variants"`
}

func normalizeShopifyProduct(payload []byte) (*NormalizedProduct, error) {
	var raw shopifyProductPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, sync.ErrPayloadUnreadable
	}
	if raw.ID.String() == "" {
		return nil, sync.ErrMissingExternalID
	}

	product := &NormalizedProduct{
		ExternalProductID: raw.ID.String(),
		Title:             raw.Title,
		Description:       raw.BodyHTML,
		Category:          raw.ProductType,
		Tags:              splitTags(raw.Tags),
		EventTime:         parseEventTime(raw.UpdatedAt),
	}

	// Shopify prices and stock live on the first variant for single-variant
	// products
	if len(raw.Variants) > 0 {
		product.Price = parseAmount(raw.Variants[0].Price)
		product.SKU = raw.Variants[0].SKU
		for _, variant := range raw.Variants {
			product.Stock += variant.InventoryQuantity
		}
	}
	return product, nil
}

// ---------------------------------------------------------------------------
// WooCommerce
// ---------------------------------------------------------------------------

type wooOrderPayload struct {
	ID       json.Number `json:"id"`
	Number   string      `json:"number"`
	Status   string      `json:"status"`
	Total    string      `json:"total"`
	Currency string      `json:"currency"`
	Billing  struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
	} `json:"billing"`
	Shipping struct {
		Address1 string `json:"address_1"`
		Address2 string `json:"address_2"`
		City     string `json:"city"`
		Postcode string `json:"postcode"`
		Country  string `json:"country"`
	} `json:"shipping"`
	LineItems []struct {
		Name      string      `json:"name"`
		Quantity  int         `json:"quantity"`
		Price     json.Number `json:"price"`
		SKU       string      `json:"sku"`
		ProductID json.Number `json:"product_id"`
	} `json:"line_items"`
}

func normalizeWooOrder(payload []byte) (*NormalizedOrder, error) {
	var raw wooOrderPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, sync.ErrPayloadUnreadable
	}
	if raw.ID.String() == "" {
		return nil, sync.ErrMissingExternalID
	}

	order := &NormalizedOrder{
		ExternalOrderID: raw.ID.String(),
		OrderNumber:     firstNonEmpty(raw.Number, raw.ID.String()),
		Status:          firstNonEmpty(raw.Status, "pending"),
		TotalAmount:     parseAmount(raw.Total),
		Currency:        raw.Currency,
		Customer: NormalizedCustomer{
			Email: raw.Billing.Email,
			Name:  joinName(raw.Billing.FirstName, raw.Billing.LastName),
			Phone: raw.Billing.Phone,
		},
		ShippingAddress: joinAddress(
			raw.Shipping.Address1, raw.Shipping.Address2,
			raw.Shipping.Postcode, raw.Shipping.City, raw.Shipping.Country,
		),
		LineItems: make([]NormalizedLineItem, 0, len(raw.LineItems)),
	}

	for _, item := range raw.LineItems {
		order.LineItems = append(order.LineItems, NormalizedLineItem{
			Title:             item.Name,
			Quantity:          item.Quantity,
			Price:             parseAmount(item.Price.String()),
			SKU:               item.SKU,
			ExternalProductID: item.ProductID.String(),
		})
	}
	return order, nil
}

type wooProductPayload struct {
	ID            json.Number `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Price         string      `json:"price"`
	RegularPrice  string      `json:"regular_price"`
	StockQuantity *int        `json:"stock_quantity"`
	SKU           string      `json:"sku"`
	DateModified  string      `json:"date_modified_gmt"`
	Categories    []struct {
		Name string `json:"name"`
	} `json:"categories"`
	Tags []struct {
		Name string `json:"name"`
	} `json:"tags"`
}

func normalizeWooProduct(payload []byte) (*NormalizedProduct, error) {
	var raw wooProductPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, sync.ErrPayloadUnreadable
	}
	if raw.ID.String() == "" {
		return nil, sync.ErrMissingExternalID
	}

	product := &NormalizedProduct{
		ExternalProductID: raw.ID.String(),
		Title:             raw.Name,
		Description:       raw.Description,
		Price:             parseAmount(firstNonEmpty(raw.Price, raw.RegularPrice)),
		SKU:               raw.SKU,
		EventTime:         parseEventTime(raw.DateModified),
		Tags:              make([]string, 0, len(raw.Tags)),
	}
	if raw.StockQuantity != nil {
		product.Stock = *raw.StockQuantity
	}
	if len(raw.Categories) > 0 {
		product.Category = raw.Categories[0].Name
	}
	for _, tag := range raw.Tags {
		if tag.Name != "" {
			product.Tags = append(product.Tags, tag.Name)
		}
	}
	return product, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func parseAmount(s string) decimal.Decimal {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return amount
}

func parseEventTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func joinAddress(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
