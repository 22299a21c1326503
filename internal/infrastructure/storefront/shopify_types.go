package storefront

import "encoding/json"

// shopifyProductEnvelope wraps a product for PUT/POST requests
type shopifyProductEnvelope struct {
	Product shopifyProduct `json:"product"`
}

type shopifyProduct struct {
	ID          int64            `json:"id,omitempty"`
	Title       string           `json:"title,omitempty"`
	BodyHTML    string           `json:"body_html,omitempty"`
	ProductType string           `json:"product_type,omitempty"`
	Tags        string           `json:"tags,omitempty"`
	Variants    []shopifyVariant `json:"variants,omitempty"`
}

type shopifyVariant struct {
	ID                int64  `json:"id,omitempty"`
	Price             string `json:"price,omitempty"`
	CompareAtPrice    string `json:"compare_at_price,omitempty"`
	SKU               string `json:"sku,omitempty"`
	InventoryQuantity *int   `json:"inventory_quantity,omitempty"`
}

// shopifyOrderList carries orders as raw JSON so the webhook normalizer can
// consume each payload unchanged.
type shopifyOrderList struct {
	Orders []json.RawMessage `json:"orders"`
}

// shopifyOrderStub is the minimal view needed to index a pulled order
type shopifyOrderStub struct {
	ID        json.Number `json:"id"`
	CreatedAt string      `json:"created_at"`
}

type shopifyCustomerList struct {
	Customers []shopifyCustomer `json:"customers"`
}

type shopifyCustomer struct {
	ID        json.Number `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Phone     string      `json:"phone"`
}

// shopifyFulfillmentEnvelope wraps a fulfillment for POST requests
type shopifyFulfillmentEnvelope struct {
	Fulfillment shopifyFulfillment `json:"fulfillment"`
}

type shopifyFulfillment struct {
	TrackingNumber  string `json:"tracking_number"`
	TrackingCompany string `json:"tracking_company,omitempty"`
	NotifyCustomer  bool   `json:"notify_customer"`
}
