package storefront

import "encoding/json"

// wooProductUpdate is the request body for product create/update
type wooProductUpdate struct {
	Name             string       `json:"name,omitempty"`
	Description      string       `json:"description,omitempty"`
	RegularPrice     string       `json:"regular_price,omitempty"`
	SalePrice        string       `json:"sale_price,omitempty"`
	SKU              string       `json:"sku,omitempty"`
	StockQuantity    *int         `json:"stock_quantity,omitempty"`
	ManageStock      *bool        `json:"manage_stock,omitempty"`
	Categories       []wooTermRef `json:"categories,omitempty"`
	Tags             []wooTermRef `json:"tags,omitempty"`
}

// wooTermRef references a category or tag by name
type wooTermRef struct {
	Name string `json:"name"`
}

// wooOrderStub is the minimal view needed to index a pulled order
type wooOrderStub struct {
	ID          json.Number `json:"id"`
	DateCreated string      `json:"date_created"`
}

type wooCustomer struct {
	ID        json.Number `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Billing   struct {
		Phone string `json:"phone"`
	} `json:"billing"`
}

// wooShipmentTracking is the request body for the shipment tracking endpoint
type wooShipmentTracking struct {
	TrackingProvider string `json:"tracking_provider"`
	TrackingNumber   string `json:"tracking_number"`
}
