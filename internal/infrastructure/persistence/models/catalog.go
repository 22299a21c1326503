package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/channelsync/backend/internal/domain/catalog"
)

// ---------------------------------------------------------------------------
// Product
// ---------------------------------------------------------------------------

// ProductModel is the persistence model for the canonical Product entity.
type ProductModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_products_tenant"`
	Title          string          `gorm:"type:varchar(255);not null"`
	Description    string          `gorm:"type:text"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CompareAtPrice decimal.Decimal `gorm:"type:decimal(12,2)"`
	Stock          int             `gorm:"not null;default:0"`
	Category       string          `gorm:"type:varchar(100)"`
	Brand          string          `gorm:"type:varchar(100)"`
	SKU            string          `gorm:"type:varchar(100);index"`
	TagsJSON       string          `gorm:"type:jsonb;column:tags"`
	Supplier       string          `gorm:"type:varchar(100)"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *catalog.Product {
	product := &catalog.Product{
		ID:             m.ID,
		TenantID:       m.TenantID,
		Title:          m.Title,
		Description:    m.Description,
		Price:          m.Price,
		CompareAtPrice: m.CompareAtPrice,
		Stock:          m.Stock,
		Category:       m.Category,
		Brand:          m.Brand,
		SKU:            m.SKU,
		Tags:           make([]string, 0),
		Supplier:       m.Supplier,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.TagsJSON != "" {
		var tags []string
		if err := json.Unmarshal([]byte(m.TagsJSON), &tags); err == nil {
			product.Tags = tags
		}
	}
	return product
}

// FromDomain populates the persistence model from a domain Product.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.ID = p.ID
	m.TenantID = p.TenantID
	m.Title = p.Title
	m.Description = p.Description
	m.Price = p.Price
	m.CompareAtPrice = p.CompareAtPrice
	m.Stock = p.Stock
	m.Category = p.Category
	m.Brand = p.Brand
	m.SKU = p.SKU
	m.Supplier = p.Supplier
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt

	if len(p.Tags) > 0 {
		if jsonBytes, err := json.Marshal(p.Tags); err == nil {
			m.TagsJSON = string(jsonBytes)
		}
	} else {
		m.TagsJSON = "[]"
	}
}

// ProductModelFromDomain creates a new persistence model from a domain entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ---------------------------------------------------------------------------
// Order
// ---------------------------------------------------------------------------

// OrderModel is the persistence model for the canonical Order entity.
// Customer and line items are stored as JSONB; orders are read back whole.
type OrderModel struct {
	ID              uuid.UUID           `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_orders_external,priority:1"`
	IntegrationID   uuid.UUID           `gorm:"type:uuid;not null;index:idx_orders_integration"`
	ExternalOrderID string              `gorm:"type:varchar(100);not null;uniqueIndex:idx_orders_external,priority:2"`
	OrderNumber     string              `gorm:"type:varchar(100)"`
	Status          catalog.OrderStatus `gorm:"type:varchar(20);not null;default:'CREATED'"`
	TotalAmount     decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	Currency        string              `gorm:"type:varchar(10)"`
	CustomerJSON    string              `gorm:"type:jsonb;column:customer"`
	ShippingAddress string              `gorm:"type:text"`
	LineItemsJSON   string              `gorm:"type:jsonb;column:line_items"`
	CreatedAt       time.Time           `gorm:"not null"`
	UpdatedAt       time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *catalog.Order {
	order := &catalog.Order{
		ID:              m.ID,
		TenantID:        m.TenantID,
		IntegrationID:   m.IntegrationID,
		ExternalOrderID: m.ExternalOrderID,
		OrderNumber:     m.OrderNumber,
		Status:          m.Status,
		TotalAmount:     m.TotalAmount,
		Currency:        m.Currency,
		ShippingAddress: m.ShippingAddress,
		LineItems:       make([]catalog.OrderLineItem, 0),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.CustomerJSON != "" {
		var customer catalog.OrderCustomer
		if err := json.Unmarshal([]byte(m.CustomerJSON), &customer); err == nil {
			order.Customer = customer
		}
	}
	if m.LineItemsJSON != "" {
		var items []catalog.OrderLineItem
		if err := json.Unmarshal([]byte(m.LineItemsJSON), &items); err == nil {
			order.LineItems = items
		}
	}
	return order
}

// FromDomain populates the persistence model from a domain Order.
func (m *OrderModel) FromDomain(o *catalog.Order) {
	m.ID = o.ID
	m.TenantID = o.TenantID
	m.IntegrationID = o.IntegrationID
	m.ExternalOrderID = o.ExternalOrderID
	m.OrderNumber = o.OrderNumber
	m.Status = o.Status
	m.TotalAmount = o.TotalAmount
	m.Currency = o.Currency
	m.ShippingAddress = o.ShippingAddress
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt

	if jsonBytes, err := json.Marshal(o.Customer); err == nil {
		m.CustomerJSON = string(jsonBytes)
	}
	if len(o.LineItems) > 0 {
		if jsonBytes, err := json.Marshal(o.LineItems); err == nil {
			m.LineItemsJSON = string(jsonBytes)
		}
	} else {
		m.LineItemsJSON = "[]"
	}
}

// OrderModelFromDomain creates a new persistence model from a domain entity.
func OrderModelFromDomain(o *catalog.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// ---------------------------------------------------------------------------
// Customer
// ---------------------------------------------------------------------------

// CustomerModel is the persistence model for the canonical Customer entity.
type CustomerModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_customers_external,priority:1"`
	IntegrationID      uuid.UUID `gorm:"type:uuid;not null;index:idx_customers_integration"`
	ExternalCustomerID string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_customers_external,priority:2"`
	Email              string    `gorm:"type:varchar(255);index"`
	Name               string    `gorm:"type:varchar(255)"`
	Phone              string    `gorm:"type:varchar(50)"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer.
func (m *CustomerModel) ToDomain() *catalog.Customer {
	return &catalog.Customer{
		ID:                 m.ID,
		TenantID:           m.TenantID,
		IntegrationID:      m.IntegrationID,
		ExternalCustomerID: m.ExternalCustomerID,
		Email:              m.Email,
		Name:               m.Name,
		Phone:              m.Phone,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// CustomerModelFromDomain creates a new persistence model from a domain entity.
func CustomerModelFromDomain(c *catalog.Customer) *CustomerModel {
	return &CustomerModel{
		ID:                 c.ID,
		TenantID:           c.TenantID,
		IntegrationID:      c.IntegrationID,
		ExternalCustomerID: c.ExternalCustomerID,
		Email:              c.Email,
		Name:               c.Name,
		Phone:              c.Phone,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}
