package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound     = errors.New("catalog: product not found")
	ErrProductInvalidTitle = errors.New("catalog: product title is required")
	ErrUnknownField        = errors.New("catalog: unknown product field")
	ErrFieldNotNumeric     = errors.New("catalog: field is not numeric")
)

// Rule-addressable product field names. Feed rule conditions and actions
// refer to products through these names.
const (
	FieldTitle          = "title"
	FieldDescription    = "description"
	FieldPrice          = "price"
	FieldCompareAtPrice = "compare_at_price"
	FieldStock          = "stock"
	FieldCategory       = "category"
	FieldBrand          = "brand"
	FieldSKU            = "sku"
	FieldTags           = "tags"
	FieldSupplier       = "supplier"
)

// Product is the canonical product record, the system of record independent
// of any platform representation.
type Product struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	Title          string
	Description    string
	Price          decimal.Decimal
	CompareAtPrice decimal.Decimal
	Stock          int
	Category       string
	Brand          string
	SKU            string
	Tags           []string
	Supplier       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewProduct creates a canonical product
func NewProduct(tenantID uuid.UUID, title string, price decimal.Decimal) (*Product, error) {
	if title == "" {
		return nil, ErrProductInvalidTitle
	}
	now := time.Now()
	return &Product{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Title:     title,
		Price:     price,
		Tags:      make([]string, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// FieldValue returns the value of a rule-addressable field. The second return
// is false for unknown field names.
func (p *Product) FieldValue(field string) (any, bool) {
	switch strings.ToLower(field) {
	case FieldTitle:
		return p.Title, true
	case FieldDescription:
		return p.Description, true
	case FieldPrice:
		return p.Price, true
	case FieldCompareAtPrice:
		return p.CompareAtPrice, true
	case FieldStock:
		return p.Stock, true
	case FieldCategory:
		return p.Category, true
	case FieldBrand:
		return p.Brand, true
	case FieldSKU:
		return p.SKU, true
	case FieldTags:
		return p.Tags, true
	case FieldSupplier:
		return p.Supplier, true
	default:
		return nil, false
	}
}

// SetStringField sets a text field by name
func (p *Product) SetStringField(field, value string) error {
	switch strings.ToLower(field) {
	case FieldTitle:
		p.Title = value
	case FieldDescription:
		p.Description = value
	case FieldCategory:
		p.Category = value
	case FieldBrand:
		p.Brand = value
	case FieldSKU:
		p.SKU = value
	case FieldSupplier:
		p.Supplier = value
	default:
		return ErrUnknownField
	}
	return nil
}

// SetNumericField sets a numeric field by name. Stock values are truncated to
// whole units.
func (p *Product) SetNumericField(field string, value decimal.Decimal) error {
	switch strings.ToLower(field) {
	case FieldPrice:
		p.Price = value
	case FieldCompareAtPrice:
		p.CompareAtPrice = value
	case FieldStock:
		p.Stock = int(value.IntPart())
	default:
		return ErrFieldNotNumeric
	}
	return nil
}

// NumericField returns a numeric field's value as a decimal
func (p *Product) NumericField(field string) (decimal.Decimal, error) {
	switch strings.ToLower(field) {
	case FieldPrice:
		return p.Price, nil
	case FieldCompareAtPrice:
		return p.CompareAtPrice, nil
	case FieldStock:
		return decimal.NewFromInt(int64(p.Stock)), nil
	default:
		return decimal.Zero, ErrFieldNotNumeric
	}
}

// AddTag adds a tag with set semantics (case-insensitive, no duplicates)
func (p *Product) AddTag(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	for _, existing := range p.Tags {
		if strings.EqualFold(existing, tag) {
			return
		}
	}
	p.Tags = append(p.Tags, tag)
}

// RemoveTag removes a tag (case-insensitive)
func (p *Product) RemoveTag(tag string) {
	for i, existing := range p.Tags {
		if strings.EqualFold(existing, tag) {
			p.Tags = append(p.Tags[:i], p.Tags[i+1:]...)
			return
		}
	}
}

// Clone returns a deep working copy. Feed rule actions mutate clones so that
// preview mode never touches the original.
func (p *Product) Clone() *Product {
	clone := *p
	clone.Tags = make([]string, len(p.Tags))
	copy(clone.Tags, p.Tags)
	return &clone
}

// Touch stamps the last write time
func (p *Product) Touch() {
	p.UpdatedAt = time.Now()
}

// ---------------------------------------------------------------------------
// ProductRepository Interface
// ---------------------------------------------------------------------------

// ProductRepository defines persistence for canonical products
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByTenant returns products for a tenant, capped at limit (0 = all)
	FindByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// UpdateFields persists only the named fields of a product.
	// Feed rule application uses this for minimal writes.
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error
}
