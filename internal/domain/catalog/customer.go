package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCustomerNotFound          = errors.New("catalog: customer not found")
	ErrCustomerMissingExternalID = errors.New("catalog: customer missing external ID")
)

// Customer is a canonical customer imported from a platform. Customers are
// keyed by (tenant, external customer ID) so repeated imports upsert instead
// of duplicating.
type Customer struct {
	ID                 uuid.UUID
	TenantID           uuid.UUID
	IntegrationID      uuid.UUID
	ExternalCustomerID string
	Email              string
	Name               string
	Phone              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewCustomer creates a canonical customer
func NewCustomer(tenantID, integrationID uuid.UUID, externalCustomerID string) (*Customer, error) {
	if externalCustomerID == "" {
		return nil, ErrCustomerMissingExternalID
	}
	now := time.Now()
	return &Customer{
		ID:                 uuid.New(),
		TenantID:           tenantID,
		IntegrationID:      integrationID,
		ExternalCustomerID: externalCustomerID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// ApplyContact updates the contact fields from a platform pull
func (c *Customer) ApplyContact(email, name, phone string) {
	c.Email = email
	c.Name = name
	c.Phone = phone
	c.UpdatedAt = time.Now()
}

// CustomerRepository defines persistence for canonical customers
type CustomerRepository interface {
	// FindByExternalID finds a customer by (tenant, external customer ID)
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalCustomerID string) (*Customer, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error
}
