package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	t.Run("creates order with defaults", func(t *testing.T) {
		order, err := NewOrder(uuid.New(), uuid.New(), "shopify-1001")
		require.NoError(t, err)

		assert.Equal(t, OrderStatusCreated, order.Status)
		assert.Equal(t, "EUR", order.Currency)
		assert.NotNil(t, order.LineItems)
	})

	t.Run("rejects missing external ID", func(t *testing.T) {
		_, err := NewOrder(uuid.New(), uuid.New(), "")
		assert.ErrorIs(t, err, ErrOrderMissingExternalID)
	})
}

func TestOrder_Transitions(t *testing.T) {
	newOrder := func(t *testing.T) *Order {
		t.Helper()
		order, err := NewOrder(uuid.New(), uuid.New(), "ext-1")
		require.NoError(t, err)
		return order
	}

	t.Run("created to paid to refunded", func(t *testing.T) {
		order := newOrder(t)
		require.NoError(t, order.MarkPaid())
		assert.Equal(t, OrderStatusPaid, order.Status)

		require.NoError(t, order.MarkRefunded())
		assert.Equal(t, OrderStatusRefunded, order.Status)
	})

	t.Run("created to cancelled", func(t *testing.T) {
		order := newOrder(t)
		require.NoError(t, order.MarkCancelled())
		assert.Equal(t, OrderStatusCancelled, order.Status)
	})

	t.Run("terminal orders reject further transitions", func(t *testing.T) {
		order := newOrder(t)
		require.NoError(t, order.MarkCancelled())

		assert.ErrorIs(t, order.MarkPaid(), ErrOrderTerminal)
		assert.ErrorIs(t, order.MarkRefunded(), ErrOrderTerminal)
		assert.ErrorIs(t, order.MarkCancelled(), ErrOrderTerminal)
		assert.Equal(t, OrderStatusCancelled, order.Status)
	})
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.False(t, OrderStatusCreated.IsTerminal())
	assert.False(t, OrderStatusPaid.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.True(t, OrderStatusRefunded.IsTerminal())
}

func TestCustomer(t *testing.T) {
	t.Run("rejects missing external ID", func(t *testing.T) {
		_, err := NewCustomer(uuid.New(), uuid.New(), "")
		assert.ErrorIs(t, err, ErrCustomerMissingExternalID)
	})

	t.Run("apply contact updates fields", func(t *testing.T) {
		customer, err := NewCustomer(uuid.New(), uuid.New(), "cust-9")
		require.NoError(t, err)

		customer.ApplyContact("jo@example.com", "Jo Doe", "+33600000000")
		assert.Equal(t, "jo@example.com", customer.Email)
		assert.Equal(t, "Jo Doe", customer.Name)
		assert.Equal(t, "+33600000000", customer.Phone)
	})
}
