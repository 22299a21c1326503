package webhook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelsync/backend/internal/domain/sync"
)

func TestNormalizeOrder(t *testing.T) {
	t.Run("shopify order", func(t *testing.T) {
		order, err := NormalizeOrder(sync.PlatformShopify, []byte(shopifyOrderBody))
		require.NoError(t, err)

		assert.Equal(t, "820982911946154508", order.ExternalOrderID)
		assert.Equal(t, "#9999", order.OrderNumber)
		assert.Equal(t, "paid", order.Status)
		assert.Equal(t, "254.98", order.TotalAmount.String())
		assert.Equal(t, "jon@example.com", order.Customer.Email)
		assert.Equal(t, "Jon Snow", order.Customer.Name)
		require.Len(t, order.LineItems, 1)
		assert.Equal(t, "632910392", order.LineItems[0].ExternalProductID)
	})

	t.Run("woocommerce order", func(t *testing.T) {
		body := []byte(`{
			"id": 727,
			"number": "727",
			"status": "processing",
			"total": "39.00",
			"currency": "EUR",
			"billing": {"email": "maria@example.com", "first_name": "Maria", "last_name": "Lopez"},
			"shipping": {"address_1": "12 Rue de Lyon", "city": "Paris", "postcode": "75012", "country": "FR"},
			"line_items": [{"name": "Mug", "quantity": 3, "price": 13, "sku": "MUG-1", "product_id": 93}]
		}`)
		order, err := NormalizeOrder(sync.PlatformWooCommerce, body)
		require.NoError(t, err)

		assert.Equal(t, "727", order.ExternalOrderID)
		assert.Equal(t, "processing", order.Status)
		assert.Equal(t, "Maria Lopez", order.Customer.Name)
		assert.Equal(t, "12 Rue de Lyon, 75012, Paris, FR", order.ShippingAddress)
		require.Len(t, order.LineItems, 1)
		assert.Equal(t, "13", order.LineItems[0].Price.String())
	})

	t.Run("missing external ID rejects", func(t *testing.T) {
		_, err := NormalizeOrder(sync.PlatformShopify, []byte(`{"name": "#1"}`))
		assert.ErrorIs(t, err, sync.ErrMissingExternalID)
	})

	t.Run("unreadable payload rejects", func(t *testing.T) {
		_, err := NormalizeOrder(sync.PlatformWooCommerce, []byte("<xml/>"))
		assert.ErrorIs(t, err, sync.ErrPayloadUnreadable)
	})

	t.Run("unknown platform rejects", func(t *testing.T) {
		_, err := NormalizeOrder(sync.PlatformUnknown, []byte(`{"id": 1}`))
		assert.ErrorIs(t, err, sync.ErrUnknownPlatform)
	})
}

func TestNormalizeProduct(t *testing.T) {
	t.Run("shopify product sums variant stock", func(t *testing.T) {
		body := []byte(`{
			"id": 632910392,
			"title": "IPod Nano",
			"body_html": "<p>Green</p>",
			"product_type": "electronics",
			"tags": "audio, portable, ",
			"updated_at": "2026-02-10T12:00:00Z",
			"variants": [
				{"price": "199.00", "sku": "IPOD-N-G", "inventory_quantity": 10},
				{"price": "199.00", "sku": "IPOD-N-B", "inventory_quantity": 4}
			]
		}`)
		product, err := NormalizeProduct(sync.PlatformShopify, body)
		require.NoError(t, err)

		assert.Equal(t, "632910392", product.ExternalProductID)
		assert.Equal(t, "199", product.Price.String())
		assert.Equal(t, "IPOD-N-G", product.SKU)
		assert.Equal(t, 14, product.Stock)
		assert.Equal(t, []string{"audio", "portable"}, product.Tags)
		assert.Equal(t, time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC), product.EventTime)
	})

	t.Run("woocommerce product", func(t *testing.T) {
		body := []byte(`{
			"id": 93,
			"name": "Mug",
			"description": "Ceramic",
			"regular_price": "13.00",
			"stock_quantity": 25,
			"sku": "MUG-1",
			"date_modified_gmt": "2026-02-10T12:00:00",
			"categories": [{"name": "kitchen"}],
			"tags": [{"name": "ceramic"}, {"name": ""}]
		}`)
		product, err := NormalizeProduct(sync.PlatformWooCommerce, body)
		require.NoError(t, err)

		assert.Equal(t, "93", product.ExternalProductID)
		assert.Equal(t, "13", product.Price.String(), "regular_price backs an empty price")
		assert.Equal(t, 25, product.Stock)
		assert.Equal(t, "kitchen", product.Category)
		assert.Equal(t, []string{"ceramic"}, product.Tags)
		assert.False(t, product.EventTime.IsZero())
	})

	t.Run("prestashop uses the woocommerce shape", func(t *testing.T) {
		product, err := NormalizeProduct(sync.PlatformPrestaShop, []byte(`{"id": 7, "name": "Chair"}`))
		require.NoError(t, err)
		assert.Equal(t, "7", product.ExternalProductID)
		assert.Equal(t, "Chair", product.Title)
	})
}

func TestNormalizeInventory(t *testing.T) {
	t.Run("shopify inventory level", func(t *testing.T) {
		inv, err := NormalizeInventory(sync.PlatformShopify, []byte(`{"inventory_item_id": 808950810, "available": 6}`))
		require.NoError(t, err)
		assert.Equal(t, "808950810", inv.ExternalProductID)
		assert.Equal(t, 6, inv.Available)
	})

	t.Run("woocommerce stock quantity", func(t *testing.T) {
		inv, err := NormalizeInventory(sync.PlatformWooCommerce, []byte(`{"id": 93, "stock_quantity": 0}`))
		require.NoError(t, err)
		assert.Equal(t, "93", inv.ExternalProductID)
		assert.Zero(t, inv.Available)
	})

	t.Run("missing identifier rejects", func(t *testing.T) {
		_, err := NormalizeInventory(sync.PlatformShopify, []byte(`{"available": 3}`))
		assert.ErrorIs(t, err, sync.ErrMissingExternalID)
	})
}
