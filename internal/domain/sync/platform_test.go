package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		input    string
		expected Platform
	}{
		{"shopify", PlatformShopify},
		{"Shopify", PlatformShopify},
		{" SHOPIFY ", PlatformShopify},
		{"woocommerce", PlatformWooCommerce},
		{"woo", PlatformWooCommerce},
		{"prestashop", PlatformPrestaShop},
		{"magento", PlatformUnknown},
		{"", PlatformUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParsePlatform(tt.input), "input %q", tt.input)
	}
}

func TestPlatform_IsValid(t *testing.T) {
	assert.True(t, PlatformShopify.IsValid())
	assert.True(t, PlatformWooCommerce.IsValid())
	assert.True(t, PlatformPrestaShop.IsValid())
	assert.False(t, PlatformUnknown.IsValid())
	assert.False(t, Platform("MAGENTO").IsValid())
}

func TestPlatform_Headers(t *testing.T) {
	assert.Equal(t, "X-Shopify-Hmac-Sha256", PlatformShopify.SignatureHeader())
	assert.Equal(t, "X-WC-Webhook-Signature", PlatformWooCommerce.SignatureHeader())
	assert.Equal(t, "X-PrestaShop-Signature", PlatformPrestaShop.SignatureHeader())
	assert.Empty(t, PlatformUnknown.SignatureHeader())

	assert.Equal(t, "X-Shopify-Topic", PlatformShopify.TopicHeader())
	assert.Equal(t, "X-WC-Webhook-Topic", PlatformWooCommerce.TopicHeader())
	assert.Empty(t, PlatformPrestaShop.TopicHeader())

	assert.Equal(t, "X-Shopify-Webhook-Id", PlatformShopify.DeliveryIDHeader())
	assert.Equal(t, "X-WC-Webhook-ID", PlatformWooCommerce.DeliveryIDHeader())
	assert.Empty(t, PlatformPrestaShop.DeliveryIDHeader())
}

func TestTopic_Family(t *testing.T) {
	tests := []struct {
		topic    Topic
		expected TopicFamily
	}{
		{"orders/create", TopicFamilyOrders},
		{"orders/updated", TopicFamilyOrders},
		{"order.created", TopicFamilyOrders},
		{"products/update", TopicFamilyProducts},
		{"product.deleted", TopicFamilyProducts},
		{"inventory_levels/update", TopicFamilyInventory},
		{"product.inventory_updated", TopicFamilyInventory},
		{"customers/create", TopicFamilyUnknown},
		{"app/uninstalled", TopicFamilyUnknown},
		{"", TopicFamilyUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.topic.Family(), "topic %q", tt.topic)
	}
}

func TestTopic_Action(t *testing.T) {
	assert.Equal(t, "create", Topic("orders/create").Action())
	assert.Equal(t, "updated", Topic("product.updated").Action())
	assert.Empty(t, Topic("ping").Action())
}
