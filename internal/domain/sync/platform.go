package sync

import "strings"

// ---------------------------------------------------------------------------
// Platform represents a connected storefront platform
// ---------------------------------------------------------------------------

// Platform represents the type of storefront platform
type Platform string

const (
	// PlatformShopify represents Shopify stores
	PlatformShopify Platform = "SHOPIFY"
	// PlatformWooCommerce represents WooCommerce stores
	PlatformWooCommerce Platform = "WOOCOMMERCE"
	// PlatformPrestaShop represents PrestaShop stores
	PlatformPrestaShop Platform = "PRESTASHOP"
	// PlatformUnknown represents an unrecognized platform.
	// Requests for unknown platforms are rejected before signature checks.
	PlatformUnknown Platform = "UNKNOWN"
)

// IsValid returns true if the platform is a known, connectable platform
func (p Platform) IsValid() bool {
	switch p {
	case PlatformShopify, PlatformWooCommerce, PlatformPrestaShop:
		return true
	default:
		return false
	}
}

// String returns the string representation of Platform
func (p Platform) String() string {
	return string(p)
}

// ParsePlatform parses a platform identifier as sent by webhook callers
// (case-insensitive). Unrecognized values map to PlatformUnknown.
func ParsePlatform(s string) Platform {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shopify":
		return PlatformShopify
	case "woocommerce", "woo":
		return PlatformWooCommerce
	case "prestashop":
		return PlatformPrestaShop
	default:
		return PlatformUnknown
	}
}

// SignatureHeader returns the HTTP header carrying the webhook HMAC signature
// for this platform. Empty for unknown platforms.
func (p Platform) SignatureHeader() string {
	switch p {
	case PlatformShopify:
		return "X-Shopify-Hmac-Sha256"
	case PlatformWooCommerce:
		return "X-WC-Webhook-Signature"
	case PlatformPrestaShop:
		return "X-PrestaShop-Signature"
	default:
		return ""
	}
}

// TopicHeader returns the HTTP header carrying the webhook topic for this
// platform. Empty for platforms that embed the topic in the payload.
func (p Platform) TopicHeader() string {
	switch p {
	case PlatformShopify:
		return "X-Shopify-Topic"
	case PlatformWooCommerce:
		return "X-WC-Webhook-Topic"
	default:
		return ""
	}
}

// DeliveryIDHeader returns the HTTP header carrying the platform's unique
// delivery identifier, used for at-least-once deduplication.
func (p Platform) DeliveryIDHeader() string {
	switch p {
	case PlatformShopify:
		return "X-Shopify-Webhook-Id"
	case PlatformWooCommerce:
		return "X-WC-Webhook-ID"
	default:
		return ""
	}
}

// ---------------------------------------------------------------------------
// Topic represents a webhook event kind
// ---------------------------------------------------------------------------

// Topic is a platform webhook topic such as "orders/create" or
// "products.updated". Topics are grouped into families for routing; topics
// outside every family are accepted and routed to a no-op so that platform
// additions never produce errors.
type Topic string

// String returns the string representation of Topic
func (t Topic) String() string {
	return string(t)
}

// TopicFamily identifies which handler a topic is routed to
type TopicFamily string

const (
	// TopicFamilyOrders covers orders/* topics
	TopicFamilyOrders TopicFamily = "ORDERS"
	// TopicFamilyProducts covers products/* topics
	TopicFamilyProducts TopicFamily = "PRODUCTS"
	// TopicFamilyInventory covers topics containing "inventory"
	TopicFamilyInventory TopicFamily = "INVENTORY"
	// TopicFamilyUnknown covers everything else (routed to a no-op handler)
	TopicFamilyUnknown TopicFamily = "UNKNOWN"
)

// Family classifies the topic into a handler family. WooCommerce uses dotted
// topics ("order.updated") while Shopify uses slashes ("orders/updated"), so
// classification works on the normalized first segment.
func (t Topic) Family() TopicFamily {
	normalized := strings.ToLower(string(t))
	if strings.Contains(normalized, "inventory") {
		return TopicFamilyInventory
	}

	segment := normalized
	if idx := strings.IndexAny(normalized, "/."); idx >= 0 {
		segment = normalized[:idx]
	}

	switch segment {
	case "orders", "order":
		return TopicFamilyOrders
	case "products", "product":
		return TopicFamilyProducts
	default:
		return TopicFamilyUnknown
	}
}

// Action returns the sub-topic after the family prefix, e.g. "create" for
// "orders/create" or "updated" for "product.updated". Empty when the topic has
// no separator.
func (t Topic) Action() string {
	normalized := strings.ToLower(string(t))
	if idx := strings.IndexAny(normalized, "/."); idx >= 0 {
		return normalized[idx+1:]
	}
	return ""
}
