package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/channelsync/backend/internal/domain/sync"
)

// maxResponseSize is the maximum allowed platform API response size (10MB)
const maxResponseSize = 10 * 1024 * 1024

const shopifyAPIVersion = "2024-01"

// ShopifyAdapter implements StorefrontConnector against the Shopify Admin
// REST API. The shop domain comes from the integration's store identifier;
// the access token is resolved through the credential resolver.
type ShopifyAdapter struct {
	resolver   CredentialResolver
	httpClient *http.Client
}

// NewShopifyAdapter creates a new Shopify adapter
func NewShopifyAdapter(resolver CredentialResolver) *ShopifyAdapter {
	return &ShopifyAdapter{
		resolver: resolver,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Platform returns the platform this connector handles
func (a *ShopifyAdapter) Platform() sync.Platform {
	return sync.PlatformShopify
}

// TestConnection verifies the integration's credentials against the shop endpoint
func (a *ShopifyAdapter) TestConnection(ctx context.Context, integration *sync.Integration) error {
	_, err := a.doRequest(ctx, integration, http.MethodGet, "/shop.json", nil, nil)
	return err
}

// PushProducts creates or updates products on Shopify. Items without an
// external product ID fail individually; the batch continues.
func (a *ShopifyAdapter) PushProducts(ctx context.Context, integration *sync.Integration, products []sync.ProductPush) (*sync.PushResult, error) {
	result := &sync.PushResult{}
	for _, product := range products {
		if product.ExternalProductID == "" {
			result.Failed++
			result.Errors = append(result.Errors, "product has no external ID")
			continue
		}

		stock := product.Stock
		envelope := shopifyProductEnvelope{
			Product: shopifyProduct{
				Title:       product.Title,
				BodyHTML:    product.Description,
				ProductType: product.Category,
				Tags:        strings.Join(product.Tags, ", "),
				Variants: []shopifyVariant{{
					Price:             product.Price.StringFixed(2),
					CompareAtPrice:    compareAtOrEmpty(product),
					SKU:               product.SKU,
					InventoryQuantity: &stock,
				}},
			},
		}

		path := fmt.Sprintf("/products/%s.json", product.ExternalProductID)
		if _, err := a.doRequest(ctx, integration, http.MethodPut, path, nil, envelope); err != nil {
			if !isItemLevel(err) {
				return result, err
			}
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("product %s: %v", product.ExternalProductID, err))
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// PushPrices updates product prices on Shopify
func (a *ShopifyAdapter) PushPrices(ctx context.Context, integration *sync.Integration, products []sync.ProductPush) (*sync.PushResult, error) {
	result := &sync.PushResult{}
	for _, product := range products {
		if product.ExternalProductID == "" {
			result.Failed++
			result.Errors = append(result.Errors, "product has no external ID")
			continue
		}

		envelope := shopifyProductEnvelope{
			Product: shopifyProduct{
				Variants: []shopifyVariant{{
					Price:          product.Price.StringFixed(2),
					CompareAtPrice: compareAtOrEmpty(product),
				}},
			},
		}

		path := fmt.Sprintf("/products/%s.json", product.ExternalProductID)
		if _, err := a.doRequest(ctx, integration, http.MethodPut, path, nil, envelope); err != nil {
			if !isItemLevel(err) {
				return result, err
			}
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("product %s: %v", product.ExternalProductID, err))
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// PushStock updates stock levels on Shopify
func (a *ShopifyAdapter) PushStock(ctx context.Context, integration *sync.Integration, levels []sync.StockPush) (*sync.PushResult, error) {
	result := &sync.PushResult{}
	for _, level := range levels {
		if level.ExternalProductID == "" {
			result.Failed++
			result.Errors = append(result.Errors, "stock level has no external product ID")
			continue
		}

		available := level.Available
		envelope := shopifyProductEnvelope{
			Product: shopifyProduct{
				Variants: []shopifyVariant{{
					InventoryQuantity: &available,
				}},
			},
		}

		path := fmt.Sprintf("/products/%s.json", level.ExternalProductID)
		if _, err := a.doRequest(ctx, integration, http.MethodPut, path, nil, envelope); err != nil {
			if !isItemLevel(err) {
				return result, err
			}
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("product %s: %v", level.ExternalProductID, err))
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// PushTracking sends fulfillment tracking to Shopify
func (a *ShopifyAdapter) PushTracking(ctx context.Context, integration *sync.Integration, tracking []sync.TrackingPush) (*sync.PushResult, error) {
	result := &sync.PushResult{}
	for _, item := range tracking {
		if item.ExternalOrderID == "" {
			result.Failed++
			result.Errors = append(result.Errors, "tracking has no external order ID")
			continue
		}

		envelope := shopifyFulfillmentEnvelope{
			Fulfillment: shopifyFulfillment{
				TrackingNumber:  item.TrackingNumber,
				TrackingCompany: item.Carrier,
				NotifyCustomer:  true,
			},
		}

		path := fmt.Sprintf("/orders/%s/fulfillments.json", item.ExternalOrderID)
		if _, err := a.doRequest(ctx, integration, http.MethodPost, path, nil, envelope); err != nil {
			if !isItemLevel(err) {
				return result, err
			}
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("order %s: %v", item.ExternalOrderID, err))
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// PullOrders pulls orders updated since the given time. Payloads are
// returned raw so downstream normalization sees the platform shape.
func (a *ShopifyAdapter) PullOrders(ctx context.Context, integration *sync.Integration, since time.Time) ([]sync.RemoteOrder, error) {
	query := url.Values{}
	query.Set("updated_at_min", since.UTC().Format(time.RFC3339))
	query.Set("status", "any")
	query.Set("limit", "250")

	body, err := a.doRequest(ctx, integration, http.MethodGet, "/orders.json", query, nil)
	if err != nil {
		return nil, err
	}

	var list shopifyOrderList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: invalid orders response: %v", sync.ErrConnectorRequestFailed, err)
	}

	orders := make([]sync.RemoteOrder, 0, len(list.Orders))
	for _, raw := range list.Orders {
		var stub shopifyOrderStub
		if err := json.Unmarshal(raw, &stub); err != nil || stub.ID.String() == "" {
			continue
		}
		createdAt, _ := time.Parse(time.RFC3339, stub.CreatedAt)
		orders = append(orders, sync.RemoteOrder{
			ExternalOrderID: stub.ID.String(),
			Payload:         raw,
			CreatedAt:       createdAt,
		})
	}
	return orders, nil
}

// PullCustomers pulls customers updated since the given time
func (a *ShopifyAdapter) PullCustomers(ctx context.Context, integration *sync.Integration, since time.Time) ([]sync.RemoteCustomer, error) {
	query := url.Values{}
	query.Set("updated_at_min", since.UTC().Format(time.RFC3339))
	query.Set("limit", "250")

	body, err := a.doRequest(ctx, integration, http.MethodGet, "/customers.json", query, nil)
	if err != nil {
		return nil, err
	}

	var list shopifyCustomerList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: invalid customers response: %v", sync.ErrConnectorRequestFailed, err)
	}

	customers := make([]sync.RemoteCustomer, 0, len(list.Customers))
	for _, c := range list.Customers {
		if c.ID.String() == "" {
			continue
		}
		name := strings.TrimSpace(c.FirstName + " " + c.LastName)
		customers = append(customers, sync.RemoteCustomer{
			ExternalCustomerID: c.ID.String(),
			Email:              c.Email,
			Name:               name,
			Phone:              c.Phone,
		})
	}
	return customers, nil
}

// doRequest performs one Admin API call and maps HTTP failures to
// connector error classes.
func (a *ShopifyAdapter) doRequest(ctx context.Context, integration *sync.Integration, method, path string, query url.Values, payload any) ([]byte, error) {
	creds, err := a.resolver.Resolve(ctx, integration.CredentialsRef)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sync.ErrConnectorAuthFailed, err)
	}

	endpoint := fmt.Sprintf("https://%s/admin/api/%s%s", integration.StoreIdentifier, shopifyAPIVersion, path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		jsonBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("shopify: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", creds.AccessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sync.ErrConnectorUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to read response: %w", err)
	}

	if err := classifyStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return body, nil
}

func compareAtOrEmpty(product sync.ProductPush) string {
	if product.CompareAtPrice.IsPositive() {
		return product.CompareAtPrice.StringFixed(2)
	}
	return ""
}

// classifyStatus maps an HTTP status to a connector error class
func classifyStatus(status int) error {
	switch {
	case status < 400:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return sync.ErrConnectorAuthFailed
	case status == http.StatusTooManyRequests:
		return sync.ErrConnectorRateLimited
	case status >= 500:
		return sync.ErrConnectorUnavailable
	default:
		return fmt.Errorf("%w: HTTP %d", sync.ErrConnectorRequestFailed, status)
	}
}

// isItemLevel reports whether an error affects only the current item rather
// than the whole batch. 4xx responses other than auth are item-level.
func isItemLevel(err error) bool {
	return errors.Is(err, sync.ErrConnectorRequestFailed)
}

// Ensure ShopifyAdapter implements StorefrontConnector
var _ sync.StorefrontConnector = (*ShopifyAdapter)(nil)
