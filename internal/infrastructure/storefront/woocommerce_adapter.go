package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/channelsync/backend/internal/domain/sync"
)

// WooCommerceAdapter implements StorefrontConnector against the WooCommerce
// REST API (wc/v3). The store identifier is the site URL; authentication is
// HTTP basic with the consumer key/secret pair.
type WooCommerceAdapter struct {
	resolver   CredentialResolver
	httpClient *http.Client
}

// NewWooCommerceAdapter creates a new WooCommerce adapter
func NewWooCommerceAdapter(resolver CredentialResolver) *WooCommerceAdapter {
	return &WooCommerceAdapter{
		resolver: resolver,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Platform returns the platform this connector handles
func (a *WooCommerceAdapter) Platform() sync.Platform {
	return sync.PlatformWooCommerce
}

// TestConnection verifies the integration's credentials against the system
// status endpoint
func (a *WooCommerceAdapter) TestConnection(ctx context.Context, integration *sync.Integration) error {
	_, err := a.doRequest(ctx, integration, http.MethodGet, "/system_status", nil, nil)
	return err
}

// PushProducts creates or updates products on WooCommerce
func (a *WooCommerceAdapter) PushProducts(ctx context.Context, integration *sync.Integration, products []sync.ProductPush) (*sync.PushResult, error) {
	result := &sync.PushResult{}
	for _, product := range products {
		if product.ExternalProductID == "" {
			result.Failed++
			result.Errors = append(result.Errors, "product has no external ID")
			continue
		}

		stock := product.Stock
		manageStock := true
		update := wooProductUpdate{
			Name:          product.Title,
			Description:   product.Description,
			RegularPrice:  product.Price.StringFixed(2),
			SKU:           product.SKU,
			StockQuantity: &stock,
			ManageStock:   &manageStock,
		}
		if product.CompareAtPrice.IsPositive() {
			// WooCommerce models discounts inverted relative to Shopify:
			// regular_price is the pre-discount price.
			update.RegularPrice = product.CompareAtPrice.StringFixed(2)
			update.SalePrice = product.Price.StringFixed(2)
		}
		if product.Category != "" {
			update.Categories = []wooTermRef{{Name: product.Category}}
		}
		for _, tag := range product.Tags {
			update.Tags = append(update.Tags, wooTermRef{Name: tag})
		}

		path := "/products/" + product.ExternalProductID
		if _, err := a.doRequest(ctx, integration, http.MethodPut, path, nil, update); err != nil {
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

// PushPrices updates product prices on WooCommerce
func (a *WooCommerceAdapter) PushPrices(ctx context.Context, integration *sync.Integration, products []sync.ProductPush) (*sync.PushResult, error) {
	result := &sync.PushResult{}
	for _, product := range products {
		if product.ExternalProductID == "" {
			result.Failed++
			result.Errors = append(result.Errors, "product has no external ID")
			continue
		}

		update := wooProductUpdate{
			RegularPrice: product.Price.StringFixed(2),
		}
		if product.CompareAtPrice.IsPositive() {
			update.RegularPrice = product.CompareAtPrice.StringFixed(2)
			update.SalePrice = product.Price.StringFixed(2)
		}

		path := "/products/" + product.ExternalProductID
		if _, err := a.doRequest(ctx, integration, http.MethodPut, path, nil, update); err != nil {
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

// PushStock updates stock levels on WooCommerce
func (a *WooCommerceAdapter) PushStock(ctx context.Context, integration *sync.Integration, levels []sync.StockPush) (*sync.PushResult, error) {
	result := &sync.PushResult{}
	for _, level := range levels {
		if level.ExternalProductID == "" {
			result.Failed++
			result.Errors = append(result.Errors, "stock level has no external product ID")
			continue
		}

		available := level.Available
		manageStock := true
		update := wooProductUpdate{
			StockQuantity: &available,
			ManageStock:   &manageStock,
		}

		path := "/products/" + level.ExternalProductID
		if _, err := a.doRequest(ctx, integration, http.MethodPut, path, nil, update); err != nil {
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

// PushTracking sends fulfillment tracking via the shipment tracking endpoint
func (a *WooCommerceAdapter) PushTracking(ctx context.Context, integration *sync.Integration, tracking []sync.TrackingPush) (*sync.PushResult, error) {
	result := &sync.PushResult{}
	for _, item := range tracking {
		if item.ExternalOrderID == "" {
			result.Failed++
			result.Errors = append(result.Errors, "tracking has no external order ID")
			continue
		}

		payload := wooShipmentTracking{
			TrackingProvider: item.Carrier,
			TrackingNumber:   item.TrackingNumber,
		}

		path := fmt.Sprintf("/orders/%s/shipment-trackings", item.ExternalOrderID)
		if _, err := a.doRequest(ctx, integration, http.MethodPost, path, nil, payload); err != nil {
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

// PullOrders pulls orders modified since the given time
func (a *WooCommerceAdapter) PullOrders(ctx context.Context, integration *sync.Integration, since time.Time) ([]sync.RemoteOrder, error) {
	query := url.Values{}
	query.Set("modified_after", since.UTC().Format(time.RFC3339))
	query.Set("per_page", "100")

	body, err := a.doRequest(ctx, integration, http.MethodGet, "/orders", query, nil)
	if err != nil {
		return nil, err
	}

	var rawOrders []json.RawMessage
	if err := json.Unmarshal(body, &rawOrders); err != nil {
		return nil, fmt.Errorf("%w: invalid orders response: %v", sync.ErrConnectorRequestFailed, err)
	}

	orders := make([]sync.RemoteOrder, 0, len(rawOrders))
	for _, raw := range rawOrders {
		var stub wooOrderStub
		if err := json.Unmarshal(raw, &stub); err != nil || stub.ID.String() == "" {
			continue
		}
		createdAt, _ := time.Parse("2006-01-02T15:04:05", stub.DateCreated)
		orders = append(orders, sync.RemoteOrder{
			ExternalOrderID: stub.ID.String(),
			Payload:         raw,
			CreatedAt:       createdAt,
		})
	}
	return orders, nil
}

// PullCustomers pulls customers; WooCommerce has no modified-after filter on
// this endpoint so the window is advisory only.
func (a *WooCommerceAdapter) PullCustomers(ctx context.Context, integration *sync.Integration, since time.Time) ([]sync.RemoteCustomer, error) {
	query := url.Values{}
	query.Set("per_page", "100")
	query.Set("orderby", "registered_date")
	query.Set("order", "desc")

	body, err := a.doRequest(ctx, integration, http.MethodGet, "/customers", query, nil)
	if err != nil {
		return nil, err
	}

	var wooCustomers []wooCustomer
	if err := json.Unmarshal(body, &wooCustomers); err != nil {
		return nil, fmt.Errorf("%w: invalid customers response: %v", sync.ErrConnectorRequestFailed, err)
	}

	customers := make([]sync.RemoteCustomer, 0, len(wooCustomers))
	for _, c := range wooCustomers {
		if c.ID.String() == "" {
			continue
		}
		name := strings.TrimSpace(c.FirstName + " " + c.LastName)
		customers = append(customers, sync.RemoteCustomer{
			ExternalCustomerID: c.ID.String(),
			Email:              c.Email,
			Name:               name,
			Phone:              c.Billing.Phone,
		})
	}
	return customers, nil
}

// doRequest performs one REST API call and maps HTTP failures to connector
// error classes
func (a *WooCommerceAdapter) doRequest(ctx context.Context, integration *sync.Integration, method, path string, query url.Values, payload any) ([]byte, error) {
	creds, err := a.resolver.Resolve(ctx, integration.CredentialsRef)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sync.ErrConnectorAuthFailed, err)
	}

	base := strings.TrimSuffix(integration.StoreIdentifier, "/")
	if !strings.HasPrefix(base, "http") {
		base = "https://" + base
	}
	endpoint := base + "/wp-json/wc/v3" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		jsonBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("woocommerce: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("woocommerce: failed to create request: %w", err)
	}
	req.SetBasicAuth(creds.ConsumerKey, creds.ConsumerSecret)
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
		return nil, fmt.Errorf("woocommerce: failed to read response: %w", err)
	}

	if err := classifyStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return body, nil
}

// Ensure WooCommerceAdapter implements StorefrontConnector
var _ sync.StorefrontConnector = (*WooCommerceAdapter)(nil)
