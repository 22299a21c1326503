package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/channelsync/backend/internal/domain/sync"
)

// MockIntegrationRepository is a mock implementation of sync.IntegrationRepository
type MockIntegrationRepository struct {
	mock.Mock
}

func (m *MockIntegrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*sync.Integration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.Integration), args.Error(1)
}

func (m *MockIntegrationRepository) FindByStore(ctx context.Context, platform sync.Platform, storeIdentifier string) (*sync.Integration, error) {
	args := m.Called(ctx, platform, storeIdentifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.Integration), args.Error(1)
}

func (m *MockIntegrationRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]sync.Integration, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]sync.Integration), args.Error(1)
}

func (m *MockIntegrationRepository) FindEligible(ctx context.Context, tenantID uuid.UUID, platforms []sync.Platform) ([]sync.Integration, error) {
	args := m.Called(ctx, tenantID, platforms)
	return args.Get(0).([]sync.Integration), args.Error(1)
}

func (m *MockIntegrationRepository) Save(ctx context.Context, integration *sync.Integration) error {
	args := m.Called(ctx, integration)
	return args.Error(0)
}

func (m *MockIntegrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockConfigurationRepository is a mock implementation of sync.SyncConfigurationRepository
type MockConfigurationRepository struct {
	mock.Mock
}

func (m *MockConfigurationRepository) FindByIntegration(ctx context.Context, integrationID uuid.UUID) (*sync.SyncConfiguration, error) {
	args := m.Called(ctx, integrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.SyncConfiguration), args.Error(1)
}

func (m *MockConfigurationRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]sync.SyncConfiguration, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]sync.SyncConfiguration), args.Error(1)
}

func (m *MockConfigurationRepository) FindActive(ctx context.Context) ([]sync.SyncConfiguration, error) {
	args := m.Called(ctx)
	return args.Get(0).([]sync.SyncConfiguration), args.Error(1)
}

func (m *MockConfigurationRepository) Save(ctx context.Context, cfg *sync.SyncConfiguration) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockConfigurationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockWebhookEventRepository is a mock implementation of sync.WebhookEventRepository
type MockWebhookEventRepository struct {
	mock.Mock
}

func (m *MockWebhookEventRepository) Append(ctx context.Context, event *sync.WebhookEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockWebhookEventRepository) RecordResult(ctx context.Context, id uuid.UUID, result string) error {
	args := m.Called(ctx, id, result)
	return args.Error(0)
}

func (m *MockWebhookEventRepository) FindByIntegration(ctx context.Context, integrationID uuid.UUID, limit int) ([]sync.WebhookEvent, error) {
	args := m.Called(ctx, integrationID, limit)
	return args.Get(0).([]sync.WebhookEvent), args.Error(1)
}

// MockDeduplicator is a mock implementation of DeliveryDeduplicator
type MockDeduplicator struct {
	mock.Mock
}

func (m *MockDeduplicator) MarkProcessed(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, deliveryID, ttl)
	return args.Bool(0), args.Error(1)
}

// MockTopicHandler is a mock implementation of TopicHandler
type MockTopicHandler struct {
	mock.Mock
}

func (m *MockTopicHandler) Handle(ctx context.Context, evt *EventContext) (string, error) {
	args := m.Called(ctx, evt)
	return args.String(0), args.Error(1)
}

// ---------------------------------------------------------------------------

type gatewayFixture struct {
	integrations *MockIntegrationRepository
	configs      *MockConfigurationRepository
	events       *MockWebhookEventRepository
	dedup        *MockDeduplicator
	orders       *MockTopicHandler
	products     *MockTopicHandler
	inventory    *MockTopicHandler
	gateway      *GatewayService
}

func newGatewayFixture() *gatewayFixture {
	f := &gatewayFixture{
		integrations: new(MockIntegrationRepository),
		configs:      new(MockConfigurationRepository),
		events:       new(MockWebhookEventRepository),
		dedup:        new(MockDeduplicator),
		orders:       new(MockTopicHandler),
		products:     new(MockTopicHandler),
		inventory:    new(MockTopicHandler),
	}
	f.gateway = NewGatewayService(
		f.integrations, f.configs, f.events, f.dedup,
		f.orders, f.products, f.inventory, zap.NewNop(),
	)
	return f
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func shopifyRequest(secret string, body []byte, overrides map[string]string) *InboundWebhook {
	headers := map[string]string{
		"X-Shopify-Hmac-Sha256": signBody(secret, body),
		"X-Shopify-Topic":       "orders/create",
		"X-Shopify-Webhook-Id":  "delivery-1",
		"X-Shopify-Shop-Domain": "acme.myshopify.com",
	}
	for k, v := range overrides {
		headers[k] = v
	}
	return &InboundWebhook{
		PlatformHint: "shopify",
		StoreID:      "acme.myshopify.com",
		Header:       func(name string) string { return headers[name] },
		Body:         body,
	}
}

func TestGatewayService_HandleInbound(t *testing.T) {
	ctx := context.Background()
	secret := "shhh"
	body := []byte(`{"id": 1001}`)

	newIntegration := func(t *testing.T) *sync.Integration {
		t.Helper()
		integration, err := sync.NewIntegration(uuid.New(), sync.PlatformShopify, "acme.myshopify.com", secret)
		require.NoError(t, err)
		return integration
	}

	t.Run("accepts verified delivery and records outcome", func(t *testing.T) {
		f := newGatewayFixture()
		integration := newIntegration(t)
		config, err := sync.NewSyncConfiguration(integration.TenantID, integration.ID)
		require.NoError(t, err)

		f.integrations.On("FindByStore", ctx, sync.PlatformShopify, "acme.myshopify.com").Return(integration, nil)
		f.dedup.On("MarkProcessed", ctx, integration.ID.String()+":delivery-1", DefaultDedupTTL).Return(true, nil)
		f.configs.On("FindByIntegration", ctx, integration.ID).Return(config, nil)
		f.events.On("Append", ctx, mock.AnythingOfType("*sync.WebhookEvent")).Return(nil)
		f.orders.On("Handle", ctx, mock.AnythingOfType("*webhook.EventContext")).Return("order created", nil)
		f.events.On("RecordResult", ctx, mock.AnythingOfType("uuid.UUID"), "order created").Return(nil)

		receipt, err := f.gateway.HandleInbound(ctx, shopifyRequest(secret, body, nil))

		require.NoError(t, err)
		assert.Equal(t, sync.Topic("orders/create"), receipt.Topic)
		assert.Equal(t, "order created", receipt.Result)
		assert.False(t, receipt.Duplicate)
		f.events.AssertExpectations(t)
		f.orders.AssertExpectations(t)
	})

	t.Run("rejects missing signature before any side effect", func(t *testing.T) {
		f := newGatewayFixture()
		integration := newIntegration(t)
		f.integrations.On("FindByStore", ctx, sync.PlatformShopify, "acme.myshopify.com").Return(integration, nil)

		req := shopifyRequest(secret, body, map[string]string{"X-Shopify-Hmac-Sha256": ""})
		_, err := f.gateway.HandleInbound(ctx, req)

		assert.ErrorIs(t, err, sync.ErrMissingSignature)
		f.dedup.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
		f.events.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("rejects tampered body", func(t *testing.T) {
		f := newGatewayFixture()
		integration := newIntegration(t)
		f.integrations.On("FindByStore", ctx, sync.PlatformShopify, "acme.myshopify.com").Return(integration, nil)

		req := shopifyRequest(secret, body, nil)
		req.Body = []byte(`{"id": 9999}`)
		_, err := f.gateway.HandleInbound(ctx, req)

		assert.ErrorIs(t, err, sync.ErrInvalidSignature)
		f.events.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown platform", func(t *testing.T) {
		f := newGatewayFixture()
		req := &InboundWebhook{
			PlatformHint: "magento",
			StoreID:      "store",
			Header:       func(string) string { return "" },
			Body:         body,
		}
		_, err := f.gateway.HandleInbound(ctx, req)
		assert.ErrorIs(t, err, sync.ErrUnknownPlatform)
	})

	t.Run("skips duplicate delivery without an audit row", func(t *testing.T) {
		f := newGatewayFixture()
		integration := newIntegration(t)
		f.integrations.On("FindByStore", ctx, sync.PlatformShopify, "acme.myshopify.com").Return(integration, nil)
		f.dedup.On("MarkProcessed", ctx, mock.Anything, DefaultDedupTTL).Return(false, nil)

		receipt, err := f.gateway.HandleInbound(ctx, shopifyRequest(secret, body, nil))

		require.NoError(t, err)
		assert.True(t, receipt.Duplicate)
		f.events.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		f.orders.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("falls back to default configuration", func(t *testing.T) {
		f := newGatewayFixture()
		integration := newIntegration(t)
		f.integrations.On("FindByStore", ctx, sync.PlatformShopify, "acme.myshopify.com").Return(integration, nil)
		f.dedup.On("MarkProcessed", ctx, mock.Anything, DefaultDedupTTL).Return(true, nil)
		f.configs.On("FindByIntegration", ctx, integration.ID).Return(nil, sync.ErrConfigurationNotFound)
		f.events.On("Append", ctx, mock.Anything).Return(nil)
		f.orders.On("Handle", ctx, mock.MatchedBy(func(evt *EventContext) bool {
			return evt.Config != nil && evt.Config.Modules.Orders
		})).Return("order created", nil)
		f.events.On("RecordResult", ctx, mock.Anything, "order created").Return(nil)

		_, err := f.gateway.HandleInbound(ctx, shopifyRequest(secret, body, nil))
		require.NoError(t, err)
		f.orders.AssertExpectations(t)
	})

	t.Run("routes unknown topics to the noop handler", func(t *testing.T) {
		f := newGatewayFixture()
		integration := newIntegration(t)
		config, err := sync.NewSyncConfiguration(integration.TenantID, integration.ID)
		require.NoError(t, err)

		f.integrations.On("FindByStore", ctx, sync.PlatformShopify, "acme.myshopify.com").Return(integration, nil)
		f.dedup.On("MarkProcessed", ctx, mock.Anything, DefaultDedupTTL).Return(true, nil)
		f.configs.On("FindByIntegration", ctx, integration.ID).Return(config, nil)
		f.events.On("Append", ctx, mock.Anything).Return(nil)
		f.events.On("RecordResult", ctx, mock.Anything, "ignored: unhandled topic").Return(nil)

		req := shopifyRequest(secret, body, map[string]string{"X-Shopify-Topic": "customers/create"})
		receipt, err := f.gateway.HandleInbound(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, "ignored: unhandled topic", receipt.Result)
		f.orders.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
		f.events.AssertExpectations(t)
	})

	t.Run("handler failure still records the audit outcome", func(t *testing.T) {
		f := newGatewayFixture()
		integration := newIntegration(t)
		config, err := sync.NewSyncConfiguration(integration.TenantID, integration.ID)
		require.NoError(t, err)

		f.integrations.On("FindByStore", ctx, sync.PlatformShopify, "acme.myshopify.com").Return(integration, nil)
		f.dedup.On("MarkProcessed", ctx, mock.Anything, DefaultDedupTTL).Return(true, nil)
		f.configs.On("FindByIntegration", ctx, integration.ID).Return(config, nil)
		f.events.On("Append", ctx, mock.Anything).Return(nil)
		f.orders.On("Handle", ctx, mock.Anything).Return("", sync.ErrPayloadUnreadable)
		f.events.On("RecordResult", ctx, mock.Anything, "error: "+sync.ErrPayloadUnreadable.Error()).Return(nil)

		_, err = f.gateway.HandleInbound(ctx, shopifyRequest(secret, body, nil))

		assert.ErrorIs(t, err, sync.ErrPayloadUnreadable)
		f.events.AssertExpectations(t)
	})

	t.Run("derives a delivery ID from the body when the header is absent", func(t *testing.T) {
		f := newGatewayFixture()
		integration := newIntegration(t)
		config, err := sync.NewSyncConfiguration(integration.TenantID, integration.ID)
		require.NoError(t, err)

		f.integrations.On("FindByStore", ctx, sync.PlatformShopify, "acme.myshopify.com").Return(integration, nil)
		f.dedup.On("MarkProcessed", ctx, mock.MatchedBy(func(key string) bool {
			// integration ID prefix plus a 64-char hex digest
			return len(key) == len(integration.ID.String())+1+64
		}), DefaultDedupTTL).Return(true, nil)
		f.configs.On("FindByIntegration", ctx, integration.ID).Return(config, nil)
		f.events.On("Append", ctx, mock.Anything).Return(nil)
		f.orders.On("Handle", ctx, mock.Anything).Return("order created", nil)
		f.events.On("RecordResult", ctx, mock.Anything, "order created").Return(nil)

		req := shopifyRequest(secret, body, map[string]string{"X-Shopify-Webhook-Id": ""})
		_, err = f.gateway.HandleInbound(ctx, req)

		require.NoError(t, err)
		f.dedup.AssertExpectations(t)
	})
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"id": 1}`)
	secret := "secret"

	t.Run("base64 digest", func(t *testing.T) {
		assert.True(t, VerifySignature(secret, body, signBody(secret, body)))
	})

	t.Run("hex digest", func(t *testing.T) {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		assert.True(t, VerifySignature(secret, body, hex.EncodeToString(mac.Sum(nil))))
	})

	t.Run("wrong secret", func(t *testing.T) {
		assert.False(t, VerifySignature("other", body, signBody(secret, body)))
	})

	t.Run("empty secret always fails", func(t *testing.T) {
		assert.False(t, VerifySignature("", body, signBody("", body)))
	})

	t.Run("unparseable signature never matches", func(t *testing.T) {
		assert.False(t, VerifySignature(secret, body, "not-a-digest"))
	})
}
