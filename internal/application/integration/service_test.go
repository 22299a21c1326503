package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/channelsync/backend/internal/domain/catalog"
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sync.Integration), args.Error(1)
}

func (m *MockIntegrationRepository) FindEligible(ctx context.Context, tenantID uuid.UUID, platforms []sync.Platform) ([]sync.Integration, error) {
	args := m.Called(ctx, tenantID, platforms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sync.SyncConfiguration), args.Error(1)
}

func (m *MockConfigurationRepository) FindActive(ctx context.Context) ([]sync.SyncConfiguration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
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

// MockProductStoreLinkRepository is a mock implementation of sync.ProductStoreLinkRepository
type MockProductStoreLinkRepository struct {
	mock.Mock
}

func (m *MockProductStoreLinkRepository) FindByID(ctx context.Context, id uuid.UUID) (*sync.ProductStoreLink, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.ProductStoreLink), args.Error(1)
}

func (m *MockProductStoreLinkRepository) FindByExternalProduct(ctx context.Context, integrationID uuid.UUID, externalProductID string) (*sync.ProductStoreLink, error) {
	args := m.Called(ctx, integrationID, externalProductID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.ProductStoreLink), args.Error(1)
}

func (m *MockProductStoreLinkRepository) FindByLocalProduct(ctx context.Context, tenantID, localProductID uuid.UUID) ([]sync.ProductStoreLink, error) {
	args := m.Called(ctx, tenantID, localProductID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sync.ProductStoreLink), args.Error(1)
}

func (m *MockProductStoreLinkRepository) FindByIntegration(ctx context.Context, integrationID uuid.UUID) ([]sync.ProductStoreLink, error) {
	args := m.Called(ctx, integrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sync.ProductStoreLink), args.Error(1)
}

func (m *MockProductStoreLinkRepository) FindStaged(ctx context.Context, integrationID uuid.UUID) ([]sync.ProductStoreLink, error) {
	args := m.Called(ctx, integrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sync.ProductStoreLink), args.Error(1)
}

func (m *MockProductStoreLinkRepository) Save(ctx context.Context, link *sync.ProductStoreLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockProductStoreLinkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// stubConnector satisfies sync.StorefrontConnector; only TestConnection is
// exercised by this service.
type stubConnector struct {
	platform sync.Platform
	testErr  error
}

func (c *stubConnector) Platform() sync.Platform { return c.platform }

func (c *stubConnector) TestConnection(ctx context.Context, integration *sync.Integration) error {
	return c.testErr
}

func (c *stubConnector) PushProducts(ctx context.Context, integration *sync.Integration, products []sync.ProductPush) (*sync.PushResult, error) {
	return &sync.PushResult{}, nil
}

func (c *stubConnector) PushPrices(ctx context.Context, integration *sync.Integration, products []sync.ProductPush) (*sync.PushResult, error) {
	return &sync.PushResult{}, nil
}

func (c *stubConnector) PushStock(ctx context.Context, integration *sync.Integration, levels []sync.StockPush) (*sync.PushResult, error) {
	return &sync.PushResult{}, nil
}

func (c *stubConnector) PushTracking(ctx context.Context, integration *sync.Integration, tracking []sync.TrackingPush) (*sync.PushResult, error) {
	return &sync.PushResult{}, nil
}

func (c *stubConnector) PullOrders(ctx context.Context, integration *sync.Integration, since time.Time) ([]sync.RemoteOrder, error) {
	return nil, nil
}

func (c *stubConnector) PullCustomers(ctx context.Context, integration *sync.Integration, since time.Time) ([]sync.RemoteCustomer, error) {
	return nil, nil
}

type stubRegistry struct {
	connector sync.StorefrontConnector
	err       error
}

func (r *stubRegistry) Get(platform sync.Platform) (sync.StorefrontConnector, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.connector, nil
}

func (r *stubRegistry) List() []sync.StorefrontConnector {
	if r.connector == nil {
		return nil
	}
	return []sync.StorefrontConnector{r.connector}
}

type serviceFixture struct {
	integrations *MockIntegrationRepository
	configs      *MockConfigurationRepository
	links        *MockProductStoreLinkRepository
	products     *MockProductRepository
	connector    *stubConnector
	service      *Service
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		integrations: new(MockIntegrationRepository),
		configs:      new(MockConfigurationRepository),
		links:        new(MockProductStoreLinkRepository),
		products:     new(MockProductRepository),
		connector:    &stubConnector{platform: sync.PlatformShopify},
	}
	f.service = NewService(f.integrations, f.configs, f.links, f.products,
		&stubRegistry{connector: f.connector}, zap.NewNop())
	return f
}

func testIntegration(t *testing.T) *sync.Integration {
	t.Helper()
	integration, err := sync.NewIntegration(uuid.New(), sync.PlatformShopify, "acme.myshopify.com", "whsec")
	require.NoError(t, err)
	return integration
}

func TestService_Connect(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("connects and seeds a default configuration", func(t *testing.T) {
		f := newServiceFixture()
		f.integrations.On("Save", ctx, mock.MatchedBy(func(i *sync.Integration) bool {
			return i.TenantID == tenantID &&
				i.Platform == sync.PlatformShopify &&
				i.ConnectionStatus == sync.ConnectionStatusConnected
		})).Return(nil)
		f.configs.On("Save", ctx, mock.MatchedBy(func(cfg *sync.SyncConfiguration) bool {
			return cfg.TenantID == tenantID && cfg.Modules.Products && cfg.IsActive
		})).Return(nil)

		integration, err := f.service.Connect(ctx, tenantID, ConnectInput{
			Platform:        "shopify",
			StoreIdentifier: "acme.myshopify.com",
			CredentialsRef:  "vault://stores/acme",
			WebhookSecret:   "whsec",
		})

		require.NoError(t, err)
		assert.Equal(t, "vault://stores/acme", integration.CredentialsRef)
		f.configs.AssertExpectations(t)
	})

	t.Run("failed connection test still saves the integration", func(t *testing.T) {
		f := newServiceFixture()
		f.connector.testErr = errors.New("401 unauthorized")
		f.integrations.On("Save", ctx, mock.Anything).Return(nil)
		f.configs.On("Save", ctx, mock.Anything).Return(nil)

		integration, err := f.service.Connect(ctx, tenantID, ConnectInput{
			Platform:        "shopify",
			StoreIdentifier: "acme.myshopify.com",
			WebhookSecret:   "whsec",
		})

		require.NoError(t, err)
		assert.Equal(t, sync.ConnectionStatusError, integration.ConnectionStatus)
		assert.Equal(t, 1, integration.ConsecutiveFailures)
	})

	t.Run("unknown platform rejects", func(t *testing.T) {
		f := newServiceFixture()
		_, err := f.service.Connect(ctx, tenantID, ConnectInput{
			Platform:        "magento",
			StoreIdentifier: "acme.example.com",
		})
		assert.ErrorIs(t, err, sync.ErrUnknownPlatform)
	})

	t.Run("missing store identifier rejects", func(t *testing.T) {
		f := newServiceFixture()
		_, err := f.service.Connect(ctx, tenantID, ConnectInput{Platform: "shopify"})
		assert.ErrorIs(t, err, sync.ErrInvalidStoreIdentifier)
	})
}

func TestService_Disconnect(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the integration and its configuration", func(t *testing.T) {
		f := newServiceFixture()
		integration := testIntegration(t)
		config, err := sync.NewSyncConfiguration(integration.TenantID, integration.ID)
		require.NoError(t, err)

		f.integrations.On("FindByID", ctx, integration.ID).Return(integration, nil)
		f.configs.On("FindByIntegration", ctx, integration.ID).Return(config, nil)
		f.configs.On("Delete", ctx, config.ID).Return(nil)
		f.integrations.On("Delete", ctx, integration.ID).Return(nil)

		require.NoError(t, f.service.Disconnect(ctx, integration.TenantID, integration.ID))
		f.configs.AssertExpectations(t)
		f.integrations.AssertExpectations(t)
	})

	t.Run("tolerates a missing configuration", func(t *testing.T) {
		f := newServiceFixture()
		integration := testIntegration(t)

		f.integrations.On("FindByID", ctx, integration.ID).Return(integration, nil)
		f.configs.On("FindByIntegration", ctx, integration.ID).Return(nil, sync.ErrConfigurationNotFound)
		f.integrations.On("Delete", ctx, integration.ID).Return(nil)

		require.NoError(t, f.service.Disconnect(ctx, integration.TenantID, integration.ID))
		f.configs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("foreign tenant cannot disconnect", func(t *testing.T) {
		f := newServiceFixture()
		integration := testIntegration(t)
		f.integrations.On("FindByID", ctx, integration.ID).Return(integration, nil)

		err := f.service.Disconnect(ctx, uuid.New(), integration.ID)
		assert.ErrorIs(t, err, sync.ErrIntegrationNotFound)
		f.integrations.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestService_TestConnection(t *testing.T) {
	ctx := context.Background()

	t.Run("success clears previous failures", func(t *testing.T) {
		f := newServiceFixture()
		integration := testIntegration(t)
		integration.RecordSyncFailure("timeout")

		f.integrations.On("FindByID", ctx, integration.ID).Return(integration, nil)
		f.integrations.On("Save", ctx, integration).Return(nil)

		result, err := f.service.TestConnection(ctx, integration.TenantID, integration.ID)

		require.NoError(t, err)
		assert.Equal(t, sync.ConnectionStatusConnected, result.ConnectionStatus)
		assert.Zero(t, result.ConsecutiveFailures)
	})

	t.Run("failure escalates the failure count", func(t *testing.T) {
		f := newServiceFixture()
		f.connector.testErr = errors.New("dns lookup failed")
		integration := testIntegration(t)

		f.integrations.On("FindByID", ctx, integration.ID).Return(integration, nil)
		f.integrations.On("Save", ctx, integration).Return(nil)

		result, err := f.service.TestConnection(ctx, integration.TenantID, integration.ID)

		require.NoError(t, err)
		assert.Equal(t, sync.ConnectionStatusError, result.ConnectionStatus)
		assert.Equal(t, 1, result.ConsecutiveFailures)
		assert.Contains(t, result.LastError, "dns lookup failed")
	})
}

func TestService_SetEnabled(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	integration := testIntegration(t)
	integration.Disable()

	f.integrations.On("FindByID", ctx, integration.ID).Return(integration, nil)
	f.integrations.On("Save", ctx, integration).Return(nil)

	result, err := f.service.SetEnabled(ctx, integration.TenantID, integration.ID, true)

	require.NoError(t, err)
	assert.True(t, result.IsActive)
}

func TestService_UpdateConfiguration(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the configuration", func(t *testing.T) {
		f := newServiceFixture()
		integration := testIntegration(t)
		config, err := sync.NewSyncConfiguration(integration.TenantID, integration.ID)
		require.NoError(t, err)

		f.integrations.On("FindByID", ctx, integration.ID).Return(integration, nil)
		f.configs.On("FindByIntegration", ctx, integration.ID).Return(config, nil)
		f.configs.On("Save", ctx, config).Return(nil)

		updated, err := f.service.UpdateConfiguration(ctx, integration.TenantID, integration.ID, ConfigurationInput{
			Modules:        sync.ModuleToggles{Products: true, Prices: true},
			Direction:      "bidirectional",
			Frequency:      "realtime",
			ConflictPolicy: "newest_wins",
		})

		require.NoError(t, err)
		assert.Equal(t, sync.SyncDirectionBidirectional, updated.Direction)
		assert.Equal(t, sync.SyncFrequencyRealtime, updated.Frequency)
		assert.True(t, updated.Modules.Prices)
	})

	t.Run("invalid direction rejects without saving", func(t *testing.T) {
		f := newServiceFixture()
		integration := testIntegration(t)
		config, err := sync.NewSyncConfiguration(integration.TenantID, integration.ID)
		require.NoError(t, err)

		f.integrations.On("FindByID", ctx, integration.ID).Return(integration, nil)
		f.configs.On("FindByIntegration", ctx, integration.ID).Return(config, nil)

		_, err = f.service.UpdateConfiguration(ctx, integration.TenantID, integration.ID, ConfigurationInput{
			Direction:      "sideways",
			Frequency:      "hourly",
			ConflictPolicy: "local_priority",
		})

		assert.ErrorIs(t, err, sync.ErrInvalidDirection)
		f.configs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestService_LinkProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("links a tenant product", func(t *testing.T) {
		f := newServiceFixture()
		integration := testIntegration(t)
		product, err := catalog.NewProduct(integration.TenantID, "Desk Lamp", decimal.NewFromInt(30))
		require.NoError(t, err)

		f.integrations.On("FindByID", ctx, integration.ID).Return(integration, nil)
		f.products.On("FindByID", ctx, product.ID).Return(product, nil)
		f.links.On("Save", ctx, mock.MatchedBy(func(link *sync.ProductStoreLink) bool {
			return link.ExternalProductID == "ext-77" && link.Status == sync.LinkStatusSynced
		})).Return(nil)

		link, err := f.service.LinkProduct(ctx, integration.TenantID, integration.ID, product.ID, "ext-77")

		require.NoError(t, err)
		assert.Equal(t, product.ID, link.LocalProductID)
	})

	t.Run("foreign product cannot be linked", func(t *testing.T) {
		f := newServiceFixture()
		integration := testIntegration(t)
		product, err := catalog.NewProduct(uuid.New(), "Desk Lamp", decimal.NewFromInt(30))
		require.NoError(t, err)

		f.integrations.On("FindByID", ctx, integration.ID).Return(integration, nil)
		f.products.On("FindByID", ctx, product.ID).Return(product, nil)

		_, err = f.service.LinkProduct(ctx, integration.TenantID, integration.ID, product.ID, "ext-77")
		assert.ErrorIs(t, err, catalog.ErrProductNotFound)
		f.links.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestService_UnlinkProduct(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	link, err := sync.NewProductStoreLink(uuid.New(), uuid.New(), uuid.New(), "ext-1")
	require.NoError(t, err)
	f.links.On("FindByID", ctx, link.ID).Return(link, nil)
	f.links.On("Delete", ctx, link.ID).Return(nil)

	require.NoError(t, f.service.UnlinkProduct(ctx, link.TenantID, link.ID))

	assert.ErrorIs(t, f.service.UnlinkProduct(ctx, uuid.New(), link.ID), sync.ErrLinkNotFound)
}
