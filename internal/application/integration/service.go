package integration

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/channelsync/backend/internal/domain/catalog"
	"github.com/channelsync/backend/internal/domain/sync"
)

// Service manages store integrations: connecting, connection testing,
// per-integration sync settings, and product links.
type Service struct {
	integrations sync.IntegrationRepository
	configs      sync.SyncConfigurationRepository
	links        sync.ProductStoreLinkRepository
	products     catalog.ProductRepository
	registry     sync.ConnectorRegistry
	logger       *zap.Logger
}

// NewService creates the integration service
func NewService(
	integrations sync.IntegrationRepository,
	configs sync.SyncConfigurationRepository,
	links sync.ProductStoreLinkRepository,
	products catalog.ProductRepository,
	registry sync.ConnectorRegistry,
	logger *zap.Logger,
) *Service {
	return &Service{
		integrations: integrations,
		configs:      configs,
		links:        links,
		products:     products,
		registry:     registry,
		logger:       logger,
	}
}

// ConnectInput holds the fields for connecting a store
type ConnectInput struct {
	Platform        string
	StoreIdentifier string
	CredentialsRef  string
	WebhookSecret   string
}

// Connect registers a store integration and runs an initial connection test.
// A failing test still saves the integration, with its status reflecting the
// failure, so the tenant can fix credentials without reconnecting.
func (s *Service) Connect(ctx context.Context, tenantID uuid.UUID, input ConnectInput) (*sync.Integration, error) {
	platform := sync.ParsePlatform(input.Platform)
	integration, err := sync.NewIntegration(tenantID, platform, input.StoreIdentifier, input.WebhookSecret)
	if err != nil {
		return nil, err
	}
	integration.CredentialsRef = input.CredentialsRef

	if connector, err := s.registry.Get(platform); err == nil {
		if testErr := connector.TestConnection(ctx, integration); testErr != nil {
			integration.RecordSyncFailure(testErr.Error())
			s.logger.Warn("initial connection test failed",
				zap.String("store", input.StoreIdentifier),
				zap.Error(testErr))
		}
	}

	if err := s.integrations.Save(ctx, integration); err != nil {
		return nil, err
	}

	config, err := sync.NewSyncConfiguration(tenantID, integration.ID)
	if err != nil {
		return nil, err
	}
	if err := s.configs.Save(ctx, config); err != nil {
		return nil, err
	}

	s.logger.Info("integration connected",
		zap.String("integration_id", integration.ID.String()),
		zap.String("platform", platform.String()),
		zap.String("store", input.StoreIdentifier))
	return integration, nil
}

// Get returns an integration by ID
func (s *Service) Get(ctx context.Context, tenantID, integrationID uuid.UUID) (*sync.Integration, error) {
	integration, err := s.integrations.FindByID(ctx, integrationID)
	if err != nil {
		return nil, err
	}
	if integration.TenantID != tenantID {
		return nil, sync.ErrIntegrationNotFound
	}
	return integration, nil
}

// List returns all integrations for a tenant
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]sync.Integration, error) {
	return s.integrations.FindByTenant(ctx, tenantID)
}

// Disconnect removes an integration and its sync configuration
func (s *Service) Disconnect(ctx context.Context, tenantID, integrationID uuid.UUID) error {
	integration, err := s.Get(ctx, tenantID, integrationID)
	if err != nil {
		return err
	}

	if config, err := s.configs.FindByIntegration(ctx, integration.ID); err == nil {
		if err := s.configs.Delete(ctx, config.ID); err != nil {
			return err
		}
	} else if !errors.Is(err, sync.ErrConfigurationNotFound) {
		return err
	}
	return s.integrations.Delete(ctx, integration.ID)
}

// TestConnection verifies credentials against the platform and updates the
// integration's connection status
func (s *Service) TestConnection(ctx context.Context, tenantID, integrationID uuid.UUID) (*sync.Integration, error) {
	integration, err := s.Get(ctx, tenantID, integrationID)
	if err != nil {
		return nil, err
	}

	connector, err := s.registry.Get(integration.Platform)
	if err != nil {
		return nil, err
	}

	if testErr := connector.TestConnection(ctx, integration); testErr != nil {
		integration.RecordSyncFailure(testErr.Error())
	} else {
		integration.RecordSyncSuccess()
	}
	if err := s.integrations.Save(ctx, integration); err != nil {
		return nil, err
	}
	return integration, nil
}

// SetEnabled enables or disables an integration
func (s *Service) SetEnabled(ctx context.Context, tenantID, integrationID uuid.UUID, enabled bool) (*sync.Integration, error) {
	integration, err := s.Get(ctx, tenantID, integrationID)
	if err != nil {
		return nil, err
	}
	if enabled {
		integration.Enable()
	} else {
		integration.Disable()
	}
	if err := s.integrations.Save(ctx, integration); err != nil {
		return nil, err
	}
	return integration, nil
}

// ---------------------------------------------------------------------------
// Sync configuration
// ---------------------------------------------------------------------------

// ConfigurationInput holds the user-settable sync configuration fields
type ConfigurationInput struct {
	Modules        sync.ModuleToggles
	Direction      string
	Frequency      string
	ConflictPolicy string
	IsActive       *bool
}

// GetConfiguration returns the sync configuration for an integration
func (s *Service) GetConfiguration(ctx context.Context, tenantID, integrationID uuid.UUID) (*sync.SyncConfiguration, error) {
	if _, err := s.Get(ctx, tenantID, integrationID); err != nil {
		return nil, err
	}
	return s.configs.FindByIntegration(ctx, integrationID)
}

// UpdateConfiguration replaces the sync configuration for an integration
func (s *Service) UpdateConfiguration(ctx context.Context, tenantID, integrationID uuid.UUID, input ConfigurationInput) (*sync.SyncConfiguration, error) {
	config, err := s.GetConfiguration(ctx, tenantID, integrationID)
	if err != nil {
		return nil, err
	}

	config.Modules = input.Modules
	config.Direction = sync.SyncDirection(normalizeUpper(input.Direction))
	config.Frequency = sync.SyncFrequency(normalizeUpper(input.Frequency))
	config.ConflictPolicy = sync.ConflictPolicy(normalizeUpper(input.ConflictPolicy))
	if input.IsActive != nil {
		config.IsActive = *input.IsActive
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := s.configs.Save(ctx, config); err != nil {
		return nil, err
	}
	return config, nil
}

func normalizeUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ---------------------------------------------------------------------------
// Product links
// ---------------------------------------------------------------------------

// LinkProduct binds a canonical product to its external counterpart
func (s *Service) LinkProduct(ctx context.Context, tenantID, integrationID, productID uuid.UUID, externalProductID string) (*sync.ProductStoreLink, error) {
	if _, err := s.Get(ctx, tenantID, integrationID); err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.TenantID != tenantID {
		return nil, catalog.ErrProductNotFound
	}

	link, err := sync.NewProductStoreLink(tenantID, integrationID, productID, externalProductID)
	if err != nil {
		return nil, err
	}
	if err := s.links.Save(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// UnlinkProduct removes a product store link
func (s *Service) UnlinkProduct(ctx context.Context, tenantID, linkID uuid.UUID) error {
	link, err := s.links.FindByID(ctx, linkID)
	if err != nil {
		return err
	}
	if link.TenantID != tenantID {
		return sync.ErrLinkNotFound
	}
	return s.links.Delete(ctx, linkID)
}
