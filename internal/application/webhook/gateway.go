package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/channelsync/backend/internal/domain/sync"
)

// DefaultDedupTTL bounds how long delivery IDs are remembered. Platforms stop
// redelivering well within this window.
const DefaultDedupTTL = 24 * time.Hour

// DeliveryDeduplicator remembers processed delivery IDs across instances.
// MarkProcessed must be atomic: exactly one caller per ID observes true.
type DeliveryDeduplicator interface {
	MarkProcessed(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error)
}

// InboundWebhook is a raw webhook request as received by the HTTP layer
type InboundWebhook struct {
	// PlatformHint is the platform query parameter, when the caller sent one
	PlatformHint string
	// StoreID identifies the store the webhook belongs to
	StoreID string
	// Header reads a request header by name; empty string when absent
	Header func(name string) string
	// Body is the raw request body the signature was computed over
	Body []byte
}

// Receipt is the gateway's outcome for an accepted webhook
type Receipt struct {
	EventID   uuid.UUID  `json:"event_id,omitempty"`
	Topic     sync.Topic `json:"topic"`
	Result    string     `json:"result"`
	Duplicate bool       `json:"duplicate"`
}

// GatewayService is the single entry point for platform webhooks. It
// authenticates fail-closed (unverifiable requests are rejected before any
// side effect), deduplicates at-least-once deliveries, persists an audit
// record, and routes by topic family.
type GatewayService struct {
	integrations sync.IntegrationRepository
	configs      sync.SyncConfigurationRepository
	events       sync.WebhookEventRepository
	dedup        DeliveryDeduplicator
	handlers     map[sync.TopicFamily]TopicHandler
	noop         TopicHandler
	dedupTTL     time.Duration
	logger       *zap.Logger
}

// NewGatewayService creates the webhook gateway with its topic dispatch table
func NewGatewayService(
	integrations sync.IntegrationRepository,
	configs sync.SyncConfigurationRepository,
	events sync.WebhookEventRepository,
	dedup DeliveryDeduplicator,
	orders TopicHandler,
	products TopicHandler,
	inventory TopicHandler,
	logger *zap.Logger,
) *GatewayService {
	return &GatewayService{
		integrations: integrations,
		configs:      configs,
		events:       events,
		dedup:        dedup,
		handlers: map[sync.TopicFamily]TopicHandler{
			sync.TopicFamilyOrders:    orders,
			sync.TopicFamilyProducts:  products,
			sync.TopicFamilyInventory: inventory,
		},
		noop:     &NoopHandler{},
		dedupTTL: DefaultDedupTTL,
		logger:   logger,
	}
}

// SetDedupTTL overrides how long delivery IDs are remembered
func (s *GatewayService) SetDedupTTL(ttl time.Duration) {
	if ttl > 0 {
		s.dedupTTL = ttl
	}
}

// HandleInbound processes one webhook delivery end to end
func (s *GatewayService) HandleInbound(ctx context.Context, req *InboundWebhook) (*Receipt, error) {
	platform := s.detectPlatform(req)
	if !platform.IsValid() {
		return nil, sync.ErrUnknownPlatform
	}

	storeID := req.StoreID
	if storeID == "" && platform == sync.PlatformShopify {
		storeID = req.Header("X-Shopify-Shop-Domain")
	}
	if storeID == "" {
		return nil, sync.ErrInvalidStoreIdentifier
	}

	integration, err := s.integrations.FindByStore(ctx, platform, storeID)
	if err != nil {
		return nil, err
	}

	// Fail closed: no secret, no signature, or a mismatch all reject before
	// any state is touched.
	signature := req.Header(platform.SignatureHeader())
	if signature == "" {
		return nil, sync.ErrMissingSignature
	}
	if !VerifySignature(integration.WebhookSecret, req.Body, signature) {
		return nil, sync.ErrInvalidSignature
	}

	topic := s.resolveTopic(platform, req)

	deliveryID := req.Header(platform.DeliveryIDHeader())
	if deliveryID == "" {
		// Platforms without delivery IDs fall back to a body digest
		digest := sha256.Sum256(req.Body)
		deliveryID = hex.EncodeToString(digest[:])
	}
	fresh, err := s.dedup.MarkProcessed(ctx, integration.ID.String()+":"+deliveryID, s.dedupTTL)
	if err != nil {
		return nil, err
	}
	if !fresh {
		s.logger.Debug("duplicate webhook delivery skipped",
			zap.String("integration_id", integration.ID.String()),
			zap.String("delivery_id", deliveryID))
		return &Receipt{Topic: topic, Result: "skipped: duplicate delivery", Duplicate: true}, nil
	}

	config, err := s.loadConfig(ctx, integration)
	if err != nil {
		return nil, err
	}

	// Audit before dispatch so failed handlers still leave a trace
	event := sync.NewWebhookEvent(integration.TenantID, integration.ID, platform, topic, deliveryID, string(req.Body))
	if err := s.events.Append(ctx, event); err != nil {
		return nil, err
	}

	handler, ok := s.handlers[topic.Family()]
	if !ok {
		handler = s.noop
	}

	result, handleErr := handler.Handle(ctx, &EventContext{
		Integration: integration,
		Config:      config,
		Topic:       topic,
		Payload:     req.Body,
	})
	if handleErr != nil {
		result = "error: " + handleErr.Error()
		s.logger.Error("webhook handler failed",
			zap.String("event_id", event.ID.String()),
			zap.String("topic", topic.String()),
			zap.Error(handleErr))
	}
	if err := s.events.RecordResult(ctx, event.ID, result); err != nil {
		s.logger.Warn("failed to record webhook result",
			zap.String("event_id", event.ID.String()), zap.Error(err))
	}
	if handleErr != nil {
		return nil, handleErr
	}

	return &Receipt{EventID: event.ID, Topic: topic, Result: result}, nil
}

// ListEvents returns recent audit records for an integration. The integration
// must belong to the requesting tenant.
func (s *GatewayService) ListEvents(ctx context.Context, tenantID, integrationID uuid.UUID, limit int) ([]sync.WebhookEvent, error) {
	integration, err := s.integrations.FindByID(ctx, integrationID)
	if err != nil {
		return nil, err
	}
	if integration.TenantID != tenantID {
		return nil, sync.ErrIntegrationNotFound
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.events.FindByIntegration(ctx, integrationID, limit)
}

// detectPlatform resolves the platform from the query hint, falling back to
// platform-specific signature headers when no hint was sent
func (s *GatewayService) detectPlatform(req *InboundWebhook) sync.Platform {
	if platform := sync.ParsePlatform(req.PlatformHint); platform.IsValid() {
		return platform
	}
	for _, candidate := range []sync.Platform{sync.PlatformShopify, sync.PlatformWooCommerce, sync.PlatformPrestaShop} {
		if req.Header(candidate.SignatureHeader()) != "" {
			return candidate
		}
	}
	return sync.PlatformUnknown
}

// resolveTopic reads the topic header, falling back to a "topic" payload field
// for platforms that embed it
func (s *GatewayService) resolveTopic(platform sync.Platform, req *InboundWebhook) sync.Topic {
	if header := platform.TopicHeader(); header != "" {
		if value := req.Header(header); value != "" {
			return sync.Topic(value)
		}
	}
	var embedded struct {
		Topic string `json:"topic"`
	}
	if err := json.Unmarshal(req.Body, &embedded); err == nil && embedded.Topic != "" {
		return sync.Topic(embedded.Topic)
	}
	return sync.Topic("")
}

// loadConfig returns the integration's sync configuration, falling back to
// defaults when the tenant never customized it
func (s *GatewayService) loadConfig(ctx context.Context, integration *sync.Integration) (*sync.SyncConfiguration, error) {
	config, err := s.configs.FindByIntegration(ctx, integration.ID)
	if err == nil {
		return config, nil
	}
	if errors.Is(err, sync.ErrConfigurationNotFound) {
		return sync.NewSyncConfiguration(integration.TenantID, integration.ID)
	}
	return nil, err
}

// VerifySignature checks an HMAC-SHA256 webhook signature in constant time.
// Shopify and WooCommerce both send the digest base64 encoded; hex digests are
// accepted for platforms that use them. An empty secret always fails.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	if decoded, err := base64.StdEncoding.DecodeString(signature); err == nil && len(decoded) == sha256.Size {
		return hmac.Equal(decoded, expected)
	}
	if decoded, err := hex.DecodeString(signature); err == nil && len(decoded) == sha256.Size {
		return hmac.Equal(decoded, expected)
	}
	// Unparseable signatures never match
	return false
}
