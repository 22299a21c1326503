package sync

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/channelsync/backend/internal/domain/catalog"
	"github.com/channelsync/backend/internal/domain/sync"
)

// ResolutionService resolves staged remote changes on product store links.
// This is the only path that moves a link back to SYNCED: webhook handlers
// stage, humans (or the configured policy) resolve.
type ResolutionService struct {
	links    sync.ProductStoreLinkRepository
	configs  sync.SyncConfigurationRepository
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewResolutionService creates a conflict resolution service
func NewResolutionService(
	links sync.ProductStoreLinkRepository,
	configs sync.SyncConfigurationRepository,
	products catalog.ProductRepository,
	logger *zap.Logger,
) *ResolutionService {
	return &ResolutionService{
		links:    links,
		configs:  configs,
		products: products,
		logger:   logger,
	}
}

// Resolution is the outcome of resolving one link
type Resolution struct {
	LinkID        uuid.UUID       `json:"link_id"`
	Decision      string          `json:"decision"`
	AppliedFields map[string]any  `json:"applied_fields,omitempty"`
	Status        sync.LinkStatus `json:"status"`
}

// ListStaged returns the links awaiting resolution for an integration,
// scoped to the requesting tenant.
func (s *ResolutionService) ListStaged(ctx context.Context, tenantID, integrationID uuid.UUID) ([]sync.ProductStoreLink, error) {
	staged, err := s.links.FindStaged(ctx, integrationID)
	if err != nil {
		return nil, err
	}

	scoped := make([]sync.ProductStoreLink, 0, len(staged))
	for _, link := range staged {
		if link.TenantID == tenantID {
			scoped = append(scoped, link)
		}
	}
	return scoped, nil
}

// Resolve resolves one staged link. policyOverride selects the policy for
// this resolution; empty uses the integration's configured policy. A remote
// delete always resolves to keeping the canonical product.
func (s *ResolutionService) Resolve(ctx context.Context, tenantID, linkID uuid.UUID, policyOverride string) (*Resolution, error) {
	link, err := s.links.FindByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link.TenantID != tenantID {
		return nil, sync.ErrLinkNotFound
	}

	policy, err := s.resolvePolicy(ctx, link, policyOverride)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, link.LocalProductID)
	if err != nil {
		return nil, err
	}

	// A deleted remote product has no snapshot to apply; resolving it simply
	// acknowledges the deletion and keeps local data
	decision := sync.ResolutionKeepLocal
	if link.Status != sync.LinkStatusRemoteDeleted {
		decision, err = link.Decide(policy, product.UpdatedAt)
		if err != nil {
			return nil, err
		}
	}

	resolution := &Resolution{LinkID: link.ID, Decision: "keep_local", Status: sync.LinkStatusSynced}

	if decision == sync.ResolutionApplyRemote {
		fields := snapshotFields(link.RemoteSnapshot)
		if err := s.products.UpdateFields(ctx, product.ID, fields); err != nil {
			return nil, err
		}
		resolution.Decision = "apply_remote"
		resolution.AppliedFields = fields
	}

	link.Resolve()
	if err := s.links.Save(ctx, link); err != nil {
		return nil, err
	}

	s.logger.Info("link resolved",
		zap.String("link_id", link.ID.String()),
		zap.String("decision", resolution.Decision),
		zap.String("policy", string(policy)))
	return resolution, nil
}

// Flag escalates a staged remote update to CONFLICT for human review
func (s *ResolutionService) Flag(ctx context.Context, tenantID, linkID uuid.UUID) (*sync.ProductStoreLink, error) {
	link, err := s.links.FindByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link.TenantID != tenantID {
		return nil, sync.ErrLinkNotFound
	}
	if err := link.FlagConflict(); err != nil {
		return nil, err
	}
	if err := s.links.Save(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *ResolutionService) resolvePolicy(ctx context.Context, link *sync.ProductStoreLink, override string) (sync.ConflictPolicy, error) {
	if override != "" {
		policy := sync.ConflictPolicy(normalizePolicy(override))
		if !policy.IsValid() {
			return "", sync.ErrInvalidConflictPolicy
		}
		return policy, nil
	}

	config, err := s.configs.FindByIntegration(ctx, link.IntegrationID)
	if err != nil {
		return "", err
	}
	return config.ConflictPolicy, nil
}

func normalizePolicy(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// snapshotFields maps a remote snapshot onto canonical field names for a
// minimal-write update
func snapshotFields(snapshot *sync.RemoteSnapshot) map[string]any {
	if snapshot == nil {
		return nil
	}
	fields := map[string]any{
		catalog.FieldPrice: snapshot.Price,
		catalog.FieldStock: snapshot.Stock,
	}
	if snapshot.Title != "" {
		fields[catalog.FieldTitle] = snapshot.Title
	}
	if snapshot.Description != "" {
		fields[catalog.FieldDescription] = snapshot.Description
	}
	if snapshot.Category != "" {
		fields[catalog.FieldCategory] = snapshot.Category
	}
	if snapshot.SKU != "" {
		fields[catalog.FieldSKU] = snapshot.SKU
	}
	if len(snapshot.Tags) > 0 {
		fields[catalog.FieldTags] = snapshot.Tags
	}
	return fields
}
