package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// ProductStoreLink Entity: the conflict ledger
// ---------------------------------------------------------------------------

// LinkStatus represents the sync state of a product store link
type LinkStatus string

const (
	// LinkStatusSynced indicates canonical and remote data agree
	LinkStatusSynced LinkStatus = "SYNCED"
	// LinkStatusRemoteUpdated indicates a remote change was staged and awaits
	// resolution
	LinkStatusRemoteUpdated LinkStatus = "REMOTE_UPDATED"
	// LinkStatusRemoteDeleted indicates the remote product was deleted; the
	// canonical product is kept
	LinkStatusRemoteDeleted LinkStatus = "REMOTE_DELETED"
	// LinkStatusConflict indicates a staged change flagged for human review
	LinkStatusConflict LinkStatus = "CONFLICT"
)

// RemoteSnapshot holds the last-seen remote product fields. Staged by the
// product webhook handler; consumed by conflict resolution.
type RemoteSnapshot struct {
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	// EventTime is the remote event timestamp, used by the newest-wins policy
	EventTime time.Time `json:"event_time"`
}

// ProductStoreLink binds a canonical product to its external counterpart on
// one integration. Links transition to REMOTE_UPDATED/REMOTE_DELETED only from
// webhook events, and back to SYNCED only through an explicit resolution
// action. Remote writes are never applied to canonical data inline.
type ProductStoreLink struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	IntegrationID     uuid.UUID
	LocalProductID    uuid.UUID
	ExternalProductID string
	Status            LinkStatus
	// RemoteSnapshot is the staged remote state; nil while SYNCED
	RemoteSnapshot *RemoteSnapshot
	// LastRemoteUpdate is when the last remote change was observed
	LastRemoteUpdate *time.Time
	// LastSyncedAt is when the link last reached SYNCED
	LastSyncedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewProductStoreLink creates a synced link between a canonical product and a
// platform product
func NewProductStoreLink(tenantID, integrationID, localProductID uuid.UUID, externalProductID string) (*ProductStoreLink, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if integrationID == uuid.Nil {
		return nil, ErrIntegrationNotFound
	}
	if externalProductID == "" {
		return nil, ErrMissingExternalID
	}

	now := time.Now()
	return &ProductStoreLink{
		ID:                uuid.New(),
		TenantID:          tenantID,
		IntegrationID:     integrationID,
		LocalProductID:    localProductID,
		ExternalProductID: externalProductID,
		Status:            LinkStatusSynced,
		LastSyncedAt:      &now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// StageRemoteUpdate records an observed remote change without touching
// canonical data. Safe to run repeatedly for duplicate deliveries: the latest
// snapshot wins, the status write is idempotent.
func (l *ProductStoreLink) StageRemoteUpdate(snapshot RemoteSnapshot) {
	now := time.Now()
	if snapshot.EventTime.IsZero() {
		snapshot.EventTime = now
	}
	l.Status = LinkStatusRemoteUpdated
	l.RemoteSnapshot = &snapshot
	l.LastRemoteUpdate = &now
	l.UpdatedAt = now
}

// StageRemoteDelete marks the remote product as deleted. The canonical
// product is kept; this is a soft signal only.
func (l *ProductStoreLink) StageRemoteDelete() {
	now := time.Now()
	l.Status = LinkStatusRemoteDeleted
	l.LastRemoteUpdate = &now
	l.UpdatedAt = now
}

// FlagConflict marks a staged change for human review
func (l *ProductStoreLink) FlagConflict() error {
	if l.Status != LinkStatusRemoteUpdated {
		return ErrLinkNotInConflict
	}
	l.Status = LinkStatusConflict
	l.UpdatedAt = time.Now()
	return nil
}

// HasStagedChange reports whether the link awaits resolution
func (l *ProductStoreLink) HasStagedChange() bool {
	return l.Status == LinkStatusRemoteUpdated || l.Status == LinkStatusRemoteDeleted ||
		l.Status == LinkStatusConflict
}

// ResolutionDecision is the outcome of applying a conflict policy
type ResolutionDecision int

const (
	// ResolutionKeepLocal discards the remote snapshot
	ResolutionKeepLocal ResolutionDecision = iota
	// ResolutionApplyRemote applies the remote snapshot to canonical fields
	ResolutionApplyRemote
)

// Decide applies a conflict policy to the staged change. localUpdatedAt is
// the canonical product's last write time; newest-wins compares it against
// the remote event time.
func (l *ProductStoreLink) Decide(policy ConflictPolicy, localUpdatedAt time.Time) (ResolutionDecision, error) {
	if !l.HasStagedChange() {
		return ResolutionKeepLocal, ErrLinkNotInConflict
	}

	switch policy {
	case ConflictPolicyLocalPriority:
		return ResolutionKeepLocal, nil
	case ConflictPolicyRemotePriority:
		if l.RemoteSnapshot == nil {
			return ResolutionKeepLocal, ErrLinkMissingSnapshot
		}
		return ResolutionApplyRemote, nil
	case ConflictPolicyNewestWins:
		if l.RemoteSnapshot == nil {
			return ResolutionKeepLocal, ErrLinkMissingSnapshot
		}
		if l.RemoteSnapshot.EventTime.After(localUpdatedAt) {
			return ResolutionApplyRemote, nil
		}
		return ResolutionKeepLocal, nil
	default:
		return ResolutionKeepLocal, ErrInvalidConflictPolicy
	}
}

// Resolve clears the staged change and returns the link to SYNCED. Only an
// explicit resolution action moves a link back to SYNCED.
func (l *ProductStoreLink) Resolve() {
	now := time.Now()
	l.Status = LinkStatusSynced
	l.RemoteSnapshot = nil
	l.LastSyncedAt = &now
	l.UpdatedAt = now
}

// ---------------------------------------------------------------------------
// ProductStoreLinkRepository Interface
// ---------------------------------------------------------------------------

// ProductStoreLinkRepository defines persistence for product store links
type ProductStoreLinkRepository interface {
	// FindByID finds a link by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProductStoreLink, error)

	// FindByExternalProduct finds the link for an external product on an
	// integration. Used by the product webhook handler.
	FindByExternalProduct(ctx context.Context, integrationID uuid.UUID, externalProductID string) (*ProductStoreLink, error)

	// FindByLocalProduct finds all links for a canonical product
	FindByLocalProduct(ctx context.Context, tenantID, localProductID uuid.UUID) ([]ProductStoreLink, error)

	// FindByIntegration finds all links for an integration. Used by export
	// modules to resolve external product IDs.
	FindByIntegration(ctx context.Context, integrationID uuid.UUID) ([]ProductStoreLink, error)

	// FindStaged finds links awaiting resolution for an integration
	FindStaged(ctx context.Context, integrationID uuid.UUID) ([]ProductStoreLink, error)

	// Save creates or updates a link
	Save(ctx context.Context, link *ProductStoreLink) error

	// Delete deletes a link
	Delete(ctx context.Context, id uuid.UUID) error
}
