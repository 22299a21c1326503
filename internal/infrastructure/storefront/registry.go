package storefront

import (
	gosync "sync"

	"github.com/channelsync/backend/internal/domain/sync"
)

// Registry is the concrete ConnectorRegistry. Connectors are registered at
// startup; lookups after that are read-only.
type Registry struct {
	mu         gosync.RWMutex
	connectors map[sync.Platform]sync.StorefrontConnector
}

// NewRegistry creates an empty connector registry
func NewRegistry() *Registry {
	return &Registry{
		connectors: make(map[sync.Platform]sync.StorefrontConnector),
	}
}

// Register adds a connector for its platform, replacing any existing one
func (r *Registry) Register(connector sync.StorefrontConnector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[connector.Platform()] = connector
}

// Get returns the connector for the given platform
func (r *Registry) Get(platform sync.Platform) (sync.StorefrontConnector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connector, ok := r.connectors[platform]
	if !ok {
		return nil, sync.ErrConnectorNotRegistered
	}
	return connector, nil
}

// List returns all registered connectors
func (r *Registry) List() []sync.StorefrontConnector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connectors := make([]sync.StorefrontConnector, 0, len(r.connectors))
	for _, connector := range r.connectors {
		connectors = append(connectors, connector)
	}
	return connectors
}

// Ensure Registry implements ConnectorRegistry
var _ sync.ConnectorRegistry = (*Registry)(nil)
