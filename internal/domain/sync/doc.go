// Package sync contains the Synchronization bounded context.
// This context manages bidirectional data flow between the canonical store
// and connected storefront platforms.
//
// Key concepts:
//   - Integration: one connected store on one platform, owned by a tenant
//   - SyncConfiguration: per-integration module toggles, direction, frequency
//     and conflict policy
//   - SyncQueueItem: one unit of sync work, claimed via conditional update
//   - ProductStoreLink: the conflict ledger binding canonical products to
//     their platform counterparts
//   - StorefrontConnector: port interface to platform APIs (Shopify,
//     WooCommerce); adapters live in the infrastructure layer
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package sync
