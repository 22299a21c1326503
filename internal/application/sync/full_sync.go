package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/channelsync/backend/internal/domain/sync"
)

// DefaultFullSyncConcurrency bounds how many integrations sync at once
const DefaultFullSyncConcurrency = 4

// IntegrationReport is the full-sync outcome for one integration
type IntegrationReport struct {
	IntegrationID uuid.UUID       `json:"integration_id"`
	Platform      sync.Platform   `json:"platform"`
	Modules       []*ModuleReport `json:"modules"`
	// Error is set when the integration failed as a whole (connector down,
	// auth); module-level failures appear inside Modules instead
	Error string `json:"error,omitempty"`
}

// FullSyncReport is the aggregate outcome of one full-sync run
type FullSyncReport struct {
	StartedAt    time.Time           `json:"started_at"`
	Duration     time.Duration       `json:"duration"`
	Integrations []IntegrationReport `json:"integrations"`
	Succeeded    int                 `json:"succeeded"`
	Failed       int                 `json:"failed"`
}

// FullSyncService fans a full sync out across a tenant's eligible
// integrations. Integrations run concurrently under a bound; one failing
// integration never aborts the others, its failure is recorded in the report.
type FullSyncService struct {
	integrations sync.IntegrationRepository
	configs      sync.SyncConfigurationRepository
	runner       *ModuleRunner
	concurrency  int
	logger       *zap.Logger
}

// NewFullSyncService creates a full sync service
func NewFullSyncService(
	integrations sync.IntegrationRepository,
	configs sync.SyncConfigurationRepository,
	runner *ModuleRunner,
	concurrency int,
	logger *zap.Logger,
) *FullSyncService {
	if concurrency <= 0 {
		concurrency = DefaultFullSyncConcurrency
	}
	return &FullSyncService{
		integrations: integrations,
		configs:      configs,
		runner:       runner,
		concurrency:  concurrency,
		logger:       logger,
	}
}

// Run executes a full sync for a tenant, optionally restricted to the given
// platforms. Disabled and inactive integrations are skipped up front.
func (s *FullSyncService) Run(ctx context.Context, tenantID uuid.UUID, platforms []sync.Platform) (*FullSyncReport, error) {
	eligible, err := s.integrations.FindEligible(ctx, tenantID, platforms)
	if err != nil {
		return nil, err
	}

	report := &FullSyncReport{
		StartedAt:    time.Now(),
		Integrations: make([]IntegrationReport, 0, len(eligible)),
	}

	var mu gosync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)

	for i := range eligible {
		integration := eligible[i]
		group.Go(func() error {
			result := s.syncIntegration(groupCtx, &integration)

			mu.Lock()
			defer mu.Unlock()
			report.Integrations = append(report.Integrations, result)
			if result.Error == "" {
				report.Succeeded++
			} else {
				report.Failed++
			}
			// Partial failure is tolerated; never propagate into the group
			return nil
		})
	}

	// Goroutines only return nil; Wait is for fan-in
	_ = group.Wait()

	report.Duration = time.Since(report.StartedAt)
	s.logger.Info("full sync finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration))
	return report, nil
}

func (s *FullSyncService) syncIntegration(ctx context.Context, integration *sync.Integration) IntegrationReport {
	result := IntegrationReport{
		IntegrationID: integration.ID,
		Platform:      integration.Platform,
	}

	config, err := s.loadConfig(ctx, integration)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	for _, syncType := range sync.AllSyncTypes() {
		if !config.Modules.Enabled(syncType) {
			continue
		}
		moduleReport, err := s.runner.Run(ctx, integration, config, syncType)
		if err != nil {
			// The connection bookkeeping already counted this failure; stop
			// running further modules against a broken integration
			result.Error = err.Error()
			s.logger.Warn("integration full sync aborted",
				zap.String("integration_id", integration.ID.String()),
				zap.String("sync_type", syncType.String()),
				zap.Error(err))
			return result
		}
		result.Modules = append(result.Modules, moduleReport)
	}

	config.RecordFullSync()
	if err := s.configs.Save(ctx, config); err != nil {
		s.logger.Warn("failed to stamp full sync",
			zap.String("integration_id", integration.ID.String()), zap.Error(err))
	}
	return result
}

func (s *FullSyncService) loadConfig(ctx context.Context, integration *sync.Integration) (*sync.SyncConfiguration, error) {
	config, err := s.configs.FindByIntegration(ctx, integration.ID)
	if err == nil {
		return config, nil
	}
	if errors.Is(err, sync.ErrConfigurationNotFound) {
		return sync.NewSyncConfiguration(integration.TenantID, integration.ID)
	}
	return nil, err
}
