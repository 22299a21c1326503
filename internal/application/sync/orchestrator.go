package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/channelsync/backend/internal/domain/sync"
)

// OrchestratorConfig holds configuration for the sync orchestrator
type OrchestratorConfig struct {
	BatchSize        int
	PollInterval     time.Duration
	RetryBackoffBase time.Duration
	ScheduleInterval time.Duration
}

// DefaultOrchestratorConfig returns default configuration
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		BatchSize:        20,
		PollInterval:     5 * time.Second,
		RetryBackoffBase: time.Minute,
		ScheduleInterval: time.Minute,
	}
}

// DrainReport summarizes one queue drain
type DrainReport struct {
	Claimed   int `json:"claimed"`
	Completed int `json:"completed"`
	Retried   int `json:"retried"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// Orchestrator drains the sync queue in the background. Items are claimed
// atomically so multiple instances can poll the same queue; each claimed item
// runs through the module runner and either completes, re-queues with backoff,
// or fails terminally once its retry budget is spent.
type Orchestrator struct {
	queue        sync.SyncQueueRepository
	integrations sync.IntegrationRepository
	configs      sync.SyncConfigurationRepository
	runner       *ModuleRunner
	config       OrchestratorConfig
	logger       *zap.Logger

	cancel context.CancelFunc
	wg     gosync.WaitGroup
}

// NewOrchestrator creates a sync orchestrator
func NewOrchestrator(
	queue sync.SyncQueueRepository,
	integrations sync.IntegrationRepository,
	configs sync.SyncConfigurationRepository,
	runner *ModuleRunner,
	config OrchestratorConfig,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		queue:        queue,
		integrations: integrations,
		configs:      configs,
		runner:       runner,
		config:       config,
		logger:       logger,
	}
}

// Start starts the background poll and schedule loops
func (o *Orchestrator) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	o.wg.Add(1)
	go o.pollLoop(ctx)

	o.wg.Add(1)
	go o.scheduleLoop(ctx)

	o.logger.Info("sync orchestrator started",
		zap.Int("batch_size", o.config.BatchSize),
		zap.Duration("poll_interval", o.config.PollInterval),
	)
	return nil
}

// Stop gracefully stops the orchestrator
func (o *Orchestrator) Stop(ctx context.Context) error {
	if o.cancel != nil {
		o.cancel()
	}

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		o.logger.Info("sync orchestrator stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) pollLoop(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := o.ProcessBatch(ctx); err != nil {
				o.logger.Error("queue drain failed", zap.Error(err))
			}
		}
	}
}

// ProcessBatch drains one bounded batch of due pending items. Also invoked
// directly by the manual drain endpoint.
func (o *Orchestrator) ProcessBatch(ctx context.Context) (*DrainReport, error) {
	batch, err := o.queue.NextBatch(ctx, o.config.BatchSize)
	if err != nil {
		return nil, err
	}

	report := &DrainReport{}
	for i := range batch {
		item := &batch[i]

		claimed, err := o.queue.Claim(ctx, item.ID)
		if err != nil {
			o.logger.Error("failed to claim queue item",
				zap.String("item_id", item.ID.String()), zap.Error(err))
			continue
		}
		if !claimed {
			// Another consumer won the claim; skip without error
			continue
		}
		report.Claimed++

		item.Start()
		o.processItem(ctx, item, report)
	}
	return report, nil
}

func (o *Orchestrator) processItem(ctx context.Context, item *sync.SyncQueueItem, report *DrainReport) {
	runErr := o.execute(ctx, item)

	switch {
	case runErr == nil:
		item.Complete()
		report.Completed++
	case isUnrunnable(runErr):
		// Items that can never succeed are cancelled, not retried
		item.ErrorMessage = runErr.Error()
		if err := item.Cancel(); err == nil {
			report.Cancelled++
		}
	default:
		if item.Fail(runErr.Error(), o.config.RetryBackoffBase) == sync.RetryOutcomeRequeue {
			report.Retried++
			o.logger.Warn("queue item re-queued",
				zap.String("item_id", item.ID.String()),
				zap.Int("retry_count", item.RetryCount),
				zap.Time("scheduled_at", item.ScheduledAt),
				zap.Error(runErr))
		} else {
			report.Failed++
			o.logger.Error("queue item failed terminally",
				zap.String("item_id", item.ID.String()),
				zap.Int("retry_count", item.RetryCount),
				zap.Error(runErr))
		}
	}

	if err := o.queue.Save(ctx, item); err != nil {
		o.logger.Error("failed to persist queue item state",
			zap.String("item_id", item.ID.String()), zap.Error(err))
	}
}

func (o *Orchestrator) execute(ctx context.Context, item *sync.SyncQueueItem) error {
	integration, err := o.integrations.FindByID(ctx, item.IntegrationID)
	if err != nil {
		return err
	}

	config, err := o.configs.FindByIntegration(ctx, integration.ID)
	if err != nil {
		if !errors.Is(err, sync.ErrConfigurationNotFound) {
			return err
		}
		config, err = sync.NewSyncConfiguration(integration.TenantID, integration.ID)
		if err != nil {
			return err
		}
	}

	_, err = o.runner.Run(ctx, integration, config, item.SyncType)
	return err
}

// isUnrunnable classifies errors no retry can fix
func isUnrunnable(err error) bool {
	return errors.Is(err, sync.ErrModuleDisabled) ||
		errors.Is(err, sync.ErrIntegrationInactive) ||
		errors.Is(err, sync.ErrIntegrationNotFound) ||
		errors.Is(err, sync.ErrInvalidSyncType) ||
		errors.Is(err, sync.ErrConnectorNotRegistered)
}

// ---------------------------------------------------------------------------
// Scheduled full syncs
// ---------------------------------------------------------------------------

func (o *Orchestrator) scheduleLoop(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.config.ScheduleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.enqueueDue(ctx)
		}
	}
}

// enqueueDue turns due interval-tier configurations into backfill-priority
// queue items, one per enabled module. The configuration's full-sync stamp is
// advanced at enqueue time so a slow queue never double-schedules.
func (o *Orchestrator) enqueueDue(ctx context.Context) {
	configs, err := o.configs.FindActive(ctx)
	if err != nil {
		o.logger.Error("failed to load active sync configurations", zap.Error(err))
		return
	}

	now := time.Now()
	for i := range configs {
		config := &configs[i]
		if !config.DueForFullSync(now) {
			continue
		}

		enqueued := 0
		for _, syncType := range sync.AllSyncTypes() {
			if !config.Modules.Enabled(syncType) {
				continue
			}
			item, err := sync.NewSyncQueueItem(config.TenantID, config.IntegrationID, syncType, "full")
			if err != nil {
				o.logger.Warn("failed to build scheduled queue item", zap.Error(err))
				continue
			}
			item.Priority = sync.PriorityBackfill
			if err := o.queue.Save(ctx, item); err != nil {
				o.logger.Error("failed to enqueue scheduled sync",
					zap.String("integration_id", config.IntegrationID.String()),
					zap.Error(err))
				continue
			}
			enqueued++
		}

		if enqueued > 0 {
			config.RecordFullSync()
			if err := o.configs.Save(ctx, config); err != nil {
				o.logger.Warn("failed to stamp scheduled full sync",
					zap.String("integration_id", config.IntegrationID.String()),
					zap.Error(err))
			}
			o.logger.Info("scheduled full sync enqueued",
				zap.String("integration_id", config.IntegrationID.String()),
				zap.Int("modules", enqueued))
		}
	}
}
