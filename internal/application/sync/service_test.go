package sync

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/channelsync/backend/internal/domain/sync"
)

func newSyncService(queue *MockSyncQueueRepository, integrations *MockIntegrationRepository, logs *MockSyncLogRepository) *Service {
	return NewService(queue, integrations, logs, nil, zap.NewNop())
}

func TestService_TriggerModule(t *testing.T) {
	ctx := context.Background()

	t.Run("enqueues a pending item", func(t *testing.T) {
		queue := new(MockSyncQueueRepository)
		integrations := new(MockIntegrationRepository)
		service := newSyncService(queue, integrations, new(MockSyncLogRepository))

		integration, _ := testIntegration(t)
		integrations.On("FindByID", ctx, integration.ID).Return(integration, nil)
		queue.On("Save", ctx, mock.MatchedBy(func(item *sync.SyncQueueItem) bool {
			return item.Status == sync.QueueStatusPending &&
				item.SyncType == sync.SyncTypeProducts &&
				item.IntegrationID == integration.ID
		})).Return(nil)

		item, err := service.TriggerModule(ctx, integration.TenantID, integration.ID, "products")

		require.NoError(t, err)
		assert.Equal(t, sync.QueueStatusPending, item.Status)
		queue.AssertExpectations(t)
	})

	t.Run("foreign tenant cannot trigger", func(t *testing.T) {
		queue := new(MockSyncQueueRepository)
		integrations := new(MockIntegrationRepository)
		service := newSyncService(queue, integrations, new(MockSyncLogRepository))

		integration, _ := testIntegration(t)
		integrations.On("FindByID", ctx, integration.ID).Return(integration, nil)

		_, err := service.TriggerModule(ctx, uuid.New(), integration.ID, "products")
		assert.ErrorIs(t, err, sync.ErrIntegrationNotFound)
	})

	t.Run("disabled integration cannot trigger", func(t *testing.T) {
		queue := new(MockSyncQueueRepository)
		integrations := new(MockIntegrationRepository)
		service := newSyncService(queue, integrations, new(MockSyncLogRepository))

		integration, _ := testIntegration(t)
		integration.Disable()
		integrations.On("FindByID", ctx, integration.ID).Return(integration, nil)

		_, err := service.TriggerModule(ctx, integration.TenantID, integration.ID, "products")
		assert.ErrorIs(t, err, sync.ErrIntegrationInactive)
	})

	t.Run("invalid sync type rejects", func(t *testing.T) {
		service := newSyncService(new(MockSyncQueueRepository), new(MockIntegrationRepository), new(MockSyncLogRepository))
		_, err := service.TriggerModule(ctx, uuid.New(), uuid.New(), "telemetry")
		assert.ErrorIs(t, err, sync.ErrInvalidSyncType)
	})
}

func TestService_TriggerFullSync(t *testing.T) {
	service := newSyncService(new(MockSyncQueueRepository), new(MockIntegrationRepository), new(MockSyncLogRepository))
	_, err := service.TriggerFullSync(context.Background(), uuid.New(), []string{"magento"})
	assert.ErrorIs(t, err, sync.ErrUnknownPlatform)
}

func TestService_CancelQueueItem(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels a pending item", func(t *testing.T) {
		queue := new(MockSyncQueueRepository)
		service := newSyncService(queue, new(MockIntegrationRepository), new(MockSyncLogRepository))

		item, err := sync.NewSyncQueueItem(uuid.New(), uuid.New(), sync.SyncTypeProducts, "full")
		require.NoError(t, err)
		queue.On("FindByID", ctx, item.ID).Return(item, nil)
		queue.On("Save", ctx, item).Return(nil)

		cancelled, err := service.CancelQueueItem(ctx, item.TenantID, item.ID)

		require.NoError(t, err)
		assert.Equal(t, sync.QueueStatusCancelled, cancelled.Status)
	})

	t.Run("terminal items reject cancellation", func(t *testing.T) {
		queue := new(MockSyncQueueRepository)
		service := newSyncService(queue, new(MockIntegrationRepository), new(MockSyncLogRepository))

		item, err := sync.NewSyncQueueItem(uuid.New(), uuid.New(), sync.SyncTypeProducts, "full")
		require.NoError(t, err)
		item.Start()
		item.Complete()
		queue.On("FindByID", ctx, item.ID).Return(item, nil)

		_, err = service.CancelQueueItem(ctx, item.TenantID, item.ID)
		assert.ErrorIs(t, err, sync.ErrQueueItemTerminal)
	})

	t.Run("foreign tenant cannot cancel", func(t *testing.T) {
		queue := new(MockSyncQueueRepository)
		service := newSyncService(queue, new(MockIntegrationRepository), new(MockSyncLogRepository))

		item, err := sync.NewSyncQueueItem(uuid.New(), uuid.New(), sync.SyncTypeProducts, "full")
		require.NoError(t, err)
		queue.On("FindByID", ctx, item.ID).Return(item, nil)

		_, err = service.CancelQueueItem(ctx, uuid.New(), item.ID)
		assert.ErrorIs(t, err, sync.ErrQueueItemNotFound)
	})
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	queue := new(MockSyncQueueRepository)
	logs := new(MockSyncLogRepository)
	service := newSyncService(queue, new(MockIntegrationRepository), logs)

	tenantID := uuid.New()
	logs.On("Stats", ctx, tenantID).Return(&sync.SyncStats{TotalRuns: 12, SuccessfulRuns: 10}, nil)
	queue.On("CountByStatus", ctx, tenantID).Return(map[sync.QueueStatus]int64{
		sync.QueueStatusPending: 3,
	}, nil)

	overview, err := service.Stats(ctx, tenantID)

	require.NoError(t, err)
	assert.Equal(t, int64(12), overview.Stats.TotalRuns)
	assert.Equal(t, int64(3), overview.Queue[sync.QueueStatusPending])
}
