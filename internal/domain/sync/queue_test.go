package sync

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSyncQueueItem(t *testing.T) {
	tenantID := uuid.New()
	integrationID := uuid.New()

	t.Run("creates pending item scheduled immediately", func(t *testing.T) {
		item, err := NewSyncQueueItem(tenantID, integrationID, SyncTypeOrders, "import")
		require.NoError(t, err)

		assert.Equal(t, QueueStatusPending, item.Status)
		assert.Equal(t, PriorityDefault, item.Priority)
		assert.Equal(t, DefaultMaxRetries, item.MaxRetries)
		assert.Equal(t, 0, item.RetryCount)
		assert.WithinDuration(t, time.Now(), item.ScheduledAt, time.Second)
		assert.Nil(t, item.StartedAt)
		assert.Nil(t, item.CompletedAt)
	})

	t.Run("rejects nil tenant", func(t *testing.T) {
		_, err := NewSyncQueueItem(uuid.Nil, integrationID, SyncTypeOrders, "import")
		assert.ErrorIs(t, err, ErrInvalidTenantID)
	})

	t.Run("rejects invalid sync type", func(t *testing.T) {
		_, err := NewSyncQueueItem(tenantID, integrationID, SyncType("BOGUS"), "import")
		assert.ErrorIs(t, err, ErrInvalidSyncType)
	})
}

func TestSyncQueueItem_Transitions(t *testing.T) {
	newItem := func(t *testing.T) *SyncQueueItem {
		item, err := NewSyncQueueItem(uuid.New(), uuid.New(), SyncTypeProducts, "full")
		require.NoError(t, err)
		return item
	}

	t.Run("start marks processing", func(t *testing.T) {
		item := newItem(t)
		item.Start()

		assert.Equal(t, QueueStatusProcessing, item.Status)
		require.NotNil(t, item.StartedAt)
	})

	t.Run("complete clears error and stamps completion", func(t *testing.T) {
		item := newItem(t)
		item.Start()
		item.ErrorMessage = "previous attempt failed"
		item.Complete()

		assert.Equal(t, QueueStatusCompleted, item.Status)
		assert.Empty(t, item.ErrorMessage)
		require.NotNil(t, item.CompletedAt)
	})

	t.Run("cancel pending item", func(t *testing.T) {
		item := newItem(t)
		require.NoError(t, item.Cancel())
		assert.Equal(t, QueueStatusCancelled, item.Status)
	})

	t.Run("cancel terminal item fails", func(t *testing.T) {
		item := newItem(t)
		item.Complete()
		assert.ErrorIs(t, item.Cancel(), ErrQueueItemTerminal)
	})
}

func TestQueueStatus_IsTerminal(t *testing.T) {
	assert.False(t, QueueStatusPending.IsTerminal())
	assert.False(t, QueueStatusProcessing.IsTerminal())
	assert.True(t, QueueStatusCompleted.IsTerminal())
	assert.True(t, QueueStatusFailed.IsTerminal())
	assert.True(t, QueueStatusCancelled.IsTerminal())
}

func TestRetryDecision(t *testing.T) {
	assert.Equal(t, RetryOutcomeRequeue, RetryDecision(0, 3))
	assert.Equal(t, RetryOutcomeRequeue, RetryDecision(2, 3))
	assert.Equal(t, RetryOutcomeTerminalFail, RetryDecision(3, 3))
	assert.Equal(t, RetryOutcomeTerminalFail, RetryDecision(4, 3))
	assert.Equal(t, RetryOutcomeTerminalFail, RetryDecision(0, 0))
}

func TestRetryBackoff(t *testing.T) {
	base := time.Minute

	assert.Equal(t, time.Minute, RetryBackoff(1, base))
	assert.Equal(t, 2*time.Minute, RetryBackoff(2, base))
	assert.Equal(t, 4*time.Minute, RetryBackoff(3, base))

	t.Run("caps at 30 minutes", func(t *testing.T) {
		assert.Equal(t, 30*time.Minute, RetryBackoff(10, base))
	})

	t.Run("treats zero count as first retry", func(t *testing.T) {
		assert.Equal(t, time.Minute, RetryBackoff(0, base))
	})
}

func TestSyncQueueItem_Fail(t *testing.T) {
	t.Run("requeues with backoff within budget", func(t *testing.T) {
		item, err := NewSyncQueueItem(uuid.New(), uuid.New(), SyncTypeStock, "import")
		require.NoError(t, err)
		item.Start()

		outcome := item.Fail("connector timeout", time.Minute)

		assert.Equal(t, RetryOutcomeRequeue, outcome)
		assert.Equal(t, QueueStatusPending, item.Status)
		assert.Equal(t, 1, item.RetryCount)
		assert.Equal(t, "connector timeout", item.ErrorMessage)
		assert.Nil(t, item.StartedAt)
		assert.True(t, item.ScheduledAt.After(time.Now()), "retry must be scheduled in the future")
	})

	t.Run("fails terminally past the budget", func(t *testing.T) {
		item, err := NewSyncQueueItem(uuid.New(), uuid.New(), SyncTypeStock, "import")
		require.NoError(t, err)
		item.RetryCount = item.MaxRetries

		outcome := item.Fail("still broken", time.Minute)

		assert.Equal(t, RetryOutcomeTerminalFail, outcome)
		assert.Equal(t, QueueStatusFailed, item.Status)
		assert.Equal(t, "still broken", item.ErrorMessage)
		require.NotNil(t, item.CompletedAt)
	})

	t.Run("exhausts the budget after max retries", func(t *testing.T) {
		item, err := NewSyncQueueItem(uuid.New(), uuid.New(), SyncTypeOrders, "import")
		require.NoError(t, err)

		for i := 0; i < item.MaxRetries; i++ {
			assert.Equal(t, RetryOutcomeRequeue, item.Fail("attempt failed", time.Second))
		}
		assert.Equal(t, RetryOutcomeTerminalFail, item.Fail("final", time.Second))
		assert.Equal(t, QueueStatusFailed, item.Status)
	})
}

func TestParseSyncType(t *testing.T) {
	st, err := ParseSyncType("orders")
	require.NoError(t, err)
	assert.Equal(t, SyncTypeOrders, st)

	st, err = ParseSyncType("  Products ")
	require.NoError(t, err)
	assert.Equal(t, SyncTypeProducts, st)

	_, err = ParseSyncType("shipments")
	assert.ErrorIs(t, err, ErrInvalidSyncType)
}
