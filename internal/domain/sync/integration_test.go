package sync

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIntegration(t *testing.T) *Integration {
	t.Helper()
	integration, err := NewIntegration(uuid.New(), PlatformShopify, "acme.myshopify.com", "whsec")
	require.NoError(t, err)
	return integration
}

func TestNewIntegration(t *testing.T) {
	t.Run("creates connected active integration", func(t *testing.T) {
		integration := newTestIntegration(t)

		assert.Equal(t, ConnectionStatusConnected, integration.ConnectionStatus)
		assert.True(t, integration.IsActive)
		assert.Zero(t, integration.ConsecutiveFailures)
		assert.True(t, integration.Eligible())
	})

	t.Run("rejects nil tenant", func(t *testing.T) {
		_, err := NewIntegration(uuid.Nil, PlatformShopify, "acme.myshopify.com", "whsec")
		assert.ErrorIs(t, err, ErrInvalidTenantID)
	})

	t.Run("rejects unknown platform", func(t *testing.T) {
		_, err := NewIntegration(uuid.New(), PlatformUnknown, "acme.myshopify.com", "whsec")
		assert.ErrorIs(t, err, ErrUnknownPlatform)
	})

	t.Run("rejects empty store identifier", func(t *testing.T) {
		_, err := NewIntegration(uuid.New(), PlatformWooCommerce, "", "whsec")
		assert.ErrorIs(t, err, ErrInvalidStoreIdentifier)
	})
}

func TestIntegration_FailureEscalation(t *testing.T) {
	integration := newTestIntegration(t)

	for i := 0; i < 4; i++ {
		integration.RecordSyncFailure("connector timeout")
	}
	assert.Equal(t, ConnectionStatusError, integration.ConnectionStatus)
	assert.Equal(t, 4, integration.ConsecutiveFailures)
	assert.True(t, integration.Eligible(), "errored integration keeps syncing below the threshold")

	integration.RecordSyncFailure("connector timeout")
	assert.Equal(t, ConnectionStatusDisabled, integration.ConnectionStatus)
	assert.False(t, integration.Eligible())
}

func TestIntegration_RecordSyncSuccess(t *testing.T) {
	integration := newTestIntegration(t)
	integration.RecordSyncFailure("boom")
	integration.RecordSyncFailure("boom")

	integration.RecordSyncSuccess()

	assert.Equal(t, ConnectionStatusConnected, integration.ConnectionStatus)
	assert.Zero(t, integration.ConsecutiveFailures)
	assert.Empty(t, integration.LastError)
	require.NotNil(t, integration.LastSyncAt)
	assert.True(t, integration.Eligible())
}

func TestIntegration_EnableDisable(t *testing.T) {
	t.Run("disable removes eligibility", func(t *testing.T) {
		integration := newTestIntegration(t)
		integration.Disable()

		assert.False(t, integration.IsActive)
		assert.False(t, integration.Eligible())
	})

	t.Run("enable clears failure tracking", func(t *testing.T) {
		integration := newTestIntegration(t)
		for i := 0; i < disableFailureThreshold; i++ {
			integration.RecordSyncFailure("boom")
		}
		require.False(t, integration.Eligible())

		integration.Enable()

		assert.True(t, integration.IsActive)
		assert.Equal(t, ConnectionStatusConnected, integration.ConnectionStatus)
		assert.Zero(t, integration.ConsecutiveFailures)
		assert.Empty(t, integration.LastError)
		assert.True(t, integration.Eligible())
	})
}
