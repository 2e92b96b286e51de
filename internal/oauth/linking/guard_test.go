package linking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welldanyogia/webrana-briefing-backend/internal/cache"
	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestGuard builds a Guard over an in-memory store with fast polling.
func newTestGuard(t *testing.T) *Guard {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CacheEntry{}))

	guard := NewGuard(cache.NewStore(db), nil)
	guard.pollInterval = 10 * time.Millisecond
	guard.pollTimeout = 500 * time.Millisecond
	return guard
}

func TestGuard_CachedOutcome_Missing(t *testing.T) {
	guard := newTestGuard(t)

	outcome, err := guard.CachedOutcome(context.Background(), "google", "nonce-1")

	require.NoError(t, err)
	assert.Nil(t, outcome)
}

func TestGuard_SaveAndReplayOutcome(t *testing.T) {
	guard := newTestGuard(t)
	saved := Outcome{Success: SuccessAccountLinked}

	guard.SaveOutcome(context.Background(), "google", "nonce-1", saved)

	outcome, err := guard.CachedOutcome(context.Background(), "google", "nonce-1")
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, saved, *outcome)
}

func TestGuard_OutcomesAreScopedByProviderAndNonce(t *testing.T) {
	guard := newTestGuard(t)
	guard.SaveOutcome(context.Background(), "google", "nonce-1", Outcome{Success: SuccessAccountLinked})

	outcome, err := guard.CachedOutcome(context.Background(), "microsoft", "nonce-1")
	require.NoError(t, err)
	assert.Nil(t, outcome)

	outcome, err = guard.CachedOutcome(context.Background(), "google", "nonce-2")
	require.NoError(t, err)
	assert.Nil(t, outcome)
}

func TestGuard_ErrorOutcomesAreCachedToo(t *testing.T) {
	guard := newTestGuard(t)
	saved := Outcome{Error: ErrCodeUserCancelled, ErrorDescription: "denied"}

	guard.SaveOutcome(context.Background(), "google", "nonce-1", saved)

	outcome, err := guard.CachedOutcome(context.Background(), "google", "nonce-1")
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.True(t, outcome.Failed())
	assert.Equal(t, ErrCodeUserCancelled, outcome.Error)
}

func TestGuard_AcquireLock_FirstCallerWins(t *testing.T) {
	guard := newTestGuard(t)

	first, err := guard.AcquireLock(context.Background(), "google", "nonce-1")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := guard.AcquireLock(context.Background(), "google", "nonce-1")
	require.NoError(t, err)
	assert.False(t, second)
}

func TestGuard_ReleaseLockAllowsReacquisition(t *testing.T) {
	guard := newTestGuard(t)

	acquired, err := guard.AcquireLock(context.Background(), "google", "nonce-1")
	require.NoError(t, err)
	require.True(t, acquired)

	guard.ReleaseLock(context.Background(), "google", "nonce-1")

	acquired, err = guard.AcquireLock(context.Background(), "google", "nonce-1")
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestGuard_AwaitOutcome_ReturnsWhenHolderFinishes(t *testing.T) {
	guard := newTestGuard(t)

	go func() {
		time.Sleep(50 * time.Millisecond)
		guard.SaveOutcome(context.Background(), "google", "nonce-1", Outcome{Success: SuccessAccountMerged})
	}()

	outcome, err := guard.AwaitOutcome(context.Background(), "google", "nonce-1")

	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, SuccessAccountMerged, outcome.Success)
}

func TestGuard_AwaitOutcome_TimesOut(t *testing.T) {
	guard := newTestGuard(t)

	outcome, err := guard.AwaitOutcome(context.Background(), "google", "nonce-1")

	require.NoError(t, err)
	assert.Nil(t, outcome)
}

func TestGuard_AwaitOutcome_ContextCancelled(t *testing.T) {
	guard := newTestGuard(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := guard.AwaitOutcome(ctx, "google", "nonce-1")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestGuard_CorruptedOutcomeFallsThrough(t *testing.T) {
	guard := newTestGuard(t)
	require.NoError(t, guard.store.Set(context.Background(), resultKey("google", "nonce-1"), "{not json", time.Minute))

	outcome, err := guard.CachedOutcome(context.Background(), "google", "nonce-1")

	require.NoError(t, err)
	assert.Nil(t, outcome)
}
