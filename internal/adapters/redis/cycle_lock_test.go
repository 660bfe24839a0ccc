package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushgate/pushgate/internal/testutil"
)

func newTestLock(t *testing.T, client *goredis.Client, ttl time.Duration) *CycleLock {
	t.Helper()
	lock, err := NewCycleLock(CycleLockOptions{
		Client: client,
		TTL:    ttl,
		Key:    "pushgate:test:cycle:lock",
	})
	require.NoError(t, err)
	return lock
}

func TestCycleLock_AcquireRelease(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()
	ctx := context.Background()

	lock := newTestLock(t, client, 30*time.Second)
	require.NoError(t, lock.Acquire(ctx))

	// A second process cannot get in while the owner is alive.
	other := newTestLock(t, client, 30*time.Second)
	assert.ErrorIs(t, other.Acquire(ctx), ErrLockHeld)

	require.NoError(t, lock.Release(ctx))

	// After release the lock is free again.
	require.NoError(t, other.Acquire(ctx))
	require.NoError(t, other.Release(ctx))
}

func TestCycleLock_ReleaseWithoutAcquire(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	lock := newTestLock(t, client, 30*time.Second)
	assert.NoError(t, lock.Release(context.Background()))
}

func TestCycleLock_DoubleAcquireSameProcess(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()
	ctx := context.Background()

	lock := newTestLock(t, client, 30*time.Second)
	require.NoError(t, lock.Acquire(ctx))
	defer func() { _ = lock.Release(ctx) }()

	assert.Error(t, lock.Acquire(ctx))
}

func TestCycleLock_HeartbeatKeepsLockAlive(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()
	ctx := context.Background()

	// TTL short enough that without heartbeats the lock would expire during
	// the test.
	lock := newTestLock(t, client, time.Second)
	require.NoError(t, lock.Acquire(ctx))
	defer func() { _ = lock.Release(ctx) }()

	time.Sleep(1500 * time.Millisecond)

	other := newTestLock(t, client, time.Second)
	assert.ErrorIs(t, other.Acquire(ctx), ErrLockHeld,
		"live owner keeps refreshing past the ttl")
}

func TestCycleLock_StaleOwnerCannotReleaseSuccessor(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()
	ctx := context.Background()

	stale := newTestLock(t, client, 30*time.Second)
	require.NoError(t, stale.Acquire(ctx))

	// Simulate a crashed owner whose key expired and was re-acquired.
	require.NoError(t, client.Set(ctx, "pushgate:test:cycle:lock", "successor-token", 30*time.Second).Err())

	require.NoError(t, stale.Release(ctx))
	val, err := client.Get(ctx, "pushgate:test:cycle:lock").Result()
	require.NoError(t, err)
	assert.Equal(t, "successor-token", val, "owner-checked release leaves foreign locks alone")
}
