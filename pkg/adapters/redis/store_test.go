package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	adapter "github.com/campushq/concierge/pkg/adapters/redis"
	"github.com/campushq/concierge/pkg/domain"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*backend.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestHistoryStore_SaveLoadRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)
	store := adapter.NewHistoryStore(client, "concierge:")
	ctx := context.Background()

	history := []domain.Message{
		{Role: "user", Content: "show enrollment numbers"},
		{Role: "assistant", Content: "here they are"},
	}
	require.NoError(t, store.Save(ctx, "s1", history))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, history, loaded)
}

func TestHistoryStore_LoadMissing(t *testing.T) {
	client, _ := newTestClient(t)
	store := adapter.NewHistoryStore(client, "concierge:")

	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestHistoryStore_TTLExpires(t *testing.T) {
	client, mr := newTestClient(t)
	store := adapter.NewHistoryStore(client, "concierge:", adapter.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", []domain.Message{{Role: "user", Content: "hi"}}))

	mr.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestHistoryStore_DeleteAndList(t *testing.T) {
	client, _ := newTestClient(t)
	store := adapter.NewHistoryStore(client, "concierge:")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", []domain.Message{{Role: "user", Content: "x"}}))
	require.NoError(t, store.Save(ctx, "b", []domain.Message{{Role: "user", Content: "y"}}))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, sessions)

	require.NoError(t, store.Delete(ctx, "a"))
	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, sessions)
}

func TestLocker_AcquireAndRelease(t *testing.T) {
	client, _ := newTestClient(t)
	locker := adapter.NewLocker(client, "concierge:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "s1", 5*time.Second)
	require.NoError(t, err)

	// A second acquisition must not succeed while the lock is held.
	blockedCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(blockedCtx, "s1", 5*time.Second)
	require.ErrorIs(t, err, adapter.ErrLockAcquire)

	require.NoError(t, unlock(ctx))

	// Released: acquiring again succeeds immediately.
	unlock2, err := locker.Lock(ctx, "s1", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLocker_UnlockOnlyReleasesOwnToken(t *testing.T) {
	client, mr := newTestClient(t)
	locker := adapter.NewLocker(client, "concierge:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "s1", time.Second)
	require.NoError(t, err)

	// The lock expires and another holder takes it.
	mr.FastForward(2 * time.Second)
	unlock2, err := locker.Lock(ctx, "s1", 5*time.Second)
	require.NoError(t, err)

	// The stale holder's unlock must not delete the new holder's lock.
	require.NoError(t, unlock(ctx))
	val, err := client.Get(ctx, "concierge:lock:s1").Result()
	require.NoError(t, err)
	assert.NotEmpty(t, val)

	require.NoError(t, unlock2(ctx))
}
