package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/campushq/concierge/pkg/adapters/memory"
	"github.com/campushq/concierge/pkg/domain"
	"github.com/campushq/concierge/pkg/ports"
	"github.com/campushq/concierge/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurn_FirstTurnStartsEmpty(t *testing.T) {
	mgr := session.NewManager(memory.NewHistoryStore())

	var seen []domain.Message
	err := mgr.Turn(context.Background(), "s1", "hello", func(ctx context.Context, history []domain.Message) (string, error) {
		seen = history
		return "hi there", nil
	})
	require.NoError(t, err)
	assert.Empty(t, seen)

	history, err := mgr.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.Message{Role: "user", Content: "hello"}, history[0])
	assert.Equal(t, domain.Message{Role: "assistant", Content: "hi there"}, history[1])
}

func TestTurn_HistoryAccumulatesAcrossTurns(t *testing.T) {
	mgr := session.NewManager(memory.NewHistoryStore())
	ctx := context.Background()

	require.NoError(t, mgr.Turn(ctx, "s1", "first", func(ctx context.Context, h []domain.Message) (string, error) {
		return "r1", nil
	}))
	require.NoError(t, mgr.Turn(ctx, "s1", "second", func(ctx context.Context, h []domain.Message) (string, error) {
		assert.Len(t, h, 2)
		return "r2", nil
	}))

	history, err := mgr.History(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestTurn_HistoryTrimsToCap(t *testing.T) {
	mgr := session.NewManager(memory.NewHistoryStore(), session.WithHistoryCap(4))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		msg := fmt.Sprintf("msg-%d", i)
		require.NoError(t, mgr.Turn(ctx, "s1", msg, func(ctx context.Context, h []domain.Message) (string, error) {
			return "ok", nil
		}))
	}

	history, err := mgr.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	// Oldest exchanges fell off the front.
	assert.Equal(t, "msg-3", history[0].Content)
	assert.Equal(t, "msg-4", history[2].Content)
}

func TestTurn_FnErrorDoesNotPersist(t *testing.T) {
	mgr := session.NewManager(memory.NewHistoryStore())
	ctx := context.Background()

	wantErr := errors.New("boom")
	err := mgr.Turn(ctx, "s1", "hello", func(ctx context.Context, h []domain.Message) (string, error) {
		return "", wantErr
	})
	require.ErrorIs(t, err, wantErr)

	history, err := mgr.History(ctx, "s1")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Empty(t, history)
}

func TestWithLock_SerializesSameSession(t *testing.T) {
	mgr := session.NewManager(memory.NewHistoryStore())
	ctx := context.Background()

	var mu sync.Mutex
	var active, maxActive int

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = mgr.WithLock(ctx, "shared", func(ctx context.Context) error {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				time.Sleep(5 * time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive)
}

func TestWithLock_DifferentSessionsRunConcurrently(t *testing.T) {
	mgr := session.NewManager(memory.NewHistoryStore())
	ctx := context.Background()

	release := make(chan struct{})
	entered := make(chan struct{})

	go func() {
		_ = mgr.WithLock(ctx, "a", func(ctx context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered

	done := make(chan struct{})
	go func() {
		_ = mgr.WithLock(ctx, "b", func(ctx context.Context) error {
			return nil
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session b blocked behind session a")
	}
	close(release)
}

func TestWithLock_BusyRejectFailsFastOnInFlightTurn(t *testing.T) {
	mgr := session.NewManager(memory.NewHistoryStore(), session.WithBusyReject())
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- mgr.WithLock(ctx, "s1", func(ctx context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	err := mgr.WithLock(ctx, "s1", func(ctx context.Context) error {
		t.Error("fn must not run while a turn is in flight")
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrSessionBusy)

	// A different session is unaffected.
	require.NoError(t, mgr.WithLock(ctx, "s2", func(ctx context.Context) error { return nil }))

	close(release)
	require.NoError(t, <-done)

	// The in-flight turn finished; the session accepts work again.
	require.NoError(t, mgr.WithLock(ctx, "s1", func(ctx context.Context) error { return nil }))
}

type failingLocker struct{}

func (failingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	return nil, errors.New("lock held elsewhere")
}

func TestWithLock_DistributedLockFailureSurfaces(t *testing.T) {
	mgr := session.NewManager(memory.NewHistoryStore(), session.WithLocker(failingLocker{}))

	err := mgr.WithLock(context.Background(), "s1", func(ctx context.Context) error {
		t.Fatal("fn must not run when the distributed lock fails")
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "distributed lock")
}

func TestDelete_RemovesHistory(t *testing.T) {
	mgr := session.NewManager(memory.NewHistoryStore())
	ctx := context.Background()

	require.NoError(t, mgr.Turn(ctx, "s1", "hello", func(ctx context.Context, h []domain.Message) (string, error) {
		return "hi", nil
	}))
	require.NoError(t, mgr.Delete(ctx, "s1"))

	_, err := mgr.History(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
