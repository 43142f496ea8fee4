package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/campushq/concierge/internal/logging"
	"github.com/campushq/concierge/pkg/domain"
	"github.com/campushq/concierge/pkg/ports"
)

// DefaultHistoryCap bounds stored history to the last ten exchanges.
const DefaultHistoryCap = 20

// lockEntry holds the mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session history access, ensuring a session's turns
// are serialized. It uses reference counting to garbage collect unused
// locks.
type Manager struct {
	store ports.HistoryStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker     ports.DistributedLocker
	lockTTL    time.Duration
	historyCap int
	rejectBusy bool
	logger     *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithHistoryCap bounds the stored history length; oldest entries are
// trimmed beyond the cap.
func WithHistoryCap(cap int) Option {
	return func(m *Manager) {
		m.historyCap = cap
	}
}

// WithBusyReject makes WithLock fail fast with domain.ErrSessionBusy when
// a turn is already in flight for the session, instead of queueing behind
// it.
func WithBusyReject() Option {
	return func(m *Manager) {
		m.rejectBusy = true
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over the given history store.
func NewManager(store ports.HistoryStore, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		locks:      make(map[string]*lockEntry),
		lockTTL:    30 * time.Second,
		historyCap: DefaultHistoryCap,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must Lock the entry.mu and call release(sessionID) after
// unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes fn while holding the session's lock. Concurrent turns
// for one session serialize here by default, or are rejected with
// domain.ErrSessionBusy under WithBusyReject; turns for different sessions
// proceed independently.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	if m.rejectBusy {
		if !entry.mu.TryLock() {
			m.release(sessionID)
			return fmt.Errorf("session %s: %w", sessionID, domain.ErrSessionBusy)
		}
	} else {
		entry.mu.Lock()
	}
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Turn runs one conversational turn under the session lock: it loads the
// history, invokes fn with it, then appends the exchange and persists the
// trimmed history. A session that has never spoken yields empty history.
func (m *Manager) Turn(ctx context.Context, sessionID, userMessage string, fn func(ctx context.Context, history []domain.Message) (string, error)) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		history, err := m.store.Load(ctx, sessionID)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("load history: %w", err)
		}

		reply, err := fn(ctx, history)
		if err != nil {
			return err
		}

		history = append(history,
			domain.Message{Role: "user", Content: userMessage},
			domain.Message{Role: "assistant", Content: reply},
		)
		if m.historyCap > 0 && len(history) > m.historyCap {
			history = history[len(history)-m.historyCap:]
		}

		if err := m.store.Save(ctx, sessionID, history); err != nil {
			return fmt.Errorf("save history: %w", err)
		}
		return nil
	})
}

// History retrieves a session's stored history under the lock.
func (m *Manager) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	var history []domain.Message
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		history, err = m.store.Load(ctx, sessionID)
		return err
	})
	return history, err
}

// Delete removes a session's history.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying history store.
func (m *Manager) Store() ports.HistoryStore {
	return m.store
}
