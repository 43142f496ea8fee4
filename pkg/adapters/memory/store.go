// Package memory provides in-memory adapters, primarily for tests and
// single-process deployments.
package memory

import (
	"context"
	"sync"

	"github.com/campushq/concierge/pkg/domain"
)

// HistoryStore implements ports.HistoryStore in memory.
// Safe for concurrent use.
type HistoryStore struct {
	data map[string][]domain.Message
	mu   sync.RWMutex
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		data: make(map[string][]domain.Message),
	}
}

// Save persists the session history in memory.
func (s *HistoryStore) Save(ctx context.Context, sessionID string, history []domain.Message) error {
	// Copy on write so the caller can't mutate stored history by slice alias.
	copied := make([]domain.Message, len(history))
	copy(copied, history)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = copied
	return nil
}

// Load retrieves the session history from memory.
func (s *HistoryStore) Load(ctx context.Context, sessionID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	ret := make([]domain.Message, len(history))
	copy(ret, history)
	return ret, nil
}

// Delete removes the session history.
func (s *HistoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns active sessions.
func (s *HistoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	return sessions, nil
}
