// Package redis provides Redis-backed session history storage and
// distributed locking for multi-replica deployments.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/campushq/concierge/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// HistoryStore implements ports.HistoryStore on Redis. Histories are
// serialized as JSON under prefix+"session:"+id.
type HistoryStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// StoreOption configures the HistoryStore.
type StoreOption func(*HistoryStore)

// WithTTL sets an expiry on stored histories. Zero means no expiry.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *HistoryStore) {
		s.ttl = ttl
	}
}

// NewHistoryStore creates a Redis-backed history store.
func NewHistoryStore(client *backend.Client, prefix string, opts ...StoreOption) *HistoryStore {
	s := &HistoryStore{
		client: client,
		prefix: prefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HistoryStore) key(sessionID string) string {
	return s.prefix + "session:" + sessionID
}

// Save serializes and persists the session history.
func (s *HistoryStore) Save(ctx context.Context, sessionID string, history []domain.Message) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis error saving history: %w", err)
	}
	return nil
}

// Load retrieves and deserializes the session history.
func (s *HistoryStore) Load(ctx context.Context, sessionID string) ([]domain.Message, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis error loading history: %w", err)
	}

	var history []domain.Message
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return history, nil
}

// Delete removes the session history.
func (s *HistoryStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis error deleting history: %w", err)
	}
	return nil
}

// List scans for active session keys.
func (s *HistoryStore) List(ctx context.Context) ([]string, error) {
	pattern := s.prefix + "session:*"
	var sessions []string

	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		sessions = append(sessions, key[len(s.prefix)+len("session:"):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis error listing sessions: %w", err)
	}
	return sessions, nil
}
