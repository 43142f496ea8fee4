package ports

import (
	"context"

	"github.com/campushq/concierge/pkg/domain"
)

// HistoryStore persists conversation history keyed by session ID.
// Implementations must return domain.ErrSessionNotFound for unknown
// sessions.
type HistoryStore interface {
	// Load retrieves the history for a session.
	Load(ctx context.Context, sessionID string) ([]domain.Message, error)

	// Save replaces the history for a session.
	Save(ctx context.Context, sessionID string, history []domain.Message) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// List returns known session IDs.
	List(ctx context.Context) ([]string, error)
}
