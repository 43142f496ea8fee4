// Package mock provides stand-in adapters for the outbound leaf ports.
// They log and record every call instead of reaching real campus systems,
// which keeps local runs and tests self-contained.
package mock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/campushq/concierge/internal/logging"
	"github.com/campushq/concierge/pkg/ports"
	"github.com/google/uuid"
)

// SentMail records one delivered message.
type SentMail struct {
	Recipients []string
	Subject    string
	Body       string
	Priority   string
	SentAt     time.Time
}

// Mailer implements ports.MailPort. Every send succeeds and is recorded.
type Mailer struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []SentMail
}

// NewMailer creates a recording mailer.
func NewMailer(logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Mailer{logger: logger}
}

// Send records the message and reports success.
func (m *Mailer) Send(ctx context.Context, recipients []string, subject, body, priority string) (ports.MailResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.MailResult{}, err
	}
	if len(recipients) == 0 {
		return ports.MailResult{Status: "error", Message: "no recipients provided"}, nil
	}

	m.mu.Lock()
	m.sent = append(m.sent, SentMail{
		Recipients: recipients,
		Subject:    subject,
		Body:       body,
		Priority:   priority,
		SentAt:     time.Now().UTC(),
	})
	m.mu.Unlock()

	id := uuid.NewString()
	m.logger.Info("mock email sent",
		"message_id", id,
		"recipients", len(recipients),
		"subject", subject,
	)
	return ports.MailResult{
		Status:    "success",
		MessageID: id,
		Message:   fmt.Sprintf("Email sent to %d recipients", len(recipients)),
	}, nil
}

// Sent returns a copy of every recorded message.
func (m *Mailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)
	return out
}

var _ ports.MailPort = (*Mailer)(nil)
