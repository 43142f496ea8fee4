package ports

import "context"

// MailResult reports the outcome of a send.
type MailResult struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

// MailPort delivers one message to a list of addresses.
type MailPort interface {
	Send(ctx context.Context, recipients []string, subject, body, priority string) (MailResult, error)
}
