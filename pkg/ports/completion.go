package ports

import "context"

// CompletionPort is the opaque text-completion boundary. Given a prompt it
// returns free text which may be malformed or non-conforming; callers must
// treat it as a black box and degrade gracefully.
type CompletionPort interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompletionFunc adapts a plain function to a CompletionPort.
type CompletionFunc func(ctx context.Context, prompt string) (string, error)

func (f CompletionFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
