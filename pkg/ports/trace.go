package ports

import "github.com/campushq/concierge/pkg/domain"

// TraceSink receives trace events off the turn's critical path. Append must
// not block: implementations buffer or drop, and losing trace data must
// never fail a turn.
type TraceSink interface {
	Append(ev domain.TraceEvent)
}

// TraceReader is the optional read-only inspection surface over recorded
// traces, keyed by trace ID.
type TraceReader interface {
	Trace(traceID string) ([]domain.TraceEvent, bool)
}
