// Package trace records per-turn execution traces. Recording is strictly
// best effort: a full buffer drops events and a failed file write is
// logged, never surfaced to the turn.
package trace

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/campushq/concierge/internal/logging"
	"github.com/campushq/concierge/pkg/domain"
	"github.com/campushq/concierge/pkg/ports"
)

// maxValueLen bounds any single recorded value. Chart payloads are
// base64-encoded images and would otherwise dominate the trace file.
const maxValueLen = 512

// maxListLen bounds recorded lists; longer ones keep the head plus a count
// of what was cut.
const maxListLen = 10

// Recorder implements ports.TraceSink and ports.TraceReader. Events are
// handed to a background worker over a bounded channel; the worker indexes
// them in memory and optionally appends them to one JSON-lines file per
// trace.
type Recorder struct {
	events  chan domain.TraceEvent
	done    chan struct{}
	drained chan struct{}

	mu     sync.RWMutex
	traces map[string][]domain.TraceEvent
	closed bool

	dir     string
	logger  *slog.Logger
	dropped int64
	onDrop  func()
}

// Option configures the Recorder.
type Option func(*Recorder)

// WithDir enables persistence: each trace is appended to
// dir/trace_<id>.jsonl as it runs.
func WithDir(dir string) Option {
	return func(r *Recorder) {
		r.dir = dir
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithBufferSize sets the event channel capacity.
func WithBufferSize(n int) Option {
	return func(r *Recorder) {
		r.events = make(chan domain.TraceEvent, n)
	}
}

// WithDropHook registers a callback fired for every event discarded under
// backpressure.
func WithDropHook(hook func()) Option {
	return func(r *Recorder) {
		r.onDrop = hook
	}
}

// NewRecorder creates a Recorder and starts its worker.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		events:  make(chan domain.TraceEvent, 256),
		done:    make(chan struct{}),
		drained: make(chan struct{}),
		traces:  make(map[string][]domain.TraceEvent),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	go r.run()
	return r
}

// Append hands an event to the worker without blocking. When the buffer is
// full the event is dropped and counted.
func (r *Recorder) Append(ev domain.TraceEvent) {
	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return
	}

	ev.Input = sanitize(ev.Action, ev.Input)
	ev.Output = sanitize(ev.Action, ev.Output)

	select {
	case r.events <- ev:
	default:
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()
		if r.onDrop != nil {
			r.onDrop()
		}
	}
}

// Trace returns the recorded events for a trace ID.
func (r *Recorder) Trace(traceID string) ([]domain.TraceEvent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events, ok := r.traces[traceID]
	if !ok {
		return nil, false
	}
	out := make([]domain.TraceEvent, len(events))
	copy(out, events)
	return out, true
}

// Dropped reports how many events were discarded due to backpressure.
func (r *Recorder) Dropped() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dropped
}

// Close stops the worker after draining buffered events.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	close(r.done)
	<-r.drained
}

func (r *Recorder) run() {
	defer close(r.drained)
	for {
		select {
		case ev := <-r.events:
			r.record(ev)
		case <-r.done:
			for {
				select {
				case ev := <-r.events:
					r.record(ev)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) record(ev domain.TraceEvent) {
	r.mu.Lock()
	r.traces[ev.TraceID] = append(r.traces[ev.TraceID], ev)
	r.mu.Unlock()

	if r.dir == "" {
		return
	}
	if err := r.appendFile(ev); err != nil {
		r.logger.Warn("failed to persist trace event",
			"trace_id", ev.TraceID,
			"err", err,
		)
	}
}

func (r *Recorder) appendFile(ev domain.TraceEvent) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create trace dir: %w", err)
	}
	path := filepath.Join(r.dir, "trace_"+ev.TraceID+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = f.Write(line)
	return err
}

// sanitize rewrites a value before it enters the recorder: message bodies
// from email actions and query result rows are redacted, binary blobs are
// masked, and oversized strings and lists are truncated. Query results keep
// only the row count and column names.
func sanitize(action string, value any) any {
	switch v := value.(type) {
	case string:
		if strings.Contains(action, "email") && len(v) > maxValueLen {
			return "Email content"
		}
		if len(v) > maxValueLen {
			return v[:maxValueLen] + "... (truncated)"
		}
		return v
	case ports.QueryResult:
		return summarizeResult(action, v)
	case []byte:
		return fmt.Sprintf("binary data (%d bytes)", len(v))
	case []map[string]any:
		return fmt.Sprintf("%d rows (values redacted)", len(v))
	case []any:
		return sanitizeList(action, v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = sanitize(action, item)
		}
		return out
	default:
		return value
	}
}

// summarizeResult reduces a query result to its shape. Row values never
// enter the trace.
func summarizeResult(action string, r ports.QueryResult) map[string]any {
	out := map[string]any{
		"query":     sanitize(action, r.Query),
		"row_count": len(r.Rows),
		"columns":   r.Columns,
	}
	if r.Err != "" {
		out["err"] = r.Err
	}
	return out
}

func sanitizeList(action string, list []any) []any {
	total := len(list)
	if total > maxListLen {
		list = list[:maxListLen]
	}
	out := make([]any, 0, len(list)+1)
	for _, item := range list {
		out = append(out, sanitize(action, item))
	}
	if total > maxListLen {
		out = append(out, fmt.Sprintf("... (%d more items)", total-maxListLen))
	}
	return out
}
