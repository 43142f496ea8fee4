package concierge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campushq/concierge/internal/logging"
	"github.com/campushq/concierge/internal/metrics"
	"github.com/campushq/concierge/internal/runtime"
	"github.com/campushq/concierge/pkg/adapters/memory"
	"github.com/campushq/concierge/pkg/domain"
	"github.com/campushq/concierge/pkg/ports"
	"github.com/campushq/concierge/pkg/recipients"
	"github.com/campushq/concierge/pkg/session"
	"github.com/google/uuid"
)

// Specialists bundles the external leaves a deployment plugs in: data
// queries, chart rendering, mail, data mutation, and external campus
// systems. Every field is required.
type Specialists struct {
	Data     ports.DataQueryPort
	Chart    ports.ChartPort
	Mail     ports.MailPort
	Mutation ports.MutationPort
	External ports.ExternalSystemPort
}

// Reply is the caller-visible outcome of one turn. Intermediate steps are
// not exposed here; they are reachable through the trace surface keyed by
// TraceID.
type Reply struct {
	Message       string                `json:"message"`
	Visualization *domain.Visualization `json:"visualization,omitempty"`
	TraceID       string                `json:"trace_id"`
}

// Engine is the high-level entry point. It wraps the internal turn runtime
// and the session manager behind a single submit operation.
type Engine struct {
	runtime  *runtime.Engine
	sessions *session.Manager
	reader   ports.TraceReader

	store      ports.HistoryStore
	locker     ports.DistributedLocker
	sink       ports.TraceSink
	hooks      domain.TurnHooks
	collector  *metrics.Collector
	logger     *slog.Logger
	historyCap int
	lockTTL    time.Duration
	busyReject bool
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithHistoryStore injects a session history backend. Defaults to the
// in-memory store.
func WithHistoryStore(store ports.HistoryStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables distributed session locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithTraceSink injects a trace recorder. If the sink also implements
// ports.TraceReader, Trace lookups are served from it.
func WithTraceSink(sink ports.TraceSink) Option {
	return func(e *Engine) {
		e.sink = sink
		if r, ok := sink.(ports.TraceReader); ok {
			e.reader = r
		}
	}
}

// WithTurnHooks registers callbacks fired synchronously as a turn enters
// and leaves each node.
func WithTurnHooks(hooks domain.TurnHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithBusyReject makes SubmitTurn fail fast with domain.ErrSessionBusy
// when the session already has a turn in flight, instead of queueing
// behind it.
func WithBusyReject() Option {
	return func(e *Engine) {
		e.busyReject = true
	}
}

// WithMetrics attaches a Prometheus collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(e *Engine) {
		e.collector = collector
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHistoryCap bounds the stored conversation history per session.
func WithHistoryCap(cap int) Option {
	return func(e *Engine) {
		e.historyCap = cap
	}
}

// WithLockTTL sets the distributed lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// New initializes an Engine over a completion port and the specialist
// leaves.
func New(completion ports.CompletionPort, specialists Specialists, opts ...Option) (*Engine, error) {
	if completion == nil {
		return nil, fmt.Errorf("completion port is required")
	}
	if specialists.Data == nil || specialists.Chart == nil || specialists.Mail == nil ||
		specialists.Mutation == nil || specialists.External == nil {
		return nil, fmt.Errorf("every specialist leaf is required")
	}

	eng := &Engine{
		historyCap: session.DefaultHistoryCap,
		lockTTL:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.store == nil {
		eng.store = memory.NewHistoryStore()
	}

	sessionOpts := []session.Option{
		session.WithLogger(eng.logger),
		session.WithHistoryCap(eng.historyCap),
		session.WithLockTTL(eng.lockTTL),
	}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}
	if eng.busyReject {
		sessionOpts = append(sessionOpts, session.WithBusyReject())
	}
	eng.sessions = session.NewManager(eng.store, sessionOpts...)

	leaves := runtime.Leaves{
		Data:     specialists.Data,
		Chart:    specialists.Chart,
		Mail:     specialists.Mail,
		Mutation: specialists.Mutation,
		External: specialists.External,
		Recipients: recipients.New(specialists.Data,
			recipients.WithLogger(eng.logger),
			recipients.WithFallbackHook(eng.collector.RecipientFallback)),
	}
	eng.runtime = runtime.NewEngine(completion, leaves, eng.sink, eng.hooks, eng.logger, eng.collector)

	return eng, nil
}

// SubmitTurn runs one conversational turn for a session and returns the
// final reply. It never surfaces routing or specialist failures; those end
// the turn with an apology message. The only errors returned here come
// from the session layer (lock acquisition, history persistence).
func (e *Engine) SubmitTurn(ctx context.Context, sessionID, userMessage string) (Reply, error) {
	if userMessage == "" {
		return Reply{}, fmt.Errorf("user message must not be empty")
	}

	traceID := uuid.NewString()
	reply := Reply{TraceID: traceID}

	err := e.sessions.Turn(ctx, sessionID, userMessage, func(ctx context.Context, history []domain.Message) (string, error) {
		state := domain.NewTurnState(sessionID, userMessage, history)
		e.runtime.Run(ctx, traceID, state)
		reply.Message = state.Response
		reply.Visualization = state.Visualization
		return state.Response, nil
	})
	if err != nil {
		return Reply{}, fmt.Errorf("turn for session %s: %w", sessionID, err)
	}
	return reply, nil
}

// Trace returns the recorded events for a trace ID, if a readable trace
// sink is configured.
func (e *Engine) Trace(traceID string) ([]domain.TraceEvent, bool) {
	if e.reader == nil {
		return nil, false
	}
	return e.reader.Trace(traceID)
}

// Sessions exposes the session manager for history inspection and cleanup.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}
