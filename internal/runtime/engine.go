// Package runtime wires the director and the coordinators into the turn
// state machine and runs one conversational turn through it.
package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/campushq/concierge/internal/metrics"
	"github.com/campushq/concierge/pkg/domain"
	"github.com/campushq/concierge/pkg/ports"
)

// nodeTerminal is the absorbing state of the turn graph.
const nodeTerminal = "terminal"

// maxTransitions bounds the graph walk. A well-formed turn takes at most
// four node visits (director, coordinator, director, terminal).
const maxTransitions = 8

// Engine runs turns through the director/coordinator graph. Coordinators
// always hand back to the director on a static edge; the only computed
// edge is the director's routing decision.
type Engine struct {
	director     *Director
	coordinators map[string]*Coordinator
	sink         ports.TraceSink
	hooks        domain.TurnHooks
	logger       *slog.Logger
	metrics      *metrics.Collector
}

// NewEngine assembles the turn graph from the completion port and the
// specialist leaves. Hooks fire synchronously on node boundaries; a zero
// value disables them.
func NewEngine(completion ports.CompletionPort, leaves Leaves, sink ports.TraceSink, hooks domain.TurnHooks, logger *slog.Logger, collector *metrics.Collector) *Engine {
	e := &Engine{
		director:     NewDirector(completion, logger),
		coordinators: make(map[string]*Coordinator),
		sink:         sink,
		hooks:        hooks,
		logger:       logger,
		metrics:      collector,
	}
	for _, profile := range []Profile{
		AnalysisProfile(leaves),
		CommunicationProfile(leaves),
		ManagementProfile(leaves),
		IntegrationProfile(leaves),
	} {
		e.coordinators[profile.Agent] = NewCoordinator(profile, completion, logger, collector)
	}
	return e
}

// Run executes one turn to completion. It never returns an error: every
// failure mode ends with a response string on the state.
func (e *Engine) Run(ctx context.Context, traceID string, state *domain.TurnState) {
	start := time.Now()
	route := "final"
	cursor := 0

	node := domain.AgentDirector
	for i := 0; i < maxTransitions && node != nodeTerminal; i++ {
		e.emit(ctx, traceID, state, domain.TraceEvent{Type: domain.EventNodeStart, Node: node})

		if node == domain.AgentDirector {
			e.director.Handle(ctx, state)
			e.emitSteps(ctx, traceID, state, &cursor)
			e.emit(ctx, traceID, state, domain.TraceEvent{Type: domain.EventNodeComplete, Node: node})

			next := e.route(state)
			if next != nodeTerminal && next != domain.AgentDirector {
				route = next
			}
			node = next
			continue
		}

		coordinator, ok := e.coordinators[node]
		if !ok {
			e.logger.Error("routing selected an unknown node", "node", node, "session_id", state.SessionID)
			state.IsFinalResponse = true
			break
		}
		coordinator.Handle(ctx, state)
		e.emitSteps(ctx, traceID, state, &cursor)
		e.emit(ctx, traceID, state, domain.TraceEvent{Type: domain.EventNodeComplete, Node: node})
		e.emit(ctx, traceID, state, domain.TraceEvent{
			Type:      domain.EventSnapshot,
			Node:      node,
			Agent:     state.CurrentAgent,
			Output:    state.Response,
			StepCount: len(state.Steps),
		})

		// Static edge: every coordinator hands back to the director.
		node = domain.AgentDirector
	}

	if state.Response == "" {
		// Routing must never leave the caller without a reply.
		state.Response = directorApology
		state.IsFinalResponse = true
	}

	e.metrics.TurnCompleted(route, time.Since(start).Seconds())
}

// route computes the director's outgoing edge.
func (e *Engine) route(state *domain.TurnState) string {
	if state.IsFinalResponse {
		return nodeTerminal
	}

	// A coordinator re-entering itself is supported but normally unused:
	// coordinators hand back to the director, which synthesizes and
	// terminates.
	if state.CurrentAgent != "" && state.CurrentAgent != domain.AgentDirector {
		return state.CurrentAgent
	}

	decoded := domain.DecodeRoute(state.Response)
	switch decoded {
	case domain.RouteFinal:
		state.Response = domain.StripFinalMarker(state.Response)
		state.IsFinalResponse = true
		return nodeTerminal
	case domain.RouteUnrecognized:
		// Never route on an ambiguous classification; the raw classifier
		// text becomes the reply.
		e.logger.Warn("no routing marker in classification",
			"session_id", state.SessionID,
			"response", state.Response,
		)
		state.IsFinalResponse = true
		return nodeTerminal
	default:
		return decoded.Agent()
	}
}

// emit fires the node hooks and sends one trace event, best effort.
func (e *Engine) emit(ctx context.Context, traceID string, state *domain.TurnState, ev domain.TraceEvent) {
	ev.TraceID = traceID
	ev.SessionID = state.SessionID
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	switch ev.Type {
	case domain.EventNodeStart:
		if e.hooks.OnNodeStart != nil {
			e.hooks.OnNodeStart(ctx, &ev)
		}
	case domain.EventNodeComplete:
		if e.hooks.OnNodeComplete != nil {
			e.hooks.OnNodeComplete(ctx, &ev)
		}
	}

	if e.sink == nil {
		return
	}
	e.sink.Append(ev)
}

// emitSteps records every ledger entry appended since the last call.
func (e *Engine) emitSteps(ctx context.Context, traceID string, state *domain.TurnState, cursor *int) {
	for ; *cursor < len(state.Steps); *cursor++ {
		step := state.Steps[*cursor]
		e.emit(ctx, traceID, state, domain.TraceEvent{
			Type:      domain.EventStep,
			Agent:     step.Agent,
			Action:    step.Action,
			Input:     step.Input,
			Output:    step.Output,
			Timestamp: step.Timestamp,
		})
	}
}
