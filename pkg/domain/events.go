package domain

import (
	"context"
	"time"
)

// EventType defines the category of a trace event.
type EventType string

const (
	EventNodeStart    EventType = "node_start"
	EventNodeComplete EventType = "node_complete"
	EventStep         EventType = "step"
	EventSnapshot     EventType = "snapshot"
)

// TraceEvent is one append-only observability record for a turn. Events are
// a side channel: losing them must never affect routing or the reply.
type TraceEvent struct {
	TraceID   string    `json:"trace_id"`
	SessionID string    `json:"session_id"`
	Type      EventType `json:"type"`
	Node      string    `json:"node,omitempty"`
	Agent     string    `json:"agent,omitempty"`
	Action    string    `json:"action,omitempty"`
	Input     any       `json:"input,omitempty"`
	Output    any       `json:"output,omitempty"`
	StepCount int       `json:"step_count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TurnHooks defines optional callbacks for turn observability.
type TurnHooks struct {
	OnNodeStart    func(context.Context, *TraceEvent)
	OnNodeComplete func(context.Context, *TraceEvent)
}
