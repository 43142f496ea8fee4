package domain

import "time"

// StepStatus marks the outcome of one delegation.
type StepStatus string

const (
	StepOK     StepStatus = "ok"
	StepFailed StepStatus = "failed"
)

// Step is one immutable audit record per delegation. Steps form the trail
// consumed by the director's synthesis and by the trace recorder; they are
// never mutated or removed after being appended, and their timestamps are
// non-decreasing in append order within a turn.
type Step struct {
	Agent     string     `json:"agent"`
	Action    string     `json:"action"`
	Input     any        `json:"input,omitempty"`
	Output    any        `json:"output,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Status    StepStatus `json:"status"`
}

// NewStep records a successful delegation stamped with the current time.
func NewStep(agent, action string, input, output any) Step {
	return Step{
		Agent:     agent,
		Action:    action,
		Input:     input,
		Output:    output,
		Timestamp: time.Now(),
		Status:    StepOK,
	}
}
