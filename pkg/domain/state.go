package domain

// AgentDirector is the reserved agent name for the routing/synthesis node.
// A TurnState with CurrentAgent empty or equal to AgentDirector is awaiting
// classification or has already been synthesized.
const AgentDirector = "director"

// Coordinator node names. These double as Step agent names and as the
// targets of the director's conditional routing edge.
const (
	AgentAnalysis      = "analysis"
	AgentCommunication = "communication"
	AgentManagement    = "management"
	AgentIntegration   = "integration"
)

// Message is one entry in the session conversation history.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Visualization is an opaque chart payload produced by at most one
// specialist per turn. It is carried untouched through the director back to
// the caller.
type Visualization struct {
	ImageData   []byte `json:"image_data,omitempty"`
	ImageType   string `json:"image_type,omitempty"`
	ChartType   string `json:"chart_type,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

// TurnState is the mutable record threaded through every node for one
// conversational turn. It is created fresh per external request; only
// History survives across turns, appended by the caller.
type TurnState struct {
	// UserInput is immutable once set.
	UserInput string

	// SessionID identifies the multi-turn conversation. Owned by the
	// caller, not the core.
	SessionID string

	// History is the conversation so far, loaded from the session store.
	History []Message

	// CurrentAgent names the last node that wrote a response. Empty or
	// AgentDirector means "awaiting classification or already synthesized".
	CurrentAgent string

	// Response is the latest natural-language output, overwritten by
	// whichever node last ran.
	Response string

	// Steps is the append-only delegation ledger for the turn.
	Steps []Step

	// Visualization is set by at most one specialist call per turn.
	Visualization *Visualization

	// IsFinalResponse is a one-shot flag: once true the routing edge must
	// terminate the turn regardless of any stale CurrentAgent.
	IsFinalResponse bool

	// VisualizationRequested is computed once at classification time from
	// the user input and consulted (not recomputed) downstream.
	VisualizationRequested bool
}

// NewTurnState creates a fresh state for one turn.
func NewTurnState(sessionID, userInput string, history []Message) *TurnState {
	return &TurnState{
		UserInput: userInput,
		SessionID: sessionID,
		History:   history,
	}
}

// AppendStep adds an immutable ledger entry. Steps are never mutated or
// removed after being appended.
func (s *TurnState) AppendStep(step Step) {
	s.Steps = append(s.Steps, step)
}

// LastStepBy returns the most recent step recorded by the given agent, or
// nil if the agent never ran this turn.
func (s *TurnState) LastStepBy(agent string) *Step {
	for i := len(s.Steps) - 1; i >= 0; i-- {
		if s.Steps[i].Agent == agent {
			return &s.Steps[i]
		}
	}
	return nil
}
