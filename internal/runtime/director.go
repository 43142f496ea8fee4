package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/campushq/concierge/pkg/domain"
	"github.com/campushq/concierge/pkg/ports"
)

// directorApology is the fixed reply written when classification or
// synthesis fails. The turn still terminates normally.
const directorApology = "I apologize, but I ran into a problem while handling your request. Please try again in a moment."

const (
	noDataRetrieved = "No specific data retrieved."
	emptyResultSet  = "Query executed successfully but returned no results."
)

// visualizationKeywords is the fixed hint set scanned against the user
// input at classification time. The hint is computed once and consulted,
// never recomputed, downstream.
var visualizationKeywords = []string{
	"chart", "plot", "graph", "visualization", "visualize",
	"visualisation", "histogram", "bar chart", "show me", "display",
}

// wantsVisualization reports whether the input matches the hint set.
func wantsVisualization(input string) bool {
	in := strings.ToLower(input)
	for _, kw := range visualizationKeywords {
		if strings.Contains(in, kw) {
			return true
		}
	}
	return false
}

// Director is the entry and exit node of a turn. It classifies intent on
// the way in and synthesizes the final reply on the way out.
type Director struct {
	completion ports.CompletionPort
	logger     *slog.Logger
}

// NewDirector creates a Director over the completion port.
func NewDirector(completion ports.CompletionPort, logger *slog.Logger) *Director {
	return &Director{completion: completion, logger: logger}
}

// Handle dispatches to classification or synthesis mode. A turn entering
// with no coordinator recorded is classified; a turn returning from a
// coordinator is synthesized.
func (d *Director) Handle(ctx context.Context, state *domain.TurnState) {
	if state.CurrentAgent == "" || state.CurrentAgent == domain.AgentDirector {
		d.classify(ctx, state)
		return
	}
	d.synthesize(ctx, state)
}

func (d *Director) classify(ctx context.Context, state *domain.TurnState) {
	state.VisualizationRequested = wantsVisualization(state.UserInput)

	prompt := fmt.Sprintf(classificationPrompt, formatHistory(state.History), state.UserInput)
	raw, err := d.completion.Complete(ctx, prompt)
	if err != nil {
		d.logger.Error("intent classification failed", "session_id", state.SessionID, "err", err)
		state.Response = directorApology
		state.CurrentAgent = domain.AgentDirector
		return
	}

	state.Response = raw
	state.AppendStep(domain.NewStep(domain.AgentDirector, "analyze_intent", state.UserInput, raw))
	state.CurrentAgent = domain.AgentDirector
}

func (d *Director) synthesize(ctx context.Context, state *domain.TurnState) {
	// Prefer the coordinator's recorded step; a failed coordinator appends
	// no step but still leaves its apology in Response.
	coordinatorResponse := "The specialist produced no response."
	if state.Response != "" {
		coordinatorResponse = state.Response
	}
	if step := state.LastStepBy(state.CurrentAgent); step != nil {
		if s, ok := step.Output.(string); ok && s != "" {
			coordinatorResponse = s
		}
	}

	hasVisualization := "no"
	if state.Visualization != nil {
		hasVisualization = "yes"
	}

	prompt := fmt.Sprintf(synthesisPrompt,
		state.UserInput,
		formatHistory(state.History),
		coordinatorResponse,
		retrievedData(state),
		hasVisualization,
	)

	raw, err := d.completion.Complete(ctx, prompt)
	if err != nil {
		d.logger.Error("response synthesis failed", "session_id", state.SessionID, "err", err)
		state.Response = directorApology
	} else {
		state.Response = raw
	}

	state.CurrentAgent = domain.AgentDirector
	state.IsFinalResponse = true
}

// retrievedData renders the most recent non-empty SQL result, truncated to
// three rows, for the synthesis prompt.
func retrievedData(state *domain.TurnState) string {
	sawQuery := false
	for i := len(state.Steps) - 1; i >= 0; i-- {
		step := state.Steps[i]
		if step.Agent != "sql_agent" {
			continue
		}
		sawQuery = true
		result, ok := step.Output.(ports.QueryResult)
		if !ok || len(result.Rows) == 0 {
			continue
		}
		rows := result.Rows
		if len(rows) > 3 {
			rows = rows[:3]
		}
		return fmt.Sprintf("%v", rows)
	}
	if sawQuery {
		return emptyResultSet
	}
	return noDataRetrieved
}

// formatHistory renders the trimmed conversation for a prompt.
func formatHistory(history []domain.Message) string {
	if len(history) == 0 {
		return "(no prior messages)"
	}
	var b strings.Builder
	for _, msg := range history {
		b.WriteString(msg.Role)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
