package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campushq/concierge/internal/metrics"
	"github.com/campushq/concierge/pkg/domain"
	"github.com/campushq/concierge/pkg/plan"
	"github.com/campushq/concierge/pkg/ports"
)

// Dispatch executes the planned specialist work for one coordinator. It
// returns a plain-language outcome for the synthesis prompt. Specialist
// steps are appended to the state as they happen.
type Dispatch func(ctx context.Context, state *domain.TurnState, p plan.Plan) (string, error)

// Profile parameterizes the generic coordinator shell: one planning
// prompt, one plan schema, one dispatch table, one synthesis prompt. The
// four coordinators differ only in their profile.
type Profile struct {
	Agent           string
	PlanPrompt      string
	Schema          plan.Schema
	Dispatch        Dispatch
	SynthesisPrompt string
	Apology         string
}

// Coordinator is the shared plan-dispatch-synthesize shell.
type Coordinator struct {
	profile    Profile
	completion ports.CompletionPort
	logger     *slog.Logger
	metrics    *metrics.Collector
}

// NewCoordinator builds a coordinator from its profile.
func NewCoordinator(profile Profile, completion ports.CompletionPort, logger *slog.Logger, collector *metrics.Collector) *Coordinator {
	return &Coordinator{
		profile:    profile,
		completion: completion,
		logger:     logger,
		metrics:    collector,
	}
}

// Agent returns the coordinator's node name.
func (c *Coordinator) Agent() string {
	return c.profile.Agent
}

// Handle runs one coordinator invocation. Any failure is absorbed here:
// the state always leaves with this coordinator as CurrentAgent and a
// response set, so the director reaches synthesis mode instead of
// re-classifying.
func (c *Coordinator) Handle(ctx context.Context, state *domain.TurnState) {
	response, err := c.run(ctx, state)
	if err != nil {
		c.logger.Error("coordinator failed",
			"agent", c.profile.Agent,
			"session_id", state.SessionID,
			"err", err,
		)
		c.metrics.SpecialistFailed(c.profile.Agent)
		// Nothing further is appended on failure; the apology response and
		// CurrentAgent are enough for the director to reach synthesis.
		state.Response = c.profile.Apology
		state.CurrentAgent = c.profile.Agent
		return
	}

	state.Response = response
	state.CurrentAgent = c.profile.Agent
	state.AppendStep(domain.NewStep(c.profile.Agent, "respond", state.UserInput, response))
}

func (c *Coordinator) run(ctx context.Context, state *domain.TurnState) (string, error) {
	raw, err := c.completion.Complete(ctx, fmt.Sprintf(c.profile.PlanPrompt, state.UserInput))
	if err != nil {
		return "", fmt.Errorf("planning completion: %w", err)
	}

	p := plan.Extract(raw, c.profile.Schema)
	if p.Degraded() {
		c.logger.Debug("plan recovered by salvage parsing",
			"agent", c.profile.Agent,
			"schema", c.profile.Schema.Name,
		)
		c.metrics.PlanDegraded(c.profile.Agent)
	}
	state.AppendStep(domain.NewStep(c.profile.Agent, "create_plan", state.UserInput, p.Values()))

	outcome, err := c.profile.Dispatch(ctx, state, p)
	if err != nil {
		return "", fmt.Errorf("dispatch: %w", err)
	}

	response, err := c.completion.Complete(ctx, fmt.Sprintf(c.profile.SynthesisPrompt, state.UserInput, outcome))
	if err != nil {
		return "", fmt.Errorf("synthesis completion: %w", err)
	}
	return response, nil
}
