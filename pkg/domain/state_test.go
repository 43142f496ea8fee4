package domain_test

import (
	"testing"

	"github.com/campushq/concierge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendStep_TimestampsMonotonic(t *testing.T) {
	state := domain.NewTurnState("s1", "hello", nil)

	for i := 0; i < 50; i++ {
		state.AppendStep(domain.NewStep("director", "analyze_intent", "in", "out"))
	}

	require.Len(t, state.Steps, 50)
	for i := 1; i < len(state.Steps); i++ {
		assert.False(t, state.Steps[i].Timestamp.Before(state.Steps[i-1].Timestamp),
			"step %d precedes step %d", i, i-1)
	}
}

func TestLastStepBy(t *testing.T) {
	state := domain.NewTurnState("s1", "hello", nil)
	state.AppendStep(domain.NewStep("director", "analyze_intent", "a", "first"))
	state.AppendStep(domain.NewStep("sql_agent", "execute_query", "b", "rows"))
	state.AppendStep(domain.NewStep("director", "analyze_intent", "c", "second"))

	step := state.LastStepBy("director")
	require.NotNil(t, step)
	assert.Equal(t, "second", step.Output)

	assert.Nil(t, state.LastStepBy("communication"))
}

func TestNewStep_DefaultsToOK(t *testing.T) {
	step := domain.NewStep("sql_agent", "execute_query", "task", "rows")
	assert.Equal(t, domain.StepOK, step.Status)
	assert.False(t, step.Timestamp.IsZero())
}
