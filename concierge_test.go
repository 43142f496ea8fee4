package concierge_test

import (
	"context"
	"testing"
	"time"

	concierge "github.com/campushq/concierge"
	"github.com/campushq/concierge/pkg/adapters/memory"
	"github.com/campushq/concierge/pkg/adapters/mock"
	"github.com/campushq/concierge/pkg/adapters/sqlite"
	"github.com/campushq/concierge/pkg/ports"
	"github.com/campushq/concierge/pkg/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queuedCompletion pops scripted replies in order.
type queuedCompletion struct {
	replies []string
}

func (q *queuedCompletion) Complete(ctx context.Context, prompt string) (string, error) {
	if len(q.replies) == 0 {
		return "FINAL_RESPONSE I have nothing more to add.", nil
	}
	next := q.replies[0]
	q.replies = q.replies[1:]
	return next, nil
}

func newEngine(t *testing.T, completion ports.CompletionPort, opts ...concierge.Option) *concierge.Engine {
	t.Helper()

	dir, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dir.Close() })
	require.NoError(t, dir.Seed(context.Background()))

	eng, err := concierge.New(completion, concierge.Specialists{
		Data:     dir,
		Chart:    mock.NewChartRenderer(),
		Mail:     mock.NewMailer(nil),
		Mutation: mock.NewMutator(),
		External: mock.NewExternalSystems(),
	}, opts...)
	require.NoError(t, err)
	return eng
}

func TestSubmitTurn_DirectReply(t *testing.T) {
	eng := newEngine(t, &queuedCompletion{replies: []string{
		"FINAL_RESPONSE Hello! How can I help you today?",
	}})

	reply, err := eng.SubmitTurn(context.Background(), "s1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help you today?", reply.Message)
	assert.Nil(t, reply.Visualization)
	assert.NotEmpty(t, reply.TraceID)
}

func TestSubmitTurn_AnalysisAgainstSeededDirectory(t *testing.T) {
	eng := newEngine(t, &queuedCompletion{replies: []string{
		"ROUTE_TO_ANALYSIS",
		`{"query_task": "Show enrollment by department", "needs_visualization": false, "chart_task": ""}`,
		"Three departments are enrolled.",
		"Biology, Nursing, and Business have enrolled students.",
	}})

	reply, err := eng.SubmitTurn(context.Background(), "s1", "Which departments have students?")
	require.NoError(t, err)
	assert.Equal(t, "Biology, Nursing, and Business have enrolled students.", reply.Message)
}

func TestSubmitTurn_HistoryPersistsAcrossTurns(t *testing.T) {
	store := memory.NewHistoryStore()
	eng := newEngine(t, &queuedCompletion{replies: []string{
		"FINAL_RESPONSE Hi there!",
		"FINAL_RESPONSE Nice to see you again.",
	}}, concierge.WithHistoryStore(store))
	ctx := context.Background()

	_, err := eng.SubmitTurn(ctx, "s1", "hello")
	require.NoError(t, err)
	_, err = eng.SubmitTurn(ctx, "s1", "hello again")
	require.NoError(t, err)

	history, err := eng.Sessions().History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, "Nice to see you again.", history[3].Content)
}

func TestSubmitTurn_TraceIsReadable(t *testing.T) {
	recorder := trace.NewRecorder()
	t.Cleanup(recorder.Close)

	eng := newEngine(t, &queuedCompletion{replies: []string{
		"FINAL_RESPONSE All set.",
	}}, concierge.WithTraceSink(recorder))

	reply, err := eng.SubmitTurn(context.Background(), "s1", "thanks")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		events, ok := eng.Trace(reply.TraceID)
		return ok && len(events) > 0
	}, time.Second, 5*time.Millisecond)

	events, ok := eng.Trace(reply.TraceID)
	require.True(t, ok)
	// Classification is always the first recorded node.
	assert.Equal(t, "director", events[0].Node)
}

func TestSubmitTurn_EmptyMessageRejected(t *testing.T) {
	eng := newEngine(t, &queuedCompletion{})

	_, err := eng.SubmitTurn(context.Background(), "s1", "")
	assert.Error(t, err)
}

func TestSubmitTurn_NeverReturnsEmptyMessage(t *testing.T) {
	// A classifier that rambles without a marker still yields its text as
	// the reply.
	eng := newEngine(t, &queuedCompletion{replies: []string{
		"I am not sure how to categorize this request.",
	}})

	reply, err := eng.SubmitTurn(context.Background(), "s1", "???")
	require.NoError(t, err)
	assert.NotEmpty(t, reply.Message)
}

func TestNew_RequiresAllSpecialists(t *testing.T) {
	_, err := concierge.New(&queuedCompletion{}, concierge.Specialists{})
	assert.Error(t, err)
}
