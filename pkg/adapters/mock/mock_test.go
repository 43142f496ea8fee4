package mock_test

import (
	"context"
	"testing"

	"github.com/campushq/concierge/pkg/adapters/mock"
	"github.com/campushq/concierge/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailer_RecordsAndSucceeds(t *testing.T) {
	mailer := mock.NewMailer(nil)

	result, err := mailer.Send(context.Background(),
		[]string{"a@university.edu", "b@university.edu"},
		"Advising reminder", "Please book your advising slot.", "normal")
	require.NoError(t, err)

	assert.Equal(t, "success", result.Status)
	assert.NotEmpty(t, result.MessageID)

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Advising reminder", sent[0].Subject)
	assert.Len(t, sent[0].Recipients, 2)
}

func TestMailer_NoRecipients(t *testing.T) {
	mailer := mock.NewMailer(nil)

	result, err := mailer.Send(context.Background(), nil, "s", "b", "normal")
	require.NoError(t, err)
	assert.Equal(t, "error", result.Status)
	assert.Empty(t, mailer.Sent())
}

func TestChartRenderer_PlaceholderImage(t *testing.T) {
	renderer := mock.NewChartRenderer()

	result, err := renderer.Render(context.Background(),
		"bar chart of enrollment per department",
		[]map[string]any{{"Department": "Biology", "Students": 2}},
		[]string{"Department", "Students"})
	require.NoError(t, err)

	assert.Equal(t, "image/png", result.ImageType)
	assert.Equal(t, "bar", result.ChartType)
	assert.NotEmpty(t, result.ImageBytes)
	// PNG magic bytes.
	assert.Equal(t, byte(0x89), result.ImageBytes[0])
}

func TestChartRenderer_InfersChartType(t *testing.T) {
	renderer := mock.NewChartRenderer()
	cases := map[string]string{
		"pie chart of aid status":           "pie",
		"GPA trend over time":               "line",
		"distribution of grades":            "histogram",
		"show enrollment per department":    "bar",
	}
	for task, want := range cases {
		result, err := renderer.Render(context.Background(), task, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, want, result.ChartType, task)
	}
}

func TestMutator_ValidatesConditions(t *testing.T) {
	mutator := mock.NewMutator()
	ctx := context.Background()

	result, err := mutator.Execute(ctx, ports.MutationUpdate, "Person",
		map[string]any{"Department": "Chemistry"}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Err)
	assert.Empty(t, mutator.Applied())

	result, err = mutator.Execute(ctx, ports.MutationUpdate, "Person",
		map[string]any{"Department": "Chemistry"}, `"PersonId" = 3`)
	require.NoError(t, err)
	assert.Empty(t, result.Err)
	assert.Equal(t, 1, result.AffectedRows)
	assert.Len(t, mutator.Applied(), 1)
}

func TestExternalSystems_KnownAndUnknownEndpoints(t *testing.T) {
	ext := mock.NewExternalSystems()
	ctx := context.Background()

	payload, err := ext.Call(ctx, ports.SystemSIS, "enrollment", nil)
	require.NoError(t, err)
	assert.Equal(t, "success", payload["status"])
	assert.Equal(t, "Fall 2026", payload["term"])

	payload, err = ext.Call(ctx, ports.SystemLMS, "grades", nil)
	require.NoError(t, err)
	assert.Equal(t, "error", payload["status"])

	_, err = ext.Call(ctx, ports.ExternalSystem("erp"), "anything", nil)
	assert.Error(t, err)
}
