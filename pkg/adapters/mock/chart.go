package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/campushq/concierge/pkg/ports"
)

// placeholderPNG is a valid 1x1 transparent PNG returned in place of a
// real plot.
var placeholderPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

// ChartRenderer implements ports.ChartPort with a placeholder image. The
// chart type is inferred from the task so downstream presentation still
// varies the way a real renderer would.
type ChartRenderer struct{}

// NewChartRenderer creates a placeholder chart renderer.
func NewChartRenderer() *ChartRenderer {
	return &ChartRenderer{}
}

// Render produces a placeholder PNG with an explanation of what would have
// been drawn.
func (r *ChartRenderer) Render(ctx context.Context, task string, rows []map[string]any, columns []string) (ports.ChartResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.ChartResult{}, err
	}

	chartType := inferChartType(task)
	return ports.ChartResult{
		ImageBytes: placeholderPNG,
		ImageType:  "image/png",
		ChartType:  chartType,
		Explanation: fmt.Sprintf("%s chart of %d rows across %d columns for: %s",
			chartType, len(rows), len(columns), task),
	}, nil
}

func inferChartType(task string) string {
	t := strings.ToLower(task)
	switch {
	case strings.Contains(t, "pie"):
		return "pie"
	case strings.Contains(t, "line") || strings.Contains(t, "trend") || strings.Contains(t, "over time"):
		return "line"
	case strings.Contains(t, "histogram") || strings.Contains(t, "distribution"):
		return "histogram"
	default:
		return "bar"
	}
}

var _ ports.ChartPort = (*ChartRenderer)(nil)
