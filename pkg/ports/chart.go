package ports

import "context"

// ChartResult carries a rendered chart. On render failure implementations
// return a placeholder image rather than an error where possible.
type ChartResult struct {
	ImageBytes  []byte `json:"image_bytes"`
	ImageType   string `json:"image_type"`
	ChartType   string `json:"chart_type"`
	Explanation string `json:"explanation,omitempty"`
}

// ChartPort renders a visualization for a result set. Treated as an opaque,
// sandboxed collaborator; the core never executes rendering code itself.
type ChartPort interface {
	Render(ctx context.Context, task string, rows []map[string]any, columns []string) (ChartResult, error)
}
