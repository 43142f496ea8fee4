package ports

import "context"

// MutationOp enumerates the write operations the mutation leaf accepts.
type MutationOp string

const (
	MutationInsert MutationOp = "insert"
	MutationUpdate MutationOp = "update"
	MutationDelete MutationOp = "delete"
)

// MutationResult reports the outcome of a data write.
type MutationResult struct {
	AffectedRows int    `json:"affected_rows"`
	Message      string `json:"message,omitempty"`
	Err          string `json:"error,omitempty"`
}

// MutationPort executes a single database write.
type MutationPort interface {
	Execute(ctx context.Context, op MutationOp, table string, data map[string]any, condition string) (MutationResult, error)
}
