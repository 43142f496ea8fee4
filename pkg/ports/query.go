package ports

import "context"

// QueryResult is the shape returned by the data-query leaf.
type QueryResult struct {
	// Rows maps column name to value, one map per returned row.
	Rows []map[string]any `json:"rows"`

	// Columns preserves the column order of the underlying result set.
	Columns []string `json:"columns"`

	// Query is the statement the leaf actually executed, when it is willing
	// to disclose it. Informational only.
	Query string `json:"query,omitempty"`

	// Err carries a leaf-side failure description. A non-empty Err with
	// zero rows means the attempt failed; callers fall through to the next
	// strategy rather than aborting.
	Err string `json:"error,omitempty"`
}

// Failed reports whether the query attempt produced an error.
func (r QueryResult) Failed() bool { return r.Err != "" }

// DataQueryPort answers a natural-language retrieval task against the
// institutional database. The NL-to-SQL translation is the leaf's problem.
type DataQueryPort interface {
	Query(ctx context.Context, task string) (QueryResult, error)
}
