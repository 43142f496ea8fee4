package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/campushq/concierge/pkg/ports"
)

// Mutation records one simulated write.
type Mutation struct {
	Op        ports.MutationOp
	Table     string
	Data      map[string]any
	Condition string
}

// Mutator implements ports.MutationPort. Writes are validated and recorded
// but never applied anywhere.
type Mutator struct {
	mu      sync.Mutex
	applied []Mutation
}

// NewMutator creates a recording mutator.
func NewMutator() *Mutator {
	return &Mutator{}
}

// Execute validates and records the write. Updates and deletes without a
// condition are rejected in-band; an unconditional write against the
// directory is always a caller bug.
func (m *Mutator) Execute(ctx context.Context, op ports.MutationOp, table string, data map[string]any, condition string) (ports.MutationResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.MutationResult{}, err
	}
	if table == "" {
		return ports.MutationResult{Err: "table is required"}, nil
	}

	switch op {
	case ports.MutationInsert:
		if len(data) == 0 {
			return ports.MutationResult{Err: "insert requires data"}, nil
		}
	case ports.MutationUpdate:
		if len(data) == 0 {
			return ports.MutationResult{Err: "update requires data"}, nil
		}
		if condition == "" {
			return ports.MutationResult{Err: "update requires a condition"}, nil
		}
	case ports.MutationDelete:
		if condition == "" {
			return ports.MutationResult{Err: "delete requires a condition"}, nil
		}
	default:
		return ports.MutationResult{Err: fmt.Sprintf("unsupported operation: %s", op)}, nil
	}

	m.mu.Lock()
	m.applied = append(m.applied, Mutation{Op: op, Table: table, Data: data, Condition: condition})
	m.mu.Unlock()

	return ports.MutationResult{
		AffectedRows: 1,
		Message:      fmt.Sprintf("%s on %s applied", op, table),
	}, nil
}

// Applied returns a copy of every recorded mutation.
func (m *Mutator) Applied() []Mutation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Mutation, len(m.applied))
	copy(out, m.applied)
	return out
}

var _ ports.MutationPort = (*Mutator)(nil)
